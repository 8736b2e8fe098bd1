// Package pdf genera el comprobante de entrega/devolución en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de comprobante  │  N° + Fecha                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE / RECIBE o DEVUELVE / BODEGA / REGISTRADO POR       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | SKU | Bodega                       │
//	│  TOTAL UNIDADES                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTAS                                                       │
//	│  FIRMA (imagen) + QR con el ID de la transacción             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/entregas-api/internal/application/ledger"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ledger.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa ledger.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	company string
	printer *message.Printer
}

// NewReceiptGenerator construye el generador. company aparece como autor y en el encabezado.
func NewReceiptGenerator(company string) *ReceiptGenerator {
	return &ReceiptGenerator{company: company, printer: message.NewPrinter(language.Spanish)}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, data *ledger.ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title(data.Kind), true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRows(data)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(data.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(data.TotalQuantity))

	if data.Notes != "" {
		m.AddRows(row.New(4))
		m.AddRows(row.New(16).Add(col.New(12).Add(
			text.New("NOTAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(data.Notes, props.Text{Size: 8, Top: 6}),
		)))
	}

	m.AddRows(row.New(6))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(data *ledger.ReceiptData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.company, "Comprobante"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(title(data.Kind), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("N° "+shortID(data.TransactionID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+data.Timestamp.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func partiesRows(data *ledger.ReceiptData) []core.Row {
	counterpartyLabel := "RECIBE"
	if data.Kind == entity.TransactionKindCredit {
		counterpartyLabel = "DEVUELVE"
	}
	field := func(label, value string) core.Col {
		return col.New(6).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 10, Top: 6}),
		)
	}
	return []core.Row{
		row.New(13).Add(field("CLIENTE", data.CustomerName), field(counterpartyLabel, data.Counterparty)),
		row.New(13).Add(field("BODEGA", data.WarehouseName), field("REGISTRADO POR", data.Actor)),
	}
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("SKU", 2, align.Left),
		h("Bodega", 3, align.Left),
	)
}

func (g *ReceiptGenerator) itemRows(lines []ledger.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		if l.Manual {
			name += " (manual)"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(g.quantity(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.SKU, "-"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(3).Add(text.New(nonEmpty(l.Warehouse, "-"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return result
}

func (g *ReceiptGenerator) totalRow(total int64) core.Row {
	return row.New(9).Add(
		col.New(2).Add(text.New(g.quantity(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Center, Color: colorPrimary, Top: 2,
		})),
		col.New(10).Add(text.New("TOTAL UNIDADES", props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2, Left: 1,
		})),
	)
}

// footerRow firma (si decodifica como PNG/JPEG) y QR con el ID de la transacción.
func footerRow(data *ledger.ReceiptData) core.Row {
	signature := col.New(8)
	if img, ext, ok := decodeSignature(data.Signature); ok {
		signature.Add(image.NewFromBytes(img, ext, props.Rect{Percent: 80, Center: true}))
	} else {
		signature.Add(text.New("Sin firma", props.Text{Size: 8, Color: colorGray, Top: 20, Align: align.Center}))
	}
	return row.New(45).Add(
		signature,
		col.New(4).Add(code.NewQr(data.TransactionID, props.Rect{Percent: 85, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func title(kind entity.TransactionKind) string {
	if kind == entity.TransactionKindCredit {
		return "COMPROBANTE DE DEVOLUCIÓN"
	}
	return "COMPROBANTE DE ENTREGA"
}

// quantity formatea con separador de miles en español: 12345 -> "12.345".
func (g *ReceiptGenerator) quantity(n int64) string {
	return g.printer.Sprintf("%d", n)
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// decodeSignature acepta data URL ("data:image/png;base64,...") o base64 crudo.
func decodeSignature(s string) ([]byte, extension.Type, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", false
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, "", false
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", false
	}
	switch {
	case bytes.HasPrefix(raw, pngMagic):
		return raw, extension.Png, true
	case bytes.HasPrefix(raw, jpegMagic):
		return raw, extension.Jpg, true
	default:
		return nil, "", false
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
