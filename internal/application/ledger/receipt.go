package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/entregas-api/internal/domain"
	"github.com/jhoicas/entregas-api/internal/domain/entity"
)

// ReceiptLine línea del comprobante con nombres ya resueltos.
type ReceiptLine struct {
	Name      string
	SKU       string
	Quantity  int64
	Warehouse string
	Manual    bool
}

// ReceiptData datos de presentación del comprobante de entrega/devolución.
type ReceiptData struct {
	TransactionID string
	Kind          entity.TransactionKind
	Timestamp     time.Time
	CustomerName  string
	Counterparty  string
	WarehouseName string
	Actor         string
	Notes         string
	Signature     string
	Lines         []ReceiptLine
	TotalQuantity int64
	GeneratedAt   time.Time
}

// ReceiptService arma el comprobante a partir de la transacción registrada.
type ReceiptService struct {
	repos     Repos
	generator ReceiptGenerator
	now       func() time.Time
}

// NewReceiptService construye el servicio. repos son de solo lectura (pool, sin transacción).
func NewReceiptService(repos Repos, generator ReceiptGenerator) *ReceiptService {
	return &ReceiptService{repos: repos, generator: generator, now: time.Now}
}

// DeletedProductName texto para líneas cuyo producto ya no existe ni tiene nombre guardado.
func DeletedProductName(id string) string {
	return fmt.Sprintf("Producto eliminado (%s)", id)
}

// BuildReceipt carga la transacción y resuelve en paralelo cliente, bodega y productos.
// Cliente: nombre actual, o el guardado si ya no existe. Productos: nombre guardado, luego catálogo.
func (s *ReceiptService) BuildReceipt(ctx context.Context, transactionID string) (*ReceiptData, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := s.repos.Transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}

	data := &ReceiptData{
		TransactionID: t.ID,
		Kind:          t.Kind,
		Timestamp:     t.Timestamp,
		CustomerName:  t.CustomerName,
		Counterparty:  t.Counterparty,
		WarehouseName: t.WarehouseName,
		Actor:         t.Actor,
		Notes:         t.Notes,
		Signature:     t.Signature,
		TotalQuantity: t.TotalQuantity(),
		GeneratedAt:   s.now().UTC(),
	}

	var (
		mu    sync.Mutex
		names = make(map[string]string)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	g.Go(func() error {
		c, err := s.repos.Customers.GetByID(gctx, t.CustomerID)
		if err != nil {
			return err
		}
		if c != nil && c.Name != "" {
			data.CustomerName = c.Name
		}
		return nil
	})
	if data.WarehouseName == "" && t.WarehouseID != "" {
		g.Go(func() error {
			w, err := s.repos.Warehouses.GetByID(gctx, t.WarehouseID)
			if err != nil {
				return err
			}
			if w != nil {
				data.WarehouseName = w.Name
			}
			return nil
		})
	}
	seen := make(map[string]bool)
	for _, it := range t.Items {
		if it.IsManual() || it.ProductName != "" || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		id := it.ProductID
		g.Go(func() error {
			p, err := s.repos.Products.GetByID(gctx, id)
			if err != nil {
				return err
			}
			if p != nil {
				mu.Lock()
				names[id] = p.Name
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comprobante %s: %w", t.ID, err)
	}

	for _, it := range t.Items {
		line := ReceiptLine{
			SKU:       it.ManualSKU,
			Quantity:  it.Quantity,
			Warehouse: it.WarehouseName,
			Manual:    it.IsManual(),
		}
		switch {
		case it.IsManual():
			line.Name = it.ManualName
		case it.ProductName != "":
			line.Name = it.ProductName
		case names[it.ProductID] != "":
			line.Name = names[it.ProductID]
		default:
			line.Name = DeletedProductName(it.ProductID)
		}
		data.Lines = append(data.Lines, line)
	}
	return data, nil
}

// DownloadReceipt genera el PDF y el nombre de archivo sugerido.
func (s *ReceiptService) DownloadReceipt(ctx context.Context, transactionID string) ([]byte, string, error) {
	data, err := s.BuildReceipt(ctx, transactionID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.generator.GenerateReceiptPDF(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF: %w", err)
	}
	prefix := "entrega"
	if data.Kind == entity.TransactionKindCredit {
		prefix = "devolucion"
	}
	return pdf, fmt.Sprintf("%s-%s.pdf", prefix, data.TransactionID), nil
}
