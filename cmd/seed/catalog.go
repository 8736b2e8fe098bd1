package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type product struct {
	ID          string
	Name        string
	SKU         string
	Description string
	Stock       int64
}

type customer struct {
	ID    string
	Name  string
	Phone string
}

type warehouse struct {
	ID      string
	Name    string
	Address string
}

type catalog struct {
	Products   []product
	Customers  []customer
	Warehouses []warehouse
}

// parseCatalog lee el CSV. La fila de cabecera (kind,...) es opcional.
func parseCatalog(r io.Reader, isUTF8 bool) (*catalog, error) {
	if !isUTF8 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cat := &catalog{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		for len(rec) < 6 {
			rec = append(rec, "")
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		kind := strings.ToLower(rec[0])
		if kind == "" || kind == "kind" || strings.HasPrefix(kind, "#") {
			continue
		}
		id, name := rec[1], rec[2]
		if name == "" {
			return nil, fmt.Errorf("línea %d: name es requerido", line)
		}
		if id == "" {
			id = uuid.New().String()
		}

		switch kind {
		case "product":
			var stock int64
			if rec[4] != "" {
				stock, err = strconv.ParseInt(rec[4], 10, 64)
				if err != nil || stock < 0 {
					return nil, fmt.Errorf("línea %d: stock inválido %q", line, rec[4])
				}
			}
			cat.Products = append(cat.Products, product{ID: id, Name: name, SKU: rec[3], Stock: stock, Description: rec[5]})
		case "customer":
			cat.Customers = append(cat.Customers, customer{ID: id, Name: name, Phone: rec[5]})
		case "warehouse":
			cat.Warehouses = append(cat.Warehouses, warehouse{ID: id, Name: name, Address: rec[5]})
		default:
			return nil, fmt.Errorf("línea %d: kind desconocido %q", line, rec[0])
		}
	}
	return cat, nil
}

// writeSQL escribe un INSERT por fila con ON CONFLICT DO NOTHING.
func writeSQL(w io.Writer, cat *catalog) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial (generado por cmd/seed)\n\n")

	if len(cat.Warehouses) > 0 {
		b.WriteString("-- Bodegas\n")
		for _, wh := range cat.Warehouses {
			fmt.Fprintf(&b, "INSERT INTO warehouses (id, name, address) VALUES ('%s', '%s', '%s') ON CONFLICT DO NOTHING;\n",
				escapeSQL(wh.ID), escapeSQL(wh.Name), escapeSQL(wh.Address))
		}
		b.WriteString("\n")
	}
	if len(cat.Customers) > 0 {
		b.WriteString("-- Clientes\n")
		for _, c := range cat.Customers {
			fmt.Fprintf(&b, "INSERT INTO customers (id, name, phone) VALUES ('%s', '%s', '%s') ON CONFLICT DO NOTHING;\n",
				escapeSQL(c.ID), escapeSQL(c.Name), escapeSQL(c.Phone))
		}
		b.WriteString("\n")
	}
	if len(cat.Products) > 0 {
		b.WriteString("-- Productos\n")
		for _, p := range cat.Products {
			fmt.Fprintf(&b, "INSERT INTO products (id, name, sku, description, stock) VALUES ('%s', '%s', '%s', '%s', %d) ON CONFLICT DO NOTHING;\n",
				escapeSQL(p.ID), escapeSQL(p.Name), escapeSQL(p.SKU), escapeSQL(p.Description), p.Stock)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
