package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog_Windows1252(t *testing.T) {
	// "Café" y "Bogotá" en Windows-1252: é = 0xE9, á = 0xE1.
	raw := []byte("kind,id,name,sku,stock,extra\nproduct,p1,Caf\xe9,CF-1,12,Molido\nwarehouse,w1,Principal,,,Bogot\xe1\n")

	cat, err := parseCatalog(bytes.NewReader(raw), false)
	require.NoError(t, err)

	require.Len(t, cat.Products, 1)
	assert.Equal(t, "Café", cat.Products[0].Name)
	assert.Equal(t, int64(12), cat.Products[0].Stock)
	assert.Equal(t, "Molido", cat.Products[0].Description)
	require.Len(t, cat.Warehouses, 1)
	assert.Equal(t, "Bogotá", cat.Warehouses[0].Address)
}

func TestParseCatalog_UTF8YIDGenerado(t *testing.T) {
	cat, err := parseCatalog(strings.NewReader("customer,,Tienda Ñandú,,,3001234567\n"), true)
	require.NoError(t, err)

	require.Len(t, cat.Customers, 1)
	assert.Equal(t, "Tienda Ñandú", cat.Customers[0].Name)
	assert.Len(t, cat.Customers[0].ID, 36)
	assert.Equal(t, "3001234567", cat.Customers[0].Phone)
}

func TestParseCatalog_Errores(t *testing.T) {
	cases := map[string]string{
		"stock negativo":   "product,p1,Café,,-3,\n",
		"stock en texto":   "product,p1,Café,,tres,\n",
		"sin nombre":       "customer,c1,,,,\n",
		"kind desconocido": "supplier,s1,Proveedor,,,\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(in), true)
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL_IdempotenteYEscapado(t *testing.T) {
	cat := &catalog{
		Products:   []product{{ID: "p1", Name: "Aceite d'oliva", SKU: "AC-1", Stock: 5}},
		Customers:  []customer{{ID: "c1", Name: "Don José"}},
		Warehouses: []warehouse{{ID: "w1", Name: "Norte"}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, cat))
	sql := buf.String()

	assert.Equal(t, 3, strings.Count(sql, "ON CONFLICT DO NOTHING;"))
	assert.Contains(t, sql, "'Aceite d''oliva'")
	assert.Contains(t, sql, ", 5) ON CONFLICT")
	assert.Less(t, strings.Index(sql, "INSERT INTO warehouses"), strings.Index(sql, "INSERT INTO products"))
}
