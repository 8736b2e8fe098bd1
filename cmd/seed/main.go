// seed genera un script SQL para poblar el catálogo (productos, clientes y bodegas)
// a partir de un CSV exportado desde hoja de cálculo.
//
// Uso: go run ./cmd/seed [-utf8] [-out archivo.sql] catalogo.csv
// Columnas: kind,id,name,sku,stock,extra
//   - kind:  product | customer | warehouse
//   - id:    opcional; si viene vacío se genera un UUID
//   - extra: descripción (product), teléfono (customer) o dirección (warehouse)
//
// Por defecto el CSV se lee como Windows-1252 (exportación de Excel en español).
// Las sentencias usan ON CONFLICT DO NOTHING: el script se puede ejecutar varias veces.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	utf8 := flag.Bool("utf8", false, "el CSV ya está en UTF-8")
	outPath := flag.String("out", "", "archivo de salida (por defecto stdout)")
	flag.Parse()

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalog(f, *utf8)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	if err := writeSQL(out, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d productos, %d clientes, %d bodegas\n",
		len(cat.Products), len(cat.Customers), len(cat.Warehouses))
}
