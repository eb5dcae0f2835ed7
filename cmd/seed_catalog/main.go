// seed_catalog genera el script SQL de carga inicial de productos y bodegas a partir de un
// archivo de catálogo (json o yaml), el mismo formato que usa APP_CATALOG_FILE en memoria.
//
// Uso: go run ./cmd/seed_catalog [catalog.json] [salida.sql]
// Por defecto lee catalog.json del directorio actual y escribe seed_catalog.sql.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/lotes-api/internal/infrastructure/catalog"
)

func main() {
	in := "catalog.json"
	if len(os.Args) > 1 {
		in = os.Args[1]
	}
	out := "seed_catalog.sql"
	if len(os.Args) > 2 {
		out = os.Args[2]
	}

	f, err := catalog.Load(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(out, []byte(f.SQL()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Escrito %s: %d productos, %d bodegas\n", out, len(f.Products), len(f.Warehouses))
}
