// Package catalog lee archivos de catálogo (productos y bodegas por empresa) usados para sembrar
// el almacenamiento en memoria y para generar el SQL de carga inicial.
package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// File contenido de un archivo de catálogo.
type File struct {
	Products   []Product   `mapstructure:"products"`
	Warehouses []Warehouse `mapstructure:"warehouses"`
}

// Product producto del catálogo.
type Product struct {
	ID          string `mapstructure:"id"`
	CompanyID   string `mapstructure:"company_id"`
	SKU         string `mapstructure:"sku"`
	Name        string `mapstructure:"name"`
	UnitMeasure string `mapstructure:"unit_measure"`
}

// Warehouse bodega del catálogo.
type Warehouse struct {
	ID        string `mapstructure:"id"`
	CompanyID string `mapstructure:"company_id"`
	Name      string `mapstructure:"name"`
	Address   string `mapstructure:"address"`
}

// Load lee el archivo (json, yaml o toml según la extensión) y valida ids y empresa.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("catalog: leer %s: %w", path, err)
	}
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("catalog: decodificar %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]bool)
	for i, p := range f.Products {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.CompanyID) == "" {
			return fmt.Errorf("catalog: producto %d sin id o company_id", i)
		}
		if seen["p:"+p.ID] {
			return fmt.Errorf("catalog: producto %s repetido", p.ID)
		}
		seen["p:"+p.ID] = true
	}
	for i, w := range f.Warehouses {
		if strings.TrimSpace(w.ID) == "" || strings.TrimSpace(w.CompanyID) == "" {
			return fmt.Errorf("catalog: bodega %d sin id o company_id", i)
		}
		if seen["w:"+w.ID] {
			return fmt.Errorf("catalog: bodega %s repetida", w.ID)
		}
		seen["w:"+w.ID] = true
	}
	return nil
}

// Sink destino de la carga (lo implementa *memory.Store).
type Sink interface {
	AddProduct(p *entity.Product)
	AddWarehouse(w *entity.Warehouse)
}

// Apply registra el catálogo en el destino.
func (f *File) Apply(sink Sink) {
	for _, p := range f.Products {
		sink.AddProduct(&entity.Product{ID: p.ID, CompanyID: p.CompanyID, SKU: p.SKU, Name: p.Name, UnitMeasure: p.UnitMeasure})
	}
	for _, w := range f.Warehouses {
		sink.AddWarehouse(&entity.Warehouse{ID: w.ID, CompanyID: w.CompanyID, Name: w.Name, Address: w.Address})
	}
}

// SQL genera INSERTs idempotentes para cargar el catálogo en PostgreSQL.
func (f *File) SQL() string {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial de productos y bodegas\n")
	for _, w := range f.Warehouses {
		fmt.Fprintf(&b, "INSERT INTO warehouses (id, company_id, name, address) VALUES (%s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(w.ID), quote(w.CompanyID), quote(w.Name), quote(w.Address))
	}
	for _, p := range f.Products {
		fmt.Fprintf(&b, "INSERT INTO products (id, company_id, sku, name, unit_measure) VALUES (%s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(p.ID), quote(p.CompanyID), quote(p.SKU), quote(p.Name), quote(p.UnitMeasure))
	}
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
