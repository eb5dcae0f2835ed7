package entity

import "time"

// Product referencia mínima de un producto del catálogo. El catálogo lo administra otro módulo;
// el motor de lotes solo verifica existencia y pertenencia a la empresa.
type Product struct {
	ID          string    `db:"id"`
	CompanyID   string    `db:"company_id"`
	SKU         string    `db:"sku"`
	Name        string    `db:"name"`
	UnitMeasure string    `db:"unit_measure"`
	CreatedAt   time.Time `db:"created_at"`
}
