package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	LotStatusActive     = "active"     // disponible para asignación
	LotStatusQuarantine = "quarantine" // bloqueado, reversible a active
	LotStatusExpired    = "expired"    // vencido con cantidad; se conserva para auditoría/disposición
	LotStatusRecalled   = "recalled"   // retirado del mercado, terminal
)

// Lot representa un lote (batch) de un producto en una bodega: misma fecha de fabricación y vencimiento.
// Invariantes: 0 <= QuantityReserved <= QuantityOnHand; ExpiryDate > ManufacturingDate.
type Lot struct {
	ID                    string          `db:"id"`
	CompanyID             string          `db:"company_id"`
	ProductID             string          `db:"product_id"`
	LotNumber             string          `db:"lot_number"` // único por producto
	ManufacturingDate     time.Time       `db:"manufacturing_date"`
	ExpiryDate            time.Time       `db:"expiry_date"`
	InitialQuantity       decimal.Decimal `db:"initial_quantity"` // cantidad al crear; base de la conciliación con el kardex
	QuantityOnHand        decimal.Decimal `db:"quantity_on_hand"`
	QuantityReserved      decimal.Decimal `db:"quantity_reserved"`
	CostPrice             decimal.Decimal `db:"cost_price"`
	OriginID              string          `db:"origin_id"` // proveedor
	WarehouseID           string          `db:"warehouse_id"`
	Location              string          `db:"location"` // ubicación libre (estante, posición)
	Status                string          `db:"status"`
	QualityCertificateRef string          `db:"quality_certificate_ref"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

// Available devuelve la cantidad libre para nuevas reservas.
func (l *Lot) Available() decimal.Decimal {
	return l.QuantityOnHand.Sub(l.QuantityReserved)
}

// IsAllocatable indica si el lote puede participar en un plan de asignación.
func (l *Lot) IsAllocatable() bool {
	return l.Status == LotStatusActive && l.Available().IsPositive()
}

// IsTerminal indica si el lote ya no admite cambios de estado.
func (l *Lot) IsTerminal() bool {
	return l.Status == LotStatusRecalled
}

// StockValue valor del inventario del lote (cantidad en mano * costo).
func (l *Lot) StockValue() decimal.Decimal {
	return l.QuantityOnHand.Mul(l.CostPrice)
}

// LotFilter criterios para listar lotes. Los campos vacíos no filtran.
type LotFilter struct {
	CompanyID          string
	ProductID          string
	WarehouseID        string
	Status             string
	ExpiringWithinDays *int
	// Today fecha de referencia de ExpiringWithinDays; sin valor se usa el reloj del sistema.
	Today  time.Time
	Search string // lot_number, ubicación o certificado
	Limit  int
	Offset int
}
