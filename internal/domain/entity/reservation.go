package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva. committed y released son terminales.
const (
	ReservationStatusHeld      = "held"
	ReservationStatusCommitted = "committed"
	ReservationStatusReleased  = "released"
)

// Reservation retención blanda de cantidad de un lote para una venta o despacho.
// Única por (SaleReference, LotID); el lote se referencia por id, sin copiar su estado.
type Reservation struct {
	ID            string          `db:"id"`
	CompanyID     string          `db:"company_id"`
	SaleReference string          `db:"sale_reference"`
	LotID         string          `db:"lot_id"`
	ProductID     string          `db:"product_id"`
	Quantity      decimal.Decimal `db:"quantity"`
	Status        string          `db:"status"`
	Returned      bool            `db:"returned"` // devolución aplicada sobre una reserva committed
	ActorID       string          `db:"actor_id"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	ClosedAt      *time.Time      `db:"closed_at"`
}

// IsHeld indica si la reserva sigue pendiente.
func (r *Reservation) IsHeld() bool {
	return r.Status == ReservationStatusHeld
}
