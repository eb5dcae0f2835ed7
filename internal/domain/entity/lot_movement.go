package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de un lote.
const (
	MovementTypeEntry      = "entry"      // entrada (recepción, devolución)
	MovementTypeExit       = "exit"       // salida (despacho confirmado)
	MovementTypeTransfer   = "transfer"   // traslado entre bodegas, delta 0
	MovementTypeAdjustment = "adjustment" // ajuste manual o por conteo
)

// LotMovement entrada del kardex de un lote. Solo se inserta; nunca se actualiza ni se elimina.
// La suma de Quantity de un lote es igual a QuantityOnHand - InitialQuantity.
type LotMovement struct {
	ID              string          `db:"id"`
	CompanyID       string          `db:"company_id"`
	LotID           string          `db:"lot_id"`
	Type            string          `db:"type"`
	Quantity        decimal.Decimal `db:"quantity"` // delta con signo
	FromWarehouseID string          `db:"from_warehouse_id"`
	ToWarehouseID   string          `db:"to_warehouse_id"`
	Reference       string          `db:"reference"` // pedido, despacho, nota de ajuste
	Reason          string          `db:"reason"`
	ActorID         string          `db:"actor_id"`
	CreatedAt       time.Time       `db:"created_at"`
}
