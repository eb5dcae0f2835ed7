package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ValidateNewLot verifica los campos obligatorios e invariantes de un lote nuevo.
func ValidateNewLot(l *entity.Lot) error {
	if l.CompanyID == "" || l.ProductID == "" || l.WarehouseID == "" || strings.TrimSpace(l.LotNumber) == "" {
		return domain.ErrInvalidInput
	}
	if l.ManufacturingDate.IsZero() || l.ExpiryDate.IsZero() || !l.ExpiryDate.After(l.ManufacturingDate) {
		return domain.ErrInvalidInput
	}
	if l.QuantityOnHand.IsNegative() || l.CostPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// CanTransition reglas de cambio de estado manual. expired solo lo asigna el motor de vencimientos.
func CanTransition(from, to string) bool {
	switch to {
	case entity.LotStatusQuarantine:
		return from == entity.LotStatusActive
	case entity.LotStatusActive:
		return from == entity.LotStatusQuarantine
	case entity.LotStatusRecalled:
		return from != entity.LotStatusRecalled
	}
	return false
}

// ValidateMovementDelta verifica el signo del delta según el tipo de movimiento.
func ValidateMovementDelta(movementType string, delta decimal.Decimal) error {
	switch movementType {
	case entity.MovementTypeEntry:
		if !delta.IsPositive() {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeExit:
		if !delta.IsNegative() {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if delta.IsZero() {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyDelta calcula el delta efectivo sobre un lote sin modificarlo.
// Con preventNegative un resultado < 0 falla con ErrNegativeStock; sin él se recorta a dejar el lote en 0.
// Nunca deja la cantidad en mano por debajo de lo reservado.
func ApplyDelta(lot *entity.Lot, delta decimal.Decimal, preventNegative bool) (decimal.Decimal, error) {
	if lot.Status == entity.LotStatusRecalled && delta.IsPositive() {
		return decimal.Zero, domain.ErrInvalidState
	}
	applied := delta
	next := lot.QuantityOnHand.Add(delta)
	if next.IsNegative() {
		if preventNegative {
			return decimal.Zero, domain.ErrNegativeStock
		}
		applied = lot.QuantityOnHand.Neg()
		next = decimal.Zero
	}
	if next.LessThan(lot.QuantityReserved) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	return applied, nil
}

// RequiresValueApproval indica si |delta| * costo supera el umbral de aprobación (0 = desactivado).
func RequiresValueApproval(lot *entity.Lot, delta decimal.Decimal, threshold decimal.Decimal) bool {
	if !threshold.IsPositive() {
		return false
	}
	return delta.Abs().Mul(lot.CostPrice).GreaterThan(threshold)
}

// DiscrepancyPercentage porcentaje de diferencia entre lo contado y lo registrado.
// Con registro en 0 cualquier diferencia cuenta como 100%.
func DiscrepancyPercentage(onHand, counted decimal.Decimal) decimal.Decimal {
	diff := counted.Sub(onHand).Abs()
	if diff.IsZero() {
		return decimal.Zero
	}
	if !onHand.IsPositive() {
		return hundred
	}
	return diff.Div(onHand).Mul(hundred).Round(4)
}
