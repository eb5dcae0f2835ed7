package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// AllocationRequest solicitud de asignación de cantidad de un producto en una bodega.
type AllocationRequest struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
}

// PlanLine par (lote, cantidad) dentro de un plan.
type PlanLine struct {
	LotID      string
	LotNumber  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	ExpiryDate time.Time
}

// AllocationPlan resultado del planificador. Es consultivo: no retiene stock hasta reservarse.
// Un plan parcial (FullySatisfied=false) es un resultado normal, no un error.
type AllocationPlan struct {
	ProductID       string
	WarehouseID     string
	Requested       decimal.Decimal
	Allocated       decimal.Decimal
	Shortfall       decimal.Decimal
	FullySatisfied  bool
	ValuationMethod string
	TotalCost       decimal.Decimal
	Lines           []PlanLine
}

// PlanAllocation selecciona lotes de forma determinista según la política y consume su disponible
// hasta cubrir la cantidad solicitada. today se usa para descartar lotes ya vencidos.
func PlanAllocation(lots []*entity.Lot, req AllocationRequest, policy *entity.PolicySettings, today time.Time) (*AllocationPlan, error) {
	if req.ProductID == "" || req.WarehouseID == "" || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if policy == nil {
		policy = entity.DefaultPolicySettings("")
	}

	candidates := FilterCandidates(lots, req.ProductID, req.WarehouseID, today)
	SortCandidates(candidates, policy)

	plan := &AllocationPlan{
		ProductID:       req.ProductID,
		WarehouseID:     req.WarehouseID,
		Requested:       req.Quantity,
		ValuationMethod: policy.ValuationMethod,
		Lines:           make([]PlanLine, 0),
	}

	remaining := req.Quantity
	for _, lot := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, lot.Available())
		plan.Lines = append(plan.Lines, PlanLine{
			LotID:      lot.ID,
			LotNumber:  lot.LotNumber,
			Quantity:   take,
			UnitCost:   lot.CostPrice,
			ExpiryDate: lot.ExpiryDate,
		})
		remaining = remaining.Sub(take)
		plan.Allocated = plan.Allocated.Add(take)
	}

	plan.Shortfall = remaining
	plan.FullySatisfied = !remaining.IsPositive()
	plan.TotalCost = PlanCost(plan.Lines, candidates, policy.ValuationMethod)
	return plan, nil
}

// FilterCandidates deja los lotes activos del producto y bodega, con disponible > 0 y no vencidos.
func FilterCandidates(lots []*entity.Lot, productID, warehouseID string, today time.Time) []*entity.Lot {
	day := DateOnly(today)
	out := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.ProductID != productID || l.WarehouseID != warehouseID {
			continue
		}
		if !l.IsAllocatable() {
			continue
		}
		if DateOnly(l.ExpiryDate).Before(day) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// SortCandidates ordena según la política:
//   - PreferNearExpiry: vencimiento ascendente, luego fabricación ascendente.
//   - lifo: fabricación descendente.
//   - fifo y weighted-average: fabricación ascendente.
//
// Empates finales por número de lote e id para que el orden sea reproducible.
func SortCandidates(lots []*entity.Lot, policy *entity.PolicySettings) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if policy.PreferNearExpiry {
			if !a.ExpiryDate.Equal(b.ExpiryDate) {
				return a.ExpiryDate.Before(b.ExpiryDate)
			}
			if !a.ManufacturingDate.Equal(b.ManufacturingDate) {
				return a.ManufacturingDate.Before(b.ManufacturingDate)
			}
		} else if !a.ManufacturingDate.Equal(b.ManufacturingDate) {
			if policy.ValuationMethod == entity.ValuationLIFO {
				return a.ManufacturingDate.After(b.ManufacturingDate)
			}
			return a.ManufacturingDate.Before(b.ManufacturingDate)
		}
		if a.LotNumber != b.LotNumber {
			return a.LotNumber < b.LotNumber
		}
		return a.ID < b.ID
	})
}
