package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// WeightedAverageCost acumula el costo promedio de un conjunto de lotes sobre su cantidad en mano.
func WeightedAverageCost(lots []*entity.Lot) decimal.Decimal {
	qty := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		if !l.QuantityOnHand.IsPositive() {
			continue
		}
		cost = CostCalculator(qty, cost, l.QuantityOnHand, l.CostPrice)
		qty = qty.Add(l.QuantityOnHand)
	}
	return cost
}

// PlanCost costo de un plan según el método de valoración. En fifo/lifo cada línea se valora al costo
// de su lote; en promedio ponderado toda la cantidad se valora al promedio de los candidatos.
func PlanCost(lines []PlanLine, candidates []*entity.Lot, method string) decimal.Decimal {
	if method == entity.ValuationWeightedAverage {
		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.Quantity)
		}
		return total.Mul(WeightedAverageCost(candidates)).Round(4)
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Quantity.Mul(line.UnitCost))
	}
	return total.Round(4)
}
