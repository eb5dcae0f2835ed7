package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// Reconciliation compara el kardex de un lote con su cantidad en mano.
type Reconciliation struct {
	LotID           string
	InitialQuantity decimal.Decimal
	QuantityOnHand  decimal.Decimal
	LedgerSum       decimal.Decimal
	Difference      decimal.Decimal // (OnHand - Initial) - LedgerSum; 0 si cuadra
	Consistent      bool
	Movements       int
}

// Reconcile recalcula la cantidad desde los movimientos; la suma debe igualar OnHand - Initial.
func Reconcile(lot *entity.Lot, movements []*entity.LotMovement) Reconciliation {
	sum := decimal.Zero
	for _, m := range movements {
		if m.LotID != lot.ID {
			continue
		}
		sum = sum.Add(m.Quantity)
	}
	diff := lot.QuantityOnHand.Sub(lot.InitialQuantity).Sub(sum)
	return Reconciliation{
		LotID:           lot.ID,
		InitialQuantity: lot.InitialQuantity,
		QuantityOnHand:  lot.QuantityOnHand,
		LedgerSum:       sum,
		Difference:      diff,
		Consistent:      diff.IsZero(),
		Movements:       len(movements),
	}
}
