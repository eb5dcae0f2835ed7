package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	domaininv "github.com/jhoicas/lotes-api/internal/domain/inventory"
)

func sale(ref string, qty int64) inventory.SaleInput {
	return inventory.SaleInput{
		CompanyID:     company,
		ActorID:       actor,
		ProductID:     product,
		WarehouseID:   warehouse,
		Quantity:      d(qty),
		SaleReference: ref,
	}
}

func TestPlan_NoRetieneStock(t *testing.T) {
	h := newHarness(t)
	older := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 5)
	newer := h.addLot(t, "L-B", date(2024, 1, 5), date(2024, 3, 1), 5)
	ctx := context.Background()
	req := domaininv.AllocationRequest{ProductID: product, WarehouseID: warehouse, Quantity: d(7)}

	plan, err := h.planner.Plan(ctx, company, req)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2)
	assert.Equal(t, older.ID, plan.Lines[0].LotID, "fifo toma primero el fabricado antes")
	assert.True(t, plan.Lines[1].Quantity.Equal(d(2)))
	assert.True(t, plan.FullySatisfied)
	assert.True(t, plan.TotalCost.Equal(d(70)))
	assert.True(t, h.lot(t, older.ID).QuantityReserved.IsZero())

	h.setPolicy(t, func(p *entity.PolicySettings) { p.PreferNearExpiry = true })
	plan, err = h.planner.Plan(ctx, company, req)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, plan.Lines[0].LotID, "primero el que vence antes")

	plan, err = h.planner.Plan(ctx, company, domaininv.AllocationRequest{ProductID: product, WarehouseID: warehouse, Quantity: d(20)})
	require.NoError(t, err)
	assert.False(t, plan.FullySatisfied)
	assert.True(t, plan.Shortfall.Equal(d(10)))
}

func TestPlan_ProductoOBodegaDesconocidos(t *testing.T) {
	h := newHarness(t)
	h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 5)
	ctx := context.Background()

	cases := []struct {
		name      string
		productID string
		warehouse string
	}{
		{"producto inexistente", "no-existe", warehouse},
		{"bodega inexistente", product, "no-existe"},
		{"bodega de otra empresa", product, "w-other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.planner.Plan(ctx, company, domaininv.AllocationRequest{ProductID: tc.productID, WarehouseID: tc.warehouse, Quantity: d(3)})
			assert.ErrorIs(t, err, domain.ErrNotFound)

			in := sale("V-"+tc.name, 3)
			in.ProductID = tc.productID
			in.WarehouseID = tc.warehouse
			_, err = h.sales.HandleSale(ctx, in)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
	_, err := h.planner.Plan(ctx, "c2", domaininv.AllocationRequest{ProductID: product, WarehouseID: warehouse, Quantity: d(3)})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el catálogo de c1 no es visible para c2")
}

func TestHandleSale_ReservaAutomatica(t *testing.T) {
	h := newHarness(t)
	a := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 5)
	b := h.addLot(t, "L-B", date(2024, 1, 5), date(2024, 8, 1), 5)

	out, err := h.sales.HandleSale(context.Background(), sale("V-1", 7))
	require.NoError(t, err)
	assert.True(t, out.Reserved)
	assert.False(t, out.Committed)
	assert.False(t, out.Idempotent)
	require.NotNil(t, out.Plan)
	assert.True(t, out.Plan.FullySatisfied)
	require.Len(t, out.Reservations, 2)

	assert.True(t, h.lot(t, a.ID).QuantityReserved.Equal(d(5)))
	assert.True(t, h.lot(t, b.ID).QuantityReserved.Equal(d(2)))
	assert.True(t, h.lot(t, a.ID).QuantityOnHand.Equal(d(5)))
}

func TestHandleSale_EsIdempotentePorProducto(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	ctx := context.Background()

	_, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)
	out, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)
	assert.True(t, out.Idempotent)
	require.Len(t, out.Reservations, 1)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.Equal(d(4)))
}

func TestHandleSale_RepetirVentaCanceladaNoFiguraReservada(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	ctx := context.Background()

	_, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)
	_, err = h.sales.CancelSale(ctx, company, actor, "V-1")
	require.NoError(t, err)

	out, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)
	assert.True(t, out.Idempotent)
	assert.False(t, out.Reserved)
	assert.False(t, out.Committed)
	require.Len(t, out.Reservations, 1)
	assert.Equal(t, entity.ReservationStatusReleased, out.Reservations[0].Status)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.IsZero())
}

func TestHandleSale_SinStockSuficiente(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 3)
	ctx := context.Background()

	_, err := h.sales.HandleSale(ctx, sale("V-1", 5))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.IsZero())

	partial := sale("V-2", 5)
	partial.AllowPartial = true
	out, err := h.sales.HandleSale(ctx, partial)
	require.NoError(t, err)
	assert.False(t, out.Plan.FullySatisfied)
	assert.True(t, out.Plan.Shortfall.Equal(d(2)))
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.Equal(d(3)))

	empty := sale("V-3", 1)
	empty.AllowPartial = true
	_, err = h.sales.HandleSale(ctx, empty)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "nada asignable")
}

func TestHandleSale_DescuentoAutomatico(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	h.setPolicy(t, func(p *entity.PolicySettings) { p.AutoDeduct = true })

	out, err := h.sales.HandleSale(context.Background(), sale("V-1", 4))
	require.NoError(t, err)
	assert.True(t, out.Committed)
	require.Len(t, out.Reservations, 1)
	assert.Equal(t, entity.ReservationStatusCommitted, out.Reservations[0].Status)

	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityOnHand.Equal(d(6)))
	assert.True(t, got.QuantityReserved.IsZero())
	h.assertConsistent(t, lot.ID)
}

func TestHandleSale_SinReservaAutomaticaSoloPlan(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	h.setPolicy(t, func(p *entity.PolicySettings) { p.AutoReserve = false })

	out, err := h.sales.HandleSale(context.Background(), sale("V-1", 4))
	require.NoError(t, err)
	assert.False(t, out.Reserved)
	require.NotNil(t, out.Plan)
	assert.Len(t, out.Plan.Lines, 1)
	assert.Empty(t, out.Reservations)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.IsZero())
}

func TestHandleSale_EntradaInvalida(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.sales.HandleSale(ctx, sale("", 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = h.sales.HandleSale(ctx, sale("V-1", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfirmYCancelSale(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	ctx := context.Background()

	_, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)
	res, err := h.sales.ConfirmShipment(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	_, err = h.sales.HandleSale(ctx, sale("V-2", 3))
	require.NoError(t, err)
	res, err = h.sales.CancelSale(ctx, company, actor, "V-2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityOnHand.Equal(d(6)))
	assert.True(t, got.QuantityReserved.IsZero())
	h.assertConsistent(t, lot.ID)
}

func TestReturnSale_ReingresaUnaSolaVez(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	ctx := context.Background()
	h.setPolicy(t, func(p *entity.PolicySettings) { p.AutoDeduct = true })
	_, err := h.sales.HandleSale(ctx, sale("V-1", 4))
	require.NoError(t, err)

	_, err = h.sales.ReturnSale(ctx, company, actor, "V-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidState, "sin AutoReturn no se aceptan devoluciones")

	h.setPolicy(t, func(p *entity.PolicySettings) {
		p.AutoDeduct = true
		p.AutoReturn = true
	})
	res, err := h.sales.ReturnSale(ctx, company, actor, "V-1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.True(t, res.Reservations[0].Returned)
	assert.True(t, h.lot(t, lot.ID).QuantityOnHand.Equal(d(10)))

	res, err = h.sales.ReturnSale(ctx, company, actor, "V-1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changed)
	assert.True(t, h.lot(t, lot.ID).QuantityOnHand.Equal(d(10)))

	movements, err := h.lots.GetLotMovements(ctx, company, lot.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, entity.MovementTypeEntry, movements[1].Type)
	assert.Equal(t, "devolución de venta", movements[1].Reason)
	h.assertConsistent(t, lot.ID)
}

func TestReturnSale_SinDespachoConfirmado(t *testing.T) {
	h := newHarness(t)
	h.addLot(t, "L-A", date(2024, 1, 1), date(2024, 8, 1), 10)
	ctx := context.Background()
	h.setPolicy(t, func(p *entity.PolicySettings) { p.AutoReturn = true })

	_, err := h.sales.ReturnSale(ctx, company, actor, "V-X", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.sales.HandleSale(ctx, sale("V-1", 2))
	require.NoError(t, err)
	_, err = h.sales.ReturnSale(ctx, company, actor, "V-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
