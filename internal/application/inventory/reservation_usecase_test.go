package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

func reserveOne(ref, lotID string, qty int64) inventory.ReserveInput {
	return inventory.ReserveInput{
		CompanyID:     company,
		ActorID:       actor,
		SaleReference: ref,
		Lines:         []inventory.ReserveLine{{LotID: lotID, Quantity: d(qty)}},
	}
}

func TestReserve_CreaReservaYDescuentaDisponible(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)

	res, err := h.reservations.Reserve(context.Background(), reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)
	require.Len(t, res.Reservations, 1)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, entity.ReservationStatusHeld, res.Reservations[0].Status)
	assert.Equal(t, product, res.Reservations[0].ProductID)

	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityReserved.Equal(d(4)))
	assert.True(t, got.QuantityOnHand.Equal(d(10)))
	assert.True(t, got.Available().Equal(d(6)))

	movements, err := h.lots.GetLotMovements(context.Background(), company, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, movements, "reservar no escribe en el kardex")
}

func TestReserve_EsIdempotentePorReferencia(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()

	first, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)
	second, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)

	assert.Equal(t, 0, second.Changed)
	require.Len(t, second.Reservations, 1)
	assert.Equal(t, first.Reservations[0].ID, second.Reservations[0].ID)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.Equal(d(4)))
}

func TestReserve_StockInsuficienteNoReservaNada(t *testing.T) {
	h := newHarness(t)
	a := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	b := h.addLot(t, "L2", date(2024, 1, 2), date(2024, 6, 2), 3)

	_, err := h.reservations.Reserve(context.Background(), inventory.ReserveInput{
		CompanyID:     company,
		ActorID:       actor,
		SaleReference: "V-1",
		Lines: []inventory.ReserveLine{
			{LotID: a.ID, Quantity: d(5)},
			{LotID: b.ID, Quantity: d(4)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, h.lot(t, a.ID).QuantityReserved.IsZero())
	assert.True(t, h.lot(t, b.ID).QuantityReserved.IsZero())
	_, err = h.reservations.GetByReference(context.Background(), company, "V-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserve_RechazaLoteNoActivoOVencido(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	old := h.addLot(t, "L-OLD", date(2023, 1, 1), date(2024, 1, 10), 10)
	quarantined := h.addLot(t, "L-Q", date(2024, 1, 1), date(2024, 6, 1), 10)
	_, err := h.lots.ChangeStatus(ctx, inventory.ChangeStatusInput{
		CompanyID: company, ActorID: actor, LotID: quarantined.ID, Status: entity.LotStatusQuarantine, Reason: "inspección",
	})
	require.NoError(t, err)

	_, err = h.reservations.Reserve(ctx, reserveOne("V-1", old.ID, 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = h.reservations.Reserve(ctx, reserveOne("V-2", quarantined.ID, 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReserve_ValidaEntrada(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()

	cases := map[string]inventory.ReserveInput{
		"sin referencia": reserveOne(" ", lot.ID, 1),
		"sin lineas":     {CompanyID: company, SaleReference: "V-1"},
		"cantidad cero":  reserveOne("V-1", lot.ID, 0),
		"lote repetido": {CompanyID: company, SaleReference: "V-1", Lines: []inventory.ReserveLine{
			{LotID: lot.ID, Quantity: d(1)}, {LotID: lot.ID, Quantity: d(1)},
		}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.reservations.Reserve(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := h.reservations.Reserve(ctx, reserveOne("V-1", "no-existe", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserve_ConcurrenteNoSobreasigna(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 9)

	const workers = 10
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
		unexpected   []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.reservations.Reserve(context.Background(), reserveOne(fmt.Sprintf("V-%d", i), lot.ID, 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 9, ok)
	assert.Equal(t, 1, rejected)
	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityReserved.Equal(d(9)))
	assert.True(t, got.Available().IsZero())
}

func TestCommit_DescuentaYRegistraSalida(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()
	_, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)

	res, err := h.reservations.Commit(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, entity.ReservationStatusCommitted, res.Reservations[0].Status)
	assert.NotNil(t, res.Reservations[0].ClosedAt)

	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityOnHand.Equal(d(6)))
	assert.True(t, got.QuantityReserved.IsZero())

	movements, err := h.lots.GetLotMovements(ctx, company, lot.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeExit, movements[0].Type)
	assert.True(t, movements[0].Quantity.Equal(d(-4)))
	assert.Equal(t, "V-1", movements[0].Reference)
	h.assertConsistent(t, lot.ID)

	again, err := h.reservations.Commit(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed)
	assert.True(t, h.lot(t, lot.ID).QuantityOnHand.Equal(d(6)))

	assert.Contains(t, h.events.types(), ports.EventReservationCommitted)
}

func TestRelease_DevuelveDisponibleSinKardex(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()
	_, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)

	res, err := h.reservations.Release(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	got := h.lot(t, lot.ID)
	assert.True(t, got.QuantityReserved.IsZero())
	assert.True(t, got.QuantityOnHand.Equal(d(10)))
	movements, err := h.lots.GetLotMovements(ctx, company, lot.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)

	again, err := h.reservations.Release(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Changed)

	_, err = h.reservations.Commit(ctx, company, actor, "V-1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, h.events.types(), ports.EventReservationReleased)
}

func TestRelease_DespuesDeCommitNoCambiaNada(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()
	_, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)
	_, err = h.reservations.Commit(ctx, company, actor, "V-1")
	require.NoError(t, err)

	res, err := h.reservations.Release(ctx, company, actor, "V-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changed)
	assert.Equal(t, entity.ReservationStatusCommitted, res.Reservations[0].Status)
	assert.True(t, h.lot(t, lot.ID).QuantityOnHand.Equal(d(6)))
}

func TestCloseReservas_ReferenciaDesconocida(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.reservations.Commit(ctx, company, actor, "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.reservations.Release(ctx, company, actor, "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.reservations.GetByReference(ctx, company, "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservas_AisladasPorEmpresa(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()
	_, err := h.reservations.Reserve(ctx, reserveOne("V-1", lot.ID, 4))
	require.NoError(t, err)

	_, err = h.reservations.GetByReference(ctx, "c2", "V-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	in := reserveOne("V-2", lot.ID, 1)
	in.CompanyID = "c2"
	_, err = h.reservations.Reserve(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleaseExpiredHolds_LiberaSoloLasAntiguas(t *testing.T) {
	h := newHarness(t)
	lot := h.addLot(t, "L1", date(2024, 1, 1), date(2024, 6, 1), 10)
	ctx := context.Background()
	_, err := h.reservations.Reserve(ctx, reserveOne("V-OLD", lot.ID, 3))
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	_, err = h.reservations.Reserve(ctx, reserveOne("V-NEW", lot.ID, 2))
	require.NoError(t, err)

	released, err := h.reservations.ReleaseExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	old, err := h.reservations.GetByReference(ctx, company, "V-OLD")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReleased, old[0].Status)
	fresh, err := h.reservations.GetByReference(ctx, company, "V-NEW")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusHeld, fresh[0].Status)
	assert.True(t, h.lot(t, lot.ID).QuantityReserved.Equal(d(2)))

	released, err = h.reservations.ReleaseExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}
