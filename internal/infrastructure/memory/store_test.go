package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

func sampleLot(id, number string) *entity.Lot {
	return &entity.Lot{
		ID:                id,
		CompanyID:         "c1",
		ProductID:         "p1",
		WarehouseID:       "w1",
		LotNumber:         number,
		ManufacturingDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		InitialQuantity:   decimal.NewFromInt(10),
		QuantityOnHand:    decimal.NewFromInt(10),
		QuantityReserved:  decimal.Zero,
		CostPrice:         decimal.NewFromInt(5),
		Status:            entity.LotStatusActive,
	}
}

func TestStore_RunConfirmaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	err := s.Run(ctx, func(repos ports.Repositories) error {
		return repos.Lots.Create(ctx, sampleLot("l1", "A"))
	})
	require.NoError(t, err)

	got, err := s.Repositories().Lots.GetByID(ctx, "c1", "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.LotNumber)
}

func TestStore_RunRevierteAnteError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")
	err := s.Run(ctx, func(repos ports.Repositories) error {
		if err := repos.Lots.Create(ctx, sampleLot("l1", "A")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Repositories().Lots.GetByID(ctx, "c1", "l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_RunRevierteSiVenceElContexto(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	err := s.Run(ctx, func(repos ports.Repositories) error {
		if err := repos.Lots.Create(ctx, sampleLot("l1", "A")); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	got, _ := s.Repositories().Lots.GetByID(context.Background(), "c1", "l1")
	assert.Nil(t, got)
}

func TestStore_LecturasDevuelvenCopias(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repos := s.Repositories()
	require.NoError(t, repos.Lots.Create(ctx, sampleLot("l1", "A")))

	got, _ := repos.Lots.GetByID(ctx, "c1", "l1")
	got.QuantityOnHand = decimal.Zero

	again, _ := repos.Lots.GetByID(ctx, "c1", "l1")
	assert.True(t, again.QuantityOnHand.Equal(decimal.NewFromInt(10)))
}

func TestStore_NumeroDeLoteDuplicado(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Lots.Create(ctx, sampleLot("l1", "A")))
	assert.ErrorIs(t, repos.Lots.Create(ctx, sampleLot("l2", "A")), domain.ErrDuplicate)
}

func TestStore_OtraEmpresaNoVeElLote(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Lots.Create(ctx, sampleLot("l1", "A")))

	got, err := repos.Lots.GetByID(ctx, "c2", "l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ReservaUnicaPorReferenciaYLote(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	res := &entity.Reservation{ID: "r1", CompanyID: "c1", SaleReference: "S-1", LotID: "l1", Status: entity.ReservationStatusHeld}
	require.NoError(t, repos.Reservations.Create(ctx, res))

	dup := *res
	dup.ID = "r2"
	assert.ErrorIs(t, repos.Reservations.Create(ctx, &dup), domain.ErrDuplicate)
}

func TestStore_UpsertAlertaConservaID(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	require.NoError(t, repos.Alerts.Upsert(ctx, &entity.ExpiryAlert{ID: "a1", CompanyID: "c1", LotID: "l1", Severity: entity.AlertSeverityWarning}))
	require.NoError(t, repos.Alerts.Upsert(ctx, &entity.ExpiryAlert{ID: "a2", CompanyID: "c1", LotID: "l1", Severity: entity.AlertSeverityCritical}))

	got, err := repos.Alerts.GetByLot(ctx, "c1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, entity.AlertSeverityCritical, got.Severity)
}

func TestStore_ListPagina(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, repos.Lots.Create(ctx, sampleLot("l"+n, n)))
	}
	list, total, err := repos.Lots.List(ctx, entity.LotFilter{CompanyID: "c1", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].LotNumber)
}
