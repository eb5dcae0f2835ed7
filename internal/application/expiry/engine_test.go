package expiry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/expiry"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

const company = "c1"

var today = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.types = append(p.types, e.Type)
	}
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.types {
		if t == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	store        *memory.Store
	engine       *expiry.Engine
	lots         *inventory.LotUseCase
	reservations *inventory.ReservationUseCase
	events       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(&entity.Product{ID: "p1", CompanyID: company, Name: "Yogur"})
	store.AddWarehouse(&entity.Warehouse{ID: "w1", CompanyID: company, Name: "Principal"})
	events := &recordingPublisher{}
	deps := inventory.Deps{
		Tx:        store,
		Repos:     store.Repositories(),
		Catalog:   inventory.Catalog{Products: store.Products(), Warehouses: store.Warehouses()},
		Clock:     ports.FixedClock{T: today},
		Publisher: events,
		Log:       zerolog.Nop(),
		Options:   inventory.DefaultOptions(),
	}
	return &fixture{
		store:        store,
		engine:       expiry.NewEngine(deps),
		lots:         inventory.NewLotUseCase(deps, store.Stats()),
		reservations: inventory.NewReservationUseCase(deps),
		events:       events,
	}
}

// lotExpiringIn crea un lote activo que vence en days días contados desde hoy.
func (f *fixture) lotExpiringIn(t *testing.T, number string, days int) *entity.Lot {
	t.Helper()
	lot, err := f.lots.CreateLot(context.Background(), inventory.CreateLotInput{
		CompanyID:         company,
		ActorID:           "u1",
		ProductID:         "p1",
		WarehouseID:       "w1",
		LotNumber:         number,
		ManufacturingDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:        time.Date(2024, 1, 15+days, 0, 0, 0, 0, time.UTC),
		Quantity:          decimal.NewFromInt(10),
		CostPrice:         decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) alertFor(t *testing.T, lotID string) *entity.ExpiryAlert {
	t.Helper()
	a, err := f.store.Repositories().Alerts.GetByLot(context.Background(), company, lotID)
	require.NoError(t, err)
	return a
}

func (f *fixture) lot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	l, err := f.lots.GetLot(context.Background(), company, id)
	require.NoError(t, err)
	return l
}

func TestScanCompany_FronterasDeSeveridad(t *testing.T) {
	f := newFixture(t)
	sameDay := f.lotExpiringIn(t, "L-0", 0)
	six := f.lotExpiringIn(t, "L-6", 6)
	seven := f.lotExpiringIn(t, "L-7", 7)
	nearWarning := f.lotExpiringIn(t, "L-29", 29)
	atWarning := f.lotExpiringIn(t, "L-30", 30)

	res, err := f.engine.ScanCompany(context.Background(), company)
	require.NoError(t, err)
	assert.Equal(t, 5, res.ScannedLots)
	assert.Equal(t, 4, res.AlertsUpserted)
	assert.Equal(t, 2, res.CriticalOpen)
	assert.Equal(t, 2, res.WarningOpen)
	assert.Zero(t, res.ExpiredLots)

	cases := []struct {
		lot      *entity.Lot
		severity string
		days     int
	}{
		{sameDay, entity.AlertSeverityCritical, 0},
		{six, entity.AlertSeverityCritical, 6},
		{seven, entity.AlertSeverityWarning, 7},
		{nearWarning, entity.AlertSeverityWarning, 29},
	}
	for _, tc := range cases {
		a := f.alertFor(t, tc.lot.ID)
		require.NotNil(t, a, tc.lot.LotNumber)
		assert.Equal(t, tc.severity, a.Severity, tc.lot.LotNumber)
		assert.Equal(t, tc.days, a.DaysRemaining, tc.lot.LotNumber)
		assert.False(t, a.Resolved)
		assert.Equal(t, entity.AlertActionNone, a.ActionTaken)
	}
	assert.Nil(t, f.alertFor(t, atWarning.ID), "30 días no alcanza el umbral por defecto")
	assert.Equal(t, 4, f.events.count(ports.EventAlertRaised))
}

func TestScanCompany_UmbralDeLaEmpresa(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-20", 20)
	p := entity.DefaultPolicySettings(company)
	p.ExpiryWarningDays = 10
	require.NoError(t, f.store.Repositories().Settings.Upsert(context.Background(), p))

	_, err := f.engine.ScanCompany(context.Background(), company)
	require.NoError(t, err)
	assert.Nil(t, f.alertFor(t, lot.ID))

	p.ExpiryWarningDays = 3
	require.NoError(t, f.store.Repositories().Settings.Upsert(context.Background(), p))
	near := f.lotExpiringIn(t, "L-5", 5)
	_, err = f.engine.ScanCompany(context.Background(), company)
	require.NoError(t, err)
	a := f.alertFor(t, near.ID)
	require.NotNil(t, a)
	assert.Equal(t, entity.AlertSeverityCritical, a.Severity, "bajo 7 días siempre es critical")
}

func TestScanCompany_VenceLoteYLiberaReservas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lotExpiringIn(t, "L-VENCIDO", -1)
	// La reserva se crea directamente: Reserve ya rechaza lotes vencidos.
	require.NoError(t, f.store.Run(ctx, func(repos ports.Repositories) error {
		l, err := repos.Lots.GetForUpdate(ctx, company, lot.ID)
		if err != nil {
			return err
		}
		l.QuantityReserved = decimal.NewFromInt(3)
		if err := repos.Lots.Update(ctx, l); err != nil {
			return err
		}
		return repos.Reservations.Create(ctx, &entity.Reservation{
			ID: "r1", CompanyID: company, SaleReference: "V-1", LotID: lot.ID, ProductID: "p1",
			Quantity: decimal.NewFromInt(3), Status: entity.ReservationStatusHeld, CreatedAt: today,
		})
	}))

	res, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExpiredLots)
	assert.Equal(t, 1, res.ReleasedReservations)
	assert.Zero(t, res.AlertsUpserted)

	got := f.lot(t, lot.ID)
	assert.Equal(t, entity.LotStatusExpired, got.Status)
	assert.True(t, got.QuantityReserved.IsZero())
	assert.True(t, got.QuantityOnHand.Equal(decimal.NewFromInt(10)), "vencer no descuenta existencias")
	assert.Nil(t, f.alertFor(t, lot.ID))

	list, err := f.reservations.GetByReference(ctx, company, "V-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReleased, list[0].Status)
	assert.Equal(t, 1, f.events.count(ports.EventLotExpired))
	assert.Equal(t, 1, f.events.count(ports.EventReservationReleased))

	res, err = f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	assert.Zero(t, res.ExpiredLots, "un lote expired sale del barrido")
}

func TestScanCompany_IdempotenteEnElMismoDia(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-3", 3)
	ctx := context.Background()

	_, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	first := f.alertFor(t, lot.ID)
	_, err = f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	second := f.alertFor(t, lot.ID)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.DaysRemaining, second.DaysRemaining)
	assert.Equal(t, 1, f.events.count(ports.EventAlertRaised))
	alerts, total, err := f.engine.ListAlerts(ctx, entity.AlertFilter{CompanyID: company})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, alerts, 1)
}

func TestResolveAlert_SeConservaEntreBarridos(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-3", 3)
	ctx := context.Background()
	_, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	a := f.alertFor(t, lot.ID)

	resolved, err := f.engine.ResolveAlert(ctx, company, "u9", a.ID, entity.AlertActionPromotion)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "u9", resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	res, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	assert.Zero(t, res.CriticalOpen)
	after := f.alertFor(t, lot.ID)
	assert.True(t, after.Resolved)
	assert.Equal(t, entity.AlertActionPromotion, after.ActionTaken)
	assert.Equal(t, entity.LotStatusActive, f.lot(t, lot.ID).Status, "resolver no toca el lote")

	open := false
	list, _, err := f.engine.ListAlerts(ctx, entity.AlertFilter{CompanyID: company, Resolved: &open})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolveAlert_Rechazos(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-3", 3)
	ctx := context.Background()
	_, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	a := f.alertFor(t, lot.ID)

	_, err = f.engine.ResolveAlert(ctx, company, "u1", a.ID, entity.AlertActionNone)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.ResolveAlert(ctx, company, "u1", a.ID, "vender")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.ResolveAlert(ctx, company, "u1", "no-existe", entity.AlertActionDisposal)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.engine.ResolveAlert(ctx, "c2", "u1", a.ID, entity.AlertActionDisposal)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanCompany_CierraYReabreAutomaticamente(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-3", 3)
	ctx := context.Background()
	_, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)

	_, err = f.lots.ChangeStatus(ctx, inventory.ChangeStatusInput{
		CompanyID: company, ActorID: "u1", LotID: lot.ID, Status: entity.LotStatusQuarantine, Reason: "inspección",
	})
	require.NoError(t, err)
	a := f.alertFor(t, lot.ID)
	assert.True(t, a.Resolved)
	assert.Equal(t, entity.AlertActionNone, a.ActionTaken)
	assert.False(t, a.IsManuallyResolved())

	_, err = f.lots.ChangeStatus(ctx, inventory.ChangeStatusInput{
		CompanyID: company, ActorID: "u1", LotID: lot.ID, Status: entity.LotStatusActive, Reason: "liberado",
	})
	require.NoError(t, err)
	res, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CriticalOpen)
	reopened := f.alertFor(t, lot.ID)
	assert.False(t, reopened.Resolved)
	assert.Equal(t, a.ID, reopened.ID)
	assert.Equal(t, 2, f.events.count(ports.EventAlertRaised))
}

func TestScanCompany_LoteSinExistenciasSaleDelConjunto(t *testing.T) {
	f := newFixture(t)
	lot := f.lotExpiringIn(t, "L-3", 3)
	ctx := context.Background()
	_, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)

	_, err = f.lots.AdjustQuantity(ctx, inventory.AdjustInput{
		CompanyID: company, ActorID: "u1", LotID: lot.ID, Delta: decimal.NewFromInt(-10), Reason: "descarte",
	})
	require.NoError(t, err)
	res, err := f.engine.ScanCompany(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsResolved)
	assert.True(t, f.alertFor(t, lot.ID).Resolved)
}

func TestScanAll_RecorreCadaEmpresa(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(&entity.Product{ID: "p9", CompanyID: "c2", Name: "Kéfir"})
	f.store.AddWarehouse(&entity.Warehouse{ID: "w9", CompanyID: "c2", Name: "Sur"})
	f.lotExpiringIn(t, "L-3", 3)
	_, err := f.lots.CreateLot(context.Background(), inventory.CreateLotInput{
		CompanyID: "c2", ProductID: "p9", WarehouseID: "w9", LotNumber: "K-1",
		ManufacturingDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Quantity:          decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	res, err := f.engine.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Companies)
	assert.Equal(t, 1, res.ExpiredLots)
	assert.Equal(t, 1, res.AlertsUpserted)
}

func TestScanCompany_SinEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.ScanCompany(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
