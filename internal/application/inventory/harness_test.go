package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

const (
	company   = "c1"
	actor     = "u1"
	product   = "p1"
	warehouse = "w1"
)

var today = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// movableClock reloj de prueba que se puede adelantar.
type movableClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	store        *memory.Store
	clock        *movableClock
	events       *recordingPublisher
	lots         *inventory.LotUseCase
	planner      *inventory.PlannerUseCase
	reservations *inventory.ReservationUseCase
	sales        *inventory.SaleUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(&entity.Product{ID: product, CompanyID: company, Name: "Leche"})
	store.AddProduct(&entity.Product{ID: "p2", CompanyID: company, Name: "Queso"})
	store.AddWarehouse(&entity.Warehouse{ID: warehouse, CompanyID: company, Name: "Principal"})
	store.AddWarehouse(&entity.Warehouse{ID: "w2", CompanyID: company, Name: "Norte"})
	store.AddWarehouse(&entity.Warehouse{ID: "w-other", CompanyID: "c2", Name: "Ajena"})

	h := &harness{store: store, clock: &movableClock{t: today}, events: &recordingPublisher{}}
	opts := inventory.DefaultOptions()
	opts.HoldTTL = time.Hour
	deps := inventory.Deps{
		Tx:        store,
		Repos:     store.Repositories(),
		Catalog:   inventory.Catalog{Products: store.Products(), Warehouses: store.Warehouses()},
		Clock:     h.clock,
		Publisher: h.events,
		Log:       zerolog.Nop(),
		Options:   opts,
	}
	h.lots = inventory.NewLotUseCase(deps, store.Stats())
	h.planner = inventory.NewPlannerUseCase(deps)
	h.reservations = inventory.NewReservationUseCase(deps)
	h.sales = inventory.NewSaleUseCase(h.reservations)
	return h
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// addLot crea un lote activo del producto p1 en w1.
func (h *harness) addLot(t *testing.T, number string, mfg, exp time.Time, qty int64) *entity.Lot {
	t.Helper()
	lot, err := h.lots.CreateLot(context.Background(), inventory.CreateLotInput{
		CompanyID:         company,
		ActorID:           actor,
		ProductID:         product,
		WarehouseID:       warehouse,
		LotNumber:         number,
		ManufacturingDate: mfg,
		ExpiryDate:        exp,
		Quantity:          d(qty),
		CostPrice:         d(10),
	})
	require.NoError(t, err)
	return lot
}

func (h *harness) lot(t *testing.T, id string) *entity.Lot {
	t.Helper()
	lot, err := h.lots.GetLot(context.Background(), company, id)
	require.NoError(t, err)
	return lot
}

func (h *harness) setPolicy(t *testing.T, mutate func(p *entity.PolicySettings)) {
	t.Helper()
	p := entity.DefaultPolicySettings(company)
	mutate(p)
	require.NoError(t, h.store.Repositories().Settings.Upsert(context.Background(), p))
}

func (h *harness) assertConsistent(t *testing.T, lotID string) {
	t.Helper()
	rec, err := h.lots.ReconcileLot(context.Background(), company, lotID)
	require.NoError(t, err)
	require.True(t, rec.Consistent, "kardex inconsistente: diferencia %s", rec.Difference)
}
