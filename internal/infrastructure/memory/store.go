package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// state datos del motor. Las transacciones trabajan sobre una copia y la publican al confirmar.
type state struct {
	lots         map[string]*entity.Lot
	movements    []*entity.LotMovement
	reservations map[string]*entity.Reservation
	alerts       map[string]*entity.ExpiryAlert // por lot_id
	settings     map[string]*entity.PolicySettings
}

func newState() *state {
	return &state{
		lots:         make(map[string]*entity.Lot),
		reservations: make(map[string]*entity.Reservation),
		alerts:       make(map[string]*entity.ExpiryAlert),
		settings:     make(map[string]*entity.PolicySettings),
	}
}

func (s *state) clone() *state {
	c := &state{
		lots:         make(map[string]*entity.Lot, len(s.lots)),
		movements:    make([]*entity.LotMovement, len(s.movements), len(s.movements)+8),
		reservations: make(map[string]*entity.Reservation, len(s.reservations)),
		alerts:       make(map[string]*entity.ExpiryAlert, len(s.alerts)),
		settings:     make(map[string]*entity.PolicySettings, len(s.settings)),
	}
	for k, v := range s.lots {
		c.lots[k] = copyLot(v)
	}
	// Los movimientos no se modifican nunca; basta copiar el slice.
	copy(c.movements, s.movements)
	for k, v := range s.reservations {
		c.reservations[k] = copyReservation(v)
	}
	for k, v := range s.alerts {
		c.alerts[k] = copyAlert(v)
	}
	for k, v := range s.settings {
		cp := *v
		c.settings[k] = &cp
	}
	return c
}

// Store almacenamiento en memoria del motor de lotes. Las transacciones se serializan y ven
// sus propias escrituras; el resto de lectores ve el último estado confirmado.
// Se usa en tests y con APP_STORAGE=memory.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state

	catalogMu  sync.RWMutex
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		st:         newState(),
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
	}
}

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn sobre una copia del estado. Si fn falla o ctx venció, la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(s.repositories(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// Repositories repositorios fuera de transacción (lecturas y escrituras sueltas).
func (s *Store) Repositories() ports.Repositories {
	return s.repositories(nil)
}

func (s *Store) repositories(tx *state) ports.Repositories {
	b := binding{store: s, tx: tx}
	return ports.Repositories{
		Lots:         &lotRepo{b},
		Movements:    &movementRepo{b},
		Reservations: &reservationRepo{b},
		Alerts:       &alertRepo{b},
		Settings:     &settingsRepo{b},
	}
}

// binding ata un repositorio a una transacción (tx != nil) o al estado confirmado.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) read(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	return fn(b.store.st)
}

func (b binding) write(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.txMu.Lock()
	defer b.store.txMu.Unlock()
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.st)
}

func referenceDay(f entity.LotFilter) time.Time {
	if f.Today.IsZero() {
		return time.Now().UTC()
	}
	return f.Today
}

func copyLot(l *entity.Lot) *entity.Lot {
	cp := *l
	return &cp
}

func copyReservation(r *entity.Reservation) *entity.Reservation {
	cp := *r
	if r.ClosedAt != nil {
		t := *r.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}

func copyAlert(a *entity.ExpiryAlert) *entity.ExpiryAlert {
	cp := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}
