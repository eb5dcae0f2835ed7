package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// ReservationUseCase Reservation Manager: convierte planes en reservas held y las cierra
// (commit descuenta stock, release lo libera). Todas las operaciones son todo-o-nada por referencia.
type ReservationUseCase struct {
	Deps
}

// NewReservationUseCase construye el caso de uso de reservas.
func NewReservationUseCase(deps Deps) *ReservationUseCase {
	deps.Normalize()
	return &ReservationUseCase{Deps: deps}
}

// ReserveLine cantidad a reservar de un lote.
type ReserveLine struct {
	LotID    string
	Quantity decimal.Decimal
}

// ReserveInput reserva de un plan bajo una referencia de venta.
type ReserveInput struct {
	CompanyID     string
	ActorID       string
	SaleReference string
	Lines         []ReserveLine
}

// ReservationResult reservas de una referencia luego de la operación.
// Changed cuenta las reservas creadas o cerradas por esta llamada (0 en una repetición idempotente).
type ReservationResult struct {
	SaleReference string
	Reservations  []*entity.Reservation
	Changed       int
}

// LinesFromPlan convierte las líneas de un plan en líneas de reserva.
func LinesFromPlan(plan *inventory.AllocationPlan) []ReserveLine {
	out := make([]ReserveLine, 0, len(plan.Lines))
	for _, l := range plan.Lines {
		out = append(out, ReserveLine{LotID: l.LotID, Quantity: l.Quantity})
	}
	return out
}

// Reserve bloquea los lotes del plan, revalida el disponible y crea una reserva held por lote.
// Si algún lote ya no cubre su línea falla con ErrInsufficientStock sin reservar nada.
// Repetir la llamada con la misma referencia devuelve las reservas existentes.
func (uc *ReservationUseCase) Reserve(ctx context.Context, in ReserveInput) (*ReservationResult, error) {
	if err := validateReserveInput(in); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.LotID)
	}

	var result *ReservationResult
	err := uc.WithRetry(ctx, "reserve", func() error {
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			lots, err := lockLots(ctx, repos, in.CompanyID, ids)
			if err != nil {
				return err
			}
			result, err = uc.reserveLocked(ctx, repos, in.CompanyID, in.ActorID, in.SaleReference, in.Lines, lots)
			return err
		})
	})
	uc.observeReserve(result, err)
	if err != nil {
		return nil, err
	}
	if result.Changed > 0 {
		uc.Log.Info().Str("company_id", in.CompanyID).Str("sale_reference", in.SaleReference).
			Int("reservations", result.Changed).Msg("reservas creadas")
	}
	return result, nil
}

// Commit confirma el despacho: descuenta de cada lote la cantidad reservada y escribe un movimiento exit.
// Confirmar una referencia ya confirmada es un no-op; confirmar una liberada devuelve ErrInvalidState.
func (uc *ReservationUseCase) Commit(ctx context.Context, companyID, actorID, saleReference string) (*ReservationResult, error) {
	return uc.close(ctx, companyID, actorID, saleReference, entity.ReservationStatusCommitted, nil)
}

// Release libera las reservas held de la referencia sin escribir en el kardex. Idempotente.
func (uc *ReservationUseCase) Release(ctx context.Context, companyID, actorID, saleReference string) (*ReservationResult, error) {
	return uc.close(ctx, companyID, actorID, saleReference, entity.ReservationStatusReleased, nil)
}

// GetByReference reservas de una referencia de venta.
func (uc *ReservationUseCase) GetByReference(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error) {
	if companyID == "" || strings.TrimSpace(saleReference) == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.Repos.Reservations.ListByReference(ctx, companyID, saleReference)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

// ReleaseExpiredHolds libera las reservas held más antiguas que HoldTTL. Devuelve cuántas liberó.
func (uc *ReservationUseCase) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	if uc.Options.HoldTTL <= 0 {
		return 0, nil
	}
	cutoff := uc.Clock.Now().Add(-uc.Options.HoldTTL)
	stale, err := uc.Repos.Reservations.ListHeldBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	type key struct{ company, ref string }
	seen := make(map[key]bool)
	released := 0
	for _, r := range stale {
		k := key{r.CompanyID, r.SaleReference}
		if seen[k] {
			continue
		}
		seen[k] = true
		res, err := uc.close(ctx, r.CompanyID, "", r.SaleReference, entity.ReservationStatusReleased, func(x *entity.Reservation) bool {
			return x.CreatedAt.Before(cutoff)
		})
		if err != nil {
			uc.Log.Error().Err(err).Str("company_id", r.CompanyID).Str("sale_reference", r.SaleReference).
				Msg("no se pudo liberar reserva vencida")
			continue
		}
		released += res.Changed
	}
	if released > 0 {
		uc.Log.Info().Int("released", released).Msg("reservas vencidas liberadas")
	}
	return released, nil
}

// reserveLocked crea las reservas faltantes sobre lotes ya bloqueados en la transacción.
func (uc *ReservationUseCase) reserveLocked(
	ctx context.Context,
	repos ports.Repositories,
	companyID, actorID, saleReference string,
	lines []ReserveLine,
	lots map[string]*entity.Lot,
) (*ReservationResult, error) {
	now := uc.Clock.Now()
	today := inventory.DateOnly(now)
	out := &ReservationResult{SaleReference: saleReference}
	for _, line := range lines {
		existing, err := repos.Reservations.Get(ctx, companyID, saleReference, line.LotID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			out.Reservations = append(out.Reservations, existing)
			continue
		}
		lot, ok := lots[line.LotID]
		if !ok {
			return nil, domain.ErrConcurrencyConflict
		}
		if lot.Status != entity.LotStatusActive || inventory.DateOnly(lot.ExpiryDate).Before(today) ||
			lot.Available().LessThan(line.Quantity) {
			return nil, domain.ErrInsufficientStock
		}
		lot.QuantityReserved = lot.QuantityReserved.Add(line.Quantity)
		lot.UpdatedAt = now
		if err := repos.Lots.Update(ctx, lot); err != nil {
			return nil, err
		}
		r := &entity.Reservation{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			SaleReference: saleReference,
			LotID:         lot.ID,
			ProductID:     lot.ProductID,
			Quantity:      line.Quantity,
			Status:        entity.ReservationStatusHeld,
			ActorID:       actorID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repos.Reservations.Create(ctx, r); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, domain.ErrConcurrencyConflict
			}
			return nil, err
		}
		out.Reservations = append(out.Reservations, r)
		out.Changed++
	}
	return out, nil
}

func (uc *ReservationUseCase) close(
	ctx context.Context,
	companyID, actorID, saleReference, target string,
	selectFn func(*entity.Reservation) bool,
) (*ReservationResult, error) {
	if companyID == "" || strings.TrimSpace(saleReference) == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		result *ReservationResult
		events []ports.Event
	)
	err := uc.WithRetry(ctx, target, func() error {
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			var err error
			result, events, err = uc.closeInTx(ctx, repos, companyID, actorID, saleReference, target, selectFn)
			return err
		})
	})
	if err != nil {
		uc.Metrics.ReservationOutcome(outcomeFor(err))
		return nil, err
	}
	if result.Changed > 0 {
		uc.Metrics.ReservationOutcome(target)
		uc.Log.Info().Str("company_id", companyID).Str("sale_reference", saleReference).Str("status", target).
			Int("reservations", result.Changed).Msg("reservas cerradas")
	}
	uc.Publish(ctx, events)
	return result, nil
}

// closeInTx lleva a target las reservas held de la referencia que cumplan selectFn (nil = todas).
// Orden de bloqueo: lotes primero y luego reservas, igual que en Reserve y en el retiro de lotes.
func (uc *ReservationUseCase) closeInTx(
	ctx context.Context,
	repos ports.Repositories,
	companyID, actorID, saleReference, target string,
	selectFn func(*entity.Reservation) bool,
) (*ReservationResult, []ports.Event, error) {
	pick := func(r *entity.Reservation) bool {
		return r.IsHeld() && (selectFn == nil || selectFn(r))
	}
	current, err := repos.Reservations.ListByReference(ctx, companyID, saleReference)
	if err != nil {
		return nil, nil, err
	}
	if len(current) == 0 {
		return nil, nil, domain.ErrNotFound
	}
	ids := make([]string, 0, len(current))
	for _, r := range current {
		if pick(r) {
			ids = append(ids, r.LotID)
		}
	}
	lots, err := lockLots(ctx, repos, companyID, ids)
	if err != nil {
		return nil, nil, err
	}
	locked, err := repos.Reservations.ListByReferenceForUpdate(ctx, companyID, saleReference)
	if err != nil {
		return nil, nil, err
	}

	out := &ReservationResult{SaleReference: saleReference, Reservations: locked}
	held := make([]*entity.Reservation, 0, len(locked))
	var committed, released int
	for _, r := range locked {
		switch {
		case pick(r):
			if _, ok := lots[r.LotID]; !ok {
				return nil, nil, domain.ErrConcurrencyConflict
			}
			held = append(held, r)
		case r.Status == entity.ReservationStatusCommitted:
			committed++
		case r.Status == entity.ReservationStatusReleased:
			released++
		}
	}
	if len(held) == 0 {
		if target == entity.ReservationStatusCommitted && selectFn == nil && released > 0 && committed == 0 {
			return nil, nil, domain.ErrInvalidState
		}
		return out, nil, nil
	}

	now := uc.Clock.Now()
	events := make([]ports.Event, 0, len(held))
	for _, r := range held {
		lot := lots[r.LotID]
		lot.QuantityReserved = lot.QuantityReserved.Sub(r.Quantity)
		if lot.QuantityReserved.IsNegative() {
			return nil, nil, domain.ErrInvalidState
		}
		if target == entity.ReservationStatusCommitted {
			if lot.Status != entity.LotStatusActive || lot.QuantityOnHand.LessThan(r.Quantity) {
				return nil, nil, domain.ErrInvalidState
			}
			if _, err := recordMovement(ctx, repos, lot, entity.MovementTypeExit, r.Quantity.Neg(),
				actorID, saleReference, "despacho confirmado", now); err != nil {
				return nil, nil, err
			}
		} else {
			lot.UpdatedAt = now
			if err := repos.Lots.Update(ctx, lot); err != nil {
				return nil, nil, err
			}
		}
		closeReservation(r, target, now)
		if err := repos.Reservations.Update(ctx, r); err != nil {
			return nil, nil, err
		}
		events = append(events, ReservationEvent(r, now))
		out.Changed++
	}
	return out, events, nil
}

func (uc *ReservationUseCase) observeReserve(result *ReservationResult, err error) {
	switch {
	case err != nil:
		uc.Metrics.ReservationOutcome(outcomeFor(err))
	case result.Changed == 0:
		uc.Metrics.ReservationOutcome(ports.OutcomeIdempotent)
	default:
		uc.Metrics.ReservationOutcome(ports.OutcomeHeld)
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return ports.OutcomeInsufficient
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return ports.OutcomeConflict
	}
	return ports.OutcomeError
}

func validateReserveInput(in ReserveInput) error {
	if in.CompanyID == "" || strings.TrimSpace(in.SaleReference) == "" || len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.LotID == "" || !l.Quantity.IsPositive() || seen[l.LotID] {
			return domain.ErrInvalidInput
		}
		seen[l.LotID] = true
	}
	return nil
}
