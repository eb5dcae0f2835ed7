package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// SaleInput evento de venta recibido desde ventas/facturación.
type SaleInput struct {
	CompanyID     string
	ActorID       string
	ProductID     string
	WarehouseID   string
	Quantity      decimal.Decimal
	SaleReference string
	AllowPartial  bool
}

// SaleOutcome resultado del manejo de una venta.
type SaleOutcome struct {
	SaleReference string
	// Plan calculado en esta llamada; nil en una repetición idempotente.
	Plan         *inventory.AllocationPlan
	Reserved     bool
	Committed    bool
	Idempotent   bool
	Reservations []*entity.Reservation
}

// SaleUseCase integra el planificador y las reservas con los eventos de venta según la política.
type SaleUseCase struct {
	reservations *ReservationUseCase
}

// NewSaleUseCase construye el manejador de eventos de venta.
func NewSaleUseCase(reservations *ReservationUseCase) *SaleUseCase {
	return &SaleUseCase{reservations: reservations}
}

// HandleSale planifica la venta y, con AutoReserve, reserva en la misma transacción que bloquea los candidatos.
// Con AutoDeduct además confirma el despacho en esa transacción. Sin AutoReserve solo devuelve el plan.
// Un plan parcial sin AllowPartial falla con ErrInsufficientStock. Repetir la referencia para el mismo
// producto devuelve las reservas ya existentes.
func (uc *SaleUseCase) HandleSale(ctx context.Context, in SaleInput) (*SaleOutcome, error) {
	if in.CompanyID == "" || strings.TrimSpace(in.SaleReference) == "" {
		return nil, domain.ErrInvalidInput
	}
	req := inventory.AllocationRequest{ProductID: in.ProductID, WarehouseID: in.WarehouseID, Quantity: in.Quantity}
	if req.ProductID == "" || req.WarehouseID == "" || !req.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	r := uc.reservations
	if err := r.CheckCatalog(ctx, in.CompanyID, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	policy, err := settings.Resolve(ctx, r.Repos.Settings, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if !policy.AutoReserve {
		lots, err := r.Repos.Lots.ListCandidates(ctx, in.CompanyID, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		plan, err := inventory.PlanAllocation(lots, req, policy, r.Clock.Now())
		if err != nil {
			return nil, err
		}
		return &SaleOutcome{SaleReference: in.SaleReference, Plan: plan}, nil
	}

	var (
		out    *SaleOutcome
		events []ports.Event
	)
	err = r.WithRetry(ctx, "sale", func() error {
		events = nil
		return r.RunTx(ctx, func(repos ports.Repositories) error {
			out = &SaleOutcome{SaleReference: in.SaleReference}
			policy, err := settings.Resolve(ctx, repos.Settings, in.CompanyID)
			if err != nil {
				return err
			}
			existing, err := repos.Reservations.ListByReference(ctx, in.CompanyID, in.SaleReference)
			if err != nil {
				return err
			}
			if prior := forProduct(existing, in.ProductID); len(prior) > 0 {
				out.Idempotent = true
				out.Reserved = anyActive(prior)
				out.Committed = allCommitted(prior)
				out.Reservations = prior
				return nil
			}

			candidates, err := repos.Lots.ListCandidatesForUpdate(ctx, in.CompanyID, in.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			plan, err := inventory.PlanAllocation(candidates, req, policy, r.Clock.Now())
			if err != nil {
				return err
			}
			out.Plan = plan
			if !plan.Allocated.IsPositive() || (!plan.FullySatisfied && !in.AllowPartial) {
				return domain.ErrInsufficientStock
			}
			locked := make(map[string]*entity.Lot, len(candidates))
			for _, l := range candidates {
				locked[l.ID] = l
			}
			res, err := r.reserveLocked(ctx, repos, in.CompanyID, in.ActorID, in.SaleReference, LinesFromPlan(plan), locked)
			if err != nil {
				return err
			}
			out.Reserved = true
			out.Reservations = res.Reservations
			if !policy.AutoDeduct {
				return nil
			}
			closed, evs, err := r.closeInTx(ctx, repos, in.CompanyID, in.ActorID, in.SaleReference,
				entity.ReservationStatusCommitted, func(x *entity.Reservation) bool { return x.ProductID == in.ProductID })
			if err != nil {
				return err
			}
			out.Committed = true
			out.Reservations = forProduct(closed.Reservations, in.ProductID)
			events = evs
			return nil
		})
	})
	if err != nil {
		r.Metrics.ReservationOutcome(outcomeFor(err))
		return nil, err
	}
	switch {
	case out.Idempotent:
		r.Metrics.ReservationOutcome(ports.OutcomeIdempotent)
	case out.Committed:
		r.Metrics.ReservationOutcome(ports.OutcomeCommitted)
	default:
		r.Metrics.ReservationOutcome(ports.OutcomeHeld)
	}
	r.Publish(ctx, events)
	r.Log.Info().Str("company_id", in.CompanyID).Str("sale_reference", in.SaleReference).
		Str("product_id", in.ProductID).Bool("committed", out.Committed).Bool("idempotent", out.Idempotent).
		Msg("venta procesada")
	return out, nil
}

// ConfirmShipment confirma el despacho de la venta.
func (uc *SaleUseCase) ConfirmShipment(ctx context.Context, companyID, actorID, saleReference string) (*ReservationResult, error) {
	return uc.reservations.Commit(ctx, companyID, actorID, saleReference)
}

// CancelSale libera las reservas pendientes de la venta.
func (uc *SaleUseCase) CancelSale(ctx context.Context, companyID, actorID, saleReference string) (*ReservationResult, error) {
	return uc.reservations.Release(ctx, companyID, actorID, saleReference)
}

// ReturnSale reingresa a sus lotes la cantidad despachada de la venta con movimientos entry.
// Requiere AutoReturn; cada reserva confirmada se devuelve una sola vez.
func (uc *SaleUseCase) ReturnSale(ctx context.Context, companyID, actorID, saleReference, reason string) (*ReservationResult, error) {
	if companyID == "" || strings.TrimSpace(saleReference) == "" {
		return nil, domain.ErrInvalidInput
	}
	if reason == "" {
		reason = "devolución de venta"
	}
	r := uc.reservations
	policy, err := settings.Resolve(ctx, r.Repos.Settings, companyID)
	if err != nil {
		return nil, err
	}
	if !policy.AutoReturn {
		return nil, domain.ErrInvalidState
	}
	returnable := func(x *entity.Reservation) bool {
		return x.Status == entity.ReservationStatusCommitted && !x.Returned
	}

	var result *ReservationResult
	err = r.WithRetry(ctx, "return", func() error {
		return r.RunTx(ctx, func(repos ports.Repositories) error {
			current, err := repos.Reservations.ListByReference(ctx, companyID, saleReference)
			if err != nil {
				return err
			}
			if len(current) == 0 {
				return domain.ErrNotFound
			}
			ids := make([]string, 0, len(current))
			anyCommitted := false
			for _, x := range current {
				if x.Status == entity.ReservationStatusCommitted {
					anyCommitted = true
				}
				if returnable(x) {
					ids = append(ids, x.LotID)
				}
			}
			if !anyCommitted {
				return domain.ErrInvalidState
			}
			lots, err := lockLots(ctx, repos, companyID, ids)
			if err != nil {
				return err
			}
			locked, err := repos.Reservations.ListByReferenceForUpdate(ctx, companyID, saleReference)
			if err != nil {
				return err
			}
			result = &ReservationResult{SaleReference: saleReference, Reservations: locked}
			now := r.Clock.Now()
			for _, x := range locked {
				if !returnable(x) {
					continue
				}
				lot, ok := lots[x.LotID]
				if !ok {
					return domain.ErrConcurrencyConflict
				}
				if _, err := inventory.ApplyDelta(lot, x.Quantity, true); err != nil {
					return err
				}
				if _, err := recordMovement(ctx, repos, lot, entity.MovementTypeEntry, x.Quantity,
					actorID, saleReference, reason, now); err != nil {
					return err
				}
				x.Returned = true
				x.UpdatedAt = now
				if err := repos.Reservations.Update(ctx, x); err != nil {
					return err
				}
				result.Changed++
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if result.Changed > 0 {
		r.Log.Info().Str("company_id", companyID).Str("sale_reference", saleReference).
			Int("reservations", result.Changed).Msg("devolución registrada")
	}
	return result, nil
}

func forProduct(list []*entity.Reservation, productID string) []*entity.Reservation {
	out := make([]*entity.Reservation, 0, len(list))
	for _, r := range list {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

func allCommitted(list []*entity.Reservation) bool {
	for _, r := range list {
		if r.Status != entity.ReservationStatusCommitted {
			return false
		}
	}
	return len(list) > 0
}

// anyActive indica si alguna reserva sigue retenida o ya se descontó.
func anyActive(list []*entity.Reservation) bool {
	for _, r := range list {
		if r.Status != entity.ReservationStatusReleased {
			return true
		}
	}
	return false
}
