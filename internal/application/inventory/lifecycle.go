package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ReleaseHeldForLot libera todas las reservas held del lote dentro de la transacción recibida.
// Descuenta QuantityReserved en memoria; el caller persiste el lote. La fila del lote debe estar bloqueada.
func ReleaseHeldForLot(ctx context.Context, repos ports.Repositories, lot *entity.Lot, now time.Time) ([]*entity.Reservation, error) {
	held, err := repos.Reservations.ListHeldByLot(ctx, lot.CompanyID, lot.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range held {
		closeReservation(r, entity.ReservationStatusReleased, now)
		if err := repos.Reservations.Update(ctx, r); err != nil {
			return nil, err
		}
		lot.QuantityReserved = lot.QuantityReserved.Sub(r.Quantity)
	}
	if lot.QuantityReserved.IsNegative() {
		lot.QuantityReserved = decimal.Zero
	}
	return held, nil
}

// AutoResolveAlert cierra la alerta abierta de un lote que salió del conjunto vigilado.
// Queda con acción none para distinguirla de una resolución manual. Devuelve nil si no había alerta abierta.
func AutoResolveAlert(ctx context.Context, repos ports.Repositories, companyID, lotID string, now time.Time) (*entity.ExpiryAlert, error) {
	alert, err := repos.Alerts.GetByLot(ctx, companyID, lotID)
	if err != nil || alert == nil || alert.Resolved {
		return nil, err
	}
	alert.Resolved = true
	alert.ActionTaken = entity.AlertActionNone
	alert.ResolvedBy = ""
	alert.ResolvedAt = &now
	alert.UpdatedAt = now
	if err := repos.Alerts.Upsert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func closeReservation(r *entity.Reservation, status string, now time.Time) {
	r.Status = status
	r.UpdatedAt = now
	r.ClosedAt = &now
}

func newEvent(eventType, companyID, subject string, now time.Time, data map[string]any) ports.Event {
	return ports.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		CompanyID:  companyID,
		Subject:    subject,
		OccurredAt: now,
		Data:       data,
	}
}

// ReservationEvent evento de cierre de una reserva.
func ReservationEvent(r *entity.Reservation, now time.Time) ports.Event {
	eventType := ports.EventReservationReleased
	if r.Status == entity.ReservationStatusCommitted {
		eventType = ports.EventReservationCommitted
	}
	return newEvent(eventType, r.CompanyID, r.SaleReference, now, map[string]any{
		"reservation_id": r.ID,
		"lot_id":         r.LotID,
		"product_id":     r.ProductID,
		"quantity":       r.Quantity.String(),
	})
}

// LotStatusEvent evento de lote vencido o retirado.
func LotStatusEvent(eventType string, lot *entity.Lot, now time.Time) ports.Event {
	return newEvent(eventType, lot.CompanyID, lot.ID, now, map[string]any{
		"lot_number":       lot.LotNumber,
		"product_id":       lot.ProductID,
		"warehouse_id":     lot.WarehouseID,
		"quantity_on_hand": lot.QuantityOnHand.String(),
		"status":           lot.Status,
	})
}

// AlertEvent evento de alerta emitida o resuelta.
func AlertEvent(eventType string, a *entity.ExpiryAlert, now time.Time) ports.Event {
	return newEvent(eventType, a.CompanyID, a.LotID, now, map[string]any{
		"alert_id":       a.ID,
		"lot_number":     a.LotNumber,
		"product_id":     a.ProductID,
		"days_remaining": a.DaysRemaining,
		"severity":       a.Severity,
		"action_taken":   a.ActionTaken,
	})
}

// recordMovement suma delta a la cantidad en mano del lote, lo persiste y escribe el movimiento.
func recordMovement(
	ctx context.Context,
	repos ports.Repositories,
	lot *entity.Lot,
	movementType string,
	delta decimal.Decimal,
	actorID, reference, reason string,
	now time.Time,
) (*entity.LotMovement, error) {
	lot.QuantityOnHand = lot.QuantityOnHand.Add(delta)
	lot.UpdatedAt = now
	if err := repos.Lots.Update(ctx, lot); err != nil {
		return nil, err
	}
	movement := &entity.LotMovement{
		ID:        uuid.New().String(),
		CompanyID: lot.CompanyID,
		LotID:     lot.ID,
		Type:      movementType,
		Quantity:  delta,
		Reference: reference,
		Reason:    reason,
		ActorID:   actorID,
		CreatedAt: now,
	}
	if err := repos.Movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func lockLot(ctx context.Context, repos ports.Repositories, companyID, lotID string) (*entity.Lot, error) {
	lot, err := repos.Lots.GetForUpdate(ctx, companyID, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

// lockLots bloquea los lotes en orden de id. Un id inexistente devuelve ErrNotFound.
func lockLots(ctx context.Context, repos ports.Repositories, companyID string, ids []string) (map[string]*entity.Lot, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)
	out := make(map[string]*entity.Lot, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}
	lots, err := repos.Lots.ListForUpdate(ctx, companyID, uniq)
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		out[l.ID] = l
	}
	if len(out) != len(uniq) {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
