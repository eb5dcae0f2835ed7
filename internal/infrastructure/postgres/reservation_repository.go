package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

var reservationColumns = []string{
	"id", "company_id", "sale_reference", "lot_id", "product_id", "quantity", "status",
	"returned", "actor_id", "created_at", "updated_at", "closed_at",
}

// ReservationRepo reservas sobre PostgreSQL. Única por (company_id, sale_reference, lot_id).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create inserta una reserva; una reserva repetida para la referencia y lote devuelve ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	sql, args, err := builder().Insert("reservations").Columns(reservationColumns...).Values(
		res.ID, res.CompanyID, res.SaleReference, res.LotID, res.ProductID, res.Quantity, res.Status,
		res.Returned, res.ActorID, res.CreatedAt, res.UpdatedAt, res.ClosedAt,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, sql, args...)
	return mapError("insert reservation", err)
}

// Get obtiene la reserva de una referencia sobre un lote. Devuelve (nil, nil) si no existe.
func (r *ReservationRepo) Get(ctx context.Context, companyID, saleReference, lotID string) (*entity.Reservation, error) {
	sql, args, err := builder().Select(reservationColumns...).From("reservations").
		Where(squirrel.Eq{"company_id": companyID, "sale_reference": saleReference, "lot_id": lotID}).ToSql()
	if err != nil {
		return nil, err
	}
	var res entity.Reservation
	if err := pgxscan.Get(ctx, r.q, &res, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError("get reservation", err)
	}
	return &res, nil
}

// ListByReference reservas de una referencia.
func (r *ReservationRepo) ListByReference(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error) {
	return r.list(ctx, squirrel.Eq{"company_id": companyID, "sale_reference": saleReference}, "", "list reservations")
}

// ListByReferenceForUpdate reservas de una referencia con bloqueo de filas.
func (r *ReservationRepo) ListByReferenceForUpdate(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error) {
	return r.list(ctx, squirrel.Eq{"company_id": companyID, "sale_reference": saleReference}, "FOR UPDATE", "list reservations for update")
}

// ListHeldByLot reservas held de un lote.
func (r *ReservationRepo) ListHeldByLot(ctx context.Context, companyID, lotID string) ([]*entity.Reservation, error) {
	return r.list(ctx, squirrel.Eq{"company_id": companyID, "lot_id": lotID, "status": entity.ReservationStatusHeld}, "", "list held reservations")
}

// ListHeldBefore reservas held creadas antes de cutoff.
func (r *ReservationRepo) ListHeldBefore(ctx context.Context, cutoff time.Time) ([]*entity.Reservation, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"status": entity.ReservationStatusHeld},
		squirrel.Lt{"created_at": cutoff},
	}, "", "list stale reservations")
}

// Update persiste estado, devolución y cierre.
func (r *ReservationRepo) Update(ctx context.Context, res *entity.Reservation) error {
	sql, args, err := builder().Update("reservations").SetMap(map[string]any{
		"status":     res.Status,
		"returned":   res.Returned,
		"updated_at": res.UpdatedAt,
		"closed_at":  res.ClosedAt,
	}).Where(squirrel.Eq{"company_id": res.CompanyID, "id": res.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return mapError("update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) list(ctx context.Context, where squirrel.Sqlizer, suffix, op string) ([]*entity.Reservation, error) {
	q := builder().Select(reservationColumns...).From("reservations").Where(where).OrderBy("created_at", "lot_id")
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Reservation, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}
