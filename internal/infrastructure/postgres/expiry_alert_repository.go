package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.ExpiryAlertRepository = (*ExpiryAlertRepo)(nil)

var alertColumns = []string{
	"id", "company_id", "product_id", "lot_id", "lot_number", "days_remaining", "severity",
	"action_taken", "resolved", "resolved_by", "resolved_at", "created_at", "updated_at",
}

// ExpiryAlertRepo alertas de vencimiento; una fila por lote (lot_id único).
type ExpiryAlertRepo struct {
	q Querier
}

// NewExpiryAlertRepository construye el adaptador de alertas.
func NewExpiryAlertRepository(q Querier) *ExpiryAlertRepo {
	return &ExpiryAlertRepo{q: q}
}

// GetByID obtiene una alerta de la empresa.
func (r *ExpiryAlertRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ExpiryAlert, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "id": id}, "get alert")
}

// GetByLot obtiene la alerta de un lote.
func (r *ExpiryAlertRepo) GetByLot(ctx context.Context, companyID, lotID string) (*entity.ExpiryAlert, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "lot_id": lotID}, "get alert by lot")
}

func (r *ExpiryAlertRepo) getOne(ctx context.Context, where squirrel.Eq, op string) (*entity.ExpiryAlert, error) {
	sql, args, err := builder().Select(alertColumns...).From("expiry_alerts").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	var a entity.ExpiryAlert
	if err := pgxscan.Get(ctx, r.q, &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &a, nil
}

// Upsert inserta o actualiza por lot_id conservando id y created_at de la fila existente.
func (r *ExpiryAlertRepo) Upsert(ctx context.Context, a *entity.ExpiryAlert) error {
	sql, args, err := builder().Insert("expiry_alerts").Columns(alertColumns...).Values(
		a.ID, a.CompanyID, a.ProductID, a.LotID, a.LotNumber, a.DaysRemaining, a.Severity,
		a.ActionTaken, a.Resolved, a.ResolvedBy, a.ResolvedAt, a.CreatedAt, a.UpdatedAt,
	).Suffix(`ON CONFLICT (lot_id) DO UPDATE SET
		lot_number = EXCLUDED.lot_number,
		days_remaining = EXCLUDED.days_remaining,
		severity = EXCLUDED.severity,
		action_taken = EXCLUDED.action_taken,
		resolved = EXCLUDED.resolved,
		resolved_by = EXCLUDED.resolved_by,
		resolved_at = EXCLUDED.resolved_at,
		updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`).ToSql()
	if err != nil {
		return err
	}
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return mapError("upsert alert", err)
	}
	return nil
}

// ListOpen alertas sin resolver de la empresa.
func (r *ExpiryAlertRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.ExpiryAlert, error) {
	resolved := false
	list, _, err := r.List(ctx, entity.AlertFilter{CompanyID: companyID, Resolved: &resolved})
	return list, err
}

// List alertas filtradas; las más próximas a vencer primero.
func (r *ExpiryAlertRepo) List(ctx context.Context, f entity.AlertFilter) ([]*entity.ExpiryAlert, int, error) {
	where := squirrel.Eq{"company_id": f.CompanyID}
	if f.Resolved != nil {
		where["resolved"] = *f.Resolved
	}
	if f.Severity != "" {
		where["severity"] = f.Severity
	}

	countSQL, countArgs, err := builder().Select("COUNT(*)").From("expiry_alerts").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count alerts", err)
	}

	q := builder().Select(alertColumns...).From("expiry_alerts").Where(where).OrderBy("days_remaining ASC", "lot_number ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entity.ExpiryAlert, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, 0, mapError("list alerts", err)
	}
	return out, total, nil
}
