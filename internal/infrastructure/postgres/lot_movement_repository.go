package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.LotMovementRepository = (*LotMovementRepo)(nil)

var movementColumns = []string{
	"id", "company_id", "lot_id", "type", "quantity", "from_warehouse_id", "to_warehouse_id",
	"reference", "reason", "actor_id", "created_at",
}

// LotMovementRepo kardex de lotes. Solo INSERT y SELECT; la tabla no admite UPDATE ni DELETE.
type LotMovementRepo struct {
	q Querier
}

// NewLotMovementRepository construye el adaptador del kardex.
func NewLotMovementRepository(q Querier) *LotMovementRepo {
	return &LotMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *LotMovementRepo) Create(ctx context.Context, m *entity.LotMovement) error {
	sql, args, err := builder().Insert("lot_movements").Columns(movementColumns...).Values(
		m.ID, m.CompanyID, m.LotID, m.Type, m.Quantity, m.FromWarehouseID, m.ToWarehouseID,
		m.Reference, m.Reason, m.ActorID, m.CreatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, sql, args...)
	return mapError("insert lot movement", err)
}

// ListByLot movimientos del lote en orden de inserción.
func (r *LotMovementRepo) ListByLot(ctx context.Context, companyID, lotID string) ([]*entity.LotMovement, error) {
	sql, args, err := builder().Select(movementColumns...).From("lot_movements").
		Where(squirrel.Eq{"company_id": companyID, "lot_id": lotID}).
		OrderBy("seq").ToSql()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.LotMovement, 0)
	if err := pgxscan.Select(ctx, r.q, &out, sql, args...); err != nil {
		return nil, mapError("list lot movements", err)
	}
	return out, nil
}
