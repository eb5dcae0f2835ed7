package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

var lotColumns = []string{
	"id", "company_id", "product_id", "lot_number", "manufacturing_date", "expiry_date",
	"initial_quantity", "quantity_on_hand", "quantity_reserved", "cost_price", "origin_id",
	"warehouse_id", "location", "status", "quality_certificate_ref", "created_at", "updated_at",
}

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserta un lote. (product_id, lot_number) es único.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	sql, args, err := builder().Insert("lots").Columns(lotColumns...).Values(
		l.ID, l.CompanyID, l.ProductID, l.LotNumber, l.ManufacturingDate, l.ExpiryDate,
		l.InitialQuantity, l.QuantityOnHand, l.QuantityReserved, l.CostPrice, l.OriginID,
		l.WarehouseID, l.Location, l.Status, l.QualityCertificateRef, l.CreatedAt, l.UpdatedAt,
	).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, sql, args...)
	return mapError("insert lot", err)
}

// GetByID obtiene un lote de la empresa. Devuelve (nil, nil) si no existe.
func (r *LotRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "id": id}, "", "get lot")
}

// GetByNumber busca un lote por número dentro del producto.
func (r *LotRepo) GetByNumber(ctx context.Context, companyID, productID, lotNumber string) (*entity.Lot, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "product_id": productID, "lot_number": lotNumber}, "", "get lot by number")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	return r.getOne(ctx, squirrel.Eq{"company_id": companyID, "id": id}, "FOR UPDATE", "get lot for update")
}

func (r *LotRepo) getOne(ctx context.Context, where squirrel.Eq, suffix, op string) (*entity.Lot, error) {
	q := builder().Select(lotColumns...).From("lots").Where(where)
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var l entity.Lot
	if err := pgxscan.Get(ctx, r.q, &l, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return &l, nil
}

// List lista lotes con filtros; orden por vencimiento y número de lote.
func (r *LotRepo) List(ctx context.Context, f entity.LotFilter) ([]*entity.Lot, int, error) {
	where := squirrel.And{squirrel.Eq{"company_id": f.CompanyID}}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"product_id": f.ProductID})
	}
	if f.WarehouseID != "" {
		where = append(where, squirrel.Eq{"warehouse_id": f.WarehouseID})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}
	if f.ExpiringWithinDays != nil {
		today := f.Today
		if today.IsZero() {
			today = time.Now()
		}
		limit := inventory.DateOnly(today).AddDate(0, 0, *f.ExpiringWithinDays)
		where = append(where, squirrel.LtOrEq{"expiry_date": limit})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"lot_number": like},
			squirrel.ILike{"location": like},
			squirrel.ILike{"quality_certificate_ref": like},
		})
	}

	countSQL, countArgs, err := builder().Select("COUNT(*)").From("lots").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count lots", err)
	}

	q := builder().Select(lotColumns...).From("lots").Where(where).OrderBy("expiry_date ASC", "lot_number ASC", "id ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	lots, err := r.selectLots(ctx, q, "list lots")
	return lots, total, err
}

// Update persiste cantidades, ubicación y estado del lote.
func (r *LotRepo) Update(ctx context.Context, l *entity.Lot) error {
	sql, args, err := builder().Update("lots").SetMap(map[string]any{
		"quantity_on_hand":        l.QuantityOnHand,
		"quantity_reserved":       l.QuantityReserved,
		"warehouse_id":            l.WarehouseID,
		"location":                l.Location,
		"status":                  l.Status,
		"quality_certificate_ref": l.QualityCertificateRef,
		"updated_at":              l.UpdatedAt,
	}).Where(squirrel.Eq{"company_id": l.CompanyID, "id": l.ID}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return mapError("update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListForUpdate bloquea los lotes indicados en orden de id.
func (r *LotRepo) ListForUpdate(ctx context.Context, companyID string, ids []string) ([]*entity.Lot, error) {
	if len(ids) == 0 {
		return []*entity.Lot{}, nil
	}
	q := builder().Select(lotColumns...).From("lots").
		Where(squirrel.Eq{"company_id": companyID, "id": ids}).
		OrderBy("id").Suffix("FOR UPDATE")
	return r.selectLots(ctx, q, "list lots for update")
}

// ListCandidatesForUpdate bloquea los lotes activos del producto en la bodega, en orden de id.
func (r *LotRepo) ListCandidatesForUpdate(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error) {
	return r.candidates(ctx, companyID, productID, warehouseID, "FOR UPDATE")
}

// ListCandidates lotes activos del producto en la bodega, sin bloqueo.
func (r *LotRepo) ListCandidates(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error) {
	return r.candidates(ctx, companyID, productID, warehouseID, "")
}

func (r *LotRepo) candidates(ctx context.Context, companyID, productID, warehouseID, suffix string) ([]*entity.Lot, error) {
	q := builder().Select(lotColumns...).From("lots").
		Where(squirrel.Eq{
			"company_id":   companyID,
			"product_id":   productID,
			"warehouse_id": warehouseID,
			"status":       entity.LotStatusActive,
		}).
		OrderBy("id")
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	return r.selectLots(ctx, q, "list candidate lots")
}

// ListActive lotes activos de la empresa.
func (r *LotRepo) ListActive(ctx context.Context, companyID string) ([]*entity.Lot, error) {
	q := builder().Select(lotColumns...).From("lots").
		Where(squirrel.Eq{"company_id": companyID, "status": entity.LotStatusActive}).
		OrderBy("id")
	return r.selectLots(ctx, q, "list active lots")
}

// ListCompanyIDs empresas con lotes registrados.
func (r *LotRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := pgxscan.Select(ctx, r.q, &ids, `SELECT DISTINCT company_id FROM lots ORDER BY company_id`); err != nil {
		return nil, mapError("list companies", err)
	}
	return ids, nil
}

func (r *LotRepo) selectLots(ctx context.Context, q squirrel.SelectBuilder, op string) ([]*entity.Lot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	lots := make([]*entity.Lot, 0)
	if err := pgxscan.Select(ctx, r.q, &lots, sql, args...); err != nil {
		return nil, mapError(op, err)
	}
	return lots, nil
}
