package postgres

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo agregados de lotes y alertas.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador de agregados.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

const statsQuery = `
	SELECT
		COUNT(*) AS total_lots,
		COUNT(*) FILTER (WHERE status = 'active') AS active_lots,
		COUNT(*) FILTER (WHERE status = 'quarantine') AS quarantine_lots,
		COUNT(*) FILTER (WHERE status = 'expired') AS expired_lots,
		COUNT(*) FILTER (WHERE status = 'recalled') AS recalled_lots,
		COALESCE(SUM(quantity_on_hand * cost_price) FILTER (WHERE status = 'active'), 0) AS total_stock_value,
		(SELECT COUNT(*) FROM expiry_alerts a
			WHERE a.company_id = $1 AND NOT a.resolved AND a.severity = 'critical') AS critical_alerts,
		(SELECT COUNT(*) FROM expiry_alerts a
			WHERE a.company_id = $1 AND NOT a.resolved AND a.severity = 'warning') AS warning_alerts
	FROM lots
	WHERE company_id = $1`

// GetStats calcula los agregados de la empresa.
func (r *StatsRepo) GetStats(ctx context.Context, companyID string) (*repository.InventoryStats, error) {
	var s repository.InventoryStats
	if err := pgxscan.Get(ctx, r.q, &s, statsQuery, companyID); err != nil {
		return nil, mapError("get stats", err)
	}
	return &s, nil
}
