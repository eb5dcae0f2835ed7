package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

var settingsColumns = []string{
	"company_id", "valuation_method", "prefer_near_expiry", "auto_reserve", "auto_deduct",
	"auto_receive", "auto_return", "prevent_negative_stock", "expiry_warning_days",
	"approval_threshold", "discrepancy_tolerance_percentage", "updated_at", "updated_by",
}

// SettingsRepo configuración de políticas por empresa.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador de configuración.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get devuelve (nil, nil) si la empresa no tiene configuración guardada.
func (r *SettingsRepo) Get(ctx context.Context, companyID string) (*entity.PolicySettings, error) {
	sql, args, err := builder().Select(settingsColumns...).From("policy_settings").
		Where(squirrel.Eq{"company_id": companyID}).ToSql()
	if err != nil {
		return nil, err
	}
	var s entity.PolicySettings
	if err := pgxscan.Get(ctx, r.q, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError("get settings", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza la configuración de la empresa.
func (r *SettingsRepo) Upsert(ctx context.Context, s *entity.PolicySettings) error {
	sql, args, err := builder().Insert("policy_settings").Columns(settingsColumns...).Values(
		s.CompanyID, s.ValuationMethod, s.PreferNearExpiry, s.AutoReserve, s.AutoDeduct,
		s.AutoReceive, s.AutoReturn, s.PreventNegativeStock, s.ExpiryWarningDays,
		s.ApprovalThreshold, s.DiscrepancyTolerancePercentage, s.UpdatedAt, s.UpdatedBy,
	).Suffix(`ON CONFLICT (company_id) DO UPDATE SET
		valuation_method = EXCLUDED.valuation_method,
		prefer_near_expiry = EXCLUDED.prefer_near_expiry,
		auto_reserve = EXCLUDED.auto_reserve,
		auto_deduct = EXCLUDED.auto_deduct,
		auto_receive = EXCLUDED.auto_receive,
		auto_return = EXCLUDED.auto_return,
		prevent_negative_stock = EXCLUDED.prevent_negative_stock,
		expiry_warning_days = EXCLUDED.expiry_warning_days,
		approval_threshold = EXCLUDED.approval_threshold,
		discrepancy_tolerance_percentage = EXCLUDED.discrepancy_tolerance_percentage,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by`).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, sql, args...)
	return mapError("upsert settings", err)
}
