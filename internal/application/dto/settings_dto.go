package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// SettingsResponse política vigente de la empresa.
type SettingsResponse struct {
	ValuationMethod                string          `json:"valuation_method"`
	PreferNearExpiry               bool            `json:"prefer_near_expiry"`
	AutoReserve                    bool            `json:"auto_reserve"`
	AutoDeduct                     bool            `json:"auto_deduct"`
	AutoReceive                    bool            `json:"auto_receive"`
	AutoReturn                     bool            `json:"auto_return"`
	PreventNegativeStock           bool            `json:"prevent_negative_stock"`
	ExpiryWarningDays              int             `json:"expiry_warning_days"`
	ApprovalThreshold              decimal.Decimal `json:"approval_threshold"`
	DiscrepancyTolerancePercentage decimal.Decimal `json:"discrepancy_tolerance_percentage"`
	UpdatedAt                      *time.Time      `json:"updated_at,omitempty"`
	UpdatedBy                      string          `json:"updated_by,omitempty"`
}

// SettingsFromEntity mapea la política.
func SettingsFromEntity(s *entity.PolicySettings) SettingsResponse {
	out := SettingsResponse{
		ValuationMethod:                s.ValuationMethod,
		PreferNearExpiry:               s.PreferNearExpiry,
		AutoReserve:                    s.AutoReserve,
		AutoDeduct:                     s.AutoDeduct,
		AutoReceive:                    s.AutoReceive,
		AutoReturn:                     s.AutoReturn,
		PreventNegativeStock:           s.PreventNegativeStock,
		ExpiryWarningDays:              s.ExpiryWarningDays,
		ApprovalThreshold:              s.ApprovalThreshold,
		DiscrepancyTolerancePercentage: s.DiscrepancyTolerancePercentage,
		UpdatedBy:                      s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// UpdateSettingsRequest body para PUT /api/settings; los campos omitidos no cambian.
type UpdateSettingsRequest struct {
	ValuationMethod                *string          `json:"valuation_method,omitempty" validate:"omitempty,oneof=fifo lifo weighted-average"`
	PreferNearExpiry               *bool            `json:"prefer_near_expiry,omitempty"`
	AutoReserve                    *bool            `json:"auto_reserve,omitempty"`
	AutoDeduct                     *bool            `json:"auto_deduct,omitempty"`
	AutoReceive                    *bool            `json:"auto_receive,omitempty"`
	AutoReturn                     *bool            `json:"auto_return,omitempty"`
	PreventNegativeStock           *bool            `json:"prevent_negative_stock,omitempty"`
	ExpiryWarningDays              *int             `json:"expiry_warning_days,omitempty" validate:"omitempty,min=0,max=3650"`
	ApprovalThreshold              *decimal.Decimal `json:"approval_threshold,omitempty"`
	DiscrepancyTolerancePercentage *decimal.Decimal `json:"discrepancy_tolerance_percentage,omitempty"`
}

// ToInput convierte el request en la entrada del caso de uso.
func (r UpdateSettingsRequest) ToInput(companyID, actorID string) settings.UpdateInput {
	return settings.UpdateInput{
		CompanyID:                      companyID,
		ActorID:                        actorID,
		ValuationMethod:                r.ValuationMethod,
		PreferNearExpiry:               r.PreferNearExpiry,
		AutoReserve:                    r.AutoReserve,
		AutoDeduct:                     r.AutoDeduct,
		AutoReceive:                    r.AutoReceive,
		AutoReturn:                     r.AutoReturn,
		PreventNegativeStock:           r.PreventNegativeStock,
		ExpiryWarningDays:              r.ExpiryWarningDays,
		ApprovalThreshold:              r.ApprovalThreshold,
		DiscrepancyTolerancePercentage: r.DiscrepancyTolerancePercentage,
	}
}

// StatsResponse agregados del motor de lotes.
type StatsResponse struct {
	TotalLots       int             `json:"total_lots"`
	ActiveLots      int             `json:"active_lots"`
	QuarantineLots  int             `json:"quarantine_lots"`
	ExpiredLots     int             `json:"expired_lots"`
	RecalledLots    int             `json:"recalled_lots"`
	CriticalAlerts  int             `json:"critical_alerts"`
	WarningAlerts   int             `json:"warning_alerts"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
}

// StatsFrom mapea los agregados.
func StatsFrom(s *repository.InventoryStats) StatsResponse {
	return StatsResponse{
		TotalLots:       s.TotalLots,
		ActiveLots:      s.ActiveLots,
		QuarantineLots:  s.QuarantineLots,
		ExpiredLots:     s.ExpiredLots,
		RecalledLots:    s.RecalledLots,
		CriticalAlerts:  s.CriticalAlerts,
		WarningAlerts:   s.WarningAlerts,
		TotalStockValue: s.TotalStockValue,
	}
}
