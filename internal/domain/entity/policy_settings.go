package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de valoración.
const (
	ValuationFIFO            = "fifo"
	ValuationLIFO            = "lifo"
	ValuationWeightedAverage = "weighted-average"
)

// DefaultExpiryWarningDays umbral por defecto de la alerta warning.
const DefaultExpiryWarningDays = 30

// PolicySettings configuración por empresa (tenant). Se lee en cada operación; no se cachea.
type PolicySettings struct {
	CompanyID                      string          `db:"company_id"`
	ValuationMethod                string          `db:"valuation_method"`
	PreferNearExpiry               bool            `db:"prefer_near_expiry"`
	AutoReserve                    bool            `db:"auto_reserve"`
	AutoDeduct                     bool            `db:"auto_deduct"`
	AutoReceive                    bool            `db:"auto_receive"`
	AutoReturn                     bool            `db:"auto_return"`
	PreventNegativeStock           bool            `db:"prevent_negative_stock"`
	ExpiryWarningDays              int             `db:"expiry_warning_days"`
	ApprovalThreshold              decimal.Decimal `db:"approval_threshold"` // 0 = sin aprobación
	DiscrepancyTolerancePercentage decimal.Decimal `db:"discrepancy_tolerance_percentage"`
	UpdatedAt                      time.Time       `db:"updated_at"`
	UpdatedBy                      string          `db:"updated_by"`
}

// DefaultPolicySettings valores usados cuando la empresa aún no guardó su configuración.
func DefaultPolicySettings(companyID string) *PolicySettings {
	return &PolicySettings{
		CompanyID:                      companyID,
		ValuationMethod:                ValuationFIFO,
		AutoReserve:                    true,
		AutoReceive:                    true,
		PreventNegativeStock:           true,
		ExpiryWarningDays:              DefaultExpiryWarningDays,
		ApprovalThreshold:              decimal.Zero,
		DiscrepancyTolerancePercentage: decimal.NewFromInt(5),
	}
}

// IsValidValuationMethod valida el método de valoración.
func IsValidValuationMethod(m string) bool {
	switch m {
	case ValuationFIFO, ValuationLIFO, ValuationWeightedAverage:
		return true
	}
	return false
}
