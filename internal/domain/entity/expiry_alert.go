package entity

import "time"

// Severidades de una alerta de vencimiento.
const (
	AlertSeverityCritical = "critical"
	AlertSeverityWarning  = "warning"
	AlertSeverityInfo     = "info"
)

// Acciones de resolución.
const (
	AlertActionNone      = "none"
	AlertActionPromotion = "promotion"
	AlertActionDonation  = "donation"
	AlertActionDisposal  = "disposal"
)

// ExpiryAlert proyección derivada del estado del lote. Solo la resolución (ActionTaken, Resolved)
// es decisión humana y se conserva entre recálculos. Una alerta por lote (LotID único).
type ExpiryAlert struct {
	ID            string     `db:"id"`
	CompanyID     string     `db:"company_id"`
	ProductID     string     `db:"product_id"`
	LotID         string     `db:"lot_id"`
	LotNumber     string     `db:"lot_number"`
	DaysRemaining int        `db:"days_remaining"`
	Severity      string     `db:"severity"`
	ActionTaken   string     `db:"action_taken"`
	Resolved      bool       `db:"resolved"`
	ResolvedBy    string     `db:"resolved_by"`
	ResolvedAt    *time.Time `db:"resolved_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// IsManuallyResolved indica que la resolución vino de una acción explícita y no debe reabrirse.
func (a *ExpiryAlert) IsManuallyResolved() bool {
	return a.Resolved && a.ActionTaken != "" && a.ActionTaken != AlertActionNone
}

// AlertFilter criterios para listar alertas.
type AlertFilter struct {
	CompanyID string
	Resolved  *bool
	Severity  string
	Limit     int
	Offset    int
}

// IsValidAlertAction valida una acción de resolución (none no es una resolución).
func IsValidAlertAction(action string) bool {
	switch action {
	case AlertActionPromotion, AlertActionDonation, AlertActionDisposal:
		return true
	}
	return false
}
