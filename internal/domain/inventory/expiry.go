package inventory

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// CriticalExpiryDays por debajo de este número de días la alerta es critical.
const CriticalExpiryDays = 7

// ExpiryOutcome resultado de clasificar un lote activo.
type ExpiryOutcome int

const (
	ExpiryNoAlert ExpiryOutcome = iota
	ExpiryWarning
	ExpiryCritical
	ExpiryExpired // el lote debe pasar a expired; no genera alerta
)

// DateOnly trunca una fecha al día calendario en UTC.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysToExpire días enteros entre hoy y el vencimiento (negativo si ya venció).
func DaysToExpire(expiryDate, today time.Time) int {
	return int(DateOnly(expiryDate).Sub(DateOnly(today)).Hours() / 24)
}

// ClassifyExpiry clasifica los días restantes con el umbral warningDays de la política.
func ClassifyExpiry(daysToExpire, warningDays int) ExpiryOutcome {
	switch {
	case daysToExpire < 0:
		return ExpiryExpired
	case daysToExpire < CriticalExpiryDays:
		return ExpiryCritical
	case daysToExpire < warningDays:
		return ExpiryWarning
	default:
		return ExpiryNoAlert
	}
}

// Severity severidad de alerta correspondiente al resultado ("" si no aplica).
func (o ExpiryOutcome) Severity() string {
	switch o {
	case ExpiryCritical:
		return entity.AlertSeverityCritical
	case ExpiryWarning:
		return entity.AlertSeverityWarning
	}
	return ""
}

// IsTracked indica si el lote forma parte del conjunto vigilado por alertas de vencimiento.
func IsTracked(l *entity.Lot) bool {
	return l.Status == entity.LotStatusActive && l.QuantityOnHand.IsPositive()
}
