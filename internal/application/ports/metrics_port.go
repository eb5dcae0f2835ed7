package ports

import "time"

// Resultados de reserva reportados a métricas.
const (
	OutcomeHeld         = "held"
	OutcomeIdempotent   = "idempotent"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeConflict     = "conflict"
	OutcomeCommitted    = "committed"
	OutcomeReleased     = "released"
	OutcomeError        = "error"
)

// EngineMetrics puerto de métricas del motor.
type EngineMetrics interface {
	ReservationOutcome(outcome string)
	ConflictRetried()
	ExpiryScanCompleted(duration time.Duration, lotsExpired, alertsUpserted int)
	OpenAlerts(companyID string, critical, warning int)
}

// NoopMetrics implementación vacía (tests, herramientas de línea de comandos).
type NoopMetrics struct{}

func (NoopMetrics) ReservationOutcome(string)                   {}
func (NoopMetrics) ConflictRetried()                            {}
func (NoopMetrics) ExpiryScanCompleted(time.Duration, int, int) {}
func (NoopMetrics) OpenAlerts(string, int, int)                 {}
