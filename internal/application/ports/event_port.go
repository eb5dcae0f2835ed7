package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados hacia colaboradores externos (notificaciones, reportes).
const (
	EventLotExpired           = "lot.expired"
	EventLotRecalled          = "lot.recalled"
	EventAlertRaised          = "alert.raised"
	EventAlertResolved        = "alert.resolved"
	EventReservationCommitted = "reservation.committed"
	EventReservationReleased  = "reservation.released"
)

// Event evento de dominio serializable. Subject es la llave de partición (lote o referencia de venta).
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	CompanyID  string         `json:"company_id"`
	Subject    string         `json:"subject"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// EventPublisher puerto de salida de eventos. Se invoca después del commit; un fallo de publicación
// no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
