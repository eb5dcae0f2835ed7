package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lotes-api/internal/application/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher registra los eventos en el log. Se usa cuando no hay brokers configurados.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish escribe una línea por evento.
func (p *LogPublisher) Publish(_ context.Context, events ...ports.Event) error {
	for _, e := range events {
		p.log.Info().Str("event_id", e.ID).Str("event_type", e.Type).Str("company_id", e.CompanyID).
			Str("subject", e.Subject).Interface("data", e.Data).Msg("evento")
	}
	return nil
}
