package ports

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// Repositories agrupa los repositorios del motor de lotes. Fuera de una transacción se usa para
// lecturas; dentro de TxRunner.Run cada repositorio queda atado a la misma transacción.
type Repositories struct {
	Lots         repository.LotRepository
	Movements    repository.LotMovementRepository
	Reservations repository.ReservationRepository
	Alerts       repository.ExpiryAlertRepository
	Settings     repository.SettingsRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error, o el contexto vence antes del commit, se hace Rollback completo.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
