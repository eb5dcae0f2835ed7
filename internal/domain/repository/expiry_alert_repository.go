package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ExpiryAlertRepository puerto de alertas de vencimiento. Una fila por lote.
type ExpiryAlertRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.ExpiryAlert, error)
	GetByLot(ctx context.Context, companyID, lotID string) (*entity.ExpiryAlert, error)
	// Upsert inserta o actualiza por lot_id.
	Upsert(ctx context.Context, alert *entity.ExpiryAlert) error
	ListOpen(ctx context.Context, companyID string) ([]*entity.ExpiryAlert, error)
	List(ctx context.Context, filter entity.AlertFilter) ([]*entity.ExpiryAlert, int, error)
}
