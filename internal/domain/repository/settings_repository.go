package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// SettingsRepository puerto de la configuración de políticas por empresa.
// Get devuelve (nil, nil) si la empresa no tiene configuración guardada.
type SettingsRepository interface {
	Get(ctx context.Context, companyID string) (*entity.PolicySettings, error)
	Upsert(ctx context.Context, settings *entity.PolicySettings) error
}
