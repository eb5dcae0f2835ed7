package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// LotMovementRepository puerto del kardex de lotes. Solo inserción y lectura.
type LotMovementRepository interface {
	Create(ctx context.Context, movement *entity.LotMovement) error
	ListByLot(ctx context.Context, companyID, lotID string) ([]*entity.LotMovement, error)
}
