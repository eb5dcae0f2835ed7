package repository

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ReservationRepository puerto de persistencia de reservas. Clave única (company_id, sale_reference, lot_id).
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	Get(ctx context.Context, companyID, saleReference, lotID string) (*entity.Reservation, error)
	ListByReference(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error)
	// ListByReferenceForUpdate bloquea las reservas de la referencia.
	ListByReferenceForUpdate(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error)
	ListHeldByLot(ctx context.Context, companyID, lotID string) ([]*entity.Reservation, error)
	// ListHeldBefore reservas held creadas antes de cutoff (todas las empresas).
	ListHeldBefore(ctx context.Context, cutoff time.Time) ([]*entity.Reservation, error)
	Update(ctx context.Context, reservation *entity.Reservation) error
}
