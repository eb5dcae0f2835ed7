package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes (Lot Store).
// Las lecturas ForUpdate bloquean las filas hasta el fin de la transacción.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Lot, error)
	GetByNumber(ctx context.Context, companyID, productID, lotNumber string) (*entity.Lot, error)
	List(ctx context.Context, filter entity.LotFilter) ([]*entity.Lot, int, error)
	Update(ctx context.Context, lot *entity.Lot) error

	// GetForUpdate bloquea la fila del lote (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Lot, error)
	// ListForUpdate bloquea varias filas en orden de id para evitar deadlocks.
	ListForUpdate(ctx context.Context, companyID string, ids []string) ([]*entity.Lot, error)
	// ListCandidatesForUpdate bloquea los lotes activos del producto en la bodega.
	ListCandidatesForUpdate(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error)
	// ListCandidates lectura sin bloqueo usada por el planificador sin efectos laterales.
	ListCandidates(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error)

	// ListActive devuelve todos los lotes activos de la empresa (barrido de vencimientos).
	ListActive(ctx context.Context, companyID string) ([]*entity.Lot, error)
	// ListCompanyIDs empresas con al menos un lote.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
