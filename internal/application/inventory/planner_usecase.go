package inventory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
)

// PlannerUseCase expone el planificador de asignación sin efectos laterales.
type PlannerUseCase struct {
	Deps
}

// NewPlannerUseCase construye el caso de uso del planificador.
func NewPlannerUseCase(deps Deps) *PlannerUseCase {
	deps.Normalize()
	return &PlannerUseCase{Deps: deps}
}

// Plan calcula qué lotes cubrirían la solicitud con la política vigente. No retiene stock.
// Un producto o bodega desconocidos para la empresa devuelven ErrNotFound.
func (uc *PlannerUseCase) Plan(ctx context.Context, companyID string, req inventory.AllocationRequest) (*inventory.AllocationPlan, error) {
	if err := uc.CheckCatalog(ctx, companyID, req.ProductID, req.WarehouseID); err != nil {
		return nil, err
	}
	policy, err := settings.Resolve(ctx, uc.Repos.Settings, companyID)
	if err != nil {
		return nil, err
	}
	lots, err := uc.Repos.Lots.ListCandidates(ctx, companyID, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	return inventory.PlanAllocation(lots, req, policy, uc.Clock.Now())
}
