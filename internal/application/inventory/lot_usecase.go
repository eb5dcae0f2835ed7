package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// LotUseCase casos de uso del Lot Store y del kardex: alta, ajustes, conteos, traslados y estados.
// Toda mutación de cantidad escribe su movimiento en la misma transacción.
type LotUseCase struct {
	Deps
	statsRepo repository.StatsRepository
}

// NewLotUseCase construye el caso de uso de lotes.
func NewLotUseCase(deps Deps, statsRepo repository.StatsRepository) *LotUseCase {
	deps.Normalize()
	return &LotUseCase{Deps: deps, statsRepo: statsRepo}
}

// CreateLotInput datos de alta de un lote.
type CreateLotInput struct {
	CompanyID             string
	ActorID               string
	ProductID             string
	LotNumber             string
	ManufacturingDate     time.Time
	ExpiryDate            time.Time
	Quantity              decimal.Decimal
	CostPrice             decimal.Decimal
	OriginID              string
	WarehouseID           string
	Location              string
	QualityCertificateRef string
	// Status inicial: active o quarantine (vacío = active).
	Status string
}

// CreateLot registra un lote nuevo. La cantidad inicial queda como base del kardex (sin movimiento).
func (uc *LotUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	status := in.Status
	if status == "" {
		status = entity.LotStatusActive
	}
	if status != entity.LotStatusActive && status != entity.LotStatusQuarantine {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.CheckCatalog(ctx, in.CompanyID, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := uc.Clock.Now()
	lot := &entity.Lot{
		ID:                    uuid.New().String(),
		CompanyID:             in.CompanyID,
		ProductID:             in.ProductID,
		LotNumber:             strings.TrimSpace(in.LotNumber),
		ManufacturingDate:     inventory.DateOnly(in.ManufacturingDate),
		ExpiryDate:            inventory.DateOnly(in.ExpiryDate),
		InitialQuantity:       in.Quantity,
		QuantityOnHand:        in.Quantity,
		QuantityReserved:      decimal.Zero,
		CostPrice:             in.CostPrice,
		OriginID:              in.OriginID,
		WarehouseID:           in.WarehouseID,
		Location:              in.Location,
		Status:                status,
		QualityCertificateRef: in.QualityCertificateRef,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := inventory.ValidateNewLot(lot); err != nil {
		return nil, err
	}

	err := uc.RunTx(ctx, func(repos ports.Repositories) error {
		existing, err := repos.Lots.GetByNumber(ctx, lot.CompanyID, lot.ProductID, lot.LotNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return repos.Lots.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("company_id", lot.CompanyID).Str("lot_id", lot.ID).Str("lot_number", lot.LotNumber).
		Str("status", lot.Status).Msg("lote creado")
	return lot, nil
}

// ReceiveLot recepción de mercancía: el lote entra active si AutoReceive, si no queda en quarantine.
func (uc *LotUseCase) ReceiveLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	policy, err := settings.Resolve(ctx, uc.Repos.Settings, in.CompanyID)
	if err != nil {
		return nil, err
	}
	in.Status = entity.LotStatusQuarantine
	if policy.AutoReceive {
		in.Status = entity.LotStatusActive
	}
	return uc.CreateLot(ctx, in)
}

// GetLot devuelve un lote de la empresa.
func (uc *LotUseCase) GetLot(ctx context.Context, companyID, lotID string) (*entity.Lot, error) {
	lot, err := uc.Repos.Lots.GetByID(ctx, companyID, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

// ListLots lista lotes con filtros y paginación.
func (uc *LotUseCase) ListLots(ctx context.Context, filter entity.LotFilter) ([]*entity.Lot, int, error) {
	if filter.CompanyID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Today.IsZero() {
		filter.Today = uc.Clock.Now()
	}
	return uc.Repos.Lots.List(ctx, filter)
}

// AdjustInput ajuste manual de cantidad de un lote.
type AdjustInput struct {
	CompanyID string
	ActorID   string
	LotID     string
	Type      string // entry, exit o adjustment (vacío = adjustment)
	Delta     decimal.Decimal
	Reason    string
	Reference string
	Approved  bool
}

// AdjustQuantity aplica un delta con signo al lote y lo registra en el kardex en la misma transacción.
func (uc *LotUseCase) AdjustQuantity(ctx context.Context, in AdjustInput) (*entity.LotMovement, error) {
	if in.Type == "" {
		in.Type = entity.MovementTypeAdjustment
	}
	if in.LotID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.ValidateMovementDelta(in.Type, in.Delta); err != nil {
		return nil, err
	}

	var movement *entity.LotMovement
	err := uc.WithRetry(ctx, "adjust", func() error {
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			policy, err := settings.Resolve(ctx, repos.Settings, in.CompanyID)
			if err != nil {
				return err
			}
			lot, err := lockLot(ctx, repos, in.CompanyID, in.LotID)
			if err != nil {
				return err
			}
			applied, err := inventory.ApplyDelta(lot, in.Delta, policy.PreventNegativeStock)
			if err != nil {
				return err
			}
			if applied.IsZero() {
				return domain.ErrNegativeStock
			}
			if !in.Approved && inventory.RequiresValueApproval(lot, applied, policy.ApprovalThreshold) {
				return domain.ErrApprovalRequired
			}
			movement, err = uc.applyMovement(ctx, repos, lot, in.Type, applied, in.ActorID, in.Reference, in.Reason)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("company_id", in.CompanyID).Str("lot_id", in.LotID).Str("type", movement.Type).
		Str("quantity", movement.Quantity.String()).Msg("ajuste de lote registrado")
	return movement, nil
}

// CountInput conteo físico de un lote.
type CountInput struct {
	CompanyID       string
	ActorID         string
	LotID           string
	CountedQuantity decimal.Decimal
	Reason          string
	Approved        bool
}

// CountLot iguala la cantidad en mano a lo contado. Una diferencia mayor a la tolerancia exige aprobación.
// Devuelve nil si el conteo coincide con lo registrado.
func (uc *LotUseCase) CountLot(ctx context.Context, in CountInput) (*entity.LotMovement, error) {
	if in.LotID == "" || in.CountedQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	reason := in.Reason
	if reason == "" {
		reason = "conteo físico"
	}

	var movement *entity.LotMovement
	err := uc.WithRetry(ctx, "count", func() error {
		movement = nil
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			policy, err := settings.Resolve(ctx, repos.Settings, in.CompanyID)
			if err != nil {
				return err
			}
			lot, err := lockLot(ctx, repos, in.CompanyID, in.LotID)
			if err != nil {
				return err
			}
			delta := in.CountedQuantity.Sub(lot.QuantityOnHand)
			if delta.IsZero() {
				return nil
			}
			if !in.Approved {
				pct := inventory.DiscrepancyPercentage(lot.QuantityOnHand, in.CountedQuantity)
				if pct.GreaterThan(policy.DiscrepancyTolerancePercentage) ||
					inventory.RequiresValueApproval(lot, delta, policy.ApprovalThreshold) {
					return domain.ErrApprovalRequired
				}
			}
			applied, err := inventory.ApplyDelta(lot, delta, true)
			if err != nil {
				return err
			}
			movement, err = uc.applyMovement(ctx, repos, lot, entity.MovementTypeAdjustment, applied, in.ActorID, "", reason)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// TransferInput traslado de un lote completo a otra bodega.
type TransferInput struct {
	CompanyID     string
	ActorID       string
	LotID         string
	ToWarehouseID string
	Location      string
	Reason        string
}

// TransferLot mueve el lote a otra bodega de la empresa. Solo lotes sin reservas held;
// el movimiento transfer tiene delta 0 y guarda origen y destino.
func (uc *LotUseCase) TransferLot(ctx context.Context, in TransferInput) (*entity.LotMovement, error) {
	if in.LotID == "" || in.ToWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(ctx, in.CompanyID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	var movement *entity.LotMovement
	err := uc.WithRetry(ctx, "transfer", func() error {
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			lot, err := lockLot(ctx, repos, in.CompanyID, in.LotID)
			if err != nil {
				return err
			}
			if lot.WarehouseID == in.ToWarehouseID {
				return domain.ErrInvalidInput
			}
			if lot.IsTerminal() || lot.QuantityReserved.IsPositive() {
				return domain.ErrInvalidState
			}
			now := uc.Clock.Now()
			movement = &entity.LotMovement{
				ID:              uuid.New().String(),
				CompanyID:       lot.CompanyID,
				LotID:           lot.ID,
				Type:            entity.MovementTypeTransfer,
				Quantity:        decimal.Zero,
				FromWarehouseID: lot.WarehouseID,
				ToWarehouseID:   in.ToWarehouseID,
				Reason:          in.Reason,
				ActorID:         in.ActorID,
				CreatedAt:       now,
			}
			lot.WarehouseID = in.ToWarehouseID
			if in.Location != "" {
				lot.Location = in.Location
			}
			lot.UpdatedAt = now
			if err := repos.Lots.Update(ctx, lot); err != nil {
				return err
			}
			return repos.Movements.Create(ctx, movement)
		})
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ChangeStatusInput cambio manual de estado.
type ChangeStatusInput struct {
	CompanyID string
	ActorID   string
	LotID     string
	Status    string
	Reason    string
}

// ChangeStatus aplica una transición manual (active <-> quarantine, cualquiera -> recalled).
// El retiro libera las reservas held del lote; salir de active cierra su alerta abierta.
func (uc *LotUseCase) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*entity.Lot, error) {
	if in.LotID == "" || in.Status == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		lot    *entity.Lot
		events []ports.Event
	)
	err := uc.WithRetry(ctx, "change_status", func() error {
		events = nil
		return uc.RunTx(ctx, func(repos ports.Repositories) error {
			var err error
			lot, err = lockLot(ctx, repos, in.CompanyID, in.LotID)
			if err != nil {
				return err
			}
			if lot.Status == in.Status {
				return nil
			}
			if !inventory.CanTransition(lot.Status, in.Status) {
				return domain.ErrInvalidState
			}
			now := uc.Clock.Now()
			lot.Status = in.Status
			lot.UpdatedAt = now
			if in.Status == entity.LotStatusRecalled {
				released, err := ReleaseHeldForLot(ctx, repos, lot, now)
				if err != nil {
					return err
				}
				for _, r := range released {
					events = append(events, ReservationEvent(r, now))
				}
				events = append(events, LotStatusEvent(ports.EventLotRecalled, lot, now))
			}
			if in.Status != entity.LotStatusActive {
				resolved, err := AutoResolveAlert(ctx, repos, lot.CompanyID, lot.ID, now)
				if err != nil {
					return err
				}
				if resolved != nil {
					events = append(events, AlertEvent(ports.EventAlertResolved, resolved, now))
				}
			}
			return repos.Lots.Update(ctx, lot)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Publish(ctx, events)
	uc.Log.Info().Str("company_id", lot.CompanyID).Str("lot_id", lot.ID).Str("status", lot.Status).
		Str("reason", in.Reason).Msg("estado de lote actualizado")
	return lot, nil
}

// GetLotMovements kardex del lote en orden cronológico.
func (uc *LotUseCase) GetLotMovements(ctx context.Context, companyID, lotID string) ([]*entity.LotMovement, error) {
	if _, err := uc.GetLot(ctx, companyID, lotID); err != nil {
		return nil, err
	}
	return uc.Repos.Movements.ListByLot(ctx, companyID, lotID)
}

// ReconcileLot compara la cantidad del lote con la suma de su kardex.
func (uc *LotUseCase) ReconcileLot(ctx context.Context, companyID, lotID string) (*inventory.Reconciliation, error) {
	lot, err := uc.GetLot(ctx, companyID, lotID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.Repos.Movements.ListByLot(ctx, companyID, lotID)
	if err != nil {
		return nil, err
	}
	r := inventory.Reconcile(lot, movements)
	if !r.Consistent {
		uc.Log.Warn().Str("company_id", companyID).Str("lot_id", lotID).Str("difference", r.Difference.String()).
			Msg("kardex inconsistente con la cantidad del lote")
	}
	return &r, nil
}

// GetStats agregados de lotes y alertas de la empresa.
func (uc *LotUseCase) GetStats(ctx context.Context, companyID string) (*repository.InventoryStats, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.statsRepo.GetStats(ctx, companyID)
}

// applyMovement suma delta al lote bloqueado y escribe su movimiento.
func (uc *LotUseCase) applyMovement(
	ctx context.Context,
	repos ports.Repositories,
	lot *entity.Lot,
	movementType string,
	delta decimal.Decimal,
	actorID, reference, reason string,
) (*entity.LotMovement, error) {
	return recordMovement(ctx, repos, lot, movementType, delta, actorID, reference, reason, uc.Clock.Now())
}
