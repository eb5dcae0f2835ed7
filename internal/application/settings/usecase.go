package settings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// Resolve lee la configuración vigente de la empresa desde el repositorio recibido (pool o tx).
// Sin configuración guardada se usan los valores por defecto. No se cachea: cada operación lee la última.
func Resolve(ctx context.Context, repo repository.SettingsRepository, companyID string) (*entity.PolicySettings, error) {
	s, err := repo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return entity.DefaultPolicySettings(companyID), nil
	}
	return s, nil
}

// UpdateInput campos actualizables; nil mantiene el valor actual.
type UpdateInput struct {
	CompanyID                      string
	ActorID                        string
	ValuationMethod                *string
	PreferNearExpiry               *bool
	AutoReserve                    *bool
	AutoDeduct                     *bool
	AutoReceive                    *bool
	AutoReturn                     *bool
	PreventNegativeStock           *bool
	ExpiryWarningDays              *int
	ApprovalThreshold              *decimal.Decimal
	DiscrepancyTolerancePercentage *decimal.Decimal
}

// UseCase lectura y actualización explícita de PolicySettings por empresa.
type UseCase struct {
	repo repository.SettingsRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso de configuración.
func NewUseCase(repo repository.SettingsRepository) *UseCase {
	return &UseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Get devuelve la configuración vigente (o la por defecto).
func (uc *UseCase) Get(ctx context.Context, companyID string) (*entity.PolicySettings, error) {
	if companyID == "" {
		return nil, domain.ErrInvalidInput
	}
	return Resolve(ctx, uc.repo, companyID)
}

// Update aplica los campos presentes, valida y persiste. Visible para la siguiente operación del motor.
func (uc *UseCase) Update(ctx context.Context, in UpdateInput) (*entity.PolicySettings, error) {
	if in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	current, err := Resolve(ctx, uc.repo, in.CompanyID)
	if err != nil {
		return nil, err
	}
	next := *current
	if in.ValuationMethod != nil {
		next.ValuationMethod = *in.ValuationMethod
	}
	if in.PreferNearExpiry != nil {
		next.PreferNearExpiry = *in.PreferNearExpiry
	}
	if in.AutoReserve != nil {
		next.AutoReserve = *in.AutoReserve
	}
	if in.AutoDeduct != nil {
		next.AutoDeduct = *in.AutoDeduct
	}
	if in.AutoReceive != nil {
		next.AutoReceive = *in.AutoReceive
	}
	if in.AutoReturn != nil {
		next.AutoReturn = *in.AutoReturn
	}
	if in.PreventNegativeStock != nil {
		next.PreventNegativeStock = *in.PreventNegativeStock
	}
	if in.ExpiryWarningDays != nil {
		next.ExpiryWarningDays = *in.ExpiryWarningDays
	}
	if in.ApprovalThreshold != nil {
		next.ApprovalThreshold = *in.ApprovalThreshold
	}
	if in.DiscrepancyTolerancePercentage != nil {
		next.DiscrepancyTolerancePercentage = *in.DiscrepancyTolerancePercentage
	}
	if err := Validate(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = uc.now()
	next.UpdatedBy = in.ActorID
	if err := uc.repo.Upsert(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Validate reglas de consistencia de la configuración.
func Validate(s *entity.PolicySettings) error {
	if !entity.IsValidValuationMethod(s.ValuationMethod) {
		return domain.ErrInvalidInput
	}
	if s.ExpiryWarningDays < 0 || s.ExpiryWarningDays > 3650 {
		return domain.ErrInvalidInput
	}
	if s.ApprovalThreshold.IsNegative() {
		return domain.ErrInvalidInput
	}
	if s.DiscrepancyTolerancePercentage.IsNegative() || s.DiscrepancyTolerancePercentage.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidInput
	}
	return nil
}
