package settings_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/settings"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

func ptr[T any](v T) *T { return &v }

func TestGet_SinConfiguracionUsaValoresPorDefecto(t *testing.T) {
	uc := settings.NewUseCase(memory.NewStore().Repositories().Settings)

	got, err := uc.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationFIFO, got.ValuationMethod)
	assert.True(t, got.AutoReserve)
	assert.True(t, got.AutoReceive)
	assert.True(t, got.PreventNegativeStock)
	assert.False(t, got.AutoDeduct)
	assert.Equal(t, entity.DefaultExpiryWarningDays, got.ExpiryWarningDays)
	assert.True(t, got.UpdatedAt.IsZero())

	_, err = uc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_MezclaCamposPresentes(t *testing.T) {
	repo := memory.NewStore().Repositories().Settings
	uc := settings.NewUseCase(repo)
	ctx := context.Background()

	_, err := uc.Update(ctx, settings.UpdateInput{
		CompanyID: "c1", ActorID: "admin-1",
		ValuationMethod:   ptr(entity.ValuationLIFO),
		AutoDeduct:        ptr(true),
		ApprovalThreshold: ptr(decimal.NewFromInt(500)),
	})
	require.NoError(t, err)

	got, err := uc.Update(ctx, settings.UpdateInput{CompanyID: "c1", ActorID: "admin-2", ExpiryWarningDays: ptr(15)})
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationLIFO, got.ValuationMethod)
	assert.True(t, got.AutoDeduct)
	assert.True(t, got.ApprovalThreshold.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 15, got.ExpiryWarningDays)
	assert.Equal(t, "admin-2", got.UpdatedBy)
	assert.False(t, got.UpdatedAt.IsZero())

	stored, err := settings.Resolve(ctx, repo, "c1")
	require.NoError(t, err)
	assert.Equal(t, 15, stored.ExpiryWarningDays)

	other, err := uc.Get(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, entity.ValuationFIFO, other.ValuationMethod, "cada empresa tiene su configuración")
}

func TestUpdate_RechazaValoresInvalidos(t *testing.T) {
	repo := memory.NewStore().Repositories().Settings
	uc := settings.NewUseCase(repo)
	ctx := context.Background()

	cases := map[string]settings.UpdateInput{
		"metodo desconocido":      {CompanyID: "c1", ValuationMethod: ptr("promedio")},
		"umbral de dias negativo": {CompanyID: "c1", ExpiryWarningDays: ptr(-1)},
		"aprobacion negativa":     {CompanyID: "c1", ApprovalThreshold: ptr(decimal.NewFromInt(-1))},
		"tolerancia sobre 100":    {CompanyID: "c1", DiscrepancyTolerancePercentage: ptr(decimal.NewFromInt(101))},
		"sin empresa":             {ValuationMethod: ptr(entity.ValuationFIFO)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Update(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	stored, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, stored, "un update inválido no persiste nada")
}
