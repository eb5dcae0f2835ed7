package memory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

type settingsRepo struct{ binding }

var _ repository.SettingsRepository = (*settingsRepo)(nil)

func (r *settingsRepo) Get(_ context.Context, companyID string) (*entity.PolicySettings, error) {
	var out *entity.PolicySettings
	err := r.read(func(st *state) error {
		if s, ok := st.settings[companyID]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *settingsRepo) Upsert(_ context.Context, s *entity.PolicySettings) error {
	return r.write(func(st *state) error {
		cp := *s
		st.settings[s.CompanyID] = &cp
		return nil
	})
}
