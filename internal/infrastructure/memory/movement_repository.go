package memory

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

type movementRepo struct{ binding }

var _ repository.LotMovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(_ context.Context, m *entity.LotMovement) error {
	return r.write(func(st *state) error {
		if _, ok := st.lots[m.LotID]; !ok {
			return domain.ErrNotFound
		}
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r *movementRepo) ListByLot(_ context.Context, companyID, lotID string) ([]*entity.LotMovement, error) {
	out := make([]*entity.LotMovement, 0)
	err := r.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID == companyID && m.LotID == lotID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
