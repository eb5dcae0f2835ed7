package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

type alertRepo struct{ binding }

var _ repository.ExpiryAlertRepository = (*alertRepo)(nil)

func (r *alertRepo) GetByID(_ context.Context, companyID, id string) (*entity.ExpiryAlert, error) {
	var out *entity.ExpiryAlert
	err := r.read(func(st *state) error {
		for _, a := range st.alerts {
			if a.ID == id && a.CompanyID == companyID {
				out = copyAlert(a)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *alertRepo) GetByLot(_ context.Context, companyID, lotID string) (*entity.ExpiryAlert, error) {
	var out *entity.ExpiryAlert
	err := r.read(func(st *state) error {
		if a, ok := st.alerts[lotID]; ok && a.CompanyID == companyID {
			out = copyAlert(a)
		}
		return nil
	})
	return out, err
}

// Upsert conserva el id y la fecha de creación de la alerta existente del lote.
func (r *alertRepo) Upsert(_ context.Context, alert *entity.ExpiryAlert) error {
	return r.write(func(st *state) error {
		cp := copyAlert(alert)
		if current, ok := st.alerts[alert.LotID]; ok {
			cp.ID = current.ID
			cp.CreatedAt = current.CreatedAt
			alert.ID = current.ID
		}
		st.alerts[alert.LotID] = cp
		return nil
	})
}

func (r *alertRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.ExpiryAlert, error) {
	resolved := false
	list, _, err := r.List(ctx, entity.AlertFilter{CompanyID: companyID, Resolved: &resolved})
	return list, err
}

func (r *alertRepo) List(_ context.Context, f entity.AlertFilter) ([]*entity.ExpiryAlert, int, error) {
	all := make([]*entity.ExpiryAlert, 0)
	err := r.read(func(st *state) error {
		for _, a := range st.alerts {
			if a.CompanyID != f.CompanyID {
				continue
			}
			if f.Resolved != nil && a.Resolved != *f.Resolved {
				continue
			}
			if f.Severity != "" && a.Severity != f.Severity {
				continue
			}
			all = append(all, copyAlert(a))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DaysRemaining != all[j].DaysRemaining {
			return all[i].DaysRemaining < all[j].DaysRemaining
		}
		return all[i].LotNumber < all[j].LotNumber
	})
	total := len(all)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return all[start:end], total, nil
}
