package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/inventory"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

type lotRepo struct{ binding }

var _ repository.LotRepository = (*lotRepo)(nil)

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.write(func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, l := range st.lots {
			if l.CompanyID == lot.CompanyID && l.ProductID == lot.ProductID && l.LotNumber == lot.LotNumber {
				return domain.ErrDuplicate
			}
		}
		st.lots[lot.ID] = copyLot(lot)
		return nil
	})
}

func (r *lotRepo) GetByID(_ context.Context, companyID, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.read(func(st *state) error {
		if l, ok := st.lots[id]; ok && l.CompanyID == companyID {
			out = copyLot(l)
		}
		return nil
	})
	return out, err
}

func (r *lotRepo) GetByNumber(_ context.Context, companyID, productID, lotNumber string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.read(func(st *state) error {
		for _, l := range st.lots {
			if l.CompanyID == companyID && l.ProductID == productID && l.LotNumber == lotNumber {
				out = copyLot(l)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *lotRepo) List(_ context.Context, f entity.LotFilter) ([]*entity.Lot, int, error) {
	var all []*entity.Lot
	err := r.read(func(st *state) error {
		all = r.selectLots(st, func(l *entity.Lot) bool { return matchFilter(l, f) })
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ExpiryDate.Equal(all[j].ExpiryDate) {
			return all[i].ExpiryDate.Before(all[j].ExpiryDate)
		}
		if all[i].LotNumber != all[j].LotNumber {
			return all[i].LotNumber < all[j].LotNumber
		}
		return all[i].ID < all[j].ID
	})
	total := len(all)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return all[start:end], total, nil
}

func (r *lotRepo) Update(_ context.Context, lot *entity.Lot) error {
	return r.write(func(st *state) error {
		current, ok := st.lots[lot.ID]
		if !ok || current.CompanyID != lot.CompanyID {
			return domain.ErrNotFound
		}
		st.lots[lot.ID] = copyLot(lot)
		return nil
	})
}

func (r *lotRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *lotRepo) ListForUpdate(_ context.Context, companyID string, ids []string) ([]*entity.Lot, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.Lot
	err := r.read(func(st *state) error {
		out = r.selectLots(st, func(l *entity.Lot) bool { return l.CompanyID == companyID && want[l.ID] })
		return nil
	})
	sortByID(out)
	return out, err
}

func (r *lotRepo) ListCandidatesForUpdate(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error) {
	return r.ListCandidates(ctx, companyID, productID, warehouseID)
}

func (r *lotRepo) ListCandidates(_ context.Context, companyID, productID, warehouseID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.read(func(st *state) error {
		out = r.selectLots(st, func(l *entity.Lot) bool {
			return l.CompanyID == companyID && l.ProductID == productID && l.WarehouseID == warehouseID &&
				l.Status == entity.LotStatusActive
		})
		return nil
	})
	sortByID(out)
	return out, err
}

func (r *lotRepo) ListActive(_ context.Context, companyID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.read(func(st *state) error {
		out = r.selectLots(st, func(l *entity.Lot) bool {
			return l.CompanyID == companyID && l.Status == entity.LotStatusActive
		})
		return nil
	})
	sortByID(out)
	return out, err
}

func (r *lotRepo) ListCompanyIDs(_ context.Context) ([]string, error) {
	var out []string
	err := r.read(func(st *state) error {
		seen := make(map[string]bool)
		for _, l := range st.lots {
			if !seen[l.CompanyID] {
				seen[l.CompanyID] = true
				out = append(out, l.CompanyID)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *lotRepo) selectLots(st *state, keep func(*entity.Lot) bool) []*entity.Lot {
	out := make([]*entity.Lot, 0)
	for _, l := range st.lots {
		if keep(l) {
			out = append(out, copyLot(l))
		}
	}
	return out
}

func matchFilter(l *entity.Lot, f entity.LotFilter) bool {
	if l.CompanyID != f.CompanyID {
		return false
	}
	if f.ProductID != "" && l.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && l.WarehouseID != f.WarehouseID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.ExpiringWithinDays != nil {
		limit := inventory.DateOnly(referenceDay(f)).AddDate(0, 0, *f.ExpiringWithinDays)
		if inventory.DateOnly(l.ExpiryDate).After(limit) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(l.LotNumber), q) &&
			!strings.Contains(strings.ToLower(l.Location), q) &&
			!strings.Contains(strings.ToLower(l.QualityCertificateRef), q) {
			return false
		}
	}
	return true
}

func sortByID(lots []*entity.Lot) {
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
}
