package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

type reservationRepo struct{ binding }

var _ repository.ReservationRepository = (*reservationRepo)(nil)

func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	return r.write(func(st *state) error {
		if _, ok := st.reservations[res.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, x := range st.reservations {
			if x.CompanyID == res.CompanyID && x.SaleReference == res.SaleReference && x.LotID == res.LotID {
				return domain.ErrDuplicate
			}
		}
		st.reservations[res.ID] = copyReservation(res)
		return nil
	})
}

func (r *reservationRepo) Get(_ context.Context, companyID, saleReference, lotID string) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.read(func(st *state) error {
		for _, x := range st.reservations {
			if x.CompanyID == companyID && x.SaleReference == saleReference && x.LotID == lotID {
				out = copyReservation(x)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *reservationRepo) ListByReference(_ context.Context, companyID, saleReference string) ([]*entity.Reservation, error) {
	return r.selectSorted(func(x *entity.Reservation) bool {
		return x.CompanyID == companyID && x.SaleReference == saleReference
	})
}

func (r *reservationRepo) ListByReferenceForUpdate(ctx context.Context, companyID, saleReference string) ([]*entity.Reservation, error) {
	return r.ListByReference(ctx, companyID, saleReference)
}

func (r *reservationRepo) ListHeldByLot(_ context.Context, companyID, lotID string) ([]*entity.Reservation, error) {
	return r.selectSorted(func(x *entity.Reservation) bool {
		return x.CompanyID == companyID && x.LotID == lotID && x.IsHeld()
	})
}

func (r *reservationRepo) ListHeldBefore(_ context.Context, cutoff time.Time) ([]*entity.Reservation, error) {
	return r.selectSorted(func(x *entity.Reservation) bool {
		return x.IsHeld() && x.CreatedAt.Before(cutoff)
	})
}

func (r *reservationRepo) Update(_ context.Context, res *entity.Reservation) error {
	return r.write(func(st *state) error {
		current, ok := st.reservations[res.ID]
		if !ok || current.CompanyID != res.CompanyID {
			return domain.ErrNotFound
		}
		st.reservations[res.ID] = copyReservation(res)
		return nil
	})
}

func (r *reservationRepo) selectSorted(keep func(*entity.Reservation) bool) ([]*entity.Reservation, error) {
	out := make([]*entity.Reservation, 0)
	err := r.read(func(st *state) error {
		for _, x := range st.reservations {
			if keep(x) {
				out = append(out, copyReservation(x))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].LotID < out[j].LotID
	})
	return out, err
}
