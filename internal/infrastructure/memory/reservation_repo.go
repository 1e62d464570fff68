package memory

import (
	"context"
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo stores reservations.
type ReservationRepo struct {
	s  *Store
	tx bool
}

func (r *ReservationRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	defer r.lock()()
	r.s.reservations[res.ID] = *res
	r.s.reservationSeq = append(r.s.reservationSeq, res.ID)
	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	defer r.lock()()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// GetByIDForUpdate is a plain read here: the store mutex already serializes
// the whole transaction callback.
func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) Update(ctx context.Context, res *entity.Reservation) error {
	defer r.lock()()
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) List(ctx context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, int, error) {
	defer r.lock()()
	var matched []entity.Reservation
	for i := len(r.s.reservationSeq) - 1; i >= 0; i-- {
		res := r.s.reservations[r.s.reservationSeq[i]]
		if filter.ProductID != "" && res.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && res.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Status != "" {
			if res.Status != filter.Status {
				continue
			}
		} else if !filter.IncludeExpired && res.Status == entity.ReservationStatusExpired {
			continue
		}
		matched = append(matched, res)
	}
	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	page := make([]*entity.Reservation, 0, end-start)
	for i := start; i < end; i++ {
		res := matched[i]
		page = append(page, &res)
	}
	return page, total, nil
}

func (r *ReservationRepo) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entity.Reservation, error) {
	defer r.lock()()
	var out []*entity.Reservation
	for _, id := range r.s.reservationSeq {
		res := r.s.reservations[id]
		if res.ExpiredAt(now) {
			res := res
			out = append(out, &res)
		}
	}
	return out, nil
}

func (r *ReservationRepo) CountOpen(ctx context.Context) (int, error) {
	defer r.lock()()
	count := 0
	for _, res := range r.s.reservations {
		if res.Open() {
			count++
		}
	}
	return count, nil
}

func (r *ReservationRepo) Recent(ctx context.Context, limit int) ([]*entity.Reservation, error) {
	defer r.lock()()
	var out []*entity.Reservation
	for i := len(r.s.reservationSeq) - 1; i >= 0 && len(out) < limit; i-- {
		res := r.s.reservations[r.s.reservationSeq[i]]
		out = append(out, &res)
	}
	return out, nil
}
