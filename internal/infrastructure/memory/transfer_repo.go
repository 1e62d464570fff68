package memory

import (
	"context"
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo stores transfers with their items.
type TransferRepo struct {
	s  *Store
	tx bool
}

func (r *TransferRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	defer r.lock()()
	r.s.transfers[t.ID] = cloneTransfer(*t)
	r.s.transferSeq = append(r.s.transferSeq, t.ID)
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	defer r.lock()()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	t = cloneTransfer(t)
	return &t, nil
}

// GetByIDForUpdate is a plain read here: the store mutex already serializes
// the whole transaction callback.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	defer r.lock()()
	r.s.transfers[t.ID] = cloneTransfer(*t)
	return nil
}

func (r *TransferRepo) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, int, error) {
	defer r.lock()()
	var matched []entity.Transfer
	// Newest first, like the SQL backend.
	for i := len(r.s.transferSeq) - 1; i >= 0; i-- {
		t := r.s.transfers[r.s.transferSeq[i]]
		if filter.SourceWarehouseID != "" && t.SourceWarehouseID != filter.SourceWarehouseID {
			continue
		}
		if filter.DestinationWarehouseID != "" && t.DestinationWarehouseID != filter.DestinationWarehouseID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, t)
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
	page := make([]*entity.Transfer, 0, end-start)
	for i := start; i < end; i++ {
		t := cloneTransfer(matched[i])
		page = append(page, &t)
	}
	return page, total, nil
}

func (r *TransferRepo) CountByStatus(ctx context.Context, statuses ...string) (int, error) {
	defer r.lock()()
	count := 0
	for _, t := range r.s.transfers {
		for _, status := range statuses {
			if t.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *TransferRepo) CountReceivedBetween(ctx context.Context, from, to time.Time) (int, error) {
	defer r.lock()()
	count := 0
	for _, t := range r.s.transfers {
		if t.Status == entity.TransferStatusCompleted &&
			t.ReceivedDate != nil && !t.ReceivedDate.Before(from) && t.ReceivedDate.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *TransferRepo) Recent(ctx context.Context, limit int) ([]*entity.Transfer, error) {
	defer r.lock()()
	var out []*entity.Transfer
	for i := len(r.s.transferSeq) - 1; i >= 0 && len(out) < limit; i-- {
		t := cloneTransfer(r.s.transfers[r.s.transferSeq[i]])
		out = append(out, &t)
	}
	return out, nil
}
