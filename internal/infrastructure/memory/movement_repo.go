package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo is the in-memory ledger. tx=true means the caller already
// holds the store lock.
type MovementRepo struct {
	s  *Store
	tx bool
}

func (r *MovementRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	r.s.movements[m.ID] = *m
	r.s.movementSeq = append(r.s.movementSeq, m.ID)
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	defer r.lock()()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// ordered returns all movements in movement_date order with id breaking
// ties, matching the SQL backend's ORDER BY movement_date, id.
func (r *MovementRepo) ordered() []entity.StockMovement {
	list := make([]entity.StockMovement, 0, len(r.s.movementSeq))
	for _, id := range r.s.movementSeq {
		list = append(list, r.s.movements[id])
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].MovementDate.Equal(list[j].MovementDate) {
			return list[i].MovementDate.Before(list[j].MovementDate)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func matchesFilter(m *entity.StockMovement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
		return false
	}
	if f.MovementType != "" && m.MovementType != f.MovementType {
		return false
	}
	if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
		return false
	}
	if f.DateFrom != nil && m.MovementDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.MovementDate.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.ReferenceNumber), needle) &&
			!strings.Contains(strings.ToLower(m.Notes), needle) {
			return false
		}
	}
	return true
}

func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	defer r.lock()()
	var matched []entity.StockMovement
	for _, m := range r.ordered() {
		if matchesFilter(&m, filter) {
			matched = append(matched, m)
		}
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
	page := make([]*entity.StockMovement, 0, end-start)
	for i := start; i < end; i++ {
		m := matched[i]
		page = append(page, &m)
	}
	return page, total, nil
}

func (r *MovementRepo) ListByReference(ctx context.Context, referenceType, referenceNumber string) ([]*entity.StockMovement, error) {
	defer r.lock()()
	var out []*entity.StockMovement
	for _, m := range r.ordered() {
		if m.ReferenceType == referenceType && m.ReferenceNumber == referenceNumber {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MovementRepo) LatestForKey(ctx context.Context, productID, warehouseID string) (*entity.StockMovement, error) {
	defer r.lock()()
	var latest *entity.StockMovement
	for _, m := range r.ordered() {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			m := m
			latest = &m
		}
	}
	return latest, nil
}

func (r *MovementRepo) UpdateNotes(ctx context.Context, id, notes string, updatedAt time.Time) error {
	defer r.lock()()
	m, ok := r.s.movements[id]
	if !ok {
		return nil
	}
	m.Notes = notes
	m.UpdatedAt = updatedAt
	r.s.movements[id] = m
	return nil
}

func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	defer r.lock()()
	delete(r.s.movements, id)
	for i, seqID := range r.s.movementSeq {
		if seqID == id {
			r.s.movementSeq = append(r.s.movementSeq[:i], r.s.movementSeq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MovementRepo) SumForKey(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *MovementRepo) ProductIDsForWarehouse(ctx context.Context, warehouseID string) ([]string, error) {
	defer r.lock()()
	seen := map[string]bool{}
	var ids []string
	for _, id := range r.s.movementSeq {
		m := r.s.movements[id]
		if m.WarehouseID == warehouseID && !seen[m.ProductID] {
			seen[m.ProductID] = true
			ids = append(ids, m.ProductID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MovementRepo) Stats(ctx context.Context, from, to time.Time) (*repository.MovementStats, error) {
	defer r.lock()()
	stats := &repository.MovementStats{StockIn: decimal.Zero, StockOut: decimal.Zero}
	for _, m := range r.s.movements {
		if !from.IsZero() && m.MovementDate.Before(from) {
			continue
		}
		if !to.IsZero() && !m.MovementDate.Before(to) {
			continue
		}
		stats.TotalMovements++
		if entity.IsOutbound(m.MovementType) {
			stats.StockOut = stats.StockOut.Add(m.Quantity)
		} else {
			stats.StockIn = stats.StockIn.Add(m.Quantity)
		}
	}
	return stats, nil
}

func (r *MovementRepo) Recent(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	defer r.lock()()
	var out []*entity.StockMovement
	for i := len(r.s.movementSeq) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.s.movements[r.s.movementSeq[i]]
		out = append(out, &m)
	}
	return out, nil
}
