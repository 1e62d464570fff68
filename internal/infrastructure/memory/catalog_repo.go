package memory

import (
	"context"
	"strings"

	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo stores catalog products.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	r.s.productSeq = append(r.s.productSeq, p.ID)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(search)
	var matched []entity.Product
	for _, id := range r.s.productSeq {
		p := r.s.products[id]
		if !p.Active {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.SKU), needle) &&
			!strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	start, end := pageBounds(total, limit, offset)
	page := make([]*entity.Product, 0, end-start)
	for i := start; i < end; i++ {
		p := matched[i]
		page = append(page, &p)
	}
	return page, total, nil
}

// WarehouseRepo stores warehouses.
type WarehouseRepo struct {
	s *Store
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.warehouses {
		if existing.Code == w.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.warehouses[w.ID] = *w
	r.s.warehouseSeq = append(r.s.warehouseSeq, w.ID)
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []entity.Warehouse
	for _, id := range r.s.warehouseSeq {
		w := r.s.warehouses[id]
		if w.Active {
			matched = append(matched, w)
		}
	}
	total := len(matched)
	start, end := pageBounds(total, limit, offset)
	page := make([]*entity.Warehouse, 0, end-start)
	for i := start; i < end; i++ {
		w := matched[i]
		page = append(page, &w)
	}
	return page, total, nil
}

func pageBounds(total, limit, offset int) (int, int) {
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if limit <= 0 || end > total {
		end = total
	}
	return start, end
}
