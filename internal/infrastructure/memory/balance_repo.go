package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo keeps the materialized balances. The store mutex plays the role
// of the row lock: a transaction holds it for its whole duration, so
// GetForUpdate inside one is serialized exactly like SELECT FOR UPDATE.
type BalanceRepo struct {
	s  *Store
	tx bool
}

func (r *BalanceRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *BalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	defer r.lock()()
	return r.get(productID, warehouseID), nil
}

func (r *BalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	defer r.lock()()
	return r.get(productID, warehouseID), nil
}

func (r *BalanceRepo) get(productID, warehouseID string) *entity.StockBalance {
	if b, ok := r.s.balances[balanceKey(productID, warehouseID)]; ok {
		return &b
	}
	return &entity.StockBalance{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
	}
}

func (r *BalanceRepo) Upsert(ctx context.Context, balance *entity.StockBalance) error {
	defer r.lock()()
	r.s.balances[balanceKey(balance.ProductID, balance.WarehouseID)] = *balance
	return nil
}
