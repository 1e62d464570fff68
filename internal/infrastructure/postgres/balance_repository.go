package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo maintains the materialized (product, warehouse) balances.
type StockBalanceRepo struct {
	q Querier
}

func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get reads the balance without locking. A missing row is a zero balance.
func (r *StockBalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	return r.get(ctx, productID, warehouseID, "")
}

// GetForUpdate reads the balance with SELECT FOR UPDATE, holding the row lock
// until the surrounding transaction ends. The row is created at zero first if
// it does not exist yet; FOR UPDATE cannot lock a row that is not there, so
// two first movements for the same key would otherwise both see zero.
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("seed stock balance: %w", err)
	}
	return r.get(ctx, productID, warehouseID, " FOR UPDATE")
}

func (r *StockBalanceRepo) get(ctx context.Context, productID, warehouseID, lock string) (*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_balances
		WHERE product_id = $1 AND warehouse_id = $2` + lock
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, productID, warehouseID).
		Scan(&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{
				ProductID:   productID,
				WarehouseID: warehouseID,
				Quantity:    decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return &b, nil
}

// Upsert writes the balance, inserting the row on first movement for the key.
func (r *StockBalanceRepo) Upsert(ctx context.Context, balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, balance.ProductID, balance.WarehouseID, balance.Quantity, balance.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}
