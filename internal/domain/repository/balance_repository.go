package repository

import (
	"context"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// StockBalanceRepository is the port for the materialized per-key balance.
// Used inside transactions: GetForUpdate locks the row (SELECT FOR UPDATE) so
// the read-modify-write against one (product, warehouse) key is serialized.
type StockBalanceRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
}
