package repository

import (
	"context"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// WarehouseRepository is the persistence port for warehouses.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, int, error)
}
