package repository

import (
	"context"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// ProductRepository is the persistence port for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, int, error)
}
