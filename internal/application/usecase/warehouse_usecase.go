package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// WarehouseUseCase is thin CRUD for warehouses.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase builds the use case.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create registers a new warehouse.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	resp := dto.WarehouseResponseFrom(warehouse)
	return &resp, nil
}

// GetByID returns one warehouse, nil if absent.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	resp := dto.WarehouseResponseFrom(warehouse)
	return &resp, nil
}

// List returns a warehouse page.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	warehouses, total, err := uc.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	data := make([]dto.WarehouseResponse, 0, len(warehouses))
	for _, w := range warehouses {
		data = append(data, dto.WarehouseResponseFrom(w))
	}
	return &dto.WarehouseListResponse{Data: data, Pagination: dto.NewPagination(page, total)}, nil
}
