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

// ProductUseCase is thin catalog CRUD. Stock lives in the ledger, never here.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase builds the use case.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create registers a new product.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Unit == "" {
		in.Unit = entity.UnitKG
	}
	if !entity.ValidUnit(in.Unit) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       in.SKU,
		Name:      in.Name,
		Grade:     in.Grade,
		Unit:      in.Unit,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	resp := dto.ProductResponseFrom(product)
	return &resp, nil
}

// GetByID returns one product, nil if absent.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	resp := dto.ProductResponseFrom(product)
	return &resp, nil
}

// List returns a product page, optionally filtered by a search term matching
// SKU and name (the UI autocomplete source).
func (uc *ProductUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	products, total, err := uc.repo.List(ctx, search, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		data = append(data, dto.ProductResponseFrom(p))
	}
	return &dto.ProductListResponse{Data: data, Pagination: dto.NewPagination(page, total)}, nil
}
