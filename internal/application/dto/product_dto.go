package dto

import (
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// CreateProductRequest is the body to register a catalog product.
type CreateProductRequest struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Grade string `json:"grade,omitempty"`
	Unit  string `json:"unit"`
}

// ProductResponse is one catalog product on the wire.
type ProductResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade,omitempty"`
	Unit      string    `json:"unit"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductListResponse is the paginated product page.
type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// ProductResponseFrom maps a product entity to its wire shape.
func ProductResponseFrom(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Grade:     p.Grade,
		Unit:      p.Unit,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
