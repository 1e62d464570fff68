package dto

import (
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// CreateWarehouseRequest is the body to register a warehouse.
type CreateWarehouseRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// WarehouseResponse is one warehouse on the wire.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse is the paginated warehouse page.
type WarehouseListResponse struct {
	Data       []WarehouseResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// WarehouseResponseFrom maps a warehouse entity to its wire shape.
func WarehouseResponseFrom(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
