package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// RecordMovementRequest is the body for POST /api/stock-movements.
// The wire format is snake_case; field names mirror the ledger columns.
type RecordMovementRequest struct {
	ProductID       string           `json:"product_id"`
	WarehouseID     string           `json:"warehouse_id"`
	MovementType    string           `json:"movement_type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Unit            string           `json:"unit"`
	ReferenceType   string           `json:"reference_type"`
	ReferenceNumber string           `json:"reference_number"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	CoilNumber      string           `json:"coil_number,omitempty"`
	HeatNumber      string           `json:"heat_number,omitempty"`
	MovementDate    *time.Time       `json:"movement_date,omitempty"`
}

// UpdateMovementRequest is the body for PUT /api/stock-movements/:id.
// Only notes are mutable.
type UpdateMovementRequest struct {
	Notes string `json:"notes"`
}

// MovementResponse is one ledger entry on the wire.
type MovementResponse struct {
	ID                     string          `json:"id"`
	ProductID              string          `json:"product_id"`
	WarehouseID            string          `json:"warehouse_id"`
	MovementType           string          `json:"movement_type"`
	Quantity               decimal.Decimal `json:"quantity"`
	Unit                   string          `json:"unit"`
	ReferenceType          string          `json:"reference_type"`
	ReferenceNumber        string          `json:"reference_number"`
	ReferenceID            string          `json:"reference_id,omitempty"`
	TransferID             string          `json:"transfer_id,omitempty"`
	ReservationID          string          `json:"reservation_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	UnitCost               decimal.Decimal `json:"unit_cost"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	BatchNumber            string          `json:"batch_number,omitempty"`
	CoilNumber             string          `json:"coil_number,omitempty"`
	HeatNumber             string          `json:"heat_number,omitempty"`
	BalanceAfter           decimal.Decimal `json:"balance_after"`
	Notes                  string          `json:"notes,omitempty"`
	MovementDate           time.Time       `json:"movement_date"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	CreatedBy              string          `json:"created_by,omitempty"`
	CreatedByName          string          `json:"created_by_name,omitempty"`
}

// MovementListResponse is the paginated ledger page.
type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// BalanceResponse is the current on-hand quantity for one key.
type BalanceResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// MovementResponseFrom maps a ledger entity to its wire shape.
func MovementResponseFrom(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                     m.ID,
		ProductID:              m.ProductID,
		WarehouseID:            m.WarehouseID,
		MovementType:           m.MovementType,
		Quantity:               m.Quantity,
		Unit:                   m.Unit,
		ReferenceType:          m.ReferenceType,
		ReferenceNumber:        m.ReferenceNumber,
		ReferenceID:            m.ReferenceID,
		TransferID:             m.TransferID,
		ReservationID:          m.ReservationID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		UnitCost:               m.UnitCost,
		TotalCost:              m.TotalCost,
		BatchNumber:            m.BatchNumber,
		CoilNumber:             m.CoilNumber,
		HeatNumber:             m.HeatNumber,
		BalanceAfter:           m.BalanceAfter,
		Notes:                  m.Notes,
		MovementDate:           m.MovementDate,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
		CreatedBy:              m.CreatedBy,
		CreatedByName:          m.CreatedByName,
	}
}

// MovementListFrom maps a page of ledger entities.
func MovementListFrom(movements []*entity.StockMovement, page PageRequest, total int) MovementListResponse {
	data := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		data = append(data, MovementResponseFrom(m))
	}
	return MovementListResponse{Data: data, Pagination: NewPagination(page, total)}
}
