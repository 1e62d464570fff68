package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// CreateReservationRequest is the body for POST /api/stock-movements/reservations.
type CreateReservationRequest struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// FulfillReservationRequest is the body for the fulfill transition. A
// reference_type of INVOICE couples the fulfillment to a physical deduction.
type FulfillReservationRequest struct {
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

// CancelReservationRequest is the body for the cancel transition.
type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ReservationResponse is one reservation on the wire.
type ReservationResponse struct {
	ID                string          `json:"id"`
	ReservationNumber string          `json:"reservation_number"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityFulfilled decimal.Decimal `json:"quantity_fulfilled"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	Unit              string          `json:"unit"`
	Status            string          `json:"status"`
	ReferenceType     string          `json:"reference_type,omitempty"`
	ReferenceNumber   string          `json:"reference_number,omitempty"`
	ReferenceID       string          `json:"reference_id,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	CreatedBy         string          `json:"created_by,omitempty"`
	CreatedByName     string          `json:"created_by_name,omitempty"`
}

// ReservationListResponse is the paginated reservation page.
type ReservationListResponse struct {
	Data       []ReservationResponse `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// ExpireReservationsResponse reports how many reservations a sweep expired.
type ExpireReservationsResponse struct {
	Expired int `json:"expired"`
}

// ReservationResponseFrom maps a reservation entity to its wire shape.
func ReservationResponseFrom(r *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:                r.ID,
		ReservationNumber: r.ReservationNumber,
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		QuantityReserved:  r.QuantityReserved,
		QuantityFulfilled: r.QuantityFulfilled,
		QuantityRemaining: r.QuantityRemaining(),
		Unit:              r.Unit,
		Status:            r.Status,
		ReferenceType:     r.ReferenceType,
		ReferenceNumber:   r.ReferenceNumber,
		ReferenceID:       r.ReferenceID,
		ExpiryDate:        r.ExpiryDate,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		CreatedBy:         r.CreatedBy,
		CreatedByName:     r.CreatedByName,
	}
}

// ReservationListFrom maps a page of reservation entities.
func ReservationListFrom(reservations []*entity.Reservation, page PageRequest, total int) ReservationListResponse {
	data := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		data = append(data, ReservationResponseFrom(r))
	}
	return ReservationListResponse{Data: data, Pagination: NewPagination(page, total)}
}
