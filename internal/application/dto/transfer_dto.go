package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// TransferItemRequest is one product line in a create-transfer body.
type TransferItemRequest struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	BatchNumber string          `json:"batch_number,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// CreateTransferRequest is the body for POST /api/stock-movements/transfers.
type CreateTransferRequest struct {
	SourceWarehouseID      string                `json:"source_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	Items                  []TransferItemRequest `json:"items"`
	Notes                  string                `json:"notes,omitempty"`
	ExpectedDate           *time.Time            `json:"expected_date,omitempty"`
}

// ShipTransferRequest is the body for the ship transition.
type ShipTransferRequest struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	VehicleNumber  string `json:"vehicle_number,omitempty"`
	DriverName     string `json:"driver_name,omitempty"`
	DriverPhone    string `json:"driver_phone,omitempty"`
}

// TransferItemResponse is one transfer line on the wire.
type TransferItemResponse struct {
	ID               string          `json:"id"`
	TransferID       string          `json:"transfer_id"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityShipped  decimal.Decimal `json:"quantity_shipped"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Unit             string          `json:"unit"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ConditionNotes   string          `json:"condition_notes,omitempty"`
}

// TransferResponse is one transfer on the wire.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	TransferNumber         string                 `json:"transfer_number"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	Items                  []TransferItemResponse `json:"items"`
	Notes                  string                 `json:"notes,omitempty"`
	ExpectedDate           *time.Time             `json:"expected_date,omitempty"`
	TrackingNumber         string                 `json:"tracking_number,omitempty"`
	Carrier                string                 `json:"carrier,omitempty"`
	VehicleNumber          string                 `json:"vehicle_number,omitempty"`
	DriverName             string                 `json:"driver_name,omitempty"`
	DriverPhone            string                 `json:"driver_phone,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
	ShippedDate            *time.Time             `json:"shipped_date,omitempty"`
	ReceivedDate           *time.Time             `json:"received_date,omitempty"`
	CreatedBy              string                 `json:"created_by,omitempty"`
	CreatedByName          string                 `json:"created_by_name,omitempty"`
	ShippedBy              string                 `json:"shipped_by,omitempty"`
	ShippedByName          string                 `json:"shipped_by_name,omitempty"`
	ReceivedBy             string                 `json:"received_by,omitempty"`
	ReceivedByName         string                 `json:"received_by_name,omitempty"`
}

// TransferListResponse is the paginated transfer page.
type TransferListResponse struct {
	Data       []TransferResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// TransferResponseFrom maps a transfer entity to its wire shape.
func TransferResponseFrom(t *entity.Transfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemResponse{
			ID:               item.ID,
			TransferID:       item.TransferID,
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			QuantityShipped:  item.QuantityShipped,
			QuantityReceived: item.QuantityReceived,
			Unit:             item.Unit,
			BatchNumber:      item.BatchNumber,
			Notes:            item.Notes,
			ConditionNotes:   item.ConditionNotes,
		})
	}
	return TransferResponse{
		ID:                     t.ID,
		TransferNumber:         t.TransferNumber,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 t.Status,
		Items:                  items,
		Notes:                  t.Notes,
		ExpectedDate:           t.ExpectedDate,
		TrackingNumber:         t.TrackingNumber,
		Carrier:                t.Carrier,
		VehicleNumber:          t.VehicleNumber,
		DriverName:             t.DriverName,
		DriverPhone:            t.DriverPhone,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		ShippedDate:            t.ShippedDate,
		ReceivedDate:           t.ReceivedDate,
		CreatedBy:              t.CreatedBy,
		CreatedByName:          t.CreatedByName,
		ShippedBy:              t.ShippedBy,
		ShippedByName:          t.ShippedByName,
		ReceivedBy:             t.ReceivedBy,
		ReceivedByName:         t.ReceivedByName,
	}
}

// TransferListFrom maps a page of transfer entities.
func TransferListFrom(transfers []*entity.Transfer, page PageRequest, total int) TransferListResponse {
	data := make([]TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		data = append(data, TransferResponseFrom(t))
	}
	return TransferListResponse{Data: data, Pagination: NewPagination(page, total)}
}
