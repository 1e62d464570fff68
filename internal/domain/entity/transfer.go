package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer statuses. DRAFT/PENDING are pre-ship, SHIPPED/IN_TRANSIT are
// in-flight, RECEIVED/COMPLETED and CANCELLED are terminal.
const (
	TransferStatusDraft     = "DRAFT"
	TransferStatusPending   = "PENDING"
	TransferStatusShipped   = "SHIPPED"
	TransferStatusInTransit = "IN_TRANSIT"
	TransferStatusReceived  = "RECEIVED"
	TransferStatusCompleted = "COMPLETED"
	TransferStatusCancelled = "CANCELLED"
)

// Transfer moves stock between two warehouses under a status lifecycle.
// Shipping emits TRANSFER_OUT movements at the source, receiving emits
// TRANSFER_IN at the destination; cancelling after ship compensates the source.
type Transfer struct {
	ID                     string
	TransferNumber         string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 string
	Items                  []TransferItem

	Notes          string
	ExpectedDate   *time.Time
	TrackingNumber string
	Carrier        string
	VehicleNumber  string
	DriverName     string
	DriverPhone    string

	CreatedAt    time.Time
	UpdatedAt    time.Time
	ShippedDate  *time.Time
	ReceivedDate *time.Time

	CreatedBy      string
	CreatedByName  string
	ShippedBy      string
	ShippedByName  string
	ReceivedBy     string
	ReceivedByName string
}

// TransferItem is one product line of a transfer. Quantity requested is
// conserved between the OUT and IN legs; shipped/received mirror it once the
// corresponding transition runs.
type TransferItem struct {
	ID               string
	TransferID       string
	ProductID        string
	Quantity         decimal.Decimal
	QuantityShipped  decimal.Decimal
	QuantityReceived decimal.Decimal
	Unit             string
	BatchNumber      string
	Notes            string
	ConditionNotes   string
}

// CanShip reports whether the transfer may transition to SHIPPED.
func (t *Transfer) CanShip() bool {
	return t.Status == TransferStatusDraft || t.Status == TransferStatusPending
}

// CanReceive reports whether the transfer may transition to COMPLETED.
func (t *Transfer) CanReceive() bool {
	return t.Status == TransferStatusShipped || t.Status == TransferStatusInTransit
}

// CanCancel reports whether the transfer may transition to CANCELLED.
func (t *Transfer) CanCancel() bool {
	return t.Status != TransferStatusCancelled &&
		t.Status != TransferStatusCompleted &&
		t.Status != TransferStatusReceived
}

// Shipped reports whether stock has already left the source warehouse.
func (t *Transfer) Shipped() bool {
	return t.Status == TransferStatusShipped || t.Status == TransferStatusInTransit
}
