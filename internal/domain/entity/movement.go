package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock movement types. Quantity is always stored positive; the type decides
// the direction the balance moves.
const (
	MovementTypeIN          = "IN"           // goods received into a warehouse
	MovementTypeOUT         = "OUT"          // goods leaving a warehouse
	MovementTypeTransferIn  = "TRANSFER_IN"  // receiving leg of an inter-warehouse transfer
	MovementTypeTransferOut = "TRANSFER_OUT" // shipping leg of an inter-warehouse transfer
	MovementTypeAdjustment  = "ADJUSTMENT"   // upward stock correction
	MovementTypeReservation = "RESERVATION"  // hard deduction against a reservation
	MovementTypeRelease     = "RELEASE"      // returns previously deducted reserved stock
	MovementTypeDeduction   = "DEDUCTION"    // downward correction or coupled fulfillment
	MovementTypeReversal    = "REVERSAL"     // compensation restoring a prior deduction
)

// Reference document types a movement can link back to.
const (
	ReferenceTypeInvoice       = "INVOICE"
	ReferenceTypeReturn        = "RETURN"
	ReferenceTypeCreditNote    = "CREDIT_NOTE"
	ReferenceTypePurchaseOrder = "PURCHASE_ORDER"
	ReferenceTypeAdjustment    = "ADJUSTMENT"
	ReferenceTypeTransfer      = "TRANSFER"
	ReferenceTypeInitial       = "INITIAL"
)

// Measurement units used in the steel trade.
const (
	UnitKG      = "KG"
	UnitMT      = "MT"
	UnitPCS     = "PCS"
	UnitSheets  = "SHEETS"
	UnitCoils   = "COILS"
	UnitBundles = "BUNDLES"
	UnitMeters  = "METERS"
)

var movementDirections = map[string]int{
	MovementTypeIN:          +1,
	MovementTypeTransferIn:  +1,
	MovementTypeRelease:     +1,
	MovementTypeReversal:    +1,
	MovementTypeAdjustment:  +1,
	MovementTypeOUT:         -1,
	MovementTypeTransferOut: -1,
	MovementTypeReservation: -1,
	MovementTypeDeduction:   -1,
}

var referenceTypes = map[string]bool{
	ReferenceTypeInvoice:       true,
	ReferenceTypeReturn:        true,
	ReferenceTypeCreditNote:    true,
	ReferenceTypePurchaseOrder: true,
	ReferenceTypeAdjustment:    true,
	ReferenceTypeTransfer:      true,
	ReferenceTypeInitial:       true,
}

var units = map[string]bool{
	UnitKG:      true,
	UnitMT:      true,
	UnitPCS:     true,
	UnitSheets:  true,
	UnitCoils:   true,
	UnitBundles: true,
	UnitMeters:  true,
}

// MovementDirection returns +1 for inbound types, -1 for outbound types and
// ok=false for unknown types. Unknown values must be rejected at the boundary.
func MovementDirection(movementType string) (int, bool) {
	d, ok := movementDirections[movementType]
	return d, ok
}

// IsOutbound reports whether the movement type deducts stock.
func IsOutbound(movementType string) bool {
	d, ok := movementDirections[movementType]
	return ok && d < 0
}

// ValidReferenceType reports whether the reference type belongs to the closed vocabulary.
func ValidReferenceType(referenceType string) bool {
	return referenceTypes[referenceType]
}

// ValidUnit reports whether the unit belongs to the closed vocabulary.
func ValidUnit(unit string) bool {
	return units[unit]
}

// StockMovement is one atomic stock delta against a (product, warehouse) pair.
// Movements are append-only: once written, only Notes may change, and deletion
// is restricted to the newest entry of its balance key.
type StockMovement struct {
	ID           string
	ProductID    string
	WarehouseID  string
	MovementType string
	Quantity     decimal.Decimal // positive magnitude; direction comes from MovementType
	Unit         string

	ReferenceType   string
	ReferenceNumber string
	ReferenceID     string

	// Back-links to the workflow that produced this entry, if any.
	TransferID             string
	ReservationID          string
	DestinationWarehouseID string // set on TRANSFER_OUT rows

	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal

	// Metal traceability tags.
	BatchNumber string
	CoilNumber  string
	HeatNumber  string

	// Running balance for (ProductID, WarehouseID) immediately after this entry.
	BalanceAfter decimal.Decimal

	Notes         string
	MovementDate  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
	CreatedByName string
}

// SignedQuantity is the delta this movement applied to its balance key.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if IsOutbound(m.MovementType) {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
