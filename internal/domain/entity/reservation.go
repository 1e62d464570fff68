package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation statuses. ACTIVE/PARTIALLY_FULFILLED/FULFILLED are derived from
// the quantities; EXPIRED and CANCELLED are explicit terminal states.
const (
	ReservationStatusActive             = "ACTIVE"
	ReservationStatusPartiallyFulfilled = "PARTIALLY_FULFILLED"
	ReservationStatusFulfilled          = "FULFILLED"
	ReservationStatusExpired            = "EXPIRED"
	ReservationStatusCancelled          = "CANCELLED"
)

// Reservation soft-allocates quantity against future fulfillment. It holds no
// physical stock; only a coupled fulfillment writes a ledger movement.
type Reservation struct {
	ID                string
	ReservationNumber string
	ProductID         string
	WarehouseID       string
	QuantityReserved  decimal.Decimal
	QuantityFulfilled decimal.Decimal
	Unit              string
	Status            string

	ReferenceType   string
	ReferenceNumber string
	ReferenceID     string
	Notes           string
	ExpiryDate      *time.Time

	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
	CreatedByName string
}

// QuantityRemaining is reserved minus fulfilled, never negative.
func (r *Reservation) QuantityRemaining() decimal.Decimal {
	rem := r.QuantityReserved.Sub(r.QuantityFulfilled)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// Terminal reports whether no further fulfillment is possible.
func (r *Reservation) Terminal() bool {
	switch r.Status {
	case ReservationStatusFulfilled, ReservationStatusExpired, ReservationStatusCancelled:
		return true
	}
	return false
}

// Open reports whether the reservation still accepts fulfillment.
func (r *Reservation) Open() bool {
	return r.Status == ReservationStatusActive || r.Status == ReservationStatusPartiallyFulfilled
}

// DeriveStatus recomputes the quantity-derived status. Explicit EXPIRED and
// CANCELLED states are preserved.
func (r *Reservation) DeriveStatus() {
	if r.Status == ReservationStatusExpired || r.Status == ReservationStatusCancelled {
		return
	}
	switch {
	case r.QuantityFulfilled.IsZero():
		r.Status = ReservationStatusActive
	case r.QuantityFulfilled.GreaterThanOrEqual(r.QuantityReserved):
		r.Status = ReservationStatusFulfilled
	default:
		r.Status = ReservationStatusPartiallyFulfilled
	}
}

// ExpiredAt reports whether an open reservation has passed its expiry date.
func (r *Reservation) ExpiredAt(now time.Time) bool {
	return r.Open() && r.ExpiryDate != nil && r.ExpiryDate.Before(now)
}
