package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/application/transfer"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// UseCase tracks soft allocations of stock against future fulfillment.
// Reservations hold no physical stock: only a fulfillment coupled to an
// invoice writes a ledger movement. Status is derived from the quantities
// unless the reservation was explicitly expired or cancelled.
type UseCase struct {
	tx           ports.TxRunner
	reservations repository.ReservationRepository
	products     repository.ProductRepository
	warehouses   repository.WarehouseRepository
	ledger       transfer.LedgerAppender
}

// NewUseCase builds the reservation workflow.
func NewUseCase(
	tx ports.TxRunner,
	reservations repository.ReservationRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	ledger transfer.LedgerAppender,
) *UseCase {
	return &UseCase{
		tx:           tx,
		reservations: reservations,
		products:     products,
		warehouses:   warehouses,
		ledger:       ledger,
	}
}

// CreateInput is the command to open a reservation in ACTIVE.
type CreateInput struct {
	ProductID       string
	WarehouseID     string
	Quantity        decimal.Decimal
	Unit            string
	ReferenceType   string
	ReferenceNumber string
	ReferenceID     string
	ExpiryDate      *time.Time
	Notes           string
	CreatedBy       string
	CreatedByName   string
}

// FulfillInput is the command to fulfill part of a reservation. When
// ReferenceType is INVOICE the fulfillment also deducts physical stock in the
// same transaction; otherwise it is pure tracking.
type FulfillInput struct {
	Quantity        decimal.Decimal
	ReferenceType   string
	ReferenceNumber string
	By              string
	ByName          string
}

// Create validates and persists a new ACTIVE reservation. No ledger effect.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Reservation, error) {
	if input.ProductID == "" || input.WarehouseID == "" || !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if input.Unit == "" {
		input.Unit = entity.UnitKG
	}
	if !entity.ValidUnit(input.Unit) {
		return nil, domain.ErrInvalidInput
	}
	if input.ReferenceType != "" && !entity.ValidReferenceType(input.ReferenceType) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	warehouse, err := uc.warehouses.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	reservation := &entity.Reservation{
		ID:                uuid.New().String(),
		ReservationNumber: newReservationNumber(now),
		ProductID:         input.ProductID,
		WarehouseID:       input.WarehouseID,
		QuantityReserved:  input.Quantity,
		QuantityFulfilled: decimal.Zero,
		Unit:              input.Unit,
		Status:            entity.ReservationStatusActive,
		ReferenceType:     input.ReferenceType,
		ReferenceNumber:   input.ReferenceNumber,
		ReferenceID:       input.ReferenceID,
		ExpiryDate:        input.ExpiryDate,
		Notes:             input.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         input.CreatedBy,
		CreatedByName:     input.CreatedByName,
	}
	if err := uc.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// Fulfill increments the fulfilled quantity and re-derives the status.
// Over-fulfillment is a validation error; fulfilling a terminal reservation
// is a conflict. A coupled INVOICE fulfillment deducts stock atomically with
// the quantity update.
func (uc *UseCase) Fulfill(ctx context.Context, id string, input FulfillInput) (*entity.Reservation, error) {
	if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if input.ReferenceType != "" && !entity.ValidReferenceType(input.ReferenceType) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Reservation
	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		// Lock the reservation row so concurrent fulfillments serialize and
		// no quantity_fulfilled increment is lost.
		reservation, err := repos.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return domain.ErrNotFound
		}
		if !reservation.Open() {
			return domain.ErrConflict
		}
		if reservation.QuantityFulfilled.Add(input.Quantity).GreaterThan(reservation.QuantityReserved) {
			return domain.ErrInvalidInput
		}
		now := time.Now()
		reservation.QuantityFulfilled = reservation.QuantityFulfilled.Add(input.Quantity)
		reservation.DeriveStatus()
		reservation.UpdatedAt = now

		if input.ReferenceType == entity.ReferenceTypeInvoice {
			movement := &entity.StockMovement{
				ID:              uuid.New().String(),
				ProductID:       reservation.ProductID,
				WarehouseID:     reservation.WarehouseID,
				MovementType:    entity.MovementTypeDeduction,
				Quantity:        input.Quantity,
				Unit:            reservation.Unit,
				ReferenceType:   input.ReferenceType,
				ReferenceNumber: input.ReferenceNumber,
				ReservationID:   reservation.ID,
				MovementDate:    now,
				CreatedAt:       now,
				UpdatedAt:       now,
				CreatedBy:       input.By,
				CreatedByName:   input.ByName,
			}
			if err := uc.ledger.AppendInTx(ctx, repos, movement); err != nil {
				return err
			}
		}
		if err := repos.Reservations.Update(ctx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel moves a non-terminal reservation to CANCELLED. No ledger effect.
func (uc *UseCase) Cancel(ctx context.Context, id, reason string) (*entity.Reservation, error) {
	var result *entity.Reservation
	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		reservation, err := repos.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reservation == nil {
			return domain.ErrNotFound
		}
		if reservation.Terminal() {
			return domain.ErrConflict
		}
		reservation.Status = entity.ReservationStatusCancelled
		if reason != "" {
			if reservation.Notes != "" {
				reservation.Notes += "\n"
			}
			reservation.Notes += "Cancelled: " + reason
		}
		reservation.UpdatedAt = time.Now()
		if err := repos.Reservations.Update(ctx, reservation); err != nil {
			return err
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Expire marks every open reservation past its expiry date as EXPIRED and
// returns how many changed. Running it again is a no-op for already expired
// rows, so the sweep can be triggered as often as the scheduler likes.
func (uc *UseCase) Expire(ctx context.Context, now time.Time) (int, error) {
	expired, err := uc.reservations.ListExpiredOpen(ctx, now)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, reservation := range expired {
		reservation.Status = entity.ReservationStatusExpired
		reservation.UpdatedAt = now
		if err := uc.reservations.Update(ctx, reservation); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Get returns one reservation by id.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	reservation, err := uc.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, domain.ErrNotFound
	}
	return reservation, nil
}

// List returns a page of reservations plus the unpaged total.
func (uc *UseCase) List(ctx context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, int, error) {
	if filter.Status != "" {
		switch filter.Status {
		case entity.ReservationStatusActive, entity.ReservationStatusPartiallyFulfilled,
			entity.ReservationStatusFulfilled, entity.ReservationStatusExpired,
			entity.ReservationStatusCancelled:
		default:
			return nil, 0, domain.ErrInvalidInput
		}
	}
	return uc.reservations.List(ctx, filter)
}

// newReservationNumber builds a human-readable unique number, e.g. RSV-20260827-9C01D4AB.
func newReservationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("RSV-%s-%s", now.Format("20060102"), suffix)
}
