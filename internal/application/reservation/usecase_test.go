package reservation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/application/reservation"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/internal/infrastructure/memory"
)

type fixture struct {
	uc          *reservation.UseCase
	ledgerUC    *ledger.UseCase
	store       *memory.Store
	productID   string
	warehouseID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	product := &entity.Product{
		ID: uuid.New().String(), SKU: "SHEET-DC01-2", Name: "Sheet DC01 2mm",
		Unit: entity.UnitKG, Active: true,
	}
	require.NoError(t, store.Products().Create(ctx, product))
	warehouse := &entity.Warehouse{
		ID: uuid.New().String(), Code: "MAIN", Name: "Main warehouse", Active: true,
	}
	require.NoError(t, store.Warehouses().Create(ctx, warehouse))

	ledgerUC := ledger.NewUseCase(
		store.TxRunner(), store.Movements(), store.Balances(), store.Products(), store.Warehouses(),
	)
	uc := reservation.NewUseCase(
		store.TxRunner(), store.Reservations(), store.Products(), store.Warehouses(), ledgerUC,
	)
	return &fixture{
		uc: uc, ledgerUC: ledgerUC, store: store,
		productID: product.ID, warehouseID: warehouse.ID,
	}
}

func (f *fixture) reserve(t *testing.T, quantity int64, expiry *time.Time) *entity.Reservation {
	t.Helper()
	res, err := f.uc.Create(context.Background(), reservation.CreateInput{
		ProductID:   f.productID,
		WarehouseID: f.warehouseID,
		Quantity:    decimal.NewFromInt(quantity),
		ExpiryDate:  expiry,
	})
	require.NoError(t, err)
	return res
}

func TestReservation_CreateNoLedgerEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.reserve(t, 100, nil)
	assert.Equal(t, entity.ReservationStatusActive, res.Status)
	assert.True(t, strings.HasPrefix(res.ReservationNumber, "RSV-"))
	assert.True(t, res.QuantityRemaining().Equal(decimal.NewFromInt(100)))

	balance, err := f.ledgerUC.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestReservation_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, reservation.CreateInput{
		ProductID: f.productID, WarehouseID: f.warehouseID, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, reservation.CreateInput{
		ProductID: uuid.New().String(), WarehouseID: f.warehouseID,
		Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, reservation.CreateInput{
		ProductID: f.productID, WarehouseID: f.warehouseID,
		Quantity: decimal.NewFromInt(1), Unit: "BARRELS",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReservation_PartialThenFullFulfillment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.reserve(t, 100, nil)

	partial, err := f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{
		Quantity: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusPartiallyFulfilled, partial.Status)
	assert.True(t, partial.QuantityRemaining().Equal(decimal.NewFromInt(60)))

	full, err := f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{
		Quantity: decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusFulfilled, full.Status)
	assert.True(t, full.QuantityRemaining().IsZero())

	// FULFILLED is terminal.
	_, err = f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReservation_OverFulfillment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.reserve(t, 100, nil)
	_, err := f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{
		Quantity: decimal.NewFromInt(101),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Fulfilled quantity never moved.
	current, err := f.uc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, current.QuantityFulfilled.IsZero())
	assert.Equal(t, entity.ReservationStatusActive, current.Status)

	_, err = f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// An INVOICE-coupled fulfillment writes a DEDUCTION in the same transaction;
// when the deduction would drive stock negative, the whole fulfillment fails.
func TestReservation_InvoiceCoupledFulfillment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledgerUC.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:       f.productID,
		WarehouseID:     f.warehouseID,
		MovementType:    entity.MovementTypeIN,
		Quantity:        decimal.NewFromInt(50),
		ReferenceType:   entity.ReferenceTypeInitial,
		ReferenceNumber: "INIT",
	})
	require.NoError(t, err)

	res := f.reserve(t, 100, nil)

	fulfilled, err := f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{
		Quantity:        decimal.NewFromInt(30),
		ReferenceType:   entity.ReferenceTypeInvoice,
		ReferenceNumber: "INV-42",
	})
	require.NoError(t, err)
	assert.True(t, fulfilled.QuantityFulfilled.Equal(decimal.NewFromInt(30)))

	balance, err := f.ledgerUC.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(20)))

	deductions, err := f.ledgerUC.ListByReference(ctx, entity.ReferenceTypeInvoice, "INV-42")
	require.NoError(t, err)
	require.Len(t, deductions, 1)
	assert.Equal(t, entity.MovementTypeDeduction, deductions[0].MovementType)
	assert.Equal(t, res.ID, deductions[0].ReservationID)

	// Short stock: fulfillment and deduction roll back together.
	_, err = f.uc.Fulfill(ctx, res.ID, reservation.FulfillInput{
		Quantity:        decimal.NewFromInt(30),
		ReferenceType:   entity.ReferenceTypeInvoice,
		ReferenceNumber: "INV-43",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	current, err := f.uc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, current.QuantityFulfilled.Equal(decimal.NewFromInt(30)))
	balance, err = f.ledgerUC.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(20)))
}

func TestReservation_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.reserve(t, 50, nil)
	cancelled, err := f.uc.Cancel(ctx, res.ID, "customer withdrew the order")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "Cancelled: customer withdrew the order")

	_, err = f.uc.Cancel(ctx, res.ID, "again")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Cancel(ctx, uuid.New().String(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservation_ExpireSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	expired := f.reserve(t, 10, &past)
	alive := f.reserve(t, 10, &future)
	forever := f.reserve(t, 10, nil)

	count, err := f.uc.Expire(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := f.uc.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusExpired, got.Status)

	for _, id := range []string{alive.ID, forever.ID} {
		got, err := f.uc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationStatusActive, got.Status)
	}

	// Second sweep finds nothing.
	count, err = f.uc.Expire(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// EXPIRED is terminal.
	_, err = f.uc.Fulfill(ctx, expired.ID, reservation.FulfillInput{Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReservation_ListHidesExpiredByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Minute)
	f.reserve(t, 10, &past)
	active := f.reserve(t, 20, nil)

	_, err := f.uc.Expire(ctx, now)
	require.NoError(t, err)

	visible, total, err := f.uc.List(ctx, repository.ReservationFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, visible, 1)
	assert.Equal(t, active.ID, visible[0].ID)

	all, total, err := f.uc.List(ctx, repository.ReservationFilter{Limit: 10, IncludeExpired: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	onlyExpired, _, err := f.uc.List(ctx, repository.ReservationFilter{
		Limit: 10, Status: entity.ReservationStatusExpired,
	})
	require.NoError(t, err)
	require.Len(t, onlyExpired, 1)

	_, _, err = f.uc.List(ctx, repository.ReservationFilter{Status: "GONE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// rowLockSpy wraps a TxRunner and records whether the workflow reads the
// reservation through the locking variant inside its transaction.
type rowLockSpy struct {
	inner    ports.TxRunner
	locked   int
	unlocked int
}

func (s *rowLockSpy) Run(ctx context.Context, fn func(ports.TxRepos) error) error {
	return s.inner.Run(ctx, func(repos ports.TxRepos) error {
		repos.Reservations = &spyReservationRepo{ReservationRepository: repos.Reservations, spy: s}
		return fn(repos)
	})
}

type spyReservationRepo struct {
	repository.ReservationRepository
	spy *rowLockSpy
}

func (r *spyReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	r.spy.unlocked++
	return r.ReservationRepository.GetByID(ctx, id)
}

func (r *spyReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	r.spy.locked++
	return r.ReservationRepository.GetByIDForUpdate(ctx, id)
}

// Fulfill and cancel must read the reservation with a row lock so concurrent
// fulfillments serialize on the row and no quantity_fulfilled update is lost.
func TestReservation_TransitionsReadRowLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	spy := &rowLockSpy{inner: f.store.TxRunner()}
	uc := reservation.NewUseCase(
		spy, f.store.Reservations(), f.store.Products(), f.store.Warehouses(), f.ledgerUC,
	)

	res := f.reserve(t, 100, nil)
	_, err := uc.Fulfill(ctx, res.ID, reservation.FulfillInput{Quantity: decimal.NewFromInt(40)})
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, res.ID, "stock recalled")
	require.NoError(t, err)

	assert.Equal(t, 2, spy.locked)
	assert.Zero(t, spy.unlocked)
}
