package transfer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/application/transfer"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/internal/infrastructure/memory"
)

type fixture struct {
	uc       *transfer.UseCase
	ledgerUC *ledger.UseCase
	store    *memory.Store

	productA string
	productB string
	source   string
	dest     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &fixture{store: store}
	for _, p := range []struct {
		id  *string
		sku string
	}{
		{&f.productA, "PLATE-S235-10"},
		{&f.productB, "BEAM-IPE-200"},
	} {
		*p.id = uuid.New().String()
		require.NoError(t, store.Products().Create(ctx, &entity.Product{
			ID: *p.id, SKU: p.sku, Name: p.sku, Unit: entity.UnitKG, Active: true,
		}))
	}
	for _, w := range []struct {
		id   *string
		code string
	}{
		{&f.source, "MAIN"},
		{&f.dest, "PORT"},
	} {
		*w.id = uuid.New().String()
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{
			ID: *w.id, Code: w.code, Name: w.code, Active: true,
		}))
	}

	f.ledgerUC = ledger.NewUseCase(
		store.TxRunner(), store.Movements(), store.Balances(), store.Products(), store.Warehouses(),
	)
	f.uc = transfer.NewUseCase(
		store.TxRunner(), store.Transfers(), store.Products(), store.Warehouses(), f.ledgerUC,
	)
	return f
}

func (f *fixture) stock(t *testing.T, productID, warehouseID string, quantity int64) {
	t.Helper()
	_, err := f.ledgerUC.RecordMovement(context.Background(), ledger.RecordMovementInput{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		MovementType:    entity.MovementTypeIN,
		Quantity:        decimal.NewFromInt(quantity),
		ReferenceType:   entity.ReferenceTypeInitial,
		ReferenceNumber: "INIT",
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, productID, warehouseID string) decimal.Decimal {
	t.Helper()
	balance, err := f.ledgerUC.GetBalance(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return balance
}

func (f *fixture) create(t *testing.T, items ...transfer.ItemInput) *entity.Transfer {
	t.Helper()
	tr, err := f.uc.Create(context.Background(), transfer.CreateInput{
		SourceWarehouseID:      f.source,
		DestinationWarehouseID: f.dest,
		Items:                  items,
	})
	require.NoError(t, err)
	return tr
}

func item(productID string, quantity int64) transfer.ItemInput {
	return transfer.ItemInput{ProductID: productID, Quantity: decimal.NewFromInt(quantity)}
}

func TestTransfer_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 1000)

	tr := f.create(t, item(f.productA, 400))
	assert.Equal(t, entity.TransferStatusDraft, tr.Status)
	assert.True(t, strings.HasPrefix(tr.TransferNumber, "TRF-"))

	// Creating moves no stock.
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(1000)))

	shipped, err := f.uc.Ship(ctx, tr.ID, transfer.ShipInput{
		TrackingNumber: "TRK-9",
		Carrier:        "North Haul",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedDate)
	assert.True(t, shipped.Items[0].QuantityShipped.Equal(decimal.NewFromInt(400)))
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(600)))
	assert.True(t, f.balance(t, f.productA, f.dest).IsZero())

	received, err := f.uc.Receive(ctx, tr.ID, transfer.ActorInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, received.Status)
	require.NotNil(t, received.ReceivedDate)
	assert.True(t, received.Items[0].QuantityReceived.Equal(decimal.NewFromInt(400)))
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(600)))
	assert.True(t, f.balance(t, f.productA, f.dest).Equal(decimal.NewFromInt(400)))

	// The two legs landed in the ledger with back-links.
	movements, err := f.ledgerUC.ListByReference(ctx, entity.ReferenceTypeTransfer, tr.TransferNumber)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, tr.ID, m.TransferID)
	}
	assert.Equal(t, entity.MovementTypeTransferOut, movements[0].MovementType)
	assert.Equal(t, f.dest, movements[0].DestinationWarehouseID)
	assert.Equal(t, entity.MovementTypeTransferIn, movements[1].MovementType)
}

func TestTransfer_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input transfer.CreateInput
		want  error
	}{
		{"no items", transfer.CreateInput{
			SourceWarehouseID: f.source, DestinationWarehouseID: f.dest,
		}, domain.ErrInvalidInput},
		{"same warehouse", transfer.CreateInput{
			SourceWarehouseID: f.source, DestinationWarehouseID: f.source,
			Items: []transfer.ItemInput{item(f.productA, 1)},
		}, domain.ErrInvalidInput},
		{"zero quantity", transfer.CreateInput{
			SourceWarehouseID: f.source, DestinationWarehouseID: f.dest,
			Items: []transfer.ItemInput{item(f.productA, 0)},
		}, domain.ErrInvalidInput},
		{"unknown warehouse", transfer.CreateInput{
			SourceWarehouseID: uuid.New().String(), DestinationWarehouseID: f.dest,
			Items: []transfer.ItemInput{item(f.productA, 1)},
		}, domain.ErrNotFound},
		{"unknown product", transfer.CreateInput{
			SourceWarehouseID: f.source, DestinationWarehouseID: f.dest,
			Items: []transfer.ItemInput{item(uuid.New().String(), 1)},
		}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// A multi-item ship is all-or-nothing: when a later item is short-stocked,
// deductions already applied for earlier items must roll back.
func TestTransfer_ShipAtomicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 500)
	f.stock(t, f.productB, f.source, 100)

	tr := f.create(t, item(f.productA, 300), item(f.productB, 150))

	_, err := f.uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(500)))
	assert.True(t, f.balance(t, f.productB, f.source).Equal(decimal.NewFromInt(100)))

	// Status unchanged, still shippable after restocking.
	current, err := f.uc.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, current.Status)

	movements, err := f.ledgerUC.ListByReference(ctx, entity.ReferenceTypeTransfer, tr.TransferNumber)
	require.NoError(t, err)
	assert.Empty(t, movements)

	f.stock(t, f.productB, f.source, 100)
	_, err = f.uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(200)))
	assert.True(t, f.balance(t, f.productB, f.source).Equal(decimal.NewFromInt(50)))
}

func TestTransfer_CancelBeforeShip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 100)

	tr := f.create(t, item(f.productA, 50))
	cancelled, err := f.uc.Cancel(ctx, tr.ID, transfer.ActorInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)

	// No stock ever moved, so no compensation either.
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(100)))
	movements, err := f.ledgerUC.ListByReference(ctx, entity.ReferenceTypeTransfer, tr.TransferNumber)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestTransfer_CancelAfterShipCompensatesExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 1000)

	tr := f.create(t, item(f.productA, 400))
	_, err := f.uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	require.NoError(t, err)
	require.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(600)))

	cancelled, err := f.uc.Cancel(ctx, tr.ID, transfer.ActorInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, cancelled.Status)
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(1000)))

	movements, err := f.ledgerUC.ListByReference(ctx, entity.ReferenceTypeTransfer, tr.TransferNumber)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, entity.MovementTypeReversal, movements[1].MovementType)

	// A second cancel is a conflict and must not compensate again.
	_, err = f.uc.Cancel(ctx, tr.ID, transfer.ActorInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.balance(t, f.productA, f.source).Equal(decimal.NewFromInt(1000)))
}

func TestTransfer_IllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 100)

	tr := f.create(t, item(f.productA, 10))

	// Receive before ship.
	_, err := f.uc.Receive(ctx, tr.ID, transfer.ActorInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	require.NoError(t, err)

	// Double ship.
	_, err = f.uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Receive(ctx, tr.ID, transfer.ActorInput{})
	require.NoError(t, err)

	// Cancel after completion.
	_, err = f.uc.Cancel(ctx, tr.ID, transfer.ActorInput{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Unknown id.
	_, err = f.uc.Ship(ctx, uuid.New().String(), transfer.ShipInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 100)

	first := f.create(t, item(f.productA, 10))
	second := f.create(t, item(f.productA, 20))
	_, err := f.uc.Ship(ctx, second.ID, transfer.ShipInput{})
	require.NoError(t, err)

	all, total, err := f.uc.List(ctx, repository.TransferFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	drafts, total, err := f.uc.List(ctx, repository.TransferFilter{
		Status: entity.TransferStatusDraft, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)

	_, _, err = f.uc.List(ctx, repository.TransferFilter{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// rowLockSpy wraps a TxRunner and records whether the workflow reads the
// transfer through the locking variant inside its transaction.
type rowLockSpy struct {
	inner    ports.TxRunner
	locked   int
	unlocked int
}

func (s *rowLockSpy) Run(ctx context.Context, fn func(ports.TxRepos) error) error {
	return s.inner.Run(ctx, func(repos ports.TxRepos) error {
		repos.Transfers = &spyTransferRepo{TransferRepository: repos.Transfers, spy: s}
		return fn(repos)
	})
}

type spyTransferRepo struct {
	repository.TransferRepository
	spy *rowLockSpy
}

func (r *spyTransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	r.spy.unlocked++
	return r.TransferRepository.GetByID(ctx, id)
}

func (r *spyTransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	r.spy.locked++
	return r.TransferRepository.GetByIDForUpdate(ctx, id)
}

// Ship, receive and cancel must read the transfer with a row lock so two
// concurrent transitions on the same id serialize and the loser fails the
// status check, instead of both deducting stock or both compensating.
func TestTransfer_TransitionsReadRowLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, f.productA, f.source, 1000)

	spy := &rowLockSpy{inner: f.store.TxRunner()}
	uc := transfer.NewUseCase(
		spy, f.store.Transfers(), f.store.Products(), f.store.Warehouses(), f.ledgerUC,
	)

	tr := f.create(t, item(f.productA, 100))
	_, err := uc.Ship(ctx, tr.ID, transfer.ShipInput{})
	require.NoError(t, err)
	_, err = uc.Receive(ctx, tr.ID, transfer.ActorInput{})
	require.NoError(t, err)

	cancelled := f.create(t, item(f.productA, 50))
	_, err = uc.Cancel(ctx, cancelled.ID, transfer.ActorInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, spy.locked)
	assert.Zero(t, spy.unlocked)
}
