package ledger_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/internal/infrastructure/memory"
)

type fixture struct {
	uc          *ledger.UseCase
	store       *memory.Store
	productID   string
	warehouseID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	product := &entity.Product{
		ID:     uuid.New().String(),
		SKU:    "COIL-304-1.5",
		Name:   "Cold rolled coil 304 1.5mm",
		Grade:  "304",
		Unit:   entity.UnitKG,
		Active: true,
	}
	require.NoError(t, store.Products().Create(ctx, product))

	warehouse := &entity.Warehouse{
		ID:     uuid.New().String(),
		Code:   "MAIN",
		Name:   "Main warehouse",
		Active: true,
	}
	require.NoError(t, store.Warehouses().Create(ctx, warehouse))

	uc := ledger.NewUseCase(
		store.TxRunner(),
		store.Movements(),
		store.Balances(),
		store.Products(),
		store.Warehouses(),
	)
	return &fixture{uc: uc, store: store, productID: product.ID, warehouseID: warehouse.ID}
}

func (f *fixture) record(t *testing.T, movementType string, quantity int64) *entity.StockMovement {
	t.Helper()
	m, err := f.uc.RecordMovement(context.Background(), ledger.RecordMovementInput{
		ProductID:       f.productID,
		WarehouseID:     f.warehouseID,
		MovementType:    movementType,
		Quantity:        decimal.NewFromInt(quantity),
		Unit:            entity.UnitKG,
		ReferenceType:   entity.ReferenceTypeAdjustment,
		ReferenceNumber: "ADJ-001",
	})
	require.NoError(t, err)
	return m
}

func TestRecordMovement_InThenOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.record(t, entity.MovementTypeIN, 500)
	assert.True(t, in.BalanceAfter.Equal(decimal.NewFromInt(500)))

	out := f.record(t, entity.MovementTypeOUT, 200)
	assert.True(t, out.BalanceAfter.Equal(decimal.NewFromInt(300)))

	balance, err := f.uc.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(300)))
}

func TestRecordMovement_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, entity.MovementTypeIN, 300)

	_, err := f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:       f.productID,
		WarehouseID:     f.warehouseID,
		MovementType:    entity.MovementTypeOUT,
		Quantity:        decimal.NewFromInt(400),
		ReferenceType:   entity.ReferenceTypeInvoice,
		ReferenceNumber: "INV-100",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// The failed command must leave no trace: balance and ledger unchanged.
	balance, err := f.uc.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(300)))

	_, total, err := f.uc.ListMovements(ctx, repository.MovementFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRecordMovement_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input ledger.RecordMovementInput
	}{
		{"unknown movement type", ledger.RecordMovementInput{
			ProductID: f.productID, WarehouseID: f.warehouseID,
			MovementType: "SIDEWAYS", Quantity: decimal.NewFromInt(10),
			ReferenceType: entity.ReferenceTypeAdjustment,
		}},
		{"zero quantity", ledger.RecordMovementInput{
			ProductID: f.productID, WarehouseID: f.warehouseID,
			MovementType: entity.MovementTypeIN, Quantity: decimal.Zero,
			ReferenceType: entity.ReferenceTypeAdjustment,
		}},
		{"negative quantity", ledger.RecordMovementInput{
			ProductID: f.productID, WarehouseID: f.warehouseID,
			MovementType: entity.MovementTypeIN, Quantity: decimal.NewFromInt(-5),
			ReferenceType: entity.ReferenceTypeAdjustment,
		}},
		{"unknown unit", ledger.RecordMovementInput{
			ProductID: f.productID, WarehouseID: f.warehouseID,
			MovementType: entity.MovementTypeIN, Quantity: decimal.NewFromInt(10),
			Unit: "BARRELS", ReferenceType: entity.ReferenceTypeAdjustment,
		}},
		{"unknown reference type", ledger.RecordMovementInput{
			ProductID: f.productID, WarehouseID: f.warehouseID,
			MovementType: entity.MovementTypeIN, Quantity: decimal.NewFromInt(10),
			ReferenceType: "GIFT",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RecordMovement(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRecordMovement_UnknownRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:     uuid.New().String(),
		WarehouseID:   f.warehouseID,
		MovementType:  entity.MovementTypeIN,
		Quantity:      decimal.NewFromInt(10),
		ReferenceType: entity.ReferenceTypeAdjustment,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:     f.productID,
		WarehouseID:   uuid.New().String(),
		MovementType:  entity.MovementTypeIN,
		Quantity:      decimal.NewFromInt(10),
		ReferenceType: entity.ReferenceTypeAdjustment,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Balance conservation: after any sequence of accepted movements the balance
// equals the signed sum of the ledger, and every BalanceAfter snapshot was
// consistent when written.
func TestRecordMovement_BalanceConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	expected := decimal.Zero
	for i := 0; i < 200; i++ {
		quantity := decimal.NewFromInt(rng.Int63n(50) + 1)
		movementType := entity.MovementTypeIN
		if rng.Intn(2) == 0 {
			movementType = entity.MovementTypeOUT
		}
		_, err := f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
			ProductID:       f.productID,
			WarehouseID:     f.warehouseID,
			MovementType:    movementType,
			Quantity:        quantity,
			ReferenceType:   entity.ReferenceTypeAdjustment,
			ReferenceNumber: "ADJ-RAND",
		})
		if movementType == entity.MovementTypeOUT && quantity.GreaterThan(expected) {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			continue
		}
		require.NoError(t, err)
		if movementType == entity.MovementTypeIN {
			expected = expected.Add(quantity)
		} else {
			expected = expected.Sub(quantity)
		}
	}

	balance, err := f.uc.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(expected), "balance %s != expected %s", balance, expected)

	sum, err := f.store.Movements().SumForKey(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(expected), "ledger sum %s != expected %s", sum, expected)
}

func TestDeleteMovement_OnlyNewestOfKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.record(t, entity.MovementTypeIN, 100)
	second := f.record(t, entity.MovementTypeIN, 50)

	// Older entries are frozen.
	err := f.uc.DeleteMovement(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Deleting the newest reverses its balance effect.
	require.NoError(t, f.uc.DeleteMovement(ctx, second.ID))
	balance, err := f.uc.GetBalance(ctx, f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))

	_, err = f.uc.GetMovement(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.uc.DeleteMovement(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMovement_WorkflowLinkedIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A movement carrying a transfer back-link may never be deleted directly.
	linked := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     f.productID,
		WarehouseID:   f.warehouseID,
		MovementType:  entity.MovementTypeIN,
		Quantity:      decimal.NewFromInt(10),
		Unit:          entity.UnitKG,
		ReferenceType: entity.ReferenceTypeTransfer,
		TransferID:    uuid.New().String(),
		MovementDate:  time.Now(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	err := f.store.TxRunner().Run(ctx, func(repos ports.TxRepos) error {
		return f.uc.AppendInTx(ctx, repos, linked)
	})
	require.NoError(t, err)

	err = f.uc.DeleteMovement(ctx, linked.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.record(t, entity.MovementTypeIN, 10)
	updated, err := f.uc.UpdateNotes(ctx, m.ID, "received with minor edge damage")
	require.NoError(t, err)
	assert.Equal(t, "received with minor edge damage", updated.Notes)

	stored, err := f.uc.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "received with minor edge damage", stored.Notes)
	// Nothing else moved.
	assert.True(t, stored.Quantity.Equal(m.Quantity))
	assert.Equal(t, m.MovementType, stored.MovementType)

	_, err = f.uc.UpdateNotes(ctx, uuid.New().String(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_PaginationAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.record(t, entity.MovementTypeIN, int64(10+i))
	}
	f.record(t, entity.MovementTypeOUT, 7)

	page1, total, err := f.uc.ListMovements(ctx, repository.MovementFilter{Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, page1, 4)

	page2, _, err := f.uc.ListMovements(ctx, repository.MovementFilter{Limit: 4, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page2, 2)

	// Pages are disjoint and ordered oldest first.
	seen := map[string]bool{}
	for _, m := range append(page1, page2...) {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	assert.True(t, page1[0].Quantity.Equal(decimal.NewFromInt(10)))

	outs, total, err := f.uc.ListMovements(ctx, repository.MovementFilter{
		MovementType: entity.MovementTypeOUT, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, outs, 1)
	assert.True(t, outs[0].Quantity.Equal(decimal.NewFromInt(7)))

	_, _, err = f.uc.ListMovements(ctx, repository.MovementFilter{MovementType: "SIDEWAYS"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = f.uc.ListMovements(ctx, repository.MovementFilter{ReferenceType: "GIFT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListByReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, entity.MovementTypeIN, 100)
	_, err := f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:       f.productID,
		WarehouseID:     f.warehouseID,
		MovementType:    entity.MovementTypeOUT,
		Quantity:        decimal.NewFromInt(30),
		ReferenceType:   entity.ReferenceTypeInvoice,
		ReferenceNumber: "INV-2026-001",
	})
	require.NoError(t, err)

	linked, err := f.uc.ListByReference(ctx, entity.ReferenceTypeInvoice, "INV-2026-001")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.True(t, linked[0].Quantity.Equal(decimal.NewFromInt(30)))

	_, err = f.uc.ListByReference(ctx, "GIFT", "X")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetBalance_ZeroForUnseenKey(t *testing.T) {
	f := newFixture(t)
	balance, err := f.uc.GetBalance(context.Background(), f.productID, f.warehouseID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestRecordMovement_CostAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unitCost := decimal.NewFromFloat(2.5)
	m, err := f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:       f.productID,
		WarehouseID:     f.warehouseID,
		MovementType:    entity.MovementTypeIN,
		Quantity:        decimal.NewFromInt(100),
		ReferenceType:   entity.ReferenceTypePurchaseOrder,
		ReferenceNumber: "PO-77",
		UnitCost:        &unitCost,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitKG, m.Unit) // default unit
	assert.True(t, m.TotalCost.Equal(decimal.NewFromInt(250)))

	negative := decimal.NewFromInt(-1)
	_, err = f.uc.RecordMovement(ctx, ledger.RecordMovementInput{
		ProductID:     f.productID,
		WarehouseID:   f.warehouseID,
		MovementType:  entity.MovementTypeIN,
		Quantity:      decimal.NewFromInt(1),
		ReferenceType: entity.ReferenceTypePurchaseOrder,
		UnitCost:      &negative,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
