package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// UseCase is the movement ledger: it records atomic stock deltas with a
// running balance snapshot and exposes balance and history queries. Each write
// runs in one transaction with the balance row locked (SELECT FOR UPDATE), so
// two concurrent movements on the same (product, warehouse) key can never
// compute the same stale balance.
type UseCase struct {
	tx         ports.TxRunner
	movements  repository.StockMovementRepository
	balances   repository.StockBalanceRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
}

// NewUseCase builds the ledger use case. movements/balances are pool-bound
// repositories for the read side; writes go through tx.
func NewUseCase(
	tx ports.TxRunner,
	movements repository.StockMovementRepository,
	balances repository.StockBalanceRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
) *UseCase {
	return &UseCase{
		tx:         tx,
		movements:  movements,
		balances:   balances,
		products:   products,
		warehouses: warehouses,
	}
}

// RecordMovementInput is the command to append one ledger entry. Quantity is
// a positive magnitude; the movement type decides the balance direction.
type RecordMovementInput struct {
	ProductID       string
	WarehouseID     string
	MovementType    string
	Quantity        decimal.Decimal
	Unit            string
	ReferenceType   string
	ReferenceNumber string
	ReferenceID     string
	Notes           string
	UnitCost        *decimal.Decimal
	BatchNumber     string
	CoilNumber      string
	HeatNumber      string
	MovementDate    *time.Time
	CreatedBy       string
	CreatedByName   string
}

// RecordMovement validates the command, checks the referenced product and
// warehouse exist, and appends the entry transactionally. Outbound types fail
// with ErrInsufficientStock instead of driving the balance negative.
func (uc *UseCase) RecordMovement(ctx context.Context, input RecordMovementInput) (*entity.StockMovement, error) {
	if _, ok := entity.MovementDirection(input.MovementType); !ok {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if input.Unit == "" {
		input.Unit = entity.UnitKG
	}
	if !entity.ValidUnit(input.Unit) {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReferenceType(input.ReferenceType) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkRefs(ctx, input.ProductID, input.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	movementDate := now
	if input.MovementDate != nil {
		movementDate = *input.MovementDate
	}
	unitCost := decimal.Zero
	if input.UnitCost != nil {
		if input.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		unitCost = *input.UnitCost
	}

	movement := &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       input.ProductID,
		WarehouseID:     input.WarehouseID,
		MovementType:    input.MovementType,
		Quantity:        input.Quantity,
		Unit:            input.Unit,
		ReferenceType:   input.ReferenceType,
		ReferenceNumber: input.ReferenceNumber,
		ReferenceID:     input.ReferenceID,
		UnitCost:        unitCost,
		TotalCost:       input.Quantity.Mul(unitCost),
		BatchNumber:     input.BatchNumber,
		CoilNumber:      input.CoilNumber,
		HeatNumber:      input.HeatNumber,
		Notes:           input.Notes,
		MovementDate:    movementDate,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       input.CreatedBy,
		CreatedByName:   input.CreatedByName,
	}

	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		return uc.AppendInTx(ctx, repos, movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// AppendInTx locks the balance row for movement's (product, warehouse) key,
// enforces the non-negative balance invariant, stamps BalanceAfter and appends
// the entry — all against the caller's transaction. The transfer and
// reservation workflows call this so a multi-movement command stays
// all-or-nothing under a single commit.
func (uc *UseCase) AppendInTx(ctx context.Context, repos ports.TxRepos, movement *entity.StockMovement) error {
	balance, err := repos.Balances.GetForUpdate(ctx, movement.ProductID, movement.WarehouseID)
	if err != nil {
		return err
	}
	newQty := balance.Quantity.Add(movement.SignedQuantity())
	if newQty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	balance.Quantity = newQty
	balance.UpdatedAt = movement.CreatedAt
	if err := repos.Balances.Upsert(ctx, balance); err != nil {
		return err
	}
	movement.BalanceAfter = newQty
	return repos.Movements.Create(ctx, movement)
}

// GetBalance returns the current on-hand quantity for a key. Unknown keys on
// existing entities are zero, never an error.
func (uc *UseCase) GetBalance(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	if err := uc.checkRefs(ctx, productID, warehouseID); err != nil {
		return decimal.Zero, err
	}
	balance, err := uc.balances.Get(ctx, productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Quantity, nil
}

// GetMovement returns one ledger entry by id.
func (uc *UseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	movement, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, domain.ErrNotFound
	}
	return movement, nil
}

// ListMovements returns a page of the ledger ordered by movement date then id
// ascending, plus the unpaged total. Unknown enum filters are rejected.
func (uc *UseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	if filter.MovementType != "" {
		if _, ok := entity.MovementDirection(filter.MovementType); !ok {
			return nil, 0, domain.ErrInvalidInput
		}
	}
	if filter.ReferenceType != "" && !entity.ValidReferenceType(filter.ReferenceType) {
		return nil, 0, domain.ErrInvalidInput
	}
	return uc.movements.List(ctx, filter)
}

// ListByReference returns all movements linked to a source document.
func (uc *UseCase) ListByReference(ctx context.Context, referenceType, referenceNumber string) ([]*entity.StockMovement, error) {
	if !entity.ValidReferenceType(referenceType) {
		return nil, domain.ErrInvalidInput
	}
	return uc.movements.ListByReference(ctx, referenceType, referenceNumber)
}

// UpdateNotes edits the free-text notes of an entry. Everything else on a
// movement is immutable for audit integrity.
func (uc *UseCase) UpdateNotes(ctx context.Context, id, notes string) (*entity.StockMovement, error) {
	movement, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	if err := uc.movements.UpdateNotes(ctx, id, notes, now); err != nil {
		return nil, err
	}
	movement.Notes = notes
	movement.UpdatedAt = now
	return movement, nil
}

// DeleteMovement removes a ledger entry. Only the newest entry for its
// (product, warehouse) key may go, and only when no transfer or reservation
// depends on it; otherwise the delete fails with ErrConflict. The balance is
// reversed in the same transaction.
func (uc *UseCase) DeleteMovement(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		movement, err := repos.Movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if movement == nil {
			return domain.ErrNotFound
		}
		if movement.TransferID != "" || movement.ReservationID != "" {
			return domain.ErrConflict
		}
		latest, err := repos.Movements.LatestForKey(ctx, movement.ProductID, movement.WarehouseID)
		if err != nil {
			return err
		}
		if latest == nil || latest.ID != movement.ID {
			return domain.ErrConflict
		}
		balance, err := repos.Balances.GetForUpdate(ctx, movement.ProductID, movement.WarehouseID)
		if err != nil {
			return err
		}
		balance.Quantity = balance.Quantity.Sub(movement.SignedQuantity())
		balance.UpdatedAt = time.Now()
		if err := repos.Balances.Upsert(ctx, balance); err != nil {
			return err
		}
		return repos.Movements.Delete(ctx, id)
	})
}

func (uc *UseCase) checkRefs(ctx context.Context, productID, warehouseID string) error {
	if productID == "" || warehouseID == "" {
		return domain.ErrInvalidInput
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	warehouse, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	return nil
}
