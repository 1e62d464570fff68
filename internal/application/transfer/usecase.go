package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// UseCase drives the inter-warehouse transfer state machine:
// DRAFT/PENDING -> SHIPPED/IN_TRANSIT -> COMPLETED, with CANCELLED reachable
// from every non-terminal state. Ship and receive emit the paired
// TRANSFER_OUT/TRANSFER_IN ledger legs; cancelling after ship compensates the
// source with REVERSAL movements. All multi-item writes run in one
// transaction, so a short-stocked item rolls back the whole command.
type UseCase struct {
	tx         ports.TxRunner
	transfers  repository.TransferRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	ledger     LedgerAppender
}

// NewUseCase builds the transfer workflow.
func NewUseCase(
	tx ports.TxRunner,
	transfers repository.TransferRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	ledger LedgerAppender,
) *UseCase {
	return &UseCase{
		tx:         tx,
		transfers:  transfers,
		products:   products,
		warehouses: warehouses,
		ledger:     ledger,
	}
}

// ItemInput is one product line of a transfer command.
type ItemInput struct {
	ProductID   string
	Quantity    decimal.Decimal
	Unit        string
	BatchNumber string
	Notes       string
}

// CreateInput is the command to open a transfer in DRAFT.
type CreateInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Items                  []ItemInput
	Notes                  string
	ExpectedDate           *time.Time
	CreatedBy              string
	CreatedByName          string
}

// ShipInput carries the optional logistics details stamped at ship time.
type ShipInput struct {
	TrackingNumber string
	Carrier        string
	VehicleNumber  string
	DriverName     string
	DriverPhone    string
	By             string
	ByName         string
}

// ActorInput identifies who performed a receive or cancel.
type ActorInput struct {
	By     string
	ByName string
}

// Create validates and persists a new transfer in DRAFT. No stock moves yet.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Transfer, error) {
	if input.SourceWarehouseID == "" || input.DestinationWarehouseID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.SourceWarehouseID == input.DestinationWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	for i := range input.Items {
		if !input.Items[i].Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		if input.Items[i].Unit == "" {
			input.Items[i].Unit = entity.UnitKG
		}
		if !entity.ValidUnit(input.Items[i].Unit) {
			return nil, domain.ErrInvalidInput
		}
	}
	if err := uc.checkWarehouse(ctx, input.SourceWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.checkWarehouse(ctx, input.DestinationWarehouseID); err != nil {
		return nil, err
	}
	for _, item := range input.Items {
		product, err := uc.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	transfer := &entity.Transfer{
		ID:                     uuid.New().String(),
		TransferNumber:         newTransferNumber(now),
		SourceWarehouseID:      input.SourceWarehouseID,
		DestinationWarehouseID: input.DestinationWarehouseID,
		Status:                 entity.TransferStatusDraft,
		Notes:                  input.Notes,
		ExpectedDate:           input.ExpectedDate,
		CreatedAt:              now,
		UpdatedAt:              now,
		CreatedBy:              input.CreatedBy,
		CreatedByName:          input.CreatedByName,
	}
	for _, item := range input.Items {
		transfer.Items = append(transfer.Items, entity.TransferItem{
			ID:          uuid.New().String(),
			TransferID:  transfer.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			BatchNumber: item.BatchNumber,
			Notes:       item.Notes,
		})
	}

	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		return repos.Transfers.Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Ship transitions DRAFT/PENDING to SHIPPED, deducting every item from the
// source warehouse. If any single item is short-stocked the transaction rolls
// back and no movement survives.
func (uc *UseCase) Ship(ctx context.Context, id string, input ShipInput) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		// Lock the transfer row so a concurrent ship of the same id waits and
		// then fails the CanShip check instead of deducting the source twice.
		transfer, err := repos.Transfers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.CanShip() {
			return domain.ErrConflict
		}
		now := time.Now()
		for i := range transfer.Items {
			item := &transfer.Items[i]
			movement := uc.legMovement(transfer, item, entity.MovementTypeTransferOut, now, input.By, input.ByName)
			movement.WarehouseID = transfer.SourceWarehouseID
			movement.DestinationWarehouseID = transfer.DestinationWarehouseID
			if err := uc.ledger.AppendInTx(ctx, repos, movement); err != nil {
				return err
			}
			item.QuantityShipped = item.Quantity
		}
		transfer.Status = entity.TransferStatusShipped
		transfer.ShippedDate = &now
		transfer.UpdatedAt = now
		transfer.TrackingNumber = input.TrackingNumber
		transfer.Carrier = input.Carrier
		transfer.VehicleNumber = input.VehicleNumber
		transfer.DriverName = input.DriverName
		transfer.DriverPhone = input.DriverPhone
		transfer.ShippedBy = input.By
		transfer.ShippedByName = input.ByName
		if err := repos.Transfers.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Receive transitions SHIPPED/IN_TRANSIT to COMPLETED, crediting every item
// to the destination warehouse.
func (uc *UseCase) Receive(ctx context.Context, id string, input ActorInput) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		transfer, err := repos.Transfers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.CanReceive() {
			return domain.ErrConflict
		}
		now := time.Now()
		for i := range transfer.Items {
			item := &transfer.Items[i]
			movement := uc.legMovement(transfer, item, entity.MovementTypeTransferIn, now, input.By, input.ByName)
			movement.WarehouseID = transfer.DestinationWarehouseID
			if err := uc.ledger.AppendInTx(ctx, repos, movement); err != nil {
				return err
			}
			item.QuantityReceived = item.Quantity
		}
		transfer.Status = entity.TransferStatusCompleted
		transfer.ReceivedDate = &now
		transfer.UpdatedAt = now
		transfer.ReceivedBy = input.By
		transfer.ReceivedByName = input.ByName
		if err := repos.Transfers.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel moves a non-terminal transfer to CANCELLED. If stock already left
// the source, compensating REVERSAL movements restore the source balance
// exactly once; cancelling a CANCELLED or COMPLETED transfer is a conflict.
func (uc *UseCase) Cancel(ctx context.Context, id string, input ActorInput) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := uc.tx.Run(ctx, func(repos ports.TxRepos) error {
		// Locked read: only one of two concurrent cancels may compensate.
		transfer, err := repos.Transfers.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if !transfer.CanCancel() {
			return domain.ErrConflict
		}
		now := time.Now()
		if transfer.Shipped() {
			for i := range transfer.Items {
				item := &transfer.Items[i]
				movement := uc.legMovement(transfer, item, entity.MovementTypeReversal, now, input.By, input.ByName)
				movement.WarehouseID = transfer.SourceWarehouseID
				if err := uc.ledger.AppendInTx(ctx, repos, movement); err != nil {
					return err
				}
			}
		}
		transfer.Status = entity.TransferStatusCancelled
		transfer.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, transfer); err != nil {
			return err
		}
		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one transfer with its items.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	transfer, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

// List returns a page of transfers plus the unpaged total.
func (uc *UseCase) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, int, error) {
	if filter.Status != "" {
		switch filter.Status {
		case entity.TransferStatusDraft, entity.TransferStatusPending,
			entity.TransferStatusShipped, entity.TransferStatusInTransit,
			entity.TransferStatusReceived, entity.TransferStatusCompleted,
			entity.TransferStatusCancelled:
		default:
			return nil, 0, domain.ErrInvalidInput
		}
	}
	return uc.transfers.List(ctx, filter)
}

func (uc *UseCase) legMovement(
	transfer *entity.Transfer,
	item *entity.TransferItem,
	movementType string,
	now time.Time,
	by, byName string,
) *entity.StockMovement {
	return &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       item.ProductID,
		MovementType:    movementType,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		ReferenceType:   entity.ReferenceTypeTransfer,
		ReferenceNumber: transfer.TransferNumber,
		ReferenceID:     transfer.ID,
		TransferID:      transfer.ID,
		BatchNumber:     item.BatchNumber,
		MovementDate:    now,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       by,
		CreatedByName:   byName,
	}
}

func (uc *UseCase) checkWarehouse(ctx context.Context, id string) error {
	warehouse, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	return nil
}

// newTransferNumber builds a human-readable unique number, e.g. TRF-20260827-3F2A91BC.
func newTransferNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TRF-%s-%s", now.Format("20060102"), suffix)
}
