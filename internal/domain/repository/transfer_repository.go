package repository

import (
	"context"
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// TransferFilter narrows ListTransfers. Zero values mean "no filter".
type TransferFilter struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 string
	Limit                  int
	Offset                 int
}

// TransferRepository is the persistence port for inter-warehouse transfers
// and their items.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetByIDForUpdate locks the transfer for the rest of the transaction so
	// concurrent state transitions serialize instead of both reading the same
	// status. Only valid inside a TxRunner callback.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// Update persists header fields and per-item shipped/received quantities.
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, int, error)
	CountByStatus(ctx context.Context, statuses ...string) (int, error)
	CountReceivedBetween(ctx context.Context, from, to time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]*entity.Transfer, error)
}
