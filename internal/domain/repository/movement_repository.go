package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// MovementFilter narrows ListMovements. Zero values mean "no filter".
type MovementFilter struct {
	ProductID     string
	WarehouseID   string
	MovementType  string
	ReferenceType string
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string // matches reference_number and notes
	Limit         int
	Offset        int
}

// MovementStats are ledger aggregates for the overview dashboard.
type MovementStats struct {
	TotalMovements int
	StockIn        decimal.Decimal // sum of inbound quantities in the window
	StockOut       decimal.Decimal // sum of outbound quantities in the window
}

// StockMovementRepository is the persistence port for the append-only ledger.
// List results are ordered by movement_date then id ascending so pagination
// stays stable under concurrent appends.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	ListByReference(ctx context.Context, referenceType, referenceNumber string) ([]*entity.StockMovement, error)
	// LatestForKey returns the newest movement for a (product, warehouse) pair,
	// nil if the pair has no history.
	LatestForKey(ctx context.Context, productID, warehouseID string) (*entity.StockMovement, error)
	UpdateNotes(ctx context.Context, id, notes string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	// SumForKey recomputes the signed quantity sum from the ledger itself;
	// used by reconciliation to audit the materialized balance.
	SumForKey(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
	ProductIDsForWarehouse(ctx context.Context, warehouseID string) ([]string, error)
	Stats(ctx context.Context, from, to time.Time) (*MovementStats, error)
	Recent(ctx context.Context, limit int) ([]*entity.StockMovement, error)
}
