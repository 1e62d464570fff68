package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance is the materialized on-hand quantity for a (product, warehouse)
// pair. It is derived from the movement ledger and maintained in the same
// transaction as each movement append; on any disagreement the ledger wins.
type StockBalance struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
