package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverviewResponse is the dashboard KPI block.
type OverviewResponse struct {
	PendingTransfers       int             `json:"pending_transfers"`
	InTransit              int             `json:"in_transit"`
	CompletedToday         int             `json:"completed_today"`
	AwaitingReconciliation int             `json:"awaiting_reconciliation"`
	StockInToday           decimal.Decimal `json:"stock_in_today"`
	StockOutToday          decimal.Decimal `json:"stock_out_today"`
	TotalMovements         int             `json:"total_movements"`
}

// ActivityItem is one row of the merged recent-activity feed.
type ActivityItem struct {
	Kind      string          `json:"kind"` // movement | transfer | reservation
	ID        string          `json:"id"`
	Number    string          `json:"number,omitempty"`
	Status    string          `json:"status"`
	Quantity  decimal.Decimal `json:"quantity,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// LedgerAuditItem compares one product's materialized balance with the ledger.
type LedgerAuditItem struct {
	ProductID        string          `json:"product_id"`
	LedgerQuantity   decimal.Decimal `json:"ledger_quantity"`
	BalanceQuantity  decimal.Decimal `json:"balance_quantity"`
	LastBalanceAfter decimal.Decimal `json:"last_balance_after"`
	Discrepancy      decimal.Decimal `json:"discrepancy"`
}

// LedgerAuditResponse is the per-warehouse reconciliation report.
type LedgerAuditResponse struct {
	WarehouseID      string            `json:"warehouse_id"`
	AsOf             time.Time         `json:"as_of"`
	Items            []LedgerAuditItem `json:"items"`
	DiscrepancyCount int               `json:"discrepancy_count"`
}
