package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// UseCase is the read-side aggregation over ledger, transfer and reservation
// state. Everything it returns is derived and never authoritative: on any
// disagreement the ledger wins, and missing data reads as zero/empty instead
// of an error.
type UseCase struct {
	movements    repository.StockMovementRepository
	balances     repository.StockBalanceRepository
	transfers    repository.TransferRepository
	reservations repository.ReservationRepository
}

// NewUseCase builds the reporting layer.
func NewUseCase(
	movements repository.StockMovementRepository,
	balances repository.StockBalanceRepository,
	transfers repository.TransferRepository,
	reservations repository.ReservationRepository,
) *UseCase {
	return &UseCase{
		movements:    movements,
		balances:     balances,
		transfers:    transfers,
		reservations: reservations,
	}
}

// Overview computes the dashboard KPI block. "Today" windows are derived from
// now in the server's local time.
func (uc *UseCase) Overview(ctx context.Context, now time.Time) (*dto.OverviewResponse, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	pending, err := uc.transfers.CountByStatus(ctx, entity.TransferStatusDraft, entity.TransferStatusPending)
	if err != nil {
		return nil, err
	}
	inTransit, err := uc.transfers.CountByStatus(ctx, entity.TransferStatusShipped, entity.TransferStatusInTransit)
	if err != nil {
		return nil, err
	}
	completedToday, err := uc.transfers.CountReceivedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	awaiting, err := uc.reservations.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	todayStats, err := uc.movements.Stats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	allStats, err := uc.movements.Stats(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	return &dto.OverviewResponse{
		PendingTransfers:       pending,
		InTransit:              inTransit,
		CompletedToday:         completedToday,
		AwaitingReconciliation: awaiting,
		StockInToday:           todayStats.StockIn,
		StockOutToday:          todayStats.StockOut,
		TotalMovements:         allStats.TotalMovements,
	}, nil
}

// RecentActivity merges the newest transfers, reservations and movements into
// one feed ordered by timestamp descending. The merge sort is stable, so items
// with equal timestamps keep their per-source insertion order.
func (uc *UseCase) RecentActivity(ctx context.Context, limit int) ([]dto.ActivityItem, error) {
	if limit <= 0 {
		limit = 10
	}
	var feed []dto.ActivityItem

	transfers, err := uc.transfers.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, t := range transfers {
		feed = append(feed, dto.ActivityItem{
			Kind:      "transfer",
			ID:        t.ID,
			Number:    t.TransferNumber,
			Status:    t.Status,
			Timestamp: t.UpdatedAt,
		})
	}

	reservations, err := uc.reservations.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		feed = append(feed, dto.ActivityItem{
			Kind:      "reservation",
			ID:        r.ID,
			Number:    r.ReservationNumber,
			Status:    r.Status,
			Timestamp: r.UpdatedAt,
		})
	}

	movements, err := uc.movements.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range movements {
		feed = append(feed, dto.ActivityItem{
			Kind:      "movement",
			ID:        m.ID,
			Number:    m.ReferenceNumber,
			Status:    m.MovementType,
			Quantity:  m.Quantity,
			Timestamp: m.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

// LedgerAudit compares, per product in a warehouse, the materialized balance
// against the sum of ledger deltas and the last entry's balance snapshot.
// Discrepancies are reported, never repaired here; the ledger is the truth.
func (uc *UseCase) LedgerAudit(ctx context.Context, warehouseID string) (*dto.LedgerAuditResponse, error) {
	productIDs, err := uc.movements.ProductIDsForWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	report := &dto.LedgerAuditResponse{
		WarehouseID: warehouseID,
		AsOf:        time.Now(),
		Items:       []dto.LedgerAuditItem{},
	}
	for _, productID := range productIDs {
		ledgerSum, err := uc.movements.SumForKey(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		balance, err := uc.balances.Get(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		latest, err := uc.movements.LatestForKey(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		lastBalanceAfter := decimal.Zero
		if latest != nil {
			lastBalanceAfter = latest.BalanceAfter
		}
		item := dto.LedgerAuditItem{
			ProductID:        productID,
			LedgerQuantity:   ledgerSum,
			BalanceQuantity:  balance.Quantity,
			LastBalanceAfter: lastBalanceAfter,
			Discrepancy:      balance.Quantity.Sub(ledgerSum),
		}
		if !item.Discrepancy.IsZero() || !ledgerSum.Equal(lastBalanceAfter) {
			report.DiscrepancyCount++
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}
