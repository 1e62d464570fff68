package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, warehouse_id, movement_type, quantity, unit,
	reference_type, reference_number, reference_id, transfer_id, reservation_id,
	destination_warehouse_id, unit_cost, total_cost, batch_number, coil_number,
	heat_number, balance_after, notes, movement_date, created_at, updated_at,
	created_by, created_by_name`

// StockMovementRepo is the ledger adapter over PostgreSQL (pool or tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository builds the adapter. Pass a pool or tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create appends one ledger entry.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.WarehouseID, m.MovementType, m.Quantity, m.Unit,
		m.ReferenceType, m.ReferenceNumber, nullable(m.ReferenceID), nullable(m.TransferID),
		nullable(m.ReservationID), nullable(m.DestinationWarehouseID),
		m.UnitCost, m.TotalCost, m.BatchNumber, m.CoilNumber, m.HeatNumber,
		m.BalanceAfter, m.Notes, m.MovementDate, m.CreatedAt, m.UpdatedAt,
		nullable(m.CreatedBy), m.CreatedByName,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID returns one entry, nil if absent.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List returns a filtered page ordered by movement_date then id ascending,
// plus the unpaged total.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	add := func(clause string, value any) {
		where += fmt.Sprintf(clause, pos)
		args = append(args, value)
		pos++
	}
	if filter.ProductID != "" {
		add(" AND product_id = $%d", filter.ProductID)
	}
	if filter.WarehouseID != "" {
		add(" AND warehouse_id = $%d", filter.WarehouseID)
	}
	if filter.MovementType != "" {
		add(" AND movement_type = $%d", filter.MovementType)
	}
	if filter.ReferenceType != "" {
		add(" AND reference_type = $%d", filter.ReferenceType)
	}
	if filter.DateFrom != nil {
		add(" AND movement_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add(" AND movement_date <= $%d", *filter.DateTo)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (reference_number ILIKE '%%' || $%d || '%%' OR notes ILIKE '%%' || $%d || '%%')", pos, pos)
		args = append(args, filter.Search)
		pos++
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM stock_movements"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+movementColumns+" FROM stock_movements"+where+" ORDER BY movement_date ASC, id ASC LIMIT $%d OFFSET $%d",
		pos, pos+1,
	)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	list, err := scanMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByReference returns all entries linked to a source document.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceNumber string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_number = $2
		ORDER BY movement_date ASC, id ASC`
	rows, err := r.q.Query(ctx, query, referenceType, referenceNumber)
	if err != nil {
		return nil, fmt.Errorf("list by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// LatestForKey returns the newest entry for a (product, warehouse) pair.
func (r *StockMovementRepo) LatestForKey(ctx context.Context, productID, warehouseID string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY movement_date DESC, id DESC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest for key: %w", err)
	}
	return m, nil
}

// UpdateNotes edits the free-text notes of an entry.
func (r *StockMovementRepo) UpdateNotes(ctx context.Context, id, notes string, updatedAt time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_movements SET notes = $2, updated_at = $3 WHERE id = $1`,
		id, notes, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement notes: %w", err)
	}
	return nil
}

// Delete removes one entry. Eligibility is checked by the use case.
func (r *StockMovementRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock movement: %w", err)
	}
	return nil
}

// SumForKey recomputes the signed quantity sum straight from the ledger.
func (r *StockMovementRepo) SumForKey(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE
			WHEN movement_type IN ('OUT', 'TRANSFER_OUT', 'RESERVATION', 'DEDUCTION') THEN -quantity
			ELSE quantity
		END), 0)
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum for key: %w", err)
	}
	return sum, nil
}

// ProductIDsForWarehouse lists the distinct products with ledger history in a warehouse.
func (r *StockMovementRepo) ProductIDsForWarehouse(ctx context.Context, warehouseID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT product_id FROM stock_movements WHERE warehouse_id = $1 ORDER BY product_id`,
		warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("product ids for warehouse: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats aggregates counts and in/out quantity sums. Zero times are unbounded.
func (r *StockMovementRepo) Stats(ctx context.Context, from, to time.Time) (*repository.MovementStats, error) {
	query := `
		SELECT count(*),
			COALESCE(SUM(quantity) FILTER (WHERE movement_type IN ('IN', 'TRANSFER_IN', 'RELEASE', 'REVERSAL', 'ADJUSTMENT')), 0),
			COALESCE(SUM(quantity) FILTER (WHERE movement_type IN ('OUT', 'TRANSFER_OUT', 'RESERVATION', 'DEDUCTION')), 0)
		FROM stock_movements
		WHERE ($1::timestamptz IS NULL OR movement_date >= $1)
		  AND ($2::timestamptz IS NULL OR movement_date < $2)`
	var fromArg, toArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !to.IsZero() {
		toArg = &to
	}
	var stats repository.MovementStats
	err := r.q.QueryRow(ctx, query, fromArg, toArg).Scan(&stats.TotalMovements, &stats.StockIn, &stats.StockOut)
	if err != nil {
		return nil, fmt.Errorf("movement stats: %w", err)
	}
	return &stats, nil
}

// Recent returns the newest entries by creation time.
func (r *StockMovementRepo) Recent(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var referenceID, transferID, reservationID, destWarehouseID, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.WarehouseID, &m.MovementType, &m.Quantity, &m.Unit,
		&m.ReferenceType, &m.ReferenceNumber, &referenceID, &transferID, &reservationID,
		&destWarehouseID, &m.UnitCost, &m.TotalCost, &m.BatchNumber, &m.CoilNumber,
		&m.HeatNumber, &m.BalanceAfter, &m.Notes, &m.MovementDate, &m.CreatedAt,
		&m.UpdatedAt, &createdBy, &m.CreatedByName,
	)
	if err != nil {
		return nil, err
	}
	m.ReferenceID = deref(referenceID)
	m.TransferID = deref(transferID)
	m.ReservationID = deref(reservationID)
	m.DestinationWarehouseID = deref(destWarehouseID)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
