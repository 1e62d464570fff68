package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, transfer_number, source_warehouse_id, destination_warehouse_id,
	status, notes, expected_date, tracking_number, carrier, vehicle_number,
	driver_name, driver_phone, created_at, updated_at, shipped_date, received_date,
	created_by, created_by_name, shipped_by, shipped_by_name, received_by, received_by_name`

// TransferRepo persists transfer headers plus their items.
type TransferRepo struct {
	q Querier
}

func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserts the header and all items.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.SourceWarehouseID, t.DestinationWarehouseID,
		t.Status, t.Notes, t.ExpectedDate, t.TrackingNumber, t.Carrier, t.VehicleNumber,
		t.DriverName, t.DriverPhone, t.CreatedAt, t.UpdatedAt, t.ShippedDate, t.ReceivedDate,
		nullable(t.CreatedBy), t.CreatedByName, nullable(t.ShippedBy), t.ShippedByName,
		nullable(t.ReceivedBy), t.ReceivedByName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create transfer %s: duplicate number", t.TransferNumber)
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	for i := range t.Items {
		if err := r.insertItem(ctx, &t.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TransferRepo) insertItem(ctx context.Context, it *entity.TransferItem) error {
	query := `
		INSERT INTO transfer_items (id, transfer_id, product_id, quantity,
			quantity_shipped, quantity_received, unit, batch_number, notes, condition_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TransferID, it.ProductID, it.Quantity,
		it.QuantityShipped, it.QuantityReceived, it.Unit, it.BatchNumber, it.Notes, it.ConditionNotes,
	)
	if err != nil {
		return fmt.Errorf("create transfer item: %w", err)
	}
	return nil
}

// GetByID returns the transfer with its items, nil if absent.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate locks the header row until the transaction ends. Two
// concurrent ship or cancel commands on the same transfer then see each
// other's committed status instead of both acting on the stale one.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *TransferRepo) get(ctx context.Context, id, lock string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1` + lock
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, t *entity.Transfer) error {
	query := `
		SELECT id, transfer_id, product_id, quantity, quantity_shipped,
			quantity_received, unit, batch_number, notes, condition_notes
		FROM transfer_items WHERE transfer_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferItem
		err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity,
			&it.QuantityShipped, &it.QuantityReceived, &it.Unit, &it.BatchNumber,
			&it.Notes, &it.ConditionNotes)
		if err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

// Update rewrites the header and the mutable item quantities.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET
			status = $2, notes = $3, expected_date = $4, tracking_number = $5,
			carrier = $6, vehicle_number = $7, driver_name = $8, driver_phone = $9,
			updated_at = $10, shipped_date = $11, received_date = $12,
			shipped_by = $13, shipped_by_name = $14, received_by = $15, received_by_name = $16
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Status, t.Notes, t.ExpectedDate, t.TrackingNumber,
		t.Carrier, t.VehicleNumber, t.DriverName, t.DriverPhone,
		t.UpdatedAt, t.ShippedDate, t.ReceivedDate,
		nullable(t.ShippedBy), t.ShippedByName, nullable(t.ReceivedBy), t.ReceivedByName,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	for i := range t.Items {
		it := &t.Items[i]
		_, err := r.q.Exec(ctx,
			`UPDATE transfer_items SET quantity_shipped = $2, quantity_received = $3, condition_notes = $4 WHERE id = $1`,
			it.ID, it.QuantityShipped, it.QuantityReceived, it.ConditionNotes,
		)
		if err != nil {
			return fmt.Errorf("update transfer item: %w", err)
		}
	}
	return nil
}

// List returns a filtered page ordered newest first, plus the unpaged total.
func (r *TransferRepo) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.SourceWarehouseID != "" {
		where += fmt.Sprintf(" AND source_warehouse_id = $%d", pos)
		args = append(args, filter.SourceWarehouseID)
		pos++
	}
	if filter.DestinationWarehouseID != "" {
		where += fmt.Sprintf(" AND destination_warehouse_id = $%d", pos)
		args = append(args, filter.DestinationWarehouseID)
		pos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM transfers"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+transferColumns+" FROM transfers"+where+" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		pos, pos+1,
	)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	list, err := scanTransfers(rows)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// CountByStatus counts transfers in any of the given statuses.
func (r *TransferRepo) CountByStatus(ctx context.Context, statuses ...string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM transfers WHERE status = ANY($1)`, statuses,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transfers by status: %w", err)
	}
	return count, nil
}

// CountReceivedBetween counts completed transfers received inside [from, to).
func (r *TransferRepo) CountReceivedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM transfers
		 WHERE status = 'COMPLETED' AND received_date >= $1 AND received_date < $2`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count received transfers: %w", err)
	}
	return count, nil
}

// Recent returns the newest transfers with items.
func (r *TransferRepo) Recent(ctx context.Context, limit int) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transfers: %w", err)
	}
	defer rows.Close()
	list, err := scanTransfers(rows)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var createdBy, shippedBy, receivedBy *string
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.SourceWarehouseID, &t.DestinationWarehouseID,
		&t.Status, &t.Notes, &t.ExpectedDate, &t.TrackingNumber, &t.Carrier,
		&t.VehicleNumber, &t.DriverName, &t.DriverPhone, &t.CreatedAt, &t.UpdatedAt,
		&t.ShippedDate, &t.ReceivedDate, &createdBy, &t.CreatedByName,
		&shippedBy, &t.ShippedByName, &receivedBy, &t.ReceivedByName,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = deref(createdBy)
	t.ShippedBy = deref(shippedBy)
	t.ReceivedBy = deref(receivedBy)
	return &t, nil
}

func scanTransfers(rows pgx.Rows) ([]*entity.Transfer, error) {
	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
