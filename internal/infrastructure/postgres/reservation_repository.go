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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, reservation_number, product_id, warehouse_id,
	quantity_reserved, quantity_fulfilled, unit, status, reference_type,
	reference_number, reference_id, notes, expiry_date, created_at, updated_at,
	created_by, created_by_name`

// ReservationRepo persists stock reservations.
type ReservationRepo struct {
	q Querier
}

func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.ReservationNumber, res.ProductID, res.WarehouseID,
		res.QuantityReserved, res.QuantityFulfilled, res.Unit, res.Status,
		res.ReferenceType, res.ReferenceNumber, nullable(res.ReferenceID),
		res.Notes, res.ExpiryDate, res.CreatedAt, res.UpdatedAt,
		nullable(res.CreatedBy), res.CreatedByName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create reservation %s: duplicate number", res.ReservationNumber)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate locks the reservation row until the transaction ends, so
// concurrent fulfillments serialize instead of losing an update to
// quantity_fulfilled.
func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ReservationRepo) get(ctx context.Context, id, lock string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1` + lock
	res, err := scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepo) Update(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations SET
			quantity_fulfilled = $2, status = $3, reference_type = $4,
			reference_number = $5, reference_id = $6, notes = $7,
			expiry_date = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.QuantityFulfilled, res.Status, res.ReferenceType,
		res.ReferenceNumber, nullable(res.ReferenceID), res.Notes,
		res.ExpiryDate, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

// List returns a filtered page ordered newest first, plus the unpaged total.
// EXPIRED rows are hidden unless IncludeExpired or an explicit Status asks
// for them.
func (r *ReservationRepo) List(ctx context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		where += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.WarehouseID != "" {
		where += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	} else if !filter.IncludeExpired {
		where += " AND status <> 'EXPIRED'"
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM reservations"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+reservationColumns+" FROM reservations"+where+" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		pos, pos+1,
	)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	list, err := scanReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListExpiredOpen returns open reservations whose expiry passed before now.
func (r *ReservationRepo) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status IN ('ACTIVE', 'PARTIALLY_FULFILLED')
		  AND expiry_date IS NOT NULL AND expiry_date < $1
		ORDER BY expiry_date ASC`
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// CountOpen counts ACTIVE and PARTIALLY_FULFILLED reservations.
func (r *ReservationRepo) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM reservations WHERE status IN ('ACTIVE', 'PARTIALLY_FULFILLED')`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open reservations: %w", err)
	}
	return count, nil
}

func (r *ReservationRepo) Recent(ctx context.Context, limit int) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	var referenceID, createdBy *string
	err := row.Scan(
		&res.ID, &res.ReservationNumber, &res.ProductID, &res.WarehouseID,
		&res.QuantityReserved, &res.QuantityFulfilled, &res.Unit, &res.Status,
		&res.ReferenceType, &res.ReferenceNumber, &referenceID, &res.Notes,
		&res.ExpiryDate, &res.CreatedAt, &res.UpdatedAt, &createdBy, &res.CreatedByName,
	)
	if err != nil {
		return nil, err
	}
	res.ReferenceID = deref(referenceID)
	res.CreatedBy = deref(createdBy)
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
