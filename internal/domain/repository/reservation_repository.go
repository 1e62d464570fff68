package repository

import (
	"context"
	"time"

	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// ReservationFilter narrows ListReservations. Zero values mean "no filter".
type ReservationFilter struct {
	ProductID      string
	WarehouseID    string
	Status         string
	IncludeExpired bool
	Limit          int
	Offset         int
}

// ReservationRepository is the persistence port for stock reservations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	// GetByIDForUpdate locks the reservation for the rest of the transaction
	// so concurrent fulfillments serialize. Only valid inside a TxRunner
	// callback.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	Update(ctx context.Context, reservation *entity.Reservation) error
	List(ctx context.Context, filter ReservationFilter) ([]*entity.Reservation, int, error)
	// ListExpiredOpen returns ACTIVE/PARTIALLY_FULFILLED reservations whose
	// expiry date lies before now. Feeds the idempotent expiry sweep.
	ListExpiredOpen(ctx context.Context, now time.Time) ([]*entity.Reservation, error)
	CountOpen(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]*entity.Reservation, error)
}
