package ports

import (
	"context"

	"github.com/steeltrade/stockledger-api/internal/domain/repository"
)

// TxRepos bundles the repositories bound to one storage transaction.
type TxRepos struct {
	Movements    repository.StockMovementRepository
	Balances     repository.StockBalanceRepository
	Transfers    repository.TransferRepository
	Reservations repository.ReservationRepository
}

// TxRunner executes fn inside a single storage transaction, passing
// repositories bound to that transaction. Commit on nil, rollback on error.
// Every ledger command runs through this so read-balance-then-append is atomic
// and multi-item operations are all-or-nothing.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
