package transfer

import (
	"context"

	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// LedgerAppender appends a movement against the caller's transaction,
// enforcing the balance invariants. Implemented by ledger.UseCase.
type LedgerAppender interface {
	AppendInTx(ctx context.Context, repos ports.TxRepos, movement *entity.StockMovement) error
}
