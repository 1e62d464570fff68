// Package memory is an in-process storage backend with the same ports as the
// PostgreSQL one. It backs dev mode (no DATABASE_URL) and the test suite.
package memory

import (
	"context"
	"sync"

	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/domain/entity"
)

// Store holds every collection behind one mutex. Entities are stored by value
// and cloned on read and write, so callers never share memory with the store.
type Store struct {
	mu sync.Mutex

	movements   map[string]entity.StockMovement
	movementSeq []string // insertion order, the tie-breaker for equal dates

	balances map[string]entity.StockBalance // key: productID + "|" + warehouseID

	transfers   map[string]entity.Transfer
	transferSeq []string

	reservations   map[string]entity.Reservation
	reservationSeq []string

	products   map[string]entity.Product
	productSeq []string

	warehouses   map[string]entity.Warehouse
	warehouseSeq []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		movements:    map[string]entity.StockMovement{},
		balances:     map[string]entity.StockBalance{},
		transfers:    map[string]entity.Transfer{},
		reservations: map[string]entity.Reservation{},
		products:     map[string]entity.Product{},
		warehouses:   map[string]entity.Warehouse{},
	}
}

func balanceKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// Port accessors. Each returned repository locks the store per call.

func (s *Store) Movements() *MovementRepo       { return &MovementRepo{s: s} }
func (s *Store) Balances() *BalanceRepo         { return &BalanceRepo{s: s} }
func (s *Store) Transfers() *TransferRepo       { return &TransferRepo{s: s} }
func (s *Store) Reservations() *ReservationRepo { return &ReservationRepo{s: s} }
func (s *Store) Products() *ProductRepo         { return &ProductRepo{s: s} }
func (s *Store) Warehouses() *WarehouseRepo     { return &WarehouseRepo{s: s} }

// TxRunner returns a transaction runner over this store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner serializes callbacks behind the store mutex. A snapshot taken
// before fn is restored if fn fails, which gives the same all-or-nothing
// behavior as a rolled-back database transaction.
type TxRunner struct {
	s *Store
}

// Run executes fn with repositories that reuse the already-held lock.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	repos := ports.TxRepos{
		Movements:    &MovementRepo{s: r.s, tx: true},
		Balances:     &BalanceRepo{s: r.s, tx: true},
		Transfers:    &TransferRepo{s: r.s, tx: true},
		Reservations: &ReservationRepo{s: r.s, tx: true},
	}
	if err := fn(repos); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	movements      map[string]entity.StockMovement
	movementSeq    []string
	balances       map[string]entity.StockBalance
	transfers      map[string]entity.Transfer
	transferSeq    []string
	reservations   map[string]entity.Reservation
	reservationSeq []string
}

// snapshot copies the collections a transaction may touch. Stored values are
// never mutated in place (reads and writes clone), so shallow map copies are
// enough. Catalog data is not written inside transactions and is skipped.
func (s *Store) snapshot() snapshot {
	return snapshot{
		movements:      copyMap(s.movements),
		movementSeq:    append([]string(nil), s.movementSeq...),
		balances:       copyMap(s.balances),
		transfers:      copyMap(s.transfers),
		transferSeq:    append([]string(nil), s.transferSeq...),
		reservations:   copyMap(s.reservations),
		reservationSeq: append([]string(nil), s.reservationSeq...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.movements = snap.movements
	s.movementSeq = snap.movementSeq
	s.balances = snap.balances
	s.transfers = snap.transfers
	s.transferSeq = snap.transferSeq
	s.reservations = snap.reservations
	s.reservationSeq = snap.reservationSeq
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneTransfer deep-copies the items slice so stored and returned values
// never alias.
func cloneTransfer(t entity.Transfer) entity.Transfer {
	t.Items = append([]entity.TransferItem(nil), t.Items...)
	return t
}
