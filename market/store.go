package market

import (
	"errors"
	"sync"
	"time"
)

var ErrNoPrice = errors.New("price not found")

// PriceStore is a concurrent last-price cache. The ledger never reads it
// directly; callers turn it into a Snapshot and own its refresh cadence.
type PriceStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewPriceStore() *PriceStore {
	return &PriceStore{quotes: make(map[string]Quote)}
}

func (ps *PriceStore) Set(q Quote) {
	q.Symbol = NormalizeSymbol(q.Symbol)

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.quotes[q.Symbol] = q
}

func (ps *PriceStore) Get(symbol string) (Quote, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	q, ok := ps.quotes[NormalizeSymbol(symbol)]
	if !ok {
		return Quote{}, ErrNoPrice
	}
	return q, nil
}

// Snapshot copies every cached price.
func (ps *PriceStore) Snapshot() Snapshot {
	return ps.SnapshotSince(time.Time{})
}

// SnapshotSince copies the prices quoted at or after cutoff; older quotes
// are left out so the ledger keeps its own last known price for them.
func (ps *PriceStore) SnapshotSince(cutoff time.Time) Snapshot {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	s := make(Snapshot, len(ps.quotes))
	for sym, q := range ps.quotes {
		if q.Time.Before(cutoff) {
			continue
		}
		s[sym] = q.Price
	}
	return s
}
