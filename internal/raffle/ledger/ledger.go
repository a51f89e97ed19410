// Package ledger holds the current round's participants and pooled stake.
// It is an append-only sequence with a running total; the service is the
// single writer and drains it atomically when a round completes.
package ledger

import (
	"fmt"
	"math"
	"sync"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

// Ledger is the in-memory entrance ledger. The mutex guards readers that run
// outside the service lock (status endpoint, metrics scrapes).
type Ledger struct {
	mu      sync.RWMutex
	entries []models.Entrance
	pool    uint64
}

func New() *Ledger {
	return &Ledger{}
}

// Append records an accepted entrance and grows the pool. The pool is
// checked against overflow before any mutation so a failed append leaves the
// ledger untouched.
func (l *Ledger) Append(e models.Entrance) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Stake > math.MaxUint64-l.pool {
		return 0, fmt.Errorf("pool overflow: %w", sentinel.ErrInvalidState)
	}
	l.entries = append(l.entries, e)
	l.pool += e.Stake
	return len(l.entries) - 1, nil
}

// Participant returns the entrance at the given index.
func (l *Ledger) Participant(index int) (models.Entrance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.entries) {
		return models.Entrance{}, fmt.Errorf("participant index %d: %w", index, sentinel.ErrNotFound)
	}
	return l.entries[index], nil
}

// Len returns the number of participants in the current round.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Pool returns the pooled balance of the current round.
func (l *Ledger) Pool() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pool
}

// Snapshot returns a copy of the entries in arrival order.
func (l *Ledger) Snapshot() []models.Entrance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Entrance, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset drains the ledger and returns the drained entries and pool. Called
// only after a successful payout, under the service's write lock.
func (l *Ledger) Reset() ([]models.Entrance, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries
	pool := l.pool
	l.entries = nil
	l.pool = 0
	return entries, pool
}
