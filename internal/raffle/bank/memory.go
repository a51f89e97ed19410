// Package bank tracks account balances in base currency units. The service
// credits the pool account on entrance and moves the whole pool to the
// winner on fulfillment; the transfer either happens completely or not at
// all so a failed payout leaves the round retryable.
package bank

import (
	"context"
	"fmt"
	"math"
	"sync"

	"raffle/pkg/platform/sentinel"
)

// PoolAccount holds the accumulated stakes of the current round.
const PoolAccount = "raffle:pool"

// InMemory is a mutex-guarded balance map for unit tests and single-node
// development runs.
type InMemory struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[string]uint64)}
}

// Deposit credits an account.
func (b *InMemory) Deposit(ctx context.Context, account string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount > math.MaxUint64-b.balances[account] {
		return fmt.Errorf("deposit overflows account %s: %w", account, sentinel.ErrInvalidState)
	}
	b.balances[account] += amount
	return nil
}

// Transfer moves amount from one account to another atomically.
func (b *InMemory) Transfer(ctx context.Context, from, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return fmt.Errorf("account %s holds %d, needs %d: %w", from, b.balances[from], amount, sentinel.ErrInsufficientFunds)
	}
	if amount > math.MaxUint64-b.balances[to] {
		return fmt.Errorf("transfer overflows account %s: %w", to, sentinel.ErrInvalidState)
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

// Balance returns the current balance of an account. Unknown accounts hold
// zero rather than erroring; the bank is not a registry.
func (b *InMemory) Balance(ctx context.Context, account string) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[account], nil
}
