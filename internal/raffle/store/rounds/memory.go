// Package rounds records completed draws. The history backs the last-winner
// accessor across restarts; the live round never lives here.
package rounds

import (
	"context"
	"sync"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

// InMemory keeps completed rounds in append order.
type InMemory struct {
	mu     sync.RWMutex
	rounds []models.CompletedRound
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Record appends a completed round.
func (s *InMemory) Record(ctx context.Context, rec models.CompletedRound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, rec)
	return nil
}

// Last returns the most recently completed round.
func (s *InMemory) Last(ctx context.Context) (models.CompletedRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rounds) == 0 {
		return models.CompletedRound{}, sentinel.ErrNotFound
	}
	return s.rounds[len(s.rounds)-1], nil
}

// Count returns the number of completed rounds.
func (s *InMemory) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rounds), nil
}
