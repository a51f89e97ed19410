package events

import (
	"context"
	"sync"

	"raffle/internal/raffle/models"
)

// InMemory collects notifications for tests and single-node development runs
// where no broker is configured.
type InMemory struct {
	mu      sync.RWMutex
	entered []models.EnteredEvent
	winners []models.WinnerEvent
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) PublishEntered(ctx context.Context, event models.EnteredEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entered = append(m.entered, event)
	return nil
}

func (m *InMemory) PublishWinner(ctx context.Context, event models.WinnerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners = append(m.winners, event)
	return nil
}

// Entered returns a copy of the collected Entered notifications.
func (m *InMemory) Entered() []models.EnteredEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.EnteredEvent, len(m.entered))
	copy(out, m.entered)
	return out
}

// Winners returns a copy of the collected Winner notifications.
func (m *InMemory) Winners() []models.WinnerEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.WinnerEvent, len(m.winners))
	copy(out, m.winners)
	return out
}
