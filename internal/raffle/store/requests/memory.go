// Package requests stores the correlation between the single outstanding
// randomness request and the round that issued it. Put fails while a request
// is outstanding and Consume is atomic, so a fulfillment is accepted at most
// once even if the coordinator calls back twice.
package requests

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

// InMemory holds at most one outstanding request behind a mutex.
type InMemory struct {
	mu          sync.Mutex
	outstanding *models.RandomnessRequest
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Put stores req as the outstanding request. Fails with ErrConflict if one
// is already outstanding.
func (s *InMemory) Put(ctx context.Context, req models.RandomnessRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outstanding != nil {
		return fmt.Errorf("request %s already outstanding: %w", s.outstanding.ID, sentinel.ErrConflict)
	}
	r := req
	s.outstanding = &r
	return nil
}

// Outstanding returns the outstanding request without consuming it.
func (s *InMemory) Outstanding(ctx context.Context) (models.RandomnessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outstanding == nil {
		return models.RandomnessRequest{}, sentinel.ErrNotFound
	}
	return *s.outstanding, nil
}

// Consume removes and returns the outstanding request iff its ID matches.
func (s *InMemory) Consume(ctx context.Context, id uuid.UUID) (models.RandomnessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outstanding == nil || s.outstanding.ID != id {
		return models.RandomnessRequest{}, fmt.Errorf("request %s: %w", id, sentinel.ErrNotFound)
	}
	req := *s.outstanding
	s.outstanding = nil
	return req, nil
}
