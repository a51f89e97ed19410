package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

type InMemoryRequestsSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryRequestsSuite(t *testing.T) {
	suite.Run(t, new(InMemoryRequestsSuite))
}

func (s *InMemoryRequestsSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newRequest() models.RandomnessRequest {
	return models.RandomnessRequest{
		ID:          uuid.New(),
		RoundID:     uuid.New(),
		RequestedAt: time.Now(),
	}
}

func (s *InMemoryRequestsSuite) TestPutAndOutstanding() {
	req := newRequest()
	s.Require().NoError(s.store.Put(s.ctx, req))

	got, err := s.store.Outstanding(s.ctx)
	s.Require().NoError(err)
	s.Equal(req.ID, got.ID)
	s.Equal(req.RoundID, got.RoundID)
}

func (s *InMemoryRequestsSuite) TestOnlyOneOutstanding() {
	s.Require().NoError(s.store.Put(s.ctx, newRequest()))
	s.Require().ErrorIs(s.store.Put(s.ctx, newRequest()), sentinel.ErrConflict)
}

func (s *InMemoryRequestsSuite) TestConsume() {
	req := newRequest()
	s.Require().NoError(s.store.Put(s.ctx, req))

	got, err := s.store.Consume(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.ID, got.ID)

	// Consumed once; a duplicate callback no longer matches.
	_, err = s.store.Consume(s.ctx, req.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Outstanding(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryRequestsSuite) TestConsumeMismatchedID() {
	req := newRequest()
	s.Require().NoError(s.store.Put(s.ctx, req))

	_, err := s.store.Consume(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// The real request stays outstanding.
	got, err := s.store.Outstanding(s.ctx)
	s.Require().NoError(err)
	s.Equal(req.ID, got.ID)
}

func (s *InMemoryRequestsSuite) TestConsumeWithNothingOutstanding() {
	_, err := s.store.Consume(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
