package rounds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

type InMemoryRoundsSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryRoundsSuite(t *testing.T) {
	suite.Run(t, new(InMemoryRoundsSuite))
}

func (s *InMemoryRoundsSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func completedRound(winner string, decidedAt time.Time) models.CompletedRound {
	return models.CompletedRound{
		RoundID:      uuid.New(),
		RequestID:    uuid.New(),
		Winner:       winner,
		Prize:        100,
		Participants: 3,
		OpenedAt:     decidedAt.Add(-time.Minute),
		DecidedAt:    decidedAt,
	}
}

func (s *InMemoryRoundsSuite) TestEmptyHistory() {
	_, err := s.store.Last(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *InMemoryRoundsSuite) TestRecordAndLast() {
	now := time.Now()
	s.Require().NoError(s.store.Record(s.ctx, completedRound("alice", now)))
	s.Require().NoError(s.store.Record(s.ctx, completedRound("bob", now.Add(time.Hour))))

	last, err := s.store.Last(s.ctx)
	s.Require().NoError(err)
	s.Equal("bob", last.Winner)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
