//go:build integration

package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
	"raffle/pkg/testutil/containers"
)

type RedisRequestsSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	store *Redis
}

func TestRedisRequestsSuite(t *testing.T) {
	suite.Run(t, new(RedisRequestsSuite))
}

func (s *RedisRequestsSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisRequestsSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisRequestsSuite) request() models.RandomnessRequest {
	return models.RandomnessRequest{
		ID:          uuid.New(),
		RoundID:     uuid.New(),
		RequestedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (s *RedisRequestsSuite) TestPutAndOutstanding() {
	req := s.request()
	s.Require().NoError(s.store.Put(s.ctx, req))

	outstanding, err := s.store.Outstanding(s.ctx)
	s.Require().NoError(err)
	s.Equal(req.ID, outstanding.ID)
	s.Equal(req.RoundID, outstanding.RoundID)
	s.True(req.RequestedAt.Equal(outstanding.RequestedAt))
}

func (s *RedisRequestsSuite) TestOutstandingEmpty() {
	_, err := s.store.Outstanding(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisRequestsSuite) TestSecondPutRejected() {
	s.Require().NoError(s.store.Put(s.ctx, s.request()))

	err := s.store.Put(s.ctx, s.request())
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *RedisRequestsSuite) TestConsume() {
	req := s.request()
	s.Require().NoError(s.store.Put(s.ctx, req))

	consumed, err := s.store.Consume(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.ID, consumed.ID)

	// Consumed exactly once.
	_, err = s.store.Consume(s.ctx, req.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// A new request can be stored afterwards.
	s.Require().NoError(s.store.Put(s.ctx, s.request()))
}

func (s *RedisRequestsSuite) TestConsumeWrongID() {
	req := s.request()
	s.Require().NoError(s.store.Put(s.ctx, req))

	_, err := s.store.Consume(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	// The outstanding request survives the mismatched consume.
	outstanding, err := s.store.Outstanding(s.ctx)
	s.Require().NoError(err)
	s.Equal(req.ID, outstanding.ID)
}
