//go:build integration

package rounds

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
	"raffle/pkg/testutil/containers"
)

type PostgresRoundsSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sql.DB
	store *Postgres
}

func TestPostgresRoundsSuite(t *testing.T) {
	suite.Run(t, new(PostgresRoundsSuite))
}

func (s *PostgresRoundsSuite) SetupSuite() {
	s.ctx = context.Background()
	pg := containers.NewPostgresContainer(s.T())
	pg.Apply(s.T(), Schema())
	s.db = pg.DB
	s.store = NewPostgres(pg.DB)
}

func (s *PostgresRoundsSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE completed_rounds`)
	s.Require().NoError(err)
}

func (s *PostgresRoundsSuite) completed(decidedAt time.Time) models.CompletedRound {
	return models.CompletedRound{
		RoundID:      uuid.New(),
		RequestID:    uuid.New(),
		Winner:       "alice",
		Prize:        100,
		Participants: 3,
		OpenedAt:     decidedAt.Add(-time.Minute),
		DecidedAt:    decidedAt,
	}
}

func (s *PostgresRoundsSuite) TestLastEmpty() {
	_, err := s.store.Last(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRoundsSuite) TestRecordAndLast() {
	base := time.Now().UTC().Truncate(time.Microsecond)

	first := s.completed(base)
	second := s.completed(base.Add(time.Hour))
	second.Winner = "bob"
	s.Require().NoError(s.store.Record(s.ctx, first))
	s.Require().NoError(s.store.Record(s.ctx, second))

	last, err := s.store.Last(s.ctx)
	s.Require().NoError(err)
	s.Equal(second.RoundID, last.RoundID)
	s.Equal("bob", last.Winner)
	s.Equal(uint64(100), last.Prize)
	s.Equal(3, last.Participants)
	s.WithinDuration(second.DecidedAt, last.DecidedAt, time.Millisecond)
}

func (s *PostgresRoundsSuite) TestDuplicateRoundRejected() {
	rec := s.completed(time.Now().UTC())
	s.Require().NoError(s.store.Record(s.ctx, rec))

	err := s.store.Record(s.ctx, rec)
	s.Require().Error(err)
}

func (s *PostgresRoundsSuite) TestCount() {
	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	base := time.Now().UTC()
	s.Require().NoError(s.store.Record(s.ctx, s.completed(base)))
	s.Require().NoError(s.store.Record(s.ctx, s.completed(base.Add(time.Minute))))

	count, err = s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
