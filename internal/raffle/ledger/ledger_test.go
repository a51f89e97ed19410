package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = New()
}

func (s *LedgerSuite) entrance(depositor string, stake uint64) models.Entrance {
	return models.Entrance{Depositor: depositor, Stake: stake, EnteredAt: time.Now()}
}

func (s *LedgerSuite) TestAppendAccumulates() {
	idx, err := s.ledger.Append(s.entrance("alice", 100))
	s.Require().NoError(err)
	s.Equal(0, idx)

	idx, err = s.ledger.Append(s.entrance("bob", 250))
	s.Require().NoError(err)
	s.Equal(1, idx)

	s.Equal(2, s.ledger.Len())
	s.Equal(uint64(350), s.ledger.Pool())
}

func (s *LedgerSuite) TestParticipantByIndex() {
	_, err := s.ledger.Append(s.entrance("alice", 100))
	s.Require().NoError(err)
	_, err = s.ledger.Append(s.entrance("bob", 100))
	s.Require().NoError(err)

	e, err := s.ledger.Participant(1)
	s.Require().NoError(err)
	s.Equal("bob", e.Depositor)

	_, err = s.ledger.Participant(2)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.ledger.Participant(-1)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerSuite) TestOverflowLeavesLedgerUntouched() {
	_, err := s.ledger.Append(s.entrance("alice", math.MaxUint64))
	s.Require().NoError(err)

	_, err = s.ledger.Append(s.entrance("bob", 1))
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	s.Equal(1, s.ledger.Len())
	s.Equal(uint64(math.MaxUint64), s.ledger.Pool())
}

func (s *LedgerSuite) TestResetDrains() {
	_, err := s.ledger.Append(s.entrance("alice", 100))
	s.Require().NoError(err)
	_, err = s.ledger.Append(s.entrance("bob", 200))
	s.Require().NoError(err)

	entries, pool := s.ledger.Reset()
	s.Len(entries, 2)
	s.Equal(uint64(300), pool)
	s.Equal(0, s.ledger.Len())
	s.Equal(uint64(0), s.ledger.Pool())
}

func (s *LedgerSuite) TestSnapshotIsACopy() {
	_, err := s.ledger.Append(s.entrance("alice", 100))
	s.Require().NoError(err)

	snap := s.ledger.Snapshot()
	snap[0].Depositor = "mallory"

	e, err := s.ledger.Participant(0)
	s.Require().NoError(err)
	s.Equal("alice", e.Depositor)
}
