package upkeep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"raffle/internal/raffle/models"
)

func testConfig() models.RoundConfig {
	return models.RoundConfig{
		MinimumStake:    1,
		MinimumInterval: 30 * time.Second,
		KeyHash:         "0xabc",
		SubscriptionID:  1,
		NumWords:        1,
	}
}

func TestEvaluate(t *testing.T) {
	openedAt := time.Unix(1_700_000_000, 0)
	eligible := models.RoundSnapshot{
		State:        models.StateOpen,
		OpenedAt:     openedAt,
		Participants: 1,
		Pool:         1,
	}

	tests := []struct {
		name   string
		snap   models.RoundSnapshot
		now    time.Time
		needed bool
	}{
		{
			name:   "all conditions hold",
			snap:   eligible,
			now:    openedAt.Add(31 * time.Second),
			needed: true,
		},
		{
			name: "round calculating",
			snap: func() models.RoundSnapshot {
				s := eligible
				s.State = models.StateCalculating
				return s
			}(),
			now:    openedAt.Add(31 * time.Second),
			needed: false,
		},
		{
			name:   "interval not elapsed",
			snap:   eligible,
			now:    openedAt.Add(10 * time.Second),
			needed: false,
		},
		{
			name:   "interval boundary is exclusive",
			snap:   eligible,
			now:    openedAt.Add(30 * time.Second),
			needed: false,
		},
		{
			name: "no participants",
			snap: func() models.RoundSnapshot {
				s := eligible
				s.Participants = 0
				return s
			}(),
			now:    openedAt.Add(31 * time.Second),
			needed: false,
		},
		{
			name: "no balance",
			snap: func() models.RoundSnapshot {
				s := eligible
				s.Pool = 0
				return s
			}(),
			now:    openedAt.Add(31 * time.Second),
			needed: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.snap, testConfig(), tc.now)
			assert.Equal(t, tc.needed, got.Needed())
		})
	}
}

func TestEvaluateReportsFailingCondition(t *testing.T) {
	openedAt := time.Unix(1_700_000_000, 0)
	snap := models.RoundSnapshot{
		State:        models.StateCalculating,
		OpenedAt:     openedAt,
		Participants: 2,
		Pool:         10,
	}

	got := Evaluate(snap, testConfig(), openedAt.Add(time.Minute))
	assert.False(t, got.Open)
	assert.True(t, got.IntervalElapsed)
	assert.True(t, got.HasParticipants)
	assert.True(t, got.HasBalance)
	assert.False(t, got.Needed())
}
