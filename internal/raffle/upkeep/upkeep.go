// Package upkeep decides whether a draw may be triggered. The evaluation is
// a pure function over a round snapshot so the eligibility rules are
// testable without the state machine.
package upkeep

import (
	"time"

	"raffle/internal/raffle/models"
)

// Result breaks the eligibility decision into its individual conditions so
// a rejected trigger can report exactly which gate failed.
type Result struct {
	Open            bool `json:"open"`
	IntervalElapsed bool `json:"interval_elapsed"`
	HasParticipants bool `json:"has_participants"`
	HasBalance      bool `json:"has_balance"`
}

// Needed reports whether all conditions hold.
func (r Result) Needed() bool {
	return r.Open && r.IntervalElapsed && r.HasParticipants && r.HasBalance
}

// Evaluate checks the draw eligibility of a round at the given instant.
func Evaluate(snap models.RoundSnapshot, cfg models.RoundConfig, now time.Time) Result {
	return Result{
		Open:            snap.State == models.StateOpen,
		IntervalElapsed: now.Sub(snap.OpenedAt) > cfg.MinimumInterval,
		HasParticipants: snap.Participants > 0,
		HasBalance:      snap.Pool > 0,
	}
}
