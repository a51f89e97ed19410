package models

import (
	"time"

	"github.com/google/uuid"
)

// EnteredEvent is emitted after an accepted entrance. Notifications are
// append-only and externally observable; they are not re-queryable state.
type EnteredEvent struct {
	RoundID   uuid.UUID `json:"round_id"`
	Depositor string    `json:"depositor"`
	Amount    uint64    `json:"amount"`
	EnteredAt time.Time `json:"entered_at"`
}

// WinnerEvent is emitted exactly once per completed round, after the payout
// transfer succeeded and the round was reset.
type WinnerEvent struct {
	RoundID   uuid.UUID `json:"round_id"`
	RequestID uuid.UUID `json:"request_id"`
	Winner    string    `json:"winner"`
	Prize     uint64    `json:"prize"`
	DecidedAt time.Time `json:"decided_at"`
}
