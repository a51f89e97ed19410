package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundState is the lifecycle state of the live round. Exactly two states
// exist; anything else fails IsValid and is rejected at the boundary.
type RoundState uint8

const (
	// StateOpen accepts entries.
	StateOpen RoundState = iota
	// StateCalculating locks the round while a randomness request is outstanding.
	StateCalculating
)

func (s RoundState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCalculating:
		return "calculating"
	default:
		return "unknown"
	}
}

func (s RoundState) IsValid() bool {
	return s == StateOpen || s == StateCalculating
}

// MarshalText renders the state for JSON responses and log attributes.
func (s RoundState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entrance is one accepted deposit in the current round. The ledger holds
// entrances in arrival order; order determines the winner index.
type Entrance struct {
	Depositor string    `json:"depositor"`
	Stake     uint64    `json:"stake"`
	EnteredAt time.Time `json:"entered_at"`
}

// RoundSnapshot is a read-only view of the live round used by the upkeep
// evaluator and the status endpoint.
type RoundSnapshot struct {
	ID           uuid.UUID  `json:"round_id"`
	State        RoundState `json:"state"`
	OpenedAt     time.Time  `json:"opened_at"`
	Participants int        `json:"participants"`
	Pool         uint64     `json:"pool"`
}

// RoundStatus extends the snapshot with the outstanding randomness request,
// if any, so a stuck CALCULATING round is observable from outside.
type RoundStatus struct {
	RoundSnapshot
	EntranceFee        uint64     `json:"entrance_fee"`
	OutstandingRequest *uuid.UUID `json:"outstanding_request,omitempty"`
}

// CompletedRound is the immutable record of a finished draw.
type CompletedRound struct {
	RoundID      uuid.UUID `json:"round_id"`
	RequestID    uuid.UUID `json:"request_id"`
	Winner       string    `json:"winner"`
	Prize        uint64    `json:"prize"`
	Participants int       `json:"participants"`
	OpenedAt     time.Time `json:"opened_at"`
	DecidedAt    time.Time `json:"decided_at"`
}

// RandomnessRequest correlates an outstanding coordinator request with the
// round that issued it. At most one exists at a time; the CALCULATING state
// is the lock that enforces this.
type RandomnessRequest struct {
	ID          uuid.UUID `json:"id"`
	RoundID     uuid.UUID `json:"round_id"`
	RequestedAt time.Time `json:"requested_at"`
}
