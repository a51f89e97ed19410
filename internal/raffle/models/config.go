package models

import (
	"time"

	dErrors "raffle/pkg/domain-errors"
)

// RoundConfig is the immutable per-deployment configuration of the raffle.
// It is validated once at construction and never mutated afterwards.
type RoundConfig struct {
	// MinimumStake is the smallest accepted entrance deposit, in base units.
	MinimumStake uint64
	// MinimumInterval is the time a round must stay open before a draw may
	// be triggered.
	MinimumInterval time.Duration

	// Randomness-service routing parameters, passed through to the
	// coordinator verbatim.
	KeyHash              string
	SubscriptionID       uint64
	CallbackGasLimit     uint32
	RequestConfirmations uint16
	NumWords             uint32
	NativePayment        bool
}

// Validate rejects configurations that would make the round unwinnable or
// the coordinator request unroutable.
func (c RoundConfig) Validate() error {
	if c.MinimumStake == 0 {
		return dErrors.New(dErrors.CodeValidation, "minimum stake must be positive")
	}
	if c.MinimumInterval <= 0 {
		return dErrors.New(dErrors.CodeValidation, "minimum interval must be positive")
	}
	if c.KeyHash == "" {
		return dErrors.New(dErrors.CodeValidation, "key hash is required")
	}
	if c.SubscriptionID == 0 {
		return dErrors.New(dErrors.CodeValidation, "subscription id is required")
	}
	if c.NumWords == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one random word must be requested")
	}
	return nil
}
