// Package vrf adapts the round state machine to the external verifiable
// randomness coordinator. The core never computes randomness itself: it
// sends a request carrying the configured routing parameters and later
// receives the random words through the fulfillment callback endpoint.
package vrf

import (
	"time"

	"github.com/google/uuid"

	"raffle/internal/raffle/models"
)

// WordsRequest is the wire shape of a randomness request. Routing parameters
// come from RoundConfig; the request ID correlates the asynchronous
// fulfillment back to the round that asked.
type WordsRequest struct {
	RequestID            uuid.UUID `json:"request_id"`
	KeyHash              string    `json:"key_hash"`
	SubscriptionID       uint64    `json:"subscription_id"`
	RequestConfirmations uint16    `json:"request_confirmations"`
	CallbackGasLimit     uint32    `json:"callback_gas_limit"`
	NumWords             uint32    `json:"num_words"`
	NativePayment        bool      `json:"native_payment"`
	CallbackURL          string    `json:"callback_url,omitempty"`
}

// Fulfillment is the wire shape of the coordinator's callback.
type Fulfillment struct {
	RequestID uuid.UUID `json:"request_id"`
	Words     []uint64  `json:"words"`
}

// NewWordsRequest builds a request from the deployment config, stamping a
// fresh correlation ID.
func NewWordsRequest(cfg models.RoundConfig, callbackURL string) WordsRequest {
	return WordsRequest{
		RequestID:            uuid.New(),
		KeyHash:              cfg.KeyHash,
		SubscriptionID:       cfg.SubscriptionID,
		RequestConfirmations: cfg.RequestConfirmations,
		CallbackGasLimit:     cfg.CallbackGasLimit,
		NumWords:             cfg.NumWords,
		NativePayment:        cfg.NativePayment,
		CallbackURL:          callbackURL,
	}
}

// Correlation converts a dispatched request into the stored correlation
// record for the round that issued it.
func (r WordsRequest) Correlation(roundID uuid.UUID, now time.Time) models.RandomnessRequest {
	return models.RandomnessRequest{
		ID:          r.RequestID,
		RoundID:     roundID,
		RequestedAt: now,
	}
}
