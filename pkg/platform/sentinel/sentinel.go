package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the bank return these
// (optionally wrapped) so the service can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrConflict: a conflicting record already exists (e.g. an outstanding randomness request)
// - ErrInsufficientFunds: account balance cannot cover the requested transfer
// - ErrInvalidState: resource in wrong state for requested operation
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnavailable       = errors.New("unavailable")
)
