// Package domainerrors defines the closed set of error codes the raffle
// exposes to callers. Every rejected precondition and runtime fault carries a
// code plus structured diagnostic fields so callers can act on the error
// without consulting logs.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Code identifies an error category. The set is closed: handlers map each
// code to an HTTP status and nothing else is representable on the wire.
type Code string

const (
	// Round lifecycle codes.
	CodeStakeTooLow     Code = "stake_too_low"
	CodeRoundNotOpen    Code = "round_not_open"
	CodeUpkeepNotNeeded Code = "upkeep_not_needed"
	CodeUnknownRequest  Code = "unknown_request"
	CodePayoutFailed    Code = "payout_failed"

	// Transport and infrastructure codes.
	CodeValidation   Code = "validation"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]any
	cause   error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// With adds a diagnostic field and returns the error for chaining.
func With(err *Error, key string, value any) *Error {
	return err.With(key, value)
}

// With adds a diagnostic field and returns the error for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Fields[k])
		}
		b.WriteString(")")
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err is not an Error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf returns the diagnostic fields of err, or nil.
func FieldsOf(err error) map[string]any {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeStakeTooLow, CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRoundNotOpen, CodeUpkeepNotNeeded, CodeConflict:
		return http.StatusConflict
	case CodeUnknownRequest:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
