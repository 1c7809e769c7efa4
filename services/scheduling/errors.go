package scheduling

import (
	"errors"
	"fmt"
)

// ErrSlotNotFound is returned by point lookups when no slot has the given id.
var ErrSlotNotFound = errors.New("slot not found")

// Error codes surfaced to callers. These are the wire-level values used by
// both facades, so they change only with the external contract.
const (
	CodeInvalidRange = "invalid_range"
	CodeConflict     = "conflict"
	CodeUnavailable  = "unavailable"
)

// SchedulingError is the typed error returned by the engine. Code is one of
// the Code* constants; Err carries the underlying store error, if any.
type SchedulingError struct {
	Code    string
	Message string
	Err     error
}

func (e *SchedulingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}

func NewInvalidRangeError(msg string) error {
	return &SchedulingError{
		Code:    CodeInvalidRange,
		Message: msg,
	}
}

func NewConflictError(msg string) error {
	return &SchedulingError{
		Code:    CodeConflict,
		Message: msg,
	}
}

func NewUnavailableError(msg string, err error) error {
	return &SchedulingError{
		Code:    CodeUnavailable,
		Message: msg,
		Err:     err,
	}
}

// ErrorCode extracts the caller-visible code from err, or empty if err is not
// a SchedulingError.
func ErrorCode(err error) string {
	var se *SchedulingError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsInvalidRange reports whether err represents malformed or inverted bounds.
func IsInvalidRange(err error) bool {
	return ErrorCode(err) == CodeInvalidRange
}

// IsConflict reports whether err represents a booked-interval overlap.
func IsConflict(err error) bool {
	return ErrorCode(err) == CodeConflict
}

// IsUnavailable reports whether err represents a store failure or timeout.
func IsUnavailable(err error) bool {
	return ErrorCode(err) == CodeUnavailable
}
