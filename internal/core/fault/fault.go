// Package fault defines the domain error kinds the core services report.
// Handlers map kinds to HTTP status codes; the services themselves never
// touch transport concerns.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindValidation is a missing required field or malformed input.
	// No mutation was performed.
	KindValidation Kind = iota
	// KindNotFound means a referenced employee/lead/attendance record is absent.
	KindNotFound
	// KindConflict means the request contradicts existing state (overlapping
	// schedule, duplicate open break, check-out without check-in).
	KindConflict
	// KindResourceExhausted means no active employee was available; the whole
	// batch aborted with zero partial assignments.
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindResourceExhausted:
		return "resource_exhausted"
	}
	return "unknown"
}

// Error carries a Kind plus a human-readable message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a validation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// ResourceExhausted builds a resource-exhausted error.
func ResourceExhausted(format string, args ...any) error {
	return &Error{Kind: KindResourceExhausted, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
