// Package faults classifies failures raised by the pairing and ranking core.
//
// Every rejection carries one of four kinds so the transport layer can map it
// without inspecting messages:
//   - ErrValidation: the request itself is malformed or breaks a rule.
//   - ErrConflict: the request is well formed but collides with current state.
//   - ErrNotFound: a referenced record does not exist.
//   - ErrConsistency: state changed underneath the request; nothing was applied.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrConsistency = errors.New("consistency check failed")
)

// Error is a classified failure. Reason is the specific sentinel (for
// example officiating.ErrInsufficientOfficials) and IDs lists the records
// that caused it, when there are any.
type Error struct {
	Op     string
	Kind   error
	Reason error
	IDs    []int64
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Reason != nil:
		b.WriteString(e.Reason.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	default:
		b.WriteString("unclassified failure")
	}
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " (ids %v)", e.IDs)
	}
	return b.String()
}

// Unwrap exposes both the kind and the reason to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Reason != nil {
		out = append(out, e.Reason)
	}
	return out
}

func newError(op string, kind, reason error, ids []int64) *Error {
	return &Error{Op: op, Kind: kind, Reason: reason, IDs: ids}
}

// Validation classifies reason as a validation failure.
func Validation(op string, reason error, ids ...int64) *Error {
	return newError(op, ErrValidation, reason, ids)
}

// Conflict classifies reason as a state conflict.
func Conflict(op string, reason error, ids ...int64) *Error {
	return newError(op, ErrConflict, reason, ids)
}

// NotFound classifies reason as a missing record.
func NotFound(op string, reason error, ids ...int64) *Error {
	return newError(op, ErrNotFound, reason, ids)
}

// Consistency classifies reason as a concurrent-change failure.
func Consistency(op string, reason error, ids ...int64) *Error {
	return newError(op, ErrConsistency, reason, ids)
}

// KindOf returns the kind of err, or nil when err is not classified.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrConsistency} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IDs returns the offending record IDs carried by err.
func IDs(err error) []int64 {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.IDs
	}
	return nil
}
