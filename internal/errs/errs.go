// Package errs defines the typed error taxonomy fabriq's services and RPC
// façade use to report failures, each kind mapping deterministically to
// a gRPC status code at the façade boundary.
package errs

import "fmt"

// Kind classifies an error for the purposes of status-code mapping at the
// RPC boundary.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindPermissionDenied Kind = "permission_denied"
	KindConflict        Kind = "conflict"
	KindTransient       Kind = "transient"
	KindFatalEvent      Kind = "fatal_event"
)

// Error is a typed error carrying enough context for both a human log
// line and a deterministic status-code mapping.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a malformed input: bad id shape, unknown
// owning-model kind, a reference that fails to resolve.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports a get/delete against a missing id.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Unauthenticated reports a missing or malformed bearer token.
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

// PermissionDenied reports a negative team-membership check.
func PermissionDenied(format string, args ...any) *Error {
	return newf(KindPermissionDenied, format, args...)
}

// Conflict reports a duplicate creation caught during validation.
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Transient wraps a persistence or event-stream I/O failure; the caller
// should treat the attempted write as aborted.
func Transient(cause error, format string, args ...any) *Error {
	e := newf(KindTransient, format, args...)
	e.Cause = cause
	return e
}

// FatalEvent reports an event a consumer cannot process at all: an
// unknown model type or a payload missing both snapshots. The consumer
// loop logs it at error level and deletes it from the queue instead of
// redelivering it, so recovering from it takes operator intervention.
func FatalEvent(format string, args ...any) *Error {
	return newf(KindFatalEvent, format, args...)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
