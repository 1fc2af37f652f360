// Package shared provides cross-cutting helpers used across the codebase.
package shared

import "github.com/containerd/errdefs"

// classified carries a human-readable reason and unwraps to one of the
// errdefs sentinel errors so callers can classify with errdefs.IsConflict,
// errdefs.IsNotFound, etc. Error() returns only the reason, which is what
// gets sent to the originating connection.
type classified struct {
	msg  string
	kind error
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.kind }

// Invalid returns a validation error (malformed or out-of-range input).
func Invalid(msg string) error {
	return &classified{msg: msg, kind: errdefs.ErrInvalidArgument}
}

// Denied returns an authorization error (wrong role for the action).
func Denied(msg string) error {
	return &classified{msg: msg, kind: errdefs.ErrPermissionDenied}
}

// Conflict returns a conflict error (duplicate answer, occupied teacher
// slot, poll already ended).
func Conflict(msg string) error {
	return &classified{msg: msg, kind: errdefs.ErrConflict}
}

// NotFound returns an error for an unknown poll or participant.
func NotFound(msg string) error {
	return &classified{msg: msg, kind: errdefs.ErrNotFound}
}

// Unavailable returns a persistence error surfaced as a generic failure.
func Unavailable(msg string) error {
	return &classified{msg: msg, kind: errdefs.ErrUnavailable}
}
