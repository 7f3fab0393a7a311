package domain

import "errors"

// Sentinel errors shared across services. Controllers translate these into
// the API error envelope; repositories and services return them unwrapped or
// wrapped with %w so errors.Is keeps working.
var (
	// ErrNotFound is returned when an activity, participant, user, or room
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned on authority violations: a non-host deciding
	// a request, or a host requesting to join their own activity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for missing or malformed fields that got
	// past transport-level validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateRequest is returned when a user already holds a
	// participation record on the activity, whatever its status.
	ErrDuplicateRequest = errors.New("join request already exists")

	// ErrCapacityExceeded is returned when the accepted participant count
	// is already at the activity's capacity.
	ErrCapacityExceeded = errors.New("activity capacity exceeded")

	// ErrInvalidDecision is returned when a host decision is neither
	// accepted nor rejected.
	ErrInvalidDecision = errors.New("decision must be accepted or rejected")

	// ErrAlreadyDecided is returned when a host decides a participation
	// that is no longer pending. Accepted and rejected are terminal.
	ErrAlreadyDecided = errors.New("participation already decided")

	// ErrTimeout is returned when a store operation did not complete within
	// the caller's deadline.
	ErrTimeout = errors.New("operation timed out")
)
