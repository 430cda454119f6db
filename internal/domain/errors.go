package domain

import "errors"

var (
	// ErrNotFound marks a missing schedule, attempt, contact, template or conversation.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks an unusable schedule or handover rule (inactive
	// schedule, malformed delay, missing required rule fields).
	ErrConfiguration = errors.New("configuration error")
	// ErrConflict marks an illegal attempt status transition.
	ErrConflict = errors.New("conflict")
	// ErrTransport marks an outbound delivery failure.
	ErrTransport = errors.New("transport error")
)
