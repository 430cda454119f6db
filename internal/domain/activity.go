package domain

import "time"

// Activity event types recorded by the engine.
const (
	EventContactEnrolled  = "contact_enrolled"
	EventAttemptSent      = "attempt_sent"
	EventAttemptFailed    = "attempt_failed"
	EventAttemptSkipped   = "attempt_skipped"
	EventHandoverExecuted = "handover_executed"
)

// ActivityEvent is an audit record of an engine action. Recording is
// fire-and-forget: a failed write never aborts the operation it describes.
type ActivityEvent struct {
	ID        string
	EventType string
	Message   string
	Source    string
	Metadata  map[string]string
	CreatedAt time.Time
}
