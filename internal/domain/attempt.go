package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptStatus represents the lifecycle state of an outreach attempt.
// Transitions are one-way: SCHEDULED -> {SENT | FAILED | SKIPPED}.
type AttemptStatus string

const (
	AttemptStatusScheduled AttemptStatus = "SCHEDULED"
	AttemptStatusSent      AttemptStatus = "SENT"
	AttemptStatusFailed    AttemptStatus = "FAILED"
	AttemptStatusSkipped   AttemptStatus = "SKIPPED"
)

func (s AttemptStatus) String() string { return string(s) }

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptStatusScheduled, AttemptStatusSent, AttemptStatusFailed, AttemptStatusSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether the status can never change again.
func (s AttemptStatus) IsTerminal() bool {
	switch s {
	case AttemptStatusSent, AttemptStatusFailed, AttemptStatusSkipped:
		return true
	}
	return false
}

func ParseAttemptStatusFromString(s string) (AttemptStatus, error) {
	st := AttemptStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid attempt status %q", ErrValidation, s)
	}
	return st, nil
}

// Attempt is one concrete scheduled send for one contact, materialized from a
// schedule step at enrollment time.
type Attempt struct {
	ID                 string
	ScheduleID         string
	ContactID          string
	AttemptNumber      int
	TemplateID         string
	ScheduledFor       time.Time
	Status             AttemptStatus
	Variables          map[string]string
	SentAt             *time.Time
	TransportMessageID *string
	ErrorMessage       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ComposeAttemptID builds a deterministic attempt id from its owning keys
// plus a salt so re-enrollment never collides with earlier rows.
func ComposeAttemptID(scheduleID, contactID string, attemptNumber int, salt string) string {
	return fmt.Sprintf("%s:%s:%d:%s", scheduleID, contactID, attemptNumber, salt)
}

func (a *Attempt) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: attempt is required", ErrValidation)
	}
	if strings.TrimSpace(a.ScheduleID) == "" {
		return fmt.Errorf("%w: schedule id is required", ErrValidation)
	}
	if strings.TrimSpace(a.ContactID) == "" {
		return fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if a.AttemptNumber < 1 {
		return fmt.Errorf("%w: attempt number must be >= 1", ErrValidation)
	}
	if strings.TrimSpace(a.TemplateID) == "" {
		return fmt.Errorf("%w: template id is required", ErrValidation)
	}
	if a.ScheduledFor.IsZero() {
		return fmt.Errorf("%w: scheduled time is required", ErrValidation)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("%w: invalid attempt status %q", ErrValidation, a.Status)
	}
	return nil
}
