package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptConditions are the optional per-step skip rules. Zero values mean
// the condition is unset. SkipIfResponded and SkipIfOpened depend on an
// engagement signal source that is not part of this engine; without one they
// evaluate to false and the processor raises a configuration warning.
type AttemptConditions struct {
	SkipIfResponded bool
	SkipIfOpened    bool
	// MaxAttempts caps the number of sends per contact across the whole
	// schedule. 0 disables the cap.
	MaxAttempts int
}

// RequiresEngagementSignals reports whether the conditions depend on
// open/reply tracking.
func (c AttemptConditions) RequiresEngagementSignals() bool {
	return c.SkipIfResponded || c.SkipIfOpened
}

// AttemptTemplate is one ordered step of a schedule. Its delay is relative to
// the enrollment instant, not to the previous step.
type AttemptTemplate struct {
	AttemptNumber int
	TemplateID    string
	DelayDays     int
	DelayHours    int
	Conditions    AttemptConditions
}

// Delay returns the step's offset from the enrollment instant.
func (t AttemptTemplate) Delay() time.Duration {
	return time.Duration(t.DelayDays)*24*time.Hour + time.Duration(t.DelayHours)*time.Hour
}

// Schedule is a named, ordered multi-attempt sequence definition contacts are
// enrolled into.
type Schedule struct {
	ID          string
	Name        string
	Description string
	Active      bool
	Steps       []AttemptTemplate
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Schedule) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: schedule is required", ErrValidation)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: schedule name is required", ErrValidation)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: schedule must define at least one step", ErrConfiguration)
	}

	seen := make(map[int]struct{}, len(s.Steps))
	for _, step := range s.Steps {
		if strings.TrimSpace(step.TemplateID) == "" {
			return fmt.Errorf("%w: step %d is missing a template id", ErrConfiguration, step.AttemptNumber)
		}
		if step.DelayDays < 0 || step.DelayHours < 0 {
			return fmt.Errorf("%w: step %d has a negative delay", ErrConfiguration, step.AttemptNumber)
		}
		if step.Conditions.MaxAttempts < 0 {
			return fmt.Errorf("%w: step %d has a negative max attempts cap", ErrConfiguration, step.AttemptNumber)
		}
		if _, dup := seen[step.AttemptNumber]; dup {
			return fmt.Errorf("%w: duplicate attempt number %d", ErrConfiguration, step.AttemptNumber)
		}
		seen[step.AttemptNumber] = struct{}{}
	}

	// Attempt numbers must be contiguous starting at 1.
	for n := 1; n <= len(s.Steps); n++ {
		if _, ok := seen[n]; !ok {
			return fmt.Errorf("%w: attempt numbers must be contiguous from 1, missing %d", ErrConfiguration, n)
		}
	}

	return nil
}

// Step returns the template for the given attempt number, if the schedule
// still defines it. Attempts materialized before a schedule edit may
// reference numbers that no longer exist.
func (s *Schedule) Step(attemptNumber int) (AttemptTemplate, bool) {
	if s == nil {
		return AttemptTemplate{}, false
	}
	for _, step := range s.Steps {
		if step.AttemptNumber == attemptNumber {
			return step, true
		}
	}
	return AttemptTemplate{}, false
}
