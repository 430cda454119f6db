package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

// EnrollmentService materializes a schedule's steps into attempt rows when a
// contact enters a campaign.
type EnrollmentService struct {
	schedules repository.ScheduleRepository
	attempts  repository.AttemptRepository
	activity  *ActivityLog
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	newSalt   func() string
}

func NewEnrollmentService(
	schedules repository.ScheduleRepository,
	attempts repository.AttemptRepository,
	activity *ActivityLog,
	logger *zap.Logger,
) (*EnrollmentService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EnrollmentService{
		schedules: schedules,
		attempts:  attempts,
		activity:  activity,
		logger:    logger,
		now:       time.Now,
		newSalt:   uuid.NewString,
	}, nil
}

func (s *EnrollmentService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Enroll creates one scheduled attempt per schedule step for the contact.
// Creation is all-or-nothing, and every step's delay is relative to the single
// enrollment instant captured here, not chained off the previous step.
//
// Re-enrolling a contact into the same schedule creates a fresh set of
// attempts alongside any earlier ones; deduplication is the caller's concern.
func (s *EnrollmentService) Enroll(ctx context.Context, scheduleID, contactID string, variables map[string]string) error {
	if strings.TrimSpace(scheduleID) == "" {
		return fmt.Errorf("%w: schedule id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(contactID) == "" {
		return fmt.Errorf("%w: contact id is required", domain.ErrValidation)
	}

	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to load schedule %s: %w", scheduleID, err)
	}
	if !schedule.Active {
		return fmt.Errorf("%w: schedule %s is not active", domain.ErrConfiguration, scheduleID)
	}
	if err := schedule.Validate(); err != nil {
		return fmt.Errorf("schedule %s is malformed: %w", scheduleID, err)
	}

	enrolledAt := s.now().UTC()
	salt := s.newSalt()

	attempts := make([]*domain.Attempt, 0, len(schedule.Steps))
	for _, step := range schedule.Steps {
		attempts = append(attempts, &domain.Attempt{
			ID:            domain.ComposeAttemptID(scheduleID, contactID, step.AttemptNumber, salt),
			ScheduleID:    scheduleID,
			ContactID:     contactID,
			AttemptNumber: step.AttemptNumber,
			TemplateID:    step.TemplateID,
			ScheduledFor:  enrolledAt.Add(step.Delay()),
			Status:        domain.AttemptStatusScheduled,
			Variables:     copyVariables(variables),
		})
	}

	if err := s.attempts.CreateBatch(ctx, attempts); err != nil {
		return fmt.Errorf("failed to create attempts for contact %s: %w", contactID, err)
	}

	firstDue := attempts[0].ScheduledFor
	for _, attempt := range attempts[1:] {
		if attempt.ScheduledFor.Before(firstDue) {
			firstDue = attempt.ScheduledFor
		}
	}

	s.metrics.IncEnrollment()
	s.logger.Info("contact enrolled",
		zap.String("scheduleId", scheduleID),
		zap.String("contactId", contactID),
		zap.Int("attemptCount", len(attempts)),
		zap.Time("firstDue", firstDue),
	)
	s.activity.Record(ctx, domain.EventContactEnrolled,
		fmt.Sprintf("contact %s enrolled in schedule %q with %d attempts, first due %s",
			contactID, schedule.Name, len(attempts), firstDue.Format(time.RFC3339)),
		map[string]string{
			"scheduleId":   scheduleID,
			"scheduleName": schedule.Name,
			"contactId":    contactID,
			"attemptCount": strconv.Itoa(len(attempts)),
			"firstDue":     firstDue.Format(time.RFC3339),
		},
	)

	return nil
}

func copyVariables(variables map[string]string) map[string]string {
	if len(variables) == 0 {
		return nil
	}
	out := make(map[string]string, len(variables))
	for k, v := range variables {
		out[k] = v
	}
	return out
}
