package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

const activitySource = "outreach-engine"

// ActivityLog records audit events around engine actions. Recording is
// fire-and-forget: failures are logged and never returned to the caller.
type ActivityLog struct {
	activities repository.ActivityRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewActivityLog(activities repository.ActivityRepository, logger *zap.Logger) *ActivityLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLog{
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

func (l *ActivityLog) Record(ctx context.Context, eventType, message string, metadata map[string]string) {
	if l == nil || l.activities == nil {
		return
	}

	event := &domain.ActivityEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Message:   message,
		Source:    activitySource,
		Metadata:  metadata,
		CreatedAt: l.now().UTC(),
	}

	if err := l.activities.Record(ctx, event); err != nil {
		l.logger.Warn("failed to record activity event",
			zap.String("eventType", eventType),
			zap.Error(err),
		)
	}
}
