package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"github.com/kursadbilgin/outreach-engine/internal/provider"
	"github.com/kursadbilgin/outreach-engine/internal/ratelimit"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultProcessBatchSize = 50
	transportChannel        = "email"
)

// EngagementSignals exposes open/reply tracking owned by the surrounding
// platform. The engine ships no implementation; without one, skip conditions
// that depend on these signals evaluate to false.
type EngagementSignals interface {
	HasResponded(ctx context.Context, scheduleID, contactID string) (bool, error)
	HasOpened(ctx context.Context, scheduleID, contactID string) (bool, error)
}

// AttemptProcessor drains due attempts: evaluates skip conditions, renders,
// dispatches, and transitions each attempt to a terminal status.
type AttemptProcessor struct {
	attempts    repository.AttemptRepository
	schedules   repository.ScheduleRepository
	contacts    repository.ContactRepository
	renderer    provider.Renderer
	transport   provider.Transport
	rateLimiter ratelimit.RateLimiter
	signals     EngagementSignals
	activity    *ActivityLog
	logger      *zap.Logger
	metrics     *observability.Metrics
	batchSize   int
	now         func() time.Time

	warnedMu        sync.Mutex
	warnedSchedules map[string]struct{}
}

func NewAttemptProcessor(
	attempts repository.AttemptRepository,
	schedules repository.ScheduleRepository,
	contacts repository.ContactRepository,
	renderer provider.Renderer,
	transport provider.Transport,
	rateLimiter ratelimit.RateLimiter,
	activity *ActivityLog,
	batchSize int,
	logger *zap.Logger,
) (*AttemptProcessor, error) {
	if batchSize <= 0 {
		batchSize = defaultProcessBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AttemptProcessor{
		attempts:        attempts,
		schedules:       schedules,
		contacts:        contacts,
		renderer:        renderer,
		transport:       transport,
		rateLimiter:     rateLimiter,
		activity:        activity,
		logger:          logger,
		batchSize:       batchSize,
		now:             time.Now,
		warnedSchedules: make(map[string]struct{}),
	}, nil
}

func (p *AttemptProcessor) SetMetrics(metrics *observability.Metrics) {
	if p == nil {
		return
	}
	p.metrics = metrics
}

// SetEngagementSignals wires an external open/reply tracking source.
func (p *AttemptProcessor) SetEngagementSignals(signals EngagementSignals) {
	if p == nil {
		return
	}
	p.signals = signals
}

// ProcessDue handles one batch of due attempts sequentially. A failure on one
// attempt is recorded on that row and never aborts the rest of the batch.
func (p *AttemptProcessor) ProcessDue(ctx context.Context) error {
	p.metrics.SetProcessorInflight(true)
	defer p.metrics.SetProcessorInflight(false)

	dueAttempts, err := p.attempts.GetDue(ctx, p.now().UTC(), p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch due attempts: %w", err)
	}

	for i := range dueAttempts {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt := dueAttempts[i]
		processErr := p.processAttempt(ctx, &attempt)
		if processErr == nil {
			continue
		}
		if ctx.Err() != nil {
			// Cancelled mid-dispatch: leave the row SCHEDULED for the
			// next tick rather than recording a shutdown as a failure.
			return ctx.Err()
		}

		p.markFailed(ctx, &attempt, processErr.Error())
	}

	return nil
}

// processAttempt runs the skip/render/dispatch pipeline for one attempt.
// Skipped and sent outcomes are recorded here; a returned error means the
// caller must mark the attempt failed.
func (p *AttemptProcessor) processAttempt(ctx context.Context, attempt *domain.Attempt) error {
	skip, skipReason, err := p.shouldSkip(ctx, attempt)
	if err != nil {
		return err
	}
	if skip {
		p.markSkipped(ctx, attempt, skipReason)
		return nil
	}

	contact, err := p.contacts.GetByID(ctx, attempt.ContactID)
	if err != nil {
		return fmt.Errorf("failed to load contact %s: %w", attempt.ContactID, err)
	}
	if strings.TrimSpace(contact.MessageAddress) == "" {
		return fmt.Errorf("contact %s has no message address", attempt.ContactID)
	}

	renderContext := buildRenderContext(attempt.Variables, contact)

	dispatchStart := p.now()
	rendered, err := p.renderer.Render(ctx, attempt.TemplateID, renderContext)
	if err != nil {
		return fmt.Errorf("failed to render template %s: %w", attempt.TemplateID, err)
	}
	if rendered == nil {
		return fmt.Errorf("%w: template %s", domain.ErrNotFound, attempt.TemplateID)
	}

	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(ctx, transportChannel); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	result, sendErr := p.transport.Send(ctx, provider.OutboundMessage{
		To:      contact.MessageAddress,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	p.metrics.ObserveAttemptDispatchDuration(p.now().Sub(dispatchStart))
	if sendErr != nil {
		return fmt.Errorf("failed to dispatch attempt: %w", sendErr)
	}

	sentAt := p.now().UTC()
	transportMessageID := ""
	if result != nil {
		transportMessageID = result.MessageID
	}
	if err := p.attempts.MarkSent(ctx, attempt.ID, sentAt, transportMessageID); err != nil {
		return fmt.Errorf("failed to mark attempt as sent: %w", err)
	}

	p.metrics.IncAttemptProcessed("sent")
	p.logger.Info("attempt sent",
		zap.String("attemptId", attempt.ID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.String("contactId", attempt.ContactID),
	)
	p.activity.Record(ctx, domain.EventAttemptSent,
		fmt.Sprintf("attempt %d sent to contact %s", attempt.AttemptNumber, attempt.ContactID),
		attemptEventMetadata(attempt),
	)

	return nil
}

// shouldSkip evaluates the originating step's conditions. A step removed by a
// later schedule edit carries no conditions.
func (p *AttemptProcessor) shouldSkip(ctx context.Context, attempt *domain.Attempt) (bool, string, error) {
	schedule, err := p.schedules.GetByID(ctx, attempt.ScheduleID)
	if err != nil {
		return false, "", fmt.Errorf("failed to load schedule %s: %w", attempt.ScheduleID, err)
	}

	step, ok := schedule.Step(attempt.AttemptNumber)
	if !ok {
		return false, "", nil
	}
	conditions := step.Conditions

	if conditions.MaxAttempts > 0 {
		sentCount, err := p.attempts.CountSent(ctx, attempt.ScheduleID, attempt.ContactID)
		if err != nil {
			return false, "", fmt.Errorf("failed to count sent attempts: %w", err)
		}
		if sentCount >= int64(conditions.MaxAttempts) {
			return true, fmt.Sprintf("max attempts cap reached (%d)", conditions.MaxAttempts), nil
		}
	}

	if conditions.RequiresEngagementSignals() {
		if p.signals == nil {
			p.warnMissingSignals(attempt.ScheduleID)
			return false, "", nil
		}

		if conditions.SkipIfResponded {
			responded, err := p.signals.HasResponded(ctx, attempt.ScheduleID, attempt.ContactID)
			if err != nil {
				return false, "", fmt.Errorf("failed to check response signal: %w", err)
			}
			if responded {
				return true, "contact already responded", nil
			}
		}
		if conditions.SkipIfOpened {
			opened, err := p.signals.HasOpened(ctx, attempt.ScheduleID, attempt.ContactID)
			if err != nil {
				return false, "", fmt.Errorf("failed to check open signal: %w", err)
			}
			if opened {
				return true, "contact already opened an earlier message", nil
			}
		}
	}

	return false, "", nil
}

// warnMissingSignals raises a configuration warning once per schedule when a
// step demands open/reply tracking and no signal source is wired.
func (p *AttemptProcessor) warnMissingSignals(scheduleID string) {
	p.warnedMu.Lock()
	defer p.warnedMu.Unlock()

	if _, warned := p.warnedSchedules[scheduleID]; warned {
		return
	}
	p.warnedSchedules[scheduleID] = struct{}{}

	p.logger.Warn("schedule uses engagement-based skip conditions but no signal source is configured, treating as never-true",
		zap.String("scheduleId", scheduleID),
	)
}

func (p *AttemptProcessor) markSkipped(ctx context.Context, attempt *domain.Attempt, reason string) {
	if err := p.attempts.MarkSkipped(ctx, attempt.ID); err != nil {
		p.logger.Error("failed to mark attempt as skipped",
			zap.String("attemptId", attempt.ID),
			zap.Error(err),
		)
		return
	}

	p.metrics.IncAttemptProcessed("skipped")
	p.logger.Info("attempt skipped",
		zap.String("attemptId", attempt.ID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.String("contactId", attempt.ContactID),
		zap.String("reason", reason),
	)
	p.activity.Record(ctx, domain.EventAttemptSkipped,
		fmt.Sprintf("attempt %d skipped for contact %s: %s", attempt.AttemptNumber, attempt.ContactID, reason),
		attemptEventMetadata(attempt),
	)
}

func (p *AttemptProcessor) markFailed(ctx context.Context, attempt *domain.Attempt, errorMessage string) {
	if err := p.attempts.MarkFailed(ctx, attempt.ID, errorMessage); err != nil {
		p.logger.Error("failed to mark attempt as failed",
			zap.String("attemptId", attempt.ID),
			zap.Error(err),
		)
		return
	}

	p.metrics.IncAttemptProcessed("failed")
	p.logger.Warn("attempt failed",
		zap.String("attemptId", attempt.ID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.String("contactId", attempt.ContactID),
		zap.String("error", errorMessage),
	)
	p.activity.Record(ctx, domain.EventAttemptFailed,
		fmt.Sprintf("attempt %d failed for contact %s: %s", attempt.AttemptNumber, attempt.ContactID, errorMessage),
		attemptEventMetadata(attempt),
	)
}

// buildRenderContext merges the rendering sources in precedence order, lowest
// first: computed defaults, then the attempt's stored variable map, then the
// contact's own fields. Later sources win on key collisions.
func buildRenderContext(variables map[string]string, contact *domain.Contact) map[string]string {
	merged := map[string]string{
		"firstName": "",
		"lastName":  "",
		"fullName":  "",
	}

	for k, v := range variables {
		merged[k] = v
	}

	if contact != nil {
		if contact.FirstName != "" {
			merged["firstName"] = contact.FirstName
		}
		if contact.LastName != "" {
			merged["lastName"] = contact.LastName
		}
		if fullName := strings.TrimSpace(contact.FirstName + " " + contact.LastName); fullName != "" {
			merged["fullName"] = fullName
		}
	}

	return merged
}

func attemptEventMetadata(attempt *domain.Attempt) map[string]string {
	return map[string]string{
		"attemptId":     attempt.ID,
		"attemptNumber": strconv.Itoa(attempt.AttemptNumber),
		"scheduleId":    attempt.ScheduleID,
		"contactId":     attempt.ContactID,
	}
}
