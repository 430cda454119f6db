package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"github.com/kursadbilgin/outreach-engine/internal/queue"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

// HandoverExecutor notifies the configured recipients after a positive
// evaluation and parks the conversation for human takeover.
type HandoverExecutor struct {
	notifier      queue.Notifier
	conversations repository.ConversationRepository
	activity      *ActivityLog
	logger        *zap.Logger
	metrics       *observability.Metrics
}

func NewHandoverExecutor(
	notifier queue.Notifier,
	conversations repository.ConversationRepository,
	activity *ActivityLog,
	logger *zap.Logger,
) (*HandoverExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HandoverExecutor{
		notifier:      notifier,
		conversations: conversations,
		activity:      activity,
		logger:        logger,
	}, nil
}

func (e *HandoverExecutor) SetMetrics(metrics *observability.Metrics) {
	if e == nil {
		return
	}
	e.metrics = metrics
}

// Execute notifies every recipient in priority order. A recipient that could
// not be notified flips the returned boolean to false but does not undo
// notifications already delivered. When at least one recipient was notified
// and a conversation id is supplied, the conversation status moves to
// handover_pending so automation stops touching it. The criteria slice names
// the evaluation criteria that fired and travels with each notification.
func (e *HandoverExecutor) Execute(ctx context.Context, contact *domain.Contact, recipients []domain.HandoverRecipient, conversationID, reason string, criteria []string) (bool, error) {
	if contact == nil {
		return false, fmt.Errorf("%w: contact is required", domain.ErrValidation)
	}
	if len(recipients) == 0 {
		return false, fmt.Errorf("%w: at least one handover recipient is required", domain.ErrConfiguration)
	}

	ordered := make([]domain.HandoverRecipient, len(recipients))
	copy(ordered, recipients)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	contactName := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	notified := 0
	for _, recipient := range ordered {
		msg := queue.HandoverMessage{
			RecipientName:     recipient.Name,
			RecipientEmail:    recipient.Email,
			RecipientRole:     recipient.Role,
			RecipientPriority: recipient.Priority,
			ContactID:         contact.ID,
			ContactName:       contactName,
			ConversationID:    conversationID,
			Reason:            reason,
			TriggeredCriteria: criteria,
		}

		if err := e.notifier.Notify(ctx, msg); err != nil {
			e.metrics.IncHandoverNotification("failed")
			e.logger.Error("failed to notify handover recipient",
				zap.String("recipientEmail", recipient.Email),
				zap.String("contactId", contact.ID),
				zap.Error(err),
			)
			continue
		}

		e.metrics.IncHandoverNotification("sent")
		notified++
	}

	if notified > 0 && strings.TrimSpace(conversationID) != "" {
		if err := e.conversations.UpdateStatus(ctx, conversationID, domain.ConversationStatusHandoverPending); err != nil {
			return false, fmt.Errorf("failed to park conversation %s for handover: %w", conversationID, err)
		}
	}

	complete := notified == len(ordered)
	if notified > 0 {
		e.activity.Record(ctx, domain.EventHandoverExecuted,
			fmt.Sprintf("handover executed for contact %s, %d/%d recipients notified", contact.ID, notified, len(ordered)),
			map[string]string{
				"contactId":      contact.ID,
				"conversationId": conversationID,
				"reason":         reason,
				"criteria":       strings.Join(criteria, ","),
				"notified":       strconv.Itoa(notified),
				"recipients":     strconv.Itoa(len(ordered)),
			},
		)
	}

	return complete, nil
}
