package queue

import "context"

const (
	// HandoverQueue is the durable queue human-notification consumers read.
	HandoverQueue = "handover"
	// HandoverDLQ receives handover messages the consumer rejected.
	HandoverDLQ = "dlq.handover"

	// queueMaxPriority is the RabbitMQ x-max-priority value for the handover queue.
	queueMaxPriority int32 = 3
)

// Notifier publishes handover notifications toward human recipients. The
// consumer side (mail, chat, paging) lives outside this engine.
type Notifier interface {
	Notify(ctx context.Context, msg HandoverMessage) error
	Close() error
}

// NotificationPriority maps a recipient's rank (1 = first responder) to a
// RabbitMQ message priority.
func NotificationPriority(recipientPriority int) uint8 {
	switch {
	case recipientPriority <= 1:
		return 3
	case recipientPriority == 2:
		return 2
	default:
		return 1
	}
}
