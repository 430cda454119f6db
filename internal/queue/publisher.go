package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes handover messages to the handover queue.
type AMQPNotifier struct {
	client *RabbitMQ
}

func NewAMQPNotifier(client *RabbitMQ) *AMQPNotifier {
	return &AMQPNotifier{client: client}
}

func (n *AMQPNotifier) Notify(ctx context.Context, msg HandoverMessage) error {
	if n == nil || n.client == nil {
		return fmt.Errorf("notifier is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid handover message: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal handover message: %w", err)
	}

	ch, err := n.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	publishing := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     msg.ContactID,
		CorrelationId: msg.ConversationID,
		Priority:      NotificationPriority(msg.RecipientPriority),
		Body:          payload,
	}

	if err := ch.PublishWithContext(ctx, "", HandoverQueue, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish handover message: %w", err)
	}

	return nil
}

func (n *AMQPNotifier) Close() error {
	if n == nil || n.client == nil {
		return nil
	}
	return n.client.Close()
}
