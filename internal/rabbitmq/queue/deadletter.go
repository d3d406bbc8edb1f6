package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// DeadLetter is a message the broker moved to the failed queue.
type DeadLetter struct {
	Message NotificationMessage
	Reason  string // x-death reason: rejected, expired, maxlen or delivery_limit
	Queue   string // queue the message was dead-lettered from

	delivery amqp.Delivery
}

// Ack removes the dead letter from the failed queue.
func (d DeadLetter) Ack() error {
	if d.delivery.Acknowledger == nil {
		return nil
	}
	return d.delivery.Ack(false)
}

// Requeue returns the dead letter to the failed queue for another attempt.
func (d DeadLetter) Requeue() error {
	if d.delivery.Acknowledger == nil {
		return nil
	}
	return d.delivery.Nack(false, true)
}

// NewDeadLetter decodes a delivery from the failed queue.
func NewDeadLetter(d amqp.Delivery) (DeadLetter, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return DeadLetter{}, fmt.Errorf("failed to unmarshal dead letter: %w", err)
	}

	reason, queue := deathOf(d.Headers)
	if msg.NotificationID == "" && d.MessageId != "" {
		msg.NotificationID = d.MessageId
	}

	return DeadLetter{Message: msg, Reason: reason, Queue: queue, delivery: d}, nil
}

// deathOf reads the most recent x-death entry.
func deathOf(headers amqp.Table) (reason, queue string) {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return "unknown", ""
	}

	death, ok := deaths[0].(amqp.Table)
	if !ok {
		return "unknown", ""
	}

	reason, _ = death["reason"].(string)
	queue, _ = death["queue"].(string)
	if reason == "" {
		reason = "unknown"
	}
	return reason, queue
}

type channelOpener interface {
	OpenChannel(ctx context.Context) (Channel, error)
}

// DeadLetterConsumer reads the failed queue, following the connection across reconnects.
type DeadLetterConsumer struct {
	source   channelOpener
	queue    string
	tag      string
	prefetch int
}

// NewDeadLetterConsumer creates a consumer of queueName.
func NewDeadLetterConsumer(source channelOpener, queueName string, prefetch int) *DeadLetterConsumer {
	if queueName == "" {
		queueName = FailedQueueName
	}
	if prefetch <= 0 {
		prefetch = 10
	}
	return &DeadLetterConsumer{source: source, queue: queueName, tag: "gateway-dead-letters", prefetch: prefetch}
}

// Consume delivers dead letters to out until ctx is done. Undecodable messages are acked
// and dropped. The caller acks every DeadLetter it receives.
func (c *DeadLetterConsumer) Consume(ctx context.Context, out chan<- DeadLetter) error {
	for {
		ch, err := c.source.OpenChannel(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			zlog.Logger.Warn().Err(err).Str("queue", c.queue).Msg("failed to open consumer channel")
			if !pause(ctx, 0) {
				return nil
			}
			continue
		}

		if err := c.drain(ctx, ch, out); err != nil {
			zlog.Logger.Warn().Err(err).Str("queue", c.queue).Msg("dead-letter consumer interrupted")
		}
		_ = ch.Close()

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *DeadLetterConsumer) drain(ctx context.Context, ch Channel, out chan<- DeadLetter) error {
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			dl, err := NewDeadLetter(d)
			if err != nil {
				zlog.Logger.Error().Err(err).Str("message_id", d.MessageId).Msg("dropping undecodable dead letter")
				_ = d.Ack(false)
				continue
			}

			select {
			case out <- dl:
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return nil
			}
		}
	}
}
