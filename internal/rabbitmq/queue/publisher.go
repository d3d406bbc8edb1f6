package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

// DefaultPublishTimeout bounds a single publish including the broker confirm.
const DefaultPublishTimeout = 5 * time.Second

var (
	// ErrBackpressure is returned while the broker blocks the connection.
	ErrBackpressure = errors.New("rabbitmq: connection blocked by broker")
	// ErrNacked is returned when the broker refuses a confirm-mode publish.
	ErrNacked = errors.New("rabbitmq: publish nacked by broker")
)

// NotificationMessage is the JSON body published to a channel queue.
type NotificationMessage struct {
	NotificationID string         `json:"notification_id"`
	RequestID      string         `json:"request_id"`
	UserID         string         `json:"user_id"`
	Channel        model.Channel  `json:"channel"`
	TemplateCode   string         `json:"template_code"`
	Variables      map[string]any `json:"variables"`
	Priority       int            `json:"priority"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewNotificationMessage builds the broker message for n.
func NewNotificationMessage(n model.Notification) NotificationMessage {
	return NotificationMessage{
		NotificationID: n.ID.String(),
		RequestID:      n.RequestID,
		UserID:         n.UserID,
		Channel:        n.Channel,
		TemplateCode:   n.TemplateCode,
		Variables:      n.Variables,
		Priority:       n.Priority,
		Metadata:       n.Metadata,
		CreatedAt:      n.CreatedAt,
	}
}

type channelSource interface {
	Channel() (Channel, error)
	Blocked() bool
}

// Publisher sends notification messages to the live exchange in confirm mode.
type Publisher struct {
	source   channelSource
	exchange string
	timeout  time.Duration
}

// NewPublisher creates a Publisher. A non-positive timeout falls back to DefaultPublishTimeout.
func NewPublisher(source channelSource, exchange string, timeout time.Duration) *Publisher {
	if exchange == "" {
		exchange = ExchangeName
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Publisher{source: source, exchange: exchange, timeout: timeout}
}

// Publish sends msg routed by its channel and waits for the broker confirm.
//
// It reports false with a non-nil error when the message was not accepted: the broker
// blocks the connection, there is no connection, the confirm timed out or was a nack.
func (p *Publisher) Publish(ctx context.Context, msg NotificationMessage) (bool, error) {
	if p.source.Blocked() {
		return false, ErrBackpressure
	}

	ch, err := p.source.Channel()
	if err != nil {
		return false, err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, msg.Channel.String(), false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Priority:      clampPriority(msg.Priority),
		MessageId:     msg.NotificationID,
		CorrelationId: msg.RequestID,
		Timestamp:     msg.CreatedAt,
		Body:          body,
	})
	if err != nil {
		return false, fmt.Errorf("failed to publish message: %w", err)
	}

	// nil when the channel is not in confirm mode
	if confirm == nil {
		return true, nil
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to wait for publish confirm: %w", err)
	}
	if !acked {
		return false, ErrNacked
	}

	return true, nil
}

func clampPriority(p int) uint8 {
	switch {
	case p < model.MinPriority:
		return model.MinPriority
	case p > model.MaxPriority:
		return model.MaxPriority
	default:
		return uint8(p)
	}
}
