package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

const (
	ExchangeName           = "notifications.direct"
	DeadLetterExchangeName = "notifications.dlx"
	EmailQueueName         = "email.queue"
	PushQueueName          = "push.queue"
	FailedQueueName        = "failed.queue"
	FailedRoutingKey       = "failed"
)

// Topology names the exchanges and queues the gateway asserts on every (re)connect.
type Topology struct {
	Exchange           string                   `mapstructure:"exchange"`
	DeadLetterExchange string                   `mapstructure:"dead_letter_exchange"`
	Queues             map[model.Channel]string `mapstructure:"queues"`
	FailedQueue        string                   `mapstructure:"failed_queue"`
	MaxPriority        int                      `mapstructure:"max_priority"`
}

// DefaultTopology returns the production topology.
func DefaultTopology() Topology {
	return Topology{
		Exchange:           ExchangeName,
		DeadLetterExchange: DeadLetterExchangeName,
		Queues: map[model.Channel]string{
			model.ChannelEmail: EmailQueueName,
			model.ChannelPush:  PushQueueName,
		},
		FailedQueue: FailedQueueName,
		MaxPriority: model.MaxPriority,
	}
}

// WithDefaults fills empty fields from DefaultTopology.
func (t Topology) WithDefaults() Topology {
	def := DefaultTopology()
	if t.Exchange == "" {
		t.Exchange = def.Exchange
	}
	if t.DeadLetterExchange == "" {
		t.DeadLetterExchange = def.DeadLetterExchange
	}
	if t.FailedQueue == "" {
		t.FailedQueue = def.FailedQueue
	}
	if t.MaxPriority <= 0 || t.MaxPriority > 255 {
		t.MaxPriority = def.MaxPriority
	}
	queues := make(map[model.Channel]string, len(model.Channels))
	for _, c := range model.Channels {
		if name := t.Queues[c]; name != "" {
			queues[c] = name
		} else {
			queues[c] = def.Queues[c]
		}
	}
	t.Queues = queues
	return t
}

// Declare idempotently asserts the exchanges, queues and bindings on ch.
//
// Each channel queue is bound to the live exchange with the channel name as routing key,
// dead-letters into the DLX under FailedRoutingKey and honours priorities up to MaxPriority.
func (t Topology) Declare(ch Channel) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", t.Exchange, err)
	}

	if err := ch.ExchangeDeclare(t.DeadLetterExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange %s: %w", t.DeadLetterExchange, err)
	}

	failedQ, err := ch.QueueDeclare(t.FailedQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", t.FailedQueue, err)
	}

	if err := ch.QueueBind(failedQ.Name, FailedRoutingKey, t.DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", failedQ.Name, t.DeadLetterExchange, err)
	}

	for _, c := range model.Channels {
		name := t.Queues[c]

		args := amqp.Table{
			"x-dead-letter-exchange":    t.DeadLetterExchange,
			"x-dead-letter-routing-key": FailedRoutingKey,
			"x-max-priority":            int32(t.MaxPriority),
		}

		q, err := ch.QueueDeclare(name, true, false, false, false, args)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		if err := ch.QueueBind(q.Name, c.String(), t.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", q.Name, t.Exchange, err)
		}
	}

	return nil
}
