package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openerFunc func(ctx context.Context) (Channel, error)

func (f openerFunc) OpenChannel(ctx context.Context) (Channel, error) { return f(ctx) }

func deadDelivery(t *testing.T, ack amqp.Acknowledger, tag uint64, msg NotificationMessage) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  tag,
		MessageId:    msg.NotificationID,
		Body:         body,
		Headers: amqp.Table{
			"x-death": []interface{}{
				amqp.Table{"reason": "rejected", "queue": EmailQueueName, "count": int64(1)},
			},
		},
	}
}

func TestNewDeadLetter(t *testing.T) {
	msg := testMessage(3)

	dl, err := NewDeadLetter(deadDelivery(t, nil, 1, msg))
	require.NoError(t, err)

	assert.Equal(t, "rejected", dl.Reason)
	assert.Equal(t, EmailQueueName, dl.Queue)
	assert.Equal(t, msg.NotificationID, dl.Message.NotificationID)
	assert.NoError(t, dl.Ack(), "ack without an acknowledger is a no-op")
}

func TestNewDeadLetter_NoDeathHeader(t *testing.T) {
	dl, err := NewDeadLetter(amqp.Delivery{MessageId: "abc", Body: []byte(`{"channel":"push"}`)})
	require.NoError(t, err)

	assert.Equal(t, "unknown", dl.Reason)
	assert.Equal(t, "abc", dl.Message.NotificationID)
}

func TestDeadLetterConsumer_Consume(t *testing.T) {
	ch := newFakeChannel()
	ack := &fakeAck{}

	opened := 0
	opener := openerFunc(func(ctx context.Context) (Channel, error) {
		opened++
		if opened == 1 {
			return ch, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})

	msg := testMessage(5)
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("{broken")}
	ch.deliveries <- deadDelivery(t, ack, 2, msg)

	c := NewDeadLetterConsumer(opener, "", 4)
	out := make(chan DeadLetter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Consume(ctx, out) }()

	var dl DeadLetter
	select {
	case dl = <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("no dead letter delivered")
	}

	assert.Equal(t, msg.NotificationID, dl.Message.NotificationID)
	assert.Equal(t, "rejected", dl.Reason)
	require.NoError(t, dl.Ack())
	assert.Equal(t, []uint64{1, 2}, ack.ackedTags(), "undecodable message is acked and dropped")

	assert.Equal(t, FailedQueueName, ch.consumed)
	assert.Equal(t, 4, ch.prefetch)

	close(ch.deliveries)
	require.Eventually(t, ch.isClosed, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
