package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
)

//go:generate mockgen -source=worker.go -destination=../mocks/worker/mock.go -package=mocks
type deadLetterConsumer interface {
	Consume(ctx context.Context, out chan<- queue.DeadLetter) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, dl queue.DeadLetter)
}

// Worker drains the failed queue with a fixed pool of goroutines.
type Worker struct {
	consumer deadLetterConsumer
	handler  messageHandler
}

func NewWorker(c deadLetterConsumer, h messageHandler) *Worker {
	return &Worker{
		consumer: c,
		handler:  h,
	}
}

// Run consumes dead letters until ctx is cancelled or the consumer stops,
// then waits for in-flight messages to be handled.
func (w *Worker) Run(ctx context.Context, workerCount int) {
	if workerCount < 1 {
		workerCount = 1
	}

	msgChan := make(chan queue.DeadLetter)

	go func() {
		defer close(msgChan)

		if err := w.consumer.Consume(ctx, msgChan); err != nil && ctx.Err() == nil {
			zlog.Logger.Error().Err(err).Msg("dead letter consumer stopped")
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			zlog.Logger.Printf("worker-%d started", id)

			for dl := range msgChan {
				w.handler.HandleMessage(ctx, dl)
			}

			zlog.Logger.Printf("worker-%d shutting down", id)
		}(i)
	}

	wg.Wait()
	zlog.Logger.Print("dead letter worker stopped")
}
