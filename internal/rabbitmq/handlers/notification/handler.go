package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/model"
	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
	"github.com/aliskhannn/notification-gateway/internal/service/notification"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/notification/mock.go -package=mocks
type notificationService interface {
	UpdateStatus(ctx context.Context, channel model.Channel, id uuid.UUID, status model.Status, errMsg string) (notification.StatusView, error)
}

// Handler records dead-lettered notifications as failed.
type Handler struct {
	service  notificationService
	strategy retry.Strategy
}

func NewHandler(svc notificationService, strategy retry.Strategy) *Handler {
	return &Handler{
		service:  svc,
		strategy: strategy,
	}
}

// HandleMessage marks the notification of dl as failed and acks dl.
// If the status cannot be written, dl is requeued for a later attempt.
func (h *Handler) HandleMessage(ctx context.Context, dl queue.DeadLetter) {
	msg := dl.Message

	id, err := uuid.Parse(msg.NotificationID)
	if err != nil {
		zlog.Logger.Warn().Str("notification_id", msg.NotificationID).Msg("dead letter without a valid notification id, dropping")
		h.ack(dl)
		return
	}

	reason := "dead-lettered: " + dl.Reason

	var final error
	err = retry.DoContext(ctx, h.strategy, func() error {
		_, err := h.service.UpdateStatus(ctx, msg.Channel, id, model.StatusFailed, reason)
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindConflict, apperr.KindValidation:
			final = err
			return nil
		}
		return err
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", id.String()).Msg("failed to record dead letter, requeueing")
		if rqErr := dl.Requeue(); rqErr != nil {
			zlog.Logger.Error().Err(rqErr).Str("notification_id", id.String()).Msg("failed to requeue dead letter")
		}
		return
	}

	if final != nil {
		zlog.Logger.Warn().Err(final).Str("notification_id", id.String()).Msg("dead letter not applied")
	} else {
		zlog.Logger.Info().
			Str("notification_id", id.String()).
			Str("channel", msg.Channel.String()).
			Str("reason", dl.Reason).
			Str("queue", dl.Queue).
			Msg("dead-lettered notification marked as failed")
	}

	h.ack(dl)
}

func (h *Handler) ack(dl queue.DeadLetter) {
	if err := dl.Ack(); err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", dl.Message.NotificationID).Msg("failed to ack dead letter")
	}
}
