package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/api/dto"
	"github.com/aliskhannn/notification-gateway/internal/api/respond"
	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/model"
	"github.com/aliskhannn/notification-gateway/internal/service/notification"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	CreateNotification(ctx context.Context, req notification.CreateRequest) (notification.CreateResponse, error)
	GetStatus(ctx context.Context, ref string) (notification.StatusView, error)
	ListNotifications(ctx context.Context, q notification.ListQuery) (notification.Page, error)
	UpdateStatus(ctx context.Context, channel model.Channel, id uuid.UUID, status model.Status, errMsg string) (notification.StatusView, error)
}

type Handler struct {
	service   notificationService
	validator *validator.Validate
}

func NewHandler(s notificationService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Create handles POST /notifications.
func (h *Handler) Create(c *ginext.Context) {
	var req dto.CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("invalid request body"))
		return
	}

	resp, err := h.service.CreateNotification(c.Request.Context(), notification.CreateRequest{
		RequestID:    req.RequestID,
		UserID:       req.UserID,
		Channel:      model.Channel(req.Channel),
		TemplateCode: req.TemplateCode,
		Variables:    req.Variables,
		Priority:     req.Priority,
		Metadata:     req.Metadata,
	})
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("failed to create notification")
		respond.Error(c.Writer, err)
		return
	}

	respond.Accepted(c.Writer, "notification accepted", resp)
}

// GetStatus handles GET /notifications/:id, where id is a request_id or a notification id.
func (h *Handler) GetStatus(c *ginext.Context) {
	ref := c.Param("id")
	if ref == "" {
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("missing id"))
		return
	}

	view, err := h.service.GetStatus(c.Request.Context(), ref)
	if err != nil {
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, "notification retrieved", view)
}

// List handles GET /notifications?page&limit&status&type.
func (h *Handler) List(c *ginext.Context) {
	page, err := intQuery(c, "page")
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, err)
		return
	}

	limit, err := intQuery(c, "limit")
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, err)
		return
	}

	result, err := h.service.ListNotifications(c.Request.Context(), notification.ListQuery{
		Page:    page,
		Limit:   limit,
		Status:  model.Status(c.Query("status")),
		Channel: model.Channel(c.Query("type")),
	})
	if err != nil {
		respond.Error(c.Writer, err)
		return
	}

	respond.Page(c.Writer, "notifications retrieved", result.Items, result.Pagination)
}

// UpdateStatus handles POST /:channel/status, the outcome report of a channel worker.
func (h *Handler) UpdateStatus(c *ginext.Context) {
	channel := model.Channel(c.Param("channel"))
	if !channel.Valid() {
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("unknown channel %q", channel))
		return
	}

	var req dto.StatusRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	id, err := uuid.Parse(req.NotificationID)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, apperr.KindValidation, fmt.Errorf("invalid notification_id"))
		return
	}

	view, err := h.service.UpdateStatus(c.Request.Context(), channel, id, model.Status(req.Status), req.Error)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("notification_id", req.NotificationID).Str("status", req.Status).Msg("status report rejected")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, "status updated", view)
}

func intQuery(c *ginext.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
