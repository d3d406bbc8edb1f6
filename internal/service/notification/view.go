package notification

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

// CreateResponse is returned by CreateNotification and cached for duplicate submissions.
type CreateResponse struct {
	RequestID string        `json:"request_id"`
	ID        uuid.UUID     `json:"id"`
	Status    model.Status  `json:"status"`
	Channel   model.Channel `json:"channel"`
	Priority  int           `json:"priority"`
}

func responseOf(n model.Notification) CreateResponse {
	return CreateResponse{
		RequestID: n.RequestID,
		ID:        n.ID,
		Status:    n.Status,
		Channel:   n.Channel,
		Priority:  n.Priority,
	}
}

// StatusView is the read-only projection of a notification.
type StatusView struct {
	ID           uuid.UUID     `json:"id"`
	RequestID    string        `json:"request_id"`
	UserID       string        `json:"user_id"`
	Channel      model.Channel `json:"channel"`
	TemplateCode string        `json:"template_code"`
	Priority     int           `json:"priority"`
	Status       model.Status  `json:"status"`
	Error        *string       `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	SentAt       *time.Time    `json:"sent_at,omitempty"`
}

func viewOf(n model.Notification) StatusView {
	return StatusView{
		ID:           n.ID,
		RequestID:    n.RequestID,
		UserID:       n.UserID,
		Channel:      n.Channel,
		TemplateCode: n.TemplateCode,
		Priority:     n.Priority,
		Status:       n.Status,
		Error:        n.Error,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		SentAt:       n.SentAt,
	}
}

// Page bounds for ListNotifications.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = math.MaxInt / MaxLimit // keeps the row offset from overflowing
)

// ListQuery selects a page of notifications. Empty filters match everything.
type ListQuery struct {
	Page    int
	Limit   int
	Status  model.Status
	Channel model.Channel
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPagination computes page metadata from the total count.
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Pagination{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Page is one page of status views.
type Page struct {
	Items      []StatusView
	Pagination Pagination
}
