package model

import (
	"time"

	"github.com/google/uuid"
)

// Channel is the delivery route of a notification. It also selects the broker queue.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// Channels lists every supported channel in routing order.
var Channels = []Channel{ChannelEmail, ChannelPush}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelPush
}

func (c Channel) String() string { return string(c) }

// Status is the lifecycle state of a notification.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Priority bounds accepted by the gateway and declared as x-max-priority on the queues.
const (
	MinPriority     = 0
	MaxPriority     = 10
	DefaultPriority = 5
)

// Notification represents a notification entity in the system.
type Notification struct {
	ID           uuid.UUID      `json:"id"`            // unique identifier, generated at creation
	RequestID    string         `json:"request_id"`    // client supplied or generated, unique
	UserID       string         `json:"user_id"`       // recipient reference
	Channel      Channel        `json:"channel"`       // email or push
	TemplateCode string         `json:"template_code"` // opaque template identifier
	Variables    map[string]any `json:"variables"`     // template substitutions, passed through
	Metadata     map[string]any `json:"metadata"`      // free-form client metadata
	Priority     int            `json:"priority"`      // 0..10, higher is delivered earlier
	Status       Status         `json:"status"`
	Error        *string        `json:"error,omitempty"` // diagnostic, set only on failed
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	SentAt       *time.Time     `json:"sent_at,omitempty"` // set once, on first sent/delivered
}
