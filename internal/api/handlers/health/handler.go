// Package health serves the liveness report of the gateway and its dependencies.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/notification-gateway/internal/api/respond"
	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
)

const checkTimeout = 2 * time.Second

// Dependency states reported by the handler.
const (
	StatusUp   = "up"
	StatusDown = "down"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type brokerState interface {
	State() queue.State
}

type breakerStats interface {
	Stats() []resilience.CircuitStats
}

// Report is the body of GET /health.
type Report struct {
	Status   string                    `json:"status"`
	Service  string                    `json:"service"`
	Version  string                    `json:"version"`
	Database string                    `json:"database"`
	RabbitMQ string                    `json:"rabbitmq"`
	Redis    string                    `json:"redis"`
	Breakers []resilience.CircuitStats `json:"breakers"`
}

type Handler struct {
	service  string
	version  string
	db       pinger
	redis    pinger
	broker   brokerState
	breakers breakerStats
}

func NewHandler(service, version string, db, redis pinger, broker brokerState, breakers breakerStats) *Handler {
	return &Handler{
		service:  service,
		version:  version,
		db:       db,
		redis:    redis,
		broker:   broker,
		breakers: breakers,
	}
}

// Check handles GET /health: 200 when every dependency is up, 503 otherwise.
func (h *Handler) Check(c *ginext.Context) {
	ctx := c.Request.Context()

	report := Report{
		Service:  h.service,
		Version:  h.version,
		Database: ping(ctx, h.db),
		Redis:    ping(ctx, h.redis),
		RabbitMQ: StatusDown,
		Breakers: h.breakers.Stats(),
	}
	if h.broker.State() == queue.StateConnected {
		report.RabbitMQ = StatusUp
	}

	status := http.StatusOK
	report.Status = "healthy"
	if report.Database != StatusUp || report.Redis != StatusUp || report.RabbitMQ != StatusUp {
		status = http.StatusServiceUnavailable
		report.Status = "degraded"
	}

	respond.JSON(c.Writer, status, report)
}

func ping(ctx context.Context, p pinger) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return StatusDown
	}
	return StatusUp
}
