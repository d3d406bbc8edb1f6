package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/model"
	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
	"github.com/aliskhannn/notification-gateway/internal/repository/notification"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

type notificationRepository interface {
	Create(ctx context.Context, n model.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error)
	GetByRequestID(ctx context.Context, requestID string) (model.Notification, error)
	List(ctx context.Context, f notification.Filter, limit, offset int) ([]model.Notification, error)
	Count(ctx context.Context, f notification.Filter) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, errMsg *string, at time.Time) (model.Notification, error)
}

type idempotencyStore interface {
	Reserve(ctx context.Context, requestID string, channel model.Channel) bool
	CheckCached(ctx context.Context, requestID string, channel model.Channel, dst any) bool
	Commit(ctx context.Context, requestID string, channel model.Channel, response any)
	Release(ctx context.Context, requestID string, channel model.Channel)
}

type notificationPublisher interface {
	Publish(ctx context.Context, msg queue.NotificationMessage) (bool, error)
}

type recipientResolver interface {
	Resolve(ctx context.Context, req CreateRequest) error
}

// maxStatusRounds bounds the re-read loop of UpdateStatus when a concurrent writer wins.
const maxStatusRounds = 3

// Defaults for waiting on a duplicate request that is still in flight.
const (
	DefaultInflightWait = 2 * time.Second
	inflightPoll        = 20 * time.Millisecond
)

var errPublishRejected = errors.New("broker did not accept the message")

// Service is the notification orchestrator.
//
// It is the only writer of notification records: Create persists them and UpdateStatus
// moves them through the status state machine.
type Service struct {
	repo      notificationRepository
	idem      idempotencyStore
	publisher notificationPublisher
	resolver  recipientResolver
	breakers  *resilience.Breakers
	backoff   resilience.Backoff // publish retries

	inflightWait time.Duration
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithInflightWait sets how long a duplicate submission waits for the first one to commit.
func WithInflightWait(d time.Duration) Option {
	return func(s *Service) { s.inflightWait = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. resolver may be nil to skip recipient and template lookups.
func NewService(
	repo notificationRepository,
	idem idempotencyStore,
	publisher notificationPublisher,
	resolver recipientResolver,
	breakers *resilience.Breakers,
	publishBackoff resilience.Backoff,
	opts ...Option,
) *Service {
	s := &Service{
		repo:         repo,
		idem:         idem,
		publisher:    publisher,
		resolver:     resolver,
		breakers:     breakers,
		backoff:      publishBackoff,
		inflightWait: DefaultInflightWait,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNotification accepts a notification request at most once per (request_id, channel).
//
// A request whose request_id is already stored returns the stored notification, unless that
// notification failed, in which case it is published again. A request that is in flight
// elsewhere is awaited for a bounded time and then rejected as a conflict. If the in-flight
// caller gives up without a result, the waiter takes the request over.
func (s *Service) CreateNotification(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	req, err := ValidateCreate(req)
	if err != nil {
		return CreateResponse{}, err
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	existing, found, err := s.lookup(ctx, req.RequestID)
	if err != nil {
		return CreateResponse{}, err
	}
	if found && existing.Status != model.StatusFailed {
		return responseOf(existing), nil
	}

	var cached CreateResponse
	if s.idem.CheckCached(ctx, req.RequestID, req.Channel, &cached) {
		return cached, nil
	}

	if !s.idem.Reserve(ctx, req.RequestID, req.Channel) {
		resp, reserved, err := s.awaitCommitted(ctx, req)
		if !reserved {
			return resp, err
		}

		// the previous owner released the key, so read back whatever it left
		existing, found, err = s.lookup(ctx, req.RequestID)
		if err != nil {
			s.idem.Release(context.WithoutCancel(ctx), req.RequestID, req.Channel)
			return CreateResponse{}, err
		}
		if found && existing.Status != model.StatusFailed {
			s.idem.Commit(context.WithoutCancel(ctx), req.RequestID, req.Channel, responseOf(existing))
			return responseOf(existing), nil
		}
	}

	var resp CreateResponse
	if found {
		resp, err = s.resubmit(ctx, existing)
	} else {
		resp, err = s.dispatch(ctx, req)
	}
	if err != nil {
		s.idem.Release(context.WithoutCancel(ctx), req.RequestID, req.Channel)
		return CreateResponse{}, err
	}

	s.idem.Commit(context.WithoutCancel(ctx), req.RequestID, req.Channel, resp)

	return resp, nil
}

func (s *Service) lookup(ctx context.Context, requestID string) (model.Notification, bool, error) {
	n, err := s.repo.GetByRequestID(ctx, requestID)
	switch {
	case err == nil:
		return n, true, nil
	case errors.Is(err, notification.ErrNotificationNotFound):
		return model.Notification{}, false, nil
	default:
		return model.Notification{}, false, fmt.Errorf("lookup request %s: %w", requestID, err)
	}
}

// dispatch resolves, persists and publishes a reserved request.
func (s *Service) dispatch(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	if s.resolver != nil {
		if err := s.resolver.Resolve(ctx, req); err != nil {
			return CreateResponse{}, err
		}
	}

	now := s.now().UTC()
	n := model.Notification{
		ID:           uuid.New(),
		RequestID:    req.RequestID,
		UserID:       req.UserID,
		Channel:      req.Channel,
		TemplateCode: req.TemplateCode,
		Variables:    req.Variables,
		Metadata:     req.Metadata,
		Priority:     *req.Priority,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		if errors.Is(err, notification.ErrDuplicateRequest) {
			// a concurrent submission got past a degraded idempotency store
			existing, getErr := s.repo.GetByRequestID(ctx, req.RequestID)
			if getErr == nil {
				return responseOf(existing), nil
			}
		}
		return CreateResponse{}, fmt.Errorf("create notification: %w", err)
	}

	return s.publish(ctx, n)
}

// resubmit moves a failed notification back to pending and publishes it again.
// This is the one transition out of failed, and it bypasses model.CanTransition.
func (s *Service) resubmit(ctx context.Context, n model.Notification) (CreateResponse, error) {
	revived, err := s.repo.UpdateStatus(ctx, n.ID, model.StatusFailed, model.StatusPending, nil, s.now().UTC())
	if err != nil {
		if errors.Is(err, notification.ErrStatusChanged) {
			return CreateResponse{}, apperr.Conflict("request %s is already being processed", n.RequestID)
		}
		return CreateResponse{}, fmt.Errorf("resubmit notification: %w", err)
	}

	zlog.Logger.Info().Str("notification_id", n.ID.String()).Msg("resubmitting failed notification")

	return s.publish(ctx, revived)
}

// publish sends n through the broker circuit. On failure n is marked failed.
//
// The publish outlives the caller: n is already stored, and a caller that disconnects
// must neither leave it unpublished nor count against the broker circuit. Each attempt is
// still bounded by the publish backoff and the publisher timeout.
func (s *Service) publish(ctx context.Context, n model.Notification) (CreateResponse, error) {
	_, err := resilience.Call(context.WithoutCancel(ctx), s.breakers, BreakerBroker, s.backoff, func(ctx context.Context) (struct{}, error) {
		ok, err := s.publisher.Publish(ctx, queue.NewNotificationMessage(n))
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, errPublishRejected
		}
		return struct{}{}, nil
	})
	if err != nil {
		s.markFailed(ctx, n, err)
		return CreateResponse{}, apperr.Publish(err)
	}

	zlog.Logger.Info().
		Str("notification_id", n.ID.String()).
		Str("request_id", n.RequestID).
		Str("channel", n.Channel.String()).
		Int("priority", n.Priority).
		Msg("notification queued")

	return responseOf(n), nil
}

func (s *Service) markFailed(ctx context.Context, n model.Notification, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	reason := cause.Error()
	if _, err := s.repo.UpdateStatus(ctx, n.ID, model.StatusPending, model.StatusFailed, &reason, s.now().UTC()); err != nil {
		zlog.Logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to mark notification as failed")
		return
	}

	zlog.Logger.Warn().Err(cause).Str("notification_id", n.ID.String()).Msg("publish failed, notification marked as failed")
}

// awaitCommitted polls the idempotency cache while another caller processes the same key.
// It reports reserved when the other caller released the key and this caller now holds it.
func (s *Service) awaitCommitted(ctx context.Context, req CreateRequest) (CreateResponse, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.inflightWait)
	defer cancel()

	ticker := time.NewTicker(inflightPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return CreateResponse{}, false, apperr.Conflict("request %s is already being processed", req.RequestID)
		case <-ticker.C:
			var cached CreateResponse
			if s.idem.CheckCached(ctx, req.RequestID, req.Channel, &cached) {
				return cached, false, nil
			}
			if s.idem.Reserve(ctx, req.RequestID, req.Channel) {
				return CreateResponse{}, true, nil
			}
		}
	}
}

// GetStatus returns the notification identified by ref, tried first as a request_id and then as an id.
func (s *Service) GetStatus(ctx context.Context, ref string) (StatusView, error) {
	n, err := s.repo.GetByRequestID(ctx, ref)
	if err == nil {
		return viewOf(n), nil
	}
	if !errors.Is(err, notification.ErrNotificationNotFound) {
		return StatusView{}, fmt.Errorf("get notification: %w", err)
	}

	id, parseErr := uuid.Parse(ref)
	if parseErr != nil {
		return StatusView{}, apperr.NotFound("notification %s not found", ref)
	}

	n, err = s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return StatusView{}, apperr.NotFound("notification %s not found", ref)
		}
		return StatusView{}, fmt.Errorf("get notification: %w", err)
	}

	return viewOf(n), nil
}

// ListNotifications returns one page of notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, q ListQuery) (Page, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > MaxPage {
		return Page{}, apperr.Validation("page must be at most %d", MaxPage)
	}
	if q.Status != "" && !q.Status.Valid() {
		return Page{}, apperr.Validation("unknown status %q", q.Status)
	}
	if q.Channel != "" && !q.Channel.Valid() {
		return Page{}, apperr.Validation("unknown type %q", q.Channel)
	}

	filter := notification.Filter{Status: q.Status, Channel: q.Channel}

	var (
		total int
		items []model.Notification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, filter, q.Limit, (q.Page-1)*q.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, fmt.Errorf("list notifications: %w", err)
	}

	views := make([]StatusView, 0, len(items))
	for _, n := range items {
		views = append(views, viewOf(n))
	}

	return Page{Items: views, Pagination: NewPagination(total, q.Page, q.Limit)}, nil
}

// UpdateStatus records a worker's outcome report for a notification on channel.
//
// The stored channel must match. Transitions follow model.CanTransition; reporting the current
// status again only refreshes updated_at. errMsg is kept only for failed; an empty errMsg on a
// failed report keeps the previous error.
func (s *Service) UpdateStatus(
	ctx context.Context, channel model.Channel, id uuid.UUID, status model.Status, errMsg string,
) (StatusView, error) {
	if !channel.Valid() {
		return StatusView{}, apperr.Validation("unknown channel %q", channel)
	}
	if !status.Valid() {
		return StatusView{}, apperr.Validation("unknown status %q", status)
	}

	for round := 0; round < maxStatusRounds; round++ {
		n, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, notification.ErrNotificationNotFound) {
				return StatusView{}, apperr.NotFound("notification %s not found", id)
			}
			return StatusView{}, fmt.Errorf("get notification: %w", err)
		}

		if n.Channel != channel {
			return StatusView{}, apperr.Conflict("notification %s belongs to channel %s, not %s", id, n.Channel, channel)
		}

		if !model.CanTransition(n.Status, status) {
			return StatusView{}, apperr.Conflict("cannot move notification %s from %s to %s", id, n.Status, status)
		}

		var reason *string
		if status == model.StatusFailed {
			reason = n.Error
			if errMsg != "" {
				reason = &errMsg
			}
		}

		updated, err := s.repo.UpdateStatus(ctx, id, n.Status, status, reason, s.now().UTC())
		if errors.Is(err, notification.ErrStatusChanged) {
			continue
		}
		if err != nil {
			return StatusView{}, fmt.Errorf("update notification status: %w", err)
		}

		zlog.Logger.Info().
			Str("notification_id", id.String()).
			Str("from", n.Status.String()).
			Str("to", status.String()).
			Msg("notification status updated")

		return viewOf(updated), nil
	}

	return StatusView{}, apperr.Conflict("notification %s is being updated concurrently", id)
}
