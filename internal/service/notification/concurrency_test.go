package notification_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/notification-gateway/internal/apperr"
	"github.com/aliskhannn/notification-gateway/internal/idempotency"
	"github.com/aliskhannn/notification-gateway/internal/model"
	"github.com/aliskhannn/notification-gateway/internal/rabbitmq/queue"
	repo "github.com/aliskhannn/notification-gateway/internal/repository/notification"
	"github.com/aliskhannn/notification-gateway/internal/resilience"
	"github.com/aliskhannn/notification-gateway/internal/service/notification"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return "", idempotency.ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

type memRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]model.Notification
	byReq map[string]uuid.UUID
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[uuid.UUID]model.Notification{}, byReq: map[string]uuid.UUID{}}
}

func (r *memRepo) Create(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byReq[n.RequestID]; ok {
		return repo.ErrDuplicateRequest
	}
	r.byID[n.ID] = n
	r.byReq[n.RequestID] = n.ID
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok {
		return model.Notification{}, repo.ErrNotificationNotFound
	}
	return n, nil
}

func (r *memRepo) GetByRequestID(ctx context.Context, requestID string) (model.Notification, error) {
	r.mu.Lock()
	id, ok := r.byReq[requestID]
	r.mu.Unlock()

	if !ok {
		return model.Notification{}, repo.ErrNotificationNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memRepo) List(context.Context, repo.Filter, int, int) ([]model.Notification, error) {
	return nil, nil
}

func (r *memRepo) Count(context.Context, repo.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *memRepo) UpdateStatus(
	_ context.Context, id uuid.UUID, from, to model.Status, errMsg *string, at time.Time,
) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok || n.Status != from {
		return model.Notification{}, repo.ErrStatusChanged
	}
	n.Status = to
	n.Error = errMsg
	n.UpdatedAt = at
	if to.MarksSent() && n.SentAt == nil {
		sentAt := at
		n.SentAt = &sentAt
	}
	r.byID[id] = n
	return n, nil
}

type countingPublisher struct {
	calls atomic.Int32
	delay time.Duration

	mu  sync.Mutex
	err error
}

func (p *countingPublisher) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *countingPublisher) Publish(ctx context.Context, _ queue.NotificationMessage) (bool, error) {
	p.calls.Add(1)

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return false, p.err
	}
	return true, nil
}

func newInMemoryService(pub *countingPublisher, opts ...notification.Option) (*notification.Service, *memRepo, *idempotency.Store) {
	r := newMemRepo()
	store := idempotency.NewStore(&memKV{data: map[string]string{}}, time.Minute)
	breakers := resilience.NewBreakers(resilience.DefaultBreakerSettings())

	opts = append([]notification.Option{notification.WithInflightWait(2 * time.Second)}, opts...)
	svc := notification.NewService(r, store, pub, nil, breakers, quickBackoff(), opts...)
	return svc, r, store
}

func TestService_ConcurrentDuplicatesPublishOnce(t *testing.T) {
	pub := &countingPublisher{delay: 30 * time.Millisecond}
	svc, r, _ := newInMemoryService(pub)

	const callers = 10

	var (
		wg    sync.WaitGroup
		resps = make([]notification.CreateResponse, callers)
		errs  = make([]error, callers)
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resps[i], errs[i] = svc.CreateNotification(context.Background(), validRequest())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, resps[0], resps[i])
	}

	assert.Equal(t, int32(1), pub.calls.Load())

	count, err := r.Count(context.Background(), repo.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_BackpressureFailsAndAllowsResubmission(t *testing.T) {
	pub := &countingPublisher{}
	pub.fail(queue.ErrBackpressure)

	svc, r, store := newInMemoryService(pub)
	ctx := context.Background()

	_, err := svc.CreateNotification(ctx, validRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPublish, apperr.KindOf(err))

	stored, err := r.GetByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, stored.Status)
	require.NotNil(t, stored.Error)
	assert.Contains(t, *stored.Error, "blocked")

	// the key was released
	require.True(t, store.Reserve(ctx, "r1", model.ChannelEmail))
	store.Release(ctx, "r1", model.ChannelEmail)

	pub.fail(nil)

	resp, err := svc.CreateNotification(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, stored.ID, resp.ID)
	assert.Equal(t, model.StatusPending, resp.Status)

	stored, err = r.GetByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.Error)
}

func TestService_WaiterTakesOverReleasedRequest(t *testing.T) {
	pub := &countingPublisher{}
	svc, r, store := newInMemoryService(pub)
	ctx := context.Background()

	require.True(t, store.Reserve(ctx, "r1", model.ChannelEmail))

	type result struct {
		resp notification.CreateResponse
		err  error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		resp, err := svc.CreateNotification(ctx, validRequest())
		done <- result{resp, err}
	}()

	time.Sleep(60 * time.Millisecond)
	store.Release(ctx, "r1", model.ChannelEmail)

	res := <-done
	require.NoError(t, res.err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), pub.calls.Load())

	stored, err := r.GetByRequestID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, res.resp.ID)

	var cached notification.CreateResponse
	require.True(t, store.CheckCached(ctx, "r1", model.ChannelEmail, &cached))
	assert.Equal(t, res.resp, cached)
}

func TestService_DeliveredTwiceStampsSentAtOnce(t *testing.T) {
	var (
		mu  sync.Mutex
		now = fixedNow
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func() {
		mu.Lock()
		now = now.Add(time.Minute)
		mu.Unlock()
	}

	svc, _, _ := newInMemoryService(&countingPublisher{}, notification.WithClock(clock))
	ctx := context.Background()

	created, err := svc.CreateNotification(ctx, validRequest())
	require.NoError(t, err)

	advance()
	sent, err := svc.UpdateStatus(ctx, model.ChannelEmail, created.ID, model.StatusSent, "")
	require.NoError(t, err)
	require.NotNil(t, sent.SentAt)
	firstStamp := *sent.SentAt
	assert.Equal(t, fixedNow.Add(time.Minute), firstStamp)

	advance()
	delivered, err := svc.UpdateStatus(ctx, model.ChannelEmail, created.ID, model.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, delivered.Status)
	require.NotNil(t, delivered.SentAt)
	assert.Equal(t, firstStamp, *delivered.SentAt)

	advance()
	again, err := svc.UpdateStatus(ctx, model.ChannelEmail, created.ID, model.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, again.Status)
	require.NotNil(t, again.SentAt)
	assert.Equal(t, firstStamp, *again.SentAt)
	assert.Equal(t, fixedNow.Add(3*time.Minute), again.UpdatedAt)
}
