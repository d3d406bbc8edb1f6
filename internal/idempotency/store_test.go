package idempotency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

type brokenKV struct{ calls atomic.Int32 }

var errUnreachable = errors.New("dial tcp: connection refused")

func (b *brokenKV) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	b.calls.Add(1)
	return false, errUnreachable
}

func (b *brokenKV) Get(context.Context, string) (string, error) {
	b.calls.Add(1)
	return "", errUnreachable
}

func (b *brokenKV) Set(context.Context, string, string, time.Duration) error {
	b.calls.Add(1)
	return errUnreachable
}

func (b *brokenKV) Del(context.Context, string) error {
	b.calls.Add(1)
	return errUnreachable
}

type cachedResponse struct {
	RequestID string `json:"request_id"`
	ID        string `json:"id"`
	Status    string `json:"status"`
}

func TestStore_ReserveOnce(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, time.Minute)
	ctx := context.Background()

	assert.True(t, s.Reserve(ctx, "r1", model.ChannelEmail))
	assert.False(t, s.Reserve(ctx, "r1", model.ChannelEmail))
	assert.True(t, s.Reserve(ctx, "r1", model.ChannelPush), "channel is part of the key")

	assert.Equal(t, time.Minute, kv.ttls[Key("r1", model.ChannelEmail)])
}

func TestStore_ReserveRace(t *testing.T) {
	s := NewStore(newMemKV(), time.Minute)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)

	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.Reserve(context.Background(), "race", model.ChannelPush) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestStore_CommitAndCheckCached(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, 0)
	ctx := context.Background()

	var got cachedResponse
	assert.False(t, s.CheckCached(ctx, "r1", model.ChannelEmail, &got), "miss")

	require.True(t, s.Reserve(ctx, "r1", model.ChannelEmail))
	assert.False(t, s.CheckCached(ctx, "r1", model.ChannelEmail, &got), "reservation is not a response")

	want := cachedResponse{RequestID: "r1", ID: "n1", Status: "pending"}
	s.Commit(ctx, "r1", model.ChannelEmail, want)

	require.True(t, s.CheckCached(ctx, "r1", model.ChannelEmail, &got))
	assert.Equal(t, want, got)
	assert.Equal(t, DefaultTTL, kv.ttls[Key("r1", model.ChannelEmail)])

	assert.False(t, s.Reserve(ctx, "r1", model.ChannelEmail), "committed response blocks a new reservation")
}

func TestStore_ReleaseAllowsRetry(t *testing.T) {
	s := NewStore(newMemKV(), time.Minute)
	ctx := context.Background()

	require.True(t, s.Reserve(ctx, "r1", model.ChannelEmail))
	s.Release(ctx, "r1", model.ChannelEmail)

	assert.True(t, s.Reserve(ctx, "r1", model.ChannelEmail))
}

func TestStore_CorruptCachedValueIsAMiss(t *testing.T) {
	kv := newMemKV()
	kv.data[Key("r1", model.ChannelEmail)] = "{not json"
	s := NewStore(kv, time.Minute)

	var got cachedResponse
	assert.False(t, s.CheckCached(context.Background(), "r1", model.ChannelEmail, &got))
}

func TestStore_DegradesWhenUnreachable(t *testing.T) {
	kv := &brokenKV{}
	s := NewStore(kv, time.Minute)
	ctx := context.Background()

	assert.True(t, s.Reserve(ctx, "r1", model.ChannelEmail))

	var got cachedResponse
	assert.False(t, s.CheckCached(ctx, "r1", model.ChannelEmail, &got))

	assert.NotPanics(t, func() {
		s.Commit(ctx, "r1", model.ChannelEmail, cachedResponse{ID: "n1"})
		s.Release(ctx, "r1", model.ChannelEmail)
	})
	assert.Equal(t, int32(4), kv.calls.Load())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "idempotency:r1:push", Key("r1", model.ChannelPush))
}
