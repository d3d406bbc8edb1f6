// Package idempotency deduplicates concurrent and repeated submissions of the same
// (request_id, channel) pair.
//
// An entry is either a reservation marker, written while the first caller processes the
// request, or the JSON response that caller committed. Store failures never reach the
// caller: Reserve degrades to "allow" and the other operations are logged and ignored.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/notification-gateway/internal/model"
)

// ErrMiss is returned by a KV when the key does not exist.
var ErrMiss = errors.New("idempotency: key not found")

// DefaultTTL is how long reservations and committed responses are kept.
const DefaultTTL = time.Hour

const reservationMarker = "processing"

// KV is the key/value store behind Store. SetNX must be a single atomic conditional write.
type KV interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Store implements reserve/check/commit/release over a KV.
type Store struct {
	kv  KV
	ttl time.Duration
}

// NewStore creates a Store. A non-positive ttl falls back to DefaultTTL.
func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl}
}

// Key returns the store key of a (request_id, channel) pair.
func Key(requestID string, channel model.Channel) string {
	return "idempotency:" + requestID + ":" + string(channel)
}

// Reserve atomically writes a reservation marker if the key is absent.
//
// It returns true when the caller won the reservation and false when a reservation or a
// committed response already exists. If the store is unreachable it returns true.
func (s *Store) Reserve(ctx context.Context, requestID string, channel model.Channel) bool {
	key := Key(requestID, channel)

	ok, err := s.kv.SetNX(ctx, key, reservationMarker, s.ttl)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("key", key).Msg("idempotency store unavailable, allowing request")
		return true
	}

	return ok
}

// CheckCached decodes a committed response into dst. It reports false on a miss,
// while the key only holds a reservation, or when the store cannot be read.
func (s *Store) CheckCached(ctx context.Context, requestID string, channel model.Channel, dst any) bool {
	key := Key(requestID, channel)

	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to read idempotency cache")
		}
		return false
	}

	if raw == reservationMarker {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to decode cached response")
		return false
	}

	return true
}

// Commit overwrites the reservation with response and refreshes the TTL.
func (s *Store) Commit(ctx context.Context, requestID string, channel model.Channel, response any) {
	key := Key(requestID, channel)

	body, err := json.Marshal(response)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to encode response for idempotency cache")
		return
	}

	if err := s.kv.Set(ctx, key, string(body), s.ttl); err != nil {
		zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to commit idempotency response")
	}
}

// Release deletes the entry so that a retry of the same request is not blocked.
func (s *Store) Release(ctx context.Context, requestID string, channel model.Channel) {
	key := Key(requestID, channel)

	if err := s.kv.Del(ctx, key); err != nil {
		zlog.Logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency reservation")
	}
}
