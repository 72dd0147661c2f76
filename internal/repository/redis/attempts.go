package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// AttemptStore persists login-attempt windows as Redis counters so
// multiple portal instances share one enforcement window. INCR is the
// single write path, so two instances racing on the same client each
// see a distinct count. Eviction is handled by key TTL; Sweep is a
// no-op.
type AttemptStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewAttemptStore constructs the store.
func NewAttemptStore(client *redis.Client, keyPrefix string) *AttemptStore {
	if keyPrefix == "" {
		keyPrefix = "aba:login-attempts"
	}
	return &AttemptStore{client: client, keyPrefix: keyPrefix}
}

// Increment atomically bumps the counter for the client identifier. The
// first attempt of a window arms the key TTL to the window length; the
// window start is derived from the remaining TTL, so every instance
// agrees on when the window closes.
func (s *AttemptStore) Increment(ctx context.Context, clientID string, now time.Time, window time.Duration) (port.AttemptEntry, error) {
	key := s.key(clientID)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return port.AttemptEntry{}, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return port.AttemptEntry{}, fmt.Errorf("redis pexpire: %w", err)
		}
		return port.AttemptEntry{Count: 1, WindowStart: now}, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return port.AttemptEntry{}, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl <= 0 {
		// The writer that created the key died before arming the TTL.
		// Re-arm so the key cannot live forever.
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return port.AttemptEntry{}, fmt.Errorf("redis pexpire: %w", err)
		}
		ttl = window
	}

	return port.AttemptEntry{
		Count:       int(count),
		WindowStart: now.Add(ttl - window),
	}, nil
}

// Sweep is a no-op: key TTL performs eviction.
func (s *AttemptStore) Sweep(context.Context, time.Time) error {
	return nil
}

func (s *AttemptStore) key(clientID string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, clientID)
}

var _ port.AttemptStore = (*AttemptStore)(nil)
