package usecase

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// RateLimitResult is the outcome of one login-attempt check.
type RateLimitResult struct {
	Allowed           bool
	RemainingAttempts int
	RetryAfterSeconds int
}

// LoginRateLimiter enforces a fixed window of login attempts per client
// identifier. Bursts straddling a window boundary are an accepted
// imprecision of the fixed-window accounting, and enforcement is
// per-store: the in-memory backend does not coordinate across instances.
type LoginRateLimiter struct {
	store       port.AttemptStore
	maxAttempts int
	window      time.Duration
	now         port.Clock
	logger      *zap.Logger
}

// NewLoginRateLimiter builds the limiter over the given attempt store.
func NewLoginRateLimiter(store port.AttemptStore, maxAttempts int, window time.Duration, clock port.Clock, logger *zap.Logger) *LoginRateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if clock == nil {
		clock = port.SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LoginRateLimiter{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
		now:         clock,
		logger:      logger,
	}
}

// Check records one attempt for the client identifier and reports whether
// it may proceed. The attempt is recorded through a single atomic store
// increment, so simultaneous attempts for one client each consume a
// distinct slot and the ceiling holds under concurrency. Store failures
// fail open: a broken attempt store must not lock every student out.
func (l *LoginRateLimiter) Check(ctx context.Context, clientID string) RateLimitResult {
	now := l.now()

	entry, err := l.store.Increment(ctx, clientID, now, l.window)
	if err != nil {
		l.logger.Warn("rate limit store update failed", zap.String("client_id", clientID), zap.Error(err))
		return RateLimitResult{Allowed: true, RemainingAttempts: l.maxAttempts - 1}
	}

	if entry.Count > l.maxAttempts {
		retryAfter := entry.WindowStart.Add(l.window).Sub(now)
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 0 {
			seconds = 0
		}
		return RateLimitResult{Allowed: false, RetryAfterSeconds: seconds}
	}

	return RateLimitResult{Allowed: true, RemainingAttempts: l.maxAttempts - entry.Count}
}

// MaxAttempts exposes the configured ceiling for response headers.
func (l *LoginRateLimiter) MaxAttempts() int {
	return l.maxAttempts
}

// StartSweeper evicts elapsed windows on a fixed interval, independent of
// the window length, until ctx is cancelled.
func (l *LoginRateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := l.now().Add(-l.window)
				if err := l.store.Sweep(ctx, cutoff); err != nil {
					l.logger.Warn("rate limit sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
