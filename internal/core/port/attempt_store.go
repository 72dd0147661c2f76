package port

import (
	"context"
	"time"
)

// AttemptEntry is the fixed-window accounting record for one client
// identifier. Count is only meaningful relative to WindowStart; an entry
// whose window has elapsed is equivalent to absent.
type AttemptEntry struct {
	Count       int
	WindowStart time.Time
}

// AttemptStore persists login-attempt windows. Backends: process-local map
// for single-instance deployments, redis for shared enforcement.
type AttemptStore interface {
	// Increment atomically records one attempt and returns the entry as
	// it stands after the update. An absent entry, or one whose window
	// has elapsed, restarts the window at {Count: 1, WindowStart: now}.
	// Atomicity is the backend's responsibility: concurrent attempts for
	// one client must never observe the same count.
	Increment(ctx context.Context, clientID string, now time.Time, window time.Duration) (AttemptEntry, error)
	// Sweep evicts entries whose window started before cutoff. Backends
	// with native expiry may treat it as a no-op.
	Sweep(ctx context.Context, cutoff time.Time) error
}
