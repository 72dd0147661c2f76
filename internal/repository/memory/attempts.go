package memory

import (
	"context"
	"sync"
	"time"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

// AttemptStore keeps login-attempt windows in process memory. State is
// per-instance: multiple server instances each enforce their own window.
type AttemptStore struct {
	mu      sync.Mutex
	entries map[string]port.AttemptEntry
}

// NewAttemptStore builds an empty in-memory store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{entries: make(map[string]port.AttemptEntry)}
}

// Increment records one attempt under the store mutex, so concurrent
// callers each observe a distinct count.
func (s *AttemptStore) Increment(_ context.Context, clientID string, now time.Time, window time.Duration) (port.AttemptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[clientID]
	if !ok || now.Sub(entry.WindowStart) > window {
		entry = port.AttemptEntry{Count: 1, WindowStart: now}
	} else {
		entry.Count++
	}

	s.entries[clientID] = entry
	return entry, nil
}

// Get returns the entry for the client identifier, if any.
func (s *AttemptStore) Get(_ context.Context, clientID string) (port.AttemptEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[clientID]
	return entry, ok, nil
}

// Sweep evicts entries whose window started before cutoff.
func (s *AttemptStore) Sweep(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if entry.WindowStart.Before(cutoff) {
			delete(s.entries, id)
		}
	}
	return nil
}

// Len reports the number of tracked identifiers.
func (s *AttemptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ port.AttemptStore = (*AttemptStore)(nil)
