// Package cooldown tracks the resend window for emailed verification codes,
// keyed by the hashed challenge token.
package cooldown

import (
	"context"
	"sync"
	"time"
)

type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]time.Time
	now     func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]time.Time), now: time.Now}
}

// Acquire starts a window of length d unless one is running. It returns
// whether the window was started and, if not, how long remains.
func (s *InMemoryStore) Acquire(_ context.Context, key string, d time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, ok := s.windows[key]; ok && now.Before(until) {
		return false, until.Sub(now), nil
	}
	s.windows[key] = now.Add(d)
	return true, 0, nil
}

// Release drops a window, used when the send itself failed.
func (s *InMemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

func (s *InMemoryStore) Remaining(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.windows[key]
	if !ok {
		return 0, nil
	}
	left := until.Sub(s.now())
	if left <= 0 {
		delete(s.windows, key)
		return 0, nil
	}
	return left, nil
}
