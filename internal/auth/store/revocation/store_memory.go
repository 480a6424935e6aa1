package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is the single-instance fallback when Redis is not configured.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *InMemoryStore) Revoke(_ context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = now.Add(ttl)
	return nil
}

func (s *InMemoryStore) IsRevoked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}
