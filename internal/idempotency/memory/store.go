package memory

import (
	"context"
	"sync"
	"time"

	"jobkaart/internal/port"
)

// Store is an in-process IdempotencyStore for single-instance deployments
// and tests. Expired keys are swept on write.
type Store struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ port.IdempotencyStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{entries: make(map[string]time.Time), now: time.Now}
}

func (s *Store) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	if _, seen := s.entries[key]; seen {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

func (s *Store) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len reports the number of live keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
