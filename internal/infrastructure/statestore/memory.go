package statestore

import (
	"context"
	"sync"
	"time"

	"theme-images-manager/internal/domain"
)

type entry struct {
	state     domain.InstallState
	expiresAt time.Time
}

// MemoryStateStore is a process-local StateStore
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStateStore) Save(_ context.Context, state *domain.InstallState, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[state.State] = entry{state: *state, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (*domain.InstallState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[state]
	if !ok {
		return nil, nil
	}
	delete(s.entries, state)
	if s.now().After(e.expiresAt) {
		return nil, nil
	}
	return &e.state, nil
}
