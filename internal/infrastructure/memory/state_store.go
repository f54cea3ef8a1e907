package memory

import (
	"context"
	"sync"

	"storefront/internal/domain/repositories"
)

// StateStore keeps client state in process memory. It does not survive a
// restart and is meant for tests and throwaway sessions.
type StateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewStateStore() *StateStore {
	return &StateStore{
		values: make(map[string][]byte),
	}
}

func (s *StateStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return nil, repositories.ErrStateNotFound
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (s *StateStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	s.values[key] = valueCopy
	return nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
