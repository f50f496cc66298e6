package store

import (
	"context"
	"sync"
)

// InMemoryStore keeps the snapshot in memory for tests and ephemeral runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	saves    int
}

// NewInMemory constructs an empty in-memory safety store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{snapshot: NewSnapshot()}
}

func (s *InMemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone(), nil
}

func (s *InMemoryStore) Save(_ context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot.Clone()
	s.saves++
	return nil
}

// SaveCount reports how many times Save was called. Tests use it to assert
// the persist-on-every-mutation contract.
func (s *InMemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
