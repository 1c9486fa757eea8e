package draft

import (
	"context"
	"sync"
)

// MemoryStore is a non-durable Store. The manager falls back to it when the
// configured store is unavailable, trading crash recovery for availability;
// it also serves tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[int][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{blobs: make(map[int][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, userID int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (s *MemoryStore) Put(_ context.Context, userID int, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[userID] = append([]byte(nil), blob...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
