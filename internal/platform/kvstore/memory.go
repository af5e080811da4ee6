package kvstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation used in tests and as a
// fallback when no database file is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.collections[collection]
	if !ok {
		return nil, ErrKeyNotFound
	}
	value, ok := bucket[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.collections[collection]
	if !ok {
		bucket = make(map[string][]byte)
		s.collections[collection] = bucket
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	bucket[key] = stored
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.collections[collection]; ok {
		delete(bucket, key)
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, collection string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte)
	for key, value := range s.collections[collection] {
		copied := make([]byte, len(value))
		copy(copied, value)
		out[key] = copied
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
