package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements ObjectStore in a map. Test use only.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: "mem://",
	}
}

var _ ObjectStore = (*MemoryStore)(nil)

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := bucket + "/" + key
	if _, ok := s.objects[path]; ok {
		return "", fmt.Errorf("object %s already exists", path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[path] = cp
	return s.baseURL + path, nil
}

func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
