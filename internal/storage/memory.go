package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process memory. Used in development when no
// object storage is configured, and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[bucket+"/"+key] = cp
	m.types[bucket+"/"+key] = contentType
	return "memory://" + bucket + "/" + key, nil
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	delete(m.types, bucket+"/"+key)
	return nil
}

// ContentType reports the content type recorded for an object.
func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[bucket+"/"+key]
}

var _ ObjectStore = (*MemoryStore)(nil)
