// Package artifact abstracts the external store that holds rendered
// ticket images.  Uploads are content-addressed by a deterministic key
// per reservation, so re-uploading overwrites rather than duplicates.
package artifact

import (
    "context"
    "sync"
)

// Store uploads an image under a key and returns its public URL.
type Store interface {
    Upload(ctx context.Context, key string, data []byte) (string, error)
}

// MemoryStore keeps uploaded objects in process memory.  It backs tests
// and single-node deployments that have no blob store configured.
type MemoryStore struct {
    mu      sync.Mutex
    objects map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores data under key, overwriting any previous object.
func (s *MemoryStore) Upload(_ context.Context, key string, data []byte) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    buf := make([]byte, len(data))
    copy(buf, data)
    s.objects[key] = buf
    return "memory://" + key, nil
}

// Get returns the stored object and whether it exists.  Used by tests.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    data, ok := s.objects[key]
    return data, ok
}

// Len reports how many distinct keys hold objects.
func (s *MemoryStore) Len() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.objects)
}
