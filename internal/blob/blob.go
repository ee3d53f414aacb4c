// Package blob is the photo storage collaborator. The core never inspects
// blob contents; it stores bytes and gets back a stable URL.
package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store accepts an opaque blob and returns a stable URL for it.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// MemoryStore keeps blobs in memory and hands out deterministic URLs.
// It backs tests and local runs; a real deployment plugs in an object
// storage implementation behind the same interface.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
}

// NewMemoryStore creates an in-memory blob store serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		blobs:   map[string][]byte{},
	}
}

// Put stores the blob and returns its URL.
func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty blob: %s", name)
	}

	key := fmt.Sprintf("%s-%s", uuid.New().String()[:8], name)

	s.mu.Lock()
	s.blobs[key] = append([]byte(nil), data...)
	s.mu.Unlock()

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
