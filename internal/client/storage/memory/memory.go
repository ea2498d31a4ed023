// Package memory provides an in-process KVStorage.
// Nothing is persisted: it backs tests and the --storage memory CLI mode.
package memory

import (
	"context"
	"sync"

	"github.com/alshehri12/grc/internal/client/storage"
)

// Storage is a map-backed storage.KVStorage safe for concurrent use
type Storage struct {
	data   map[string]string
	mu     sync.RWMutex
	closed bool
}

var _ storage.KVStorage = (*Storage)(nil)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{data: make(map[string]string)}
}

// Get returns the value stored under key
func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", storage.ErrStorageClosed
	}
	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}
	s.data[key] = value
	return nil
}

// Delete removes key
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}
	delete(s.data, key)
	return nil
}

// Close marks the storage closed; subsequent calls fail with ErrStorageClosed
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored keys
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
