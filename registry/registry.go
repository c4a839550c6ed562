// Package registry provides insertion-ordered capability stores.
//
// A Store maps unique keys (tool names, prompt names, resource URIs) to
// entries while preserving registration order, so listing operations are
// deterministic for clients. Stores freeze when serving starts:
// registration after that point is a programming error and is rejected.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicate is returned when a key is registered twice.
var ErrDuplicate = errors.New("registry: duplicate key")

// ErrFrozen is returned when registering after the store was frozen.
var ErrFrozen = errors.New("registry: store is frozen")

// Store is an insertion-ordered map of capability entries.
type Store[T any] struct {
	mu      sync.RWMutex
	frozen  bool
	entries map[string]T
	order   []string
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]T),
	}
}

// Register adds an entry under key. It fails with ErrDuplicate if the
// key is already present and ErrFrozen if the store was frozen.
func (s *Store[T]) Register(key string, entry T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return fmt.Errorf("%w: cannot register %q after serving started", ErrFrozen, key)
	}
	if _, exists := s.entries[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, key)
	}

	s.entries[key] = entry
	s.order = append(s.order, key)
	return nil
}

// Get retrieves the entry for key.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Values returns all entries in registration order.
func (s *Store[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]T, 0, len(s.order))
	for _, key := range s.order {
		values = append(values, s.entries[key])
	}
	return values
}

// Keys returns all keys in registration order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of registered entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Freeze marks the store read-only. Freezing twice is a no-op.
func (s *Store[T]) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether the store has been frozen.
func (s *Store[T]) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}
