package utils

import "sync"

// Set is a thread-safe set that remembers insertion order.
type Set[T comparable] struct {
	mu    sync.RWMutex
	seen  map[T]struct{}
	order []T
}

// NewSet creates a Set holding items, duplicates collapsed.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{seen: make(map[T]struct{}, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add returns true if item was newly added, false if already present.
func (s *Set[T]) Add(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[item]; exists {
		return false
	}
	s.seen[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

// Contains returns true if item is in the set.
func (s *Set[T]) Contains(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[item]
	return exists
}

// Size returns the number of distinct items.
func (s *Set[T]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Items returns the distinct items in first-insertion order.
func (s *Set[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}
