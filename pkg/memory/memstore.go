package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a volatile, single-process Store backed by a mutex-guarded
// map. It is lost on restart, intended for local/demo use where running
// a Postgres instance for spilled results is unnecessary overhead.
type MemStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemStore creates an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{results: make(map[string]Result)}
}

// Put implements Store.
func (m *MemStore) Put(_ context.Context, result Result) (string, error) {
	if result.Key == "" {
		result.Key = uuid.New().String()
	}
	result.CreatedAt = time.Now()

	m.mu.Lock()
	m.results[result.Key] = result
	m.mu.Unlock()

	return result.Key, nil
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, key string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.results[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &result, nil
}

// List implements Store.
func (m *MemStore) List(_ context.Context, sessionID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key, result := range m.results {
		if result.SessionID == sessionID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, key)
	return nil
}

// Sweep implements Store.
func (m *MemStore) Sweep(_ context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, result := range m.results {
		if result.CreatedAt.Before(cutoff) {
			delete(m.results, key)
			count++
		}
	}
	return count, nil
}

// Close implements Store. MemStore holds no external resources.
func (m *MemStore) Close() error {
	return nil
}
