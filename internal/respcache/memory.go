package respcache

import (
	"context"
	"sync"
	"time"
)

// entry pairs a cached value with its expiry instant.
type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process [Cache]. Expired entries are dropped lazily on
// lookup; there is no background sweep.
//
// Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is replaceable in tests.
	now func() time.Time
}

// Compile-time interface assertion.
var _ Cache = (*Memory)(nil)

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements [Cache]. An expired entry is treated as absent and removed.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if m.now().After(e.expires) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements [Cache].
func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including any not yet lazily
// expired. Intended for tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
