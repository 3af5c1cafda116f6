package turnlog

import (
	"context"
	"sync"
)

// defaultMemLimit bounds the in-process log so an always-on session cannot
// grow it without limit.
const defaultMemLimit = 1000

// MemStore is an in-memory [Store]. It retains at most a fixed number of
// records, dropping the oldest first.
//
// Safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	records []Record
	limit   int
}

// Compile-time interface assertion.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory turn log.
func NewMemStore() *MemStore {
	return &MemStore{limit: defaultMemLimit}
}

// Write implements [Store].
func (s *MemStore) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.limit {
		// Copy to a fresh slice so dropped records can be garbage collected.
		fresh := make([]Record, s.limit)
		copy(fresh, s.records[len(s.records)-s.limit:])
		s.records = fresh
	}
	return nil
}

// Recent implements [Store].
func (s *MemStore) Recent(_ context.Context, sessionID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for i := len(s.records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.records[i].SessionID == sessionID {
			out = append(out, s.records[i])
		}
	}

	// Reverse to chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
