// Package respcache caches generated assistant responses keyed by a stable
// hash of the normalized user text.
//
// The cache is the only mutable state shared across sessions, so both
// implementations support concurrent lookups and stores: an in-process
// [Memory] cache for single-node deployments and a [Redis] cache when
// responses should survive restarts or be shared between replicas.
//
// Keys are derived with xxhash over normalized text rather than a
// per-process hash, so the same input maps to the same entry across process
// restarts and across replicas.
package respcache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultTTL is the time-to-live applied to every stored response.
const DefaultTTL = 3600 * time.Second

// keyPrefix namespaces response entries in shared stores.
const keyPrefix = "llm:"

// Cache is the abstraction over any response cache store.
//
// Implementations must be safe for concurrent use and must never return an
// entry past its expiry — expired entries are simply treated as absent, no
// eviction sweep is required.
type Cache interface {
	// Get returns the cached value for key and whether it was present and
	// unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key for the given time-to-live.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Key derives the deterministic cache key for the given user text. Text is
// normalized (whitespace collapsed, lowercased) before hashing so trivially
// different phrasings of the same input share an entry.
func Key(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return fmt.Sprintf("%s%x", keyPrefix, xxhash.Sum64String(normalized))
}
