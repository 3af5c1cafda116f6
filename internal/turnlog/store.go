// Package turnlog persists completed turn exchanges for later review.
//
// The store is strictly write-behind: turn processing never blocks on or
// fails because of the log. Deployments without a configured database use
// [MemStore], which keeps a bounded in-process tail.
package turnlog

import (
	"context"
	"time"
)

// Record is one completed turn exchange.
type Record struct {
	// SessionID identifies the session the turn belongs to.
	SessionID string

	// UserText is the recognized user utterance.
	UserText string

	// AssistantText is the generated (or cached, or apology) response.
	AssistantText string

	// AudioBytes is the size of the synthesized audio, 0 when synthesis
	// produced no output.
	AudioBytes int

	// CreatedAt records when the turn completed.
	CreatedAt time.Time
}

// Store is the abstraction over any turn log backend.
//
// Implementations must be safe for concurrent use across sessions.
type Store interface {
	// Write appends rec to the log.
	Write(ctx context.Context, rec Record) error

	// Recent returns up to limit records for sessionID in chronological
	// order (oldest first).
	Recent(ctx context.Context, sessionID string, limit int) ([]Record, error)
}
