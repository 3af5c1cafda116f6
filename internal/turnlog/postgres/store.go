// Package postgres provides a turnlog.Store backed by a PostgreSQL turns
// table, for deployments that want a durable conversation record.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shadowru/voice-assistant/internal/turnlog"
)

// schema is applied on connect. Idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS turns (
    id             BIGSERIAL PRIMARY KEY,
    session_id     TEXT        NOT NULL,
    user_text      TEXT        NOT NULL,
    assistant_text TEXT        NOT NULL,
    audio_bytes    INTEGER     NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS turns_session_created_idx
    ON turns (session_id, created_at);
`

// Store is the PostgreSQL turn log. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface assertion.
var _ turnlog.Store = (*Store)(nil)

// New connects to the database at dsn, applies the schema, and returns the
// store. The caller must call Close when the store is no longer needed.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("turnlog: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("turnlog: apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Write implements [turnlog.Store].
func (s *Store) Write(ctx context.Context, rec turnlog.Record) error {
	const q = `
		INSERT INTO turns (session_id, user_text, assistant_text, audio_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, q,
		rec.SessionID,
		rec.UserText,
		rec.AssistantText,
		rec.AudioBytes,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("turnlog: write turn: %w", err)
	}
	return nil
}

// Recent implements [turnlog.Store]. Records are returned in chronological
// order (oldest first).
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]turnlog.Record, error) {
	q := `
		SELECT session_id, user_text, assistant_text, audio_bytes, created_at
		FROM   turns
		WHERE  session_id = $1
		ORDER  BY created_at DESC`
	args := []any{sessionID}
	if limit > 0 {
		q += "\nLIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("turnlog: recent turns: %w", err)
	}
	defer rows.Close()

	var out []turnlog.Record
	for rows.Next() {
		var rec turnlog.Record
		if err := rows.Scan(&rec.SessionID, &rec.UserText, &rec.AssistantText, &rec.AudioBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("turnlog: scan turn: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("turnlog: iterate turns: %w", err)
	}

	// Newest-first from the query; reverse to chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Ping verifies connectivity. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
