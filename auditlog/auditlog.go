// Package auditlog appends one row per executed query to Postgres for
// offline analysis: id, term ids, k, driver, latency, result count. This is
// not the "evaluation harness" spec.md places out of scope (§1) — it only
// produces rows; scoring and TREC-format output are left to an external
// consumer. Grounded on Adithya-.../pkg/postgres/client.go's sql.Open +
// ping-on-connect + pooling setup and
// Adithya-.../internal/analytics/aggregator/store.go's JSON-column insert
// pattern.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Log is a single executed-query audit record.
type Log struct {
	QueryID     string
	TermIDs     []uint32
	K           int
	Driver      string
	LatencyMS   float64
	ResultCount int
	ExecutedAt  time.Time
}

// Store wraps a pooled Postgres connection for inserting Logs.
type Store struct {
	db *sql.DB
}

// Options configures a Store's connection pool.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open opens a Postgres connection, verifies it with a ping, and applies
// the pool settings.
func Open(opts Options) (*Store, error) {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("auditlog: opening connection: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("auditlog: pinging: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the query_log table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS query_log (
	id           BIGSERIAL PRIMARY KEY,
	query_id     TEXT,
	term_ids     JSONB NOT NULL,
	k            INTEGER NOT NULL,
	driver       TEXT NOT NULL,
	latency_ms   DOUBLE PRECISION NOT NULL,
	result_count INTEGER NOT NULL,
	executed_at  TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("auditlog: creating schema: %w", err)
	}
	return nil
}

// Insert appends one query_log row.
func (s *Store) Insert(ctx context.Context, l Log) error {
	termIDs, err := json.Marshal(l.TermIDs)
	if err != nil {
		return fmt.Errorf("auditlog: marshaling term ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO query_log (query_id, term_ids, k, driver, latency_ms, result_count, executed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.QueryID, termIDs, l.K, l.Driver, l.LatencyMS, l.ResultCount, l.ExecutedAt)
	if err != nil {
		return fmt.Errorf("auditlog: inserting row: %w", err)
	}
	return nil
}

// RecentByDriver returns the executed_at timestamps of the most recent n
// queries for driver, newest first, for a lightweight recent-activity view.
func (s *Store) RecentByDriver(ctx context.Context, driver string, n int) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT executed_at FROM query_log WHERE driver = $1 ORDER BY executed_at DESC LIMIT $2`,
		driver, n)
	if err != nil {
		return nil, fmt.Errorf("auditlog: querying recent: %w", err)
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("auditlog: scanning row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
