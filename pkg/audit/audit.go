// Package audit records the outcome of every tool invocation in SQLite.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MaxInputLength bounds the stored copy of the raw tool input.
const MaxInputLength = 500

// MemoryPath opens a database that lives only as long as the Store.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool TEXT NOT NULL,
	outcome TEXT NOT NULL,
	input TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocations_outcome ON invocations(outcome);
`

// Entry is one recorded invocation.
type Entry struct {
	ID        int64
	Tool      string
	Outcome   string
	Input     string
	CreatedAt time.Time
}

// Store is an append-only invocation log. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("audit database path is required")
	}

	dsn := "file:" + path
	if path == MemoryPath {
		dsn = "file::memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record appends e. ID and CreatedAt are assigned by the store and Input
// longer than MaxInputLength is truncated.
func (s *Store) Record(ctx context.Context, e Entry) error {
	input := e.Input
	if len(input) > MaxInputLength {
		input = input[:MaxInputLength]
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (tool, outcome, input, created_at) VALUES (?, ?, ?, ?)`,
		e.Tool, e.Outcome, input, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation of %s: %w", e.Tool, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, outcome, input, created_at
		FROM invocations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			input     sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Tool, &e.Outcome, &input, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		e.Input = input.String
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invocations: %w", err)
	}

	return entries, nil
}

// Counts returns the number of recorded entries per outcome.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM invocations GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count invocations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan invocation count: %w", err)
		}
		counts[outcome] = n
	}

	return counts, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
