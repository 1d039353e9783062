package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jllopis/kairos-ocf/pkg/resilience"
)

// SQLite persists state and journal entries in a SQLite database.
// Several agent processes may share one file; statements that hit a
// locked database are retried.
type SQLite struct {
	db     *sql.DB
	closer bool
	retry  resilience.RetryConfig
}

// busyTimeoutMs is how long a connection waits on a lock held by another
// agent process before SQLite reports SQLITE_BUSY.
const busyTimeoutMs = 5000

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	s, err := NewSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.closer = true
	return s, nil
}

// NewSQLite wraps an open database and ensures the schema.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	retry := resilience.DefaultRetryConfig().WithIsRecoverable(IsBusy)
	if err := retry.Do(context.Background(), func() error { return ensureSchema(db) }); err != nil {
		return nil, err
	}
	return &SQLite{db: db, retry: retry}, nil
}

// IsBusy reports whether err is SQLite refusing a write because another
// connection holds the lock.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

func (s *SQLite) exec(ctx context.Context, query string, args ...any) error {
	return s.retry.Do(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.retry.Do(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT value FROM ocf_state WHERE key = ?`, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return s.exec(ctx, `
		INSERT INTO ocf_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
}

// Delete removes key; missing keys are not an error.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.exec(ctx, `DELETE FROM ocf_state WHERE key = ?`, key)
}

// Record stores a single invocation.
func (s *SQLite) Record(ctx context.Context, inv Invocation) error {
	return s.exec(ctx, `
		INSERT INTO ocf_invocations (
			run_id, agent, action, status, status_name, error_text, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.RunID,
		inv.Agent,
		inv.Action,
		inv.Status,
		inv.StatusName,
		inv.Error,
		normalizeTime(inv.StartedAt),
		normalizeTime(inv.FinishedAt),
	)
}

// List returns invocations matching the filter, oldest first. With a
// limit, the most recent entries are kept.
func (s *SQLite) List(ctx context.Context, filter Filter) ([]Invocation, error) {
	query := `
		SELECT run_id, agent, action, status, status_name, error_text, started_at, finished_at
		FROM ocf_invocations
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Agent != "" {
		addFilter("agent = ?", filter.Agent)
	}
	if filter.Action != "" {
		addFilter("action = ?", filter.Action)
	}
	if filter.RunID != "" {
		addFilter("run_id = ?", filter.RunID)
	}
	query += where + " ORDER BY started_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var out []Invocation
	err := s.retry.Do(ctx, func() error {
		var err error
		out, err = s.scanInvocations(ctx, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (s *SQLite) scanInvocations(ctx context.Context, query string, args []any) ([]Invocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var (
			inv      Invocation
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(
			&inv.RunID,
			&inv.Agent,
			&inv.Action,
			&inv.Status,
			&inv.StatusName,
			&inv.Error,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		if started.Valid {
			inv.StartedAt = started.Time
		}
		if finished.Valid {
			inv.FinishedAt = finished.Time
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the database if OpenSQLite opened it.
func (s *SQLite) Close() error {
	if !s.closer {
		return nil
	}
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ocf_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ocf_invocations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			agent TEXT NOT NULL,
			action TEXT NOT NULL,
			status INTEGER NOT NULL,
			status_name TEXT NOT NULL,
			error_text TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_ocf_invocations_agent ON ocf_invocations(agent);
		CREATE INDEX IF NOT EXISTS idx_ocf_invocations_action ON ocf_invocations(action);
	`)
	return err
}
