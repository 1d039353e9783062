// Package state persists agent data across invocations. Each agent run is
// a separate process, so anything an agent must remember between start,
// monitor and stop lives here, together with a journal of invocations.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for missing keys.
var ErrNotFound = errors.New("state: key not found")

// Store is a key/value store shared by all invocations of an agent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Journal records finished invocations.
type Journal interface {
	Record(ctx context.Context, inv Invocation) error
	List(ctx context.Context, filter Filter) ([]Invocation, error)
}

// Backend bundles a Store and a Journal over one storage.
type Backend interface {
	Store
	Journal
	Close() error
}

// Invocation is one dispatched action.
type Invocation struct {
	RunID      string
	Agent      string
	Action     string
	Status     int
	StatusName string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the time spent in the invocation.
func (i Invocation) Duration() time.Duration {
	if i.FinishedAt.IsZero() || i.StartedAt.IsZero() {
		return 0
	}
	return i.FinishedAt.Sub(i.StartedAt)
}

// Filter limits journal queries.
type Filter struct {
	Agent  string
	Action string
	RunID  string
	Limit  int // keep only the most recent entries; 0 for all
}

func (f Filter) match(inv Invocation) bool {
	if f.Agent != "" && inv.Agent != f.Agent {
		return false
	}
	if f.Action != "" && inv.Action != f.Action {
		return false
	}
	if f.RunID != "" && inv.RunID != f.RunID {
		return false
	}
	return true
}

// MemoryPath selects the in-memory backend in Open.
const MemoryPath = ":memory:"

// DefaultFile is the database file name agents share inside HA_RSCTMP.
const DefaultFile = "ocf-agents.db"

// Open returns a SQLite backend for path, or a memory backend when path is
// empty or MemoryPath.
func Open(path string) (Backend, error) {
	if path == "" || path == MemoryPath {
		return NewMemory(), nil
	}
	return OpenSQLite(path)
}

func normalizeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
