// Package storage contains backend-agnostic contracts and utilities for the
// collision schema: the Repository interface, a factory registry keyed by
// storage kind, a DDL bootstrap registry, and a generic batched loader.
//
// Concrete backends (postgres, sqlite, mysql, mssql) live in subpackages and
// register themselves at init time; callers select one by name and otherwise
// never import a database driver directly.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Table identifies a destination table for bulk loading.
type Table struct {
	// Name is the bare table name; backends apply any configured schema prefix.
	Name string

	// Columns enumerates the destination columns in row order. Surrogate keys
	// are client-assigned, so key columns are included.
	Columns []string

	// Key identifies the primary-key columns. Backends use it for their
	// conflict-ignore insert form so re-running an ingest is idempotent at the
	// row level.
	Key []string
}

// Repository is the minimal write surface the ingest pipeline needs.
type Repository interface {
	// CopyInto bulk-inserts rows (aligned to t.Columns order) into t using the
	// backend's most efficient primitive, ignoring rows whose key already
	// exists. It returns the number of rows accepted by the database.
	CopyInto(ctx context.Context, t Table, rows [][]any) (int64, error)

	// Exec executes an arbitrary SQL statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying pool/connection.
	Close() error
}

// Config carries the backend-independent connection settings.
type Config struct {
	Kind   string // "postgres", "sqlite", "mysql", "mssql"
	DSN    string
	Schema string // optional table-name prefix, e.g. "public"
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a backend factory for the given storage
// kind. It is typically called from backend packages' init() functions.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind using the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind=%q", cfg.Kind)
	}
	return f(ctx, cfg)
}
