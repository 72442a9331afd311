package storage

import (
	"context"
	"fmt"
	"sync"
)

// DDLBootstrapper creates the six collision tables (lookups, fact, junctions)
// in a backend's dialect via repo.Exec, using CREATE TABLE IF NOT EXISTS
// semantics so bootstrap is safe to repeat.
//
// Backends register their implementation for a given storage kind at init
// time.
type DDLBootstrapper func(ctx context.Context, repo Repository, schemaName string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureSchema locates the DDLBootstrapper for kind and invokes it. Callers
// do not need to know which backend they are using; they pass the
// already-open Repository.
func EnsureSchema(ctx context.Context, kind, schemaName string, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, schemaName)
}
