// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. It performs a bulk insert into a temporary table
// (#temp) followed by an insert into the target table that skips rows whose
// key already exists.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"collisions/internal/storage"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterDDL("mssql", bootstrapDDL)
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	schema string
}

// NewRepository opens a connection and pings it to fail fast on obvious
// mistakes.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, schema: cfg.Schema}, nil
}

// CopyInto stages rows into a session-scoped #temp table using the bulk copy
// API, then inserts into the target skipping keys that already exist. The
// returned count is the number of rows accepted by the final insert.
func (r *Repository) CopyInto(ctx context.Context, t storage.Table, rows [][]any) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("mssql: CopyInto: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tmp := "#tmp_" + t.Name
	fqTable := r.fqn(t.Name)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	// 1) Create temp table with same shape as target.
	create := fmt.Sprintf(
		"SELECT TOP 0 %s INTO %s FROM %s",
		strings.Join(mapIdent(t.Columns), ","),
		msIdent(tmp),
		fqTable,
	)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return 0, fmt.Errorf("create temp: %w", err)
	}

	// 2) Bulk copy rows into #tmp.
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(tmp, mssql.BulkOptions{}, t.Columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk copy: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(t.Columns) {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: CopyInto: row %d length %d != columns length %d", i, len(row), len(t.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil { // flush
		_ = stmt.Close()
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	if err := stmt.Close(); err != nil {
		rollback()
		return 0, fmt.Errorf("bulk close: %w", err)
	}

	// 3) Insert into target, skipping keys that already exist.
	notExists := ""
	if len(t.Key) > 0 {
		conds := make([]string, len(t.Key))
		for i, k := range t.Key {
			conds[i] = fmt.Sprintf("T.%s = S.%s", msIdent(k), msIdent(k))
		}
		notExists = fmt.Sprintf(
			" WHERE NOT EXISTS (SELECT 1 FROM %s AS T WHERE %s)",
			fqTable, strings.Join(conds, " AND "),
		)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s AS S%s",
		fqTable,
		strings.Join(mapIdent(t.Columns), ","),
		strings.Join(prefixIdent("S", t.Columns), ","),
		msIdent(tmp),
		notExists,
	)
	res, err := tx.ExecContext(ctx, insert)
	if err != nil {
		rollback()
		return 0, fmt.Errorf("insert phase: %w", err)
	}
	inserted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error { return r.db.Close() }

// fqn prefixes name with the configured schema, quoting both parts.
func (r *Repository) fqn(name string) string {
	if r.schema == "" {
		return msIdent(name)
	}
	return msIdent(r.schema) + "." + msIdent(name)
}

// msIdent safely quotes a single identifier segment for SQL Server.
func msIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = msIdent(c)
	}
	return out
}

// prefixIdent maps columns to alias-qualified quoted forms, e.g. S.[col].
func prefixIdent(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + msIdent(c)
	}
	return out
}
