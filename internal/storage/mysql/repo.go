// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver. Bulk loads are multi-row INSERT IGNORE
// statements inside a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"collisions/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
	storage.RegisterDDL("mysql", bootstrapDDL)
}

// insertChunk caps how many rows go into one multi-row INSERT so the
// statement stays under MySQL's placeholder and packet limits.
const insertChunk = 500

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a MySQL connection using the provided DSN, e.g.
// "user:pass@tcp(127.0.0.1:3306)/collisions?parseTime=true".
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// CopyInto inserts rows into table t with chunked multi-row INSERT IGNORE
// inside one transaction. Rows whose key already exists are skipped; the
// returned count includes only accepted rows.
func (r *Repository) CopyInto(ctx context.Context, t storage.Table, rows [][]any) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyInto: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	valueTmpl := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",") + ")"

	var inserted int64
	for start := 0; start < len(rows); start += insertChunk {
		end := start + insertChunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		values := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(t.Columns))
		for i, row := range chunk {
			if len(row) != len(t.Columns) {
				_ = tx.Rollback()
				return inserted, fmt.Errorf("mysql: CopyInto: row length %d != columns length %d", len(row), len(t.Columns))
			}
			values[i] = valueTmpl
			args = append(args, row...)
		}

		stmt := fmt.Sprintf(
			"INSERT IGNORE INTO %s (%s) VALUES %s",
			t.Name,
			strings.Join(t.Columns, ", "),
			strings.Join(values, ","),
		)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("mysql: insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error { return r.db.Close() }
