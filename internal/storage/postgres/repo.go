// Package postgres implements a Postgres repository using pgx v5. Bulk loads
// perform a COPY into a temporary table followed by an insert into the target
// table with ON CONFLICT DO NOTHING, so already-present keys are skipped
// rather than erroring.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"collisions/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterDDL("postgres", bootstrapDDL)
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool   *pgxpool.Pool
	schema string
}

// NewRepository opens a pgx pool and pings it so connection problems surface
// at startup rather than on the first batch.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}
	return &Repository{pool: pool, schema: cfg.Schema}, nil
}

// CopyInto implements storage.Repository. It stages rows with COPY into a
// session-local temp table, then inserts them into the target with
// ON CONFLICT DO NOTHING and returns the number of rows the insert accepted.
func (r *Repository) CopyInto(ctx context.Context, t storage.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("no columns configured for table %q", t.Name)
	}

	fqTable := r.fqn(t.Name)
	tmp := "tmp_load_" + t.Name

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	create := fmt.Sprintf(
		"CREATE TEMP TABLE %s ON COMMIT DROP AS SELECT %s FROM %s WHERE false",
		pgIdent(tmp), strings.Join(mapIdent(t.Columns), ","), fqTable,
	)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tmp}, t.Columns, pgx.CopyFromRows(rows)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("copy into temp: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("copy into temp: %w", err)
	}

	conflict := "ON CONFLICT DO NOTHING"
	if len(t.Key) > 0 {
		conflict = fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(mapIdent(t.Key), ","))
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s %s",
		fqTable,
		strings.Join(mapIdent(t.Columns), ","),
		strings.Join(mapIdent(t.Columns), ","),
		pgIdent(tmp),
		conflict,
	)

	tag, err := tx.Exec(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("insert phase: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Pool exposes the underlying pool for read-only consumers (the analytics
// layer queries through it).
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

// fqn prefixes name with the configured schema, quoting both parts.
func (r *Repository) fqn(name string) string {
	if r.schema == "" {
		return pgIdent(name)
	}
	return pgIdent(r.schema) + "." + pgIdent(name)
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
