package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"collisions/internal/storage"
)

// recordingRepo captures Exec calls for DDL assertions.
type recordingRepo struct {
	stmts []string
}

func (r *recordingRepo) CopyInto(context.Context, storage.Table, [][]any) (int64, error) {
	return 0, nil
}
func (r *recordingRepo) Exec(_ context.Context, sql string) error {
	r.stmts = append(r.stmts, sql)
	return nil
}
func (r *recordingRepo) Close() error { return nil }

func TestPgIdentQuoting(t *testing.T) {
	t.Parallel()

	if got := pgIdent("collisions"); got != `"collisions"` {
		t.Errorf("pgIdent = %s", got)
	}
	if got := pgIdent(`odd"name`); got != `"odd""name"` {
		t.Errorf("pgIdent escaping = %s", got)
	}
}

func TestFqnWithAndWithoutSchema(t *testing.T) {
	t.Parallel()

	r := &Repository{schema: ""}
	if got := r.fqn("collisions"); got != `"collisions"` {
		t.Errorf("fqn = %s", got)
	}
	r = &Repository{schema: "nyc"}
	if got := r.fqn("collisions"); got != `"nyc"."collisions"` {
		t.Errorf("fqn = %s", got)
	}
}

func TestBootstrapDDLCoversSixTables(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	if err := bootstrapDDL(context.Background(), repo, ""); err != nil {
		t.Fatalf("bootstrapDDL: %v", err)
	}

	all := strings.Join(repo.stmts, "\n")
	for _, table := range []string{
		"boroughs", "vehicle_types", "factors",
		"collisions", "collision_vehicles", "collision_factors",
	} {
		if !strings.Contains(all, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("missing table %s", table)
		}
	}
	if !strings.Contains(all, "number_of_persons_injured >= 0") {
		t.Error("missing non-negative count check")
	}
	if !strings.Contains(all, "PRIMARY KEY (collision_id, vehicle_order)") {
		t.Error("missing junction composite key")
	}
}

func TestBootstrapDDLWithSchemaPrefixesTables(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	if err := bootstrapDDL(context.Background(), repo, "nyc"); err != nil {
		t.Fatalf("bootstrapDDL: %v", err)
	}

	if repo.stmts[0] != `CREATE SCHEMA IF NOT EXISTS "nyc"` {
		t.Errorf("first stmt = %s", repo.stmts[0])
	}
	for _, s := range repo.stmts[1:] {
		if strings.Contains(s, "CREATE TABLE") && !strings.Contains(s, `"nyc".`) {
			t.Errorf("unprefixed table DDL: %s", s)
		}
	}
}

func TestBootstrapDDLStopsOnError(t *testing.T) {
	t.Parallel()

	if err := bootstrapDDL(context.Background(), failingRepo{}, ""); err == nil {
		t.Fatal("expected error")
	}
}

type failingRepo struct{}

func (failingRepo) CopyInto(context.Context, storage.Table, [][]any) (int64, error) {
	return 0, nil
}
func (failingRepo) Exec(context.Context, string) error { return fmt.Errorf("refused") }
func (failingRepo) Close() error                       { return nil }
