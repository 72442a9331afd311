package sqlite

import (
	"context"
	"strings"
	"testing"

	"collisions/internal/storage"
)

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

func TestBootstrapDDLCoversSixTables(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	if err := bootstrapDDL(context.Background(), repo, "ignored"); err != nil {
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
	// SQLite stores dates as text.
	if !strings.Contains(all, "crash_date                    TEXT") {
		t.Error("crash_date should be TEXT in sqlite")
	}
}
