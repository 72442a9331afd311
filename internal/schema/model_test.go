package schema

import (
	"testing"
	"time"
)

func TestCollisionRowMatchesColumns(t *testing.T) {
	t.Parallel()

	d := time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC)
	tm := "08:15"
	bID := int64(2)
	c := &Collision{
		CollisionID:    4455123,
		CrashDate:      &d,
		CrashTime:      &tm,
		BoroughID:      &bID,
		PersonsInjured: 2,
	}

	row := c.Row()
	if len(row) != len(CollisionColumns) {
		t.Fatalf("row width = %d, columns = %d", len(row), len(CollisionColumns))
	}
	if row[0] != int64(4455123) {
		t.Errorf("collision_id = %v", row[0])
	}
	if row[1] != d {
		t.Errorf("crash_date = %v", row[1])
	}
	if row[3] != int64(2) {
		t.Errorf("borough_id = %v", row[3])
	}
}

func TestCollisionRowNilPointersStayNil(t *testing.T) {
	t.Parallel()

	row := (&Collision{CollisionID: 1}).Row()
	// Every nullable column between the id and the counts must be SQL NULL.
	for i := 1; i <= 10; i++ {
		if row[i] != nil {
			t.Errorf("column %s = %v, want nil", CollisionColumns[i], row[i])
		}
	}
	// Counts default to zero, not NULL.
	for i := 11; i < len(row); i++ {
		if row[i] != int64(0) {
			t.Errorf("column %s = %v, want 0", CollisionColumns[i], row[i])
		}
	}
}

func TestLookupAndJunctionRows(t *testing.T) {
	t.Parallel()

	ls := LookupRows([]Lookup{{ID: 1, Name: "BROOKLYN"}, {ID: 2, Name: "QUEENS"}})
	if len(ls) != 2 || ls[0][0] != int64(1) || ls[1][1] != "QUEENS" {
		t.Errorf("LookupRows = %v", ls)
	}

	js := JunctionRows([]Junction{{CollisionID: 9, Ordinal: 3, LookupID: 7}})
	if len(js) != 1 || js[0][0] != int64(9) || js[0][1] != 3 || js[0][2] != int64(7) {
		t.Errorf("JunctionRows = %v", js)
	}
	if len(js[0]) != len(CollisionVehicleColumns) {
		t.Errorf("junction width = %d, want %d", len(js[0]), len(CollisionVehicleColumns))
	}
}
