package resolver

import "testing"

func TestBoroughAssignsSequentialKeys(t *testing.T) {
	t.Parallel()

	r := New()

	id1, ok := r.Borough("BROOKLYN")
	if !ok || id1 != 1 {
		t.Fatalf("first borough = (%d, %v), want (1, true)", id1, ok)
	}
	id2, ok := r.Borough("QUEENS")
	if !ok || id2 != 2 {
		t.Fatalf("second borough = (%d, %v), want (2, true)", id2, ok)
	}
	again, ok := r.Borough("BROOKLYN")
	if !ok || again != id1 {
		t.Fatalf("repeat borough = (%d, %v), want (%d, true)", again, ok, id1)
	}
}

func TestResolveMatchingIsCaseAndSpaceInsensitive(t *testing.T) {
	t.Parallel()

	r := New()

	id1, _ := r.VehicleType("Station Wagon/Sport Utility Vehicle")
	id2, _ := r.VehicleType("  station wagon/sport   utility vehicle ")
	if id1 != id2 {
		t.Fatalf("ids differ: %d vs %d", id1, id2)
	}

	nl := r.DrainNew()
	if len(nl.VehicleTypes) != 1 {
		t.Fatalf("pending vehicle types = %d, want 1", len(nl.VehicleTypes))
	}
	// First-seen spelling is kept as the display form.
	if nl.VehicleTypes[0].Name != "Station Wagon/Sport Utility Vehicle" {
		t.Errorf("display = %q", nl.VehicleTypes[0].Name)
	}
}

func TestBlankValuesNeverEnterTables(t *testing.T) {
	t.Parallel()

	r := New()

	if _, ok := r.Borough(""); ok {
		t.Error("blank borough resolved")
	}
	if _, ok := r.Borough("   "); ok {
		t.Error("whitespace borough resolved")
	}
	if b, _, _ := r.Counts(); b != 0 {
		t.Errorf("boroughs = %d, want 0", b)
	}
}

func TestFactorFiltersUnspecified(t *testing.T) {
	t.Parallel()

	r := New()

	if _, ok := r.Factor("Unspecified"); ok {
		t.Error("Unspecified resolved to a factor")
	}
	if _, ok := r.Factor("UNSPECIFIED"); ok {
		t.Error("UNSPECIFIED resolved to a factor")
	}
	id, ok := r.Factor("Driver Inattention/Distraction")
	if !ok || id != 1 {
		t.Fatalf("factor = (%d, %v), want (1, true)", id, ok)
	}
}

func TestDrainNewReturnsOnlySinceLastDrain(t *testing.T) {
	t.Parallel()

	r := New()
	r.Borough("BRONX")

	first := r.DrainNew()
	if len(first.Boroughs) != 1 {
		t.Fatalf("first drain boroughs = %d, want 1", len(first.Boroughs))
	}

	// Repeat of a known value adds nothing.
	r.Borough("BRONX")
	if nl := r.DrainNew(); !nl.Empty() {
		t.Fatalf("second drain not empty: %+v", nl)
	}

	r.Borough("STATEN ISLAND")
	third := r.DrainNew()
	if len(third.Boroughs) != 1 || third.Boroughs[0].ID != 2 {
		t.Fatalf("third drain = %+v, want one borough with id 2", third.Boroughs)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	r := New()
	r.Borough("BROOKLYN")
	r.Borough("QUEENS")
	r.VehicleType("Sedan")
	r.Factor("Following Too Closely")
	r.Factor("Following Too Closely")

	b, vt, f := r.Counts()
	if b != 2 || vt != 1 || f != 1 {
		t.Fatalf("counts = (%d, %d, %d), want (2, 1, 1)", b, vt, f)
	}
}

func TestNormalizeKeyStripsControlRunes(t *testing.T) {
	t.Parallel()

	if got := normalizeKey("Sedan\u200b"); got != normalizeKey("Sedan") {
		t.Errorf("zero-width rune not stripped: %q vs %q", got, normalizeKey("Sedan"))
	}
}
