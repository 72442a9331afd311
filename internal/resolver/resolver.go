// Package resolver maintains the three lookup tables (boroughs, vehicle
// types, contributing factors) built incrementally while scanning rows.
//
// A Resolver is constructed once per ingestion run and threaded through row
// processing; it owns the surrogate-key counters rather than relying on
// ambient global state. Matching is case- and whitespace-insensitive, the
// stored display form is the first-seen spelling, and empty values never
// enter a table.
//
// The pipeline flushes in batches, so the Resolver also tracks which entries
// are new since the last flush: DrainNew returns exactly the rows that must
// be inserted before the facts of the current batch reference them.
package resolver

import (
	"strings"

	"collisions/internal/schema"
)

// unspecifiedFactor is the source's placeholder for "no factor recorded"; it
// is treated as empty and produces no lookup or junction row.
const unspecifiedFactor = "UNSPECIFIED"

// table is one name → surrogate-key mapping with a monotonic counter.
type table struct {
	keys    map[string]int64 // normalized value → surrogate key
	pending []schema.Lookup  // entries added since the last drain
	next    int64            // next surrogate key to assign
	total   int              // distinct entries over the run
}

func newTable() *table {
	return &table{keys: map[string]int64{}, next: 1}
}

// resolve returns the surrogate key for raw, assigning the next key on first
// encounter. The bool is false when raw is blank (no key, no row).
func (t *table) resolve(raw string) (int64, bool) {
	k := normalizeKey(raw)
	if k == "" {
		return 0, false
	}
	if id, ok := t.keys[k]; ok {
		return id, true
	}
	id := t.next
	t.next++
	t.keys[k] = id
	t.pending = append(t.pending, schema.Lookup{ID: id, Name: displayValue(raw)})
	t.total++
	return id, true
}

func (t *table) drain() []schema.Lookup {
	out := t.pending
	t.pending = nil
	return out
}

// Resolver owns the three lookup mappings for one ingestion run. It is not
// safe for concurrent use; the pipeline resolves rows from a single
// goroutine.
type Resolver struct {
	boroughs     *table
	vehicleTypes *table
	factors      *table
}

// New constructs an empty Resolver. Surrogate keys start at 1 per table.
func New() *Resolver {
	return &Resolver{
		boroughs:     newTable(),
		vehicleTypes: newTable(),
		factors:      newTable(),
	}
}

// Borough resolves a borough name. ok is false for blank input.
func (r *Resolver) Borough(raw string) (id int64, ok bool) {
	return r.boroughs.resolve(raw)
}

// VehicleType resolves a vehicle-type description. ok is false for blank input.
func (r *Resolver) VehicleType(raw string) (id int64, ok bool) {
	return r.vehicleTypes.resolve(raw)
}

// Factor resolves a contributing-factor description. ok is false for blank
// input or the source's "UNSPECIFIED" placeholder.
func (r *Resolver) Factor(raw string) (id int64, ok bool) {
	if strings.EqualFold(strings.TrimSpace(raw), unspecifiedFactor) {
		return 0, false
	}
	return r.factors.resolve(raw)
}

// NewLookups holds lookup rows assigned since the previous drain, one slice
// per table.
type NewLookups struct {
	Boroughs     []schema.Lookup
	VehicleTypes []schema.Lookup
	Factors      []schema.Lookup
}

// Empty reports whether the drain produced no new rows.
func (n NewLookups) Empty() bool {
	return len(n.Boroughs) == 0 && len(n.VehicleTypes) == 0 && len(n.Factors) == 0
}

// DrainNew returns the lookup rows assigned since the previous call and
// resets the pending sets. The caller must insert these before any fact or
// junction rows that reference them.
func (r *Resolver) DrainNew() NewLookups {
	return NewLookups{
		Boroughs:     r.boroughs.drain(),
		VehicleTypes: r.vehicleTypes.drain(),
		Factors:      r.factors.drain(),
	}
}

// Counts returns the distinct-entry totals (boroughs, vehicle types, factors)
// for the run so far.
func (r *Resolver) Counts() (boroughs, vehicleTypes, factors int) {
	return r.boroughs.total, r.vehicleTypes.total, r.factors.total
}
