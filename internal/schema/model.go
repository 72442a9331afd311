// Package schema defines the typed domain model for the collision ingest:
// the fact row, the three lookup entities, the two junction rows, and the
// destination table/column metadata shared by the storage backends.
package schema

import "time"

// Source date/time layouts. The city export has shipped both ISO and US-style
// crash dates over time, so the decoder tries DateLayout first and falls back
// to DateLayoutUS.
const (
	DateLayout   = "2006-01-02"
	DateLayoutUS = "01/02/2006"
	TimeLayout   = "15:04"
)

// MaxOrdinal is the number of repeated vehicle-type / contributing-factor
// columns per source row. Junction ordinals run 1..MaxOrdinal.
const MaxOrdinal = 5

// Destination table names.
const (
	TableBoroughs         = "boroughs"
	TableVehicleTypes     = "vehicle_types"
	TableFactors          = "factors"
	TableCollisions       = "collisions"
	TableCollisionVehicle = "collision_vehicles"
	TableCollisionFactor  = "collision_factors"
)

// Collision is one crash event at the grain of the source feed: one row per
// collision_id. Nullable attributes are pointers; the eight count columns are
// always present and non-negative after decode.
type Collision struct {
	CollisionID int64      `db:"collision_id"`
	CrashDate   *time.Time `db:"crash_date"`
	CrashTime   *string    `db:"crash_time"` // "HH:MM"; kept textual like the source
	BoroughID   *int64     `db:"borough_id"`
	ZipCode     *string    `db:"zip_code"`
	Latitude    *float64   `db:"latitude"`
	Longitude   *float64   `db:"longitude"`
	Location    *string    `db:"location"`
	OnStreet    *string    `db:"on_street_name"`
	OffStreet   *string    `db:"off_street_name"`
	CrossStreet *string    `db:"cross_street_name"`

	PersonsInjured     int64 `db:"number_of_persons_injured"`
	PersonsKilled      int64 `db:"number_of_persons_killed"`
	PedestriansInjured int64 `db:"number_of_pedestrians_injured"`
	PedestriansKilled  int64 `db:"number_of_pedestrians_killed"`
	CyclistsInjured    int64 `db:"number_of_cyclist_injured"`
	CyclistsKilled     int64 `db:"number_of_cyclist_killed"`
	MotoristsInjured   int64 `db:"number_of_motorist_injured"`
	MotoristsKilled    int64 `db:"number_of_motorist_killed"`

	// Raw repeated columns, index 0 → ordinal 1. nil means the source cell was
	// empty; the resolver turns non-empty entries into junction rows.
	VehicleTypes [MaxOrdinal]*string `db:"-"`
	Factors      [MaxOrdinal]*string `db:"-"`
}

// Lookup is one row of a lookup (dimension) table: a surrogate key plus the
// first-seen display form of the natural value.
type Lookup struct {
	ID   int64
	Name string
}

// Junction is one (collision, ordinal) → lookup-key association.
type Junction struct {
	CollisionID int64
	Ordinal     int // 1..MaxOrdinal
	LookupID    int64
}

// CollisionColumns is the destination column order for the collisions table,
// matching Collision.Row.
var CollisionColumns = []string{
	"collision_id", "crash_date", "crash_time",
	"borough_id", "zip_code", "latitude", "longitude",
	"location", "on_street_name", "off_street_name", "cross_street_name",
	"number_of_persons_injured", "number_of_persons_killed",
	"number_of_pedestrians_injured", "number_of_pedestrians_killed",
	"number_of_cyclist_injured", "number_of_cyclist_killed",
	"number_of_motorist_injured", "number_of_motorist_killed",
}

// Column orders for the lookup and junction tables.
var (
	BoroughColumns          = []string{"borough_id", "borough_name"}
	VehicleTypeColumns      = []string{"vehicle_type_id", "vehicle_type_desc"}
	FactorColumns           = []string{"factor_id", "factor_desc"}
	CollisionVehicleColumns = []string{"collision_id", "vehicle_order", "vehicle_type_id"}
	CollisionFactorColumns  = []string{"collision_id", "factor_order", "factor_id"}
)

// Row flattens the collision into the CollisionColumns order for bulk loading.
// Nil pointers stay nil so drivers write SQL NULL.
func (c *Collision) Row() []any {
	var date any
	if c.CrashDate != nil {
		date = *c.CrashDate
	}
	return []any{
		c.CollisionID, date, strPtr(c.CrashTime),
		intPtr(c.BoroughID), strPtr(c.ZipCode), floatPtr(c.Latitude), floatPtr(c.Longitude),
		strPtr(c.Location), strPtr(c.OnStreet), strPtr(c.OffStreet), strPtr(c.CrossStreet),
		c.PersonsInjured, c.PersonsKilled,
		c.PedestriansInjured, c.PedestriansKilled,
		c.CyclistsInjured, c.CyclistsKilled,
		c.MotoristsInjured, c.MotoristsKilled,
	}
}

func strPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// LookupRows flattens lookups into (id, name) rows for bulk loading.
func LookupRows(ls []Lookup) [][]any {
	rows := make([][]any, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, []any{l.ID, l.Name})
	}
	return rows
}

// JunctionRows flattens junctions into (collision_id, ordinal, lookup_id) rows.
func JunctionRows(js []Junction) [][]any {
	rows := make([][]any, 0, len(js))
	for _, j := range js {
		rows = append(rows, []any{j.CollisionID, j.Ordinal, j.LookupID})
	}
	return rows
}
