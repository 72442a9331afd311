package ingest

import (
	"fmt"
	"strconv"
	"time"

	"collisions/internal/schema"
	"collisions/pkg/records"
)

// DefaultHeaderMap canonicalizes the feed's irregular vehicle-type headers:
// the first two columns ship as vehicle_type_code1/2 while columns 3-5 use an
// underscore before the ordinal. Keys are post simple-normalization header
// names (lowercase, underscores).
var DefaultHeaderMap = map[string]string{
	"vehicle_type_code1": "vehicle_type_code_1",
	"vehicle_type_code2": "vehicle_type_code_2",
}

// decode converts a parsed record into the typed collision row. It returns a
// *RowError with KindParse when the collision identifier is missing or
// unparseable; every other field degrades softly (blank counts become 0,
// unparseable dates become NULL).
func decode(line int, rec records.Record) (*schema.Collision, error) {
	idStr := rec.String("collision_id")
	if idStr == "" {
		return nil, &RowError{Line: line, Kind: KindParse, Err: fmt.Errorf("missing collision_id")}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, &RowError{Line: line, Kind: KindParse, Err: fmt.Errorf("collision_id %q: %w", idStr, err)}
	}

	c := &schema.Collision{CollisionID: id}

	if s := rec.String("crash_date"); s != "" {
		if t, err := time.Parse(schema.DateLayout, s); err == nil {
			c.CrashDate = &t
		} else if t, err := time.Parse(schema.DateLayoutUS, s); err == nil {
			c.CrashDate = &t
		}
	}
	if s := rec.String("crash_time"); s != "" {
		if _, err := time.Parse(schema.TimeLayout, s); err == nil {
			c.CrashTime = &s
		}
	}

	c.ZipCode = optString(rec, "zip_code")
	c.Latitude = optFloat(rec, "latitude")
	c.Longitude = optFloat(rec, "longitude")
	c.Location = optString(rec, "location")
	c.OnStreet = optString(rec, "on_street_name")
	c.OffStreet = optString(rec, "off_street_name")
	c.CrossStreet = optString(rec, "cross_street_name")

	c.PersonsInjured = count(rec, "number_of_persons_injured")
	c.PersonsKilled = count(rec, "number_of_persons_killed")
	c.PedestriansInjured = count(rec, "number_of_pedestrians_injured")
	c.PedestriansKilled = count(rec, "number_of_pedestrians_killed")
	c.CyclistsInjured = count(rec, "number_of_cyclist_injured")
	c.CyclistsKilled = count(rec, "number_of_cyclist_killed")
	c.MotoristsInjured = count(rec, "number_of_motorist_injured")
	c.MotoristsKilled = count(rec, "number_of_motorist_killed")

	for i := 0; i < schema.MaxOrdinal; i++ {
		c.VehicleTypes[i] = optString(rec, fmt.Sprintf("vehicle_type_code_%d", i+1))
		c.Factors[i] = optString(rec, fmt.Sprintf("contributing_factor_vehicle_%d", i+1))
	}

	return c, nil
}

// optString returns a pointer to the trimmed value or nil when blank.
func optString(rec records.Record, key string) *string {
	if s := rec.String(key); s != "" {
		return &s
	}
	return nil
}

// optFloat parses a nullable float column; unparseable values become NULL.
func optFloat(rec records.Record, key string) *float64 {
	s := rec.String(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// count parses an injury/fatality column. Blanks and unparseable values
// coerce to 0; negative-looking input clamps to 0 so counts are never
// negative after load.
func count(rec records.Record, key string) int64 {
	s := rec.String(key)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports carry counts as floats ("2.0").
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			n = int64(f)
		} else {
			return 0
		}
	}
	if n < 0 {
		return 0
	}
	return n
}
