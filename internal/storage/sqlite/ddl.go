package sqlite

import (
	"context"
	"fmt"

	"collisions/internal/storage"
)

// statements is the six-table collision schema in SQLite dialect, in
// foreign-key dependency order. Dates are stored as TEXT; SQLite has no
// native DATE type.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS boroughs (
		borough_id   INTEGER PRIMARY KEY,
		borough_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_types (
		vehicle_type_id   INTEGER PRIMARY KEY,
		vehicle_type_desc TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS factors (
		factor_id   INTEGER PRIMARY KEY,
		factor_desc TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS collisions (
		collision_id                  INTEGER PRIMARY KEY,
		crash_date                    TEXT,
		crash_time                    TEXT,
		borough_id                    INTEGER REFERENCES boroughs(borough_id),
		zip_code                      TEXT,
		latitude                      REAL,
		longitude                     REAL,
		location                      TEXT,
		on_street_name                TEXT,
		off_street_name               TEXT,
		cross_street_name             TEXT,
		number_of_persons_injured     INTEGER NOT NULL CHECK (number_of_persons_injured >= 0),
		number_of_persons_killed      INTEGER NOT NULL CHECK (number_of_persons_killed >= 0),
		number_of_pedestrians_injured INTEGER NOT NULL CHECK (number_of_pedestrians_injured >= 0),
		number_of_pedestrians_killed  INTEGER NOT NULL CHECK (number_of_pedestrians_killed >= 0),
		number_of_cyclist_injured     INTEGER NOT NULL CHECK (number_of_cyclist_injured >= 0),
		number_of_cyclist_killed      INTEGER NOT NULL CHECK (number_of_cyclist_killed >= 0),
		number_of_motorist_injured    INTEGER NOT NULL CHECK (number_of_motorist_injured >= 0),
		number_of_motorist_killed     INTEGER NOT NULL CHECK (number_of_motorist_killed >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS collision_vehicles (
		collision_id    INTEGER NOT NULL REFERENCES collisions(collision_id),
		vehicle_order   INTEGER NOT NULL CHECK (vehicle_order BETWEEN 1 AND 5),
		vehicle_type_id INTEGER NOT NULL REFERENCES vehicle_types(vehicle_type_id),
		PRIMARY KEY (collision_id, vehicle_order)
	)`,
	`CREATE TABLE IF NOT EXISTS collision_factors (
		collision_id INTEGER NOT NULL REFERENCES collisions(collision_id),
		factor_order INTEGER NOT NULL CHECK (factor_order BETWEEN 1 AND 5),
		factor_id    INTEGER NOT NULL REFERENCES factors(factor_id),
		PRIMARY KEY (collision_id, factor_order)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_crash_date ON collisions (crash_date)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_borough ON collisions (borough_id)`,
}

// bootstrapDDL creates the collision schema. SQLite has no schema prefixes;
// schemaName is ignored.
func bootstrapDDL(ctx context.Context, repo storage.Repository, _ string) error {
	for _, stmt := range statements {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite ddl: %w", err)
		}
	}
	return nil
}
