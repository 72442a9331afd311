package postgres

import (
	"context"
	"fmt"

	"collisions/internal/storage"
)

// statements is the six-table collision schema in Postgres dialect, in
// foreign-key dependency order. Surrogate keys are client-assigned by the
// resolver, so the lookup PKs are plain BIGINT, not serials.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS %[1]sboroughs (
		borough_id   BIGINT PRIMARY KEY,
		borough_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]svehicle_types (
		vehicle_type_id   BIGINT PRIMARY KEY,
		vehicle_type_desc TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]sfactors (
		factor_id   BIGINT PRIMARY KEY,
		factor_desc TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]scollisions (
		collision_id                  BIGINT PRIMARY KEY,
		crash_date                    DATE,
		crash_time                    TEXT,
		borough_id                    BIGINT REFERENCES %[1]sboroughs(borough_id),
		zip_code                      TEXT,
		latitude                      DOUBLE PRECISION,
		longitude                     DOUBLE PRECISION,
		location                      TEXT,
		on_street_name                TEXT,
		off_street_name               TEXT,
		cross_street_name             TEXT,
		number_of_persons_injured     BIGINT NOT NULL CHECK (number_of_persons_injured >= 0),
		number_of_persons_killed      BIGINT NOT NULL CHECK (number_of_persons_killed >= 0),
		number_of_pedestrians_injured BIGINT NOT NULL CHECK (number_of_pedestrians_injured >= 0),
		number_of_pedestrians_killed  BIGINT NOT NULL CHECK (number_of_pedestrians_killed >= 0),
		number_of_cyclist_injured     BIGINT NOT NULL CHECK (number_of_cyclist_injured >= 0),
		number_of_cyclist_killed      BIGINT NOT NULL CHECK (number_of_cyclist_killed >= 0),
		number_of_motorist_injured    BIGINT NOT NULL CHECK (number_of_motorist_injured >= 0),
		number_of_motorist_killed     BIGINT NOT NULL CHECK (number_of_motorist_killed >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]scollision_vehicles (
		collision_id    BIGINT NOT NULL REFERENCES %[1]scollisions(collision_id),
		vehicle_order   INT NOT NULL CHECK (vehicle_order BETWEEN 1 AND 5),
		vehicle_type_id BIGINT NOT NULL REFERENCES %[1]svehicle_types(vehicle_type_id),
		PRIMARY KEY (collision_id, vehicle_order)
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]scollision_factors (
		collision_id BIGINT NOT NULL REFERENCES %[1]scollisions(collision_id),
		factor_order INT NOT NULL CHECK (factor_order BETWEEN 1 AND 5),
		factor_id    BIGINT NOT NULL REFERENCES %[1]sfactors(factor_id),
		PRIMARY KEY (collision_id, factor_order)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_crash_date ON %[1]scollisions (crash_date)`,
	`CREATE INDEX IF NOT EXISTS idx_collisions_borough ON %[1]scollisions (borough_id)`,
	`CREATE INDEX IF NOT EXISTS idx_collision_factors_factor ON %[1]scollision_factors (factor_id)`,
}

// bootstrapDDL creates the collision schema, optionally under schemaName.
func bootstrapDDL(ctx context.Context, repo storage.Repository, schemaName string) error {
	prefix := ""
	if schemaName != "" {
		if err := repo.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgIdent(schemaName)); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		prefix = pgIdent(schemaName) + "."
	}
	for _, stmt := range statements {
		if err := repo.Exec(ctx, fmt.Sprintf(stmt, prefix)); err != nil {
			return fmt.Errorf("postgres ddl: %w", err)
		}
	}
	return nil
}
