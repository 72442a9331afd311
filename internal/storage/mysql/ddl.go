package mysql

import (
	"context"
	"fmt"

	"collisions/internal/storage"
)

// statements is the six-table collision schema in MySQL dialect, in
// foreign-key dependency order.
var statements = []string{
	"CREATE TABLE IF NOT EXISTS boroughs (" +
		" borough_id BIGINT PRIMARY KEY," +
		" borough_name VARCHAR(64) NOT NULL UNIQUE" +
		")",
	"CREATE TABLE IF NOT EXISTS vehicle_types (" +
		" vehicle_type_id BIGINT PRIMARY KEY," +
		" vehicle_type_desc VARCHAR(255) NOT NULL UNIQUE" +
		")",
	"CREATE TABLE IF NOT EXISTS factors (" +
		" factor_id BIGINT PRIMARY KEY," +
		" factor_desc VARCHAR(255) NOT NULL UNIQUE" +
		")",
	"CREATE TABLE IF NOT EXISTS collisions (" +
		" collision_id BIGINT PRIMARY KEY," +
		" crash_date DATE NULL," +
		" crash_time VARCHAR(8) NULL," +
		" borough_id BIGINT NULL," +
		" zip_code VARCHAR(16) NULL," +
		" latitude DOUBLE NULL," +
		" longitude DOUBLE NULL," +
		" location VARCHAR(64) NULL," +
		" on_street_name VARCHAR(255) NULL," +
		" off_street_name VARCHAR(255) NULL," +
		" cross_street_name VARCHAR(255) NULL," +
		" number_of_persons_injured BIGINT NOT NULL," +
		" number_of_persons_killed BIGINT NOT NULL," +
		" number_of_pedestrians_injured BIGINT NOT NULL," +
		" number_of_pedestrians_killed BIGINT NOT NULL," +
		" number_of_cyclist_injured BIGINT NOT NULL," +
		" number_of_cyclist_killed BIGINT NOT NULL," +
		" number_of_motorist_injured BIGINT NOT NULL," +
		" number_of_motorist_killed BIGINT NOT NULL," +
		" CONSTRAINT fk_collisions_borough FOREIGN KEY (borough_id) REFERENCES boroughs(borough_id)" +
		")",
	"CREATE TABLE IF NOT EXISTS collision_vehicles (" +
		" collision_id BIGINT NOT NULL," +
		" vehicle_order INT NOT NULL," +
		" vehicle_type_id BIGINT NOT NULL," +
		" PRIMARY KEY (collision_id, vehicle_order)," +
		" CONSTRAINT fk_cv_collision FOREIGN KEY (collision_id) REFERENCES collisions(collision_id)," +
		" CONSTRAINT fk_cv_vehicle_type FOREIGN KEY (vehicle_type_id) REFERENCES vehicle_types(vehicle_type_id)" +
		")",
	"CREATE TABLE IF NOT EXISTS collision_factors (" +
		" collision_id BIGINT NOT NULL," +
		" factor_order INT NOT NULL," +
		" factor_id BIGINT NOT NULL," +
		" PRIMARY KEY (collision_id, factor_order)," +
		" CONSTRAINT fk_cf_collision FOREIGN KEY (collision_id) REFERENCES collisions(collision_id)," +
		" CONSTRAINT fk_cf_factor FOREIGN KEY (factor_id) REFERENCES factors(factor_id)" +
		")",
}

// bootstrapDDL creates the collision schema. The target database comes from
// the DSN; schemaName is ignored.
func bootstrapDDL(ctx context.Context, repo storage.Repository, _ string) error {
	for _, stmt := range statements {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("mysql ddl: %w", err)
		}
	}
	return nil
}
