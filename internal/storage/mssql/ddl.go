package mssql

import (
	"context"
	"fmt"

	"collisions/internal/storage"
)

// statements is the six-table collision schema in T-SQL, in foreign-key
// dependency order. SQL Server has no CREATE TABLE IF NOT EXISTS, so each
// statement guards on sys.objects.
var statements = []string{
	`IF OBJECT_ID(N'%[1]sboroughs', N'U') IS NULL
	CREATE TABLE %[1]sboroughs (
		borough_id   BIGINT PRIMARY KEY,
		borough_name NVARCHAR(64) NOT NULL UNIQUE
	)`,
	`IF OBJECT_ID(N'%[1]svehicle_types', N'U') IS NULL
	CREATE TABLE %[1]svehicle_types (
		vehicle_type_id   BIGINT PRIMARY KEY,
		vehicle_type_desc NVARCHAR(255) NOT NULL UNIQUE
	)`,
	`IF OBJECT_ID(N'%[1]sfactors', N'U') IS NULL
	CREATE TABLE %[1]sfactors (
		factor_id   BIGINT PRIMARY KEY,
		factor_desc NVARCHAR(255) NOT NULL UNIQUE
	)`,
	`IF OBJECT_ID(N'%[1]scollisions', N'U') IS NULL
	CREATE TABLE %[1]scollisions (
		collision_id                  BIGINT PRIMARY KEY,
		crash_date                    DATE NULL,
		crash_time                    NVARCHAR(8) NULL,
		borough_id                    BIGINT NULL REFERENCES %[1]sboroughs(borough_id),
		zip_code                      NVARCHAR(16) NULL,
		latitude                      FLOAT NULL,
		longitude                     FLOAT NULL,
		location                      NVARCHAR(64) NULL,
		on_street_name                NVARCHAR(255) NULL,
		off_street_name               NVARCHAR(255) NULL,
		cross_street_name             NVARCHAR(255) NULL,
		number_of_persons_injured     BIGINT NOT NULL,
		number_of_persons_killed      BIGINT NOT NULL,
		number_of_pedestrians_injured BIGINT NOT NULL,
		number_of_pedestrians_killed  BIGINT NOT NULL,
		number_of_cyclist_injured     BIGINT NOT NULL,
		number_of_cyclist_killed      BIGINT NOT NULL,
		number_of_motorist_injured    BIGINT NOT NULL,
		number_of_motorist_killed     BIGINT NOT NULL
	)`,
	`IF OBJECT_ID(N'%[1]scollision_vehicles', N'U') IS NULL
	CREATE TABLE %[1]scollision_vehicles (
		collision_id    BIGINT NOT NULL REFERENCES %[1]scollisions(collision_id),
		vehicle_order   INT NOT NULL,
		vehicle_type_id BIGINT NOT NULL REFERENCES %[1]svehicle_types(vehicle_type_id),
		PRIMARY KEY (collision_id, vehicle_order)
	)`,
	`IF OBJECT_ID(N'%[1]scollision_factors', N'U') IS NULL
	CREATE TABLE %[1]scollision_factors (
		collision_id BIGINT NOT NULL REFERENCES %[1]scollisions(collision_id),
		factor_order INT NOT NULL,
		factor_id    BIGINT NOT NULL REFERENCES %[1]sfactors(factor_id),
		PRIMARY KEY (collision_id, factor_order)
	)`,
}

// bootstrapDDL creates the collision schema, optionally under schemaName
// (default dbo applies when empty).
func bootstrapDDL(ctx context.Context, repo storage.Repository, schemaName string) error {
	prefix := ""
	if schemaName != "" {
		prefix = schemaName + "."
	}
	for _, stmt := range statements {
		if err := repo.Exec(ctx, fmt.Sprintf(stmt, prefix)); err != nil {
			return fmt.Errorf("mssql ddl: %w", err)
		}
	}
	return nil
}
