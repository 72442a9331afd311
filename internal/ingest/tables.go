package ingest

import (
	"collisions/internal/schema"
	"collisions/internal/storage"
)

// Destination tables in flush order. Lookups load before facts, facts before
// junctions, so foreign keys always resolve inside one batch.
var (
	tableBoroughs = storage.Table{
		Name:    schema.TableBoroughs,
		Columns: schema.BoroughColumns,
		Key:     []string{"borough_id"},
	}
	tableVehicleTypes = storage.Table{
		Name:    schema.TableVehicleTypes,
		Columns: schema.VehicleTypeColumns,
		Key:     []string{"vehicle_type_id"},
	}
	tableFactors = storage.Table{
		Name:    schema.TableFactors,
		Columns: schema.FactorColumns,
		Key:     []string{"factor_id"},
	}
	tableCollisions = storage.Table{
		Name:    schema.TableCollisions,
		Columns: schema.CollisionColumns,
		Key:     []string{"collision_id"},
	}
	tableCollisionVehicles = storage.Table{
		Name:    schema.TableCollisionVehicle,
		Columns: schema.CollisionVehicleColumns,
		Key:     []string{"collision_id", "vehicle_order"},
	}
	tableCollisionFactors = storage.Table{
		Name:    schema.TableCollisionFactor,
		Columns: schema.CollisionFactorColumns,
		Key:     []string{"collision_id", "factor_order"},
	}
)
