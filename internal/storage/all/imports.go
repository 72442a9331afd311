// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories and DDL bootstrappers with the storage
// package.
//
// Importing this package makes the following storage kinds available at
// runtime:
//
//   - "postgres" (collisions/internal/storage/postgres)
//   - "sqlite"   (collisions/internal/storage/sqlite)
//   - "mysql"    (collisions/internal/storage/mysql)
//   - "mssql"    (collisions/internal/storage/mssql)
//
// If you want a binary that supports only a subset of backends, define an
// alternative wiring package that imports only the required ones.
package all

import (
	_ "collisions/internal/storage/mssql"
	_ "collisions/internal/storage/mysql"
	_ "collisions/internal/storage/postgres"
	_ "collisions/internal/storage/sqlite"
)
