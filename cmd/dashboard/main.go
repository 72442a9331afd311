// Command dashboard serves the collision analytics web UI over a Postgres
// database previously loaded by the ingest command.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"collisions/internal/analytics"
	"collisions/internal/dashboard"
)

func main() {
	var (
		addr       string
		dsn        string
		schemaName string
	)

	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&dsn, "dsn", "", "Postgres DSN of the loaded collision database")
	flag.StringVar(&schemaName, "schema", "", "optional schema qualifying the collision tables")
	flag.Parse()

	if dsn == "" {
		log.Fatal("-dsn is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	store := analytics.NewStore(pool, schemaName)
	srv := dashboard.NewServer(dashboard.Config{Addr: addr}, store)

	log.Printf("dashboard: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
