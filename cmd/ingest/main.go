// Command ingest loads a motor-vehicle-collisions CSV export into the
// normalized six-table schema of the configured storage backend.
//
// Exit status: 0 on a fully clean run, 1 on a fatal error or when any input
// rows were skipped (partial success).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"collisions/internal/config"
	"collisions/internal/ingest"
	"collisions/internal/metrics"
	"collisions/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "collisions/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		csvPath           string
		dsn               string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/collisions.json", "ingest config JSON path")
	flag.StringVar(&csvPath, "csv", "", "override source.file.path from the config")
	flag.StringVar(&dsn, "dsn", "", "override storage.db.dsn from the config")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}

	var cfg config.Ingest
	err = json.NewDecoder(f).Decode(&cfg)
	f.Close()
	if err != nil {
		fatalf("decode config: %v", err)
	}

	if csvPath != "" {
		cfg.Source.Kind = "file"
		cfg.Source.File.Path = csvPath
	}
	if dsn != "" {
		cfg.Storage.DB.DSN = dsn
	}

	issues := config.ValidateIngest(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(cfg.Job, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("ingest: job=%s source=%s parser=%s storage=%s",
			cfg.Job, cfg.Source.Kind, cfg.Parser.Kind, cfg.Storage.Kind)
	}

	sum, err := ingest.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}

	// Skipped rows mean partial success; signal it to callers.
	if sum.Skipped() > 0 {
		os.Exit(1)
	}
}

// setupMetrics decides the metrics backend: flag → env → default.
func setupMetrics(job, backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		if job == "" {
			job = "collisions"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v backend=%v job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
