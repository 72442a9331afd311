// Package ingest wires the collision ETL end-to-end: CSV reading, row
// decoding, duplicate rejection, lookup resolution, and batched loading of
// the six-table schema into the configured storage backend.
//
// The pipeline is streaming and fail-soft: bad rows are counted and dropped
// before the database while the run continues; storage failures are fatal.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"collisions/internal/config"
	"collisions/internal/metrics"
	csvparser "collisions/internal/parser/csv"
	"collisions/internal/resolver"
	"collisions/internal/schema"
	"collisions/internal/storage"
	"collisions/pkg/records"
)

const (
	defaultBatchSize = 500

	// sampleLimit caps how many example messages each error aggregate keeps.
	sampleLimit = 3
)

// counters holds cross-goroutine statistics for a streaming run. All fields
// are updated atomically.
type counters struct {
	processed      atomic.Int64 // rows entering the decode stage
	parseErrors    atomic.Int64 // rows with an unparseable collision_id
	integritySkips atomic.Int64 // later rows of a duplicate collision_id
	csvSkips       atomic.Int64 // malformed/wrong-width CSV lines
	collisions     atomic.Int64 // fact rows accepted by the database
	vehicleLinks   atomic.Int64 // collision_vehicles rows accepted
	factorLinks    atomic.Int64 // collision_factors rows accepted
	batches        atomic.Int64 // storage batches flushed
}

// Summary is the end-of-run accounting reported to callers.
//
// Invariant over data rows: processed == collisions + parse_errors +
// integrity_skips (csv_skips never reach the decode stage).
type Summary struct {
	Processed      int64
	ParseErrors    int64
	IntegritySkips int64
	CSVSkips       int64

	Collisions   int64
	VehicleLinks int64
	FactorLinks  int64
	Batches      int64

	Boroughs     int
	VehicleTypes int
	Factors      int

	Elapsed time.Duration
}

// Skipped is the total number of input rows that did not reach the database.
func (s Summary) Skipped() int64 {
	return s.ParseErrors + s.IntegritySkips + s.CSVSkips
}

// resolvedRow is one fact row with its junction rows and the lookup entries
// first seen on this row. Lookups ride along with the row so the flush can
// insert them before the facts that reference them without sharing resolver
// state across goroutines.
type resolvedRow struct {
	fact     *schema.Collision
	vehicles []schema.Junction
	factors  []schema.Junction
	lookups  resolver.NewLookups
}

// Function variables used to introduce test seams. In production these point
// to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = func(ctx context.Context, cfg config.Source) (io.ReadCloser, error) {
		switch cfg.Kind {
		case "file":
			return newFileSource(cfg.File.Path).Open(ctx)
		default:
			return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
		}
	}
)

// Run opens the configured storage backend, optionally bootstraps the schema,
// and executes the pipeline. The returned Summary is valid even on error for
// whatever part of the run completed.
func Run(ctx context.Context, cfg config.Ingest) (Summary, error) {
	start := time.Now()

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:   cfg.Storage.Kind,
		DSN:    cfg.Storage.DB.DSN,
		Schema: cfg.Storage.DB.Schema,
	})
	if err != nil {
		cerr := &ConnectivityError{Op: "open", Err: err}
		metrics.RecordStep(cfg.Job, "open", cerr, time.Since(start))
		return Summary{}, cerr
	}
	defer repo.Close()
	metrics.RecordStep(cfg.Job, "open", nil, time.Since(start))

	if cfg.Storage.DB.AutoCreateSchema {
		t := time.Now()
		err := storage.EnsureSchema(ctx, cfg.Storage.Kind, cfg.Storage.DB.Schema, repo)
		metrics.RecordStep(cfg.Job, "ddl", err, time.Since(t))
		if err != nil {
			return Summary{}, &ConnectivityError{Op: "ddl", Err: err}
		}
	}

	return RunWith(ctx, cfg, repo)
}

// RunWith executes the streaming pipeline against an already-open repository.
//
// Concurrency model:
//
//	Reader (CSV stream → decode → dedup → resolve; 1 goroutine)
//	     → bounded channel of resolved rows
//	     → Loader (batched CopyInto per table, FK order; 1 goroutine)
//
// A single writer per destination keeps the client-assigned surrogate keys
// and the lookups-before-facts ordering trivially correct.
func RunWith(ctx context.Context, cfg config.Ingest, repo storage.Repository) (Summary, error) {
	start := time.Now()

	p, err := buildParser(cfg.Parser)
	if err != nil {
		return Summary{}, err
	}

	batchSize := cfg.Runtime.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var stats counters
	parseAgg := newErrAgg(sampleLimit)
	integrityAgg := newErrAgg(sampleLimit)
	csvAgg := newErrAgg(sampleLimit)

	res := resolver.New()
	seen := newSeenSet(0)

	rowCh := make(chan resolvedRow, batchSize)

	g, gctx := errgroup.WithContext(ctx)

	// Reader: parse, decode, dedup, resolve.
	g.Go(func() error {
		defer close(rowCh)

		src, err := openSourceFn(gctx, cfg.Source)
		if err != nil {
			return fmt.Errorf("source open: %w", err)
		}
		defer src.Close()

		onCSVErr := func(line int, err error) {
			csvAgg.add(fmt.Sprintf("line=%d: %v", line, err))
			stats.csvSkips.Add(1)
		}

		emit := func(line int, rec records.Record) error {
			stats.processed.Add(1)

			c, err := decode(line, rec)
			if err != nil {
				parseAgg.add(err.Error())
				stats.parseErrors.Add(1)
				return nil
			}

			if !seen.Add(rec.String("collision_id")) {
				e := &RowError{Line: line, Kind: KindIntegrity,
					Err: fmt.Errorf("duplicate collision_id %d", c.CollisionID)}
				integrityAgg.add(e.Error())
				stats.integritySkips.Add(1)
				return nil
			}

			if id, ok := res.Borough(rec.String("borough")); ok {
				c.BoroughID = &id
			}

			var vehicles, factors []schema.Junction
			for i := 0; i < schema.MaxOrdinal; i++ {
				if vt := c.VehicleTypes[i]; vt != nil {
					if id, ok := res.VehicleType(*vt); ok {
						vehicles = append(vehicles, schema.Junction{
							CollisionID: c.CollisionID, Ordinal: i + 1, LookupID: id,
						})
					}
				}
				if f := c.Factors[i]; f != nil {
					if id, ok := res.Factor(*f); ok {
						factors = append(factors, schema.Junction{
							CollisionID: c.CollisionID, Ordinal: i + 1, LookupID: id,
						})
					}
				}
			}

			row := resolvedRow{
				fact:     c,
				vehicles: vehicles,
				factors:  factors,
				lookups:  res.DrainNew(),
			}

			select {
			case rowCh <- row:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return p.Stream(gctx, src, emit, onCSVErr)
	})

	// Loader: batch resolved rows and flush each batch in FK order.
	g.Go(func() error {
		_, err := storage.LoadBatches(gctx, rowCh, batchSize, func(ctx context.Context, batch []resolvedRow) (int64, error) {
			return flushBatch(ctx, repo, batch, &stats)
		})
		return err
	})

	runErr := g.Wait()

	logErrSamples("parse errors", parseAgg)
	logErrSamples("duplicate skips", integrityAgg)
	logErrSamples("csv skips", csvAgg)

	sum := summarize(&stats, res, time.Since(start))
	logSummary(cfg.Job, sum)
	recordRunMetrics(cfg.Job, sum, runErr)

	return sum, runErr
}

// flushBatch persists one batch: new lookups first, then facts, then
// junctions, so foreign keys always resolve. It returns the number of fact
// rows the database accepted.
func flushBatch(ctx context.Context, repo storage.Repository, batch []resolvedRow, stats *counters) (int64, error) {
	var nl resolver.NewLookups
	factRows := make([][]any, 0, len(batch))
	var vehicles, factors []schema.Junction

	for _, r := range batch {
		nl.Boroughs = append(nl.Boroughs, r.lookups.Boroughs...)
		nl.VehicleTypes = append(nl.VehicleTypes, r.lookups.VehicleTypes...)
		nl.Factors = append(nl.Factors, r.lookups.Factors...)
		factRows = append(factRows, r.fact.Row())
		vehicles = append(vehicles, r.vehicles...)
		factors = append(factors, r.factors...)
	}

	if len(nl.Boroughs) > 0 {
		if _, err := repo.CopyInto(ctx, tableBoroughs, schema.LookupRows(nl.Boroughs)); err != nil {
			return 0, &ConnectivityError{Op: "copy boroughs", Err: err}
		}
	}
	if len(nl.VehicleTypes) > 0 {
		if _, err := repo.CopyInto(ctx, tableVehicleTypes, schema.LookupRows(nl.VehicleTypes)); err != nil {
			return 0, &ConnectivityError{Op: "copy vehicle_types", Err: err}
		}
	}
	if len(nl.Factors) > 0 {
		if _, err := repo.CopyInto(ctx, tableFactors, schema.LookupRows(nl.Factors)); err != nil {
			return 0, &ConnectivityError{Op: "copy factors", Err: err}
		}
	}

	n, err := repo.CopyInto(ctx, tableCollisions, factRows)
	if err != nil {
		return n, &ConnectivityError{Op: "copy collisions", Err: err}
	}
	stats.collisions.Add(n)

	if len(vehicles) > 0 {
		vn, err := repo.CopyInto(ctx, tableCollisionVehicles, schema.JunctionRows(vehicles))
		if err != nil {
			return n, &ConnectivityError{Op: "copy collision_vehicles", Err: err}
		}
		stats.vehicleLinks.Add(vn)
	}
	if len(factors) > 0 {
		fn, err := repo.CopyInto(ctx, tableCollisionFactors, schema.JunctionRows(factors))
		if err != nil {
			return n, &ConnectivityError{Op: "copy collision_factors", Err: err}
		}
		stats.factorLinks.Add(fn)
	}

	stats.batches.Add(1)
	return n, nil
}

// buildParser maps parser configuration onto the CSV parser. The feed's
// irregular vehicle-type headers are canonicalized by default; a configured
// header_map overlays the defaults.
func buildParser(p config.Parser) (*csvparser.Parser, error) {
	switch p.Kind {
	case "csv", "":
		hm := make(map[string]string, len(DefaultHeaderMap))
		for k, v := range DefaultHeaderMap {
			hm[k] = v
		}
		for k, v := range p.Options.StringMap("header_map") {
			hm[k] = v
		}
		return csvparser.NewParser(csvparser.Options{
			HasHeader:      p.Options.Bool("has_header", true),
			Comma:          p.Options.Rune("comma", ','),
			TrimSpace:      p.Options.Bool("trim_space", true),
			ExpectedFields: p.Options.Int("expected_fields", 0),
			HeaderMap:      hm,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
}

func summarize(stats *counters, res *resolver.Resolver, elapsed time.Duration) Summary {
	b, vt, f := res.Counts()
	return Summary{
		Processed:      stats.processed.Load(),
		ParseErrors:    stats.parseErrors.Load(),
		IntegritySkips: stats.integritySkips.Load(),
		CSVSkips:       stats.csvSkips.Load(),
		Collisions:     stats.collisions.Load(),
		VehicleLinks:   stats.vehicleLinks.Load(),
		FactorLinks:    stats.factorLinks.Load(),
		Batches:        stats.batches.Load(),
		Boroughs:       b,
		VehicleTypes:   vt,
		Factors:        f,
		Elapsed:        elapsed,
	}
}

func logSummary(job string, s Summary) {
	log.Printf(
		"summary job=%s: processed=%d parse_errors=%d duplicate_skips=%d csv_skips=%d "+
			"collisions=%d vehicle_links=%d factor_links=%d batches=%d "+
			"boroughs=%d vehicle_types=%d factors=%d elapsed=%s",
		job,
		s.Processed, s.ParseErrors, s.IntegritySkips, s.CSVSkips,
		s.Collisions, s.VehicleLinks, s.FactorLinks, s.Batches,
		s.Boroughs, s.VehicleTypes, s.Factors,
		s.Elapsed.Truncate(time.Millisecond),
	)
}

func recordRunMetrics(job string, s Summary, runErr error) {
	metrics.RecordStep(job, "load", runErr, s.Elapsed)
	metrics.RecordRow(job, "processed", s.Processed)
	metrics.RecordRow(job, "parse_errors", s.ParseErrors)
	metrics.RecordRow(job, "integrity_skips", s.IntegritySkips)
	metrics.RecordRow(job, "csv_skips", s.CSVSkips)
	metrics.RecordRow(job, "collisions", s.Collisions)
	metrics.RecordRow(job, "vehicle_links", s.VehicleLinks)
	metrics.RecordRow(job, "factor_links", s.FactorLinks)
	metrics.RecordBatches(job, s.Batches)
}

// errAgg aggregates per-row error messages, keeping the first few verbatim.
type errAgg struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newErrAgg(limit int) *errAgg { return &errAgg{limit: limit} }

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

func logErrSamples(label string, a *errAgg) {
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d (showing first %d)", label, a.count, len(a.first))
	for i, s := range a.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}
