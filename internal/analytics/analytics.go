// Package analytics runs read-side aggregate queries over the loaded
// collision schema: headline totals, daily trends, per-borough breakdowns,
// top contributing factors, and the most recent crashes.
//
// The package targets the Postgres backend (pgx); the dashboard is its main
// consumer. All queries honor an optional date range and borough filter.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// Querier is the subset of pgxpool.Pool the store needs; tests substitute a
// fake.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Filter narrows every query to a date range and/or a borough. Nil fields
// mean "no constraint".
type Filter struct {
	From      *time.Time
	To        *time.Time
	BoroughID *int64
}

// where renders the filter as a SQL predicate over the aliased collisions
// table ("c"). Returns the clause (starting with " WHERE" or empty) and its
// positional args.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("c.crash_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("c.crash_date <= $%d", len(args)))
	}
	if f.BoroughID != nil {
		args = append(args, *f.BoroughID)
		conds = append(conds, fmt.Sprintf("c.borough_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Totals are the headline counters for the filtered slice of the data.
type Totals struct {
	Collisions     int64 `json:"collisions"`
	PersonsInjured int64 `json:"persons_injured"`
	PersonsKilled  int64 `json:"persons_killed"`
	Pedestrians    int64 `json:"pedestrians_injured"`
	Cyclists       int64 `json:"cyclists_injured"`
	Motorists      int64 `json:"motorists_injured"`
}

// DailyPoint is one day of the trend series.
type DailyPoint struct {
	Day        time.Time `json:"day"`
	Collisions int64     `json:"collisions"`
	Injured    int64     `json:"injured"`
	Killed     int64     `json:"killed"`
}

// BoroughStat is the per-borough breakdown. Collisions with no borough are
// grouped under "(unknown)".
type BoroughStat struct {
	Borough    string `json:"borough"`
	Collisions int64  `json:"collisions"`
	Injured    int64  `json:"injured"`
	Killed     int64  `json:"killed"`
}

// FactorStat is one contributing factor with its collision count.
type FactorStat struct {
	Factor     string `json:"factor"`
	Collisions int64  `json:"collisions"`
}

// Crash is one recent collision for the detail listing.
type Crash struct {
	CollisionID int64      `json:"collision_id"`
	CrashDate   *time.Time `json:"crash_date"`
	CrashTime   *string    `json:"crash_time"`
	Borough     *string    `json:"borough"`
	OnStreet    *string    `json:"on_street"`
	Injured     int64      `json:"injured"`
	Killed      int64      `json:"killed"`
}

// Overview bundles every dashboard section for one filter.
type Overview struct {
	Totals     Totals        `json:"totals"`
	Daily      []DailyPoint  `json:"daily"`
	Boroughs   []BoroughStat `json:"boroughs"`
	TopFactors []FactorStat  `json:"top_factors"`
	Recent     []Crash       `json:"recent"`
}

// Store runs the aggregate queries against one schema.
type Store struct {
	q      Querier
	prefix string // rendered schema prefix, "" or `"name".`
}

// NewStore wraps a pgx querier. schemaName optionally qualifies table names.
func NewStore(q Querier, schemaName string) *Store {
	s := &Store{q: q}
	if schemaName != "" {
		s.prefix = pgx.Identifier{schemaName}.Sanitize() + "."
	}
	return s
}

func (s *Store) table(name string) string { return s.prefix + name }

// Totals returns the headline counters for the filter.
func (s *Store) Totals(ctx context.Context, f Filter) (Totals, error) {
	where, args := f.where()
	q := fmt.Sprintf(`SELECT
			COUNT(*),
			COALESCE(SUM(c.number_of_persons_injured), 0),
			COALESCE(SUM(c.number_of_persons_killed), 0),
			COALESCE(SUM(c.number_of_pedestrians_injured), 0),
			COALESCE(SUM(c.number_of_cyclist_injured), 0),
			COALESCE(SUM(c.number_of_motorist_injured), 0)
		FROM %s AS c%s`, s.table("collisions"), where)

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return Totals{}, fmt.Errorf("totals: %w", err)
	}
	defer rows.Close()

	var t Totals
	if rows.Next() {
		if err := rows.Scan(&t.Collisions, &t.PersonsInjured, &t.PersonsKilled,
			&t.Pedestrians, &t.Cyclists, &t.Motorists); err != nil {
			return Totals{}, fmt.Errorf("totals scan: %w", err)
		}
	}
	return t, rows.Err()
}

// DailyTrend returns one point per crash date, ascending. Rows with a NULL
// crash_date are excluded.
func (s *Store) DailyTrend(ctx context.Context, f Filter) ([]DailyPoint, error) {
	where, args := f.where()
	if where == "" {
		where = " WHERE c.crash_date IS NOT NULL"
	} else {
		where += " AND c.crash_date IS NOT NULL"
	}
	q := fmt.Sprintf(`SELECT
			c.crash_date,
			COUNT(*),
			COALESCE(SUM(c.number_of_persons_injured), 0),
			COALESCE(SUM(c.number_of_persons_killed), 0)
		FROM %s AS c%s
		GROUP BY c.crash_date
		ORDER BY c.crash_date`, s.table("collisions"), where)

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	var out []DailyPoint
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Day, &p.Collisions, &p.Injured, &p.Killed); err != nil {
			return nil, fmt.Errorf("daily trend scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByBorough returns the breakdown ordered by collision count, descending.
func (s *Store) ByBorough(ctx context.Context, f Filter) ([]BoroughStat, error) {
	where, args := f.where()
	q := fmt.Sprintf(`SELECT
			COALESCE(b.borough_name, '(unknown)'),
			COUNT(*),
			COALESCE(SUM(c.number_of_persons_injured), 0),
			COALESCE(SUM(c.number_of_persons_killed), 0)
		FROM %s AS c
		LEFT JOIN %s AS b ON b.borough_id = c.borough_id%s
		GROUP BY 1
		ORDER BY 2 DESC`, s.table("collisions"), s.table("boroughs"), where)

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("by borough: %w", err)
	}
	defer rows.Close()

	var out []BoroughStat
	for rows.Next() {
		var b BoroughStat
		if err := rows.Scan(&b.Borough, &b.Collisions, &b.Injured, &b.Killed); err != nil {
			return nil, fmt.Errorf("by borough scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// TopFactors returns the most frequent contributing factors, counting each
// collision once per distinct factor.
func (s *Store) TopFactors(ctx context.Context, f Filter, limit int) ([]FactorStat, error) {
	if limit <= 0 {
		limit = 10
	}
	where, args := f.where()
	args = append(args, limit)
	q := fmt.Sprintf(`SELECT
			fa.factor_desc,
			COUNT(DISTINCT cf.collision_id)
		FROM %s AS c
		JOIN %s AS cf ON cf.collision_id = c.collision_id
		JOIN %s AS fa ON fa.factor_id = cf.factor_id%s
		GROUP BY fa.factor_desc
		ORDER BY 2 DESC
		LIMIT $%d`,
		s.table("collisions"), s.table("collision_factors"), s.table("factors"),
		where, len(args))

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("top factors: %w", err)
	}
	defer rows.Close()

	var out []FactorStat
	for rows.Next() {
		var fs FactorStat
		if err := rows.Scan(&fs.Factor, &fs.Collisions); err != nil {
			return nil, fmt.Errorf("top factors scan: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

// Recent returns the newest crashes by date, then id, descending.
func (s *Store) Recent(ctx context.Context, f Filter, limit int) ([]Crash, error) {
	if limit <= 0 {
		limit = 20
	}
	where, args := f.where()
	args = append(args, limit)
	q := fmt.Sprintf(`SELECT
			c.collision_id, c.crash_date, c.crash_time,
			b.borough_name, c.on_street_name,
			c.number_of_persons_injured, c.number_of_persons_killed
		FROM %s AS c
		LEFT JOIN %s AS b ON b.borough_id = c.borough_id%s
		ORDER BY c.crash_date DESC NULLS LAST, c.collision_id DESC
		LIMIT $%d`,
		s.table("collisions"), s.table("boroughs"), where, len(args))

	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var out []Crash
	for rows.Next() {
		var c Crash
		if err := rows.Scan(&c.CollisionID, &c.CrashDate, &c.CrashTime,
			&c.Borough, &c.OnStreet, &c.Injured, &c.Killed); err != nil {
			return nil, fmt.Errorf("recent scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Overview fetches every section concurrently.
func (s *Store) Overview(ctx context.Context, f Filter) (Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { ov.Totals, err = s.Totals(gctx, f); return })
	g.Go(func() (err error) { ov.Daily, err = s.DailyTrend(gctx, f); return })
	g.Go(func() (err error) { ov.Boroughs, err = s.ByBorough(gctx, f); return })
	g.Go(func() (err error) { ov.TopFactors, err = s.TopFactors(gctx, f, 10); return })
	g.Go(func() (err error) { ov.Recent, err = s.Recent(gctx, f, 20); return })

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}
