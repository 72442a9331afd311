// Package config defines the JSON-serializable configuration model for the
// collision ingest. It is intentionally small, explicit, and dependency-free
// so that ingest specs can be loaded from disk and passed through the program
// without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in ingest
//     files under configs/*.json.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":     "collisions_2023_2024",
//	  "source":  { "kind": "file", "file": { "path": "motor_vehicle_collisions.csv" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true, "trim_space": true } },
//	  "storage": { "kind": "postgres", "db": { "dsn": "postgresql://...", "auto_create_schema": true } },
//	  "runtime": { "batch_size": 500 }
//	}
package config

import "encoding/json"

// Ingest describes one full ingestion run in JSON. It is the top-level object
// decoded from an ingest file (e.g., configs/collisions.json).
type Ingest struct {
	// Job names the run; it is used for metrics labeling and log lines.
	Job string `json:"job"`

	// Source describes where the collision CSV comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Storage describes the relational target the six-table schema lives in.
	Storage Storage `json:"storage"`

	// Runtime controls batching.
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls batching for the load phase.
type RuntimeConfig struct {
	// BatchSize is the number of fact rows buffered between storage flushes.
	BatchSize int `json:"batch_size"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input CSV.
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into logical rows/columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include:
	//   has_header (bool), comma (string), trim_space (bool), header_map (object)
	Options Options `json:"options"`
}

// Storage selects the sink used to persist the normalized schema.
type Storage struct {
	// Kind selects the storage backend: "postgres", "sqlite", "mysql", "mssql".
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the backend connection string (e.g., postgresql://... for pgx).
	DSN string `json:"dsn"`

	// Schema optionally prefixes table names (e.g., "public"). Leave empty for
	// the backend default.
	Schema string `json:"schema"`

	// AutoCreateSchema creates the six destination tables at startup when they
	// do not exist yet.
	AutoCreateSchema bool `json:"auto_create_schema"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such
// as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object in JSON decodes to a non-nil, empty Options map. This
// simplifies call sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
