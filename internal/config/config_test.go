package config

import (
	"encoding/json"
	"testing"
)

const sampleJSON = `{
  "job": "collisions_nyc",
  "source": { "kind": "file", "file": { "path": "crashes.csv" } },
  "parser": { "kind": "csv", "options": { "has_header": true, "comma": ";", "batch": 7,
              "header_map": { "vehicle_type_code1": "vehicle_type_code_1" } } },
  "storage": { "kind": "postgres", "db": { "dsn": "postgresql://localhost/c", "schema": "public", "auto_create_schema": true } },
  "runtime": { "batch_size": 250 }
}`

func TestDecodeIngest(t *testing.T) {
	t.Parallel()

	var in Ingest
	if err := json.Unmarshal([]byte(sampleJSON), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if in.Job != "collisions_nyc" {
		t.Errorf("Job = %q", in.Job)
	}
	if in.Source.Kind != "file" || in.Source.File.Path != "crashes.csv" {
		t.Errorf("Source = %+v", in.Source)
	}
	if in.Storage.Kind != "postgres" || !in.Storage.DB.AutoCreateSchema {
		t.Errorf("Storage = %+v", in.Storage)
	}
	if in.Runtime.BatchSize != 250 {
		t.Errorf("BatchSize = %d", in.Runtime.BatchSize)
	}

	opt := in.Parser.Options
	if !opt.Bool("has_header", false) {
		t.Error("has_header lost")
	}
	if opt.Rune("comma", ',') != ';' {
		t.Error("comma lost")
	}
	if opt.Int("batch", 0) != 7 {
		t.Error("int coercion failed")
	}
	hm := opt.StringMap("header_map")
	if hm["vehicle_type_code1"] != "vehicle_type_code_1" {
		t.Errorf("header_map = %v", hm)
	}
}

func TestOptionsDefaults(t *testing.T) {
	t.Parallel()

	var o Options
	if o.String("missing", "d") != "d" {
		t.Error("String default")
	}
	if o.Bool("missing", true) != true {
		t.Error("Bool default")
	}
	if o.Int("missing", 42) != 42 {
		t.Error("Int default")
	}
	if o.Rune("missing", ',') != ',' {
		t.Error("Rune default")
	}
	if got := o.StringMap("missing"); len(got) != 0 {
		t.Errorf("StringMap = %v", got)
	}
}

func TestOptionsNullDecodesToEmptyMap(t *testing.T) {
	t.Parallel()

	var p Parser
	if err := json.Unmarshal([]byte(`{"kind":"csv","options":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Options == nil {
		t.Fatal("Options is nil, want empty map")
	}
}

func validIngest() Ingest {
	return Ingest{
		Job:     "job",
		Source:  Source{Kind: "file", File: SourceFile{Path: "in.csv"}},
		Parser:  Parser{Kind: "csv", Options: Options{}},
		Storage: Storage{Kind: "postgres", DB: DBConfig{DSN: "postgresql://x"}},
		Runtime: RuntimeConfig{BatchSize: 100},
	}
}

func errorsIn(issues []Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

func TestValidateIngestClean(t *testing.T) {
	t.Parallel()

	if issues := ValidateIngest(validIngest()); errorsIn(issues) != 0 {
		t.Fatalf("unexpected errors: %v", issues)
	}
}

func TestValidateIngestErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Ingest)
		path   string
	}{
		{"empty job", func(in *Ingest) { in.Job = " " }, "job"},
		{"empty source kind", func(in *Ingest) { in.Source.Kind = "" }, "source.kind"},
		{"file without path", func(in *Ingest) { in.Source.File.Path = "" }, "source.file.path"},
		{"empty parser kind", func(in *Ingest) { in.Parser.Kind = "" }, "parser.kind"},
		{"empty storage kind", func(in *Ingest) { in.Storage.Kind = "" }, "storage.kind"},
		{"empty dsn", func(in *Ingest) { in.Storage.DB.DSN = "" }, "storage.db.dsn"},
		{"negative batch", func(in *Ingest) { in.Runtime.BatchSize = -1 }, "runtime.batch_size"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := validIngest()
			tc.mutate(&in)

			issues := ValidateIngest(in)
			if errorsIn(issues) == 0 {
				t.Fatalf("no errors reported, issues=%v", issues)
			}
			found := false
			for _, i := range issues {
				if i.Path == tc.path && i.Severity == SeverityError {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at path %q: %v", tc.path, issues)
			}
		})
	}
}

func TestValidateIngestWarnings(t *testing.T) {
	t.Parallel()

	in := validIngest()
	in.Storage.Kind = "oracle"
	in.Runtime.BatchSize = 0

	issues := ValidateIngest(in)
	if errorsIn(issues) != 0 {
		t.Fatalf("unexpected errors: %v", issues)
	}
	if len(issues) < 2 {
		t.Fatalf("expected warnings, got %v", issues)
	}
}
