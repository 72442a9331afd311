package csv

import (
	"context"
	"strings"
	"testing"

	"collisions/pkg/records"
)

func TestParseWithHeader(t *testing.T) {
	t.Parallel()

	in := "Collision ID,Borough\n1,BROOKLYN\n2,\n"
	p := NewParser(Options{HasHeader: true, TrimSpace: true})

	rows, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := rows[0].String("collision_id"); got != "1" {
		t.Errorf("collision_id = %q, want %q", got, "1")
	}
	if got := rows[0].String("borough"); got != "BROOKLYN" {
		t.Errorf("borough = %q, want %q", got, "BROOKLYN")
	}
	if rows[1]["borough"] != nil {
		t.Errorf("empty cell = %v, want nil", rows[1]["borough"])
	}
}

func TestParseSkipsWrongWidthRows(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\nonly_one\n3,4\n"
	p := NewParser(Options{HasHeader: true})

	rows, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestStreamHeaderMapAndBOM(t *testing.T) {
	t.Parallel()

	in := "\uFEFF" + "Vehicle Type Code1,Zip Code\nSedan,11201\n"
	p := NewParser(Options{
		HasHeader: true,
		HeaderMap: map[string]string{"vehicle_type_code1": "vehicle_type_code_1"},
	})

	var got records.Record
	err := p.Stream(context.Background(), strings.NewReader(in),
		func(_ int, rec records.Record) error {
			got = rec
			return nil
		}, nil)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got.String("vehicle_type_code_1") != "Sedan" {
		t.Errorf("vehicle_type_code_1 = %q, want Sedan", got.String("vehicle_type_code_1"))
	}
	if got.String("zip_code") != "11201" {
		t.Errorf("zip_code = %q, want 11201", got.String("zip_code"))
	}
}

func TestStreamReportsLineNumbers(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\nbroken\n"
	p := NewParser(Options{HasHeader: true})

	var badLine int
	err := p.Stream(context.Background(), strings.NewReader(in),
		func(_ int, _ records.Record) error { return nil },
		func(line int, _ error) { badLine = line })
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if badLine != 3 {
		t.Errorf("bad line = %d, want 3", badLine)
	}
}

func TestStreamCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser(Options{HasHeader: true})
	err := p.Stream(ctx, strings.NewReader("a\n1\n"),
		func(_ int, _ records.Record) error { return nil }, nil)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestHeaderlessWithExpectedFields(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{ExpectedFields: 2})
	rows, skipped, err := p.Parse(strings.NewReader("1,2\n3\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 1 || len(rows) != 1 {
		t.Fatalf("rows=%d skipped=%d, want 1/1", len(rows), skipped)
	}
	if rows[0].String("col_0") != "1" {
		t.Errorf("col_0 = %q, want 1", rows[0].String("col_0"))
	}
}
