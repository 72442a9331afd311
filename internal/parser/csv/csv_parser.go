// Package csv implements a streaming CSV parser for the collision feed. It
// avoids whole-file buffering and can handle very large inputs (multi-GB)
// safely; per-row problems are soft failures that are counted, not fatal.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"collisions/internal/parser"
	"collisions/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record for
	// headerless input. Rows with a different width are skipped (soft-fail)
	// and counted.
	ExpectedFields int

	// HeaderMap maps source header names (post simple normalization) to
	// canonical keys. Only applies when HasHeader is true.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// logLimit caps how many skipped rows are individually logged per input.
const logLimit = 400

// Parse consumes CSV records from r and returns the parsed rows along with
// the number of rows that were skipped due to parse errors or field-count
// mismatches. Intended for small inputs and tests; Stream is the production
// path.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	var out []records.Record
	skipped := 0
	err := p.Stream(context.Background(), r, func(_ int, rec records.Record) error {
		out = append(out, rec)
		return nil
	}, func(line int, err error) {
		if skipped < logLimit {
			log.Printf("skipping row %d: %v", line, err)
		}
		skipped++
	})
	return out, skipped, err
}

// Stream consumes CSV records from r and invokes emit for each well-formed
// row, in input order. Rows that fail to parse or have the wrong width are
// reported through onError (soft-fail) and the stream continues. A non-nil
// error from emit, a header read failure, or context cancellation aborts the
// stream.
//
// Memory stays bounded; the input is never buffered as a whole.
func (p *Parser) Stream(
	ctx context.Context,
	r io.Reader,
	emit func(line int, rec records.Record) error,
	onError func(line int, err error),
) error {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced after read so mismatches soft-fail instead of
	// aborting the whole run.
	cr.FieldsPerRecord = -1

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	line := 1 // header consumed already when present
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++

		if err != nil {
			if onError != nil {
				onError(line, fmt.Errorf("parse: %w", err))
			}
			continue
		}
		if len(headers) > 0 && len(row) != len(headers) {
			if onError != nil {
				onError(line, fmt.Errorf("incorrect number of fields: expected %d, got %d", len(headers), len(row)))
			}
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		if err := emit(line, rec); err != nil {
			return err
		}
	}
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores). It
// also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = c
	}
	return res
}
