package ingest

import "fmt"

// ErrorKind classifies recoverable per-row failures.
type ErrorKind string

const (
	// KindParse marks an unparseable required field; the row is skipped and
	// counted.
	KindParse ErrorKind = "parse"

	// KindIntegrity marks a duplicate collision identifier; the later row is
	// skipped and counted (keep-first policy).
	KindIntegrity ErrorKind = "integrity"
)

// RowError is a recoverable error attached to a specific input line. Rows
// with a RowError are dropped before the database; the run continues.
type RowError struct {
	Line int
	Kind ErrorKind
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Line, e.Kind, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ConnectivityError wraps a failure to reach or write the target store. It is
// fatal: the run aborts, and whatever was committed before the failure
// remains valid.
type ConnectivityError struct {
	Op  string // e.g. "open", "ddl", "copy collisions"
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
