// Package parser defines the contract between raw-byte sources and the typed
// decode stage.
package parser

import (
	"io"

	"collisions/pkg/records"
)

// Parser turns raw bytes into records plus a count of soft-skipped rows.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
