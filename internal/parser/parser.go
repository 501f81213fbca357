// Package parser defines the contract shared by the source-format parsers.
package parser

import (
	"io"

	"chidata/internal/records"
)

// Parser turns a source stream into records, reporting how many rows were
// skipped as malformed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
