// Package csv reads a delimited dataset export into records. Blank cells are
// absent (nil); everything else stays a string for the normalizer to type.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"chidata/internal/logging"
	"chidata/internal/records"
)

// Options configures the CSV parser behavior. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// LazyQuotes tolerates stray quotes inside unquoted fields.
	LazyQuotes bool

	// RawHeaders keeps header cells as written (BOM stripped, trimmed). When
	// false headers are lowercased and spaces become underscores.
	RawHeaders bool

	// HeaderMap maps source header names to canonical keys. It is consulted
	// before RawHeaders/lowercasing.
	HeaderMap map[string]string

	// MaxLoggedSkips caps how many skipped rows are logged individually.
	MaxLoggedSkips int
}

// Parser parses CSV input according to Options. Not safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.MaxLoggedSkips == 0 {
		opt.MaxLoggedSkips = 100
	}
	return &Parser{opt: opt}
}

const utf8BOM = "\uFEFF"

// Parse reads the header row and every body row from r. Rows whose width
// differs from the header, or that encoding/csv rejects, are skipped and
// counted rather than failing the parse.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := p.headers(h)

	var (
		out     []records.Record
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err == nil && len(row) != len(headers) {
			err = fmt.Errorf("expected %d fields, got %d", len(headers), len(row))
		}
		if err != nil {
			if skipped < p.opt.MaxLoggedSkips {
				logging.Warn().Int("line", line).Err(err).Msg("csv: skipping row")
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if val == "" {
				rec[headers[i]] = nil
			} else {
				rec[headers[i]] = val
			}
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

// Headers returns the canonical header row the parser would use for h.
func (p *Parser) Headers(h []string) []string { return p.headers(h) }

func (p *Parser) headers(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimSpace(strings.TrimPrefix(c, utf8BOM))
		}
		switch m, ok := p.opt.HeaderMap[c]; {
		case ok:
			res[i] = m
		case p.opt.RawHeaders:
			res[i] = c
		default:
			res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if res[i] == "" {
			res[i] = fmt.Sprintf("col_%d", i)
		}
	}
	return res
}
