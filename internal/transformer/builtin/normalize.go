package builtin

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chidata/internal/records"
)

// Normalize collapses runs of whitespace, converts blank strings to nil and,
// when Capitalize is set, rewrites every word as first letter upper case and
// the rest lower case. Columns listed in Exempt keep their original casing
// but are still trimmed.
type Normalize struct {
	Capitalize bool
	Exempt     []string
}

func (n Normalize) Apply(in []records.Record) ([]records.Record, error) {
	exempt := make(map[string]struct{}, len(n.Exempt))
	for _, c := range n.Exempt {
		exempt[c] = struct{}{}
	}
	cz := NewCapitalizer()
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.ReplaceAll(s, "\u00a0", " ")
			if _, skip := exempt[k]; skip || !n.Capitalize {
				s = strings.TrimSpace(s)
			} else {
				s = cz.Words(s)
			}
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in, nil
}

// Capitalizer rewrites words as upper-case first letter followed by lower
// case. It is not safe for concurrent use.
type Capitalizer struct {
	upper cases.Caser
	lower cases.Caser
}

// NewCapitalizer returns a Capitalizer using language-neutral case mappings.
func NewCapitalizer() *Capitalizer {
	return &Capitalizer{
		upper: cases.Upper(language.Und),
		lower: cases.Lower(language.Und),
	}
}

// Word capitalizes a single word. "312CHICAGO" becomes "312chicago": only
// the very first rune is upper-cased.
func (c *Capitalizer) Word(w string) string {
	if w == "" {
		return w
	}
	_, size := utf8.DecodeRuneInString(w)
	return c.upper.String(w[:size]) + c.lower.String(w[size:])
}

// Words splits s on whitespace, capitalizes each word and joins them with
// single spaces.
func (c *Capitalizer) Words(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = c.Word(f)
	}
	return strings.Join(fields, " ")
}
