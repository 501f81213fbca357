// Package builtin contains the reusable transformers that make up the field
// normalizer and row filter stages.
package builtin

import "chidata/internal/records"

// Require removes any record missing a value for any of the specified fields.
type Require struct {
	Fields []string
}

// Apply returns a filtered slice containing only records that have all
// required fields present and non-empty. Order is preserved.
func (r Require) Apply(in []records.Record) ([]records.Record, error) {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
