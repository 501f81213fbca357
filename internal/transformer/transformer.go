// Package transformer defines the batch transformer contract used by the
// source preparation pipelines.
package transformer

import "chidata/internal/records"

// Transformer rewrites a batch of records. Implementations may mutate the
// records they are given and may return a shorter slice; an error aborts the
// chain.
type Transformer interface {
	Apply([]records.Record) ([]records.Record, error)
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) ([]records.Record, error)

// Apply implements Transformer.
func (f Func) Apply(in []records.Record) ([]records.Record, error) { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order and stops at the first error.
func (c Chain) Apply(in []records.Record) ([]records.Record, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
