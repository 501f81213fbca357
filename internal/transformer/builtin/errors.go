package builtin

import "fmt"

// FieldError reports a value that could not be converted. Row is the 0-based
// index of the record within the batch handed to the transformer.
type FieldError struct {
	Row    int
	Column string
	Value  any
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: column %s: value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
