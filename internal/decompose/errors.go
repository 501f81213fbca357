package decompose

import (
	"errors"
	"fmt"
	"strings"

	"chidata/internal/transformer/builtin"
)

// ValidationError reports a source value that failed a required format.
type ValidationError struct {
	Source string
	Column string
	Row    int // 0-based index into the prepared row set
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: row %d: %s=%q: %s", e.Source, e.Row, e.Column, fmt.Sprint(e.Value), e.Reason)
}

// ValidationErrors aggregates every ValidationError found in one step.
type ValidationErrors []*ValidationError

const maxListedErrors = 5

func (es ValidationErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s)", len(es))
	for i, e := range es {
		if i == maxListedErrors {
			fmt.Fprintf(&b, "; and %d more", len(es)-maxListedErrors)
			break
		}
		b.WriteString("; ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// LookupMiss reports a natural key with no surrogate id in a dimension.
// It indicates an extraction-order or filtering defect upstream.
type LookupMiss struct {
	Table  string
	Column string
	Value  any
}

func (e *LookupMiss) Error() string {
	return fmt.Sprintf("lookup miss: %s.%s has no id for %q", e.Table, e.Column, fmt.Sprint(e.Value))
}

// asValidation turns a transformer FieldError into a ValidationError for
// source; other errors pass through.
func asValidation(source string, err error) error {
	var fe *builtin.FieldError
	if !errors.As(err, &fe) {
		return err
	}
	reason := "invalid value"
	if fe.Err != nil {
		reason = fe.Err.Error()
	}
	return &ValidationError{Source: source, Column: fe.Column, Row: fe.Row, Value: fe.Value, Reason: reason}
}
