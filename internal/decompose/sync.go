package decompose

import (
	"fmt"

	"chidata/internal/records"
)

// Synchronize assigns a shared key in lockstep to two parallel row sets
// derived from the same source rows: a[i][keyA] and b[i][keyB] both become
// i+1. The sets must have equal length.
func Synchronize(a, b []records.Record, keyA, keyB string) error {
	if len(a) != len(b) {
		return fmt.Errorf("synchronize: row counts differ (%d vs %d)", len(a), len(b))
	}
	for i := range a {
		id := int64(i + 1)
		a[i][keyA] = id
		b[i][keyB] = id
	}
	return nil
}

// Split derives two parallel row sets from rows in a single pass. Column
// maps give target name -> source column for each side.
func Split(rows []records.Record, left, right map[string]string) ([]records.Record, []records.Record) {
	a := make([]records.Record, len(rows))
	b := make([]records.Record, len(rows))
	for i, r := range rows {
		a[i] = pick(r, left)
		b[i] = pick(r, right)
	}
	return a, b
}

func pick(r records.Record, cols map[string]string) records.Record {
	out := make(records.Record, len(cols))
	for dst, src := range cols {
		out[dst] = r[src]
	}
	return out
}
