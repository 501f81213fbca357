// Package decompose turns the two prepared source row sets into the
// normalized schema: dimensions are extracted and persisted first, their
// surrogate ids are read back into lookups, and fact rows are rewritten
// against those lookups before being written. A fixed list of pruning rules
// then removes rows whose references cannot be satisfied.
//
// Everything runs on one goroutine in an explicit step order.
package decompose

import (
	"fmt"
	"sort"

	"chidata/internal/records"
	"chidata/internal/transformer/builtin"
)

// Extraction declares how one table's rows are derived from source rows.
type Extraction struct {
	// Key is the natural key. Rows sharing it collapse to one.
	Key []string

	// Prefer orders rows before deduplication; the first row per key wins.
	// Leave empty to keep the source order.
	Prefer []records.SortKey

	// Policy is the builtin.DeDup winner policy. Defaults to keep-first,
	// which is what Prefer relies on.
	Policy string

	// Sort is the final order. Defaults to Key ascending.
	Sort []records.SortKey

	// ID, when set, receives the 1-based position in the final order.
	ID string
}

// Extract deduplicates rows on e.Key, orders them and assigns surrogate
// ids. The input is not modified; returned records are copies.
func Extract(rows []records.Record, e Extraction) ([]records.Record, error) {
	work := make([]records.Record, len(rows))
	copy(work, rows)

	records.SortStable(work, e.Prefer)
	work, err := builtin.DeDup{Keys: e.Key, Policy: e.Policy}.Apply(work)
	if err != nil {
		return nil, fmt.Errorf("extract %v: %w", e.Key, err)
	}

	order := e.Sort
	if len(order) == 0 {
		order = records.Asc(e.Key...)
	}
	records.SortStable(work, order)

	out := records.Clone(work)
	if e.ID != "" {
		for i, r := range out {
			r[e.ID] = int64(i + 1)
		}
	}
	return out, nil
}

// LocatedFirst returns rows reordered so that rows with a value in column
// come first, each group keeping its source order.
//
// Deduplicating the result on street alone yields one address per street
// and prefers a located row over an unlocated one, so a business seen with
// and without coordinates does not produce two addresses.
func LocatedFirst(rows []records.Record, column string) []records.Record {
	out := make([]records.Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i][column] != nil && out[j][column] == nil
	})
	return out
}

// project renders rs positionally over cols for WriteRows.
func project(rs []records.Record, cols []string) [][]any {
	out := make([][]any, len(rs))
	for i, r := range rs {
		out[i] = r.Project(cols)
	}
	return out
}
