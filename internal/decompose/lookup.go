package decompose

import (
	"context"
	"fmt"
	"strconv"

	"chidata/internal/records"
	"chidata/internal/storage"
)

// Lookup maps a dimension's natural key to its surrogate id. It is built
// from persisted rows and never modified afterwards.
type Lookup struct {
	table string
	key   []string
	ids   map[string]int64
}

// BuildLookup reads key and idCol from every persisted row of table.
func BuildLookup(ctx context.Context, repo storage.Repository, table string, key []string, idCol string) (*Lookup, error) {
	cols := append(append([]string{}, key...), idCol)
	rows, err := repo.ReadRows(ctx, table, cols)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	l := &Lookup{table: table, key: key, ids: make(map[string]int64, len(rows))}
	for _, r := range rows {
		id, ok := toInt64(r[idCol])
		if !ok {
			return nil, fmt.Errorf("lookup %s: %s=%v is not an integer id", table, idCol, r[idCol])
		}
		l.ids[records.KeyOf(r, key)] = id
	}
	return l, nil
}

// NewLookup builds a Lookup from in-memory pairs. Used for fixed seeds and
// tests.
func NewLookup(table string, key []string, rows []records.Record, idCol string) *Lookup {
	l := &Lookup{table: table, key: key, ids: make(map[string]int64, len(rows))}
	for _, r := range rows {
		if id, ok := toInt64(r[idCol]); ok {
			l.ids[records.KeyOf(r, key)] = id
		}
	}
	return l
}

// ID returns the surrogate id for the natural key vals.
func (l *Lookup) ID(vals ...any) (int64, bool) {
	id, ok := l.ids[records.KeyOfValues(vals)]
	return id, ok
}

// Len reports the number of keys.
func (l *Lookup) Len() int { return len(l.ids) }

// Rewrite replaces column src of every row with the id its value maps to in
// l and stores it under dst. Rows are modified in place. The first value
// without an id fails the rewrite with a *LookupMiss.
func Rewrite(rows []records.Record, src, dst string, l *Lookup) error {
	for _, r := range rows {
		v := r[src]
		id, ok := l.ID(v)
		if !ok {
			return &LookupMiss{Table: l.table, Column: l.key[0], Value: v}
		}
		if src != dst {
			delete(r, src)
		}
		r[dst] = id
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), t == float64(int64(t))
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}
