// Package records defines the in-memory row shape shared by the CSV parser,
// the builtin transformers and the decomposition engine.
//
// A Record maps canonical column names to scalar values. After parsing every
// value is either nil (absent) or a string; the coerce step turns declared
// columns into int64 or float64. Dates stay strings in ISO layout.
package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is one logical row keyed by canonical column name.
type Record map[string]any

// keySep separates the parts of a composite key.
const keySep = '\x1f'

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns the values of cols in order. Missing columns yield nil.
func (r Record) Project(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = r[c]
	}
	return out
}

// String returns the value of col as a string and whether it was present
// and non-empty.
func (r Record) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case []byte:
		return string(v), len(v) > 0
	default:
		return Key(v), true
	}
}

// Clone copies every record in rs.
func Clone(rs []Record) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Key renders a scalar as a canonical string so that values read back from a
// database driver (int64, []byte, float64) compare equal to the values held
// in memory.
func Key(v any) string {
	switch t := v.(type) {
	case nil:
		return "\x00"
	case string:
		return t
	case []byte:
		return string(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}

// KeyOf builds the composite key of r over cols.
func KeyOf(r Record, cols []string) string {
	if len(cols) == 1 {
		return Key(r[cols[0]])
	}
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(keySep)
		}
		b.WriteString(Key(r[c]))
	}
	return b.String()
}

// KeyOfValues builds a composite key from already projected values.
func KeyOfValues(vals []any) string {
	if len(vals) == 1 {
		return Key(vals[0])
	}
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(keySep)
		}
		b.WriteString(Key(v))
	}
	return b.String()
}

// SortKey is one column of an ordering.
type SortKey struct {
	Column string
	Desc   bool
}

// Asc builds ascending sort keys for cols.
func Asc(cols ...string) []SortKey {
	out := make([]SortKey, len(cols))
	for i, c := range cols {
		out[i] = SortKey{Column: c}
	}
	return out
}

// SortStable orders rs in place by keys. Absent values sort last in both
// directions; ties keep their input order.
func SortStable(rs []Record, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rs, func(i, j int) bool {
		for _, k := range keys {
			a, b := rs[i][k.Column], rs[j][k.Column]
			if a == nil || b == nil {
				if a == nil && b == nil {
					continue
				}
				return b == nil
			}
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Compare orders two non-nil scalars. Numbers compare numerically, strings
// lexically; values of different kinds order numbers before strings.
func Compare(a, b any) int {
	fa, aNum := number(a)
	fb, bNum := number(b)
	switch {
	case aNum && bNum:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(Key(a), Key(b))
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
