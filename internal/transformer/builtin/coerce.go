package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"chidata/internal/records"
)

// Default layouts accepted for "date" columns, tried in order.
var DefaultDateLayouts = []string{
	"01/02/2006",
	"01/02/2006 03:04:05 PM",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

const (
	dateOnly = "2006-01-02"
	dateTime = "2006-01-02 15:04:05"
)

// Coerce converts string values into typed values. Supported types are
// "int" (int64), "float" (float64), "date" (ISO string, time appended only
// when non-midnight) and "string". Unlike a lenient cast, any value that
// fails conversion stops the batch with a *FieldError.
type Coerce struct {
	Types   map[string]string // field -> int | float | date | string
	Layouts []string          // accepted date layouts; DefaultDateLayouts when empty
}

func (c Coerce) Apply(in []records.Record) ([]records.Record, error) {
	if len(c.Types) == 0 {
		return in, nil
	}
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for i, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			var (
				out any
				err error
			)
			switch typ {
			case "int":
				out, err = parseInt(s)
			case "float":
				out, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
			case "date":
				out, err = ConvertDate(s, layouts)
			default:
				continue
			}
			if err != nil {
				return nil, &FieldError{Row: i, Column: field, Value: s, Err: err}
			}
			r[field] = out
		}
	}
	return in, nil
}

// parseInt accepts plain integers and integral decimals such as "12.0".
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int64(f), nil
}

// ConvertDate parses s with the first matching layout and renders it as
// YYYY-MM-DD, or YYYY-MM-DD HH:MM:SS when the value carries a time of day.
// The meridiem is matched case-insensitively since capitalized input reads
// "Pm".
func ConvertDate(s string, layouts []string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err != nil {
			continue
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(dateOnly), nil
		}
		return t.Format(dateTime), nil
	}
	return "", fmt.Errorf("unrecognized date format")
}

// ConvertDates rewrites every present column whose name contains "_date"
// (or is listed in Columns) to ISO form. A value no layout accepts fails the
// batch with a *FieldError.
type ConvertDates struct {
	Columns []string
	Layouts []string
}

func (c ConvertDates) Apply(in []records.Record) ([]records.Record, error) {
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	extra := toSet(c.Columns)
	for i, r := range in {
		for col, v := range r {
			_, listed := extra[col]
			if !listed && !strings.Contains(col, "_date") {
				continue
			}
			s, ok := v.(string)
			if !ok || s == "" {
				continue
			}
			iso, err := ConvertDate(s, layouts)
			if err != nil {
				return nil, &FieldError{Row: i, Column: col, Value: s, Err: err}
			}
			r[col] = iso
		}
	}
	return in, nil
}
