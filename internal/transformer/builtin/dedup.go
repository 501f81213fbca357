package builtin

import (
	"fmt"
	"strings"

	"chidata/internal/records"
)

// DeDup collapses records sharing the same key and picks one winner per key:
//
//   - "keep-first"   : earliest occurrence in the batch (default)
//   - "keep-last"    : latest occurrence in the batch
//   - "most-complete": most non-empty fields; ties keep the earlier record
//
// Winners are emitted in the position of their first occurrence so the output
// order is a function of the input order only. Absent key values compare
// equal to each other.
type DeDup struct {
	Keys   []string
	Policy string
}

func (d DeDup) Apply(in []records.Record) ([]records.Record, error) {
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	switch policy {
	case "":
		policy = "keep-first"
	case "keep-first", "keep-last", "most-complete":
	default:
		return nil, fmt.Errorf("dedup: unknown policy %q", d.Policy)
	}
	if len(in) == 0 || len(d.Keys) == 0 {
		return in, nil
	}

	type slot struct {
		pos   int // index into out
		score int
	}
	seen := make(map[string]slot, len(in))
	out := make([]records.Record, 0, len(in))

	for _, r := range in {
		key := records.KeyOf(r, d.Keys)
		prev, exists := seen[key]
		if !exists {
			seen[key] = slot{pos: len(out), score: completeness(r)}
			out = append(out, r)
			continue
		}
		switch policy {
		case "keep-last":
			out[prev.pos] = r
		case "most-complete":
			if s := completeness(r); s > prev.score {
				out[prev.pos] = r
				seen[key] = slot{pos: prev.pos, score: s}
			}
		}
	}
	return out, nil
}

func completeness(r records.Record) int {
	n := 0
	for _, v := range r {
		if v == nil || v == "" {
			continue
		}
		n++
	}
	return n
}
