package builtin

import (
	"strings"

	"chidata/internal/records"
)

// Match retains only records whose Column equals one of Values. Absent
// values never match.
type Match struct {
	Column string
	Values []string
}

func (k Match) Apply(in []records.Record) ([]records.Record, error) {
	set := toSet(k.Values)
	out := in[:0]
	for _, r := range in {
		s, ok := r.String(k.Column)
		if !ok {
			continue
		}
		if _, hit := set[s]; hit {
			out = append(out, r)
		}
	}
	return out, nil
}

// Exclude drops records whose Column equals one of Values.
type Exclude struct {
	Column string
	Values []string
}

func (e Exclude) Apply(in []records.Record) ([]records.Record, error) {
	set := toSet(e.Values)
	out := in[:0]
	for _, r := range in {
		if s, ok := r.String(e.Column); ok {
			if _, hit := set[s]; hit {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// ExcludeContains drops records whose Column contains any of Keywords,
// compared case-insensitively. Records with an absent value are kept.
type ExcludeContains struct {
	Column   string
	Keywords []string
}

func (e ExcludeContains) Apply(in []records.Record) ([]records.Record, error) {
	kws := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	out := in[:0]
next:
	for _, r := range in {
		if s, ok := r.String(e.Column); ok {
			s = strings.ToLower(s)
			for _, k := range kws {
				if strings.Contains(s, k) {
					continue next
				}
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// Replace rewrites Column to To whenever its value is one of From.
type Replace struct {
	Column string
	From   []string
	To     string
}

func (rp Replace) Apply(in []records.Record) ([]records.Record, error) {
	set := toSet(rp.From)
	for _, r := range in {
		if s, ok := r.String(rp.Column); ok {
			if _, hit := set[s]; hit {
				r[rp.Column] = rp.To
			}
		}
	}
	return in, nil
}

// Rename moves values from source column names to canonical names. Columns
// without an entry in Columns keep their name.
type Rename struct {
	Columns map[string]string
}

func (rn Rename) Apply(in []records.Record) ([]records.Record, error) {
	for i, r := range in {
		out := make(records.Record, len(r))
		for k, v := range r {
			if to, ok := rn.Columns[k]; ok {
				k = to
			}
			out[k] = v
		}
		in[i] = out
	}
	return in, nil
}

// Drop removes the listed columns from every record.
type Drop struct {
	Columns []string
}

func (d Drop) Apply(in []records.Record) ([]records.Record, error) {
	for _, r := range in {
		for _, c := range d.Columns {
			delete(r, c)
		}
	}
	return in, nil
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
