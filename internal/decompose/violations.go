package decompose

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"chidata/internal/records"
	"chidata/internal/transformer/builtin"
)

// ViolationSeparator delimits entries of an inspection's violations text.
const ViolationSeparator = " | "

var (
	violationWithComment = regexp.MustCompile(`(?s)^([0-9]{1,2})\. (.+) - Comments: (.+)$`)
	violationBare        = regexp.MustCompile(`(?s)^([0-9]{1,2})\. (.+)$`)
)

// Violation is one parsed entry. Label is raw; Comment is "" when absent.
type Violation struct {
	ID      int64
	Label   string
	Comment string
}

// ParseViolations splits text into its entries. "&" is read as "And". Any
// entry that does not match the entry grammar fails the whole text.
func ParseViolations(text string) ([]Violation, error) {
	text = strings.ReplaceAll(text, "&", "And")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts := strings.Split(text, ViolationSeparator)
	out := make([]Violation, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		var m []string
		if strings.Contains(p, "Comments") {
			m = violationWithComment.FindStringSubmatch(p)
		} else {
			m = violationBare.FindStringSubmatch(p)
		}
		if m == nil {
			return nil, fmt.Errorf("malformed violation entry %q", p)
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("violation id %q: %w", m[1], err)
		}
		if id < 1 {
			return nil, fmt.Errorf("malformed violation entry %q: id must be positive", p)
		}
		v := Violation{ID: id, Label: m[2]}
		if len(m) > 3 {
			v.Comment = m[3]
		}
		out = append(out, v)
	}
	return out, nil
}

// Catalog keeps the first label seen for each violation id, capitalized.
// Later spellings of the same id never replace it.
type Catalog struct {
	labels map[int64]string
	cz     *builtin.Capitalizer
}

func NewCatalog() *Catalog {
	return &Catalog{labels: map[int64]string{}, cz: builtin.NewCapitalizer()}
}

// Observe records raw as the label of id unless id is already known, and
// returns the label kept for id.
func (c *Catalog) Observe(id int64, raw string) string {
	if l, ok := c.labels[id]; ok {
		return l
	}
	l := c.cz.Words(raw)
	c.labels[id] = l
	return l
}

// Label returns the kept label for id.
func (c *Catalog) Label(id int64) (string, bool) {
	l, ok := c.labels[id]
	return l, ok
}

// Rows returns (id, label) pairs ordered by id.
func (c *Catalog) Rows() [][]any {
	ids := make([]int64, 0, len(c.labels))
	for id := range c.labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([][]any, len(ids))
	for i, id := range ids {
		out[i] = []any{id, c.labels[id]}
	}
	return out
}

// ExtractViolations parses the violations column of rows. Every entry feeds
// the catalog; (inspection_id, violation_type_id, comment) links are emitted
// only for inspections present in persisted. Parse failures are collected
// and returned together as ValidationErrors, in which case no links are
// returned.
func ExtractViolations(source string, rows []records.Record, textCol, idCol string, persisted map[int64]struct{}) (*Catalog, [][]any, error) {
	cat := NewCatalog()
	var (
		links [][]any
		errs  ValidationErrors
	)
	for i, r := range rows {
		text, ok := r.String(textCol)
		if !ok {
			continue
		}
		parsed, err := ParseViolations(text)
		if err != nil {
			errs = append(errs, &ValidationError{Source: source, Column: textCol, Row: i, Value: text, Reason: err.Error()})
			continue
		}
		inspection, _ := toInt64(r[idCol])
		_, keep := persisted[inspection]
		for _, v := range parsed {
			cat.Observe(v.ID, v.Label)
			if keep {
				links = append(links, []any{inspection, v.ID, v.Comment})
			}
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return cat, links, nil
}
