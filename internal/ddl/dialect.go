package ddl

import (
	"fmt"
	"strings"
)

// Dialect renders TableDefs for one SQL engine.
type Dialect struct {
	Name string

	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// MapType maps a logical kind to a column type.
	MapType func(kind string) string

	// Create wraps the rendered column list; nil yields
	// CREATE TABLE IF NOT EXISTS <fqn> (...).
	Create func(fqn, body string) string

	// Drop renders a drop that tolerates a missing table; nil yields
	// DROP TABLE IF EXISTS <fqn>.
	Drop func(fqn string) string
}

// QuoteFQN quotes every dotted segment of fqn.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.QuoteIdent(p))
		}
	}
	return strings.Join(out, ".")
}

// QuoteList quotes and comma-joins column names.
func (d Dialect) QuoteList(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = d.QuoteIdent(c)
	}
	return strings.Join(q, ", ")
}

// BuildCreateTableSQL renders t as
//
//	"col" TYPE [NOT NULL] [DEFAULT expr], ..., PRIMARY KEY ("pk", ...)
//
// wrapped by the dialect's Create. Primary-key columns are always NOT NULL.
func (d Dialect) BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" && c.Type != "" {
			typ = d.MapType(c.Type)
		}
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing type", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())
		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	q := d.QuoteFQN(fqn)
	if d.Create != nil {
		return d.Create(q, strings.Join(cols, ",\n  ")), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", q, strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL renders a drop for fqn.
func (d Dialect) BuildDropTableSQL(fqn string) string {
	q := d.QuoteFQN(fqn)
	if d.Drop != nil {
		return d.Drop(q)
	}
	return "DROP TABLE IF EXISTS " + q + ";"
}

// DoubleQuote is the ANSI identifier quoting shared by SQLite and Postgres.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
