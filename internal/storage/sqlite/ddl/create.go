package ddl

import gddl "chidata/internal/ddl"

// Dialect renders SQLite DDL with double-quoted identifiers.
var Dialect = gddl.Dialect{
	Name:       "sqlite",
	QuoteIdent: gddl.DoubleQuote,
	MapType:    MapType,
}

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}
