package ddl

import gddl "chidata/internal/ddl"

// Dialect renders Postgres DDL.
var Dialect = gddl.Dialect{
	Name:       "postgres",
	QuoteIdent: gddl.DoubleQuote,
	MapType:    MapType,
	Drop:       func(fqn string) string { return "DROP TABLE IF EXISTS " + fqn + " CASCADE;" },
}

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}
