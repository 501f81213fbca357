// Package ddl holds the MySQL dialect.
package ddl

import (
	"strings"

	gddl "chidata/internal/ddl"
)

// MapType maps a logical kind to a MySQL type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "date":
		return "VARCHAR(19)"
	default:
		return "TEXT"
	}
}

// QuoteIdent backtick-quotes an identifier.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// Dialect renders MySQL DDL. Tables use utf8mb4 so any source text fits.
var Dialect = gddl.Dialect{
	Name:       "mysql",
	QuoteIdent: QuoteIdent,
	MapType:    MapType,
	Create: func(fqn, body string) string {
		return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + body + "\n) DEFAULT CHARSET=utf8mb4;"
	},
}

// BuildCreateTableSQL returns CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}
