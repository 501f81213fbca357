package ddl

import (
	"fmt"
	"strings"

	gddl "chidata/internal/ddl"
)

// Dialect renders SQL Server DDL guarded by OBJECT_ID checks.
var Dialect = gddl.Dialect{
	Name:       "mssql",
	QuoteIdent: QuoteIdent,
	MapType:    MapType,
	Create: func(fqn, body string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n  %s\n  );\nEND;",
			fqn, fqn, body)
	},
	Drop: func(fqn string) string {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s;", fqn, fqn)
	},
}

// QuoteIdent brackets an identifier, escaping ].
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// BuildCreateTableSQL returns the guarded CREATE TABLE script for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(t)
}
