// Package ddl holds the SQL Server dialect.
package ddl

import "strings"

// MapType maps a logical kind to a SQL Server type. Text stays NVARCHAR so
// non-ASCII business names survive; dates are ISO strings of at most 19
// characters.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "FLOAT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "NVARCHAR(19)"
	case "decimal", "numeric":
		return "DECIMAL(38, 10)"
	default:
		return "NVARCHAR(MAX)"
	}
}
