// Package ddl holds the SQLite dialect: identifier quoting, logical type
// mapping and CREATE/DROP rendering.
package ddl

import "strings"

// MapType maps a logical kind to a SQLite column affinity. Dates are ISO
// text so that lexical and chronological order agree.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}
