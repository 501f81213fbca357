// Package ddl holds the Postgres dialect.
package ddl

import "strings"

// MapType normalizes a logical kind into a Postgres type.
//
//	"int"/"integer"/"bigint" -> BIGINT
//	"float"/"double"/"real"  -> DOUBLE PRECISION
//	"bool"/"boolean"         -> BOOLEAN
//	"timestamptz"            -> TIMESTAMPTZ
//	everything else          -> TEXT (dates included, kept as ISO text)
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
