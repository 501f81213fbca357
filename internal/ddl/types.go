// Package ddl is the backend-agnostic table model plus a Dialect that
// renders it. Backend packages under internal/storage supply the dialects.
package ddl

// Logical column kinds understood by every dialect's MapType.
const (
	Int   = "int"
	Float = "float"
	Text  = "text"
	Date  = "date" // ISO-8601 text: YYYY-MM-DD[ HH:MM:SS]
)

// ColumnDef describes a single column.
//
// Type is a logical kind mapped by the dialect; SQLType, when set, is used
// verbatim instead. References ("table.column") records a foreign key as
// metadata only; no constraint is rendered.
type ColumnDef struct {
	Name       string
	Type       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
	References string
}

// TableDef holds the table name and its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}
