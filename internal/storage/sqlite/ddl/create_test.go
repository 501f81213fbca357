package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gddl "chidata/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"int": "INTEGER", " BIGINT ": "INTEGER", "bool": "INTEGER",
		"float": "REAL", "decimal": "NUMERIC", "date": "TEXT", "text": "TEXT", "": "TEXT",
	}
	for in, want := range cases {
		assert.Equal(t, want, MapType(in), in)
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "licenses",
		Columns: []gddl.ColumnDef{
			{Name: "license_number", Type: gddl.Int, PrimaryKey: true},
			{Name: "start_date", Type: gddl.Date, Nullable: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"licenses\" (\n"+
		"  \"license_number\" INTEGER NOT NULL,\n"+
		"  \"start_date\" TEXT,\n"+
		"  PRIMARY KEY (\"license_number\")\n);", got)
	assert.Equal(t, `DROP TABLE IF EXISTS "licenses";`, Dialect.BuildDropTableSQL("licenses"))
}
