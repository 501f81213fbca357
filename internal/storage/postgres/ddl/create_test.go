package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gddl "chidata/internal/ddl"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "public.business_addresses",
		Columns: []gddl.ColumnDef{
			{Name: "id", Type: gddl.Int, PrimaryKey: true},
			{Name: "latitude", Type: gddl.Float, Nullable: true},
			{Name: "date", Type: gddl.Date, Nullable: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"public\".\"business_addresses\" (\n"+
		"  \"id\" BIGINT NOT NULL,\n"+
		"  \"latitude\" DOUBLE PRECISION,\n"+
		"  \"date\" TEXT,\n"+
		"  PRIMARY KEY (\"id\")\n);", got)
	assert.Equal(t, `DROP TABLE IF EXISTS "public"."business_addresses" CASCADE;`,
		Dialect.BuildDropTableSQL("public.business_addresses"))
}
