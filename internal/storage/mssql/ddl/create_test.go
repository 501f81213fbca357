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
		FQN: "dbo.violations",
		Columns: []gddl.ColumnDef{
			{Name: "inspection_id", Type: gddl.Int},
			{Name: "comment", Type: gddl.Text, Nullable: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "IF OBJECT_ID(N'[dbo].[violations]', N'U') IS NULL\nBEGIN\n"+
		"  CREATE TABLE [dbo].[violations] (\n"+
		"  [inspection_id] BIGINT NOT NULL,\n"+
		"  [comment] NVARCHAR(MAX)\n  );\nEND;", got)
	assert.Equal(t, "IF OBJECT_ID(N'[t]', N'U') IS NOT NULL DROP TABLE [t];", Dialect.BuildDropTableSQL("t"))
}

func TestQuoteIdentAndMapType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[weird]]id]", QuoteIdent("weird]id"))
	assert.Equal(t, "NVARCHAR(19)", MapType("date"))
	assert.Equal(t, "FLOAT", MapType("float"))
	assert.Equal(t, "NVARCHAR(MAX)", MapType("whatever"))
}
