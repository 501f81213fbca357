package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/ddl"
	"chidata/internal/records"
	"chidata/internal/storage"
)

func newMemRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

var addresses = ddl.TableDef{
	FQN: "business_addresses",
	Columns: []ddl.ColumnDef{
		{Name: "id", Type: ddl.Int, PrimaryKey: true},
		{Name: "street", Type: ddl.Text},
		{Name: "ward", Type: ddl.Int, Nullable: true},
		{Name: "latitude", Type: ddl.Float, Nullable: true},
	},
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo(t)
	require.NoError(t, repo.ResetTable(ctx, addresses))

	n, err := repo.WriteRows(ctx, "business_addresses", addresses.ColumnNames(), [][]any{
		{int64(1), "1 Main St", int64(42), 41.88},
		{int64(2), "2 Side St", nil, nil},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := repo.ReadRows(ctx, "business_addresses", []string{"id", "street", "ward", "latitude"})
	require.NoError(t, err)
	assert.Equal(t, []records.Record{
		{"id": int64(1), "street": "1 Main St", "ward": int64(42), "latitude": 41.88},
		{"id": int64(2), "street": "2 Side St", "ward": nil, "latitude": nil},
	}, got)

	cnt, err := storage.Count(ctx, repo, "business_addresses")
	require.NoError(t, err)
	assert.EqualValues(t, 2, cnt)

	del, err := repo.Exec(ctx, `DELETE FROM "business_addresses" WHERE "ward" IS NULL`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, del)
	require.NoError(t, repo.Vacuum(ctx, nil))
}

func TestResetTableEmptiesExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo(t)
	require.NoError(t, repo.ResetTable(ctx, addresses))
	_, err := repo.WriteRows(ctx, "business_addresses", []string{"id", "street"}, [][]any{{int64(1), "x"}})
	require.NoError(t, err)

	require.NoError(t, repo.ResetTable(ctx, addresses))
	cnt, err := storage.Count(ctx, repo, "business_addresses")
	require.NoError(t, err)
	assert.Zero(t, cnt)
}

func TestWriteRowsRejectsRaggedRowsAtomically(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo(t)
	require.NoError(t, repo.ResetTable(ctx, addresses))

	_, err := repo.WriteRows(ctx, "business_addresses", []string{"id", "street"}, [][]any{
		{int64(1), "ok"},
		{int64(2)},
	})
	require.Error(t, err)

	cnt, err := storage.Count(ctx, repo, "business_addresses")
	require.NoError(t, err)
	assert.Zero(t, cnt)
}

func TestQueryColumns(t *testing.T) {
	t.Parallel()

	cols, rows, err := newMemRepo(t).Query(context.Background(), "SELECT 1 AS one, 'a' AS letter")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "letter"}, cols)
	assert.Equal(t, [][]any{{int64(1), "a"}}, rows)
}

func TestQueryReadOnlyRejectsWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newMemRepo(t)
	require.NoError(t, repo.ResetTable(ctx, addresses))
	_, err := repo.WriteRows(ctx, "business_addresses", []string{"id", "street"}, [][]any{{int64(1), "x"}, {int64(2), "y"}})
	require.NoError(t, err)

	for _, q := range []string{
		`DELETE FROM "business_addresses"`,
		`WITH gone AS (SELECT 1) DELETE FROM "business_addresses"`,
		`UPDATE "business_addresses" SET "street" = 'z'`,
		`DROP TABLE "business_addresses"`,
	} {
		_, _, err := repo.QueryReadOnly(ctx, q)
		assert.Error(t, err, q)
	}
	// stacked statements either fail or are rolled back
	_, _, _ = repo.QueryReadOnly(ctx, `PRAGMA query_only = OFF; DELETE FROM "business_addresses"`)

	_, rows, err := repo.QueryReadOnly(ctx, `SELECT "street" FROM "business_addresses" ORDER BY "id"`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"x"}, {"y"}}, rows)

	// the connection is writable again for the engine
	del, err := repo.Exec(ctx, `DELETE FROM "business_addresses" WHERE "id" = 2`)
	require.NoError(t, err)
	assert.EqualValues(t, 1, del)
}

func TestRegistrationUsesHook(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	var (
		gotCfg Config
		closed bool
	)
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "chi.db"})
	require.NoError(t, err)
	assert.Equal(t, Config{DSN: "chi.db"}, gotCfg)
	repo.Close()
	assert.True(t, closed)
}
