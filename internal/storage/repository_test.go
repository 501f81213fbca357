package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidata/internal/ddl"
)

type fakeRepo struct {
	SQLDB
	closed bool
}

func (f *fakeRepo) WriteRows(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Vacuum(context.Context, []string) error { return nil }
func (f *fakeRepo) Close()                                 { f.closed = true }

var _ Repository = (*fakeRepo)(nil)

func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	Register("fake", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	repo, err := New(context.Background(), Config{Kind: "fake"})
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Contains(t, ListKinds(), "fake")
}

func TestNewUnsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	require.EqualError(t, err, "unsupported storage.kind=does-not-exist")
}

func TestRegisterOverrideAndErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	Register("override", func(context.Context, Config) (Repository, error) { calls++; return &fakeRepo{}, nil })
	Register("override", func(context.Context, Config) (Repository, error) { calls += 10; return &fakeRepo{}, nil })
	_, err := New(context.Background(), Config{Kind: "override"})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)

	boom := errors.New("boom")
	Register("errkind", func(context.Context, Config) (Repository, error) { return nil, boom })
	_, err = New(context.Background(), Config{Kind: "errkind"})
	assert.ErrorIs(t, err, boom)
}

func TestListKindsIsSnapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	a := ListKinds()
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.NotContains(t, ListKinds(), "mutated")
}

func TestChunks(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 7)
	for i := range rows {
		rows[i] = []any{i, i}
	}
	got := Chunks(rows, 2, 6)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 3)
	assert.Len(t, got[2], 1)

	assert.Len(t, Chunks(rows, 10, 5), 7, "a row wider than the limit still gets its own chunk")
	assert.Nil(t, Chunks(nil, 2, 10))
}

func testDialect() ddl.Dialect {
	return ddl.Dialect{Name: "test", QuoteIdent: ddl.DoubleQuote, MapType: func(string) string { return "TEXT" }}
}

func TestSQLDBReadRowsDecodesBytes(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("street").OfType("TEXT", ""),
		sqlmock.NewColumn("latitude").OfType("DOUBLE", float64(0)),
	).
		AddRow([]byte("7"), []byte("1 Main St"), []byte("41.5")).
		AddRow([]byte("8"), nil, nil)
	mock.ExpectQuery(`SELECT "id", "street", "latitude" FROM "business_addresses"`).WillReturnRows(rows)

	s := &SQLDB{DB: db, D: testDialect()}
	got, err := s.ReadRows(context.Background(), "business_addresses", []string{"id", "street", "latitude"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0]["id"])
	assert.Equal(t, "1 Main St", got[0]["street"])
	assert.Equal(t, 41.5, got[0]["latitude"])
	assert.Nil(t, got[1]["street"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDBResetTableAndExec(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DROP TABLE IF EXISTS "t";`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS \"t\" (\n  \"a\" TEXT\n);").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "t"`).WillReturnResult(sqlmock.NewResult(0, 4))

	s := &SQLDB{DB: db, D: testDialect()}
	require.NoError(t, s.ResetTable(context.Background(), ddl.TableDef{FQN: "t", Columns: []ddl.ColumnDef{{Name: "a", Type: "text", Nullable: true}}}))
	n, err := s.Exec(context.Background(), `DELETE FROM "t"`)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = s.Exec(context.Background(), "  ")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDBExecRowsAffectedError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(`DELETE FROM "t"`).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unsupported")))

	s := &SQLDB{DB: db, D: testDialect()}
	n, err := s.Exec(context.Background(), `DELETE FROM "t"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test: exec: rows affected: rows affected unsupported")
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDBQueryReadOnlyRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "t"`).WillReturnError(errors.New("cannot execute DELETE in a read-only transaction"))
	mock.ExpectRollback()

	s := &SQLDB{DB: db, D: testDialect()}
	cols, rows, err := s.QueryReadOnly(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, cols)
	assert.Equal(t, [][]any{{int64(1)}}, rows)

	_, _, err = s.QueryReadOnly(context.Background(), `DELETE FROM "t"`)
	require.ErrorContains(t, err, "read-only transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "licenses"`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(12)))

	n, err := Count(context.Background(), &fakeRepo{SQLDB: SQLDB{DB: db, D: testDialect()}}, "licenses")
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
}
