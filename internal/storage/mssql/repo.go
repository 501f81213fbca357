// Package mssql is the SQL Server storage backend. Rows are loaded through
// the go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"chidata/internal/storage"
	msddl "chidata/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is the SQL Server implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return newWithDB(db, cfg), func() { _ = db.Close() }, nil
}

func newWithDB(db *sql.DB, cfg Config) *Repository {
	return &Repository{SQLDB: storage.SQLDB{DB: db, D: msddl.Dialect}, cfg: cfg}
}

// WriteRows bulk-copies rows into table inside one transaction.
func (r *Repository) WriteRows(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.D.QuoteFQN(table), mssql.BulkOptions{Tablock: true}, cols...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk %s: %w", table, err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk %s row %d: %w", table, i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Vacuum refreshes optimizer statistics; SQL Server reuses freed pages on
// its own.
func (r *Repository) Vacuum(ctx context.Context, tables []string) error {
	for _, t := range tables {
		if _, err := r.DB.ExecContext(ctx, "UPDATE STATISTICS "+r.D.QuoteFQN(t)); err != nil {
			return fmt.Errorf("mssql: update statistics %s: %w", t, err)
		}
	}
	return nil
}

// QueryReadOnly runs q in a transaction that is always rolled back. The
// driver refuses read-only transaction options, so writes are discarded
// rather than rejected.
func (r *Repository) QueryReadOnly(ctx context.Context, q string) ([]string, [][]any, error) {
	return r.QueryInTx(ctx, r.DB, nil, q)
}
