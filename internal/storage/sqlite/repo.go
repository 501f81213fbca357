package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chidata/internal/storage"
	sqliteddl "chidata/internal/storage/sqlite/ddl"
)

// Repository is the SQLite implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	cfg Config
}

// NewRepository opens the database and returns it with a close function.
// The pool is pinned to one connection: SQLite serializes writers anyway and
// each ":memory:" connection would otherwise be a separate database.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := &Repository{SQLDB: storage.SQLDB{DB: db, D: sqliteddl.Dialect}, cfg: cfg}
	return r, func() { _ = db.Close() }, nil
}

// WriteRows inserts rows inside one transaction through a prepared
// single-row INSERT.
func (r *Repository) WriteRows(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if len(cols) == 0 {
		return 0, fmt.Errorf("sqlite: write %s: columns must not be empty", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.D.QuoteFQN(table), r.D.QuoteList(cols), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if len(row) != len(cols) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: write %s: row %d has %d values for %d columns", table, i, len(row), len(cols))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert into %s row %d: %w", table, i, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Vacuum rebuilds the database file. SQLite vacuums whole databases, so
// tables is ignored.
func (r *Repository) Vacuum(ctx context.Context, _ []string) error {
	if _, err := r.DB.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("sqlite: vacuum: %w", err)
	}
	return nil
}

// QueryReadOnly runs q on a pinned connection with query_only set. The
// driver ignores read-only transaction options, so the pragma is what
// rejects writes; the enclosing transaction is rolled back regardless.
func (r *Repository) QueryReadOnly(ctx context.Context, q string) ([]string, [][]any, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, nil, fmt.Errorf("sqlite: query_only: %w", err)
	}
	defer func() { _, _ = conn.ExecContext(context.Background(), "PRAGMA query_only = OFF") }()

	return r.QueryInTx(ctx, conn, nil, q)
}
