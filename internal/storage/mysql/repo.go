// Package mysql is the MySQL storage backend (go-sql-driver/mysql). Rows are
// loaded with multi-row INSERTs sized to the server's placeholder limit.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"chidata/internal/storage"
	myddl "chidata/internal/storage/mysql/ddl"
)

// maxPlaceholders is MySQL's prepared-statement parameter limit.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // e.g. user:pass@tcp(localhost:3306)/chi
}

// Repository is the MySQL implementation of storage.Repository.
type Repository struct {
	storage.SQLDB
	cfg Config
}

// NewRepository validates the DSN, opens the pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	if _, ok := mc.Params["charset"]; !ok {
		mc.Params["charset"] = "utf8mb4"
	}
	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return newWithDB(db, cfg), func() { _ = db.Close() }, nil
}

func newWithDB(db *sql.DB, cfg Config) *Repository {
	return &Repository{SQLDB: storage.SQLDB{DB: db, D: myddl.Dialect}, cfg: cfg}
}

// WriteRows inserts rows in one transaction using as few statements as the
// placeholder limit allows.
func (r *Repository) WriteRows(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	rowTuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", r.D.QuoteFQN(table), r.D.QuoteList(cols))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	var written int64
	for _, chunk := range storage.Chunks(rows, len(cols), maxPlaceholders) {
		args := make([]any, 0, len(chunk)*len(cols))
		for i, row := range chunk {
			if len(row) != len(cols) {
				_ = tx.Rollback()
				return 0, fmt.Errorf("mysql: write %s: row %d has %d values for %d columns", table, i, len(row), len(cols))
			}
			args = append(args, row...)
		}
		stmt := head + strings.TrimSuffix(strings.Repeat(rowTuple+", ", len(chunk)), ", ")
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		written += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return written, nil
}

// Vacuum runs OPTIMIZE TABLE over tables.
func (r *Repository) Vacuum(ctx context.Context, tables []string) error {
	if len(tables) == 0 {
		return nil
	}
	q := make([]string, len(tables))
	for i, t := range tables {
		q[i] = r.D.QuoteFQN(t)
	}
	rows, err := r.DB.QueryContext(ctx, "OPTIMIZE TABLE "+strings.Join(q, ", "))
	if err != nil {
		return fmt.Errorf("mysql: optimize: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}
