// Package postgres is the PostgreSQL storage backend built on pgx v5. Rows
// are loaded with COPY.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chidata/internal/ddl"
	"chidata/internal/records"
	pgddl "chidata/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is the Postgres implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return pgddl.Dialect }

// ResetTable implements storage.Repository.
func (r *Repository) ResetTable(ctx context.Context, def ddl.TableDef) error {
	create, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, pgddl.Dialect.BuildDropTableSQL(def.FQN)); err != nil {
		return fmt.Errorf("postgres: drop %s: %w", def.FQN, pgErr(err))
	}
	if _, err := r.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("postgres: create %s: %w", def.FQN, pgErr(err))
	}
	return nil
}

// WriteRows COPYs rows into table.
func (r *Repository) WriteRows(ctx context.Context, table string, cols []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, identifier(table), cols, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", table, pgErr(err))
	}
	return n, nil
}

// ReadRows implements storage.Repository.
func (r *Repository) ReadRows(ctx context.Context, table string, cols []string) ([]records.Record, error) {
	d := pgddl.Dialect
	_, rows, err := r.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", d.QuoteList(cols), d.QuoteFQN(table)))
	if err != nil {
		return nil, err
	}
	out := make([]records.Record, len(rows))
	for i, row := range rows {
		rec := make(records.Record, len(cols))
		for j, c := range cols {
			rec[c] = row[j]
		}
		out[i] = rec
	}
	return out, nil
}

// Exec implements storage.Repository.
func (r *Repository) Exec(ctx context.Context, stmt string) (int64, error) {
	tag, err := r.pool.Exec(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("postgres: exec: %w", pgErr(err))
	}
	return tag.RowsAffected(), nil
}

// querier is satisfied by the pool and by pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Query implements storage.Repository.
func (r *Repository) Query(ctx context.Context, q string) ([]string, [][]any, error) {
	return query(ctx, r.pool, q)
}

// QueryReadOnly runs q in a READ ONLY transaction that is rolled back.
func (r *Repository) QueryReadOnly(ctx context.Context, q string) ([]string, [][]any, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: begin read tx: %w", pgErr(err))
	}
	defer func() { _ = tx.Rollback(context.Background()) }()
	return query(ctx, tx, q)
}

func query(ctx context.Context, qr querier, q string) ([]string, [][]any, error) {
	rows, err := qr.Query(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: query: %w", pgErr(err))
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: scan: %w", err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("postgres: rows: %w", pgErr(err))
	}
	return cols, out, nil
}

// Vacuum runs VACUUM ANALYZE per table outside any transaction.
func (r *Repository) Vacuum(ctx context.Context, tables []string) error {
	for _, t := range tables {
		if _, err := r.pool.Exec(ctx, "VACUUM ANALYZE "+pgddl.Dialect.QuoteFQN(t)); err != nil {
			return fmt.Errorf("postgres: vacuum %s: %w", t, pgErr(err))
		}
	}
	return nil
}

func identifier(table string) pgx.Identifier {
	return pgx.Identifier(splitFQN(table))
}

func splitFQN(fqn string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(fqn); i++ {
		if fqn[i] == '.' {
			parts = append(parts, fqn[start:i])
			start = i + 1
		}
	}
	return append(parts, fqn[start:])
}

func normalize(v any) any {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int16:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// pgErr surfaces the server detail of a *pgconn.PgError.
func pgErr(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Detail != "" {
		return fmt.Errorf("%w (%s: %s)", err, pe.SQLState(), pe.Detail)
	}
	return err
}
