package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"chidata/internal/ddl"
	"chidata/internal/records"
)

// SQLDB implements the database/sql half of Repository shared by the
// SQLite, MySQL and SQL Server backends. Backends embed it and add
// WriteRows, Vacuum and Close.
type SQLDB struct {
	DB *sql.DB
	D  ddl.Dialect
}

// Dialect implements Repository.
func (s *SQLDB) Dialect() ddl.Dialect { return s.D }

// ResetTable implements Repository.
func (s *SQLDB) ResetTable(ctx context.Context, def ddl.TableDef) error {
	create, err := s.D.BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, s.D.BuildDropTableSQL(def.FQN)); err != nil {
		return fmt.Errorf("%s: drop %s: %w", s.D.Name, def.FQN, err)
	}
	if _, err := s.DB.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("%s: create %s: %w", s.D.Name, def.FQN, err)
	}
	return nil
}

// Exec implements Repository.
func (s *SQLDB) Exec(ctx context.Context, stmt string) (int64, error) {
	if strings.TrimSpace(stmt) == "" {
		return 0, nil
	}
	res, err := s.DB.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("%s: exec: %w", s.D.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: exec: rows affected: %w", s.D.Name, err)
	}
	return n, nil
}

// ReadRows implements Repository.
func (s *SQLDB) ReadRows(ctx context.Context, table string, cols []string) ([]records.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s", s.D.QuoteList(cols), s.D.QuoteFQN(table))
	_, rows, err := s.Query(ctx, q)
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

// Query implements Repository.
func (s *SQLDB) Query(ctx context.Context, q string) ([]string, [][]any, error) {
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: query: %w", s.D.Name, err)
	}
	defer rows.Close()
	return ScanAll(rows)
}

// TxBeginner is satisfied by *sql.DB and *sql.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// QueryReadOnly implements Repository with a read-only transaction.
func (s *SQLDB) QueryReadOnly(ctx context.Context, q string) ([]string, [][]any, error) {
	return s.QueryInTx(ctx, s.DB, &sql.TxOptions{ReadOnly: true}, q)
}

// QueryInTx runs q inside a transaction begun on b with opts. The
// transaction is always rolled back, so nothing q writes is kept.
func (s *SQLDB) QueryInTx(ctx context.Context, b TxBeginner, opts *sql.TxOptions, q string) ([]string, [][]any, error) {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: begin read tx: %w", s.D.Name, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: query: %w", s.D.Name, err)
	}
	defer rows.Close()
	cols, out, err := ScanAll(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: query: %w", s.D.Name, err)
	}
	return cols, out, nil
}

// ScanAll drains rows into positional values with byte slices decoded by
// the declared column type.
func ScanAll(rows *sql.Rows) ([]string, [][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v, types[i].DatabaseTypeName())
		}
		out = append(out, vals)
	}
	return cols, out, rows.Err()
}

func normalizeValue(v any, dbType string) any {
	switch t := v.(type) {
	case []byte:
		s := string(t)
		switch strings.ToUpper(dbType) {
		case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		case "DOUBLE", "FLOAT", "REAL", "DECIMAL", "NUMERIC":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
