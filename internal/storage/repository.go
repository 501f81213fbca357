// Package storage is the persistence collaborator of the decomposition
// engine: a small Repository contract plus a registry of backends that
// register themselves from init.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chidata/internal/ddl"
	"chidata/internal/records"
)

// Repository is one open target database.
//
// Values handed to WriteRows are nil, string, int64 or float64. ReadRows
// returns the same kinds (driver byte slices are decoded) so lookups built
// from persisted rows key the same way as in-memory rows.
type Repository interface {
	// Dialect renders identifiers and DDL for this backend.
	Dialect() ddl.Dialect

	// ResetTable drops def's table if present and creates it empty.
	ResetTable(ctx context.Context, def ddl.TableDef) error

	// WriteRows bulk-inserts rows (positional, matching cols) into table and
	// returns the number of rows written.
	WriteRows(ctx context.Context, table string, cols []string, rows [][]any) (int64, error)

	// ReadRows returns every row of table projected onto cols.
	ReadRows(ctx context.Context, table string, cols []string) ([]records.Record, error)

	// Exec runs one statement and returns rows affected.
	Exec(ctx context.Context, stmt string) (int64, error)

	// Query runs a read statement and returns its column names and rows.
	Query(ctx context.Context, q string) ([]string, [][]any, error)

	// QueryReadOnly is Query for statements from outside the engine. It runs
	// q in a transaction that rejects writes where the backend can and is
	// rolled back regardless.
	QueryReadOnly(ctx context.Context, q string) ([]string, [][]any, error)

	// Vacuum reclaims space after deletes; backends without an equivalent
	// may refresh statistics or do nothing.
	Vacuum(ctx context.Context, tables []string) error

	Close()
}

// Config selects and opens a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering a kind again
// replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of rows in table.
func Count(ctx context.Context, repo Repository, table string) (int64, error) {
	_, rows, err := repo.Query(ctx, "SELECT COUNT(*) FROM "+repo.Dialect().QuoteFQN(table))
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 || len(rows[0]) != 1 {
		return 0, fmt.Errorf("storage: count %s: unexpected result shape", table)
	}
	switch n := rows[0][0].(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		var v int64
		if _, err := fmt.Sscan(records.Key(n), &v); err != nil {
			return 0, fmt.Errorf("storage: count %s: %w", table, err)
		}
		return v, nil
	}
}
