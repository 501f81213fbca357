// Package sqlite is the SQLite storage backend (modernc.org/sqlite, no cgo).
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or SQLite URI, e.g. "chi.db" or ":memory:".
	DSN string
}
