// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "chidata/internal/storage/all"
//
// after which storage.New accepts "sqlite", "postgres", "mysql" and "mssql".
package all

import (
	_ "chidata/internal/storage/mssql"
	_ "chidata/internal/storage/mysql"
	_ "chidata/internal/storage/postgres"
	_ "chidata/internal/storage/sqlite"
)
