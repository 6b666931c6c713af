// Package drivers registers the database/sql drivers of every dialect
// supported by crudgen. Import it for its side effects:
//
//	import _ "github.com/syssam/crudgen/dialect/sql/drivers"
package drivers

import (
	// Postgres as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Postgres as "postgres".
	_ "github.com/lib/pq"
	// MySQL as "mysql".
	_ "github.com/go-sql-driver/mysql"
	// SQLite as "sqlite".
	_ "modernc.org/sqlite"
)

// Names lists the registered driver names.
var Names = []string{"pgx", "postgres", "mysql", "sqlite"}
