package dialect

import "strings"

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Normalize maps a database/sql driver name to its dialect: "pgx" and
// "postgres" are Postgres, "sqlite3" is SQLite. Unknown names are
// returned unchanged.
func Normalize(name string) string {
	switch {
	case name == "pgx" || strings.HasPrefix(name, Postgres):
		return Postgres
	case strings.HasPrefix(name, SQLite):
		return SQLite
	case strings.HasPrefix(name, MySQL):
		return MySQL
	}
	return name
}
