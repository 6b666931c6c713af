// Package dialect names the SQL dialects supported by the crudgen runtime.
//
// Generated services never branch on the dialect themselves. The dialect of
// a handle selects the placeholder format of statements (dialect/sql) and
// the full-text search strategy of list queries (filter).
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL, through jackc/pgx or lib/pq
//   - MySQL: MySQL and MariaDB, through go-sql-driver/mysql
//   - SQLite: SQLite, through modernc.org/sqlite
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Sub-packages
//
//   - dialect/sql: driver, statements and constraint errors
//   - dialect/sql/schema: index analysis of registered entities
//   - dialect/sql/drivers: blank imports registering every supported driver
package dialect
