// Package sql is the persistence adapter of the crudgen runtime. Generated
// services run every statement through it.
//
// # Handles
//
// Statements run on a Querier: a Driver over a *sql.DB, a Tx bound to a
// transaction, or a wrapper such as StatsDriver. The dialect of the handle
// selects the placeholder format of the squirrel builders:
//
//	drv, err := sql.Open("pgx", dsn)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Driver names map to dialects: "pgx" and "postgres" are Postgres, "mysql"
// is MySQL, "sqlite" and "sqlite3" are SQLite.
//
// # Statements
//
// The statement helpers take the EntityMeta of the generated entity for its
// table, primary key and column list. Rows are scanned with scany, which
// maps columns through the db struct tag:
//
//	a, err := sql.SelectOne[Author](ctx, db, AuthorMeta, id)      // nil when missing
//	books, err := sql.SelectAll[Book](ctx, db, BookMeta, "author_id", ids)
//	id, err := sql.Insert[int64](ctx, db, AuthorMeta, columns, values)
//	n, err := sql.UpdateByID(ctx, db, AuthorMeta, id, columns, values)
//	n, err := sql.DeleteByID(ctx, db, AuthorMeta, id)
//
// # Transactions
//
// WithTx begins a transaction on a Driver, or joins the running one when
// called with a Tx. A failed rollback is reported as crudgen.RollbackError:
//
//	err := sql.WithTx(ctx, db, func(tx sql.Querier) error {
//	    _, err := sql.UpdateByID(ctx, tx, AuthorMeta, id, columns, values)
//	    return err
//	})
//
// # Errors
//
// Constraint violations raised by pgx, lib/pq, go-sql-driver/mysql and
// modernc.org/sqlite are converted to crudgen.ConstraintError. The
// predicates IsUniqueConstraintError, IsForeignKeyConstraintError and
// IsCheckConstraintError tell them apart.
//
// # Statistics
//
// StatsDriver counts queries, statements, errors and slow calls, including
// those run in transactions it begins:
//
//	db := sql.NewStatsDriver(drv, sql.WithSlowQueryLog())
//	fmt.Println(db.QueryStats().Stats())
package sql
