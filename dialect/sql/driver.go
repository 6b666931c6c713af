package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
)

// Querier is the handle generated services run statements on. *Driver,
// *Tx and *StatsDriver implement it.
type Querier interface {
	ExecQuerier
	Dialect() string
}

// ExecQuerier wraps the standard Exec and Query methods. *sql.DB, *sql.Tx
// and *sql.Conn implement it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TxQuerier is a Querier bound to a running transaction.
type TxQuerier interface {
	Querier
	Commit() error
	Rollback() error
}

// Beginner is implemented by handles that can start a transaction.
type Beginner interface {
	Begin(ctx context.Context) (TxQuerier, error)
}

// Conn binds an ExecQuerier to a dialect.
type Conn struct {
	ExecQuerier
	dialect string
}

// Dialect returns the dialect of the connection.
func (c Conn) Dialect() string {
	return dialect.Normalize(c.dialect)
}

// Driver is a Querier over a *sql.DB.
type Driver struct {
	Conn
	db *sql.DB
}

// NewDriver creates a new Driver with the given dialect and database.
func NewDriver(dialect string, db *sql.DB) *Driver {
	return &Driver{Conn: Conn{db, dialect}, db: db}
}

// Open wraps the database/sql.Open method. The driver name also selects the
// dialect, see dialect.Normalize.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(driverName, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, db)
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Conn: Conn{tx, d.dialect}, tx: tx}, nil
}

// Begin starts a transaction with the default options.
func (d *Driver) Begin(ctx context.Context) (TxQuerier, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.db.Close() }

// Tx is a Querier bound to a transaction.
type Tx struct {
	Conn
	tx *sql.Tx
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.tx.Commit() }

// Rollback aborts the transaction.
func (tx *Tx) Rollback() error { return tx.tx.Rollback() }

// WithTx runs fn in a transaction. When db is already a transaction, fn
// joins it. The transaction is rolled back when fn fails or panics.
func WithTx(ctx context.Context, db Querier, fn func(tx Querier) error) error {
	if tx, ok := db.(TxQuerier); ok {
		return fn(tx)
	}
	b, ok := db.(Beginner)
	if !ok {
		return fmt.Errorf("dialect/sql: %T cannot begin a transaction", db)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &crudgen.RollbackError{Err: errors.Join(err, rerr)}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit transaction: %w", err)
	}
	return nil
}

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

var (
	_ Querier   = (*Driver)(nil)
	_ TxQuerier = (*Tx)(nil)
	_ Beginner  = (*Driver)(nil)
)
