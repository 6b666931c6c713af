package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/syssam/crudgen"
)

// PostgreSQL SQLSTATE codes for constraint violations (class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlNotNull          = 1048
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // cannot add or update a child row
	mysqlCheckViolation   = 3819
)

// SQLite primary result code of every extended constraint code.
const sqliteConstraint = 19

// WrapError converts a driver error raised by a constraint violation into a
// crudgen.ConstraintError. Other errors are returned unchanged.
func WrapError(err error) error {
	if err == nil || crudgen.IsConstraintError(err) {
		return err
	}
	if IsConstraintError(err) {
		return crudgen.NewConstraintError(constraintMessage(err), err)
	}
	return err
}

// IsConstraintError reports whether err resulted from a database constraint
// violation of any kind.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if crudgen.IsConstraintError(err) {
		return true
	}
	if e, ok := asError[*pgconn.PgError](err); ok {
		return strings.HasPrefix(e.Code, "23")
	}
	if e, ok := asError[*pq.Error](err); ok {
		return e.Code.Class() == "23"
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		switch e.Number {
		case mysqlNotNull, mysqlDuplicateEntry, mysqlForeignKeyParent, mysqlForeignKeyChild, mysqlCheckViolation:
			return true
		}
		return false
	}
	if e, ok := asError[*sqlite.Error](err); ok {
		return e.Code()&0xff == sqliteConstraint
	}
	return IsUniqueConstraintError(err) || IsForeignKeyConstraintError(err) || IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness
// constraint violation, e.g. a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool {
	return matchConstraint(err, pgUniqueViolation, []uint16{mysqlDuplicateEntry},
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database
// foreign-key constraint violation, e.g. the parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return matchConstraint(err, pgForeignKeyViolation, []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports if the error resulted from a database check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	return matchConstraint(err, pgCheckViolation, []uint16{mysqlCheckViolation},
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

func matchConstraint(err error, pgCode string, mysqlNumbers []uint16, messages ...string) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[*pgconn.PgError](err); ok {
		return e.Code == pgCode
	}
	if e, ok := asError[*pq.Error](err); ok {
		return string(e.Code) == pgCode
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		for _, n := range mysqlNumbers {
			if e.Number == n {
				return true
			}
		}
		return false
	}
	// Drivers without typed errors (and SQLite, whose extended codes are
	// matched by message) fall back to the error text.
	return containsAny(err.Error(), messages...)
}

func constraintMessage(err error) string {
	if e, ok := asError[*pgconn.PgError](err); ok {
		if e.ConstraintName != "" {
			return e.Message + " (" + e.ConstraintName + ")"
		}
		return e.Message
	}
	if e, ok := asError[*pq.Error](err); ok {
		return e.Message
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		return e.Message
	}
	return err.Error()
}

// asError extracts the first error of type T from the error chain.
func asError[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
