package sql

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
)

// Builder returns a squirrel statement builder using the placeholder format
// of the given dialect.
func Builder(d string) squirrel.StatementBuilderType {
	if dialect.Normalize(d) == dialect.Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// SelectOne reads the row of meta's table whose primary key is id. It
// returns nil and no error when there is no such row.
func SelectOne[T any](ctx context.Context, db Querier, meta *crudgen.EntityMeta, id any) (*T, error) {
	query, args, err := Builder(db.Dialect()).
		Select(meta.Columns...).
		From(meta.Table).
		Where(squirrel.Eq{meta.PrimaryKey: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var v T
	if err := sqlscan.Get(ctx, db, &v, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", meta.Name, err)
	}
	return &v, nil
}

// SelectAll reads the rows of meta's table whose column holds one of
// values, ordered by primary key. It issues no query for empty values.
func SelectAll[T any](ctx context.Context, db Querier, meta *crudgen.EntityMeta, column string, values []any) ([]T, error) {
	if len(values) == 0 {
		return nil, nil
	}
	sb := Builder(db.Dialect()).
		Select(meta.Columns...).
		From(meta.Table).
		Where(squirrel.Eq{column: values}).
		OrderBy(meta.PrimaryKey)
	return Query[T](ctx, db, sb)
}

// Query runs q and scans every row into a T.
func Query[T any](ctx context.Context, db Querier, q squirrel.Sqlizer) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []T
	if err := sqlscan.Select(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning rows: %w", err)
	}
	return rows, nil
}

// Count runs q, a query returning a single number.
func Count(ctx context.Context, db Querier, q squirrel.Sqlizer) (int, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	var n int
	if err := sqlscan.Get(ctx, db, &n, query, args...); err != nil {
		return 0, fmt.Errorf("scanning count: %w", err)
	}
	return n, nil
}

// Insert writes one row to meta's table and returns its primary key. When
// the key is not among columns, the database assigns it: Postgres and
// SQLite return it with RETURNING, MySQL through LastInsertId.
func Insert[K any](ctx context.Context, db Querier, meta *crudgen.EntityMeta, columns []string, values []any) (K, error) {
	var key K
	ib := Builder(db.Dialect()).
		Insert(meta.Table).
		Columns(columns...).
		Values(values...)
	if i := slices.Index(columns, meta.PrimaryKey); i >= 0 {
		if _, err := exec(ctx, db, ib); err != nil {
			return key, err
		}
		return convertKey[K](values[i])
	}
	if dialect.Normalize(db.Dialect()) == dialect.MySQL {
		res, err := exec(ctx, db, ib)
		if err != nil {
			return key, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return key, fmt.Errorf("reading inserted id: %w", err)
		}
		return convertKey[K](id)
	}
	query, args, err := ib.Suffix("RETURNING " + meta.PrimaryKey).ToSql()
	if err != nil {
		return key, fmt.Errorf("building insert: %w", err)
	}
	if err := sqlscan.Get(ctx, db, &key, query, args...); err != nil {
		return key, WrapError(err)
	}
	return key, nil
}

// UpdateByID sets columns to values on the row whose primary key is id and
// returns the number of affected rows.
func UpdateByID(ctx context.Context, db Querier, meta *crudgen.EntityMeta, id any, columns []string, values []any) (int64, error) {
	if len(columns) != len(values) {
		return 0, fmt.Errorf("dialect/sql: %d columns for %d values", len(columns), len(values))
	}
	if len(columns) == 0 {
		n, err := Count(ctx, db, Builder(db.Dialect()).
			Select("COUNT(*)").
			From(meta.Table).
			Where(squirrel.Eq{meta.PrimaryKey: id}))
		return int64(n), err
	}
	ub := Builder(db.Dialect()).Update(meta.Table).Where(squirrel.Eq{meta.PrimaryKey: id})
	for i, c := range columns {
		ub = ub.Set(c, values[i])
	}
	return affected(exec(ctx, db, ub))
}

// DeleteByID deletes the row whose primary key is id and returns the number
// of affected rows.
func DeleteByID(ctx context.Context, db Querier, meta *crudgen.EntityMeta, id any) (int64, error) {
	del := Builder(db.Dialect()).Delete(meta.Table).Where(squirrel.Eq{meta.PrimaryKey: id})
	return affected(exec(ctx, db, del))
}

// DeleteIn deletes the rows whose primary key is one of ids and returns the
// number of affected rows.
func DeleteIn(ctx context.Context, db Querier, meta *crudgen.EntityMeta, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	del := Builder(db.Dialect()).Delete(meta.Table).Where(squirrel.Eq{meta.PrimaryKey: ids})
	return affected(exec(ctx, db, del))
}

func exec(ctx context.Context, db Querier, q squirrel.Sqlizer) (Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building statement: %w", err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, WrapError(err)
	}
	return res, nil
}

func affected(res Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}

// convertKey converts a key value read from a statement or supplied by the
// caller to the key type K.
func convertKey[K any](v any) (K, error) {
	var key K
	if k, ok := v.(K); ok {
		return k, nil
	}
	dst := reflect.ValueOf(&key).Elem()
	src := reflect.ValueOf(v)
	if !src.IsValid() || !convertible(src.Type(), dst.Type()) {
		return key, fmt.Errorf("dialect/sql: cannot use %T as key of type %T", v, key)
	}
	dst.Set(src.Convert(dst.Type()))
	return key, nil
}

func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	// Integer to string conversions yield runes, not digits.
	return (from.Kind() == reflect.String) == (to.Kind() == reflect.String)
}
