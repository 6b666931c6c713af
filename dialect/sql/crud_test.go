package sql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
)

type author struct {
	ID   int64   `db:"id"`
	Name string  `db:"name"`
	Bio  *string `db:"bio"`
}

type authorID int64

var authorMeta = &crudgen.EntityMeta{
	Name:       "author",
	Plural:     "authors",
	Table:      "authors",
	PrimaryKey: "id",
	Columns:    []string{"id", "name", "bio"},
}

func mockDriver(t *testing.T, d string) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return OpenDB(d, db), mock
}

func TestBuilder(t *testing.T) {
	query, _, err := Builder(dialect.Postgres).Select("id").From("authors").Where(squirrel.Eq{"id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM authors WHERE id = $1", query)

	query, _, err = Builder(dialect.MySQL).Select("id").From("authors").Where(squirrel.Eq{"id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM authors WHERE id = ?", query)
}

func TestSelectOne(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)

	mock.ExpectQuery(`SELECT id, name, bio FROM authors WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio"}).AddRow(1, "Ursula", nil))
	a, err := SelectOne[author](ctx, drv, authorMeta, 1)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, author{ID: 1, Name: "Ursula"}, *a)

	mock.ExpectQuery(`SELECT id, name, bio FROM authors WHERE id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio"}))
	a, err = SelectOne[author](ctx, drv, authorMeta, 2)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestSelectAll(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.MySQL)

	mock.ExpectQuery(`SELECT id, name, bio FROM authors WHERE id IN \(\?,\?\) ORDER BY id`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio"}).
			AddRow(1, "Ursula", "Earthsea").
			AddRow(2, "Terry", nil))
	rows, err := SelectAll[author](ctx, drv, authorMeta, "id", []any{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Earthsea", *rows[0].Bio)
	assert.Nil(t, rows[1].Bio)

	rows, err = SelectAll[author](ctx, drv, authorMeta, "id", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryAndCount(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)
	b := Builder(drv.Dialect())

	mock.ExpectQuery(`SELECT id, name, bio FROM authors ORDER BY name ASC LIMIT 2 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio"}).AddRow(2, "Terry", nil))
	rows, err := Query[author](ctx, drv, b.Select(authorMeta.Columns...).From("authors").OrderBy("name ASC").Limit(2).Offset(0))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM authors WHERE name = \$1`).
		WithArgs("Terry").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	n, err := Count(ctx, drv, b.Select("COUNT(*)").From("authors").Where(squirrel.Eq{"name": "Terry"}))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("returning", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO authors \(name,bio\) VALUES \(\$1,\$2\) RETURNING id`).
			WithArgs("Ursula", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		id, err := Insert[int64](ctx, drv, authorMeta, []string{"name", "bio"}, []any{"Ursula", nil})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("last insert id", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		mock.ExpectExec(`INSERT INTO authors \(name,bio\) VALUES \(\?,\?\)`).
			WithArgs("Ursula", nil).
			WillReturnResult(sqlmock.NewResult(9, 1))
		id, err := Insert[authorID](ctx, drv, authorMeta, []string{"name", "bio"}, []any{"Ursula", nil})
		require.NoError(t, err)
		assert.Equal(t, authorID(9), id)
	})

	t.Run("caller key", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectExec(`INSERT INTO authors \(id,name\) VALUES \(\$1,\$2\)`).
			WithArgs("a-1", "Ursula").
			WillReturnResult(sqlmock.NewResult(0, 1))
		id, err := Insert[string](ctx, drv, authorMeta, []string{"id", "name"}, []any{"a-1", "Ursula"})
		require.NoError(t, err)
		assert.Equal(t, "a-1", id)
	})

	t.Run("key type mismatch", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		mock.ExpectExec(`INSERT INTO authors`).WillReturnResult(sqlmock.NewResult(3, 1))
		_, err := Insert[string](ctx, drv, authorMeta, []string{"name"}, []any{"Ursula"})
		assert.ErrorContains(t, err, "cannot use int64 as key of type string")
	})

	t.Run("constraint", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		mock.ExpectExec(`INSERT INTO authors`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Ursula' for key 'name'"})
		_, err := Insert[int64](ctx, drv, authorMeta, []string{"name"}, []any{"Ursula"})
		require.Error(t, err)
		assert.True(t, crudgen.IsConstraintError(err))
		assert.ErrorIs(t, err, crudgen.ErrConstraint)
		assert.ErrorContains(t, err, "Duplicate entry")
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)

	mock.ExpectExec(`UPDATE authors SET name = \$1, bio = \$2 WHERE id = \$3`).
		WithArgs("Ursula K.", nil, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := UpdateByID(ctx, drv, authorMeta, 1, []string{"name", "bio"}, []any{"Ursula K.", nil})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM authors WHERE id = \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	n, err = UpdateByID(ctx, drv, authorMeta, 5, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = UpdateByID(ctx, drv, authorMeta, 1, []string{"name"}, nil)
	assert.Error(t, err)

	mock.ExpectExec(`DELETE FROM authors WHERE id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = DeleteByID(ctx, drv, authorMeta, 3)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec(`DELETE FROM authors WHERE id IN \(\$1,\$2\)`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err = DeleteIn(ctx, drv, authorMeta, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = DeleteIn(ctx, drv, authorMeta, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	drv, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	defer drv.Close()
	_, err = drv.ExecContext(ctx, "CREATE TABLE authors (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, bio TEXT)")
	require.NoError(t, err)

	id, err := Insert[int64](ctx, drv, authorMeta, []string{"name", "bio"}, []any{"Ursula", "Earthsea"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	a, err := SelectOne[author](ctx, drv, authorMeta, id)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Ursula", a.Name)

	_, err = Insert[int64](ctx, drv, authorMeta, []string{"name"}, []any{"Ursula"})
	require.Error(t, err)
	assert.True(t, crudgen.IsConstraintError(err), "got %v", err)
	assert.True(t, IsUniqueConstraintError(err))

	err = WithTx(ctx, drv, func(tx Querier) error {
		_, err := UpdateByID(ctx, tx, authorMeta, id, []string{"bio"}, []any{nil})
		return err
	})
	require.NoError(t, err)
	a, err = SelectOne[author](ctx, drv, authorMeta, id)
	require.NoError(t, err)
	assert.Nil(t, a.Bio)
}
