package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/dialect"
)

func TestSelectBuilder(t *testing.T) {
	meta := authorMeta()

	t.Run("defaults", func(t *testing.T) {
		var q *Query
		sb, err := q.SelectBuilder(meta, dialect.Postgres)
		require.NoError(t, err)
		query, args, err := sb.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name, bio, born, rating FROM authors ORDER BY authors.name ASC LIMIT 50 OFFSET 0", query)
		assert.Empty(t, args)
	})

	t.Run("conditions", func(t *testing.T) {
		q := &Query{
			Conditions: []Condition{
				{Column: "id", Op: OpEq, Value: []any{int64(1), int64(2)}},
				{Column: "born", Op: OpGte, Value: int64(1920)},
				{Column: "rating", Op: OpNeq, Value: nil},
				{Column: "name", Op: OpLike, Value: "sul"},
			},
			Sort:   []Sort{{Column: "born", Direction: Desc}, {Column: "name", Direction: Asc}},
			Offset: 10,
			Limit:  5,
		}
		sb, err := q.SelectBuilder(meta, dialect.Postgres)
		require.NoError(t, err)
		query, args, err := sb.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name, bio, born, rating FROM authors "+
			"WHERE authors.id IN ($1,$2) AND authors.born >= $3 AND authors.rating IS NOT NULL AND authors.name ILIKE $4 ESCAPE '\\' "+
			"ORDER BY authors.born DESC, authors.name ASC LIMIT 5 OFFSET 10", query)
		assert.Equal(t, []any{int64(1), int64(2), int64(1920), "%sul%"}, args)
	})

	t.Run("like", func(t *testing.T) {
		q := &Query{Conditions: []Condition{{Column: "name", Op: OpLike, Value: "sul"}}}
		sb, err := q.CountBuilder(meta, dialect.SQLite)
		require.NoError(t, err)
		query, args, err := sb.ToSql()
		require.NoError(t, err)
		assert.Equal(t, `SELECT COUNT(*) FROM authors WHERE authors.name LIKE ? ESCAPE '\'`, query)
		assert.Equal(t, []any{"%sul%"}, args)
	})

	t.Run("like wildcards", func(t *testing.T) {
		q := &Query{Conditions: []Condition{{Column: "name", Op: OpLike, Value: `50%_off\`}}}
		sb, err := q.CountBuilder(meta, dialect.MySQL)
		require.NoError(t, err)
		query, args, err := sb.ToSql()
		require.NoError(t, err)
		assert.Equal(t, `SELECT COUNT(*) FROM authors WHERE authors.name LIKE ? ESCAPE '\\'`, query)
		assert.Equal(t, []any{`%50\%\_off\\%`}, args)
	})

	t.Run("relations", func(t *testing.T) {
		q := &Query{
			Conditions: []Condition{
				{Join: "books", Column: "title", Op: OpEq, Value: "Dune"},
				{Join: "mentor", Column: "name", Op: OpEq, Value: "Ursula"},
			},
			Sort: []Sort{{Join: "books", Column: "title", Direction: Asc}},
		}
		sb, err := q.SelectBuilder(meta, dialect.Postgres)
		require.NoError(t, err)
		query, args, err := sb.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name, bio, born, rating FROM authors "+
			"WHERE EXISTS (SELECT 1 FROM books AS j_books WHERE j_books.author_id = authors.id AND j_books.title = $1) "+
			"AND EXISTS (SELECT 1 FROM authors AS j_mentor WHERE j_mentor.id = authors.mentor_id AND j_mentor.name = $2) "+
			"ORDER BY (SELECT MIN(j_books.title) FROM books AS j_books WHERE j_books.author_id = authors.id) ASC "+
			"LIMIT 50 OFFSET 0", query)
		assert.Equal(t, []any{"Dune", "Ursula"}, args)
	})

	t.Run("invalid", func(t *testing.T) {
		q := &Query{Conditions: []Condition{{Column: "bio", Op: OpEq, Value: "x"}}}
		_, err := q.SelectBuilder(meta, dialect.Postgres)
		assert.Error(t, err)
		_, err = q.CountBuilder(meta, dialect.Postgres)
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	meta := authorMeta()
	tests := []struct {
		dialect string
		query   string
		args    []any
	}{
		{
			dialect.Postgres,
			"SELECT COUNT(*) FROM authors WHERE to_tsvector('english', coalesce(authors.name, '') || ' ' || coalesce(authors.bio, '')) @@ plainto_tsquery('english', $1)",
			[]any{"Earth Sea"},
		},
		{
			dialect.MySQL,
			"SELECT COUNT(*) FROM authors WHERE MATCH(authors.name, authors.bio) AGAINST (? IN NATURAL LANGUAGE MODE)",
			[]any{"Earth Sea"},
		},
		{
			dialect.SQLite,
			`SELECT COUNT(*) FROM authors WHERE (LOWER(authors.name) LIKE ? ESCAPE '\' OR LOWER(authors.bio) LIKE ? ESCAPE '\')`,
			[]any{"%earth sea%", "%earth sea%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			sb, err := (&Query{Search: "Earth Sea"}).CountBuilder(meta, tt.dialect)
			require.NoError(t, err)
			query, args, err := sb.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.args, args)
		})
	}

	meta.FulltextLanguage = "french"
	query, _, err := Search(meta, dialect.Postgres, "x").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "to_tsvector('french'")
}
