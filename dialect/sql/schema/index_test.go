package schema

import (
	"context"
	"testing"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/schema"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
	"github.com/syssam/crudgen/dialect/sql"
)

var (
	authorMeta = &crudgen.EntityMeta{
		Name:       "author",
		Plural:     "authors",
		Table:      "authors",
		PrimaryKey: "id",
		Columns:    []string{"id", "name", "bio"},
		Sortable:   []string{"id", "name"},
		Filterable: []string{"id", "name"},
		Fulltext:   []string{"name", "bio"},
		Joins: []crudgen.JoinMeta{
			{Name: "books", Kind: crudgen.HasMany, Table: "books", PrimaryKey: "id", Column: "author_id"},
		},
	}
	bookMeta = &crudgen.EntityMeta{
		Name:       "book",
		Plural:     "books",
		Table:      "books",
		PrimaryKey: "id",
		Columns:    []string{"id", "title", "author_id"},
		Sortable:   []string{"title"},
		Filterable: []string{"author_id"},
		Joins: []crudgen.JoinMeta{
			{Name: "author", Kind: crudgen.BelongsTo, Table: "authors", PrimaryKey: "id", Column: "author_id"},
		},
	}
)

func openSQLite(t *testing.T, ddl ...string) *sql.Driver {
	t.Helper()
	drv, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = drv.Close() })
	for _, stmt := range ddl {
		_, err := drv.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return drv
}

func TestAnalyzeIndexesSQLite(t *testing.T) {
	drv := openSQLite(t,
		"CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL, bio TEXT)",
		"CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL, author_id INTEGER NOT NULL)",
		"CREATE INDEX idx_books_title ON books (title)",
	)
	report, err := AnalyzeIndexes(context.Background(), drv, authorMeta, bookMeta)
	require.NoError(t, err)

	got := make(map[string]string)
	for _, f := range report.Findings {
		got[f.Table+"."+f.Column] = f.Message
	}
	assert.Equal(t, map[string]string{
		"authors.name":    "sortable column has no index",
		"books.author_id": "join books foreign key column has no index",
	}, got)
	assert.Contains(t, report.String(), "CREATE INDEX idx_authors_name ON authors (name);")

	_, err = drv.ExecContext(context.Background(), "CREATE INDEX idx_authors_name ON authors (name)")
	require.NoError(t, err)
	_, err = drv.ExecContext(context.Background(), "CREATE INDEX idx_books_author ON books (author_id, title)")
	require.NoError(t, err)
	report, err = AnalyzeIndexes(context.Background(), drv, authorMeta, bookMeta)
	require.NoError(t, err)
	assert.True(t, report.Empty(), report.String())
	assert.Equal(t, "No issues found", report.String())
}

func TestAnalyzeIndexesRegistered(t *testing.T) {
	drv := openSQLite(t,
		"CREATE TABLE tags (id INTEGER PRIMARY KEY, label TEXT NOT NULL)",
		"CREATE UNIQUE INDEX tags_label ON tags (label)",
	)
	crudgen.Register(&crudgen.EntityMeta{
		Name:       "tag",
		Table:      "tags",
		PrimaryKey: "id",
		Columns:    []string{"id", "label"},
		Sortable:   []string{"label"},
	})
	// Entities of other tests may be registered; analyze only the tags.
	m, ok := crudgen.Lookup("tag")
	require.True(t, ok)
	report, err := AnalyzeIndexes(context.Background(), drv, m)
	require.NoError(t, err)
	assert.True(t, report.Empty(), report.String())
}

// table builds an inspected table with one index per column group.
func table(name string, indexes ...[]string) *schema.Table {
	t := &schema.Table{Name: name}
	for _, cols := range indexes {
		idx := &schema.Index{Name: "idx_" + name + "_" + cols[0], Table: t}
		for i, c := range cols {
			idx.Parts = append(idx.Parts, &schema.IndexPart{SeqNo: i, C: &schema.Column{Name: c}})
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t
}

func TestAnalyzePostgresFulltext(t *testing.T) {
	tables := map[string]*schema.Table{
		"authors": table("authors", []string{"name"}),
		"books":   table("books", []string{"author_id"}),
	}
	report := &Report{}
	analyze(authorMeta, tables, dialect.Postgres, report)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, "name,bio", f.Column)
	assert.Equal(t, "fulltext columns have no search index", f.Message)
	assert.Equal(t, "CREATE INDEX idx_authors_fts ON authors USING GIN (to_tsvector('english', coalesce(name, '') || ' ' || coalesce(bio, '')));", f.Suggestion)

	authors := tables["authors"]
	authors.Indexes = append(authors.Indexes, &schema.Index{
		Name:  "idx_authors_fts",
		Table: authors,
		Parts: []*schema.IndexPart{{X: &schema.RawExpr{X: "to_tsvector('english'::regconfig, COALESCE(name, ''::text))"}}},
	})
	report = &Report{}
	analyze(authorMeta, tables, dialect.Postgres, report)
	assert.True(t, report.Empty(), report.String())
}

func TestAnalyzeMySQL(t *testing.T) {
	tables := map[string]*schema.Table{"books": table("books", []string{"title", "author_id"})}
	report := &Report{}
	analyze(bookMeta, tables, dialect.MySQL, report)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "author_id", report.Findings[0].Column)
	assert.Equal(t, "filterable column has no index", report.Findings[0].Message)

	t.Run("fulltext", func(t *testing.T) {
		authors := table("authors", []string{"name"})
		tables := map[string]*schema.Table{"authors": authors, "books": table("books", []string{"author_id"})}
		report := &Report{}
		analyze(authorMeta, tables, dialect.MySQL, report)
		require.Len(t, report.Findings, 1)
		assert.Equal(t, "CREATE FULLTEXT INDEX idx_authors_fts ON authors (name, bio);", report.Findings[0].Suggestion)

		authors.Indexes = append(authors.Indexes, &schema.Index{
			Name:  "idx_authors_fts",
			Table: authors,
			Attrs: []schema.Attr{&mysql.IndexType{T: "FULLTEXT"}},
			Parts: []*schema.IndexPart{
				{SeqNo: 0, C: &schema.Column{Name: "name"}},
				{SeqNo: 1, C: &schema.Column{Name: "bio"}},
			},
		})
		report = &Report{}
		analyze(authorMeta, tables, dialect.MySQL, report)
		assert.True(t, report.Empty(), report.String())
	})
}

func TestAnalyzeMissingTable(t *testing.T) {
	report := &Report{}
	analyze(bookMeta, map[string]*schema.Table{}, dialect.SQLite, report)
	assert.Len(t, report.Findings, 2, "every indexed column of a missing table is reported")
}

func TestAnalyzeIndexesUnsupportedDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	_, err = AnalyzeIndexes(context.Background(), sql.OpenDB("oracle", db), bookMeta)
	assert.ErrorContains(t, err, `unsupported dialect "oracle"`)
}
