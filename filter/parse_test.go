package filter

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

func authorMeta() *crudgen.EntityMeta {
	return &crudgen.EntityMeta{
		Name:        "author",
		Plural:      "authors",
		Table:       "authors",
		PrimaryKey:  "id",
		Columns:     []string{"id", "name", "bio", "born", "rating"},
		Sortable:    []string{"name", "born"},
		Filterable:  []string{"name", "born", "rating", "rating_gt"},
		Fulltext:    []string{"name", "bio"},
		Like:        []string{"name"},
		DefaultSort: "name",
		Joins: []crudgen.JoinMeta{
			{Name: "books", Kind: crudgen.HasMany, Table: "books", PrimaryKey: "id", Column: "author_id", Filterable: []string{"title"}, Sortable: []string{"title"}},
			{Name: "mentor", Kind: crudgen.BelongsTo, Table: "authors", PrimaryKey: "id", Column: "mentor_id", Filterable: []string{"name"}},
		},
	}
}

func parse(t *testing.T, params map[string]string) (*Query, error) {
	t.Helper()
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return Parse(authorMeta(), values)
}

func TestParseDefaults(t *testing.T) {
	q, err := parse(t, nil)
	require.NoError(t, err)
	assert.Equal(t, &Query{Limit: DefaultLimit}, q)
}

func TestParseFilter(t *testing.T) {
	q, err := parse(t, map[string]string{
		"filter": `{"q":" earth ","id":[1,2],"born_gte":1920,"rating_lt":4.5,"name_like":"sul","born":null,"books.title":"Dune","name_neq":"Ursula"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "earth", q.Search)
	assert.Equal(t, []Condition{
		{Join: "books", Column: "title", Op: OpEq, Value: "Dune"},
		{Column: "born", Op: OpEq, Value: nil},
		{Column: "born", Op: OpGte, Value: int64(1920)},
		{Column: "id", Op: OpEq, Value: []any{int64(1), int64(2)}},
		{Column: "name", Op: OpLike, Value: "sul"},
		{Column: "name", Op: OpNeq, Value: "Ursula"},
		{Column: "rating", Op: OpLt, Value: 4.5},
	}, q.Conditions)
}

func TestParseFilterSuffix(t *testing.T) {
	// A suffix wins whenever the rest of the key is a column, even when the
	// whole key is one too.
	q, err := parse(t, map[string]string{"filter": `{"rating_gt":3}`})
	require.NoError(t, err)
	assert.Equal(t, []Condition{{Column: "rating", Op: OpGt, Value: int64(3)}}, q.Conditions)

	q, err = parse(t, map[string]string{"filter": `{"rating_gt_lt":3}`})
	require.NoError(t, err)
	assert.Equal(t, []Condition{{Column: "rating_gt", Op: OpLt, Value: int64(3)}}, q.Conditions)
}

func TestParseSearchAlias(t *testing.T) {
	q, err := parse(t, map[string]string{"q": "wizard"})
	require.NoError(t, err)
	assert.Equal(t, "wizard", q.Search)

	q, err = parse(t, map[string]string{"q": "wizard", "filter": `{"q":"dragon"}`})
	require.NoError(t, err)
	assert.Equal(t, "dragon", q.Search)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown column":          {"filter": `{"secret":1}`},
		"not filterable":          {"filter": `{"bio_like":"x"}`},
		"like on non-like column": {"filter": `{"born_like":"19"}`},
		"unknown relation":        {"filter": `{"awards.name":"Hugo"}`},
		"relation column":         {"filter": `{"books.isbn":"1"}`},
		"like on relation":        {"filter": `{"books.title_like":"Du"}`},
		"comparison with list":    {"filter": `{"born_gte":[1,2]}`},
		"comparison with null":    {"filter": `{"born_lt":null}`},
		"nested object":           {"filter": `{"name":{"eq":"x"}}`},
		"nested list":             {"filter": `{"id":[[1]]}`},
		"not an object":           {"filter": `[1,2]`},
		"search not a string":     {"filter": `{"q":1}`},
		"unknown sort":            {"sort": `["bio","ASC"]`},
		"bad direction":           {"sort": `["name","UP"]`},
		"bad sort shape":          {"sort": `{"name":"ASC"}`},
		"sort pair too long":      {"sort": `["name","ASC","x"]`},
		"sort pair too short":     {"sort": `["name"]`},
		"long pair in sort list":  {"sort": `[["born","DESC"],["name","ASC","x"]]`},
		"sort relation column":    {"sort": `["mentor.name","ASC"]`},
		"sort and sort_by":        {"sort": `["name","ASC"]`, "sort_by": "name"},
		"order count":             {"sort_by": "name,born", "order": "ASC,DESC,ASC"},
		"range and page":          {"range": `[0,9]`, "page": "1"},
		"bad range":               {"range": `[5,1]`},
		"range shape":             {"range": `"0-9"`},
		"range too long":          {"range": `[0,9,20]`},
		"negative range":          {"range": `[-1,3]`},
		"page zero":               {"page": "0"},
		"per_page":                {"per_page": "x"},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parse(t, params)
			require.Error(t, err)
			var ferr *Error
			assert.True(t, errors.As(err, &ferr))
			assert.ErrorIs(t, err, crudgen.ErrValidation)
			assert.True(t, crudgen.IsValidationError(err))
		})
	}
}

func TestParseSearchWithoutFulltext(t *testing.T) {
	meta := authorMeta()
	meta.Fulltext = nil
	_, err := Parse(meta, url.Values{"q": {"x"}})
	assert.EqualError(t, err, `filter: invalid filter "q": author has no fulltext columns`)
}

func TestParseSort(t *testing.T) {
	q, err := parse(t, map[string]string{"sort": `["name","desc"]`})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Column: "name", Direction: Desc}}, q.Sort)

	q, err = parse(t, map[string]string{"sort": `[["born","DESC"],["books.title","ASC"]]`})
	require.NoError(t, err)
	assert.Equal(t, []Sort{
		{Column: "born", Direction: Desc},
		{Join: "books", Column: "title", Direction: Asc},
	}, q.Sort)

	q, err = parse(t, map[string]string{"sort_by": "born,name", "order": "DESC"})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Column: "born", Direction: Desc}, {Column: "name", Direction: Desc}}, q.Sort)

	q, err = parse(t, map[string]string{"sort_by": "born,name", "order": "DESC,ASC"})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Column: "born", Direction: Desc}, {Column: "name", Direction: Asc}}, q.Sort)

	q, err = parse(t, map[string]string{"sort_by": "name"})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Column: "name", Direction: Asc}}, q.Sort)

	_, err = parse(t, map[string]string{"sort": `["name","ASC","x"]`})
	assert.EqualError(t, err, `filter: invalid sort: sort pair has 3 elements, expected ["column","ASC|DESC"]`)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		params        map[string]string
		offset, limit int
	}{
		{map[string]string{"range": "[0,1]"}, 0, 2},
		{map[string]string{"range": "[10,19]"}, 10, 10},
		{map[string]string{"range": "[0,5000]"}, 0, MaxLimit},
		{map[string]string{"page": "3", "per_page": "20"}, 40, 20},
		{map[string]string{"page": "2"}, DefaultLimit, DefaultLimit},
		{map[string]string{"per_page": "5000"}, 0, MaxLimit},
	}
	for _, tt := range tests {
		q, err := parse(t, tt.params)
		require.NoError(t, err, tt.params)
		assert.Equal(t, tt.offset, q.Offset, tt.params)
		assert.Equal(t, tt.limit, q.Limit, tt.params)
	}
}

func TestQueryWindow(t *testing.T) {
	var q *Query
	offset, limit := q.Window()
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultLimit, limit)

	offset, limit = (&Query{Offset: -3, Limit: 2 * MaxLimit}).Window()
	assert.Equal(t, 0, offset)
	assert.Equal(t, MaxLimit, limit)
}

func TestQueryValidate(t *testing.T) {
	meta := authorMeta()
	assert.NoError(t, (*Query)(nil).Validate(meta))
	assert.NoError(t, (&Query{Conditions: []Condition{{Column: "id", Op: OpEq, Value: 1}}}).Validate(meta))
	assert.Error(t, (&Query{Conditions: []Condition{{Column: "bio", Op: OpEq, Value: "x"}}}).Validate(meta))
	assert.Error(t, (&Query{Conditions: []Condition{{Column: "name", Op: "regex", Value: "x"}}}).Validate(meta))
	assert.Error(t, (&Query{Conditions: []Condition{{Column: "name", Op: OpLike, Value: 3}}}).Validate(meta))
	assert.Error(t, (&Query{Sort: []Sort{{Column: "name", Direction: "UP"}}}).Validate(meta))
	assert.NoError(t, (&Query{Sort: []Sort{{Join: "books", Column: "title", Direction: Asc}}}).Validate(meta))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" desc ")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
