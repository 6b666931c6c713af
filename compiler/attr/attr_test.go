package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

func TestParse(t *testing.T) {
	t.Run("shapes", func(t *testing.T) {
		ds, problems := Parse(`sortable, on_create=fmt.Sprint(1, 2), filterable=[a, 'b,c'], join(one, depth=2)`)
		require.Empty(t, problems)
		require.Len(t, ds, 4)

		assert.Equal(t, Directive{Kind: Flag, Name: "sortable"}, ds[0])
		assert.Equal(t, Directive{Kind: KeyValue, Name: "on_create", Value: "fmt.Sprint(1, 2)"}, ds[1])
		assert.Equal(t, Directive{Kind: List, Name: "filterable", List: []string{"a", "b,c"}}, ds[2])
		assert.Equal(t, Group, ds[3].Kind)
		assert.Equal(t, []Directive{
			{Kind: Flag, Name: "one"},
			{Kind: KeyValue, Name: "depth", Value: "2"},
		}, ds[3].Args)
	})

	t.Run("quoted values", func(t *testing.T) {
		ds, problems := Parse(`validate='required,max=10', description="say \"hi\"", note='it\'s'`)
		require.Empty(t, problems)
		assert.Equal(t, "required,max=10", ds[0].Value)
		assert.Equal(t, `say "hi"`, ds[1].Value)
		assert.Equal(t, "it's", ds[2].Value)
	})

	t.Run("expression with comparison", func(t *testing.T) {
		ds, problems := Parse(`on_update=pick(a == b, x)`)
		require.Empty(t, problems)
		assert.Equal(t, "pick(a == b, x)", ds[0].Value)
	})

	t.Run("malformed group is skipped", func(t *testing.T) {
		ds, problems := Parse(`sortable, join(one, depth=2, filterable`)
		require.Len(t, ds, 1)
		assert.Equal(t, "sortable", ds[0].Name)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0].Error(), "malformed group")
	})

	t.Run("bad items", func(t *testing.T) {
		_, problems := Parse(`9lives, =x, key=, list=[a`)
		assert.Len(t, problems, 4)
		assert.Error(t, Problems(problems))
		assert.NoError(t, Problems(nil))
	})
}

func TestParseTag(t *testing.T) {
	f, problems := ParseTag(`db:"id" json:"id" crud:"primary_key,sortable,filterable,exclude(create,list),on_create=uuid.New"`)
	require.Empty(t, problems)
	assert.True(t, f.PrimaryKey)
	assert.True(t, f.Sortable)
	assert.True(t, f.Filterable)
	assert.True(t, f.ExcludeCreate)
	assert.True(t, f.ExcludeList)
	assert.False(t, f.ExcludeUpdate)
	assert.Equal(t, "uuid.New", f.OnCreate)
	assert.Nil(t, f.Join)

	empty, problems := ParseTag(`json:"x"`)
	require.Empty(t, problems)
	assert.Equal(t, &Field{}, empty)
}

func TestParseField(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		f, problems := ParseField(`non_db, join(all, depth=3, relation=books, filterable=[title,isbn], sortable=title)`)
		require.Empty(t, problems)
		require.NotNil(t, f.Join)
		assert.True(t, f.NonDB)
		assert.Equal(t, &Join{
			All:        true,
			Depth:      3,
			HasDepth:   true,
			Relation:   "books",
			Filterable: []string{"title", "isbn"},
			Sortable:   []string{"title"},
		}, f.Join)
	})

	t.Run("join defaults to both contexts", func(t *testing.T) {
		f, problems := ParseField(`join()`)
		require.Empty(t, problems)
		assert.True(t, f.Join.One)
		assert.True(t, f.Join.All)
		assert.False(t, f.Join.HasDepth)

		f, problems = ParseField(`join`)
		require.Empty(t, problems)
		assert.True(t, f.Join.One && f.Join.All)
	})

	t.Run("invalid join yields no configuration", func(t *testing.T) {
		f, problems := ParseField(`non_db, join(one, depth=deep)`)
		assert.Nil(t, f.Join)
		assert.True(t, f.NonDB)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0].Error(), "not a number")
	})

	t.Run("model booleans", func(t *testing.T) {
		f, problems := ParseField(`create_model=false, update_model=true, list_model=0, one_model=maybe`)
		require.Len(t, problems, 1)
		assert.True(t, f.ExcludeCreate)
		assert.False(t, f.ExcludeUpdate)
		assert.True(t, f.ExcludeList)
		assert.False(t, f.ExcludeOne)
	})

	t.Run("validate and defaults", func(t *testing.T) {
		f, problems := ParseField(`fulltext, exact, use_target_models, validate='required,min=1', on_create=time.Now(), on_update=time.Now`)
		require.Empty(t, problems)
		assert.True(t, f.Fulltext)
		assert.True(t, f.Exact)
		assert.True(t, f.UseTargetModels)
		assert.Equal(t, "required,min=1", f.Validate)
		assert.Equal(t, "time.Now()", f.OnCreate)
		assert.Equal(t, "time.Now", f.OnUpdate)
	})

	t.Run("unknown directives are reported", func(t *testing.T) {
		_, problems := ParseField(`sortabel, colour=red, exclude(create, everything), wrap(x)`)
		assert.Len(t, problems, 4)
	})
}

func TestParseEntity(t *testing.T) {
	e, problems := ParseEntity([]string{
		"entity name=author plural=authors table=writers description='People who write' default_sort=name fulltext_language=simple",
		"relation name=books kind=has_many entity=Book column=author_id",
		"relation name=country kind=belongs_to entity=Country column=country_id",
		"hook create::one::pre=checkAuthor, read::many::post=audit",
		"hook update::one::body=updateAuthor",
		"override fn_delete=deleteAuthor",
	})
	require.Empty(t, problems)

	assert.Equal(t, "author", e.Name)
	assert.Equal(t, "authors", e.Plural)
	assert.Equal(t, "writers", e.Table)
	assert.Equal(t, "People who write", e.Description)
	assert.Equal(t, "name", e.DefaultSort)
	assert.Equal(t, "simple", e.FulltextLanguage)

	assert.Equal(t, []Relation{
		{Name: "books", Kind: "has_many", Entity: "Book", Column: "author_id"},
		{Name: "country", Kind: "belongs_to", Entity: "Country", Column: "country_id"},
	}, e.Relations)

	assert.Equal(t, []Hook{
		{Key: crudgen.HookKey{Op: crudgen.OpCreate, Card: crudgen.One, Phase: crudgen.Pre}, Func: "checkAuthor"},
		{Key: crudgen.HookKey{Op: crudgen.OpRead, Card: crudgen.Many, Phase: crudgen.Post}, Func: "audit"},
		{Key: crudgen.HookKey{Op: crudgen.OpUpdate, Card: crudgen.One, Phase: crudgen.Body}, Func: "updateAuthor"},
	}, e.Hooks)

	assert.Equal(t, []Override{{Name: "fn_delete", Action: crudgen.ActionDelete, Func: "deleteAuthor"}}, e.Overrides)
}

func TestParseEntityProblems(t *testing.T) {
	e, problems := ParseEntity([]string{
		"entity",
		"entity shape=round",
		"relation kind=has_many",
		"hook create::once::pre=f",
		"hook create::one::pre",
		"override fn_upsert=f",
		"index name",
	})
	assert.Empty(t, e.Name)
	assert.Empty(t, e.Hooks)
	assert.Empty(t, e.Overrides)
	assert.Empty(t, e.Relations)
	assert.Len(t, problems, 6)
}
