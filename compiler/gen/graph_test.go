package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/load"
)

const librarySrc = `package library

import "time"

// Author writes books.
//
//crud:entity name=author
//crud:relation name=books kind=has_many entity=Book column=author_id
type Author struct {
	ID        int64     ` + "`db:\"id\" json:\"id\" crud:\"primary_key,sortable\"`" + `
	Name      string    ` + "`db:\"name\" json:\"name\" crud:\"sortable,filterable,fulltext,validate='required,max=100'\"`" + `
	Email     *string   ` + "`db:\"email\" json:\"email\" crud:\"filterable,exact\"`" + `
	CreatedAt time.Time ` + "`db:\"created_at\" json:\"created_at\" crud:\"exclude(create,update),on_create=time.Now()\"`" + `
	Books     []Book    ` + "`db:\"-\" json:\"books\" crud:\"join(one,all,depth=2,filterable=[title],sortable=[title])\"`" + `
}

//crud:entity name=book
//crud:relation name=author kind=belongs_to entity=Author column=author_id
type Book struct {
	ID       int64   ` + "`db:\"id\" json:\"id\" crud:\"primary_key\"`" + `
	Title    string  ` + "`db:\"title\" json:\"title\" crud:\"filterable,sortable\"`" + `
	AuthorID int64   ` + "`db:\"author_id\" json:\"author_id\" crud:\"filterable\"`" + `
	Author   *Author ` + "`db:\"-\" json:\"author\" crud:\"join(one)\"`" + `
}
`

func parse(t *testing.T, src string) *load.Package {
	t.Helper()
	pkg, err := load.ParseFile("/src/library/library.go", src)
	require.NoError(t, err)
	return pkg
}

func graph(t *testing.T, src string, opts ...Option) (*Graph, error) {
	t.Helper()
	return NewGraph(MustNewConfig(opts...), parse(t, src))
}

func TestNewGraph(t *testing.T) {
	g, err := graph(t, librarySrc)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)

	author, ok := g.Type("Author")
	require.True(t, ok)
	assert.Equal(t, "author", author.Label)
	assert.Equal(t, "authors", author.Plural)
	assert.Equal(t, "authors", author.Table)
	assert.Equal(t, "Author writes books.", author.Description)
	assert.Equal(t, "id", author.DefaultSort)
	assert.Equal(t, "ID", author.ID.Name)
	assert.Equal(t, "author_crud.go", author.FileName())
	assert.Equal(t, "AuthorCreate", author.CreateName())
	assert.Equal(t, "loadAuthorJoins", author.LoaderName())

	t.Run("roles", func(t *testing.T) {
		name, _ := author.Field("Name")
		assert.True(t, name.Is(RoleSortable|RoleFilterable|RoleFulltext|RoleLike))
		assert.Equal(t, "required,max=100", name.Validate)

		email, _ := author.Field("Email")
		assert.True(t, email.Optional)
		assert.True(t, email.Is(RoleFilterable))
		assert.False(t, email.Is(RoleLike), "exact columns are not like-eligible")

		books, _ := author.Field("Books")
		assert.True(t, books.Is(RoleJoin|RoleNonDB))
		assert.Empty(t, books.Column)
		assert.Equal(t, "sortable|filterable|fulltext|like", name.Roles.String())
	})

	t.Run("variants", func(t *testing.T) {
		names := func(fs []*Field) []string {
			out := make([]string, len(fs))
			for i, f := range fs {
				out[i] = f.Name
			}
			return out
		}
		assert.Equal(t, []string{"ID", "Name", "Email"}, names(author.CreateFields()))
		assert.Equal(t, []string{"Name", "Email"}, names(author.UpdateFields()))
		assert.Equal(t, []string{"ID", "Name", "Email", "CreatedAt", "Books"}, names(author.ListFields()))
		assert.Equal(t, []string{"ID", "Name", "Email", "CreatedAt", "Books"}, names(author.ResponseFields()))

		book, _ := g.Type("Book")
		assert.Equal(t, []string{"ID", "Title", "AuthorID"}, names(book.ListFields()), "join(one) is not listed")
	})

	t.Run("columns", func(t *testing.T) {
		assert.Equal(t, []string{"id", "name", "email", "created_at"}, author.Columns())
		assert.Equal(t, []string{"id", "name"}, author.SortableColumns())
		assert.Equal(t, []string{"name", "email"}, author.FilterableColumns())
		assert.Equal(t, []string{"name"}, author.FulltextColumns())
		assert.Equal(t, []string{"name"}, author.LikeColumns())
		assert.True(t, author.HasValidation())
	})

	t.Run("edges", func(t *testing.T) {
		require.Len(t, author.Edges, 1)
		e := author.Edges[0]
		assert.Equal(t, "books", e.Name)
		assert.Equal(t, crudgen.HasMany, e.Kind)
		assert.Equal(t, "Book", e.Type.Name)
		assert.Equal(t, "AuthorID", e.Ref.Name)
		assert.Equal(t, 2, e.Depth)
		assert.True(t, e.Explicit)
		assert.True(t, e.Loads(crudgen.LoadOne))
		assert.True(t, e.Loads(crudgen.LoadAll))
		assert.Equal(t, []string{"title"}, e.Filterable)
		assert.Equal(t, "loadAuthorBooks", e.LoaderName())

		book, _ := g.Type("Book")
		require.Len(t, book.Edges, 1)
		back := book.Edges[0]
		assert.Equal(t, crudgen.BelongsTo, back.Kind)
		assert.True(t, back.Unique())
		assert.Equal(t, DefaultMaxDepth, back.Depth)
		assert.False(t, back.Loads(crudgen.LoadAll))
	})

	t.Run("defaults", func(t *testing.T) {
		created, _ := author.Field("CreatedAt")
		require.NotNil(t, created.OnCreate)
		assert.False(t, created.OnCreate.Call)
	})

	// The cycle Author -> Book -> Author has an explicit depth on one edge.
	assert.Empty(t, g.Advisories)
}

func TestNewGraphMaxDepth(t *testing.T) {
	g, err := graph(t, librarySrc, WithMaxDepth(1))
	require.NoError(t, err)
	author, _ := g.Type("Author")
	assert.Equal(t, 1, author.Edges[0].Depth)
}

func TestNewGraphPrimaryKey(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "none",
			src:  "type A struct {\n\tID int64 `db:\"id\"`\n}",
			want: "exactly one primary_key",
		},
		{
			name: "two",
			src:  "type A struct {\n\tID int64 `crud:\"primary_key\"`\n\tKey string `crud:\"primary_key\"`\n}",
			want: "second primary key",
		},
		{
			name: "optional",
			src:  "type A struct {\n\tID *int64 `crud:\"primary_key\"`\n}",
			want: "cannot be optional",
		},
		{
			name: "non-persisted",
			src:  "type A struct {\n\tID int64 `db:\"-\" crud:\"primary_key\"`\n}",
			want: "must be persisted",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph(t, "package p\n\n//crud:entity\n"+tt.src+"\n")
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewGraphFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{"join persisted", "X []A `crud:\"join\"`", "must be non-persisted"},
		{"sortable non-db", "X string `db:\"-\" crud:\"sortable\"`", "require a persisted field"},
		{"fulltext non-string", "X int `crud:\"fulltext\"`", "fulltext requires a string field"},
		{"bad default", "X int `crud:\"on_create=1+\"`", "on_create"},
		{"duplicate column", "X int `db:\"id\"`", "already mapped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package p\n\n//crud:entity\ntype A struct {\n\tID int64 `db:\"id\" crud:\"primary_key\"`\n\t" + tt.field + "\n}\n"
			_, err := graph(t, src)
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := graph(t, "package p\n\n//crud:entity default_sort=missing\ntype A struct {\n\tID int64 `crud:\"primary_key\"`\n}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `default_sort "missing"`)
}

func TestNewGraphAdvisories(t *testing.T) {
	src := `package p

//crud:entity
//crud:relation name=parent kind=belongs_to entity=Node column=parent_id
//crud:relation name=children kind=has_many entity=Node column=parent_id
type Node struct {
	ID       int64  ` + "`crud:\"primary_key\"`" + `
	ParentID *int64 ` + "`db:\"parent_id\"`" + `
	Parent   *Node  ` + "`db:\"-\" crud:\"join(one,depth=4)\"`" + `
	Children []Node ` + "`db:\"-\" crud:\"join(one),bogus\"`" + `
}
`
	g, err := graph(t, src)
	require.NoError(t, err)
	node, _ := g.Type("Node")
	require.Len(t, node.Edges, 2)
	for _, e := range node.Edges {
		assert.True(t, e.SelfRef)
		assert.Equal(t, 1, e.Depth, e.Name)
	}
	var msgs []string
	for _, a := range g.Advisories {
		msgs = append(msgs, a.String())
	}
	// Only the implicit self-reference is advised; the explicit one is not.
	assert.Contains(t, strings.Join(msgs, "\n"), "Node.Children: self-referential join children is loaded 1 level deep")
	assert.NotContains(t, strings.Join(msgs, "\n"), "join parent")
	assert.Contains(t, strings.Join(msgs, "\n"), "bogus", "unknown directives are advisories")
}

func TestNewGraphDepthClamped(t *testing.T) {
	src := `package p

//crud:entity
//crud:relation name=bs kind=has_many entity=B column=a_id
type A struct {
	ID int64 ` + "`crud:\"primary_key\"`" + `
	Bs []B   ` + "`db:\"-\" crud:\"join(one,depth=0)\"`" + `
}

//crud:entity
type B struct {
	ID  int64 ` + "`crud:\"primary_key\"`" + `
	AID int64 ` + "`db:\"a_id\"`" + `
}
`
	g, err := graph(t, src)
	require.NoError(t, err)
	a, _ := g.Type("A")
	require.Len(t, a.Edges, 1)
	assert.Equal(t, 1, a.Edges[0].Depth)
	require.Len(t, g.Advisories, 1)
	assert.Equal(t, "A.Bs: join bs depth 0 is below 1; clamped to 1", g.Advisories[0].String())
}

func TestNewGraphCycles(t *testing.T) {
	src := `package p

//crud:entity
//crud:relation name=b kind=has_one entity=B column=a_id
type A struct {
	ID int64 ` + "`crud:\"primary_key\"`" + `
	B  *B    ` + "`db:\"-\" crud:\"join\"`" + `
}

//crud:entity
//crud:relation name=c kind=has_one entity=C column=b_id
type B struct {
	ID  int64 ` + "`crud:\"primary_key\"`" + `
	AID int64 ` + "`db:\"a_id\"`" + `
	C   *C    ` + "`db:\"-\" crud:\"join\"`" + `
}

//crud:entity
//crud:relation name=a kind=belongs_to entity=A column=a_id
type C struct {
	ID  int64 ` + "`crud:\"primary_key\"`" + `
	BID int64 ` + "`db:\"b_id\"`" + `
	AID int64 ` + "`db:\"a_id\"`" + `
	A   *A    ` + "`db:\"-\" crud:\"join\"`" + `
}
`
	g, err := graph(t, src)
	require.NoError(t, err)
	require.Len(t, g.Advisories, 1)
	assert.Equal(t, "A", g.Advisories[0].Type)
	assert.Contains(t, g.Advisories[0].Message, "join cycle A -> B -> C -> A loads up to 5 levels")

	// An explicit depth on any edge of the cycle silences it.
	explicit := strings.Replace(src, "C   *C    `db:\"-\" crud:\"join\"`", "C   *C    `db:\"-\" crud:\"join(depth=2)\"`", 1)
	g, err = graph(t, explicit)
	require.NoError(t, err)
	assert.Empty(t, g.Advisories)
}

func TestNewGraphEdgeErrors(t *testing.T) {
	base := func(relation, field string) string {
		// A blank line would detach the doc comment from A.
		doc := []string{"//crud:entity"}
		if relation != "" {
			doc = append(doc, relation)
		}
		return "package p\n\n" + strings.Join(doc, "\n") + "\ntype A struct {\n\tID int64 `crud:\"primary_key\"`\n\tBID *int64 `db:\"b_id\"`\n\t" + field + "\n}\n\n" +
			"//crud:entity\ntype B struct {\n\tID int64 `crud:\"primary_key\"`\n\tAID int64 `db:\"a_id\"`\n\tKey string `db:\"key\"`\n}\n"
	}
	tests := []struct {
		name     string
		relation string
		field    string
		want     string
	}{
		{
			name:  "missing relation",
			field: "Bs []B `db:\"-\" crud:\"join\"`",
			want:  "no //crud:relation name=bs declared on A",
		},
		{
			name:     "unknown kind",
			relation: "//crud:relation name=bs kind=many entity=B column=a_id",
			field:    "Bs []B `db:\"-\" crud:\"join\"`",
			want:     `unknown relation kind "many"`,
		},
		{
			name:     "unknown entity",
			relation: "//crud:relation name=bs kind=has_many entity=C column=a_id",
			field:    "Bs []B `db:\"-\" crud:\"join\"`",
			want:     `unknown entity "C"`,
		},
		{
			name:     "element mismatch",
			relation: "//crud:relation name=bs kind=has_many entity=B column=a_id",
			field:    "Bs []A `db:\"-\" crud:\"join\"`",
			want:     "holds A, but the relation targets B",
		},
		{
			name:     "has_many needs slice",
			relation: "//crud:relation name=bs kind=has_many entity=B column=a_id",
			field:    "Bs *B `db:\"-\" crud:\"join\"`",
			want:     "has_many requires a slice field",
		},
		{
			name:     "has_one needs pointer",
			relation: "//crud:relation name=bs kind=has_one entity=B column=a_id",
			field:    "Bs []B `db:\"-\" crud:\"join\"`",
			want:     "has_one requires a pointer field",
		},
		{
			name:     "optional belongs_to",
			relation: "//crud:relation name=b kind=belongs_to entity=B column=b_id",
			field:    "B B `db:\"-\" crud:\"join\"`",
			want:     "the join field must be *B",
		},
		{
			name:     "missing column",
			relation: "//crud:relation name=bs kind=has_many entity=B column=owner_id",
			field:    "Bs []B `db:\"-\" crud:\"join\"`",
			want:     `column "owner_id" is not a persisted field of B`,
		},
		{
			name:     "key type",
			relation: "//crud:relation name=bs kind=has_many entity=B column=key",
			field:    "Bs []B `db:\"-\" crud:\"join\"`",
			want:     `column "key" has type string, want int64`,
		},
		{
			name:     "nested column",
			relation: "//crud:relation name=bs kind=has_many entity=B column=a_id",
			field:    "Bs []B `db:\"-\" crud:\"join(filterable=[title])\"`",
			want:     `nested column "title"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph(t, base(tt.relation, tt.field))
			require.Error(t, err)
			assert.True(t, IsEdgeError(err), err.Error())
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewGraphHooks(t *testing.T) {
	entity := func(directives string) string {
		return "package p\n\n//crud:entity\n" + directives + "\ntype A struct {\n\tID int64 `crud:\"primary_key\"`\n}\n"
	}
	g, err := graph(t, entity("//crud:hook create::one::pre=checkA, read::many::post=audit\n//crud:override fn_delete=removeA"))
	require.NoError(t, err)
	a, _ := g.Type("A")
	assert.Equal(t, "checkA", a.Hooks.Func(crudgen.ActionCreate, crudgen.Pre))
	assert.Equal(t, "audit", a.Hooks.Func(crudgen.ActionList, crudgen.Post))
	assert.Empty(t, a.Hooks.Func(crudgen.ActionCreate, crudgen.Body))
	assert.Equal(t, "removeA", a.Hooks.Override(crudgen.ActionDelete))
	assert.Equal(t, 3, a.Hooks.Len())

	tests := map[string]string{
		"conflict":    "//crud:hook update::one::pre=f\n//crud:override fn_update=g",
		"bulk update": "//crud:hook update::many::pre=f",
		"duplicate":   "//crud:hook read::one::pre=f, read::one::pre=g",
	}
	for name, directives := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := graph(t, entity(directives))
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
		})
	}
}

func TestNewGraphTargets(t *testing.T) {
	src := `package p

//crud:entity
type Order struct {
	ID    int64  ` + "`crud:\"primary_key\"`" + `
	Lines []Line ` + "`db:\"lines\" crud:\"use_target_models\"`" + `
	Main  Line   ` + "`db:\"main\" crud:\"use_target_models\"`" + `
}

//crud:entity
type Line struct {
	ID  int64 ` + "`crud:\"primary_key\"`" + `
	SKU string
}
`
	g, err := graph(t, src)
	require.NoError(t, err)
	order, _ := g.Type("Order")
	lines, _ := order.Field("Lines")
	require.NotNil(t, lines.Target)
	assert.Equal(t, "Line", lines.Target.Name)
	assert.True(t, lines.TargetCollection())
	main, _ := order.Field("Main")
	assert.False(t, main.TargetCollection())
	assert.True(t, order.HasTargets())

	_, err = graph(t, strings.Replace(src, "Main  Line", "Main  string", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use_target_models requires an entity type")

	_, err = graph(t, strings.Replace(src, "Lines []Line", "Lines *[]Line", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be plain slices")

	_, err = graph(t, strings.Replace(src, `db:"main" crud:"use_target_models"`, `db:"main" crud:"use_target_models,on_create=Line{}"`, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot carry defaults")
}

func TestResolveDepth(t *testing.T) {
	tests := []struct {
		name           string
		depth          int
		explicit, self bool
		want           int
		advise         bool
	}{
		{name: "absent", want: 5},
		{name: "explicit", depth: 3, explicit: true, want: 3},
		{name: "capped", depth: 9, explicit: true, want: 5},
		{name: "below one", depth: 0, explicit: true, want: 1, advise: true},
		{name: "self implicit", self: true, want: 1, advise: true},
		{name: "self explicit", depth: 4, explicit: true, self: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, advise := ResolveDepth(tt.depth, tt.explicit, DefaultMaxDepth, tt.self)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.advise, advise)
		})
	}
}

func TestNewGraphNilConfig(t *testing.T) {
	_, err := NewGraph(nil, &load.Package{})
	assert.True(t, IsConfigError(err))
}
