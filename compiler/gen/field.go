package gen

import (
	"reflect"
	"strings"

	"github.com/syssam/crudgen/compiler/attr"
	"github.com/syssam/crudgen/compiler/load"
)

// Role is a bitset classifying a field. It is computed once per field so
// emitters never re-derive it.
type Role uint16

// Field roles.
const (
	RolePrimaryKey Role = 1 << iota
	RoleSortable
	RoleFilterable
	RoleFulltext
	RoleLike
	RoleNonDB
	RoleJoin
	RoleTarget
)

var roleNames = []struct {
	r    Role
	name string
}{
	{RolePrimaryKey, "primary_key"},
	{RoleSortable, "sortable"},
	{RoleFilterable, "filterable"},
	{RoleFulltext, "fulltext"},
	{RoleLike, "like"},
	{RoleNonDB, "non_db"},
	{RoleJoin, "join"},
	{RoleTarget, "target"},
}

// String implements fmt.Stringer.
func (r Role) String() string {
	var names []string
	for _, rn := range roleNames {
		if r&rn.r != 0 {
			names = append(names, rn.name)
		}
	}
	return strings.Join(names, "|")
}

// Field is the classification record of an entity field.
type Field struct {
	def   *load.Field
	typ   *Type
	attrs *attr.Field

	// Name is the Go field name.
	Name string
	// JSON is the key used in generated models.
	JSON string
	// JSONOptions holds the declared json tag options, e.g. "omitempty".
	JSONOptions string
	// Column is the database column. Empty for non-persisted fields.
	Column string
	// Type is the declared type.
	Type *load.TypeRef
	// Optional is set when the declared type is a pointer.
	Optional bool
	Roles    Role

	// Model variant inclusion.
	InCreate bool
	InUpdate bool
	InList   bool
	InOne    bool

	OnCreate *Expr
	OnUpdate *Expr
	// Validate is a go-playground/validator tag applied to inputs.
	Validate string

	// Edge is set on join fields.
	Edge *Edge
	// Target is set on use_target_models fields: the entity whose generated
	// models replace the field type in Create, Update and List models.
	Target *Type
}

// Is reports whether the field has all roles in r.
func (f *Field) Is(r Role) bool { return f.Roles&r == r }

// Persisted reports whether the field maps to a column.
func (f *Field) Persisted() bool { return !f.Is(RoleNonDB) }

// BaseType is the declared type with the optional pointer removed.
func (f *Field) BaseType() *load.TypeRef { return f.Type.Deref() }

// HasDefault reports whether the field has a create-time default.
func (f *Field) HasDefault() bool { return f.OnCreate != nil }

// HasUpdateDefault reports whether the field has an update-time default.
func (f *Field) HasUpdateDefault() bool { return f.OnUpdate != nil }

// Pos returns the declaration position of the field.
func (f *Field) Pos() string {
	if f.def == nil {
		return ""
	}
	return f.def.Pos
}

// TargetCollection reports whether a target field holds a slice of the
// target entity.
func (f *Field) TargetCollection() bool {
	return f.Target != nil && f.BaseType().IsSlice()
}

func newField(t *Type, def *load.Field) (*Field, []Advisory, error) {
	attrs, problems := attr.ParseTag(def.Tag)
	var advisories []Advisory
	for _, p := range problems {
		advisories = append(advisories, Advisory{Type: t.Name, Field: def.Name, Message: p.Error()})
	}
	f := &Field{
		def:      def,
		typ:      t,
		attrs:    attrs,
		Name:     def.Name,
		Type:     def.Type,
		Optional: def.Type.IsPointer(),
		Validate: attrs.Validate,
	}
	tag := reflect.StructTag(def.Tag)
	dbName, _, _ := strings.Cut(tag.Get("db"), ",")
	switch {
	case dbName == "-" || attrs.NonDB:
		f.Roles |= RoleNonDB
	case dbName != "":
		f.Column = dbName
	default:
		f.Column = snake(def.Name)
	}
	f.JSON, f.JSONOptions, _ = strings.Cut(tag.Get("json"), ",")
	if f.JSON == "" {
		f.JSON = snake(def.Name)
	}

	flags := []struct {
		on bool
		r  Role
	}{
		{attrs.PrimaryKey, RolePrimaryKey},
		{attrs.Sortable, RoleSortable},
		{attrs.Filterable, RoleFilterable},
		{attrs.Fulltext, RoleFulltext},
		{attrs.Join != nil, RoleJoin},
	}
	for _, fl := range flags {
		if fl.on {
			f.Roles |= fl.r
		}
	}
	if f.Is(RoleFilterable) && f.BaseType().IsString() && !attrs.Exact {
		f.Roles |= RoleLike
	}

	var err error
	if attrs.OnCreate != "" {
		if f.OnCreate, err = ParseExpr(attrs.OnCreate, t.schema.Imports); err != nil {
			return nil, advisories, fieldError(t, f, err, "on_create")
		}
	}
	if attrs.OnUpdate != "" {
		if f.OnUpdate, err = ParseExpr(attrs.OnUpdate, t.schema.Imports); err != nil {
			return nil, advisories, fieldError(t, f, err, "on_update")
		}
	}

	join := f.Is(RoleJoin)
	f.InCreate = !attrs.ExcludeCreate && !join
	f.InUpdate = !attrs.ExcludeUpdate && !join && !f.Is(RolePrimaryKey)
	f.InList = !attrs.ExcludeList && (!join || attrs.Join.All)
	f.InOne = !attrs.ExcludeOne
	return f, advisories, f.check()
}

// check enforces the per-field invariants that do not depend on other
// entities.
func (f *Field) check() error {
	fail := func(format string, args ...any) error {
		return fieldError(f.typ, f, nil, format, args...)
	}
	switch {
	case f.Is(RolePrimaryKey) && !f.Persisted():
		return fail("primary key must be persisted")
	case f.Is(RolePrimaryKey) && f.Optional:
		return fail("primary key cannot be optional")
	case f.Is(RoleJoin) && f.Persisted():
		return fail(`join fields must be non-persisted; add db:"-" or non_db`)
	case f.Is(RoleJoin) && (f.OnCreate != nil || f.OnUpdate != nil || f.Validate != ""):
		return fail("join fields cannot carry defaults or validation")
	case f.Is(RoleJoin) && f.attrs.UseTargetModels:
		return fail("join fields cannot use target models")
	case f.attrs.UseTargetModels && (f.OnCreate != nil || f.OnUpdate != nil):
		return fail("use_target_models fields cannot carry defaults")
	case !f.Persisted() && (f.Is(RoleSortable) || f.Is(RoleFilterable) || f.Is(RoleFulltext)):
		return fail("sortable, filterable and fulltext require a persisted field")
	case f.Is(RoleFulltext) && !f.BaseType().IsString():
		return fail("fulltext requires a string field, got %s", f.Type)
	}
	return nil
}
