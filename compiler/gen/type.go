package gen

import (
	"errors"
	"slices"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/attr"
	"github.com/syssam/crudgen/compiler/load"
)

// Type is the analysis of one entity: its fields, joins and hooks, and the
// names of everything generated for it.
type Type struct {
	*Config
	schema *load.Schema
	attrs  *attr.Entity

	// Name is the Go struct name.
	Name string
	// Label is the entity name used in errors and metadata, e.g. "author".
	Label string
	// Plural is the resource name used in Content-Range headers.
	Plural      string
	Table       string
	Description string
	// DefaultSort is the column List orders by when no sort is given.
	DefaultSort string
	// FulltextLanguage configures the postgres text search configuration.
	FulltextLanguage string

	// ID is the primary key field.
	ID *Field
	// Fields holds all exported fields in declaration order.
	Fields  []*Field
	fields  map[string]*Field
	columns map[string]*Field
	// Edges holds the join fields of the entity.
	Edges []*Edge
	Hooks *Hooks

	relations map[string]attr.Relation
}

func newType(c *Config, s *load.Schema) (*Type, []Advisory, error) {
	attrs, problems := attr.ParseEntity(s.Directives)
	t := &Type{
		Config:    c,
		schema:    s,
		attrs:     attrs,
		Name:      s.Name,
		fields:    make(map[string]*Field, len(s.Fields)),
		columns:   make(map[string]*Field, len(s.Fields)),
		relations: make(map[string]attr.Relation, len(attrs.Relations)),
	}
	var advisories []Advisory
	for _, p := range problems {
		advisories = append(advisories, Advisory{Type: s.Name, Message: p.Error()})
	}
	t.Label = attrs.Name
	if t.Label == "" {
		t.Label = snake(s.Name)
	}
	t.Plural = attrs.Plural
	if t.Plural == "" {
		t.Plural = plural(t.Label)
	}
	t.Table = attrs.Table
	if t.Table == "" {
		t.Table = t.Plural
	}
	t.Description = attrs.Description
	if t.Description == "" {
		t.Description = s.Doc
	}
	t.FulltextLanguage = attrs.FulltextLanguage

	var errs []error
	for _, r := range attrs.Relations {
		if _, ok := t.relations[r.Name]; ok {
			errs = append(errs, typeError(t, "relation %q declared twice", r.Name))
			continue
		}
		t.relations[r.Name] = r
	}
	for _, def := range s.Fields {
		f, adv, err := newField(t, def)
		advisories = append(advisories, adv...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.Fields = append(t.Fields, f)
		t.fields[f.Name] = f
		if f.Persisted() {
			if prev, ok := t.columns[f.Column]; ok {
				errs = append(errs, fieldError(t, f, nil, "column %q already mapped by %s", f.Column, prev.Name))
				continue
			}
			t.columns[f.Column] = f
		}
		if f.Is(RolePrimaryKey) {
			if t.ID != nil {
				errs = append(errs, fieldError(t, f, nil, "second primary key; %s is already the primary key", t.ID.Name))
				continue
			}
			t.ID = f
		}
	}
	if len(errs) > 0 {
		return nil, advisories, errors.Join(errs...)
	}
	if t.ID == nil {
		return nil, advisories, typeError(t, "exactly one primary_key field is required, found none")
	}
	t.DefaultSort = attrs.DefaultSort
	if t.DefaultSort == "" {
		t.DefaultSort = t.ID.Column
	}
	if _, ok := t.columns[t.DefaultSort]; !ok {
		return nil, advisories, typeError(t, "default_sort %q is not a column", t.DefaultSort)
	}
	return t, advisories, nil
}

// Field returns the field with the given Go name.
func (t *Type) Field(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Column returns the field persisted in the given column.
func (t *Type) Column(name string) (*Field, bool) {
	f, ok := t.columns[name]
	return f, ok
}

// Pos returns the declaration position of the entity.
func (t *Type) Pos() string { return t.schema.Pos }

// Receiver returns the receiver name of generated methods.
func (t *Type) Receiver() string { return receiver(t.Name) }

// CreateName returns the name of the create input model.
func (t *Type) CreateName() string { return t.Name + "Create" }

// UpdateName returns the name of the update input model.
func (t *Type) UpdateName() string { return t.Name + "Update" }

// ListName returns the name of the list output model.
func (t *Type) ListName() string { return t.Name + "List" }

// ResponseName returns the name of the single-item output model.
func (t *Type) ResponseName() string { return t.Name + "Response" }

// ServiceName returns the name of the generated service.
func (t *Type) ServiceName() string { return t.Name + "Service" }

// MetaName returns the name of the generated metadata variable.
func (t *Type) MetaName() string { return t.Name + "Meta" }

// LoaderName returns the name of the generated join loader.
func (t *Type) LoaderName() string { return "load" + t.Name + "Joins" }

// FileName returns the name of the generated file.
func (t *Type) FileName() string { return snake(t.Name) + t.suffix() }

// PersistedFields returns the fields mapped to columns.
func (t *Type) PersistedFields() []*Field {
	return t.filter(func(f *Field) bool { return f.Persisted() })
}

// CreateFields returns the fields of the create model.
func (t *Type) CreateFields() []*Field {
	return t.filter(func(f *Field) bool { return f.InCreate })
}

// UpdateFields returns the fields of the update model.
func (t *Type) UpdateFields() []*Field {
	return t.filter(func(f *Field) bool { return f.InUpdate })
}

// ListFields returns the fields of the list model.
func (t *Type) ListFields() []*Field {
	return t.filter(func(f *Field) bool { return f.InList })
}

// ResponseFields returns the fields of the single-item model.
func (t *Type) ResponseFields() []*Field {
	return t.filter(func(f *Field) bool { return f.InOne })
}

// EdgesFor returns the joins loaded in the given mode.
func (t *Type) EdgesFor(mode crudgen.LoadMode) []*Edge {
	var edges []*Edge
	for _, e := range t.Edges {
		if e.Loads(mode) {
			edges = append(edges, e)
		}
	}
	return edges
}

// Columns returns all persisted columns in declaration order.
func (t *Type) Columns() []string { return t.columnsOf(0) }

// SortableColumns returns the sortable columns.
func (t *Type) SortableColumns() []string { return t.columnsOf(RoleSortable) }

// FilterableColumns returns the filterable columns.
func (t *Type) FilterableColumns() []string { return t.columnsOf(RoleFilterable) }

// FulltextColumns returns the columns searched by full-text queries.
func (t *Type) FulltextColumns() []string { return t.columnsOf(RoleFulltext) }

// LikeColumns returns the filterable string columns matched by substring.
func (t *Type) LikeColumns() []string { return t.columnsOf(RoleLike) }

// HasValidation reports whether any input field carries a validation rule.
func (t *Type) HasValidation() bool {
	return slices.ContainsFunc(t.Fields, func(f *Field) bool {
		return f.Validate != "" && (f.InCreate || f.InUpdate)
	})
}

// HasTargets reports whether any field uses target models.
func (t *Type) HasTargets() bool {
	return slices.ContainsFunc(t.Fields, func(f *Field) bool { return f.Target != nil })
}

func (t *Type) filter(pred func(*Field) bool) []*Field {
	var fields []*Field
	for _, f := range t.Fields {
		if pred(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (t *Type) columnsOf(r Role) []string {
	var cols []string
	for _, f := range t.Fields {
		if f.Persisted() && f.Is(r) {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

// resolveTargets binds use_target_models fields to the entity they hold.
func (t *Type) resolveTargets(types map[string]*Type) error {
	var errs []error
	for _, f := range t.Fields {
		if !f.attrs.UseTargetModels {
			continue
		}
		ref := f.BaseType()
		if ref.IsSlice() {
			if f.Optional {
				errs = append(errs, fieldError(t, f, nil, "use_target_models collections must be plain slices, got %s", f.Type))
				continue
			}
			ref = ref.Elem
		}
		target, ok := types[ref.Name]
		if !ref.IsLocal() || !ok {
			errs = append(errs, fieldError(t, f, nil, "use_target_models requires an entity type, got %s", f.Type))
			continue
		}
		f.Target = target
		f.Roles |= RoleTarget
	}
	return errors.Join(errs...)
}
