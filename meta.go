package crudgen

import (
	"fmt"
	"slices"
)

// RelationKind is the shape of a relationship between two entities.
type RelationKind string

// Relation kinds.
const (
	HasMany   RelationKind = "has_many"
	HasOne    RelationKind = "has_one"
	BelongsTo RelationKind = "belongs_to"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	switch k {
	case HasMany, HasOne, BelongsTo:
		return true
	}
	return false
}

// LoadMode selects which join fields are loaded: those flagged for single
// record responses or those flagged for list responses.
type LoadMode uint8

// Load modes.
const (
	LoadOne LoadMode = iota + 1
	LoadAll
)

// String implements fmt.Stringer.
func (m LoadMode) String() string {
	switch m {
	case LoadOne:
		return "one"
	case LoadAll:
		return "all"
	default:
		return fmt.Sprintf("LoadMode(%d)", m)
	}
}

// JoinDepth returns the depth a join is loaded to under a recursion budget.
// A negative budget means no budget: the join's own depth applies.
func JoinDepth(budget, depth int) int {
	if budget < 0 {
		return depth
	}
	return min(budget, depth)
}

// EntityMeta is the per-entity metadata emitted by the generator. The filter
// engine only accepts columns registered here.
type EntityMeta struct {
	Name        string // singular resource name
	Plural      string // plural resource name, used in routes and Content-Range
	Table       string
	Description string
	PrimaryKey  string
	Columns     []string // persisted columns, in declaration order

	Sortable   []string
	Filterable []string
	Fulltext   []string
	Like       []string // filterable columns that accept _like

	DefaultSort      string
	FulltextLanguage string

	Joins []JoinMeta
}

// CanSort reports whether col is a sortable column.
func (m *EntityMeta) CanSort(col string) bool { return slices.Contains(m.Sortable, col) }

// CanFilter reports whether col is a filterable column.
func (m *EntityMeta) CanFilter(col string) bool { return slices.Contains(m.Filterable, col) }

// CanLike reports whether col accepts substring matching.
func (m *EntityMeta) CanLike(col string) bool { return slices.Contains(m.Like, col) }

// Join returns the relationship named name.
func (m *EntityMeta) Join(name string) (*JoinMeta, bool) {
	for i := range m.Joins {
		if m.Joins[i].Name == name {
			return &m.Joins[i], true
		}
	}
	return nil, false
}

// Qualified returns col prefixed with the entity table.
func (m *EntityMeta) Qualified(col string) string {
	return m.Table + "." + col
}

// JoinMeta describes a relationship reachable by dot-notation in filters
// and sorts.
type JoinMeta struct {
	Name       string
	Kind       RelationKind
	Table      string // related table
	PrimaryKey string // related primary key
	// Column is the foreign key. For has_many and has_one it lives on the
	// related table; for belongs_to it lives on the owning table.
	Column string

	Filterable []string
	Sortable   []string
}

// CanFilter reports whether the related column col is filterable.
func (j *JoinMeta) CanFilter(col string) bool { return slices.Contains(j.Filterable, col) }

// CanSort reports whether the related column col is sortable.
func (j *JoinMeta) CanSort(col string) bool { return slices.Contains(j.Sortable, col) }

// Link returns the SQL condition correlating the related table with a row
// of owner.
func (j *JoinMeta) Link(owner *EntityMeta) string {
	return j.LinkAs(owner, j.Table)
}

// LinkAs is like Link with the related table referenced as alias. Self
// referencing joins need an alias to tell both sides apart.
func (j *JoinMeta) LinkAs(owner *EntityMeta, alias string) string {
	if j.Kind == BelongsTo {
		return fmt.Sprintf("%s.%s = %s.%s", alias, j.PrimaryKey, owner.Table, j.Column)
	}
	return fmt.Sprintf("%s.%s = %s.%s", alias, j.Column, owner.Table, owner.PrimaryKey)
}
