package gen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/load"
)

// Edge is a join field resolved against its relation declaration.
type Edge struct {
	// Name is the relation name.
	Name string
	// Field is the non-persisted field on Owner that receives the rows.
	Field *Field
	Owner *Type
	// Type is the related entity.
	Type *Type
	Kind crudgen.RelationKind
	// Column is the foreign-key column. It lives on Type for has_many and
	// has_one, and on Owner for belongs_to.
	Column string
	// Ref is the field persisted in Column.
	Ref *Field
	// Depth is the effective recursion depth of the join.
	Depth int
	// Explicit is set when the depth came from the directive.
	Explicit bool
	// SelfRef is set when the edge points back to its owner.
	SelfRef bool
	One     bool
	All     bool

	// Nested columns of Type exposed to filters and sorting as
	// "<relation>.<column>".
	Filterable []string
	Sortable   []string
}

// Loads reports whether the join is loaded in the given mode.
func (e *Edge) Loads(mode crudgen.LoadMode) bool {
	switch mode {
	case crudgen.LoadOne:
		return e.One
	case crudgen.LoadAll:
		return e.All
	}
	return false
}

// Unique reports whether the join holds at most one row.
func (e *Edge) Unique() bool { return e.Kind != crudgen.HasMany }

// Optional reports whether the join field is a pointer.
func (e *Edge) Optional() bool { return e.Field.Optional }

// LoaderName returns the name of the generated function that fills this
// join for a batch of owners.
func (e *Edge) LoaderName() string {
	return "load" + e.Owner.Name + pascal(e.Name)
}

// ResolveDepth applies the depth policy to a join. It returns the
// effective depth and whether the caller should be advised: for an
// implicit self-reference, or for an explicit depth below 1.
//
// Self-referential joins are always loaded one level deep. An explicit
// depth is clamped to [1, limit]. A join without a depth uses limit.
func ResolveDepth(depth int, explicit bool, limit int, selfRef bool) (int, bool) {
	switch {
	case selfRef:
		return 1, !explicit
	case !explicit:
		return limit, false
	case depth < 1:
		return 1, true
	case depth > limit:
		return limit, false
	default:
		return depth, false
	}
}

type shape int

const (
	shapeValue shape = iota
	shapeOptional
	shapeMany
)

// joinShape classifies the declared join type and returns the entity name
// it holds.
func joinShape(ref *load.TypeRef) (shape, string, bool) {
	switch {
	case ref.IsSlice() && ref.Elem.IsLocal():
		return shapeMany, ref.Elem.Name, true
	case ref.IsPointer() && ref.Elem.IsLocal():
		return shapeOptional, ref.Elem.Name, true
	case ref.IsLocal():
		return shapeValue, ref.Name, true
	}
	return 0, "", false
}

// resolveEdges binds the join fields of t to their relation declarations.
func (g *Graph) resolveEdges(t *Type) error {
	var errs []error
	for _, f := range t.Fields {
		if !f.Is(RoleJoin) {
			continue
		}
		e, err := g.newEdge(t, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.Edge = e
		t.Edges = append(t.Edges, e)
	}
	return errors.Join(errs...)
}

func (g *Graph) newEdge(t *Type, f *Field) (*Edge, error) {
	j := f.attrs.Join
	name := j.Relation
	if name == "" {
		name = snake(f.Name)
	}
	fail := func(to, format string, args ...any) error {
		return &EdgeError{Pos: f.Pos(), From: t.Name, To: to, Edge: name, Msg: fmt.Sprintf(format, args...)}
	}
	rel, ok := t.relations[name]
	if !ok {
		return nil, fail("", "field %s: no //crud:relation name=%s declared on %s", f.Name, name, t.Name)
	}
	kind := crudgen.RelationKind(rel.Kind)
	if !kind.Valid() {
		return nil, fail(rel.Entity, "unknown relation kind %q; want has_many, has_one or belongs_to", rel.Kind)
	}
	if rel.Column == "" {
		return nil, fail(rel.Entity, "relation has no column")
	}
	related, ok := g.types[rel.Entity]
	if !ok {
		return nil, fail(rel.Entity, "unknown entity %q", rel.Entity)
	}
	sh, elem, ok := joinShape(f.Type)
	if !ok {
		return nil, fail(rel.Entity, "field %s has unsupported join type %s", f.Name, f.Type)
	}
	if elem != related.Name {
		return nil, fail(rel.Entity, "field %s holds %s, but the relation targets %s", f.Name, elem, related.Name)
	}
	e := &Edge{
		Name:    name,
		Field:   f,
		Owner:   t,
		Type:    related,
		Kind:    kind,
		Column:  rel.Column,
		SelfRef: related == t,
		One:     j.One,
		All:     j.All,
	}
	// The foreign key lives on the related entity for has_* relations and
	// must hold values of the owner key.
	fkSide, keySide := related, t
	if kind == crudgen.BelongsTo {
		fkSide, keySide = t, related
	}
	ref, ok := fkSide.Column(rel.Column)
	if !ok {
		return nil, fail(related.Name, "column %q is not a persisted field of %s", rel.Column, fkSide.Name)
	}
	if !sameType(ref.BaseType(), keySide.ID.Type) {
		return nil, fail(related.Name, "column %q has type %s, want %s to match %s.%s", rel.Column, ref.Type, keySide.ID.Type, keySide.Name, keySide.ID.Name)
	}
	e.Ref = ref
	switch kind {
	case crudgen.HasMany:
		if sh != shapeMany {
			return nil, fail(related.Name, "has_many requires a slice field []%s, got %s", related.Name, f.Type)
		}
	case crudgen.HasOne:
		if sh != shapeOptional {
			return nil, fail(related.Name, "has_one requires a pointer field *%s, got %s", related.Name, f.Type)
		}
	case crudgen.BelongsTo:
		if sh == shapeMany {
			return nil, fail(related.Name, "belongs_to requires %s or *%s, got %s", related.Name, related.Name, f.Type)
		}
		if ref.Optional && sh != shapeOptional {
			return nil, fail(related.Name, "column %q is optional; the join field must be *%s", rel.Column, related.Name)
		}
	}
	for _, col := range slices.Concat(j.Filterable, j.Sortable) {
		if _, ok := related.Column(col); !ok {
			return nil, fail(related.Name, "nested column %q is not a persisted field of %s", col, related.Name)
		}
	}
	e.Filterable, e.Sortable = j.Filterable, j.Sortable

	var advise bool
	e.Depth, advise = ResolveDepth(j.Depth, j.HasDepth, g.maxDepth(), e.SelfRef)
	e.Explicit = j.HasDepth
	if advise {
		msg := fmt.Sprintf("join %s depth %d is below 1; clamped to %d", name, j.Depth, e.Depth)
		if e.SelfRef {
			msg = fmt.Sprintf("self-referential join %s is loaded 1 level deep", name)
		}
		g.advise(t.Name, f.Name, msg)
	}
	return e, nil
}

// detectCycles records an advisory for every multi-hop join cycle whose
// edges all rely on the default depth.
func (g *Graph) detectCycles() {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*Type]int, len(g.Nodes))
	seen := make(map[string]bool)
	var path []*Edge
	var visit func(t *Type)
	visit = func(t *Type) {
		color[t] = gray
		for _, e := range t.Edges {
			if e.SelfRef {
				continue
			}
			path = append(path, e)
			switch color[e.Type] {
			case white:
				visit(e.Type)
			case gray:
				start := slices.IndexFunc(path, func(p *Edge) bool { return p.Owner == e.Type })
				g.cycle(path[start:], seen)
			}
			path = path[:len(path)-1]
		}
		color[t] = black
	}
	for _, t := range g.Nodes {
		if color[t] == white {
			visit(t)
		}
	}
}

func (g *Graph) cycle(edges []*Edge, seen map[string]bool) {
	// Rotate so the same cycle found from another start is reported once.
	first := 0
	for i, e := range edges {
		if e.Owner.Name < edges[first].Owner.Name {
			first = i
		}
	}
	edges = append(slices.Clone(edges[first:]), edges[:first]...)
	names := make([]string, 0, len(edges)+1)
	for _, e := range edges {
		names = append(names, e.Owner.Name+"."+e.Field.Name)
	}
	key := strings.Join(names, ",")
	if seen[key] {
		return
	}
	seen[key] = true
	if slices.ContainsFunc(edges, func(e *Edge) bool { return e.Explicit }) {
		return
	}
	hops := make([]string, 0, len(edges)+1)
	for _, e := range edges {
		hops = append(hops, e.Owner.Name)
	}
	hops = append(hops, edges[0].Owner.Name)
	g.advise(edges[0].Owner.Name, edges[0].Field.Name, fmt.Sprintf(
		"join cycle %s loads up to %d levels; set join(depth=N) on one of its edges",
		strings.Join(hops, " -> "), g.maxDepth()))
}
