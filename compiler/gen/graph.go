package gen

import (
	"errors"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/load"
)

// Graph holds the analyzed entities of one package and the relations
// between them.
type Graph struct {
	*Config
	// Package is the loaded package the entities were declared in.
	Package *load.Package
	// Nodes are the entities in declaration order.
	Nodes []*Type
	// Advisories are non-fatal findings recorded during analysis.
	Advisories []Advisory

	types map[string]*Type
}

// Advisory is a non-fatal generation finding.
type Advisory struct {
	Type    string
	Field   string
	Message string
}

// String implements fmt.Stringer.
func (a Advisory) String() string {
	switch {
	case a.Field != "":
		return fmt.Sprintf("%s.%s: %s", a.Type, a.Field, a.Message)
	case a.Type != "":
		return a.Type + ": " + a.Message
	default:
		return a.Message
	}
}

// NewGraph analyzes the entities of pkg. Every fatal finding is reported;
// the returned error joins them.
func NewGraph(c *Config, pkg *load.Package) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "missing generator config")
	}
	g := &Graph{Config: c, Package: pkg, types: make(map[string]*Type, len(pkg.Schemas))}
	var errs []error
	labels := make(map[string]string)
	for _, s := range pkg.Schemas {
		t, adv, err := newType(c, s)
		g.Advisories = append(g.Advisories, adv...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := labels[t.Label]; ok {
			errs = append(errs, typeError(t, "entity name %q already used by %s", t.Label, prev))
			continue
		}
		labels[t.Label] = t.Name
		g.Nodes = append(g.Nodes, t)
		g.types[t.Name] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, t := range g.Nodes {
		if err := t.resolveTargets(g.types); err != nil {
			errs = append(errs, err)
		}
		if err := g.resolveEdges(t); err != nil {
			errs = append(errs, err)
		}
		hooks, err := resolveHooks(t)
		if err != nil {
			errs = append(errs, err)
		}
		t.Hooks = hooks
		for _, f := range t.Fields {
			for _, e := range []*Expr{f.OnCreate, f.OnUpdate} {
				if e != nil {
					e.resolveCall(t.schema)
				}
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	g.detectCycles()
	return g, nil
}

// Type returns the entity with the given Go name.
func (g *Graph) Type(name string) (*Type, bool) {
	t, ok := g.types[name]
	return t, ok
}

// NewFile returns a jennifer file of the entity package carrying the
// generated-code header.
func (g *Graph) NewFile() *jen.File {
	f := jen.NewFilePathName(g.Package.PkgPath, g.Package.Name)
	f.HeaderComment(load.GeneratedHeader)
	if g.Header != "" {
		f.HeaderComment(g.Header)
	}
	return f
}

func (g *Graph) advise(typ, field, msg string) {
	g.Advisories = append(g.Advisories, Advisory{Type: typ, Field: field, Message: msg})
}
