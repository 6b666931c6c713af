// Package crud emits the CRUD code of an entity: its request and response
// models, their conversions, the entity metadata, the join loaders and the
// service implementing the operations.
//
// Every entity gets one file, rendered by Emitter:
//
//	generator := gen.NewJenniferGenerator(graph, crud.Emitter{})
//	err := generator.Generate(ctx)
//
// The generated code lives in the entity package, so hook functions named
// in //crud:hook directives are called directly.
package crud

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/compiler/load"
)

// Runtime packages referenced by generated code.
const (
	crudgenPkg    = "github.com/syssam/crudgen"
	sqlPkg        = "github.com/syssam/crudgen/dialect/sql"
	filterPkg     = "github.com/syssam/crudgen/filter"
	dataloaderPkg = "github.com/syssam/crudgen/contrib/dataloader"
)

// Emitter renders <entity>_crud.go. It implements gen.Emitter.
type Emitter struct{}

var _ gen.Emitter = Emitter{}

// Emit renders the CRUD file of t.
func (Emitter) Emit(g *gen.Graph, t *gen.Type) (*jen.File, error) {
	if t.ID == nil {
		return nil, fmt.Errorf("crud: entity %s has no primary key", t.Name)
	}
	f := g.NewFile()
	f.ImportName(crudgenPkg, "crudgen")
	f.ImportName(sqlPkg, "sql")
	f.ImportName(filterPkg, "filter")
	f.ImportName(dataloaderPkg, "dataloader")

	genModels(f, t)
	genConvert(f, t)
	genMeta(f, t)
	genJoins(f, t)
	genService(f, t)
	return f, nil
}

// =============================================================================
// Shared helpers
// =============================================================================

func ctxParam() jen.Code { return jen.Id("ctx").Qual("context", "Context") }

func dbParam() jen.Code { return jen.Id("db").Qual(sqlPkg, "Querier") }

// idType renders the primary key type of t.
func idType(t *gen.Type) *jen.Statement { return gen.TypeCode(t.ID.Type) }

// ifErr renders `if err := call; err != nil { return ret... }`.
func ifErr(call jen.Code, ret ...jen.Code) jen.Code {
	return jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(jen.Return(ret...))
}

// onErr renders `if err != nil { return ret... }`.
func onErr(ret ...jen.Code) jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(ret...))
}

// typeWith renders ref with the target entity replaced by one of its
// generated models. Pointers and slices are rewrapped.
func typeWith(ref *load.TypeRef, target *gen.Type, model string) *jen.Statement {
	switch {
	case target != nil && ref.IsLocal() && ref.Name == target.Name:
		return jen.Id(model)
	case ref.IsPointer():
		return jen.Op("*").Add(typeWith(ref.Elem, target, model))
	case ref.IsSlice():
		return jen.Index().Add(typeWith(ref.Elem, target, model))
	}
	return gen.TypeCode(ref)
}

// jsonTag returns the struct tags of a model field.
func jsonTag(name, opt string) map[string]string {
	if name == "-" || opt == "" {
		return map[string]string{"json": name}
	}
	return map[string]string{"json": name + "," + opt}
}

// accessor returns a constructor of `x.Field` statements. Jennifer
// statements grow in place, so every use needs a fresh one.
func accessor(x, field string) func() *jen.Statement {
	return func() *jen.Statement { return jen.Id(x).Dot(field) }
}

// convertTarget assigns dst from src for a use_target_models field,
// converting every held value with conv. conv receives an addressable
// value, or a pointer when ptr is set.
func convertTarget(g *jen.Group, f *gen.Field, dst, src func() *jen.Statement, elem string, conv func(v *jen.Statement, ptr bool) jen.Code) {
	switch {
	case f.TargetCollection():
		g.If(src().Op("!=").Nil()).Block(
			dst().Op("=").Make(jen.Index().Id(elem), jen.Len(src())),
			jen.For(jen.Id("i").Op(":=").Range().Add(src())).Block(
				dst().Index(jen.Id("i")).Op("=").Add(conv(src().Index(jen.Id("i")), false)),
			),
		)
	case f.Optional:
		g.If(src().Op("!=").Nil()).Block(
			jen.Id("v").Op(":=").Add(conv(src(), true)),
			dst().Op("=").Op("&").Id("v"),
		)
	default:
		g.Add(dst().Op("=").Add(conv(src(), false)))
	}
}

// stringSlice renders a []string literal, or nil for no values.
func stringSlice(values []string) jen.Code {
	if len(values) == 0 {
		return jen.Nil()
	}
	lits := make([]jen.Code, len(values))
	for i, v := range values {
		lits[i] = jen.Lit(v)
	}
	return jen.Index().String().Values(lits...)
}
