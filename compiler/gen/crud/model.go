package crud

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
)

// genModels generates the request and response models of t.
//
// Output models keep the json options declared on the entity field. Input
// models derive them from the field's role: omitempty or omitzero for
// create fields with a default, omitzero for every update field.
func genModels(f *jen.File, t *gen.Type) {
	f.Commentf("%s is the input of %s.Create.", t.CreateName(), t.ServiceName())
	f.Type().Id(t.CreateName()).StructFunc(func(g *jen.Group) {
		for _, fd := range t.CreateFields() {
			typ, opt := createType(fd)
			g.Id(fd.Name).Add(typ).Tag(jsonTag(fd.JSON, opt))
		}
	})

	f.Commentf("%s is the input of %s.Update. Fields left unset are not changed.", t.UpdateName(), t.ServiceName())
	f.Type().Id(t.UpdateName()).StructFunc(func(g *jen.Group) {
		for _, fd := range t.UpdateFields() {
			g.Id(fd.Name).Add(updateType(fd)).Tag(jsonTag(fd.JSON, "omitzero"))
		}
	})

	f.Commentf("%s is the list projection of %s.", t.ListName(), t.Name)
	f.Type().Id(t.ListName()).StructFunc(func(g *jen.Group) {
		for _, fd := range t.ListFields() {
			typ := gen.TypeCode(fd.Type)
			if fd.Target != nil {
				typ = typeWith(fd.Type, fd.Target, fd.Target.ListName())
			}
			g.Id(fd.Name).Add(typ).Tag(jsonTag(fd.JSON, fd.JSONOptions))
		}
	})

	f.Commentf("%s is the single-item projection of %s.", t.ResponseName(), t.Name)
	f.Type().Id(t.ResponseName()).StructFunc(func(g *jen.Group) {
		for _, fd := range t.ResponseFields() {
			g.Id(fd.Name).Add(gen.TypeCode(fd.Type)).Tag(jsonTag(fd.JSON, fd.JSONOptions))
		}
	})
}

// createType returns the create model type of a field and its json option.
// A default makes the field omittable: a pointer for required fields, a
// Patch telling absent from null for optional ones.
func createType(f *gen.Field) (*jen.Statement, string) {
	var model string
	if f.Target != nil {
		model = f.Target.CreateName()
	}
	switch {
	case f.HasDefault() && f.Optional:
		return jen.Qual(crudgenPkg, "Patch").Types(typeWith(f.BaseType(), f.Target, model)), "omitzero"
	case f.HasDefault():
		return jen.Op("*").Add(typeWith(f.Type, f.Target, model)), "omitempty"
	}
	return typeWith(f.Type, f.Target, model), ""
}

// updateType returns the update model type of a field. Nested entities are
// updated in place; nested collections are replaced.
func updateType(f *gen.Field) *jen.Statement {
	var model string
	if f.Target != nil {
		model = f.Target.UpdateName()
		if f.TargetCollection() {
			model = f.Target.CreateName()
		}
	}
	return jen.Qual(crudgenPkg, "Patch").Types(typeWith(f.BaseType(), f.Target, model))
}
