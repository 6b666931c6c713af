package crud

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
)

// genConvert generates the conversions between an entity and its models.
func genConvert(f *jen.File, t *gen.Type) {
	genToModel(f, t)
	genCreateValidate(f, t)
	genUpdateValidate(f, t)
	genMerge(f, t)
	genProjections(f, t)
	genWriteHelpers(f, t)
}

// =============================================================================
// Create
// =============================================================================

func genToModel(f *jen.File, t *gen.Type) {
	f.Commentf("ToModel builds a %s from the input. Absent fields with a default get the default.", t.Name)
	f.Func().Params(jen.Id("in").Op("*").Id(t.CreateName())).Id("ToModel").Params().Id(t.Name).BlockFunc(func(g *jen.Group) {
		g.Var().Id("m").Id(t.Name)
		for _, fd := range t.Fields {
			if fd.Is(gen.RoleJoin) {
				continue
			}
			m, in := accessor("m", fd.Name), accessor("in", fd.Name)
			switch {
			case !fd.InCreate:
				if fd.HasDefault() {
					g.Add(m().Op("=").Add(fd.OnCreate.Code()))
				}
			case fd.Target != nil:
				convertTarget(g, fd, m, in, fd.Target.Name, func(v *jen.Statement, _ bool) jen.Code {
					return v.Dot("ToModel").Call()
				})
			case fd.HasDefault() && fd.Optional:
				// A null Patch leaves the field nil.
				g.Switch().Block(
					jen.Case(in().Dot("IsSet").Call()).Block(m().Op("=").Add(in().Dot("Ptr").Call())),
					jen.Case(in().Dot("IsUnset").Call()).Block(m().Op("=").Add(fd.OnCreate.Code())),
				)
			case fd.HasDefault():
				g.If(in().Op("!=").Nil()).Block(
					m().Op("=").Op("*").Add(in()),
				).Else().Block(
					m().Op("=").Add(fd.OnCreate.Code()),
				)
			default:
				g.Add(m().Op("=").Add(in()))
			}
		}
		g.Return(jen.Id("m"))
	})
}

func genCreateValidate(f *jen.File, t *gen.Type) {
	f.Commentf("Validate checks the input against the validation rules of %s.", t.Name)
	f.Func().Params(jen.Id("in").Op("*").Id(t.CreateName())).Id("Validate").Params().Error().BlockFunc(func(g *jen.Group) {
		for _, fd := range t.CreateFields() {
			in := accessor("in", fd.Name)
			if fd.Validate != "" {
				switch {
				case fd.HasDefault() && fd.Optional:
					g.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).Block(
						validateVar(fd, jen.Id("v")),
					)
				case fd.HasDefault():
					g.If(in().Op("!=").Nil()).Block(validateVar(fd, jen.Op("*").Add(in())))
				default:
					g.Add(validateVar(fd, in()))
				}
			}
			if fd.Target != nil {
				validateTarget(g, fd, in)
			}
		}
		g.Return(jen.Nil())
	})
}

func genUpdateValidate(f *jen.File, t *gen.Type) {
	f.Commentf("Validate checks the fields set on the input against the validation rules of %s.", t.Name)
	f.Func().Params(jen.Id("in").Op("*").Id(t.UpdateName())).Id("Validate").Params().Error().BlockFunc(func(g *jen.Group) {
		for _, fd := range t.UpdateFields() {
			if fd.Validate == "" && fd.Target == nil {
				continue
			}
			in := accessor("in", fd.Name)
			g.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).BlockFunc(func(g *jen.Group) {
				if fd.Validate != "" {
					g.Add(validateVar(fd, jen.Id("v")))
				}
				switch {
				case fd.TargetCollection():
					g.For(jen.Id("i").Op(":=").Range().Id("v")).Block(
						ifErr(jen.Id("v").Index(jen.Id("i")).Dot("Validate").Call(), jen.Err()),
					)
				case fd.Target != nil:
					g.Add(ifErr(jen.Id("v").Dot("Validate").Call(), jen.Err()))
				}
			})
		}
		g.Return(jen.Nil())
	})
}

// validateVar renders the validator call of one field value.
func validateVar(f *gen.Field, v jen.Code) jen.Code {
	return ifErr(jen.Qual(crudgenPkg, "ValidateVar").Call(jen.Lit(f.JSON), v, jen.Lit(f.Validate)), jen.Err())
}

// validateTarget validates the nested create models of a target field.
func validateTarget(g *jen.Group, f *gen.Field, in func() *jen.Statement) {
	switch {
	case f.TargetCollection():
		g.For(jen.Id("i").Op(":=").Range().Add(in())).Block(
			ifErr(in().Index(jen.Id("i")).Dot("Validate").Call(), jen.Err()),
		)
	case f.Optional:
		g.If(in().Op("!=").Nil()).Block(ifErr(in().Dot("Validate").Call(), jen.Err()))
	default:
		g.Add(ifErr(in().Dot("Validate").Call(), jen.Err()))
	}
}

// =============================================================================
// Update
// =============================================================================

func genMerge(f *jen.File, t *gen.Type) {
	f.Comment("Merge applies the input to m. Setting a required field to null is a validation")
	f.Comment("error, in which case m is left untouched.")
	f.Func().Params(jen.Id("in").Op("*").Id(t.UpdateName())).Id("Merge").Params(jen.Id("m").Op("*").Id(t.Name)).Error().Block(
		ifErr(jen.Id("in").Dot("check").Call(), jen.Err()),
		jen.Id("in").Dot("apply").Call(jen.Id("m")),
		jen.Return(jen.Nil()),
	)

	f.Func().Params(jen.Id("in").Op("*").Id(t.UpdateName())).Id("check").Params().Error().BlockFunc(func(g *jen.Group) {
		for _, fd := range t.UpdateFields() {
			in := accessor("in", fd.Name)
			if !fd.Optional {
				g.If(in().Dot("IsNull").Call()).Block(
					jen.Return(jen.Qual(crudgenPkg, "Invalidf").Call(jen.Lit(fd.JSON), jen.Lit("cannot be null"))),
				)
			}
			if fd.Target != nil && !fd.TargetCollection() {
				g.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).Block(
					ifErr(jen.Id("v").Dot("check").Call(), jen.Err()),
				)
			}
		}
		g.Return(jen.Nil())
	})

	f.Func().Params(jen.Id("in").Op("*").Id(t.UpdateName())).Id("apply").Params(jen.Id("m").Op("*").Id(t.Name)).BlockFunc(func(g *jen.Group) {
		for _, fd := range t.Fields {
			if fd.Is(gen.RoleJoin) || fd.Is(gen.RolePrimaryKey) {
				continue
			}
			m, in := accessor("m", fd.Name), accessor("in", fd.Name)
			switch {
			case !fd.InUpdate:
				if fd.HasUpdateDefault() {
					g.Add(m().Op("=").Add(fd.OnUpdate.Code()))
				}
			case fd.TargetCollection():
				g.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).BlockFunc(func(g *jen.Group) {
					g.Add(m().Op("=").Nil())
					convertTarget(g, fd, m, func() *jen.Statement { return jen.Id("v") }, fd.Target.Name, func(v *jen.Statement, _ bool) jen.Code {
						return v.Dot("ToModel").Call()
					})
				})
			case fd.Target != nil && fd.Optional:
				g.Switch().Block(
					jen.Case(in().Dot("IsSet").Call()).Block(
						jen.If(m().Op("==").Nil()).Block(m().Op("=").New(jen.Id(fd.Target.Name))),
						jen.Id("v").Op(":=").Add(in().Dot("Value").Call()),
						jen.Id("v").Dot("apply").Call(m()),
					),
					jen.Case(in().Dot("IsNull").Call()).Block(m().Op("=").Nil()),
				)
			case fd.Target != nil:
				g.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).Block(
					jen.Id("v").Dot("apply").Call(jen.Op("&").Add(m())),
				)
			case fd.Optional:
				g.Switch().BlockFunc(func(s *jen.Group) {
					s.Case(in().Dot("IsSet").Call()).Block(m().Op("=").Add(in().Dot("Ptr").Call()))
					s.Case(in().Dot("IsNull").Call()).Block(m().Op("=").Nil())
					if fd.HasUpdateDefault() {
						s.Default().Block(m().Op("=").Add(fd.OnUpdate.Code()))
					}
				})
			default:
				stmt := jen.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(in().Dot("Get").Call()), jen.Id("ok")).Block(
					m().Op("=").Id("v"),
				)
				if fd.HasUpdateDefault() {
					stmt.Else().Block(m().Op("=").Add(fd.OnUpdate.Code()))
				}
				g.Add(stmt)
			}
		}
	})
}

// =============================================================================
// Projections
// =============================================================================

func genProjections(f *jen.File, t *gen.Type) {
	f.Commentf("New%s projects m for single-item responses.", t.ResponseName())
	f.Func().Id("New"+t.ResponseName()).Params(jen.Id("m").Op("*").Id(t.Name)).Op("*").Id(t.ResponseName()).Block(
		jen.Return(jen.Op("&").Id(t.ResponseName()).Values(jen.DictFunc(func(d jen.Dict) {
			for _, fd := range t.ResponseFields() {
				d[jen.Id(fd.Name)] = jen.Id("m").Dot(fd.Name)
			}
		}))),
	)

	f.Commentf("New%s projects m for list responses.", t.ListName())
	f.Func().Id("New"+t.ListName()).Params(jen.Id("m").Op("*").Id(t.Name)).Id(t.ListName()).BlockFunc(func(g *jen.Group) {
		g.Id("l").Op(":=").Id(t.ListName()).Values(jen.DictFunc(func(d jen.Dict) {
			for _, fd := range t.ListFields() {
				if fd.Target == nil {
					d[jen.Id(fd.Name)] = jen.Id("m").Dot(fd.Name)
				}
			}
		}))
		for _, fd := range t.ListFields() {
			if fd.Target == nil {
				continue
			}
			newList := "New" + fd.Target.ListName()
			convertTarget(g, fd, accessor("l", fd.Name), accessor("m", fd.Name), fd.Target.ListName(), func(v *jen.Statement, ptr bool) jen.Code {
				if ptr {
					return jen.Id(newList).Call(v)
				}
				return jen.Id(newList).Call(jen.Op("&").Add(v))
			})
		}
		g.Return(jen.Id("l"))
	})
}

// =============================================================================
// Write helpers
// =============================================================================

func genWriteHelpers(f *jen.File, t *gen.Type) {
	persisted := t.PersistedFields()
	f.Comment("crudValues returns the persisted columns of m and their values. The primary key")
	f.Comment("is only written on insert, and left to the database when it is zero and has no")
	f.Comment("default.")
	f.Func().Params(jen.Id("m").Op("*").Id(t.Name)).Id("crudValues").Params(jen.Id("insert").Bool()).Params(
		jen.Index().String(), jen.Index().Any(),
	).BlockFunc(func(g *jen.Group) {
		g.Id("columns").Op(":=").Make(jen.Index().String(), jen.Lit(0), jen.Lit(len(persisted)))
		g.Id("values").Op(":=").Make(jen.Index().Any(), jen.Lit(0), jen.Lit(len(persisted)))
		id := t.ID
		appendID := []jen.Code{
			jen.Id("columns").Op("=").Append(jen.Id("columns"), jen.Lit(id.Column)),
			jen.Id("values").Op("=").Append(jen.Id("values"), jen.Id("m").Dot(id.Name)),
		}
		if !id.HasDefault() {
			g.Var().Id("zero").Add(idType(t))
			g.If(jen.Id("insert").Op("&&").Id("m").Dot(id.Name).Op("!=").Id("zero")).Block(appendID...)
		} else {
			g.If(jen.Id("insert")).Block(appendID...)
		}
		var cols, vals []jen.Code
		for _, fd := range persisted {
			if fd == id {
				continue
			}
			cols = append(cols, jen.Lit(fd.Column))
			vals = append(vals, jen.Id("m").Dot(fd.Name))
		}
		if len(cols) > 0 {
			g.Id("columns").Op("=").Append(append([]jen.Code{jen.Id("columns")}, cols...)...)
			g.Id("values").Op("=").Append(append([]jen.Code{jen.Id("values")}, vals...)...)
		}
		g.Return(jen.Id("columns"), jen.Id("values"))
	})

	f.Func().Params(jen.Id("m").Op("*").Id(t.Name)).Id("crudID").Params().Add(idType(t)).Block(
		jen.Return(jen.Id("m").Dot(t.ID.Name)),
	)
}
