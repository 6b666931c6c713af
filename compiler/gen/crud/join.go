package crud

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
)

var loadModes = []struct {
	mode crudgen.LoadMode
	name string
}{
	{crudgen.LoadOne, "LoadOne"},
	{crudgen.LoadAll, "LoadAll"},
}

// genJoins generates the join loader of t and one loader per loaded edge.
func genJoins(f *jen.File, t *gen.Type) {
	params := func(items string) []jen.Code {
		return []jen.Code{
			ctxParam(),
			dbParam(),
			jen.Id(items).Index().Id(t.Name),
			jen.Id("mode").Qual(crudgenPkg, "LoadMode"),
		}
	}

	f.Commentf("%s fills the joins of items flagged for mode, at most budget levels", t.LoaderName())
	f.Comment("deep. A negative budget applies the depth of every join.")
	f.Func().Id(t.LoaderName()).Params(append(params("items"), jen.Id("budget").Int())...).Error().BlockFunc(func(g *jen.Group) {
		var loaded []*gen.Edge
		for _, e := range t.Edges {
			if e.One || e.All {
				loaded = append(loaded, e)
			}
		}
		if len(loaded) == 0 {
			g.Return(jen.Nil())
			return
		}
		g.If(jen.Len(jen.Id("items")).Op("==").Lit(0).Op("||").Id("budget").Op("==").Lit(0)).Block(jen.Return(jen.Nil()))
		g.Switch(jen.Id("mode")).BlockFunc(func(g *jen.Group) {
			for _, lm := range loadModes {
				edges := t.EdgesFor(lm.mode)
				if len(edges) == 0 {
					continue
				}
				g.Case(jen.Qual(crudgenPkg, lm.name)).BlockFunc(func(g *jen.Group) {
					for _, e := range edges {
						depth := jen.Qual(crudgenPkg, "JoinDepth").Call(jen.Id("budget"), jen.Lit(e.Depth))
						g.Add(ifErr(jen.Id(e.LoaderName()).Call(jen.Id("ctx"), jen.Id("db"), jen.Id("items"), jen.Id("mode"), depth), jen.Err()))
					}
				})
			}
		})
		g.Return(jen.Nil())
	})

	for _, e := range t.Edges {
		if !e.One && !e.All {
			continue
		}
		f.Commentf("%s fills %s.%s.", e.LoaderName(), t.Name, e.Field.Name)
		f.Func().Id(e.LoaderName()).Params(append(params("items"), jen.Id("depth").Int())...).Error().BlockFunc(func(g *jen.Group) {
			g.If(jen.Id("depth").Op("<=").Lit(0)).Block(jen.Return(jen.Nil()))
			if e.Kind == crudgen.BelongsTo {
				belongsToKeys(g, e)
			} else {
				g.Id("keys").Op(":=").Qual(dataloaderPkg, "Keys").Call(
					jen.Id("items"),
					jen.Func().Params(jen.Id("m").Id(t.Name)).Add(idType(t)).Block(jen.Return(jen.Id("m").Dot("crudID").Call())),
				)
			}
			column := jen.Lit(e.Column)
			if e.Kind == crudgen.BelongsTo {
				column = jen.Id(e.Type.MetaName()).Dot("PrimaryKey")
			}
			g.List(jen.Id("rows"), jen.Err()).Op(":=").Qual(sqlPkg, "SelectAll").Types(jen.Id(e.Type.Name)).Call(
				jen.Id("ctx"), jen.Id("db"), jen.Id(e.Type.MetaName()), column, jen.Id("keys"),
			)
			g.Add(onErr(jen.Qual(crudgenPkg, "NewQueryError").Call(jen.Lit(t.Label), jen.Lit("join "+e.Name), jen.Err())))
			g.Add(ifErr(
				jen.Id(e.Type.LoaderName()).Call(jen.Id("ctx"), jen.Id("db"), jen.Id("rows"), jen.Id("mode"), jen.Id("depth").Op("-").Lit(1)),
				jen.Err(),
			))
			switch e.Kind {
			case crudgen.HasMany:
				assignHasMany(g, e)
			case crudgen.HasOne:
				assignHasOne(g, e)
			case crudgen.BelongsTo:
				assignBelongsTo(g, e)
			}
			g.Return(jen.Nil())
		})
	}
}

// fkFunc renders the key function reading the foreign key of a related row.
func fkFunc(e *gen.Edge) jen.Code {
	fk := jen.Id("r").Dot(e.Ref.Name)
	if e.Ref.Optional {
		fk = jen.Op("*").Add(fk)
	}
	return jen.Func().Params(jen.Id("r").Id(e.Type.Name)).Add(idType(e.Owner)).Block(jen.Return(fk))
}

func assignHasMany(g *jen.Group, e *gen.Edge) {
	g.Id("grouped").Op(":=").Qual(dataloaderPkg, "GroupByKey").Call(jen.Id("rows"), fkFunc(e))
	g.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
		jen.Id("rs").Op(":=").Id("grouped").Index(jen.Id("items").Index(jen.Id("i")).Dot("crudID").Call()),
		jen.If(jen.Id("rs").Op("==").Nil()).Block(
			jen.Id("rs").Op("=").Index().Id(e.Type.Name).Values(),
		),
		jen.Id("items").Index(jen.Id("i")).Dot(e.Field.Name).Op("=").Id("rs"),
	)
}

func assignHasOne(g *jen.Group, e *gen.Edge) {
	g.Id("index").Op(":=").Qual(dataloaderPkg, "IndexByKey").Call(jen.Id("rows"), fkFunc(e))
	g.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
		jen.If(
			jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("index").Index(jen.Id("items").Index(jen.Id("i")).Dot("crudID").Call()),
			jen.Id("ok"),
		).Block(
			jen.Id("items").Index(jen.Id("i")).Dot(e.Field.Name).Op("=").Op("&").Id("r"),
		),
	)
}

// belongsToKeys renders the collection of the distinct foreign keys held by
// the owners. Null keys are skipped.
func belongsToKeys(g *jen.Group, e *gen.Edge) {
	fk := func() *jen.Statement { return jen.Id("m").Dot(e.Ref.Name) }
	if !e.Ref.Optional {
		g.Id("keys").Op(":=").Qual(dataloaderPkg, "Keys").Call(
			jen.Id("items"),
			jen.Func().Params(jen.Id("m").Id(e.Owner.Name)).Add(idType(e.Type)).Block(jen.Return(fk())),
		)
		return
	}
	g.Id("ids").Op(":=").Make(jen.Index().Add(idType(e.Type)), jen.Lit(0), jen.Len(jen.Id("items")))
	g.For(jen.List(jen.Id("_"), jen.Id("m")).Op(":=").Range().Id("items")).Block(
		jen.If(fk().Op("!=").Nil()).Block(
			jen.Id("ids").Op("=").Append(jen.Id("ids"), jen.Op("*").Add(fk())),
		),
	)
	g.Id("keys").Op(":=").Qual(dataloaderPkg, "Keys").Call(
		jen.Id("ids"),
		jen.Func().Params(jen.Id("id").Add(idType(e.Type))).Add(idType(e.Type)).Block(jen.Return(jen.Id("id"))),
	)
}

func assignBelongsTo(g *jen.Group, e *gen.Edge) {
	g.Id("index").Op(":=").Qual(dataloaderPkg, "IndexByKey").Call(
		jen.Id("rows"),
		jen.Func().Params(jen.Id("r").Id(e.Type.Name)).Add(idType(e.Type)).Block(jen.Return(jen.Id("r").Dot("crudID").Call())),
	)
	item := func() *jen.Statement { return jen.Id("items").Index(jen.Id("i")) }
	value := jen.Id("r")
	if e.Optional() {
		value = jen.Op("&").Id("r")
	}
	lookup := func(key jen.Code) jen.Code {
		return jen.If(
			jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("index").Index(key),
			jen.Id("ok"),
		).Block(item().Dot(e.Field.Name).Op("=").Add(value))
	}
	if e.Ref.Optional {
		g.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
			jen.If(item().Dot(e.Ref.Name).Op("!=").Nil()).Block(
				lookup(jen.Op("*").Add(item().Dot(e.Ref.Name))),
			),
		)
		return
	}
	g.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
		lookup(item().Dot(e.Ref.Name)),
	)
}
