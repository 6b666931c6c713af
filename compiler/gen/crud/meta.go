package crud

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
)

var relationKinds = map[crudgen.RelationKind]string{
	crudgen.HasMany:   "HasMany",
	crudgen.HasOne:    "HasOne",
	crudgen.BelongsTo: "BelongsTo",
}

// genMeta generates the metadata of t and registers it on init.
func genMeta(f *jen.File, t *gen.Type) {
	f.Commentf("%s describes the %s entity to the filter engine.", t.MetaName(), t.Label)
	f.Var().Id(t.MetaName()).Op("=").Op("&").Qual(crudgenPkg, "EntityMeta").Values(jen.DictFunc(func(d jen.Dict) {
		d[jen.Id("Name")] = jen.Lit(t.Label)
		d[jen.Id("Plural")] = jen.Lit(t.Plural)
		d[jen.Id("Table")] = jen.Lit(t.Table)
		if t.Description != "" {
			d[jen.Id("Description")] = jen.Lit(t.Description)
		}
		d[jen.Id("PrimaryKey")] = jen.Lit(t.ID.Column)
		d[jen.Id("Columns")] = stringSlice(t.Columns())
		d[jen.Id("DefaultSort")] = jen.Lit(t.DefaultSort)
		registries := []struct {
			name string
			cols []string
		}{
			{"Sortable", t.SortableColumns()},
			{"Filterable", t.FilterableColumns()},
			{"Fulltext", t.FulltextColumns()},
			{"Like", t.LikeColumns()},
		}
		for _, r := range registries {
			if len(r.cols) > 0 {
				d[jen.Id(r.name)] = stringSlice(r.cols)
			}
		}
		if t.FulltextLanguage != "" {
			d[jen.Id("FulltextLanguage")] = jen.Lit(t.FulltextLanguage)
		}
		if len(t.Edges) > 0 {
			d[jen.Id("Joins")] = jen.Index().Qual(crudgenPkg, "JoinMeta").ValuesFunc(func(g *jen.Group) {
				for _, e := range t.Edges {
					g.Values(joinMeta(e))
				}
			})
		}
	}))

	f.Func().Id("init").Params().Block(
		jen.Qual(crudgenPkg, "Register").Call(jen.Id(t.MetaName())),
	)
}

func joinMeta(e *gen.Edge) jen.Dict {
	d := jen.Dict{
		jen.Id("Name"):       jen.Lit(e.Name),
		jen.Id("Kind"):       jen.Qual(crudgenPkg, relationKinds[e.Kind]),
		jen.Id("Table"):      jen.Lit(e.Type.Table),
		jen.Id("PrimaryKey"): jen.Lit(e.Type.ID.Column),
		jen.Id("Column"):     jen.Lit(e.Column),
	}
	if len(e.Filterable) > 0 {
		d[jen.Id("Filterable")] = stringSlice(e.Filterable)
	}
	if len(e.Sortable) > 0 {
		d[jen.Id("Sortable")] = stringSlice(e.Sortable)
	}
	return d
}
