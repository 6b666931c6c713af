package crud

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
)

// operation describes one public service method.
type operation struct {
	action crudgen.Action
	method string
	// body is the private method holding the default body.
	body string
	// mutation names the error operation of a nil custom body result.
	mutation string
	// params are the inputs after ctx and db.
	params []jen.Code
	args   []jen.Code
	// out is the method result type.
	out jen.Code
	// zero is the value returned with an error.
	zero jen.Code
	// entity is set when the body returns *E and nil means not found.
	entity bool
	// finish renders the statements turning the body result `v` into
	// the method result.
	finish func(g *jen.Group)
}

func operations(t *gen.Type) []operation {
	id := func() *jen.Statement { return jen.Id("id").Add(idType(t)) }
	ids := func() *jen.Statement { return jen.Id("ids").Index().Add(idType(t)) }
	respond := func(g *jen.Group) { g.Return(jen.Id("s").Dot("response").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("v"))) }
	return []operation{
		{
			action: crudgen.ActionGet, method: "Get", body: "getOne",
			params: []jen.Code{id()}, args: []jen.Code{jen.Id("id")},
			out: jen.Op("*").Id(t.ResponseName()), zero: jen.Nil(),
			entity: true, finish: respond,
		},
		{
			action: crudgen.ActionList, method: "List", body: "getAll",
			params: []jen.Code{jen.Id("q").Op("*").Qual(filterPkg, "Query")}, args: []jen.Code{jen.Id("q")},
			out: jen.Op("*").Qual(crudgenPkg, "Page").Types(jen.Id(t.ListName())), zero: jen.Nil(),
			finish: func(g *jen.Group) { g.Return(jen.Id("s").Dot("page").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("q"), jen.Id("v"))) },
		},
		{
			action: crudgen.ActionCreate, method: "Create", body: "createOne", mutation: "create",
			params: []jen.Code{jen.Id("in").Op("*").Id(t.CreateName())}, args: []jen.Code{jen.Id("in")},
			out: jen.Op("*").Id(t.ResponseName()), zero: jen.Nil(),
			entity: true, finish: respond,
		},
		{
			action: crudgen.ActionCreateMany, method: "CreateMany", body: "createMany",
			params: []jen.Code{jen.Id("in").Index().Id(t.CreateName())}, args: []jen.Code{jen.Id("in")},
			out: jen.Index().Id(t.ResponseName()), zero: jen.Nil(),
			finish: func(g *jen.Group) { g.Return(jen.Id("s").Dot("responses").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("v"))) },
		},
		{
			action: crudgen.ActionUpdate, method: "Update", body: "updateOne",
			params: []jen.Code{id(), jen.Id("in").Op("*").Id(t.UpdateName())}, args: []jen.Code{jen.Id("id"), jen.Id("in")},
			out: jen.Op("*").Id(t.ResponseName()), zero: jen.Nil(),
			entity: true, finish: respond,
		},
		{
			action: crudgen.ActionDelete, method: "Delete", body: "deleteOne",
			params: []jen.Code{id()}, args: []jen.Code{jen.Id("id")},
			out: idType(t), zero: jen.Id("zero"),
			finish: func(g *jen.Group) { g.Return(jen.Id("v"), jen.Nil()) },
		},
		{
			action: crudgen.ActionDeleteMany, method: "DeleteMany", body: "deleteMany",
			params: []jen.Code{ids()}, args: []jen.Code{jen.Id("ids")},
			out: jen.Index().Add(idType(t)), zero: jen.Nil(),
			finish: func(g *jen.Group) { g.Return(jen.Id("v"), jen.Nil()) },
		},
	}
}

// genService generates the service type of t and its operations.
func genService(f *jen.File, t *gen.Type) {
	svc := t.ServiceName()
	f.Commentf("%s implements the CRUD operations of %s.", svc, t.Name)
	f.Type().Id(svc).Struct()

	f.Commentf("Meta returns the metadata of %s.", t.Name)
	f.Func().Params(jen.Id(svc)).Id("Meta").Params().Op("*").Qual(crudgenPkg, "EntityMeta").Block(
		jen.Return(jen.Id(t.MetaName())),
	)

	ops := operations(t)
	for _, op := range ops {
		genOperation(f, t, op)
	}
	genResponses(f, t)
	genGetOne(f, t)
	genGetAll(f, t)
	genCreateOne(f, t)
	genCreateMany(f, t, ops[2])
	genUpdateOne(f, t)
	genDeleteOne(f, t)
	genDeleteMany(f, t)
}

// bodyCall renders the call of the body of op: the legacy override, the
// body hook, or the default body.
func bodyCall(t *gen.Type, op operation, db string, args ...jen.Code) (*jen.Statement, bool) {
	call := append([]jen.Code{jen.Id("ctx"), jen.Id(db)}, args...)
	if fn := t.Hooks.Override(op.action); fn != "" {
		return jen.Id(fn).Call(call...), true
	}
	if fn := t.Hooks.Func(op.action, crudgen.Body); fn != "" {
		return jen.Id(fn).Call(call...), true
	}
	return jen.Id("s").Dot(op.body).Call(call...), false
}

// nilEntity renders the check of a custom body returning no entity.
func nilEntity(t *gen.Type, op operation) jen.Code {
	err := jen.Qual(crudgenPkg, "NewNotFoundError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Id("id"))
	if op.mutation != "" {
		err = jen.Qual(crudgenPkg, "NewMutationError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Lit(op.mutation), jen.Qual(crudgenPkg, "ErrNotFound"))
	}
	return jen.If(jen.Id("v").Op("==").Nil()).Block(jen.Return(jen.Nil(), err))
}

func genOperation(f *jen.File, t *gen.Type, op operation) {
	params := append([]jen.Code{ctxParam(), dbParam()}, op.params...)
	f.Func().Params(jen.Id("s").Id(t.ServiceName())).Id(op.method).Params(params...).Params(op.out, jen.Error()).BlockFunc(func(g *jen.Group) {
		if op.action == crudgen.ActionDelete {
			g.Var().Id("zero").Add(idType(t))
		}
		if op.action == crudgen.ActionCreate || op.action == crudgen.ActionUpdate {
			g.If(jen.Id("in").Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual(crudgenPkg, "Invalidf").Call(jen.Lit("input"), jen.Lit("missing input"))),
			)
		}
		hook := func(p crudgen.Phase, args ...jen.Code) {
			if fn := t.Hooks.Func(op.action, p); fn != "" {
				g.Add(ifErr(jen.Id(fn).Call(append([]jen.Code{jen.Id("ctx"), jen.Id("db")}, args...)...), op.zero, jen.Err()))
			}
		}
		hook(crudgen.Pre, op.args...)
		call, custom := bodyCall(t, op, "db", op.args...)
		g.List(jen.Id("v"), jen.Err()).Op(":=").Add(call)
		g.Add(onErr(op.zero, jen.Err()))
		if custom && op.entity {
			g.Add(nilEntity(t, op))
		}
		hook(crudgen.Post, jen.Id("v"))
		op.finish(g)
	})
}

// genResponses generates the helpers loading joins and building results.
func genResponses(f *jen.File, t *gen.Type) {
	recv := jen.Id("s").Id(t.ServiceName())
	loadJoins := func(items jen.Code, mode string) jen.Code {
		return ifErr(
			jen.Id(t.LoaderName()).Call(jen.Id("ctx"), jen.Id("db"), items, jen.Qual(crudgenPkg, mode), jen.Lit(-1)),
			jen.Nil(), jen.Err(),
		)
	}

	f.Func().Params(recv.Clone()).Id("response").Params(ctxParam(), dbParam(), jen.Id("m").Op("*").Id(t.Name)).Params(
		jen.Op("*").Id(t.ResponseName()), jen.Error(),
	).Block(
		jen.Id("items").Op(":=").Index().Id(t.Name).Values(jen.Op("*").Id("m")),
		loadJoins(jen.Id("items"), "LoadOne"),
		jen.Return(jen.Id("New"+t.ResponseName()).Call(jen.Op("&").Id("items").Index(jen.Lit(0))), jen.Nil()),
	)

	f.Func().Params(recv.Clone()).Id("responses").Params(ctxParam(), dbParam(), jen.Id("items").Index().Id(t.Name)).Params(
		jen.Index().Id(t.ResponseName()), jen.Error(),
	).Block(
		loadJoins(jen.Id("items"), "LoadOne"),
		jen.Id("out").Op(":=").Make(jen.Index().Id(t.ResponseName()), jen.Len(jen.Id("items"))),
		jen.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
			jen.Id("out").Index(jen.Id("i")).Op("=").Op("*").Id("New"+t.ResponseName()).Call(jen.Op("&").Id("items").Index(jen.Id("i"))),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)

	f.Func().Params(recv.Clone()).Id("page").Params(
		ctxParam(), dbParam(), jen.Id("q").Op("*").Qual(filterPkg, "Query"), jen.Id("items").Index().Id(t.Name),
	).Params(jen.Op("*").Qual(crudgenPkg, "Page").Types(jen.Id(t.ListName())), jen.Error()).Block(
		loadJoins(jen.Id("items"), "LoadAll"),
		jen.List(jen.Id("total"), jen.Err()).Op(":=").Id("s").Dot("count").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("q")),
		onErr(jen.Nil(), jen.Err()),
		jen.Id("out").Op(":=").Make(jen.Index().Id(t.ListName()), jen.Len(jen.Id("items"))),
		jen.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
			jen.Id("out").Index(jen.Id("i")).Op("=").Id("New"+t.ListName()).Call(jen.Op("&").Id("items").Index(jen.Id("i"))),
		),
		jen.List(jen.Id("offset"), jen.Id("_")).Op(":=").Id("q").Dot("Window").Call(),
		jen.Return(jen.Qual(crudgenPkg, "NewPage").Call(jen.Id(t.MetaName()).Dot("Plural"), jen.Id("out"), jen.Id("offset"), jen.Id("total")), jen.Nil()),
	)

	f.Func().Params(recv.Clone()).Id("count").Params(ctxParam(), dbParam(), jen.Id("q").Op("*").Qual(filterPkg, "Query")).Params(jen.Int(), jen.Error()).Block(
		jen.List(jen.Id("cb"), jen.Err()).Op(":=").Id("q").Dot("CountBuilder").Call(jen.Id(t.MetaName()), jen.Id("db").Dot("Dialect").Call()),
		onErr(jen.Lit(0), jen.Err()),
		jen.List(jen.Id("total"), jen.Err()).Op(":=").Qual(sqlPkg, "Count").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("cb")),
		onErr(jen.Lit(0), queryError(t, "count")),
		jen.Return(jen.Id("total"), jen.Nil()),
	)
}

func queryError(t *gen.Type, op string) jen.Code {
	return jen.Qual(crudgenPkg, "NewQueryError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Lit(op), jen.Err())
}

func mutationError(t *gen.Type, op string) jen.Code {
	return jen.Qual(crudgenPkg, "NewMutationError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Lit(op), jen.Err())
}

func genGetOne(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id(t.ServiceName())).Id("getOne").Params(ctxParam(), dbParam(), jen.Id("id").Add(idType(t))).Params(
		jen.Op("*").Id(t.Name), jen.Error(),
	).Block(
		jen.List(jen.Id("m"), jen.Err()).Op(":=").Qual(sqlPkg, "SelectOne").Types(jen.Id(t.Name)).Call(
			jen.Id("ctx"), jen.Id("db"), jen.Id(t.MetaName()), jen.Id("id"),
		),
		onErr(jen.Nil(), queryError(t, "get")),
		jen.If(jen.Id("m").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual(crudgenPkg, "NewNotFoundError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Id("id"))),
		),
		jen.Return(jen.Id("m"), jen.Nil()),
	)
}

func genGetAll(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id(t.ServiceName())).Id("getAll").Params(ctxParam(), dbParam(), jen.Id("q").Op("*").Qual(filterPkg, "Query")).Params(
		jen.Index().Id(t.Name), jen.Error(),
	).Block(
		jen.List(jen.Id("sb"), jen.Err()).Op(":=").Id("q").Dot("SelectBuilder").Call(jen.Id(t.MetaName()), jen.Id("db").Dot("Dialect").Call()),
		onErr(jen.Nil(), jen.Err()),
		jen.List(jen.Id("items"), jen.Err()).Op(":=").Qual(sqlPkg, "Query").Types(jen.Id(t.Name)).Call(jen.Id("ctx"), jen.Id("db"), jen.Id("sb")),
		onErr(jen.Nil(), queryError(t, "list")),
		jen.Return(jen.Id("items"), jen.Nil()),
	)
}

func genCreateOne(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id("s").Id(t.ServiceName())).Id("createOne").Params(ctxParam(), dbParam(), jen.Id("in").Op("*").Id(t.CreateName())).Params(
		jen.Op("*").Id(t.Name), jen.Error(),
	).Block(
		ifErr(jen.Id("in").Dot("Validate").Call(), jen.Nil(), jen.Err()),
		jen.Id("m").Op(":=").Id("in").Dot("ToModel").Call(),
		jen.List(jen.Id("columns"), jen.Id("values")).Op(":=").Id("m").Dot("crudValues").Call(jen.True()),
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual(sqlPkg, "Insert").Types(idType(t)).Call(
			jen.Id("ctx"), jen.Id("db"), jen.Id(t.MetaName()), jen.Id("columns"), jen.Id("values"),
		),
		onErr(jen.Nil(), mutationError(t, "create")),
		jen.Return(jen.Id("s").Dot("getOne").Call(jen.Id("ctx"), jen.Id("db"), jen.Id("id"))),
	)
}

// genCreateMany runs the create body of every input in one transaction.
func genCreateMany(f *jen.File, t *gen.Type, create operation) {
	call, custom := bodyCall(t, create, "tx", jen.Op("&").Id("in").Index(jen.Id("i")))
	f.Func().Params(jen.Id("s").Id(t.ServiceName())).Id("createMany").Params(ctxParam(), dbParam(), jen.Id("in").Index().Id(t.CreateName())).Params(
		jen.Index().Id(t.Name), jen.Error(),
	).Block(
		jen.Id("items").Op(":=").Make(jen.Index().Id(t.Name), jen.Lit(0), jen.Len(jen.Id("in"))),
		jen.Err().Op(":=").Qual(sqlPkg, "WithTx").Call(jen.Id("ctx"), jen.Id("db"), jen.Func().Params(jen.Id("tx").Qual(sqlPkg, "Querier")).Error().Block(
			jen.For(jen.Id("i").Op(":=").Range().Id("in")).BlockFunc(func(g *jen.Group) {
				g.List(jen.Id("v"), jen.Err()).Op(":=").Add(call)
				g.Add(onErr(jen.Err()))
				if custom {
					g.If(jen.Id("v").Op("==").Nil()).Block(
						jen.Return(jen.Qual(crudgenPkg, "NewMutationError").Call(
							jen.Id(t.MetaName()).Dot("Name"), jen.Lit("create"), jen.Qual(crudgenPkg, "ErrNotFound"),
						)),
					)
				}
				g.Id("items").Op("=").Append(jen.Id("items"), jen.Op("*").Id("v"))
			}),
			jen.Return(jen.Nil()),
		)),
		onErr(jen.Nil(), jen.Err()),
		jen.Return(jen.Id("items"), jen.Nil()),
	)
}

func genUpdateOne(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id("s").Id(t.ServiceName())).Id("updateOne").Params(
		ctxParam(), dbParam(), jen.Id("id").Add(idType(t)), jen.Id("in").Op("*").Id(t.UpdateName()),
	).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		ifErr(jen.Id("in").Dot("Validate").Call(), jen.Nil(), jen.Err()),
		jen.Var().Id("out").Op("*").Id(t.Name),
		jen.Err().Op(":=").Qual(sqlPkg, "WithTx").Call(jen.Id("ctx"), jen.Id("db"), jen.Func().Params(jen.Id("tx").Qual(sqlPkg, "Querier")).Error().Block(
			jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("s").Dot("getOne").Call(jen.Id("ctx"), jen.Id("tx"), jen.Id("id")),
			onErr(jen.Err()),
			ifErr(jen.Id("in").Dot("Merge").Call(jen.Id("m")), jen.Err()),
			jen.List(jen.Id("columns"), jen.Id("values")).Op(":=").Id("m").Dot("crudValues").Call(jen.False()),
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(sqlPkg, "UpdateByID").Call(
					jen.Id("ctx"), jen.Id("tx"), jen.Id(t.MetaName()), jen.Id("id"), jen.Id("columns"), jen.Id("values"),
				),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(mutationError(t, "update"))),
			jen.List(jen.Id("out"), jen.Err()).Op("=").Id("s").Dot("getOne").Call(jen.Id("ctx"), jen.Id("tx"), jen.Id("id")),
			jen.Return(jen.Err()),
		)),
		onErr(jen.Nil(), jen.Err()),
		jen.Return(jen.Id("out"), jen.Nil()),
	)
}

func genDeleteOne(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id(t.ServiceName())).Id("deleteOne").Params(ctxParam(), dbParam(), jen.Id("id").Add(idType(t))).Params(
		idType(t), jen.Error(),
	).Block(
		jen.Var().Id("zero").Add(idType(t)),
		jen.List(jen.Id("n"), jen.Err()).Op(":=").Qual(sqlPkg, "DeleteByID").Call(jen.Id("ctx"), jen.Id("db"), jen.Id(t.MetaName()), jen.Id("id")),
		onErr(jen.Id("zero"), mutationError(t, "delete")),
		jen.If(jen.Id("n").Op("==").Lit(0)).Block(
			jen.Return(jen.Id("zero"), jen.Qual(crudgenPkg, "NewNotFoundError").Call(jen.Id(t.MetaName()).Dot("Name"), jen.Id("id"))),
		),
		jen.Return(jen.Id("id"), jen.Nil()),
	)
}

// genDeleteMany deletes ids and echoes them back, deleted or not.
func genDeleteMany(f *jen.File, t *gen.Type) {
	f.Func().Params(jen.Id(t.ServiceName())).Id("deleteMany").Params(ctxParam(), dbParam(), jen.Id("ids").Index().Add(idType(t))).Params(
		jen.Index().Add(idType(t)), jen.Error(),
	).Block(
		jen.Id("args").Op(":=").Make(jen.Index().Any(), jen.Len(jen.Id("ids"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("id")).Op(":=").Range().Id("ids")).Block(
			jen.Id("args").Index(jen.Id("i")).Op("=").Id("id"),
		),
		jen.If(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(sqlPkg, "DeleteIn").Call(jen.Id("ctx"), jen.Id("db"), jen.Id(t.MetaName()), jen.Id("args")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), mutationError(t, "delete"))),
		jen.Return(jen.Id("ids"), jen.Nil()),
	)
}
