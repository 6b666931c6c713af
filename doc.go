// Package crudgen holds the runtime types shared by crudgen-generated code.
//
// crudgen turns annotated Go structs into CRUD services. The generator
// (cmd/crudgen, or compiler.Generate) reads `crud` struct tags and
// `//crud:` doc comment directives and writes an <entity>_crud.go file next
// to each entity, in the same package:
//
//	//go:generate go run github.com/syssam/crudgen/cmd/crudgen generate .
//
//	//crud:entity name=author plural=authors table=authors default_sort=name
//	//crud:relation name=books kind=has_many entity=Book column=author_id
//	type Author struct {
//		ID    int64   `db:"id" json:"id" crud:"primary_key,sortable,filterable,exclude(create)"`
//		Name  string  `db:"name" json:"name" crud:"sortable,filterable,fulltext"`
//		Books []Book  `db:"-" json:"books" crud:"non_db,join(one,all,depth=1)"`
//	}
//
// For Author the generator emits AuthorCreate, AuthorUpdate, AuthorList and
// AuthorResponse models, conversions between them, a batched join loader,
// the AuthorMeta registry entry and an AuthorService with Get, List, Create,
// CreateMany, Update, Delete and DeleteMany.
//
// This package provides what that code needs at runtime:
//
//   - Patch, the tri-state (unset, null, set) value used by Update models
//   - the error taxonomy (NotFoundError, ValidationError, ConstraintError)
//   - EntityMeta and JoinMeta, consumed by the filter package
//   - HookKey and friends naming hook coordinates
//   - Page and ContentRange for list responses
//   - the process-wide entity registry
package crudgen
