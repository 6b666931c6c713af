// Package gen analyzes annotated entity declarations and drives the
// generation of their CRUD code.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Entity declarations (//crud:entity + `crud:"..."` tags)
//	        ↓
//	   load.Package (compiler/load)
//	        ↓
//	   Graph (fields, joins, hooks, advisories)
//	        ↓
//	   Emitter (compiler/gen/crud)
//	        ↓
//	   <entity>_crud.go next to each declaration
//
// # Key Types
//
//   - Graph: the analyzed entities of one package and their advisories
//   - Type: an entity with its fields, joins, hooks and generated names
//   - Field: the classification record of a field (roles, variants, defaults)
//   - Edge: a join field resolved against its //crud:relation
//   - Hooks: the user functions bound to hook coordinates and overrides
//
// # Error Handling
//
// Every fatal finding of an analysis is reported at once, joined into one
// error. The structured error types identify the offending declaration,
// schema and edge errors by its file:line:
//
//   - SchemaError: invalid entity or field declarations
//   - EdgeError: joins that do not match their relation
//   - ConfigError: invalid generator options
//   - GenerationError: emit, format or write failures
//
// Example error handling:
//
//	graph, err := gen.NewGraph(config, pkg)
//	if err != nil {
//	    if gen.IsEdgeError(err) {
//	        // Handle join-specific errors
//	    }
//	    return err
//	}
//
// Non-fatal findings, such as a self-referential join without an explicit
// depth, are collected in Graph.Advisories.
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	config, err := gen.NewConfig(
//	    gen.WithMaxDepth(3),
//	    gen.WithHeader("Entities of the library service."),
//	)
//
// # Jennifer Generator
//
// Files are built with Jennifer, formatted with goimports and written in
// parallel with a bounded number of workers:
//
//	generator := gen.NewJenniferGenerator(graph, crud.Emitter{})
//	err := generator.Generate(ctx)
package gen
