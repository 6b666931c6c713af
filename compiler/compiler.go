// Package compiler runs code generation end to end: it loads the packages
// declaring entities, builds one graph per package and writes the CRUD file
// of every entity.
//
//	cfg, err := gen.NewConfig(gen.WithMaxDepth(3))
//	if err != nil {
//		return err
//	}
//	res, err := compiler.Generate(ctx, []string{"./models"}, cfg)
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/compiler/gen/crud"
	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/internal/logger"
)

type (
	// Option configures a compiler run.
	Option func(*options)

	options struct {
		dir     string
		log     logger.Logger
		emitter gen.Emitter
	}

	// Result holds the outcome of Generate.
	Result struct {
		// Graphs are the entity graphs, one per loaded package.
		Graphs []*gen.Graph
		// Files are the rendered files, written unless the config is a dry run.
		Files   []gen.File
		Metrics gen.WriterMetrics
	}
)

// Dir sets the working directory patterns are resolved in.
func Dir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// Logger sets the logger reporting advisories and progress.
func Logger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Emitter replaces the CRUD emitter.
func Emitter(e gen.Emitter) Option {
	return func(o *options) { o.emitter = e }
}

func newOptions(opts []Option) *options {
	o := &options{emitter: crud.Emitter{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	return o
}

// Load loads the packages matching patterns and builds their graphs.
// Advisories are logged at warn level. Graph errors of all packages are
// joined.
func Load(ctx context.Context, patterns []string, cfg *gen.Config, opts ...Option) ([]*gen.Graph, error) {
	if cfg == nil {
		return nil, gen.NewConfigError("Config", nil, "missing generator config")
	}
	o := newOptions(opts)
	lc := &load.Config{Patterns: patterns, Dir: o.dir, BuildFlags: cfg.BuildFlags}
	pkgs, err := lc.Load()
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		o.log.Warn("no entities found", "patterns", patterns)
		return nil, nil
	}
	var (
		graphs []*gen.Graph
		errs   []error
	)
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := gen.NewGraph(cfg, pkg)
		if g != nil {
			for _, a := range g.Advisories {
				o.log.Warn(a.Message, "package", pkg.PkgPath, "type", a.Type, "field", a.Field)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pkg.PkgPath, err))
			continue
		}
		o.log.Debug("graph built", "package", pkg.PkgPath, "entities", len(g.Nodes))
		graphs = append(graphs, g)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return graphs, nil
}

// Generate loads the packages matching patterns and writes the CRUD file
// of every entity next to its declaration.
func Generate(ctx context.Context, patterns []string, cfg *gen.Config, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	graphs, err := Load(ctx, patterns, cfg, opts...)
	if err != nil {
		return nil, err
	}
	res := &Result{Graphs: graphs}
	for _, g := range graphs {
		generator := gen.NewJenniferGenerator(g, o.emitter)
		if err := generator.Generate(ctx); err != nil {
			return nil, fmt.Errorf("generating %s: %w", g.Package.PkgPath, err)
		}
		files := generator.Files()
		for _, f := range files {
			if cfg.DryRun {
				o.log.Info("rendered", "file", f.Path, "bytes", len(f.Content))
			} else {
				o.log.Info("wrote", "file", f.Path, "bytes", len(f.Content))
			}
		}
		res.Files = append(res.Files, files...)
		m := generator.Metrics()
		res.Metrics.FilesGenerated += m.FilesGenerated
		res.Metrics.TotalBytes += m.TotalBytes
		res.Metrics.RenderTime += m.RenderTime
		res.Metrics.FormatTime += m.FormatTime
		res.Metrics.WriteTime += m.WriteTime
	}
	return res, nil
}
