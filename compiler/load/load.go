// Package load finds entity declarations in Go packages.
//
// An entity is a struct type whose doc comment carries a //crud:entity
// directive. The loader type-checks the package with golang.org/x/tools/go/packages
// and records, per entity, its fields (with their types and struct tags),
// its //crud: directives and the imports of the declaring file. Files
// previously written by the generator are replaced by empty overlays so a
// stale or broken generated file never prevents regeneration.
//
// Packages are type-checked from source, dependencies included. Hooks may
// take the generated input models (*AuthorCreate) as parameters; while the
// generated files are blanked those names are undefined, which the type
// checker reports as a tolerated type error. Loading through export data
// would compile the package with the go command instead, and fail.
package load

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadMode requests syntax and types of the matched packages and their
// dependencies. NeedDeps keeps go/packages from asking the go command for
// export data.
const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps

// GeneratedHeader marks files owned by the generator.
const GeneratedHeader = "// Code generated by crudgen. DO NOT EDIT."

const directivePrefix = "//crud:"

// Config controls package loading.
type Config struct {
	// Patterns are go/packages patterns, e.g. "./..." or an import path.
	Patterns []string
	// Dir is the working directory for the go command.
	Dir string
	// BuildFlags are passed to the go command, e.g. "-tags=integration".
	BuildFlags []string
}

// Load loads the packages matching the configured patterns and returns the
// ones declaring at least one entity.
func (c *Config) Load() ([]*Package, error) {
	if len(c.Patterns) == 0 {
		return nil, errors.New("load: no package patterns")
	}
	overlay, err := c.overlay()
	if err != nil {
		return nil, err
	}
	cfg := &packages.Config{
		Mode:       loadMode,
		Dir:        c.Dir,
		BuildFlags: c.BuildFlags,
		Overlay:    overlay,
		Tests:      false,
	}
	pkgs, err := packages.Load(cfg, c.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	var out []*Package
	for _, p := range pkgs {
		if err := fatalErrors(p); err != nil {
			return nil, err
		}
		lp, err := newPackage(p)
		if err != nil {
			return nil, err
		}
		if len(lp.Schemas) > 0 {
			out = append(out, lp)
		}
	}
	return out, nil
}

// overlay blanks every generator-owned file in the matched packages.
func (c *Config) overlay() (map[string][]byte, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        c.Dir,
		BuildFlags: c.BuildFlags,
	}, c.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: list packages: %w", err)
	}
	overlay := make(map[string][]byte)
	for _, p := range pkgs {
		for _, name := range p.GoFiles {
			ok, err := isGenerated(name)
			if err != nil {
				return nil, err
			}
			if ok {
				overlay[name] = []byte("package " + p.Name + "\n")
			}
		}
	}
	return overlay, nil
}

func isGenerated(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return string(line) == GeneratedHeader, nil
	}
	return false, sc.Err()
}

// fatalErrors returns list and parse errors. Type errors are tolerated:
// entity declarations and hooks reference code that is only generated
// after this load.
func fatalErrors(p *packages.Package) error {
	var errs []error
	for _, e := range p.Errors {
		if e.Kind == packages.TypeError {
			continue
		}
		errs = append(errs, fmt.Errorf("load: package %s: %s", p.PkgPath, e))
	}
	return errors.Join(errs...)
}

func newPackage(p *packages.Package) (*Package, error) {
	lp := &Package{
		Name:    p.Name,
		PkgPath: p.PkgPath,
		fset:    p.Fset,
		types:   p.Types,
	}
	if len(p.GoFiles) > 0 {
		lp.Dir = path.Dir(p.GoFiles[0])
	}
	for _, file := range p.Syntax {
		imports := fileImports(file, p)
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				s, err := lp.newSchema(ts, st, doc, imports, p.TypesInfo)
				if err != nil {
					return nil, err
				}
				if s != nil {
					lp.Schemas = append(lp.Schemas, s)
				}
			}
		}
	}
	return lp, nil
}

func (lp *Package) newSchema(ts *ast.TypeSpec, st *ast.StructType, doc *ast.CommentGroup, imports map[string]string, info *types.Info) (*Schema, error) {
	directives, text := splitDoc(doc)
	if !hasEntity(directives) {
		return nil, nil
	}
	s := &Schema{
		Name:       ts.Name.Name,
		Pos:        lp.position(ts.Pos()),
		Doc:        text,
		Directives: directives,
		Imports:    imports,
		pkg:        lp,
		pos:        st.End(),
	}
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		return nil, fmt.Errorf("schema %q: generic entity types are not supported", s.Name)
	}
	for _, f := range st.Fields.List {
		var tag string
		if f.Tag != nil {
			raw, err := strconv.Unquote(f.Tag.Value)
			if err != nil {
				return nil, fmt.Errorf("schema %q: bad struct tag %s: %w", s.Name, f.Tag.Value, err)
			}
			tag = raw
		}
		if len(f.Names) == 0 {
			if _, ok := reflect.StructTag(tag).Lookup("crud"); ok {
				return nil, fmt.Errorf("schema %q: embedded field %s cannot carry crud directives", s.Name, types.ExprString(f.Type))
			}
			continue
		}
		ref := lp.typeRef(f.Type, info)
		for _, name := range f.Names {
			if !name.IsExported() {
				continue
			}
			s.Fields = append(s.Fields, &Field{
				Name: name.Name,
				Type: ref,
				Tag:  tag,
				Pos:  lp.position(name.Pos()),
			})
		}
	}
	return s, nil
}

func (lp *Package) typeRef(expr ast.Expr, info *types.Info) *TypeRef {
	if info != nil {
		if t := info.TypeOf(expr); t != nil && t != types.Typ[types.Invalid] {
			return NewTypeRef(t, lp.types)
		}
	}
	return &TypeRef{Kind: KindOther, Expr: types.ExprString(expr)}
}

func (lp *Package) position(pos token.Pos) string {
	if lp.fset == nil || !pos.IsValid() {
		return ""
	}
	p := lp.fset.Position(pos)
	return fmt.Sprintf("%s:%d", path.Base(p.Filename), p.Line)
}

// fileImports maps the names under which file refers to its imports.
func fileImports(file *ast.File, p *packages.Package) map[string]string {
	out := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		ipath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		switch {
		case spec.Name != nil:
			name = spec.Name.Name
		case p.Imports[ipath] != nil && p.Imports[ipath].Name != "":
			name = p.Imports[ipath].Name
		default:
			name = path.Base(ipath)
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = ipath
	}
	return out
}

// splitDoc separates //crud: directives from the prose of a doc comment.
func splitDoc(doc *ast.CommentGroup) (directives []string, text string) {
	if doc == nil {
		return nil, ""
	}
	var prose []string
	for _, c := range doc.List {
		if rest, ok := strings.CutPrefix(c.Text, directivePrefix); ok {
			directives = append(directives, strings.TrimSpace(rest))
			continue
		}
		line := strings.TrimPrefix(c.Text, "//")
		prose = append(prose, strings.TrimSpace(line))
	}
	return directives, strings.TrimSpace(strings.Join(prose, "\n"))
}

func hasEntity(directives []string) bool {
	for _, d := range directives {
		if d == "entity" || strings.HasPrefix(d, "entity ") {
			return true
		}
	}
	return false
}

// ParseFile loads entity declarations from a single source file without
// type information. Field types are limited to what can be read from
// syntax alone; it exists for tooling and tests that cannot run the go
// command.
func ParseFile(filename string, src any) (*Package, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	lp := &Package{Name: file.Name.Name, Dir: path.Dir(filename), fset: fset}
	imports := make(map[string]string)
	for _, spec := range file.Imports {
		ipath, _ := strconv.Unquote(spec.Path.Value)
		name := path.Base(ipath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = ipath
	}
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			s, err := lp.newSchema(ts, st, doc, imports, nil)
			if err != nil {
				return nil, err
			}
			if s != nil {
				s.pkg = nil
				for _, f := range s.Fields {
					f.Type = syntaxTypeRef(f.Type.Expr, imports)
				}
				lp.Schemas = append(lp.Schemas, s)
			}
		}
	}
	return lp, nil
}

// syntaxTypeRef builds a TypeRef from a type expression without type
// checking. Identifiers that are not predeclared are assumed to be local
// named types.
func syntaxTypeRef(src string, imports map[string]string) *TypeRef {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return &TypeRef{Kind: KindOther, Expr: src}
	}
	return exprTypeRef(expr, imports)
}

func exprTypeRef(expr ast.Expr, imports map[string]string) *TypeRef {
	switch e := expr.(type) {
	case *ast.Ident:
		if obj := types.Universe.Lookup(e.Name); obj != nil {
			if e.Name == "any" {
				return &TypeRef{Kind: KindInterface}
			}
			return Basic(e.Name)
		}
		return Named("", e.Name, "")
	case *ast.StarExpr:
		return PointerTo(exprTypeRef(e.X, imports))
	case *ast.ArrayType:
		if e.Len == nil {
			return SliceOf(exprTypeRef(e.Elt, imports))
		}
	case *ast.MapType:
		return MapOf(exprTypeRef(e.Key, imports), exprTypeRef(e.Value, imports))
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if p, ok := imports[x.Name]; ok {
				return Named(p, e.Sel.Name, "")
			}
		}
	}
	return &TypeRef{Kind: KindOther, Expr: types.ExprString(expr)}
}
