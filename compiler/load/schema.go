package load

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"strings"
)

// ErrNoTypeInfo is returned by Schema.Eval and Schema.LookupFunc when the
// schema was not produced by a type-checked load.
var ErrNoTypeInfo = errors.New("load: no type information")

// Package is a loaded Go package holding one or more entity declarations.
type Package struct {
	Name    string    `json:"name"`
	PkgPath string    `json:"pkg_path"`
	Dir     string    `json:"dir"`
	Schemas []*Schema `json:"schemas"`

	fset  *token.FileSet
	types *types.Package
}

// Schema is a struct declaration marked with a //crud:entity directive.
type Schema struct {
	Name string `json:"name"`
	// Pos is the declaration position formatted as file:line.
	Pos string `json:"pos,omitempty"`
	// Doc is the doc comment text with directive lines removed.
	Doc string `json:"doc,omitempty"`
	// Directives holds the doc comment directives without their "//crud:"
	// prefix, e.g. "entity name=author".
	Directives []string `json:"directives"`
	Fields     []*Field `json:"fields"`
	// Imports maps the import names of the declaring file to their paths.
	Imports map[string]string `json:"imports,omitempty"`

	pkg *Package
	pos token.Pos
}

// Field is a struct field of an entity declaration.
type Field struct {
	Name string   `json:"name"`
	Type *TypeRef `json:"type"`
	// Tag is the raw struct tag, without the surrounding backquotes.
	Tag string `json:"tag,omitempty"`
	Pos string `json:"pos,omitempty"`
}

// Package returns the package the schema was loaded from, or nil.
func (s *Schema) Package() *Package {
	return s.pkg
}

// Eval type-checks expr in the scope of the schema declaration.
func (s *Schema) Eval(expr string) (types.Type, error) {
	if s.pkg == nil || s.pkg.types == nil {
		return nil, ErrNoTypeInfo
	}
	tv, err := types.Eval(s.pkg.fset, s.pkg.types, s.pos, expr)
	if err != nil {
		return nil, fmt.Errorf("schema %q: eval %q: %w", s.Name, expr, err)
	}
	return tv.Type, nil
}

// LookupFunc returns the signature of the package-level function name.
func (s *Schema) LookupFunc(name string) (*types.Signature, error) {
	if s.pkg == nil || s.pkg.types == nil {
		return nil, ErrNoTypeInfo
	}
	fn, ok := s.pkg.types.Scope().Lookup(name).(*types.Func)
	if !ok {
		return nil, fmt.Errorf("schema %q: no function %s in package %s", s.Name, name, s.pkg.Name)
	}
	return fn.Type().(*types.Signature), nil
}

// Kind is the structural kind of a TypeRef.
type Kind string

// Type kinds.
const (
	KindBasic     Kind = "basic"
	KindNamed     Kind = "named"
	KindPointer   Kind = "pointer"
	KindSlice     Kind = "slice"
	KindArray     Kind = "array"
	KindMap       Kind = "map"
	KindInterface Kind = "interface"
	KindOther     Kind = "other"
)

// TypeRef is a serialisable description of a field type, sufficient to
// re-emit it in generated code.
type TypeRef struct {
	Kind Kind `json:"kind"`
	// Name is the basic type name or the declared name of a named type.
	Name string `json:"name,omitempty"`
	// PkgPath is the import path of a named type. Empty for predeclared
	// types and for types declared in the entity package itself.
	PkgPath string `json:"pkg_path,omitempty"`
	// Underlying is the basic underlying type name of a named type, if any.
	Underlying string     `json:"underlying,omitempty"`
	Elem       *TypeRef   `json:"elem,omitempty"`
	Key        *TypeRef   `json:"key,omitempty"`
	Args       []*TypeRef `json:"args,omitempty"`
	Len        int64      `json:"len,omitempty"`
	// Expr is the source form, used for KindOther.
	Expr string `json:"expr,omitempty"`
}

// Basic returns a TypeRef for a predeclared type.
func Basic(name string) *TypeRef {
	return &TypeRef{Kind: KindBasic, Name: name}
}

// Named returns a TypeRef for a named type. An empty pkgPath refers to the
// entity package.
func Named(pkgPath, name, underlying string) *TypeRef {
	return &TypeRef{Kind: KindNamed, PkgPath: pkgPath, Name: name, Underlying: underlying}
}

// PointerTo returns *t.
func PointerTo(t *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindPointer, Elem: t}
}

// SliceOf returns []t.
func SliceOf(t *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindSlice, Elem: t}
}

// MapOf returns map[k]v.
func MapOf(k, v *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindMap, Key: k, Elem: v}
}

// IsPointer reports whether t is a pointer type.
func (t *TypeRef) IsPointer() bool { return t.Kind == KindPointer }

// IsSlice reports whether t is a slice type.
func (t *TypeRef) IsSlice() bool { return t.Kind == KindSlice }

// IsLocal reports whether t is a named type declared in the entity package.
func (t *TypeRef) IsLocal() bool { return t.Kind == KindNamed && t.PkgPath == "" }

// IsString reports whether t is string or a named type with an underlying
// string.
func (t *TypeRef) IsString() bool {
	switch t.Kind {
	case KindBasic:
		return t.Name == "string"
	case KindNamed:
		return t.Underlying == "string"
	}
	return false
}

// Deref strips one level of pointer.
func (t *TypeRef) Deref() *TypeRef {
	if t.Kind == KindPointer {
		return t.Elem
	}
	return t
}

// String renders t as Go source, qualifying named types by the last
// element of their package path.
func (t *TypeRef) String() string {
	switch t.Kind {
	case KindBasic:
		return t.Name
	case KindNamed:
		var b strings.Builder
		if t.PkgPath != "" {
			b.WriteString(t.PkgPath[strings.LastIndex(t.PkgPath, "/")+1:])
			b.WriteString(".")
		}
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			args := make([]string, len(t.Args))
			for i, a := range t.Args {
				args[i] = a.String()
			}
			fmt.Fprintf(&b, "[%s]", strings.Join(args, ", "))
		}
		return b.String()
	case KindPointer:
		return "*" + t.Elem.String()
	case KindSlice:
		return "[]" + t.Elem.String()
	case KindArray:
		return fmt.Sprintf("[%d]%s", t.Len, t.Elem)
	case KindMap:
		return fmt.Sprintf("map[%s]%s", t.Key, t.Elem)
	case KindInterface:
		return "any"
	default:
		return t.Expr
	}
}

// NewTypeRef converts a go/types type. Types declared in local are
// referenced without a package path.
func NewTypeRef(t types.Type, local *types.Package) *TypeRef {
	t = types.Unalias(t)
	switch t := t.(type) {
	case *types.Basic:
		return Basic(t.Name())
	case *types.Pointer:
		return PointerTo(NewTypeRef(t.Elem(), local))
	case *types.Slice:
		return SliceOf(NewTypeRef(t.Elem(), local))
	case *types.Array:
		return &TypeRef{Kind: KindArray, Len: t.Len(), Elem: NewTypeRef(t.Elem(), local)}
	case *types.Map:
		return MapOf(NewTypeRef(t.Key(), local), NewTypeRef(t.Elem(), local))
	case *types.Interface:
		if t.Empty() {
			return &TypeRef{Kind: KindInterface}
		}
	case *types.Named:
		obj := t.Obj()
		ref := &TypeRef{Kind: KindNamed, Name: obj.Name()}
		if obj.Pkg() != nil && obj.Pkg() != local {
			ref.PkgPath = obj.Pkg().Path()
		}
		if b, ok := t.Underlying().(*types.Basic); ok {
			ref.Underlying = b.Name()
		}
		if args := t.TypeArgs(); args != nil {
			for i := range args.Len() {
				ref.Args = append(ref.Args, NewTypeRef(args.At(i), local))
			}
		}
		return ref
	}
	return &TypeRef{Kind: KindOther, Expr: types.TypeString(t, types.RelativeTo(local))}
}
