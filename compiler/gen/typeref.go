package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/load"
)

// TypeCode renders a field type for jennifer. Named types of the entity
// package are emitted unqualified.
func TypeCode(t *load.TypeRef) *jen.Statement {
	switch t.Kind {
	case load.KindBasic:
		return jen.Id(t.Name)
	case load.KindNamed:
		var s *jen.Statement
		if t.PkgPath == "" {
			s = jen.Id(t.Name)
		} else {
			s = jen.Qual(t.PkgPath, t.Name)
		}
		if len(t.Args) > 0 {
			args := make([]jen.Code, len(t.Args))
			for i, a := range t.Args {
				args[i] = TypeCode(a)
			}
			s = s.Types(args...)
		}
		return s
	case load.KindPointer:
		return jen.Op("*").Add(TypeCode(t.Elem))
	case load.KindSlice:
		return jen.Index().Add(TypeCode(t.Elem))
	case load.KindArray:
		return jen.Index(jen.Lit(int(t.Len))).Add(TypeCode(t.Elem))
	case load.KindMap:
		return jen.Map(TypeCode(t.Key)).Add(TypeCode(t.Elem))
	case load.KindInterface:
		return jen.Id("any")
	default:
		return jen.Op(t.Expr)
	}
}

// sameType reports whether two type references denote the same type.
func sameType(a, b *load.TypeRef) bool {
	return a.String() == b.String() && a.PkgPath == b.PkgPath
}
