package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/load"
)

// Expr is a default-value expression taken from an on_create or on_update
// directive.
type Expr struct {
	// Src is the expression as written.
	Src string
	// Call is set when Src denotes a function of no arguments with a single
	// result. Such expressions are emitted as calls: on_create=time.Now
	// produces time.Now().
	Call bool

	node    ast.Expr
	imports map[string]string
}

// ParseExpr parses src. imports maps the package names visible in the
// declaring file to their import paths.
func ParseExpr(src string, imports map[string]string) (*Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return &Expr{Src: src, node: node, imports: imports}, nil
}

// resolveCall sets Call when the expression type-checks to a nullary
// function with one result. Without type information it is a no-op.
func (e *Expr) resolveCall(s *load.Schema) {
	if _, ok := e.node.(*ast.CallExpr); ok {
		return
	}
	typ, err := s.Eval(e.Src)
	if err != nil {
		return
	}
	sig, ok := typ.Underlying().(*types.Signature)
	e.Call = ok && sig.Params().Len() == 0 && sig.Results().Len() == 1
}

// Code renders the expression for jennifer, qualifying package selectors so
// that the generated file imports what the expression uses.
func (e *Expr) Code() jen.Code {
	c := e.code(e.node)
	if e.Call {
		return jen.Add(c).Call()
	}
	return c
}

func (e *Expr) code(n ast.Expr) *jen.Statement {
	switch n := n.(type) {
	case *ast.BasicLit:
		return jen.Op(n.Value)
	case *ast.Ident:
		return jen.Id(n.Name)
	case *ast.SelectorExpr:
		if x, ok := n.X.(*ast.Ident); ok {
			if path, ok := e.imports[x.Name]; ok {
				return jen.Qual(path, n.Sel.Name)
			}
		}
		return e.code(n.X).Dot(n.Sel.Name)
	case *ast.CallExpr:
		args := make([]jen.Code, len(n.Args))
		for i, a := range n.Args {
			args[i] = e.code(a)
		}
		if n.Ellipsis.IsValid() && len(args) > 0 {
			args[len(args)-1] = jen.Add(args[len(args)-1]).Op("...")
		}
		return e.code(n.Fun).Call(args...)
	case *ast.ParenExpr:
		return jen.Parens(e.code(n.X))
	case *ast.UnaryExpr:
		return jen.Op(n.Op.String()).Add(e.code(n.X))
	case *ast.StarExpr:
		return jen.Op("*").Add(e.code(n.X))
	case *ast.BinaryExpr:
		return e.code(n.X).Op(n.Op.String()).Add(e.code(n.Y))
	case *ast.IndexExpr:
		return e.code(n.X).Index(e.code(n.Index))
	case *ast.IndexListExpr:
		idx := make([]jen.Code, len(n.Indices))
		for i, x := range n.Indices {
			idx[i] = e.code(x)
		}
		return e.code(n.X).Types(idx...)
	case *ast.ArrayType:
		if n.Len == nil {
			return jen.Index().Add(e.code(n.Elt))
		}
	}
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, token.NewFileSet(), n)
	return jen.Op(buf.String())
}
