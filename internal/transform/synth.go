package transform

import (
	"github.com/coreoz/ctormeta/internal/ast"
	"github.com/coreoz/ctormeta/internal/metadata"
)

// symbolFor builds the member key `[Symbol.for("name")]`.
func symbolFor(name string) *ast.ComputedKey {
	return &ast.ComputedKey{Expr: &ast.CallExpr{
		Callee: &ast.MemberExpr{Obj: ast.NewIdent("Symbol"), Prop: ast.NewIdent("for")},
		Args:   []ast.Expr{&ast.StrLit{Value: name}},
	}}
}

// staticGetter builds `static get [key]() { return value; }`.
func staticGetter(key *ast.ComputedKey, value ast.Expr) *ast.ClassMethod {
	return &ast.ClassMethod{
		Key:    key,
		Kind:   ast.MethodGetter,
		Static: true,
		Body: &ast.BlockStmt{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Arg: value},
		}},
	}
}

func ctorArgsMember(args []string) *ast.ClassMethod {
	elems := make([]ast.Expr, len(args))
	for i, a := range args {
		elems[i] = &ast.StrLit{Value: a}
	}
	return staticGetter(symbolFor(metadata.CtorArgsKey), &ast.ArrayLit{Elems: elems})
}

func ctorNameMember(name string) *ast.ClassMethod {
	return staticGetter(symbolFor(metadata.CtorNameKey), &ast.StrLit{Value: name})
}

// IsSynthesized reports whether m is a member added by a pass: a static
// getter keyed by one of the metadata symbols that has no source span.
func IsSynthesized(m ast.ClassMember) bool {
	method, ok := m.(*ast.ClassMethod)
	if !ok || method == nil || !method.Range().IsZero() || !method.Static || method.Kind != ast.MethodGetter {
		return false
	}
	key, _ := SymbolKey(method)
	return key == metadata.CtorArgsKey || key == metadata.CtorNameKey
}

// SymbolKey returns name when m is keyed by `[Symbol.for("name")]`.
func SymbolKey(m *ast.ClassMethod) (string, bool) {
	computed, ok := m.Key.(*ast.ComputedKey)
	if !ok || computed == nil {
		return "", false
	}
	call, ok := computed.Expr.(*ast.CallExpr)
	if !ok || call == nil || len(call.Args) != 1 {
		return "", false
	}
	callee, ok := call.Callee.(*ast.MemberExpr)
	if !ok || callee == nil || callee.Prop == nil || callee.Prop.Name != "for" {
		return "", false
	}
	if obj, ok := callee.Obj.(*ast.Ident); !ok || obj == nil || obj.Name != "Symbol" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.StrLit)
	if !ok || lit == nil {
		return "", false
	}
	return lit.Value, true
}
