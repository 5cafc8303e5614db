package transform

import "github.com/coreoz/ctormeta/internal/ast"

// resolveParam returns the type names contributed by one constructor parameter.
func resolveParam(p ast.Param) []string {
	switch p := p.(type) {
	case *ast.ParamProp:
		// Only a bare identifier counts; `private a: Foo = x` wraps an AssignPat.
		if ident, ok := p.Param.(*ast.Ident); ok {
			return appendIdent(nil, ident)
		}
	case *ast.PlainParam:
		return resolvePat(p.Pat)
	}
	return nil
}

// resolvePat resolves a parameter pattern one level deep.
func resolvePat(pat ast.Pat) []string {
	switch pat := pat.(type) {
	case *ast.Ident:
		return appendIdent(nil, pat)

	case *ast.ArrayPat:
		var names []string
		for _, elem := range pat.Elems {
			// Elisions are nil; rest, default and nested slots are skipped.
			if ident, ok := elem.(*ast.Ident); ok {
				names = appendIdent(names, ident)
			}
		}
		return names

	case *ast.ObjectPat:
		var names []string
		for _, prop := range pat.Props {
			// Shorthand `{ a }`, `{ a = 1 }` and rest properties carry no annotation.
			kv, ok := prop.(*ast.KeyValuePatProp)
			if !ok {
				continue
			}
			if ident, ok := kv.Value.(*ast.Ident); ok {
				names = appendIdent(names, ident)
			}
		}
		return names

	case *ast.RestPat, *ast.AssignPat, *ast.Generic:
		return nil
	}
	return nil
}

func appendIdent(names []string, ident *ast.Ident) []string {
	if name, ok := identTypeName(ident); ok {
		return append(names, name)
	}
	return names
}
