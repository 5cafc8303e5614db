package transform

import "github.com/coreoz/ctormeta/internal/ast"

// findConstructor returns the first constructor in members, or nil.
func findConstructor(members []ast.ClassMember) *ast.Constructor {
	for _, m := range members {
		if ctor, ok := m.(*ast.Constructor); ok && ctor != nil {
			return ctor
		}
	}
	return nil
}
