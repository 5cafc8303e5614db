package transform

import "github.com/coreoz/ctormeta/internal/ast"

// typeName returns the referenced type name when ann is a direct reference to
// a single named type: `Foo`, but not `ns.Foo`, `Foo<T>`, `string` or `A | B`.
func typeName(ann *ast.TypeAnn) (string, bool) {
	if ann == nil {
		return "", false
	}
	ref, ok := ann.Type.(*ast.TypeRef)
	if !ok || ref == nil || len(ref.TypeArgs) > 0 {
		return "", false
	}
	ident, ok := ref.Name.(*ast.Ident)
	if !ok || ident == nil || ident.Name == "" {
		return "", false
	}
	return ident.Name, true
}

// identTypeName applies typeName to the annotation of an identifier binding.
func identTypeName(ident *ast.Ident) (string, bool) {
	if ident == nil {
		return "", false
	}
	return typeName(ident.TypeAnn)
}
