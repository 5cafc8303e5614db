package ast

// ClassOf returns the identifier and class of a class declaration or class
// expression. ok is false for every other node.
func ClassOf(node Node) (ident *Ident, class *Class, ok bool) {
	switch n := node.(type) {
	case *ClassDecl:
		return n.Ident, n.Class, true
	case *ClassExpr:
		return n.Ident, n.Class, true
	}
	return nil, nil, false
}

// NewIdent returns an unannotated identifier.
func NewIdent(name string) *Ident {
	return &Ident{Name: name}
}

// NewTypeRef returns a reference to the type named name.
func NewTypeRef(name string) *TypeRef {
	return &TypeRef{Name: NewIdent(name)}
}

// Annotated returns the binding `name: typeName`.
func Annotated(name, typeName string) *Ident {
	return &Ident{Name: name, TypeAnn: &TypeAnn{Type: NewTypeRef(typeName)}}
}
