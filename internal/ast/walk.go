package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in depth-first order. Children are
// visited in source order. Fields of Extra are never visited.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Body {
			walkIf(v, s)
		}

	case *ClassDecl:
		if n.Ident != nil {
			Walk(v, n.Ident)
		}
		if n.Class != nil {
			Walk(v, n.Class)
		}

	case *ClassExpr:
		if n.Ident != nil {
			Walk(v, n.Ident)
		}
		if n.Class != nil {
			Walk(v, n.Class)
		}

	case *Class:
		for _, m := range n.Body {
			walkIf(v, m)
		}

	case *Constructor:
		for _, p := range n.Params {
			walkIf(v, p)
		}

	case *ClassMethod:
		walkIf(v, n.Key)
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *PlainParam:
		walkIf(v, n.Pat)

	case *ParamProp:
		walkIf(v, n.Param)

	case *Ident:
		if n.TypeAnn != nil {
			Walk(v, n.TypeAnn)
		}

	case *ArrayPat:
		for _, e := range n.Elems {
			walkIf(v, e)
		}
		if n.TypeAnn != nil {
			Walk(v, n.TypeAnn)
		}

	case *ObjectPat:
		for _, p := range n.Props {
			walkIf(v, p)
		}
		if n.TypeAnn != nil {
			Walk(v, n.TypeAnn)
		}

	case *KeyValuePatProp:
		walkIf(v, n.Key)
		walkIf(v, n.Value)

	case *AssignPatProp:
		if n.Key != nil {
			Walk(v, n.Key)
		}
		walkIf(v, n.Value)

	case *RestPat:
		walkIf(v, n.Arg)
		if n.TypeAnn != nil {
			Walk(v, n.TypeAnn)
		}

	case *AssignPat:
		walkIf(v, n.Left)
		walkIf(v, n.Right)

	case *TypeAnn:
		walkIf(v, n.Type)

	case *TypeRef:
		walkIf(v, n.Name)
		for _, a := range n.TypeArgs {
			walkIf(v, a)
		}

	case *QualifiedName:
		walkIf(v, n.Left)
		if n.Right != nil {
			Walk(v, n.Right)
		}

	case *ComputedKey:
		walkIf(v, n.Expr)

	case *CallExpr:
		walkIf(v, n.Callee)
		for _, a := range n.Args {
			walkIf(v, a)
		}

	case *MemberExpr:
		walkIf(v, n.Obj)
		if n.Prop != nil {
			Walk(v, n.Prop)
		}

	case *ArrayLit:
		for _, e := range n.Elems {
			walkIf(v, e)
		}

	case *BlockStmt:
		for _, s := range n.Stmts {
			walkIf(v, s)
		}

	case *ReturnStmt:
		walkIf(v, n.Arg)

	case *Generic:
		for _, f := range n.Fields {
			walkValue(v, f.Value)
		}

	case *KeywordType, *StrLit:
		// leaves
	}

	v.Visit(nil)
}

// walkIf walks node unless it is nil or an interface holding a nil pointer.
func walkIf(v Visitor, node Node) {
	if isNil(node) {
		return
	}
	Walk(v, node)
}

func walkValue(v Visitor, value any) {
	switch val := value.(type) {
	case Node:
		walkIf(v, val)
	case []any:
		for _, e := range val {
			walkValue(v, e)
		}
	}
}

// isNil reports whether node is nil, including typed nil pointers of the
// concrete node types.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Ident:
		return n == nil
	case *Generic:
		return n == nil
	case *ClassExpr:
		return n == nil
	case *ClassDecl:
		return n == nil
	case *StrLit:
		return n == nil
	case *ComputedKey:
		return n == nil
	case *TypeRef:
		return n == nil
	case *KeywordType:
		return n == nil
	case *ArrayPat:
		return n == nil
	case *ObjectPat:
		return n == nil
	case *RestPat:
		return n == nil
	case *AssignPat:
		return n == nil
	case *PlainParam:
		return n == nil
	case *ParamProp:
		return n == nil
	case *Constructor:
		return n == nil
	case *ClassMethod:
		return n == nil
	case *KeyValuePatProp:
		return n == nil
	case *AssignPatProp:
		return n == nil
	case *QualifiedName:
		return n == nil
	case *CallExpr:
		return n == nil
	case *MemberExpr:
		return n == nil
	case *ArrayLit:
		return n == nil
	case *BlockStmt:
		return n == nil
	case *ReturnStmt:
		return n == nil
	}
	return false
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for every node. If f returns true, Inspect descends into the node's
// children, followed by a call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
