// Package ast defines the program tree the constructor metadata pass works on.
//
// The tree models, as closed sets of Go types, only the shapes the pass reads
// or creates: classes, constructors, parameters, binding patterns and type
// references. Everything else a front end produces is carried by Generic so
// that trees round-trip through the pass without losing information.
package ast

// Span is a half-open byte range [Lo, Hi) in the source a node was read from.
// Nodes created by the pass have a zero span.
type Span struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Range returns the span itself. It is promoted to every node that embeds Span.
func (s Span) Range() Span { return s }

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool { return s.Lo == 0 && s.Hi == 0 }

// Extra holds serialized fields a front end attached to a node that the tree
// does not model. Values are opaque to this package.
type Extra map[string]any

// Node is implemented by every tree node.
type Node interface {
	Range() Span
}

// Stmt is a statement or module item.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// ClassMember is one entry of a class body.
type ClassMember interface {
	Node
	classMemberNode()
}

// Param is one constructor parameter: *PlainParam or *ParamProp.
type Param interface {
	Node
	paramNode()
}

// Pat is a binding pattern: *Ident, *ArrayPat, *ObjectPat, *RestPat,
// *AssignPat, or *Generic for shapes the pass ignores.
type Pat interface {
	Node
	patNode()
}

// ObjectPatProp is one property of an object pattern: *KeyValuePatProp,
// *AssignPatProp or *RestPat.
type ObjectPatProp interface {
	Node
	objectPatPropNode()
}

// TsType is a TypeScript type: *TypeRef, *KeywordType, or *Generic.
type TsType interface {
	Node
	tsTypeNode()
}

// EntityName is the name of a referenced type: *Ident or *QualifiedName.
type EntityName interface {
	Node
	entityNameNode()
}

// PropName is a property or member key: *Ident, *StrLit, *ComputedKey or *Generic.
type PropName interface {
	Node
	propNameNode()
}

// Program is the root of one parsed source unit.
type Program struct {
	Span
	// Module is false for scripts.
	Module bool
	Body   []Stmt
	Extra  Extra
}

// ClassDecl is a `class Name {}` declaration.
type ClassDecl struct {
	Span
	Ident *Ident
	Class *Class
}

// ClassExpr is a class expression; Ident is nil for anonymous classes.
type ClassExpr struct {
	Span
	Ident *Ident
	Class *Class
}

// Class is the part shared by class declarations and expressions.
type Class struct {
	Span
	// BodySpan covers the braces of the class body.
	BodySpan Span
	Body     []ClassMember
	Extra    Extra
}

// Constructor is a class constructor.
type Constructor struct {
	Span
	Params []Param
	Extra  Extra
}

// MethodKind distinguishes plain methods from accessors.
type MethodKind string

const (
	MethodPlain  MethodKind = "method"
	MethodGetter MethodKind = "getter"
	MethodSetter MethodKind = "setter"
)

// ClassMethod is a class method or accessor with an empty parameter list.
type ClassMethod struct {
	Span
	Key    PropName
	Kind   MethodKind
	Static bool
	Body   *BlockStmt
	Extra  Extra
}

// PlainParam is an ordinary parameter wrapping a binding pattern.
type PlainParam struct {
	Span
	Pat   Pat
	Extra Extra
}

// ParamProp is a parameter promoted to an instance field
// (`private readonly api: Api`). Param is an *Ident or an *AssignPat.
type ParamProp struct {
	Span
	Accessibility string
	Readonly      bool
	Override      bool
	Param         Pat
	Extra         Extra
}

// Ident is an identifier. As a binding it may be optional and annotated.
type Ident struct {
	Span
	Name     string
	Optional bool
	TypeAnn  *TypeAnn
	Extra    Extra
}

// ArrayPat is `[a, , b]`. A nil element is an elision.
type ArrayPat struct {
	Span
	Elems    []Pat
	Optional bool
	TypeAnn  *TypeAnn
	Extra    Extra
}

// ObjectPat is `{ a: b, c, ...d }`.
type ObjectPat struct {
	Span
	Props    []ObjectPatProp
	Optional bool
	TypeAnn  *TypeAnn
	Extra    Extra
}

// KeyValuePatProp is `key: pattern` inside an object pattern.
type KeyValuePatProp struct {
	Span
	Key   PropName
	Value Pat
	Extra Extra
}

// AssignPatProp is a shorthand property, with a default when Value is set.
type AssignPatProp struct {
	Span
	Key   *Ident
	Value Node
	Extra Extra
}

// RestPat is `...arg`.
type RestPat struct {
	Span
	Arg     Pat
	TypeAnn *TypeAnn
	Extra   Extra
}

// AssignPat is `left = right`.
type AssignPat struct {
	Span
	Left  Pat
	Right Node
	Extra Extra
}

// TypeAnn is the `: T` annotation of a binding.
type TypeAnn struct {
	Span
	Type  TsType
	Extra Extra
}

// TypeRef is a reference to a named type, possibly qualified or generic.
type TypeRef struct {
	Span
	Name     EntityName
	TypeArgs []TsType
	Extra    Extra
}

// QualifiedName is `Left.Right` in type position.
type QualifiedName struct {
	Span
	Left  EntityName
	Right *Ident
	Extra Extra
}

// KeywordType is a predefined type such as string or number.
type KeywordType struct {
	Span
	Keyword string
	Extra   Extra
}

// ComputedKey is a `[expr]` member key.
type ComputedKey struct {
	Span
	Expr  Expr
	Extra Extra
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Span
	Callee Expr
	Args   []Expr
	Extra  Extra
}

// MemberExpr is `obj.prop`.
type MemberExpr struct {
	Span
	Obj   Expr
	Prop  *Ident
	Extra Extra
}

// StrLit is a string literal.
type StrLit struct {
	Span
	Value string
	Extra Extra
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Span
	Elems []Expr
	Extra Extra
}

// BlockStmt is `{ stmts }`.
type BlockStmt struct {
	Span
	Stmts []Stmt
	Extra Extra
}

// ReturnStmt is `return arg`; Arg may be nil.
type ReturnStmt struct {
	Span
	Arg   Expr
	Extra Extra
}

// Generic carries any node the tree does not model. Kind is the front end's
// node type name (empty for untyped containers). Text holds the node's source
// text when the front end has it. Field values are Node, []any, or opaque
// front-end values.
type Generic struct {
	Span
	Kind   string
	Text   string
	Fields []Field
}

// Field is one named child slot of a Generic node.
type Field struct {
	Name  string
	Value any
}

// Field returns the value of the first field named name.
func (g *Generic) Field(name string) (any, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (*ClassDecl) stmtNode()  {}
func (*BlockStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*Generic) stmtNode()    {}

func (*ClassExpr) exprNode()  {}
func (*Ident) exprNode()      {}
func (*CallExpr) exprNode()   {}
func (*MemberExpr) exprNode() {}
func (*StrLit) exprNode()     {}
func (*ArrayLit) exprNode()   {}
func (*Generic) exprNode()    {}

func (*Constructor) classMemberNode() {}
func (*ClassMethod) classMemberNode() {}
func (*Generic) classMemberNode()     {}

func (*PlainParam) paramNode() {}
func (*ParamProp) paramNode()  {}

func (*Ident) patNode()     {}
func (*ArrayPat) patNode()  {}
func (*ObjectPat) patNode() {}
func (*RestPat) patNode()   {}
func (*AssignPat) patNode() {}
func (*Generic) patNode()   {}

func (*KeyValuePatProp) objectPatPropNode() {}
func (*AssignPatProp) objectPatPropNode()   {}
func (*RestPat) objectPatPropNode()         {}

func (*TypeRef) tsTypeNode()     {}
func (*KeywordType) tsTypeNode() {}
func (*Generic) tsTypeNode()     {}

func (*Ident) entityNameNode()         {}
func (*QualifiedName) entityNameNode() {}

func (*Ident) propNameNode()       {}
func (*StrLit) propNameNode()      {}
func (*ComputedKey) propNameNode() {}
func (*Generic) propNameNode()     {}
