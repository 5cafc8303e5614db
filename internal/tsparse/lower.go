package tsparse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/coreoz/ctormeta/internal/ast"
)

type lowerer struct {
	src []byte
}

func spanOf(n *sitter.Node) ast.Span {
	return ast.Span{Lo: int(n.StartByte()), Hi: int(n.EndByte())}
}

func (l *lowerer) text(n *sitter.Node) string {
	return n.Content(l.src)
}

func (l *lowerer) program(n *sitter.Node) *ast.Program {
	prog := &ast.Program{Span: spanOf(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "import_statement", "export_statement":
			prog.Module = true
		}
		prog.Body = append(prog.Body, l.stmt(child))
	}
	return prog
}

func (l *lowerer) stmt(n *sitter.Node) ast.Stmt {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration":
		return l.classDecl(n)
	}
	return l.generic(n, false)
}

// node lowers any child of a generic node.
func (l *lowerer) node(n *sitter.Node) ast.Node {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration":
		return l.classDecl(n)
	case "class":
		ident, class := l.class(n)
		return &ast.ClassExpr{Span: spanOf(n), Ident: ident, Class: class}
	}
	return l.generic(n, false)
}

// generic lowers n and its named children. Text is kept for leaves, and for
// every node when withText is set.
func (l *lowerer) generic(n *sitter.Node, withText bool) *ast.Generic {
	g := &ast.Generic{Span: spanOf(n), Kind: n.Type()}
	if withText || n.NamedChildCount() == 0 {
		g.Text = l.text(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() {
			continue
		}
		name := n.FieldNameForChild(i)
		if name == "" {
			name = "child"
		}
		g.Fields = append(g.Fields, ast.Field{Name: name, Value: l.node(child)})
	}
	return g
}

func (l *lowerer) classDecl(n *sitter.Node) *ast.ClassDecl {
	ident, class := l.class(n)
	return &ast.ClassDecl{Span: spanOf(n), Ident: ident, Class: class}
}

func (l *lowerer) class(n *sitter.Node) (*ast.Ident, *ast.Class) {
	var ident *ast.Ident
	if name := n.ChildByFieldName("name"); name != nil {
		ident = &ast.Ident{Span: spanOf(name), Name: l.text(name)}
	}
	class := &ast.Class{Span: spanOf(n)}
	body := n.ChildByFieldName("body")
	if body == nil {
		return ident, class
	}
	class.BodySpan = spanOf(body)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if ctor := l.constructor(member); ctor != nil {
			class.Body = append(class.Body, ctor)
			continue
		}
		class.Body = append(class.Body, l.generic(member, true))
	}
	return ident, class
}

// constructor lowers n when it is a constructor implementation.
func (l *lowerer) constructor(n *sitter.Node) *ast.Constructor {
	if n.Type() != "method_definition" {
		return nil
	}
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() != "property_identifier" || l.text(name) != "constructor" {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "static" {
			return nil
		}
	}
	ctor := &ast.Constructor{Span: spanOf(n)}
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return ctor
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			ctor.Params = append(ctor.Params, l.param(p))
		}
	}
	return ctor
}

func (l *lowerer) param(n *sitter.Node) ast.Param {
	var (
		accessibility      string
		readonly, override bool
		patNode, typeNode  *sitter.Node
	)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			accessibility = l.text(child)
		case "readonly":
			readonly = true
		case "override_modifier":
			override = true
		case "type_annotation":
			typeNode = child
		}
	}
	patNode = n.ChildByFieldName("pattern")
	if patNode == nil {
	scan:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "decorator", "accessibility_modifier", "override_modifier", "type_annotation", "comment":
				continue
			}
			patNode = child
			break scan
		}
	}
	if t := n.ChildByFieldName("type"); t != nil {
		typeNode = t
	}

	var pat ast.Pat = &ast.Generic{Span: spanOf(n), Kind: n.Type(), Text: l.text(n)}
	if patNode != nil {
		pat = l.pat(patNode)
	}
	annotate(pat, l.typeAnn(typeNode), n.Type() == "optional_parameter")

	if value := n.ChildByFieldName("value"); value != nil {
		pat = &ast.AssignPat{
			Span:  ast.Span{Lo: pat.Range().Lo, Hi: int(value.EndByte())},
			Left:  pat,
			Right: l.node(value),
		}
	}

	if accessibility != "" || readonly || override {
		return &ast.ParamProp{
			Span:          spanOf(n),
			Accessibility: accessibility,
			Readonly:      readonly,
			Override:      override,
			Param:         pat,
		}
	}
	return &ast.PlainParam{Span: spanOf(n), Pat: pat}
}

// annotate attaches a parameter's annotation to its binding pattern.
func annotate(pat ast.Pat, ann *ast.TypeAnn, optional bool) {
	switch p := pat.(type) {
	case *ast.Ident:
		p.TypeAnn, p.Optional = ann, optional
	case *ast.ArrayPat:
		p.TypeAnn, p.Optional = ann, optional
	case *ast.ObjectPat:
		p.TypeAnn, p.Optional = ann, optional
	case *ast.RestPat:
		p.TypeAnn = ann
	}
}

func (l *lowerer) ident(n *sitter.Node) *ast.Ident {
	return &ast.Ident{Span: spanOf(n), Name: l.text(n)}
}

func (l *lowerer) pat(n *sitter.Node) ast.Pat {
	switch n.Type() {
	case "identifier", "this", "shorthand_property_identifier_pattern":
		return l.ident(n)

	case "array_pattern":
		p := &ast.ArrayPat{Span: spanOf(n)}
		expectElem := true
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch {
			case child.Type() == ",":
				if expectElem {
					p.Elems = append(p.Elems, nil)
				}
				expectElem = true
			case child.IsNamed() && child.Type() != "comment":
				p.Elems = append(p.Elems, l.pat(child))
				expectElem = false
			}
		}
		return p

	case "object_pattern":
		p := &ast.ObjectPat{Span: spanOf(n)}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if prop := l.objectPatProp(n.NamedChild(i)); prop != nil {
				p.Props = append(p.Props, prop)
			}
		}
		return p

	case "rest_pattern":
		p := &ast.RestPat{Span: spanOf(n)}
		if n.NamedChildCount() > 0 {
			p.Arg = l.pat(n.NamedChild(0))
		}
		return p

	case "assignment_pattern":
		p := &ast.AssignPat{Span: spanOf(n)}
		if left := n.ChildByFieldName("left"); left != nil {
			p.Left = l.pat(left)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			p.Right = l.node(right)
		}
		return p
	}
	return l.generic(n, true)
}

func (l *lowerer) objectPatProp(n *sitter.Node) ast.ObjectPatProp {
	switch n.Type() {
	case "pair_pattern":
		p := &ast.KeyValuePatProp{Span: spanOf(n)}
		if key := n.ChildByFieldName("key"); key != nil {
			p.Key = l.propName(key)
		}
		if value := n.ChildByFieldName("value"); value != nil {
			p.Value = l.pat(value)
		}
		return p

	case "shorthand_property_identifier_pattern":
		return &ast.AssignPatProp{Span: spanOf(n), Key: l.ident(n)}

	case "object_assignment_pattern":
		p := &ast.AssignPatProp{Span: spanOf(n)}
		if left := n.ChildByFieldName("left"); left != nil && left.Type() == "shorthand_property_identifier_pattern" {
			p.Key = l.ident(left)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			p.Value = l.node(right)
		}
		return p

	case "rest_pattern":
		return l.pat(n).(*ast.RestPat)
	}
	return nil
}

func (l *lowerer) propName(n *sitter.Node) ast.PropName {
	switch n.Type() {
	case "property_identifier", "identifier":
		return l.ident(n)
	case "string":
		text := l.text(n)
		if len(text) >= 2 {
			text = text[1 : len(text)-1]
		}
		return &ast.StrLit{Span: spanOf(n), Value: text}
	case "computed_property_name":
		k := &ast.ComputedKey{Span: spanOf(n)}
		if n.NamedChildCount() > 0 {
			if e, ok := l.node(n.NamedChild(0)).(ast.Expr); ok {
				k.Expr = e
			}
		}
		return k
	}
	return l.generic(n, true)
}

func (l *lowerer) typeAnn(n *sitter.Node) *ast.TypeAnn {
	if n == nil {
		return nil
	}
	ann := &ast.TypeAnn{Span: spanOf(n)}
	if n.Type() != "type_annotation" {
		ann.Type = l.tsType(n)
		return ann
	}
	if n.NamedChildCount() > 0 {
		ann.Type = l.tsType(n.NamedChild(0))
	}
	return ann
}

func (l *lowerer) tsType(n *sitter.Node) ast.TsType {
	switch n.Type() {
	case "type_identifier", "nested_type_identifier":
		return &ast.TypeRef{Span: spanOf(n), Name: l.entityName(n)}

	case "generic_type":
		ref := &ast.TypeRef{Span: spanOf(n)}
		if name := n.ChildByFieldName("name"); name != nil {
			ref.Name = l.entityName(name)
		} else {
			return l.generic(n, true)
		}
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				ref.TypeArgs = append(ref.TypeArgs, l.tsType(args.NamedChild(i)))
			}
		}
		return ref

	case "predefined_type":
		return &ast.KeywordType{Span: spanOf(n), Keyword: l.text(n)}
	}
	return l.generic(n, true)
}

func (l *lowerer) entityName(n *sitter.Node) ast.EntityName {
	switch n.Type() {
	case "nested_type_identifier":
		module := n.ChildByFieldName("module")
		name := n.ChildByFieldName("name")
		if module != nil && name != nil {
			return &ast.QualifiedName{Span: spanOf(n), Left: l.entityName(module), Right: l.ident(name)}
		}
	case "nested_identifier", "member_expression":
		count := int(n.NamedChildCount())
		if count >= 2 {
			return &ast.QualifiedName{
				Span:  spanOf(n),
				Left:  l.entityName(n.NamedChild(0)),
				Right: l.ident(n.NamedChild(count - 1)),
			}
		}
	}
	return l.ident(n)
}
