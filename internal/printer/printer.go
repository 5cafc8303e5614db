package printer

import (
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/coreoz/ctormeta/internal/ast"
)

// Member renders a class member. Every line starts with indent and nested
// lines add unit, two spaces when empty. The result ends with a newline.
func Member(m ast.ClassMember, indent, unit string) string {
	e := NewEmitter(indent, unit)
	member(e, m)
	return e.String()
}

// Class renders a class for diagnostics. Members the tree does not model are
// printed from their source text when it is known.
func Class(name string, c *ast.Class) string {
	e := NewEmitter("", "")
	head := "class"
	if name != "" {
		head += " " + name
	}
	if c == nil || len(c.Body) == 0 {
		e.Line("%s {}", head)
		return e.String()
	}
	e.Block("%s", head)
	for _, m := range c.Body {
		member(e, m)
	}
	e.EndBlock()
	return e.String()
}

func member(e *Emitter, m ast.ClassMember) {
	switch m := m.(type) {
	case *ast.ClassMethod:
		var b strings.Builder
		if m.Static {
			b.WriteString("static ")
		}
		switch m.Kind {
		case ast.MethodGetter:
			b.WriteString("get ")
		case ast.MethodSetter:
			b.WriteString("set ")
		}
		b.WriteString(PropName(m.Key))
		b.WriteString("()")
		block(e, b.String(), m.Body)

	case *ast.Constructor:
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = Param(p)
		}
		e.Line("constructor(%s) { … }", strings.Join(params, ", "))

	case *ast.Generic:
		e.Text(genericText(m))

	default:
		e.Line("/* unknown member */")
	}
}

func block(e *Emitter, head string, body *ast.BlockStmt) {
	if body == nil || len(body.Stmts) == 0 {
		e.Line("%s", strings.TrimLeft(head+" {}", " "))
		return
	}
	e.Block("%s", head)
	for _, s := range body.Stmts {
		stmt(e, s)
	}
	e.EndBlock()
}

func stmt(e *Emitter, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		if s.Arg == nil {
			e.Line("return;")
			return
		}
		e.Line("return %s;", Expr(s.Arg))
	case *ast.BlockStmt:
		block(e, "", s)
	case *ast.ClassDecl:
		var name string
		if s.Ident != nil {
			name = s.Ident.Name
		}
		e.Text(Class(name, s.Class))
	case *ast.Generic:
		e.Text(genericText(s))
	}
}

// Expr renders an expression on a single line.
func Expr(x ast.Expr) string {
	switch x := x.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return x.Name
	case *ast.StrLit:
		return Quote(x.Value)
	case *ast.ArrayLit:
		elems := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = Expr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.CallExpr:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = Expr(a)
		}
		return Expr(x.Callee) + "(" + strings.Join(args, ", ") + ")"
	case *ast.MemberExpr:
		prop := ""
		if x.Prop != nil {
			prop = x.Prop.Name
		}
		return Expr(x.Obj) + "." + prop
	case *ast.ClassExpr:
		name := ""
		if x.Ident != nil {
			name = " " + x.Ident.Name
		}
		return "class" + name + " { … }"
	case *ast.Generic:
		return genericText(x)
	}
	return ""
}

// PropName renders a member key.
func PropName(k ast.PropName) string {
	switch k := k.(type) {
	case *ast.Ident:
		return k.Name
	case *ast.StrLit:
		return Quote(k.Value)
	case *ast.ComputedKey:
		return "[" + Expr(k.Expr) + "]"
	case *ast.Generic:
		return genericText(k)
	}
	return ""
}

// Param renders one constructor parameter with its modifiers.
func Param(p ast.Param) string {
	switch p := p.(type) {
	case *ast.PlainParam:
		return Pat(p.Pat)
	case *ast.ParamProp:
		var mods []string
		if p.Accessibility != "" {
			mods = append(mods, p.Accessibility)
		}
		if p.Override {
			mods = append(mods, "override")
		}
		if p.Readonly {
			mods = append(mods, "readonly")
		}
		return strings.Join(append(mods, Pat(p.Param)), " ")
	}
	return ""
}

// Pat renders a binding pattern with its annotation.
func Pat(p ast.Pat) string {
	switch p := p.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return p.Name + optional(p.Optional) + typeAnn(p.TypeAnn)
	case *ast.ArrayPat:
		elems := make([]string, len(p.Elems))
		for i, el := range p.Elems {
			elems[i] = Pat(el)
		}
		return "[" + strings.Join(elems, ", ") + "]" + optional(p.Optional) + typeAnn(p.TypeAnn)
	case *ast.ObjectPat:
		props := make([]string, len(p.Props))
		for i, prop := range p.Props {
			props[i] = objectPatProp(prop)
		}
		body := "{}"
		if len(props) > 0 {
			body = "{ " + strings.Join(props, ", ") + " }"
		}
		return body + optional(p.Optional) + typeAnn(p.TypeAnn)
	case *ast.RestPat:
		return "..." + Pat(p.Arg) + typeAnn(p.TypeAnn)
	case *ast.AssignPat:
		return Pat(p.Left) + " = " + node(p.Right)
	case *ast.Generic:
		return genericText(p)
	}
	return ""
}

func objectPatProp(p ast.ObjectPatProp) string {
	switch p := p.(type) {
	case *ast.KeyValuePatProp:
		return PropName(p.Key) + ": " + Pat(p.Value)
	case *ast.AssignPatProp:
		name := ""
		if p.Key != nil {
			name = p.Key.Name
		}
		if p.Value == nil {
			return name
		}
		return name + " = " + node(p.Value)
	case *ast.RestPat:
		return Pat(p)
	}
	return ""
}

// Type renders a type.
func Type(t ast.TsType) string {
	switch t := t.(type) {
	case *ast.TypeRef:
		s := entityName(t.Name)
		if len(t.TypeArgs) > 0 {
			args := make([]string, len(t.TypeArgs))
			for i, a := range t.TypeArgs {
				args[i] = Type(a)
			}
			s += "<" + strings.Join(args, ", ") + ">"
		}
		return s
	case *ast.KeywordType:
		return t.Keyword
	case *ast.Generic:
		return genericText(t)
	}
	return ""
}

func entityName(n ast.EntityName) string {
	switch n := n.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.QualifiedName:
		right := ""
		if n.Right != nil {
			right = n.Right.Name
		}
		return entityName(n.Left) + "." + right
	}
	return ""
}

func typeAnn(a *ast.TypeAnn) string {
	if a == nil || a.Type == nil {
		return ""
	}
	return ": " + Type(a.Type)
}

func optional(b bool) string {
	if b {
		return "?"
	}
	return ""
}

func node(n ast.Node) string {
	if x, ok := n.(ast.Expr); ok {
		return Expr(x)
	}
	return ""
}

func genericText(g *ast.Generic) string {
	if g.Text != "" {
		return g.Text
	}
	if g.Kind == "" {
		return "/* … */"
	}
	return "/* " + g.Kind + " */"
}

// Quote returns s as a double-quoted string literal.
func Quote(s string) string {
	b, err := jsontext.AppendQuote(nil, s)
	if err != nil {
		// Invalid UTF-8 is replaced rather than rejected.
		b, _ = jsontext.AppendQuote(nil, strings.ToValidUTF8(s, "�"))
	}
	return string(b)
}
