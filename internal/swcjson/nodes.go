package swcjson

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/coreoz/ctormeta/internal/ast"
)

type builder func(*object) (ast.Node, bool)

var builders map[string]builder

func init() {
	builders = map[string]builder{
		"Module":                    buildProgram,
		"Script":                    buildProgram,
		"ClassDeclaration":          buildClassDecl,
		"ClassExpression":           buildClassExpr,
		"Constructor":               buildConstructor,
		"Parameter":                 buildParameter,
		"TsParameterProperty":       buildParamProp,
		"Identifier":                buildIdent,
		"ArrayPattern":              buildArrayPat,
		"ObjectPattern":             buildObjectPat,
		"KeyValuePatternProperty":   buildKeyValuePatProp,
		"AssignmentPatternProperty": buildAssignPatProp,
		"RestElement":               buildRestPat,
		"AssignmentPattern":         buildAssignPat,
		"TsTypeAnnotation":          buildTypeAnn,
		"TsTypeReference":           buildTypeRef,
		"TsQualifiedName":           buildQualifiedName,
		"TsKeywordType":             buildKeywordType,
		"StringLiteral":             buildStrLit,
	}
}

// toNode turns obj into a typed node when its shape is recognized and into
// a Generic otherwise.
func toNode(obj *object) ast.Node {
	if build, ok := builders[obj.typ]; ok {
		if n, ok := build(obj); ok {
			return n
		}
	}
	g := &ast.Generic{Span: obj.span(), Kind: obj.typ}
	for _, m := range obj.members {
		g.Fields = append(g.Fields, ast.Field{Name: m.name, Value: m.value})
	}
	return g
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	raw, ok := v.(jsontext.Value)
	return ok && raw.Kind() == 'n'
}

func stringOf(v any) (string, bool) {
	raw, ok := v.(jsontext.Value)
	if !ok || raw.Kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolOf(v any) bool {
	raw, ok := v.(jsontext.Value)
	return ok && raw.Kind() == 't'
}

// field fetches an optional member and asserts its type. A missing or null
// member yields the zero value; any other mismatch fails.
func field[T any](o *object, name string) (T, bool) {
	var zero T
	v, ok := o.get(name)
	if !ok || isNull(v) {
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}

// list fetches an array member whose elements are all T. Null elements
// become the zero value.
func list[T any](o *object, name string) ([]T, bool) {
	v, ok := o.get(name)
	if !ok || isNull(v) {
		return nil, true
	}
	elems, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]T, len(elems))
	for i, e := range elems {
		if isNull(e) {
			continue
		}
		t, ok := e.(T)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func buildProgram(o *object) (ast.Node, bool) {
	body, ok := list[ast.Stmt](o, "body")
	if !ok {
		return nil, false
	}
	return &ast.Program{
		Span:   o.span(),
		Module: o.typ == "Module",
		Body:   body,
		Extra:  o.extra("body"),
	}, true
}

func buildClass(o *object) (*ast.Ident, *ast.Class, bool) {
	ident, ok := field[*ast.Ident](o, "identifier")
	if !ok {
		return nil, nil, false
	}
	body, ok := list[ast.ClassMember](o, "body")
	if !ok {
		return nil, nil, false
	}
	span := o.span()
	return ident, &ast.Class{Span: span, BodySpan: span, Body: body, Extra: o.extra("identifier", "body")}, true
}

func buildClassDecl(o *object) (ast.Node, bool) {
	ident, class, ok := buildClass(o)
	if !ok || ident == nil {
		return nil, false
	}
	return &ast.ClassDecl{Span: class.Span, Ident: ident, Class: class}, true
}

func buildClassExpr(o *object) (ast.Node, bool) {
	ident, class, ok := buildClass(o)
	if !ok {
		return nil, false
	}
	return &ast.ClassExpr{Span: class.Span, Ident: ident, Class: class}, true
}

func buildConstructor(o *object) (ast.Node, bool) {
	params, ok := list[ast.Param](o, "params")
	if !ok {
		return nil, false
	}
	return &ast.Constructor{Span: o.span(), Params: params, Extra: o.extra()}, true
}

func buildParameter(o *object) (ast.Node, bool) {
	pat, ok := field[ast.Pat](o, "pat")
	if !ok || pat == nil {
		return nil, false
	}
	return &ast.PlainParam{Span: o.span(), Pat: pat, Extra: o.extra()}, true
}

func buildParamProp(o *object) (ast.Node, bool) {
	param, ok := field[ast.Pat](o, "param")
	if !ok || param == nil {
		return nil, false
	}
	p := &ast.ParamProp{Span: o.span(), Param: param, Extra: o.extra()}
	if v, ok := o.get("accessibility"); ok {
		p.Accessibility, _ = stringOf(v)
	}
	if v, ok := o.get("readonly"); ok {
		p.Readonly = boolOf(v)
	}
	if v, ok := o.get("override"); ok {
		p.Override = boolOf(v)
	}
	return p, true
}

func buildIdent(o *object) (ast.Node, bool) {
	v, _ := o.get("value")
	name, ok := stringOf(v)
	if !ok {
		return nil, false
	}
	ann, ok := field[*ast.TypeAnn](o, "typeAnnotation")
	if !ok {
		return nil, false
	}
	ident := &ast.Ident{Span: o.span(), Name: name, TypeAnn: ann, Extra: o.extra()}
	if v, ok := o.get("optional"); ok {
		ident.Optional = boolOf(v)
	}
	return ident, true
}

func buildArrayPat(o *object) (ast.Node, bool) {
	elems, ok := list[ast.Pat](o, "elements")
	if !ok {
		return nil, false
	}
	ann, ok := field[*ast.TypeAnn](o, "typeAnnotation")
	if !ok {
		return nil, false
	}
	p := &ast.ArrayPat{Span: o.span(), Elems: elems, TypeAnn: ann, Extra: o.extra()}
	if v, ok := o.get("optional"); ok {
		p.Optional = boolOf(v)
	}
	return p, true
}

func buildObjectPat(o *object) (ast.Node, bool) {
	props, ok := list[ast.ObjectPatProp](o, "properties")
	if !ok {
		return nil, false
	}
	ann, ok := field[*ast.TypeAnn](o, "typeAnnotation")
	if !ok {
		return nil, false
	}
	p := &ast.ObjectPat{Span: o.span(), Props: props, TypeAnn: ann, Extra: o.extra()}
	if v, ok := o.get("optional"); ok {
		p.Optional = boolOf(v)
	}
	return p, true
}

func buildKeyValuePatProp(o *object) (ast.Node, bool) {
	key, ok := field[ast.PropName](o, "key")
	if !ok {
		return nil, false
	}
	value, ok := field[ast.Pat](o, "value")
	if !ok {
		return nil, false
	}
	return &ast.KeyValuePatProp{Span: o.span(), Key: key, Value: value, Extra: o.extra()}, true
}

func buildAssignPatProp(o *object) (ast.Node, bool) {
	key, ok := field[*ast.Ident](o, "key")
	if !ok {
		return nil, false
	}
	value, ok := field[ast.Node](o, "value")
	if !ok {
		return nil, false
	}
	return &ast.AssignPatProp{Span: o.span(), Key: key, Value: value, Extra: o.extra()}, true
}

func buildRestPat(o *object) (ast.Node, bool) {
	arg, ok := field[ast.Pat](o, "argument")
	if !ok {
		return nil, false
	}
	ann, ok := field[*ast.TypeAnn](o, "typeAnnotation")
	if !ok {
		return nil, false
	}
	return &ast.RestPat{Span: o.span(), Arg: arg, TypeAnn: ann, Extra: o.extra()}, true
}

func buildAssignPat(o *object) (ast.Node, bool) {
	left, ok := field[ast.Pat](o, "left")
	if !ok {
		return nil, false
	}
	right, ok := field[ast.Node](o, "right")
	if !ok {
		return nil, false
	}
	return &ast.AssignPat{Span: o.span(), Left: left, Right: right, Extra: o.extra()}, true
}

func buildTypeAnn(o *object) (ast.Node, bool) {
	typ, ok := field[ast.TsType](o, "typeAnnotation")
	if !ok {
		return nil, false
	}
	return &ast.TypeAnn{Span: o.span(), Type: typ, Extra: o.extra()}, true
}

func buildTypeRef(o *object) (ast.Node, bool) {
	name, ok := field[ast.EntityName](o, "typeName")
	if !ok || name == nil {
		return nil, false
	}
	ref := &ast.TypeRef{Span: o.span(), Name: name, Extra: o.extra()}
	if v, ok := o.get("typeParams"); ok && !isNull(v) {
		inst, ok := v.(*ast.Generic)
		if !ok {
			return nil, false
		}
		params, _ := inst.Field("params")
		elems, _ := params.([]any)
		for _, e := range elems {
			t, ok := e.(ast.TsType)
			if !ok {
				return nil, false
			}
			ref.TypeArgs = append(ref.TypeArgs, t)
		}
	}
	return ref, true
}

func buildQualifiedName(o *object) (ast.Node, bool) {
	left, ok := field[ast.EntityName](o, "left")
	if !ok || left == nil {
		return nil, false
	}
	right, ok := field[*ast.Ident](o, "right")
	if !ok || right == nil {
		return nil, false
	}
	return &ast.QualifiedName{Span: o.span(), Left: left, Right: right, Extra: o.extra()}, true
}

func buildKeywordType(o *object) (ast.Node, bool) {
	v, _ := o.get("kind")
	kind, ok := stringOf(v)
	if !ok {
		return nil, false
	}
	return &ast.KeywordType{Span: o.span(), Keyword: kind, Extra: o.extra()}, true
}

func buildStrLit(o *object) (ast.Node, bool) {
	v, _ := o.get("value")
	value, ok := stringOf(v)
	if !ok {
		return nil, false
	}
	return &ast.StrLit{Span: o.span(), Value: value, Extra: o.extra()}, true
}
