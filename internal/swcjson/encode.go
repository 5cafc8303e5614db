package swcjson

import (
	"fmt"

	"github.com/go-json-experiment/json"

	"github.com/coreoz/ctormeta/internal/ast"
)

// Encode renders prog as SWC JSON with object keys in sorted order.
func Encode(prog *ast.Program) ([]byte, error) {
	v, err := encodeNode(prog)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v, json.Deterministic(true))
}

// obj is an encoded node. A decoded node is frozen: its Extra already holds
// every field it was read with, so the defaults set with put are skipped.
type obj struct {
	m      map[string]any
	frozen bool
}

func (o *obj) set(name string, value any) {
	o.m[name] = value
}

func (o *obj) put(name string, value any) {
	if o.frozen {
		return
	}
	if _, ok := o.m[name]; !ok {
		o.m[name] = value
	}
}

func (o *obj) putSpan(s ast.Span) {
	o.put("span", map[string]any{"start": s.Lo, "end": s.Hi})
}

// putNode encodes n into name unless the field is already known.
func (o *obj) putNode(name string, n ast.Node) error {
	if o.frozen {
		return nil
	}
	if _, ok := o.m[name]; ok {
		return nil
	}
	v, err := encodeNode(n)
	if err != nil {
		return err
	}
	o.m[name] = v
	return nil
}

func newObj(typ string, extra ast.Extra) (*obj, error) {
	o := &obj{m: make(map[string]any, len(extra)+4), frozen: extra != nil}
	for k, v := range extra {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ, k, err)
		}
		o.m[k] = ev
	}
	if typ != "" {
		o.m["type"] = typ
	}
	return o, nil
}

func encodeValue(v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case ast.Node:
		return encodeNode(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			ev, err := encodeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return v, nil
	}
}

func encodeList[T ast.Node](nodes []T) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// encodeNode returns nil for nil nodes, which marshals as null.
func encodeNode(n ast.Node) (any, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case *ast.Program:
		if n == nil {
			return nil, nil
		}
		typ := "Script"
		if n.Module {
			typ = "Module"
		}
		o, err := newObj(typ, n.Extra)
		if err != nil {
			return nil, err
		}
		body, err := encodeList(n.Body)
		if err != nil {
			return nil, err
		}
		o.set("body", body)
		o.putSpan(n.Span)
		o.put("interpreter", nil)
		return o.m, nil

	case *ast.ClassDecl:
		if n == nil {
			return nil, nil
		}
		o, err := encodeClass("ClassDeclaration", n.Ident, n.Class)
		if err != nil {
			return nil, err
		}
		o.put("declare", false)
		return o.m, nil

	case *ast.ClassExpr:
		if n == nil {
			return nil, nil
		}
		o, err := encodeClass("ClassExpression", n.Ident, n.Class)
		if err != nil {
			return nil, err
		}
		return o.m, nil

	case *ast.Constructor:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("Constructor", n.Extra)
		if err != nil {
			return nil, err
		}
		params, err := encodeList(n.Params)
		if err != nil {
			return nil, err
		}
		o.put("params", params)
		o.putSpan(n.Span)
		o.put("ctxt", 0)
		o.put("key", map[string]any{"type": "Identifier", "span": map[string]any{"start": 0, "end": 0}, "value": "constructor"})
		o.put("body", nil)
		o.put("accessibility", nil)
		o.put("isOptional", false)
		return o.m, nil

	case *ast.ClassMethod:
		if n == nil {
			return nil, nil
		}
		o, err := encodeMethod(n)
		if err != nil {
			return nil, err
		}
		return o.m, nil

	case *ast.PlainParam:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("Parameter", n.Extra)
		if err != nil {
			return nil, err
		}
		if err := o.putNode("pat", n.Pat); err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("decorators", []any{})
		return o.m, nil

	case *ast.ParamProp:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("TsParameterProperty", n.Extra)
		if err != nil {
			return nil, err
		}
		if err := o.putNode("param", n.Param); err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("decorators", []any{})
		if n.Accessibility != "" {
			o.put("accessibility", n.Accessibility)
		} else {
			o.put("accessibility", nil)
		}
		o.put("override", n.Override)
		o.put("readonly", n.Readonly)
		return o.m, nil

	case *ast.Ident:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("Identifier", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("ctxt", 0)
		o.put("value", n.Name)
		o.put("optional", n.Optional)
		if n.TypeAnn != nil {
			if err := o.putNode("typeAnnotation", n.TypeAnn); err != nil {
				return nil, err
			}
		}
		return o.m, nil

	case *ast.ArrayPat:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("ArrayPattern", n.Extra)
		if err != nil {
			return nil, err
		}
		elems, err := encodeList(n.Elems)
		if err != nil {
			return nil, err
		}
		o.put("elements", elems)
		o.putSpan(n.Span)
		o.put("optional", n.Optional)
		return o.m, o.putNode("typeAnnotation", n.TypeAnn)

	case *ast.ObjectPat:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("ObjectPattern", n.Extra)
		if err != nil {
			return nil, err
		}
		props, err := encodeList(n.Props)
		if err != nil {
			return nil, err
		}
		o.put("properties", props)
		o.putSpan(n.Span)
		o.put("optional", n.Optional)
		return o.m, o.putNode("typeAnnotation", n.TypeAnn)

	case *ast.KeyValuePatProp:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("KeyValuePatternProperty", n.Extra)
		if err != nil {
			return nil, err
		}
		if err := o.putNode("key", n.Key); err != nil {
			return nil, err
		}
		return o.m, o.putNode("value", n.Value)

	case *ast.AssignPatProp:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("AssignmentPatternProperty", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		if err := o.putNode("key", n.Key); err != nil {
			return nil, err
		}
		return o.m, o.putNode("value", n.Value)

	case *ast.RestPat:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("RestElement", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("rest", map[string]any{"start": n.Span.Lo, "end": n.Span.Lo + 3})
		if err := o.putNode("argument", n.Arg); err != nil {
			return nil, err
		}
		return o.m, o.putNode("typeAnnotation", n.TypeAnn)

	case *ast.AssignPat:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("AssignmentPattern", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		if err := o.putNode("left", n.Left); err != nil {
			return nil, err
		}
		return o.m, o.putNode("right", n.Right)

	case *ast.TypeAnn:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("TsTypeAnnotation", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		return o.m, o.putNode("typeAnnotation", n.Type)

	case *ast.TypeRef:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("TsTypeReference", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		if err := o.putNode("typeName", n.Name); err != nil {
			return nil, err
		}
		if len(n.TypeArgs) == 0 {
			o.put("typeParams", nil)
			return o.m, nil
		}
		params, err := encodeList(n.TypeArgs)
		if err != nil {
			return nil, err
		}
		o.put("typeParams", map[string]any{
			"type":   "TsTypeParameterInstantiation",
			"span":   map[string]any{"start": 0, "end": 0},
			"params": params,
		})
		return o.m, nil

	case *ast.QualifiedName:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("TsQualifiedName", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		if err := o.putNode("left", n.Left); err != nil {
			return nil, err
		}
		return o.m, o.putNode("right", n.Right)

	case *ast.KeywordType:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("TsKeywordType", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("kind", n.Keyword)
		return o.m, nil

	case *ast.ComputedKey:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("Computed", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		return o.m, o.putNode("expression", n.Expr)

	case *ast.CallExpr:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("CallExpression", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("ctxt", 0)
		if err := o.putNode("callee", n.Callee); err != nil {
			return nil, err
		}
		args, err := exprOrSpreads(n.Args)
		if err != nil {
			return nil, err
		}
		o.put("arguments", args)
		o.put("typeArguments", nil)
		return o.m, nil

	case *ast.MemberExpr:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("MemberExpression", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		if err := o.putNode("object", n.Obj); err != nil {
			return nil, err
		}
		return o.m, o.putNode("property", n.Prop)

	case *ast.StrLit:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("StringLiteral", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("value", n.Value)
		o.put("raw", nil)
		return o.m, nil

	case *ast.ArrayLit:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("ArrayExpression", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		elems, err := exprOrSpreads(n.Elems)
		if err != nil {
			return nil, err
		}
		o.put("elements", elems)
		return o.m, nil

	case *ast.BlockStmt:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("BlockStatement", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		o.put("ctxt", 0)
		stmts, err := encodeList(n.Stmts)
		if err != nil {
			return nil, err
		}
		o.put("stmts", stmts)
		return o.m, nil

	case *ast.ReturnStmt:
		if n == nil {
			return nil, nil
		}
		o, err := newObj("ReturnStatement", n.Extra)
		if err != nil {
			return nil, err
		}
		o.putSpan(n.Span)
		return o.m, o.putNode("argument", n.Arg)

	case *ast.Generic:
		if n == nil {
			return nil, nil
		}
		o := make(map[string]any, len(n.Fields)+1)
		for _, f := range n.Fields {
			v, err := encodeValue(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", n.Kind, f.Name, err)
			}
			o[f.Name] = v
		}
		if n.Kind != "" {
			o["type"] = n.Kind
		}
		return o, nil
	}
	return nil, fmt.Errorf("cannot encode %T", n)
}

// exprOrSpreads wraps expressions in SWC's { spread, expression } slots.
func exprOrSpreads(exprs []ast.Expr) ([]any, error) {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		v, err := encodeNode(e)
		if err != nil {
			return nil, err
		}
		out[i] = map[string]any{"spread": nil, "expression": v}
	}
	return out, nil
}

func encodeClass(typ string, ident *ast.Ident, class *ast.Class) (*obj, error) {
	if class == nil {
		class = &ast.Class{}
	}
	o, err := newObj(typ, class.Extra)
	if err != nil {
		return nil, err
	}
	id, err := encodeNode(ident)
	if err != nil {
		return nil, err
	}
	o.set("identifier", id)
	body, err := encodeList(class.Body)
	if err != nil {
		return nil, err
	}
	o.set("body", body)
	o.putSpan(class.Span)
	o.put("ctxt", 0)
	o.put("decorators", []any{})
	o.put("superClass", nil)
	o.put("isAbstract", false)
	o.put("typeParams", nil)
	o.put("superTypeParams", nil)
	o.put("implements", []any{})
	return o, nil
}

func encodeMethod(m *ast.ClassMethod) (*obj, error) {
	o, err := newObj("ClassMethod", m.Extra)
	if err != nil {
		return nil, err
	}
	o.putSpan(m.Span)
	if err := o.putNode("key", m.Key); err != nil {
		return nil, err
	}
	if _, ok := o.m["function"]; !ok && !o.frozen {
		body, err := encodeNode(m.Body)
		if err != nil {
			return nil, err
		}
		o.set("function", map[string]any{
			"params":         []any{},
			"decorators":     []any{},
			"span":           map[string]any{"start": m.Span.Lo, "end": m.Span.Hi},
			"ctxt":           0,
			"body":           body,
			"generator":      false,
			"async":          false,
			"typeParameters": nil,
			"returnType":     nil,
		})
	}
	kind := m.Kind
	if kind == "" {
		kind = ast.MethodPlain
	}
	o.put("kind", string(kind))
	o.put("isStatic", m.Static)
	o.put("accessibility", nil)
	o.put("isAbstract", false)
	o.put("isOptional", false)
	o.put("isOverride", false)
	return o, nil
}
