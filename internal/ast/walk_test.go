package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_SourceOrder(t *testing.T) {
	inner := &ClassExpr{Ident: NewIdent("Inner"), Class: &Class{}}
	prog := &Program{
		Body: []Stmt{
			&ClassDecl{Ident: NewIdent("First"), Class: &Class{}},
			&Generic{
				Kind: "VariableDeclaration",
				Fields: []Field{
					{Name: "declarations", Value: []any{
						&Generic{Kind: "VariableDeclarator", Fields: []Field{
							{Name: "id", Value: NewIdent("x")},
							{Name: "init", Value: inner},
						}},
					}},
					{Name: "kind", Value: "const"},
				},
			},
		},
	}

	var names []string
	Inspect(prog, func(n Node) bool {
		if id, _, ok := ClassOf(n); ok && id != nil {
			names = append(names, id.Name)
		}
		return true
	})

	assert.Equal(t, []string{"First", "Inner"}, names)
}

func TestInspect_PruneSkipsChildren(t *testing.T) {
	nested := &ClassDecl{Ident: NewIdent("Nested"), Class: &Class{}}
	outer := &ClassDecl{
		Ident: NewIdent("Outer"),
		Class: &Class{Body: []ClassMember{
			&Generic{Kind: "ClassProperty", Fields: []Field{{Name: "value", Value: nested}}},
		}},
	}

	var seen []string
	Inspect(&Program{Body: []Stmt{outer}}, func(n Node) bool {
		if id, _, ok := ClassOf(n); ok {
			seen = append(seen, id.Name)
			return false
		}
		return true
	})

	assert.Equal(t, []string{"Outer"}, seen)
}

func TestWalk_NilChildren(t *testing.T) {
	var typedNil *Ident
	prog := &Program{Body: []Stmt{
		&ClassDecl{Class: &Class{Body: []ClassMember{
			&Constructor{Params: []Param{
				&PlainParam{Pat: &ArrayPat{Elems: []Pat{nil, typedNil, NewIdent("a")}}},
				&PlainParam{Pat: &AssignPat{Left: NewIdent("b")}},
			}},
		}}},
	}}

	count := 0
	require.NotPanics(t, func() {
		Inspect(prog, func(n Node) bool {
			if n != nil {
				count++
			}
			return true
		})
	})
	// Program, ClassDecl, Class, Constructor, 2x PlainParam, ArrayPat, a, AssignPat, b
	assert.Equal(t, 10, count)
}

func TestGeneric_Field(t *testing.T) {
	g := &Generic{Kind: "X", Fields: []Field{{Name: "a", Value: 1}, {Name: "a", Value: 2}}}
	v, ok := g.Field("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = g.Field("missing")
	assert.False(t, ok)
}

func TestSpan_IsZero(t *testing.T) {
	assert.True(t, Span{}.IsZero())
	assert.False(t, Span{Lo: 0, Hi: 3}.IsZero())
	assert.Equal(t, Span{Lo: 2, Hi: 5}, (&Ident{Span: Span{Lo: 2, Hi: 5}}).Range())
}
