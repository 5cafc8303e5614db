package printer

import "testing"

func TestEmitterLine(t *testing.T) {
	e := NewEmitter("", "")
	e.Line("return %q;", "x")
	if got := e.String(); got != "return \"x\";\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitterBlankLine(t *testing.T) {
	e := NewEmitter("    ", "")
	e.Line("a")
	e.Line("")
	e.Line("b")
	if got := e.String(); got != "    a\n\n    b\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitterNestedBlocks(t *testing.T) {
	e := NewEmitter("", "\t")
	e.Block("static get x()")
	e.Block("if (y)")
	e.Line("return;")
	e.EndBlock()
	e.EndBlock()
	expected := "static get x() {\n\tif (y) {\n\t\treturn;\n\t}\n}\n"
	if got := e.String(); got != expected {
		t.Errorf("got %q, want %q", got, expected)
	}
}

func TestEmitterBareBlock(t *testing.T) {
	e := NewEmitter("", "")
	e.Block("")
	e.Line("x;")
	e.EndBlock()
	if got := e.String(); got != "{\n  x;\n}\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitterText(t *testing.T) {
	e := NewEmitter("  ", "")
	e.Text("run() {\n    go();\n  }\n")
	if got := e.String(); got != "  run() {\n    go();\n  }\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitterEndBlockUnderflow(t *testing.T) {
	e := NewEmitter("", "")
	e.EndBlock()
	if got := e.String(); got != "}\n" {
		t.Errorf("got %q", got)
	}
}
