package parser

import "testing"

func TestParseModuleHeader(t *testing.T) {
	prog := parseProgram(t, `module math.arithmetic
version: "1.0.0"
summary: "basic arithmetic"
exports: [add, sub]
depends: [math.core (clamp)]
===

fn add(a: i32, b: i32) -> i32 { a + b }
`)
	h := prog.Header
	if h == nil {
		t.Fatal("expected a module header")
	}
	if h.Name != "math.arithmetic" || h.Version != "1.0.0" || h.Summary != "basic arithmetic" {
		t.Fatalf("got %#v", h)
	}
	if len(h.Exports) != 2 || h.Exports[0] != "add" || h.Exports[1] != "sub" {
		t.Fatalf("got exports %#v", h.Exports)
	}
	if len(h.Depends) != 1 || h.Depends[0].Path != "math.core" || len(h.Depends[0].Imports) != 1 {
		t.Fatalf("got depends %#v", h.Depends)
	}
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item after the header, got %d", len(prog.Items))
	}
}

func TestParseModuleHeaderEmptyDepends(t *testing.T) {
	prog := parseProgram(t, `module util
version: "0.1.0"
summary: "grab bag"
exports: []
depends: []
===
`)
	if len(prog.Header.Exports) != 0 || len(prog.Header.Depends) != 0 {
		t.Fatalf("got %#v", prog.Header)
	}
}

func TestParseNoModuleHeader(t *testing.T) {
	prog := parseProgram(t, `fn id(x: i32) -> i32 { x }`)
	if prog.Header != nil {
		t.Fatalf("expected no header, got %#v", prog.Header)
	}
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
}
