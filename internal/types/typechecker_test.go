package types

import (
	"testing"

	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
)

func checkSource(t *testing.T, src string) *Checker {
	t.Helper()
	lex := lexer.New(src, "test.bmb")
	p := parser.New(lex, "test.bmb")
	prog := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return CheckProgram(prog)
}

func TestArithmeticOk(t *testing.T) {
	c := checkSource(t, `fn add(a: i32, b: i32) -> i32 { a + b }`)
	if len(c.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", c.Diagnostics)
	}
}

func TestArithmeticTypeMismatch(t *testing.T) {
	c := checkSource(t, `fn bad(a: i32) -> i32 { a + "x" }`)
	if len(c.Diagnostics) == 0 {
		t.Fatal("expected a type error")
	}
}

func TestStringConcatenation(t *testing.T) {
	c := checkSource(t, `fn greet(name: String) -> String { "hi " + name }`)
	if len(c.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", c.Diagnostics)
	}
}

func TestGenericIdentityInference(t *testing.T) {
	c := checkSource(t, `
fn id<T>(x: T) -> T { x }
fn use_id(n: i32) -> i32 { id(n) }
`)
	if len(c.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", c.Diagnostics)
	}
}

func TestUnboundVariable(t *testing.T) {
	c := checkSource(t, `fn f() -> i32 { y }`)
	found := false
	for _, d := range c.Diagnostics {
		if d.Code == "TYP006" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TYP006, got %v", c.Diagnostics)
	}
}

func TestIfBranchMismatch(t *testing.T) {
	c := checkSource(t, `fn f(cond: bool) -> i32 { if cond { 1 } else { "x" } }`)
	if len(c.Diagnostics) == 0 {
		t.Fatal("expected a type error for mismatched if branches")
	}
}

func TestStructFieldAccess(t *testing.T) {
	c := checkSource(t, `
struct Point { x: i32, y: i32 }
fn getx(p: Point) -> i32 { p.x }
`)
	if len(c.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", c.Diagnostics)
	}
}

func TestEnumVariantConstructAndMatch(t *testing.T) {
	c := checkSource(t, `
enum Shape { Circle(i32), Square(i32) }
fn area(s: Shape) -> i32 {
  match s {
    Shape::Circle(r) => r * r,
    Shape::Square(side) => side * side,
  }
}
`)
	if len(c.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", c.Diagnostics)
	}
}

func TestContractClauseMustBeBool(t *testing.T) {
	c := checkSource(t, `
fn half(x: i32) -> i32
  pre x
  { x / 2 }
`)
	found := false
	for _, d := range c.Diagnostics {
		if d.Code == "TYP001" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TYP001 for non-bool pre clause, got %v", c.Diagnostics)
	}
}
