package parser

import (
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	l := lexer.New(input, "test.bmb")
	p := New(l, "test.bmb")
	e := p.parseExpression(LOWEST)
	if p.Err() != nil {
		t.Fatalf("parse error: %v", p.Err())
	}
	return e
}

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input, "test.bmb")
	p := New(l, "test.bmb")
	prog := p.ParseProgram()
	if p.Err() != nil {
		t.Fatalf("parse error: %v", p.Err())
	}
	return prog
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, e ast.Expr)
	}{
		{"42", func(t *testing.T, e ast.Expr) {
			lit, ok := e.(*ast.IntLit)
			if !ok || lit.Value != 42 {
				t.Fatalf("got %#v", e)
			}
		}},
		{"3.14", func(t *testing.T, e ast.Expr) {
			lit, ok := e.(*ast.FloatLit)
			if !ok || lit.Value != 3.14 {
				t.Fatalf("got %#v", e)
			}
		}},
		{`"hello"`, func(t *testing.T, e ast.Expr) {
			lit, ok := e.(*ast.StringLit)
			if !ok || lit.Value != "hello" {
				t.Fatalf("got %#v", e)
			}
		}},
		{"true", func(t *testing.T, e ast.Expr) {
			lit, ok := e.(*ast.BoolLit)
			if !ok || lit.Value != true {
				t.Fatalf("got %#v", e)
			}
		}},
		{"()", func(t *testing.T, e ast.Expr) {
			lit, ok := e.(*ast.TupleLit)
			if !ok || len(lit.Elems) != 0 {
				t.Fatalf("got %#v", e)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tt.check(t, parseExpr(t, tt.input))
		})
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	e := parseExpr(t, "1 + 2 * 3")
	bin, ok := e.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level +, got %#v", e)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected * on the right, got %#v", bin.Right)
	}
}

func TestParseComparisonVsRange(t *testing.T) {
	e := parseExpr(t, "0..n")
	r, ok := e.(*ast.Range)
	if !ok || r.Inclusive {
		t.Fatalf("expected exclusive range, got %#v", e)
	}
	e2 := parseExpr(t, "0..=n")
	r2, ok := e2.(*ast.Range)
	if !ok || !r2.Inclusive {
		t.Fatalf("expected inclusive range, got %#v", e2)
	}
}

func TestParseUnaryAndCast(t *testing.T) {
	e := parseExpr(t, "-x as i64")
	cast, ok := e.(*ast.Cast)
	if !ok {
		t.Fatalf("expected Cast, got %#v", e)
	}
	if _, ok := cast.Type.(*ast.Primitive); !ok {
		t.Fatalf("expected primitive cast target, got %#v", cast.Type)
	}
	un, ok := cast.Expr.(*ast.Unary)
	if !ok || un.Op != ast.OpNeg {
		t.Fatalf("expected negation under cast, got %#v", cast.Expr)
	}
}

func TestParseCallIndexField(t *testing.T) {
	e := parseExpr(t, "foo(1, 2).bar[0].baz()")
	mc, ok := e.(*ast.MethodCall)
	if !ok || mc.Method != "baz" {
		t.Fatalf("got %#v", e)
	}
	idx, ok := mc.Receiver.(*ast.Index)
	if !ok {
		t.Fatalf("expected Index receiver, got %#v", mc.Receiver)
	}
	fa, ok := idx.Base.(*ast.FieldAccess)
	if !ok || fa.Field != "bar" {
		t.Fatalf("expected FieldAccess base, got %#v", idx.Base)
	}
	if _, ok := fa.Base.(*ast.Call); !ok {
		t.Fatalf("expected Call under FieldAccess, got %#v", fa.Base)
	}
}

func TestParseOldAndStateRefs(t *testing.T) {
	e := parseExpr(t, "old(x)")
	sr, ok := e.(*ast.StateRef)
	if !ok || sr.Kind != ast.StatePre {
		t.Fatalf("expected StateRef(pre), got %#v", e)
	}

	e2 := parseExpr(t, "balance.post")
	sr2, ok := e2.(*ast.StateRef)
	if !ok || sr2.Kind != ast.StatePost {
		t.Fatalf("expected StateRef(post), got %#v", e2)
	}
}

func TestParseRetAndIt(t *testing.T) {
	if _, ok := parseExpr(t, "ret").(*ast.Ret); !ok {
		t.Fatal("expected Ret")
	}
	if _, ok := parseExpr(t, "it").(*ast.It); !ok {
		t.Fatal("expected It")
	}
}

func TestParseLetAbsorbsRemainderOfBlock(t *testing.T) {
	e := parseExpr(t, `{
		let x = 1;
		let y = 2;
		x + y
	}`)
	block, ok := e.(*ast.Block)
	if !ok || len(block.Exprs) != 1 {
		t.Fatalf("expected a single-element block wrapping the outer let, got %#v", e)
	}
	outer, ok := block.Exprs[0].(*ast.Let)
	if !ok || outer.Name != "x" {
		t.Fatalf("expected outer let x, got %#v", block.Exprs[0])
	}
	inner, ok := outer.Body.(*ast.Let)
	if !ok || inner.Name != "y" {
		t.Fatalf("expected inner let y as the outer let's body, got %#v", outer.Body)
	}
	if _, ok := inner.Body.(*ast.Binary); !ok {
		t.Fatalf("expected x + y as the inner let's body, got %#v", inner.Body)
	}
}

func TestParseIfThenElseAndBlockForm(t *testing.T) {
	e := parseExpr(t, "if a then b else c")
	iff, ok := e.(*ast.If)
	if !ok || iff.Else == nil {
		t.Fatalf("expected ternary if/then/else, got %#v", e)
	}

	e2 := parseExpr(t, "if a { b } else { c }")
	iff2, ok := e2.(*ast.If)
	if !ok {
		t.Fatalf("expected block-form if, got %#v", e2)
	}
	if _, ok := iff2.Then.(*ast.Block); !ok {
		t.Fatalf("expected Then to be a Block, got %#v", iff2.Then)
	}
}

func TestParseMatchWithGuard(t *testing.T) {
	e := parseExpr(t, `match x {
		0 => "zero",
		n if n > 0 => "positive",
		_ => "negative"
	}`)
	m, ok := e.(*ast.Match)
	if !ok || len(m.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %#v", e)
	}
	if m.Arms[1].Guard == nil {
		t.Fatalf("expected a guard on arm 1")
	}
	if _, ok := m.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Fatalf("expected wildcard pattern on arm 2, got %#v", m.Arms[2].Pattern)
	}
}

func TestParseQuantifier(t *testing.T) {
	e := parseExpr(t, "forall i: i32, i >= 0")
	q, ok := e.(*ast.Quantifier)
	if !ok || !q.Universal || q.Var != "i" {
		t.Fatalf("got %#v", e)
	}
}

func TestParseClosures(t *testing.T) {
	e := parseExpr(t, "|x, y| x + y")
	c, ok := e.(*ast.Closure)
	if !ok || len(c.Params) != 2 {
		t.Fatalf("got %#v", e)
	}

	e2 := parseExpr(t, "|| 1")
	c2, ok := e2.(*ast.Closure)
	if !ok || len(c2.Params) != 0 {
		t.Fatalf("expected zero-param closure, got %#v", e2)
	}
}

func TestParseNewStructShorthand(t *testing.T) {
	e := parseExpr(t, "new Point{x, y: 2}")
	ns, ok := e.(*ast.NewStruct)
	if !ok || ns.Name != "Point" || len(ns.Fields) != 2 {
		t.Fatalf("got %#v", e)
	}
	if _, ok := ns.Fields[0].Value.(*ast.Ident); !ok {
		t.Fatalf("expected shorthand field to desugar to an Ident, got %#v", ns.Fields[0].Value)
	}
}

func TestParseEnumVariantExpr(t *testing.T) {
	e := parseExpr(t, "Option::Some(42)")
	ev, ok := e.(*ast.EnumVariantExpr)
	if !ok || ev.EnumName != "Option" || ev.Variant != "Some" || len(ev.Args) != 1 {
		t.Fatalf("got %#v", e)
	}
}

func TestParseTrySuffix(t *testing.T) {
	e := parseExpr(t, "risky()?")
	tr, ok := e.(*ast.Try)
	if !ok {
		t.Fatalf("got %#v", e)
	}
	if _, ok := tr.Expr.(*ast.Call); !ok {
		t.Fatalf("expected call under try, got %#v", tr.Expr)
	}
}

func TestParseAssignStatement(t *testing.T) {
	e := parseExpr(t, "{ x = x + 1; x }")
	block, ok := e.(*ast.Block)
	if !ok || len(block.Exprs) != 2 {
		t.Fatalf("got %#v", e)
	}
	assign, ok := block.Exprs[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected Assign as first statement, got %#v", block.Exprs[0])
	}
	if _, ok := assign.Target.(*ast.Ident); !ok {
		t.Fatalf("expected Ident target, got %#v", assign.Target)
	}
}

func TestParseFnDefWithContracts(t *testing.T) {
	prog := parseProgram(t, `
fn div(a: i32, b: i32) -> i32
  pre b != 0
  post ret * b <= a
{
  a / b
}
`)
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*ast.FnDef)
	if !ok || fn.Name != "div" {
		t.Fatalf("got %#v", prog.Items[0])
	}
	if !fn.HasPre() || !fn.HasPost() {
		t.Fatalf("expected pre and post clauses to be recorded")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseFnDefWithWhereContracts(t *testing.T) {
	prog := parseProgram(t, `
fn withdraw(amount: i32) -> bool
  where {
    nonneg: amount >= 0;
    sufficient: amount <= balance
  }
{
  true
}
`)
	fn := prog.Items[0].(*ast.FnDef)
	if len(fn.Contracts) != 2 {
		t.Fatalf("expected 2 named contracts, got %d", len(fn.Contracts))
	}
	if fn.Contracts[0].Name != "nonneg" || fn.Contracts[1].Name != "sufficient" {
		t.Fatalf("got %#v", fn.Contracts)
	}
}

func TestParseStructAndRefinedField(t *testing.T) {
	prog := parseProgram(t, `
struct Account {
  balance: i32{it >= 0},
  owner: String
}
`)
	sd, ok := prog.Items[0].(*ast.StructDef)
	if !ok || sd.Name != "Account" || len(sd.Fields) != 2 {
		t.Fatalf("got %#v", prog.Items[0])
	}
	refined, ok := sd.Fields[0].Type.(*ast.RefinedType)
	if !ok || len(refined.Constraints) != 1 {
		t.Fatalf("expected a refined i32 field, got %#v", sd.Fields[0].Type)
	}
}

func TestParseEnumDef(t *testing.T) {
	prog := parseProgram(t, `
enum Shape {
  Circle(f64),
  Rect(f64, f64),
  Point
}
`)
	ed, ok := prog.Items[0].(*ast.EnumDef)
	if !ok || len(ed.Variants) != 3 {
		t.Fatalf("got %#v", prog.Items[0])
	}
	if len(ed.Variants[1].Fields) != 2 {
		t.Fatalf("expected Rect to carry 2 fields, got %d", len(ed.Variants[1].Fields))
	}
	if len(ed.Variants[2].Fields) != 0 {
		t.Fatalf("expected Point to be nullary, got %d", len(ed.Variants[2].Fields))
	}
}

func TestParseGenericFnAndTypeParams(t *testing.T) {
	prog := parseProgram(t, `
fn first<T>(xs: [T]) -> T {
  xs[0]
}
`)
	fn := prog.Items[0].(*ast.FnDef)
	if len(fn.TypeParams) != 1 || fn.TypeParams[0].Name != "T" {
		t.Fatalf("got %#v", fn.TypeParams)
	}
	arr, ok := fn.Params[0].Type.(*ast.ArrayType)
	if !ok || arr.Size != -1 {
		t.Fatalf("expected unsized array param, got %#v", fn.Params[0].Type)
	}
}

func TestParseTypeAlias(t *testing.T) {
	prog := parseProgram(t, "type Meters = f64;")
	ta, ok := prog.Items[0].(*ast.TypeAlias)
	if !ok || ta.Name != "Meters" {
		t.Fatalf("got %#v", prog.Items[0])
	}
}

func TestParseUseWithSymbols(t *testing.T) {
	prog := parseProgram(t, "use math.arithmetic::{add, sub};")
	u, ok := prog.Items[0].(*ast.Use)
	if !ok || u.Path != "math.arithmetic" || len(u.Symbols) != 2 {
		t.Fatalf("got %#v", prog.Items[0])
	}
	if len(u.SymbolSpans) != 2 {
		t.Fatalf("expected one span per symbol, got %#v", u.SymbolSpans)
	}
	if u.SymbolSpans[0] == u.SymbolSpans[1] {
		t.Fatalf("expected add and sub to have distinct spans, got %#v", u.SymbolSpans)
	}
}

func TestParseExternFnWithLink(t *testing.T) {
	prog := parseProgram(t, `@link("libm") extern fn sqrt(x: f64) -> f64;`)
	ef, ok := prog.Items[0].(*ast.ExternFn)
	if !ok || ef.Name != "sqrt" || ef.LinkModule != "libm" {
		t.Fatalf("got %#v", prog.Items[0])
	}
}

func TestParseTraitAndImpl(t *testing.T) {
	prog := parseProgram(t, `
trait Shape {
  fn area() -> f64;
}

impl Shape for Circle {
  fn area() -> f64 { 0.0 }
}
`)
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(prog.Items))
	}
	td, ok := prog.Items[0].(*ast.TraitDef)
	if !ok || td.Name != "Shape" || len(td.Methods) != 1 {
		t.Fatalf("got %#v", prog.Items[0])
	}
	ib, ok := prog.Items[1].(*ast.ImplBlock)
	if !ok || ib.Trait != "Shape" || len(ib.Fns) != 1 {
		t.Fatalf("got %#v", prog.Items[1])
	}
}

func TestParsePublicVisibilityAndAttributes(t *testing.T) {
	prog := parseProgram(t, `@deprecated("use v2 instead") pub fn legacy() -> i32 { 0 }`)
	fn, ok := prog.Items[0].(*ast.FnDef)
	if !ok || fn.ItemVis() != ast.Public {
		t.Fatalf("expected public fn, got %#v", prog.Items[0])
	}
	attrs := fn.ItemAttrs()
	if len(attrs) != 1 || attrs[0].Name != "deprecated" || len(attrs[0].Args) != 1 || attrs[0].Args[0] != "use v2 instead" {
		t.Fatalf("got %#v", attrs)
	}
}

func TestParseSingleErrorPolicy(t *testing.T) {
	l := lexer.New("fn (", "test.bmb")
	p := New(l, "test.bmb")
	_ = p.ParseProgram()
	if p.Err() == nil {
		t.Fatal("expected a parse error")
	}
	firstMsg := p.Err().Message
	p.parseExpression(LOWEST)
	if p.Err().Message != firstMsg {
		t.Fatalf("parser kept producing errors after the first one: %q then %q", firstMsg, p.Err().Message)
	}
}
