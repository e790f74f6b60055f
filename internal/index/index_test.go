package index

import (
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src, "acct.bmb")
	p := parser.New(l, "acct.bmb")
	prog := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestIndexFunctionRecordsSignatureAndContracts(t *testing.T) {
	src := `fn withdraw(amount: i32) -> bool
  where {
    nonneg: amount >= 0;
    sufficient: amount <= 100
  }
{
  true
}
`
	prog := parseSrc(t, src)
	g := New("acct", "0.1.0")
	g.IndexFile("acct.bmb", src, prog)
	idx := g.Generate()

	if len(idx.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(idx.Functions))
	}
	fn := idx.Functions[0]
	if fn.Name != "withdraw" || fn.IsPub {
		t.Fatalf("unexpected function entry: %#v", fn)
	}
	if fn.Signature.ReturnType != "bool" || len(fn.Signature.Params) != 1 {
		t.Fatalf("unexpected signature: %#v", fn.Signature)
	}
	if fn.Contracts == nil || len(fn.Contracts.Post) != 2 {
		t.Fatalf("expected 2 post-bucket contracts, got %#v", fn.Contracts)
	}
	if len(idx.Symbols) != 1 || idx.Symbols[0].Kind != SymbolFunction {
		t.Fatalf("unexpected symbols: %#v", idx.Symbols)
	}
}

func TestIndexFunctionRecordsPreAndPostSeparately(t *testing.T) {
	src := `fn div(a: i32, b: i32) -> i32
  pre b != 0
  post ret * b <= a
{
  a / b
}
`
	prog := parseSrc(t, src)
	g := New("p", "0.1.0")
	g.IndexFile("div.bmb", src, prog)
	idx := g.Generate()

	fn := idx.Functions[0]
	if len(fn.Contracts.Pre) != 1 || len(fn.Contracts.Post) != 1 {
		t.Fatalf("expected 1 pre and 1 post, got %#v", fn.Contracts)
	}
	if !fn.Contracts.Post[0].UsesRet {
		t.Errorf("expected post clause to be flagged UsesRet")
	}
	if fn.Contracts.Pre[0].UsesRet {
		t.Errorf("pre clause should not be flagged UsesRet")
	}
}

func TestIndexBodyInfoDetectsRecursionAndLoops(t *testing.T) {
	src := `fn fact(n: i32) -> i32 {
  if n <= 1 then 1 else n * fact(n - 1)
}
fn sum_to(n: i32) -> i32 {
  let total = 0;
  while total < n {
    total
  }
}
`
	prog := parseSrc(t, src)
	g := New("p", "0.1.0")
	g.IndexFile("math.bmb", src, prog)
	idx := g.Generate()

	byName := map[string]FunctionEntry{}
	for _, f := range idx.Functions {
		byName[f.Name] = f
	}

	fact := byName["fact"]
	if fact.BodyInfo == nil || !fact.BodyInfo.Recursive {
		t.Fatalf("expected fact to be marked recursive, got %#v", fact.BodyInfo)
	}
	if fact.BodyInfo.HasLoop {
		t.Errorf("fact has no loop")
	}

	sumTo := byName["sum_to"]
	if sumTo.BodyInfo == nil || !sumTo.BodyInfo.HasLoop {
		t.Fatalf("expected sum_to to be marked has_loop, got %#v", sumTo.BodyInfo)
	}
	if sumTo.BodyInfo.Recursive {
		t.Errorf("sum_to is not recursive")
	}
}

func TestIndexStructEnumTraitAndTypeAlias(t *testing.T) {
	src := `struct Account {
  balance: i32{it >= 0},
  owner: String
}
enum Status {
  Active,
  Closed
}
trait Shape {
  fn area() -> f64;
}
type PosInt = i32{it > 0};
`
	prog := parseSrc(t, src)
	g := New("p", "0.1.0")
	g.IndexFile("types.bmb", src, prog)
	idx := g.Generate()

	if idx.Manifest.Structs != 1 || idx.Manifest.Enums != 1 {
		t.Fatalf("unexpected manifest counts: %#v", idx.Manifest)
	}
	if len(idx.Types) != 4 {
		t.Fatalf("expected 4 type entries, got %d", len(idx.Types))
	}

	byName := map[string]TypeEntry{}
	for _, ty := range idx.Types {
		byName[ty.Name] = ty
	}

	acct := byName["Account"]
	if acct.Kind != "struct" || len(acct.Fields) != 2 {
		t.Fatalf("unexpected struct entry: %#v", acct)
	}

	status := byName["Status"]
	if status.Kind != "enum" || len(status.Variants) != 2 {
		t.Fatalf("unexpected enum entry: %#v", status)
	}

	shape := byName["Shape"]
	if shape.Kind != "trait" {
		t.Fatalf("unexpected trait entry: %#v", shape)
	}

	posInt := byName["PosInt"]
	if posInt.Kind != "type" || posInt.Refinement == nil {
		t.Fatalf("expected a refinement on PosInt, got %#v", posInt)
	}
	if posInt.Refinement.Base != "i32" || posInt.Refinement.Constraint != "(it > 0)" {
		t.Fatalf("unexpected refinement: %#v", posInt.Refinement)
	}
}

func TestIndexExternFn(t *testing.T) {
	src := `@link("libm") extern fn sqrt(x: f64) -> f64;`
	prog := parseSrc(t, src)
	g := New("p", "0.1.0")
	g.IndexFile("ffi.bmb", src, prog)
	idx := g.Generate()

	if len(idx.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(idx.Symbols))
	}
	sym := idx.Symbols[0]
	if sym.Name != "sqrt" || sym.Signature == nil {
		t.Fatalf("unexpected extern symbol: %#v", sym)
	}
}

func TestGenerateStampsManifest(t *testing.T) {
	prog := parseSrc(t, `fn noop() -> i32 { 0 }`)
	g := New("demo", "0.1.0")
	g.IndexFile("a.bmb", "", prog)
	idx := g.Generate()

	if idx.Manifest.Project != "demo" || idx.Manifest.BmbVersion != "0.1.0" {
		t.Fatalf("unexpected manifest: %#v", idx.Manifest)
	}
	if idx.Manifest.Files != 1 || idx.Manifest.Functions != 1 {
		t.Fatalf("unexpected manifest counts: %#v", idx.Manifest)
	}
	if idx.Manifest.IndexedAt == "" {
		t.Error("expected indexed_at to be stamped")
	}
}
