package miropt

import (
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/mir"
	"github.com/zizixmas/bmb/internal/parser"
	"github.com/zizixmas/bmb/internal/types"
)

func lowerSource(t *testing.T, src, fnName string) (*mir.Function, *ast.Program) {
	t.Helper()
	l := lexer.New(src, "test.bmb")
	p := parser.New(l, "test.bmb")
	prog := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	chk := types.CheckProgram(prog)
	if len(chk.Diagnostics) > 0 {
		t.Fatalf("unexpected type errors: %v", chk.Diagnostics)
	}
	funcs := mir.LowerProgram(prog, chk)
	fn, ok := funcs[fnName]
	if !ok {
		t.Fatalf("function %q was not lowered", fnName)
	}
	return fn, prog
}

func TestConstantFoldArithmetic(t *testing.T) {
	fn, _ := lowerSource(t, `fn six() -> i64 { 2 + 4 }`, "six")
	if !ConstantFold(fn) {
		t.Fatal("expected constant fold to report a change")
	}
	entry := fn.Blocks[fn.Entry]
	found := false
	for _, instr := range entry.Instr {
		if c, ok := instr.(*mir.AssignConst); ok {
			if lit, ok := c.Value.(*ast.IntLit); ok && lit.Value == 6 {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected a folded AssignConst with value 6")
	}
}

func TestDeadCodeElimRemovesUnusedPure(t *testing.T) {
	fn, _ := lowerSource(t, `fn keep(a: i64) -> i64 { let unused = a + 1; a }`, "keep")
	before := len(fn.Blocks[fn.Entry].Instr)
	if !DeadCodeElim(fn) {
		t.Fatal("expected DCE to report a change")
	}
	after := len(fn.Blocks[fn.Entry].Instr)
	if after >= before {
		t.Fatalf("expected instruction count to drop, got %d -> %d", before, after)
	}
}

func TestCopyPropagationSubstitutesCopiedSource(t *testing.T) {
	fn, _ := lowerSource(t, `fn dup(a: i64) -> i64 { let b = a; b + b }`, "dup")
	CopyPropagation(fn)
	entry := fn.Blocks[fn.Entry]
	for _, instr := range entry.Instr {
		if bo, ok := instr.(*mir.AssignBinOp); ok {
			left, lok := bo.Left.(*mir.Ref)
			right, rok := bo.Right.(*mir.Ref)
			if lok && rok && left.Place.Name == "a" && right.Place.Name == "a" {
				return
			}
		}
	}
	t.Fatal("expected both operands of the add to reference a directly after copy propagation")
}

func TestSimplifyBranchesFoldsIdenticalTargets(t *testing.T) {
	fn := &mir.Function{
		Entry:      "entry",
		Blocks:     map[string]*mir.Block{},
		BlockOrder: []string{"entry"},
	}
	fn.Blocks["entry"] = &mir.Block{
		Label: "entry",
		Term:  &mir.Branch{Cond: &mir.Constant{Value: &ast.BoolLit{Value: true}}, Then: "x", Else: "x"},
	}
	if !SimplifyBranches(fn) {
		t.Fatal("expected a change")
	}
	if _, ok := fn.Blocks["entry"].Term.(*mir.Goto); !ok {
		t.Fatalf("expected Goto, got %T", fn.Blocks["entry"].Term)
	}
}

func TestOptimizeReachesFixedPoint(t *testing.T) {
	fn, prog := lowerSource(t, `fn six() -> i64 { 2 + 4 }`, "six")
	pure := CollectPureFunctions(prog)
	Optimize(fn, DefaultPasses(pure), 0)
	entry := fn.Blocks[fn.Entry]
	ret, ok := entry.Term.(*mir.Return)
	if !ok {
		t.Fatalf("expected Return terminator, got %T", entry.Term)
	}
	c, ok := ret.Value.(*mir.Constant)
	if !ok {
		t.Fatalf("expected final Return to carry a Constant, got %T", ret.Value)
	}
	if lit, ok := c.Value.(*ast.IntLit); !ok || lit.Value != 6 {
		t.Fatalf("expected folded constant 6, got %v", c.Value)
	}
}
