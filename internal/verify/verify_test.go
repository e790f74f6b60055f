package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
	"github.com/zizixmas/bmb/internal/types"
)

func checkSource(t *testing.T, src string) (*types.Checker, *ast.Program) {
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
	return chk, prog
}

func findFn(t *testing.T, prog *ast.Program, name string) *ast.FnDef {
	t.Helper()
	for _, item := range prog.Items {
		if fn, ok := item.(*ast.FnDef); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

func TestDuplicateContractFindingsFlagsIdenticalClauses(t *testing.T) {
	_, prog := checkSource(t, `
fn withdraw(amount: i32, balance: i32) -> bool
  where {
    a: amount >= 0;
    b: amount >= 0
  }
{
  true
}
`)
	fn := findFn(t, prog, "withdraw")
	v := &Verifier{}
	findings := v.duplicateContractFindings(fn)
	if len(findings) != 1 {
		t.Fatalf("expected 1 duplicate finding, got %d: %#v", len(findings), findings)
	}
	if findings[0].Severity != SeverityWarning {
		t.Fatalf("expected warning severity, got %v", findings[0].Severity)
	}
}

func TestDuplicateContractFindingsIgnoresDistinctClauses(t *testing.T) {
	_, prog := checkSource(t, `
fn withdraw(amount: i32, balance: i32) -> bool
  where {
    nonneg: amount >= 0;
    sufficient: amount <= balance
  }
{
  true
}
`)
	fn := findFn(t, prog, "withdraw")
	v := &Verifier{}
	if findings := v.duplicateContractFindings(fn); len(findings) != 0 {
		t.Fatalf("expected no findings, got %#v", findings)
	}
}

func TestTrustReasonRecognizesAttribute(t *testing.T) {
	_, prog := checkSource(t, `
@trust "audited by hand, 2025-11-02"
fn risky(x: i32) -> i32 { x }
`)
	fn := findFn(t, prog, "risky")
	reason, trusted := trustReason(fn)
	if !trusted {
		t.Fatal("expected @trust to be recognized")
	}
	if reason != "audited by hand, 2025-11-02" {
		t.Fatalf("got reason %q", reason)
	}
}

func TestVerifyFunctionSkipsGoalsWhenTrusted(t *testing.T) {
	_, prog := checkSource(t, `
@trust "legacy, predates contracts"
fn legacy(x: i32) -> i32
  pre x > 0
{
  x
}
`)
	fn := findFn(t, prog, "legacy")
	v := &Verifier{}
	report := v.VerifyFunction(fn)
	if !report.Trusted {
		t.Fatal("expected report.Trusted")
	}
	if len(report.Goals) != 0 {
		t.Fatalf("expected no goals to be checked, got %#v", report.Goals)
	}
	if len(report.Findings) != 1 || report.Findings[0].Severity != SeverityInfo {
		t.Fatalf("expected a single Info finding, got %#v", report.Findings)
	}
}

func TestWalkCallsFindsNestedCall(t *testing.T) {
	_, prog := checkSource(t, `
fn inc(x: i32) -> i32 { x + 1 }
fn apply(x: i32) -> i32 { inc(inc(x)) }
`)
	fn := findFn(t, prog, "apply")
	var calls []string
	walkCalls(fn.Body, func(c *ast.Call) {
		if id, ok := c.Callee.(*ast.Ident); ok {
			calls = append(calls, id.Name)
		}
	})
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls (outer and inner inc), got %v", calls)
	}
}

func TestVerifyFunctionReportFieldsWhenTrusted(t *testing.T) {
	_, prog := checkSource(t, `
@trust "legacy, predates contracts"
fn legacy(x: i32) -> i32
  pre x > 0
{
  x
}
`)
	fn := findFn(t, prog, "legacy")
	v := &Verifier{}
	report := v.VerifyFunction(fn)

	require.True(t, report.Trusted)
	require.Len(t, report.Findings, 1)
	finding := report.Findings[0]
	assert.Equal(t, "trust", finding.Check)
	assert.Equal(t, SeverityInfo, finding.Severity)
	assert.Contains(t, finding.Message, "legacy, predates contracts")
	assert.Equal(t, "legacy, predates contracts", report.TrustMsg)
	assert.Empty(t, report.Goals)
}

func TestHasBlockingFindingsRespectsStrict(t *testing.T) {
	warn := &ProgramReport{
		Functions: []*FunctionReport{{Findings: []Finding{{Severity: SeverityWarning}}}},
	}
	if warn.HasBlockingFindings() {
		t.Fatal("a warning should not block by default")
	}
	warn.Strict = true
	if !warn.HasBlockingFindings() {
		t.Fatal("a warning should block in strict mode")
	}
}
