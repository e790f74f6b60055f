package verify

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/smt"
)

// allClauses returns every contract clause on fn, named the way
// BuildPlans names them, for use by checks that need to compare or
// individually negate clauses rather than build a full per-goal plan.
func allClauses(fn *ast.FnDef) []smt.Goal {
	var goals []smt.Goal
	if fn.HasPre() {
		goals = append(goals, smt.Goal{Name: "pre", Cond: fn.Pre.Node})
	}
	if fn.HasPost() {
		goals = append(goals, smt.Goal{Name: "post", Cond: fn.Post.Node})
	}
	for _, nc := range fn.Contracts {
		name := nc.Name
		if name == "" {
			name = fmt.Sprintf("where@%d", nc.Span.Start)
		}
		goals = append(goals, smt.Goal{Name: name, Cond: nc.Cond.Node})
	}
	return goals
}

// duplicateContractFindings flags any two clauses on fn whose AST
// shapes hash identically (§4.I "Duplicate contract", Warning).
func (v *Verifier) duplicateContractFindings(fn *ast.FnDef) []Finding {
	seen := map[string]string{} // hash -> first clause name with that hash
	var findings []Finding
	for _, g := range allClauses(fn) {
		h := canonicalHash(g.Cond)
		if first, ok := seen[h]; ok {
			findings = append(findings, Finding{
				Check:    "duplicate-contract",
				Message:  fmt.Sprintf("%q duplicates %q (identical condition)", g.Name, first),
				Severity: SeverityWarning,
			})
			continue
		}
		seen[h] = g.Name
	}
	return findings
}

// trivialContractFindings flags a clause whose negation is unsat,
// i.e. the clause is a tautology that can never fail (§4.I "Trivial
// contract", Warning). It builds its own minimal script per clause
// rather than reusing smt.BuildPlans, since a tautology check never
// involves the function body or __ret__ — only the clause itself and
// the parameter declarations/refinement assumptions it can reference.
func (v *Verifier) trivialContractFindings(fn *ast.FnDef) []Finding {
	var findings []Finding
	for _, g := range allClauses(fn) {
		plan, err := smt.BuildBareGoalPlan(v.Checker, fn, g, true)
		if err != nil {
			continue // not expressible in SMT; not reported as trivial or not
		}
		result := v.Solver.Check(plan)
		if result.Outcome == smt.Verified {
			findings = append(findings, Finding{
				Check:    "trivial-contract",
				Message:  fmt.Sprintf("Trivial contract: contract %q is always true (tautology)", g.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return findings
}

// unsatPreconditionFindings flags a `pre` clause that is itself unsat,
// meaning no input ever satisfies it and the function is dead code
// (§4.I "Unsatisfiable precondition", Warning).
func (v *Verifier) unsatPreconditionFindings(fn *ast.FnDef) []Finding {
	if !fn.HasPre() {
		return nil
	}
	g := smt.Goal{Name: "pre", Cond: fn.Pre.Node}
	plan, err := smt.BuildBareGoalPlan(v.Checker, fn, g, false)
	if err != nil {
		return nil
	}
	result := v.Solver.Check(plan)
	if result.Outcome == smt.Verified {
		return []Finding{{
			Check:    "dead-code-precondition",
			Message:  "Dead code: precondition is unsatisfiable; function can never be called",
			Severity: SeverityWarning,
		}}
	}
	return nil
}
