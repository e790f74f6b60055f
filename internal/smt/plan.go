package smt

import (
	"fmt"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/types"
)

// Goal is one proof obligation: a named contract, a legacy pre/post
// clause, or a refinement constraint, to be checked against a
// function's body and its other assumed preconditions.
type Goal struct {
	Name string // contract name, "pre", "post", or a refinement description
	Cond ast.Expr
}

// Plan is the fully-rendered SMT-LIB script for one Goal, ready to
// hand to a solver's stdin.
type Plan struct {
	FnName  string
	Goal    Goal
	Script  string
	// TranslateErr is set instead of Script when the function body or
	// goal could not be expressed in SMT; the caller should report
	// Unknown(TranslateErr), never attempt to run Script.
	TranslateErr error
}

// BuildPlans constructs one Plan per contract goal on fnDef: its
// named `where` contracts plus any legacy pre/post clause (§4.H step
// 2). Each plan assumes fn's precondition(s) and the body's value as
// __ret__, then asserts the negation of that one goal.
func BuildPlans(chk *types.Checker, fnDef *ast.FnDef) []Plan {
	var goals []Goal
	if fnDef.HasPre() {
		goals = append(goals, Goal{Name: "pre", Cond: fnDef.Pre.Node})
	}
	if fnDef.HasPost() {
		goals = append(goals, Goal{Name: "post", Cond: fnDef.Post.Node})
	}
	for _, nc := range fnDef.Contracts {
		name := nc.Name
		if name == "" {
			name = fmt.Sprintf("where@%d", nc.Span.Start)
		}
		goals = append(goals, Goal{Name: name, Cond: nc.Cond.Node})
	}

	plans := make([]Plan, 0, len(goals))
	for _, g := range goals {
		plans = append(plans, buildPlan(chk, fnDef, g))
	}
	return plans
}

func buildPlan(chk *types.Checker, fnDef *ast.FnDef, goal Goal) Plan {
	catalog := NewCatalog(chk)
	tr := NewTranslator(chk, catalog)

	retName := "__ret__"
	hypothesis, bodyErr := tr.FunctionBodyHypothesis(fnDef.Body, "", "")
	if bodyErr != nil {
		return Plan{FnName: fnDef.Name, Goal: goal, TranslateErr: bodyErr}
	}

	// A pre-clause goal is checked before __ret__ exists: the body
	// hypothesis is irrelevant and never referenced by that script.
	goalSMT := tr.Expr(goal.Cond, retName, "")
	if tr.Err() != nil {
		return Plan{FnName: fnDef.Name, Goal: goal, TranslateErr: tr.Err()}
	}

	var buf strings.Builder
	buf.WriteString("(set-logic ALL)\n")
	for _, decl := range catalog.Declarations() {
		buf.WriteString(decl)
		buf.WriteByte('\n')
	}

	for _, p := range fnDef.Params {
		sort := catalog.SortOf(p.Type)
		fmt.Fprintf(&buf, "(declare-const %s %s)\n", sanitize(p.Name), sort)
		if pre, ok := refinementConstraints(p.Type); ok {
			for _, c := range pre {
				assertion := tr.Expr(c, "", sanitize(p.Name))
				fmt.Fprintf(&buf, "(assert %s)\n", assertion)
			}
		}
	}
	for _, name := range tr.ArrayLens() {
		lenName := sanitize(name) + "__len"
		fmt.Fprintf(&buf, "(declare-const %s Int)\n(assert (>= %s 0))\n", lenName, lenName)
	}

	if goal.Name != "pre" {
		fmt.Fprintf(&buf, "(declare-const %s %s)\n", retName, catalog.SortOf(fnDef.RetType))
		fmt.Fprintf(&buf, "(assert (= %s %s))\n", retName, hypothesis)
		if fnDef.HasPre() {
			preSMT := tr.Expr(fnDef.Pre.Node, "", "")
			fmt.Fprintf(&buf, "(assert %s)\n", preSMT)
		}
	}

	fmt.Fprintf(&buf, "(assert (not %s))\n", goalSMT)
	buf.WriteString("(check-sat)\n(get-model)\n")

	if tr.Err() != nil {
		return Plan{FnName: fnDef.Name, Goal: goal, TranslateErr: tr.Err()}
	}
	return Plan{FnName: fnDef.Name, Goal: goal, Script: buf.String()}
}

// BuildBareGoalPlan renders a script asserting only fn's parameter
// declarations and their refinement assumptions, then either goal.Cond
// itself (negate=false) or its negation (negate=true), with no body
// hypothesis or __ret__ binding involved. internal/verify's
// unsat-precondition and trivial-contract checks (§4.I) use this
// instead of BuildPlans: both ask a question about a clause in
// isolation ("is pre ever satisfiable", "can this clause ever fail"),
// not "does the function's body satisfy this clause given its
// preconditions".
func BuildBareGoalPlan(chk *types.Checker, fnDef *ast.FnDef, goal Goal, negate bool) (Plan, error) {
	catalog := NewCatalog(chk)
	tr := NewTranslator(chk, catalog)

	cond := tr.Expr(goal.Cond, "", "")
	if tr.Err() != nil {
		return Plan{}, tr.Err()
	}

	var buf strings.Builder
	buf.WriteString("(set-logic ALL)\n")
	for _, decl := range catalog.Declarations() {
		buf.WriteString(decl)
		buf.WriteByte('\n')
	}
	for _, p := range fnDef.Params {
		sort := catalog.SortOf(p.Type)
		fmt.Fprintf(&buf, "(declare-const %s %s)\n", sanitize(p.Name), sort)
		if pre, ok := refinementConstraints(p.Type); ok {
			for _, c := range pre {
				assertion := tr.Expr(c, "", sanitize(p.Name))
				fmt.Fprintf(&buf, "(assert %s)\n", assertion)
			}
		}
	}
	for _, name := range tr.ArrayLens() {
		lenName := sanitize(name) + "__len"
		fmt.Fprintf(&buf, "(declare-const %s Int)\n(assert (>= %s 0))\n", lenName, lenName)
	}
	if negate {
		fmt.Fprintf(&buf, "(assert (not %s))\n", cond)
	} else {
		fmt.Fprintf(&buf, "(assert %s)\n", cond)
	}
	buf.WriteString("(check-sat)\n(get-model)\n")

	if tr.Err() != nil {
		return Plan{}, tr.Err()
	}
	return Plan{FnName: fnDef.Name, Goal: goal, Script: buf.String()}, nil
}

// refinementConstraints returns a RefinedType's own Constraints list,
// if t is refined. A plain (unrefined) type has no range assumption
// to assert, per SortOf's documented scope decision.
func refinementConstraints(t ast.Type) ([]ast.Expr, bool) {
	r, ok := t.(*ast.RefinedType)
	if !ok {
		return nil, false
	}
	out := make([]ast.Expr, len(r.Constraints))
	for i, c := range r.Constraints {
		out[i] = c.Node
	}
	return out, true
}
