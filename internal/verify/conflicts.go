package verify

import (
	"fmt"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/smt"
)

// CallSiteConflictFindings implements §4.I's "Contract conflict at a
// call site" check across the whole program: for every call f(g(…))
// where both f and g are known functions with contracts, it asserts
// the conjunction of g's post (with g's own parameters bound to the
// call's argument expressions), the binding of g's result to f's
// corresponding parameter, and f's pre; unsat is fine (f always
// accepts whatever g can return), sat means some g-result f's pre
// rejects.
func (v *Verifier) CallSiteConflictFindings(fnDefs []*ast.FnDef) map[string][]Finding {
	byName := map[string]*ast.FnDef{}
	for _, fn := range fnDefs {
		byName[fn.Name] = fn
	}

	findings := map[string][]Finding{}
	for _, caller := range fnDefs {
		if caller.Body == nil {
			continue
		}
		walkCalls(caller.Body, func(outer *ast.Call) {
			f, ok := calleeFn(outer.Callee, byName)
			if !ok || !f.HasPre() {
				return
			}
			for argIdx, arg := range outer.Args {
				inner, ok := arg.(*ast.Call)
				if !ok {
					continue
				}
				g, ok := calleeFn(inner.Callee, byName)
				if !ok || !g.HasPost() || argIdx >= len(f.Params) {
					continue
				}
				if finding := v.checkCallSite(f, g, inner, f.Params[argIdx].Name); finding != nil {
					findings[caller.Name] = append(findings[caller.Name], *finding)
				}
			}
		})
	}
	return findings
}

func (v *Verifier) checkCallSite(f, g *ast.FnDef, innerCall *ast.Call, paramName string) *Finding {
	catalog := smt.NewCatalog(v.Checker)
	tr := smt.NewTranslator(v.Checker, catalog)

	if len(g.Params) != len(innerCall.Args) {
		return nil
	}

	var buf strings.Builder
	buf.WriteString("(set-logic ALL)\n")

	// g's own parameters are bound directly to the call's argument
	// expressions, each declared fresh so g's post can reference them.
	for i, p := range g.Params {
		argSMT := tr.Expr(innerCall.Args[i], "", "")
		if tr.Err() != nil {
			return nil
		}
		fmt.Fprintf(&buf, "(define-fun %s () %s %s)\n", p.Name, catalog.SortOf(p.Type), argSMT)
	}

	retSort := catalog.SortOf(g.RetType)
	fmt.Fprintf(&buf, "(declare-const %s %s)\n", paramName, retSort)
	gPost := tr.Expr(g.Post.Node, paramName, "")
	if tr.Err() != nil {
		return nil
	}
	fmt.Fprintf(&buf, "(assert %s)\n", gPost)

	fPre := tr.Expr(f.Pre.Node, "", "")
	if tr.Err() != nil {
		return nil
	}
	fmt.Fprintf(&buf, "(assert %s)\n", fPre)

	for _, decl := range catalog.Declarations() {
		buf.WriteString(decl)
		buf.WriteByte('\n')
	}
	buf.WriteString("(check-sat)\n(get-model)\n")

	result := v.Solver.Check(smt.Plan{FnName: f.Name, Goal: smt.Goal{Name: "call-site:" + g.Name}, Script: buf.String()})
	if result.Outcome != smt.Failed {
		return nil
	}
	return &Finding{
		Check:    "contract-conflict",
		Message:  fmt.Sprintf("%s(%s(...)) may violate %s's precondition on %q", f.Name, g.Name, f.Name, paramName),
		Severity: SeverityWarning,
	}
}

func calleeFn(e ast.Expr, byName map[string]*ast.FnDef) (*ast.FnDef, bool) {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return nil, false
	}
	fn, ok := byName[ident.Name]
	return fn, ok
}

// walkCalls visits every *ast.Call reachable from e, including nested
// calls passed as arguments, so the conflict check above can inspect
// f(g(...)) shapes wherever they occur in a body.
func walkCalls(e ast.Expr, visit func(*ast.Call)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Call:
		visit(n)
		walkCalls(n.Callee, visit)
		for _, a := range n.Args {
			walkCalls(a, visit)
		}
	case *ast.MethodCall:
		walkCalls(n.Receiver, visit)
		for _, a := range n.Args {
			walkCalls(a, visit)
		}
	case *ast.Binary:
		walkCalls(n.Left, visit)
		walkCalls(n.Right, visit)
	case *ast.Unary:
		walkCalls(n.Expr, visit)
	case *ast.Cast:
		walkCalls(n.Expr, visit)
	case *ast.If:
		walkCalls(n.Cond, visit)
		walkCalls(n.Then, visit)
		walkCalls(n.Else, visit)
	case *ast.Let:
		walkCalls(n.Value, visit)
		walkCalls(n.Body, visit)
	case *ast.Assign:
		walkCalls(n.Target, visit)
		walkCalls(n.Value, visit)
	case *ast.While:
		walkCalls(n.Cond, visit)
		walkCalls(n.Invariant, visit)
		walkCalls(n.Body, visit)
	case *ast.Loop:
		walkCalls(n.Body, visit)
	case *ast.For:
		walkCalls(n.Range, visit)
		walkCalls(n.Body, visit)
	case *ast.Break:
		walkCalls(n.Value, visit)
	case *ast.Return:
		walkCalls(n.Value, visit)
	case *ast.FieldAccess:
		walkCalls(n.Base, visit)
	case *ast.TupleFieldAccess:
		walkCalls(n.Base, visit)
	case *ast.Index:
		walkCalls(n.Base, visit)
		walkCalls(n.Index, visit)
	case *ast.Block:
		for _, x := range n.Exprs {
			walkCalls(x, visit)
		}
	case *ast.NewStruct:
		for _, f := range n.Fields {
			walkCalls(f.Value, visit)
		}
	case *ast.EnumVariantExpr:
		for _, a := range n.Args {
			walkCalls(a, visit)
		}
	case *ast.ArrayLit:
		for _, x := range n.Elems {
			walkCalls(x, visit)
		}
	case *ast.TupleLit:
		for _, x := range n.Elems {
			walkCalls(x, visit)
		}
	case *ast.Range:
		walkCalls(n.Start, visit)
		walkCalls(n.End, visit)
	case *ast.Ref:
		walkCalls(n.Expr, visit)
	case *ast.RefMut:
		walkCalls(n.Expr, visit)
	case *ast.Deref:
		walkCalls(n.Expr, visit)
	case *ast.Closure:
		walkCalls(n.Body, visit)
	case *ast.Match:
		walkCalls(n.Scrutinee, visit)
		for _, arm := range n.Arms {
			walkCalls(arm.Guard, visit)
			walkCalls(arm.Body, visit)
		}
	case *ast.StateRef:
		walkCalls(n.Expr, visit)
	case *ast.Quantifier:
		walkCalls(n.Body, visit)
	case *ast.Try:
		walkCalls(n.Expr, visit)
	}
}
