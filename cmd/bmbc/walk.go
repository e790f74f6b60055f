package main

import "github.com/zizixmas/bmb/internal/ast"

// walkMatches calls visit on every *ast.Match reachable from e,
// including those nested inside arm guards/bodies. The traversal
// shape mirrors internal/verify's walkCalls.
func walkMatches(e ast.Expr, visit func(*ast.Match)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Match:
		visit(n)
		walkMatches(n.Scrutinee, visit)
		for _, arm := range n.Arms {
			walkMatches(arm.Guard, visit)
			walkMatches(arm.Body, visit)
		}
	case *ast.Binary:
		walkMatches(n.Left, visit)
		walkMatches(n.Right, visit)
	case *ast.Unary:
		walkMatches(n.Expr, visit)
	case *ast.Cast:
		walkMatches(n.Expr, visit)
	case *ast.If:
		walkMatches(n.Cond, visit)
		walkMatches(n.Then, visit)
		walkMatches(n.Else, visit)
	case *ast.Let:
		walkMatches(n.Value, visit)
		walkMatches(n.Body, visit)
	case *ast.Assign:
		walkMatches(n.Target, visit)
		walkMatches(n.Value, visit)
	case *ast.While:
		walkMatches(n.Cond, visit)
		walkMatches(n.Invariant, visit)
		walkMatches(n.Body, visit)
	case *ast.Loop:
		walkMatches(n.Body, visit)
	case *ast.For:
		walkMatches(n.Range, visit)
		walkMatches(n.Body, visit)
	case *ast.Break:
		walkMatches(n.Value, visit)
	case *ast.Return:
		walkMatches(n.Value, visit)
	case *ast.Call:
		walkMatches(n.Callee, visit)
		for _, a := range n.Args {
			walkMatches(a, visit)
		}
	case *ast.MethodCall:
		walkMatches(n.Receiver, visit)
		for _, a := range n.Args {
			walkMatches(a, visit)
		}
	case *ast.FieldAccess:
		walkMatches(n.Base, visit)
	case *ast.TupleFieldAccess:
		walkMatches(n.Base, visit)
	case *ast.Index:
		walkMatches(n.Base, visit)
		walkMatches(n.Index, visit)
	case *ast.Block:
		for _, x := range n.Exprs {
			walkMatches(x, visit)
		}
	case *ast.NewStruct:
		for _, f := range n.Fields {
			walkMatches(f.Value, visit)
		}
	case *ast.EnumVariantExpr:
		for _, a := range n.Args {
			walkMatches(a, visit)
		}
	case *ast.ArrayLit:
		for _, x := range n.Elems {
			walkMatches(x, visit)
		}
	case *ast.TupleLit:
		for _, x := range n.Elems {
			walkMatches(x, visit)
		}
	case *ast.Range:
		walkMatches(n.Start, visit)
		walkMatches(n.End, visit)
	case *ast.Ref:
		walkMatches(n.Expr, visit)
	case *ast.RefMut:
		walkMatches(n.Expr, visit)
	case *ast.Deref:
		walkMatches(n.Expr, visit)
	case *ast.Closure:
		walkMatches(n.Body, visit)
	case *ast.StateRef:
		walkMatches(n.Expr, visit)
	case *ast.Quantifier:
		walkMatches(n.Body, visit)
	case *ast.Try:
		walkMatches(n.Expr, visit)
	}
}
