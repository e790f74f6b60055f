package index

import "github.com/zizixmas/bmb/internal/ast"

// exprInfo is the shape analysis inspect collects in one pass over a
// contract or body expression.
type exprInfo struct {
	calls       []string
	quantifiers []string
	usesOld     bool
	usesRet     bool
	hasLoop     bool
}

func (i *exprInfo) addCall(name string) {
	if name == "" {
		return
	}
	for _, c := range i.calls {
		if c == name {
			return
		}
	}
	i.calls = append(i.calls, name)
}

func (i *exprInfo) addQuantifier(q string) {
	for _, x := range i.quantifiers {
		if x == q {
			return
		}
	}
	i.quantifiers = append(i.quantifiers, q)
}

// inspect walks e recording every call target, old()/ret reference,
// loop construct and quantifier binding reachable from it. The case
// list mirrors internal/verify's walkCalls, extended to cover the
// additional analyses the index needs in a single traversal.
func inspect(e ast.Expr) exprInfo {
	var info exprInfo
	walk(e, &info)
	return info
}

func callName(callee ast.Expr) string {
	switch c := callee.(type) {
	case *ast.Ident:
		return c.Name
	default:
		return ""
	}
}

func walk(e ast.Expr, info *exprInfo) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Ret:
		info.usesRet = true
	case *ast.StateRef:
		if n.Kind == ast.StatePre {
			info.usesOld = true
		}
		walk(n.Expr, info)
	case *ast.Call:
		info.addCall(callName(n.Callee))
		walk(n.Callee, info)
		for _, a := range n.Args {
			walk(a, info)
		}
	case *ast.MethodCall:
		info.addCall(n.Method)
		walk(n.Receiver, info)
		for _, a := range n.Args {
			walk(a, info)
		}
	case *ast.Binary:
		walk(n.Left, info)
		walk(n.Right, info)
	case *ast.Unary:
		walk(n.Expr, info)
	case *ast.Cast:
		walk(n.Expr, info)
	case *ast.If:
		walk(n.Cond, info)
		walk(n.Then, info)
		walk(n.Else, info)
	case *ast.Let:
		walk(n.Value, info)
		walk(n.Body, info)
	case *ast.Assign:
		walk(n.Target, info)
		walk(n.Value, info)
	case *ast.While:
		info.hasLoop = true
		walk(n.Cond, info)
		walk(n.Invariant, info)
		walk(n.Body, info)
	case *ast.Loop:
		info.hasLoop = true
		walk(n.Body, info)
	case *ast.For:
		info.hasLoop = true
		walk(n.Range, info)
		walk(n.Body, info)
	case *ast.Break:
		walk(n.Value, info)
	case *ast.Return:
		walk(n.Value, info)
	case *ast.FieldAccess:
		walk(n.Base, info)
	case *ast.TupleFieldAccess:
		walk(n.Base, info)
	case *ast.Index:
		walk(n.Base, info)
		walk(n.Index, info)
	case *ast.Block:
		for _, x := range n.Exprs {
			walk(x, info)
		}
	case *ast.NewStruct:
		for _, f := range n.Fields {
			walk(f.Value, info)
		}
	case *ast.EnumVariantExpr:
		for _, a := range n.Args {
			walk(a, info)
		}
	case *ast.ArrayLit:
		for _, x := range n.Elems {
			walk(x, info)
		}
	case *ast.TupleLit:
		for _, x := range n.Elems {
			walk(x, info)
		}
	case *ast.Range:
		walk(n.Start, info)
		walk(n.End, info)
	case *ast.Ref:
		walk(n.Expr, info)
	case *ast.RefMut:
		walk(n.Expr, info)
	case *ast.Deref:
		walk(n.Expr, info)
	case *ast.Closure:
		walk(n.Body, info)
	case *ast.Match:
		walk(n.Scrutinee, info)
		for _, arm := range n.Arms {
			walk(arm.Guard, info)
			walk(arm.Body, info)
		}
	case *ast.Quantifier:
		info.addQuantifier(n.Var + ":" + n.VarType.String())
		walk(n.Body, info)
	case *ast.Try:
		walk(n.Expr, info)
	}
}
