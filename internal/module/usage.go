package module

import (
	"sort"

	"github.com/zizixmas/bmb/internal/ast"
)

// UnusedImports reports every symbol u.Imports records that never
// appears elsewhere in u.Program (§7's "unused import" warning). It is
// computed on request, not as a side effect of loading, so a caller
// that doesn't care about warnings never pays for the walk.
func (u *Unit) UnusedImports() []UnusedImport {
	used := collectIdentUses(u.Program)

	var names []string
	for sym := range u.Imports {
		names = append(names, sym)
	}
	sort.Strings(names)

	var out []UnusedImport
	for _, sym := range names {
		if used[sym] {
			continue
		}
		binding := u.Imports[sym]
		out = append(out, UnusedImport{Symbol: sym, Module: binding.Module, Span: binding.Span})
	}
	return out
}

// collectIdentUses walks every expression reachable from prog's items
// and records every plain name referenced: identifiers, enum names in
// `Enum::Variant` construction and patterns, and struct names in `new`
// expressions and struct patterns. It is a conservative approximation
// used only to flag definitely-unused imports (§7's "unused import"
// warning) — it never needs to be exact about *how* a name is used,
// only whether it appears at all.
func collectIdentUses(prog *ast.Program) map[string]bool {
	used := map[string]bool{}
	for _, item := range prog.Items {
		walkItem(item, used)
	}
	return used
}

func walkItem(item ast.Item, used map[string]bool) {
	switch it := item.(type) {
	case *ast.FnDef:
		for _, p := range it.Params {
			walkType(p.Type, used)
		}
		walkType(it.RetType, used)
		if it.Pre.Node != nil {
			walkExpr(it.Pre.Node, used)
		}
		if it.Post.Node != nil {
			walkExpr(it.Post.Node, used)
		}
		for _, c := range it.Contracts {
			if c.Cond.Node != nil {
				walkExpr(c.Cond.Node, used)
			}
		}
		if it.Body != nil {
			walkExpr(it.Body, used)
		}
	case *ast.StructDef:
		for _, f := range it.Fields {
			walkType(f.Type, used)
		}
	case *ast.EnumDef:
		for _, v := range it.Variants {
			for _, t := range v.Fields {
				walkType(t, used)
			}
		}
	case *ast.TypeAlias:
		walkType(it.Target, used)
	case *ast.ExternFn:
		for _, p := range it.Params {
			walkType(p.Type, used)
		}
		walkType(it.RetType, used)
	case *ast.TraitDef:
		for _, m := range it.Methods {
			for _, p := range m.Params {
				walkType(p.Type, used)
			}
			walkType(m.RetType, used)
		}
	case *ast.ImplBlock:
		walkType(it.ForType, used)
		for _, fn := range it.Fns {
			walkItem(fn, used)
		}
	}
}

func walkType(t ast.Type, used map[string]bool) {
	switch ty := t.(type) {
	case nil:
	case *ast.Named:
		used[ty.Name] = true
	case *ast.Generic:
		used[ty.Name] = true
		for _, a := range ty.TypeArgs {
			walkType(a, used)
		}
	case *ast.RefType:
		walkType(ty.Elem, used)
	case *ast.RefMutType:
		walkType(ty.Elem, used)
	case *ast.NullableType:
		walkType(ty.Elem, used)
	case *ast.ArrayType:
		walkType(ty.Elem, used)
	case *ast.TupleType:
		for _, e := range ty.Elems {
			walkType(e, used)
		}
	case *ast.FnType:
		for _, p := range ty.Params {
			walkType(p, used)
		}
		walkType(ty.Ret, used)
	case *ast.RefinedType:
		walkType(ty.Base, used)
		for _, c := range ty.Constraints {
			walkExpr(c.Node, used)
		}
	}
}

func walkExpr(e ast.Expr, used map[string]bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Ident:
		used[n.Name] = true
	case *ast.Binary:
		walkExpr(n.Left, used)
		walkExpr(n.Right, used)
	case *ast.Unary:
		walkExpr(n.Expr, used)
	case *ast.Cast:
		walkExpr(n.Expr, used)
		walkType(n.Type, used)
	case *ast.If:
		walkExpr(n.Cond, used)
		walkExpr(n.Then, used)
		walkExpr(n.Else, used)
	case *ast.Let:
		walkType(n.Type, used)
		walkExpr(n.Value, used)
		walkExpr(n.Body, used)
	case *ast.Assign:
		walkExpr(n.Target, used)
		walkExpr(n.Value, used)
	case *ast.While:
		walkExpr(n.Cond, used)
		walkExpr(n.Invariant, used)
		walkExpr(n.Body, used)
	case *ast.Loop:
		walkExpr(n.Body, used)
	case *ast.For:
		walkExpr(n.Range, used)
		walkExpr(n.Body, used)
	case *ast.Break:
		walkExpr(n.Value, used)
	case *ast.Continue:
	case *ast.Return:
		walkExpr(n.Value, used)
	case *ast.Call:
		walkExpr(n.Callee, used)
		for _, a := range n.Args {
			walkExpr(a, used)
		}
	case *ast.MethodCall:
		walkExpr(n.Receiver, used)
		for _, a := range n.Args {
			walkExpr(a, used)
		}
	case *ast.FieldAccess:
		walkExpr(n.Base, used)
	case *ast.TupleFieldAccess:
		walkExpr(n.Base, used)
	case *ast.Index:
		walkExpr(n.Base, used)
		walkExpr(n.Index, used)
	case *ast.Block:
		for _, x := range n.Exprs {
			walkExpr(x, used)
		}
	case *ast.NewStruct:
		used[n.Name] = true
		for _, f := range n.Fields {
			walkExpr(f.Value, used)
		}
	case *ast.EnumVariantExpr:
		if n.EnumName != "" {
			used[n.EnumName] = true
		}
		for _, a := range n.Args {
			walkExpr(a, used)
		}
	case *ast.ArrayLit:
		for _, x := range n.Elems {
			walkExpr(x, used)
		}
	case *ast.TupleLit:
		for _, x := range n.Elems {
			walkExpr(x, used)
		}
	case *ast.Range:
		walkExpr(n.Start, used)
		walkExpr(n.End, used)
	case *ast.Ref:
		walkExpr(n.Expr, used)
	case *ast.RefMut:
		walkExpr(n.Expr, used)
	case *ast.Deref:
		walkExpr(n.Expr, used)
	case *ast.Closure:
		for _, p := range n.Params {
			walkType(p.Type, used)
		}
		walkType(n.RetTy, used)
		walkExpr(n.Body, used)
	case *ast.Match:
		walkExpr(n.Scrutinee, used)
		for _, arm := range n.Arms {
			walkPattern(arm.Pattern, used)
			walkExpr(arm.Guard, used)
			walkExpr(arm.Body, used)
		}
	case *ast.Ret:
	case *ast.It:
	case *ast.StateRef:
		walkExpr(n.Expr, used)
	case *ast.Quantifier:
		walkType(n.VarType, used)
		walkExpr(n.Body, used)
	case *ast.Todo:
	case *ast.Try:
		walkExpr(n.Expr, used)
	}
}

func walkPattern(p ast.Pattern, used map[string]bool) {
	switch n := p.(type) {
	case nil:
	case *ast.WildcardPattern:
	case *ast.VarPattern:
	case *ast.LitPattern:
		walkExpr(n.Value, used)
	case *ast.RangePattern:
		walkExpr(n.Start, used)
		walkExpr(n.End, used)
	case *ast.VariantPattern:
		if n.EnumName != "" {
			used[n.EnumName] = true
		}
		for _, sp := range n.SubPats {
			walkPattern(sp, used)
		}
	case *ast.StructPattern:
		used[n.Name] = true
		for _, f := range n.Fields {
			walkPattern(f.Pattern, used)
		}
	case *ast.OrPattern:
		for _, alt := range n.Alts {
			walkPattern(alt, used)
		}
	case *ast.BindingPattern:
		walkPattern(n.Sub, used)
	case *ast.TuplePattern:
		for _, el := range n.Elems {
			walkPattern(el, used)
		}
	case *ast.ArrayPattern:
		for _, el := range n.Elems {
			walkPattern(el, used)
		}
	case *ast.ArrayRestPattern:
		for _, el := range n.Before {
			walkPattern(el, used)
		}
		for _, el := range n.After {
			walkPattern(el, used)
		}
	}
}
