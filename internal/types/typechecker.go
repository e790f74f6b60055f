package types

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

// CheckProgram type-checks every item in prog (§4.D). It first
// registers every struct/enum/fn/alias/trait/extern declaration (so
// forward references and mutual recursion resolve), then checks each
// function body and every where/pre/post contract clause.
func CheckProgram(prog *ast.Program) *Checker {
	c := NewChecker()
	for _, item := range prog.Items {
		c.register(item)
	}
	for _, item := range prog.Items {
		c.checkItem(item)
	}
	return c
}

func (c *Checker) register(item ast.Item) {
	switch it := item.(type) {
	case *ast.FnDef:
		if len(it.TypeParams) > 0 {
			c.GenericFuncs[it.Name] = it
		} else {
			c.Funcs[it.Name] = it
		}
	case *ast.StructDef:
		if len(it.TypeParams) > 0 {
			c.GenericStructs[it.Name] = it
		} else {
			c.Structs[it.Name] = it
		}
	case *ast.EnumDef:
		if len(it.TypeParams) > 0 {
			c.GenericEnums[it.Name] = it
		} else {
			c.Enums[it.Name] = it
		}
	case *ast.TypeAlias:
		c.Aliases[it.Name] = it
	case *ast.TraitDef:
		c.Traits[it.Name] = it
	case *ast.ExternFn:
		c.Externs[it.Name] = it
	case *ast.ImplBlock:
		for _, fn := range it.Fns {
			c.register(fn)
		}
	}
}

func (c *Checker) checkItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FnDef:
		c.checkFn(it)
	case *ast.ImplBlock:
		for _, fn := range it.Fns {
			c.checkFn(fn)
		}
	}
}

// checkFn type-checks one function's parameter types, contracts and
// body against its declared return type.
func (c *Checker) checkFn(fn *ast.FnDef) {
	prevTP, prevRet := c.typeParams, c.retType
	c.typeParams = NewTypeParamEnv(fn.TypeParams)
	c.retType = fn.RetType
	defer func() { c.typeParams, c.retType = prevTP, prevRet }()

	env := NewEnv()
	for _, p := range fn.Params {
		env.Bind(p.Name, p.Type)
	}

	if fn.Pre.Node != nil {
		c.checkContractExpr(fn.Pre.Node, env, fn.Params, nil, "")
	}
	if fn.Post.Node != nil {
		c.checkContractExpr(fn.Post.Node, env, fn.Params, fn.RetType, fn.RetBinding)
	}
	for _, nc := range fn.Contracts {
		// where-block entries may reference ret/old(...) just like post.
		c.checkContractExpr(nc.Cond.Node, env, fn.Params, fn.RetType, fn.RetBinding)
	}

	if fn.Body != nil {
		c.CheckExpr(fn.Body, env, fn.RetType)
	}
}

// InferExpr computes e's type by the synthesis rules of §4.D, and
// records the result in c.Types so that later passes (internal/mir)
// can look up an already-checked expression's type without
// re-inferring it.
func (c *Checker) InferExpr(e ast.Expr, env *Env) ast.Type {
	t := c.inferExpr(e, env)
	c.Types[e] = t
	return t
}

func (c *Checker) inferExpr(e ast.Expr, env *Env) ast.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return &ast.Primitive{Name: "i64"}
	case *ast.FloatLit:
		return &ast.Primitive{Name: "f64"}
	case *ast.BoolLit:
		return boolType()
	case *ast.StringLit:
		return &ast.Primitive{Name: "String"}
	case *ast.CharLit:
		return &ast.Primitive{Name: "char"}
	case *ast.Ident:
		if t, ok := env.Lookup(n.Name); ok {
			return t
		}
		c.errorf(errors.TYP006, n.Span, "unbound variable %q", n.Name)
		return &ast.Primitive{Name: "Never"}
	case *ast.Binary:
		return c.inferBinary(n, env)
	case *ast.Unary:
		return c.inferUnary(n, env)
	case *ast.Cast:
		c.InferExpr(n.Expr, env)
		return n.Type
	case *ast.If:
		c.CheckExpr(n.Cond, env, boolType())
		thenT := c.InferExpr(n.Then, env)
		if n.Else == nil {
			return unitType()
		}
		c.CheckExpr(n.Else, env, thenT)
		return thenT
	case *ast.Let:
		valT := c.InferExpr(n.Value, env)
		if n.Type != nil {
			if !subtype(n.Type, valT) {
				c.unify(errors.TYP001, n.Span, n.Type, valT)
			}
			valT = n.Type
		}
		child := env.Child()
		child.Bind(n.Name, valT)
		return c.InferExpr(n.Body, child)
	case *ast.Assign:
		targetT := c.InferExpr(n.Target, env)
		c.CheckExpr(n.Value, env, targetT)
		return unitType()
	case *ast.While:
		c.CheckExpr(n.Cond, env, boolType())
		if n.Invariant != nil {
			c.CheckExpr(n.Invariant, env, boolType())
		}
		c.InferExpr(n.Body, env.Child())
		return unitType()
	case *ast.Loop:
		c.InferExpr(n.Body, env.Child())
		return unitType()
	case *ast.For:
		rangeT := c.InferExpr(n.Range, env)
		elemT := rangeElemType(rangeT)
		child := env.Child()
		child.Bind(n.Var, elemT)
		c.InferExpr(n.Body, child)
		return unitType()
	case *ast.Break:
		if n.Value != nil {
			c.InferExpr(n.Value, env)
		}
		return &ast.Primitive{Name: "Never"}
	case *ast.Continue:
		return &ast.Primitive{Name: "Never"}
	case *ast.Return:
		if n.Value != nil {
			c.CheckExpr(n.Value, env, c.retType)
		}
		return &ast.Primitive{Name: "Never"}
	case *ast.Call:
		return c.inferCall(n, env)
	case *ast.MethodCall:
		return c.inferMethodCall(n, env)
	case *ast.FieldAccess:
		return c.inferFieldAccess(n, env)
	case *ast.TupleFieldAccess:
		baseT := ast.BaseType(c.InferExpr(n.Base, env))
		if tt, ok := baseT.(*ast.TupleType); ok && n.Index >= 0 && n.Index < len(tt.Elems) {
			return tt.Elems[n.Index]
		}
		c.errorf(errors.TYP003, n.Span, "tuple has no field %d", n.Index)
		return &ast.Primitive{Name: "Never"}
	case *ast.Index:
		baseT := ast.BaseType(c.InferExpr(n.Base, env))
		c.CheckExpr(n.Index, env, &ast.Primitive{Name: "i64"})
		switch bt := baseT.(type) {
		case *ast.ArrayType:
			return bt.Elem
		}
		c.errorf(errors.TYP003, n.Span, "type %s cannot be indexed", baseT)
		return &ast.Primitive{Name: "Never"}
	case *ast.Block:
		return c.inferBlock(n, env)
	case *ast.NewStruct:
		return c.inferNewStruct(n, env)
	case *ast.EnumVariantExpr:
		return c.inferEnumVariant(n, env)
	case *ast.ArrayLit:
		if len(n.Elems) == 0 {
			return &ast.ArrayType{Elem: &ast.Primitive{Name: "Never"}, Size: 0}
		}
		elemT := c.InferExpr(n.Elems[0], env)
		for _, el := range n.Elems[1:] {
			c.CheckExpr(el, env, elemT)
		}
		return &ast.ArrayType{Elem: elemT, Size: int64(len(n.Elems))}
	case *ast.TupleLit:
		elems := make([]ast.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.InferExpr(el, env)
		}
		return &ast.TupleType{Elems: elems}
	case *ast.Range:
		startT := c.InferExpr(n.Start, env)
		c.CheckExpr(n.End, env, startT)
		return &ast.RangeType{Elem: startT}
	case *ast.Ref:
		return &ast.RefType{Elem: c.InferExpr(n.Expr, env)}
	case *ast.RefMut:
		return &ast.RefMutType{Elem: c.InferExpr(n.Expr, env)}
	case *ast.Deref:
		t := ast.BaseType(c.InferExpr(n.Expr, env))
		switch rt := t.(type) {
		case *ast.RefType:
			return rt.Elem
		case *ast.RefMutType:
			return rt.Elem
		}
		c.errorf(errors.TYP001, n.Span, "cannot dereference non-reference type %s", t)
		return &ast.Primitive{Name: "Never"}
	case *ast.Closure:
		child := env.Child()
		params := make([]ast.Type, len(n.Params))
		for i, p := range n.Params {
			child.Bind(p.Name, p.Type)
			params[i] = p.Type
		}
		retT := c.InferExpr(n.Body, child)
		if n.RetTy != nil {
			retT = n.RetTy
		}
		return &ast.FnType{Params: params, Ret: retT}
	case *ast.Match:
		return c.inferMatch(n, env)
	case *ast.Ret:
		return c.retType
	case *ast.It:
		if c.itType != nil {
			return c.itType
		}
		return &ast.Primitive{Name: "Never"}
	case *ast.StateRef:
		return c.InferExpr(n.Expr, env)
	case *ast.Quantifier:
		child := env.Child()
		child.Bind(n.Var, n.VarType)
		c.CheckExpr(n.Body, child, boolType())
		return boolType()
	case *ast.Todo:
		return &ast.Primitive{Name: "Never"}
	case *ast.Try:
		inner := ast.BaseType(c.InferExpr(n.Expr, env))
		if g, ok := inner.(*ast.Generic); ok && len(g.TypeArgs) > 0 {
			switch g.Name {
			case "Result":
				return g.TypeArgs[0]
			case "Option":
				return g.TypeArgs[0]
			}
		}
		c.errorf(errors.TYP001, n.Span, "`?` requires Option<T> or Result<T,E>, got %s", inner)
		return &ast.Primitive{Name: "Never"}
	}
	return &ast.Primitive{Name: "Never"}
}

// CheckExpr checks e against an expected type, falling back to
// inference-then-compare except where the expected type narrows the
// synthesis rule itself (if/match branches, todo, closures, and integer
// literals, which take an expected integer type instead of i64).
func (c *Checker) CheckExpr(e ast.Expr, env *Env, expected ast.Type) {
	switch n := e.(type) {
	case *ast.Todo:
		return // unifies with any expected type
	case *ast.IntLit:
		if isInteger(expected) {
			c.Types[e] = expected
			return
		}
	case *ast.If:
		c.CheckExpr(n.Cond, env, boolType())
		c.CheckExpr(n.Then, env, expected)
		if n.Else != nil {
			c.CheckExpr(n.Else, env, expected)
		}
		return
	case *ast.Block:
		c.checkBlockAgainst(n, env, expected)
		return
	case *ast.Match:
		c.checkMatchAgainst(n, env, expected)
		return
	}
	got := c.InferExpr(e, env)
	if !subtype(expected, got) {
		c.unify(errors.TYP001, e.Pos(), expected, got)
	}
}

func (c *Checker) inferBlock(n *ast.Block, env *Env) ast.Type {
	child := env.Child()
	var last ast.Type = unitType()
	for _, x := range n.Exprs {
		last = c.InferExpr(x, child)
	}
	return last
}

func (c *Checker) checkBlockAgainst(n *ast.Block, env *Env, expected ast.Type) {
	if len(n.Exprs) == 0 {
		return
	}
	child := env.Child()
	for _, x := range n.Exprs[:len(n.Exprs)-1] {
		c.InferExpr(x, child)
	}
	c.CheckExpr(n.Exprs[len(n.Exprs)-1], child, expected)
}

// subtype implements §3/§4.D's refinement subtyping rule: a
// RefinedType is a subtype of its Base, and Base-vs-Base comparison
// falls back to structural type equality (no width/variance subtyping
// beyond refinements exists in BMB).
func subtype(expected, got ast.Type) bool {
	if _, ok := got.(*ast.Primitive); ok {
		if p, ok2 := got.(*ast.Primitive); ok2 && p.Name == "Never" {
			return true // `Never` (break/return/continue) is bottom, subtype of everything
		}
	}
	return ast.TypeEqual(ast.BaseType(expected), ast.BaseType(got))
}

func rangeElemType(t ast.Type) ast.Type {
	if rt, ok := ast.BaseType(t).(*ast.RangeType); ok {
		return rt.Elem
	}
	return &ast.Primitive{Name: "i64"}
}
