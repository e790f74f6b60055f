package types

import "github.com/zizixmas/bmb/internal/ast"

// checkContractExpr type-checks one pre/post/where clause (§4.D
// "contracts"): the clause itself must be bool; in a post-context
// (retType non-nil) `ret` and the declared RetBinding name both refer
// to the function's return value, and `old(e)`/`e.pre` two-state
// references are legal anywhere a plain expression is.
func (c *Checker) checkContractExpr(cond ast.Expr, paramEnv *Env, params []ast.Param, retType ast.Type, retBinding string) {
	if cond == nil {
		return
	}
	child := paramEnv.Child()
	for _, p := range params {
		child.Bind(p.Name, p.Type)
	}
	if retType != nil {
		child.Bind("ret", retType)
		if retBinding != "" {
			child.Bind(retBinding, retType)
		}
	}
	c.CheckExpr(cond, child, boolType())
}

// CheckRefinedType validates every constraint of a RefinedType against
// its Base: each constraint must be bool, with `it` standing for the
// refined value itself (§9).
func (c *Checker) CheckRefinedType(rt *ast.RefinedType, env *Env) {
	prevIt := c.itType
	c.itType = rt.Base
	defer func() { c.itType = prevIt }()
	for _, constraint := range rt.Constraints {
		c.CheckExpr(constraint.Node, env, boolType())
	}
}
