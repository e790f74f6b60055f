package types

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

// inferBinary implements §4.D's arithmetic/comparison/logical rules:
// `+` on String is concatenation, arithmetic requires matching
// numeric operands, comparisons yield bool, and/or/implies require
// bool operands.
func (c *Checker) inferBinary(n *ast.Binary, env *Env) ast.Type {
	lt := c.InferExpr(n.Left, env)

	switch n.Op {
	case ast.OpAnd, ast.OpOr, ast.OpImplies:
		c.CheckExpr(n.Left, env, boolType())
		c.CheckExpr(n.Right, env, boolType())
		return boolType()
	case ast.OpEq, ast.OpNe:
		c.CheckExpr(n.Right, env, lt)
		return boolType()
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		c.CheckExpr(n.Right, env, lt)
		if !isNumeric(lt) && !isString(lt) {
			c.errorf(errors.TYP001, n.Span, "cannot compare type %s", lt)
		}
		return boolType()
	case ast.OpAdd:
		if isString(lt) {
			c.CheckExpr(n.Right, env, lt)
			return lt
		}
		c.CheckExpr(n.Right, env, lt)
		if !isNumeric(lt) {
			c.errorf(errors.TYP001, n.Span, "`+` requires numeric or String operands, got %s", lt)
		}
		return lt
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
		ast.OpAddWrap, ast.OpSubWrap, ast.OpMulWrap,
		ast.OpAddChecked, ast.OpSubChecked, ast.OpMulChecked,
		ast.OpAddSat, ast.OpSubSat, ast.OpMulSat:
		c.CheckExpr(n.Right, env, lt)
		if !isNumeric(lt) {
			c.errorf(errors.TYP001, n.Span, "arithmetic requires numeric operands, got %s", lt)
		}
		return lt
	case ast.OpShl, ast.OpShr, ast.OpBAnd, ast.OpBOr, ast.OpBXor:
		c.CheckExpr(n.Right, env, lt)
		if !isInteger(lt) {
			c.errorf(errors.TYP001, n.Span, "bitwise operators require integer operands, got %s", lt)
		}
		return lt
	}
	return lt
}

func (c *Checker) inferUnary(n *ast.Unary, env *Env) ast.Type {
	t := c.InferExpr(n.Expr, env)
	switch n.Op {
	case ast.OpNeg:
		if !isNumeric(t) {
			c.errorf(errors.TYP001, n.Span, "unary `-` requires a numeric operand, got %s", t)
		}
		return t
	case ast.OpNot:
		c.CheckExpr(n.Expr, env, boolType())
		return boolType()
	case ast.OpBNot:
		if !isInteger(t) {
			c.errorf(errors.TYP001, n.Span, "`bnot` requires an integer operand, got %s", t)
		}
		return t
	}
	return t
}
