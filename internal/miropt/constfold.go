package miropt

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/mir"
)

// ConstantFold evaluates AssignBinOp/AssignUnaryOp instructions whose
// operands are both already Constants, replacing them with an
// AssignConst (§4.G). Branch-on-constant propagation is handled
// separately by SimplifyBranches, since a fold here only ever touches
// instructions, not terminators.
//
// Integer overflow-aware variants (wrap/checked/saturating) are left
// unfolded: evaluating them correctly needs the operand's exact bit
// width (i32 vs. i64 vs. u32 vs. u64), which this instruction alone
// doesn't carry, and folding them with plain arithmetic could silently
// produce the wrong overflow behavior. Division and modulo by a
// constant zero are likewise left unfolded so the runtime trap still
// happens at the original instruction.
func ConstantFold(fn *mir.Function) bool {
	changed := false
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		for i, instr := range blk.Instr {
			switch in := instr.(type) {
			case *mir.AssignBinOp:
				if v, ok := foldBinOp(in.Op, in.Left, in.Right); ok {
					blk.Instr[i] = &mir.AssignConst{Dest: in.Dest, Value: v}
					changed = true
				}
			case *mir.AssignUnaryOp:
				if v, ok := foldUnaryOp(in.Op, in.Src); ok {
					blk.Instr[i] = &mir.AssignConst{Dest: in.Dest, Value: v}
					changed = true
				}
			}
		}
	}
	return changed
}

func constOperand(op mir.Operand) (*mir.Constant, bool) {
	c, ok := op.(*mir.Constant)
	return c, ok
}

func asInt(c *mir.Constant) (int64, bool) {
	lit, ok := c.Value.(*ast.IntLit)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

func asFloat(c *mir.Constant) (float64, bool) {
	switch lit := c.Value.(type) {
	case *ast.FloatLit:
		return lit.Value, true
	case *ast.IntLit:
		return float64(lit.Value), true
	}
	return 0, false
}

func asBool(c *mir.Constant) (bool, bool) {
	lit, ok := c.Value.(*ast.BoolLit)
	if !ok {
		return false, false
	}
	return lit.Value, true
}

func foldBinOp(op mir.MirBinOp, leftOp, rightOp mir.Operand) (ast.Expr, bool) {
	left, ok := constOperand(leftOp)
	if !ok {
		return nil, false
	}
	right, ok := constOperand(rightOp)
	if !ok {
		return nil, false
	}
	switch op {
	case mir.BAddInt, mir.BSubInt, mir.BMulInt, mir.BDivInt, mir.BModInt,
		mir.BShl, mir.BShr, mir.BBAnd, mir.BBOr, mir.BBXor:
		l, ok1 := asInt(left)
		r, ok2 := asInt(right)
		if !ok1 || !ok2 {
			return nil, false
		}
		v, ok := evalIntOp(op, l, r)
		if !ok {
			return nil, false
		}
		return &ast.IntLit{Value: v}, true
	case mir.BAddFloat, mir.BSubFloat, mir.BMulFloat, mir.BDivFloat:
		l, ok1 := asFloat(left)
		r, ok2 := asFloat(right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return &ast.FloatLit{Value: evalFloatOp(op, l, r)}, true
	case mir.BLtInt, mir.BLeInt, mir.BGtInt, mir.BGeInt:
		l, ok1 := asInt(left)
		r, ok2 := asInt(right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return &ast.BoolLit{Value: evalIntCmp(op, l, r)}, true
	case mir.BLtFloat, mir.BLeFloat, mir.BGtFloat, mir.BGeFloat:
		l, ok1 := asFloat(left)
		r, ok2 := asFloat(right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return &ast.BoolLit{Value: evalFloatCmp(op, l, r)}, true
	case mir.BEq, mir.BNe:
		eq, ok := literalsEqual(left.Value, right.Value)
		if !ok {
			return nil, false
		}
		if op == mir.BNe {
			eq = !eq
		}
		return &ast.BoolLit{Value: eq}, true
	case mir.BAnd, mir.BOr, mir.BImplies:
		l, ok1 := asBool(left)
		r, ok2 := asBool(right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return &ast.BoolLit{Value: evalLogic(op, l, r)}, true
	}
	return nil, false
}

func foldUnaryOp(op mir.MirUnaryOp, srcOp mir.Operand) (ast.Expr, bool) {
	c, ok := constOperand(srcOp)
	if !ok {
		return nil, false
	}
	switch op {
	case mir.UNegInt:
		v, ok := asInt(c)
		if !ok {
			return nil, false
		}
		return &ast.IntLit{Value: -v}, true
	case mir.UNegFloat:
		v, ok := asFloat(c)
		if !ok {
			return nil, false
		}
		return &ast.FloatLit{Value: -v}, true
	case mir.UNot:
		v, ok := asBool(c)
		if !ok {
			return nil, false
		}
		return &ast.BoolLit{Value: !v}, true
	case mir.UBNot:
		v, ok := asInt(c)
		if !ok {
			return nil, false
		}
		return &ast.IntLit{Value: ^v}, true
	}
	return nil, false
}

func evalIntOp(op mir.MirBinOp, l, r int64) (int64, bool) {
	switch op {
	case mir.BAddInt:
		return l + r, true
	case mir.BSubInt:
		return l - r, true
	case mir.BMulInt:
		return l * r, true
	case mir.BDivInt:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case mir.BModInt:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case mir.BShl:
		return l << uint(r), true
	case mir.BShr:
		return l >> uint(r), true
	case mir.BBAnd:
		return l & r, true
	case mir.BBOr:
		return l | r, true
	case mir.BBXor:
		return l ^ r, true
	}
	return 0, false
}

func evalFloatOp(op mir.MirBinOp, l, r float64) float64 {
	switch op {
	case mir.BAddFloat:
		return l + r
	case mir.BSubFloat:
		return l - r
	case mir.BMulFloat:
		return l * r
	case mir.BDivFloat:
		return l / r
	}
	return 0
}

func evalIntCmp(op mir.MirBinOp, l, r int64) bool {
	switch op {
	case mir.BLtInt:
		return l < r
	case mir.BLeInt:
		return l <= r
	case mir.BGtInt:
		return l > r
	case mir.BGeInt:
		return l >= r
	}
	return false
}

func evalFloatCmp(op mir.MirBinOp, l, r float64) bool {
	switch op {
	case mir.BLtFloat:
		return l < r
	case mir.BLeFloat:
		return l <= r
	case mir.BGtFloat:
		return l > r
	case mir.BGeFloat:
		return l >= r
	}
	return false
}

func evalLogic(op mir.MirBinOp, l, r bool) bool {
	switch op {
	case mir.BAnd:
		return l && r
	case mir.BOr:
		return l || r
	case mir.BImplies:
		return !l || r
	}
	return false
}

func literalsEqual(a, b ast.Expr) (bool, bool) {
	switch av := a.(type) {
	case *ast.IntLit:
		bv, ok := b.(*ast.IntLit)
		if !ok {
			return false, false
		}
		return av.Value == bv.Value, true
	case *ast.FloatLit:
		bv, ok := b.(*ast.FloatLit)
		if !ok {
			return false, false
		}
		return av.Value == bv.Value, true
	case *ast.BoolLit:
		bv, ok := b.(*ast.BoolLit)
		if !ok {
			return false, false
		}
		return av.Value == bv.Value, true
	case *ast.StringLit:
		bv, ok := b.(*ast.StringLit)
		if !ok {
			return false, false
		}
		return av.Value == bv.Value, true
	case *ast.CharLit:
		bv, ok := b.(*ast.CharLit)
		if !ok {
			return false, false
		}
		return av.Value == bv.Value, true
	}
	return false, false
}
