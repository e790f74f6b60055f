package mir

import "github.com/zizixmas/bmb/internal/ast"

func isFloatType(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	return ok && p.Name == "f64"
}

func isStringType(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	return ok && p.Name == "String"
}

// chooseBinOp picks the MIR-level op for an ast.BinOp given the
// (already type-checked) type of its operands, per §4.F's "Binary…
// operators select the correct MirBinOp… based on the operand's MIR
// type (integer vs. float)". String `+` is handled separately by the
// caller (it lowers to a string_concat call, not an AssignBinOp).
func chooseBinOp(op ast.BinOp, operandType ast.Type) MirBinOp {
	isFloat := isFloatType(operandType)
	switch op {
	case ast.OpAdd:
		if isFloat {
			return BAddFloat
		}
		return BAddInt
	case ast.OpSub:
		if isFloat {
			return BSubFloat
		}
		return BSubInt
	case ast.OpMul:
		if isFloat {
			return BMulFloat
		}
		return BMulInt
	case ast.OpDiv:
		if isFloat {
			return BDivFloat
		}
		return BDivInt
	case ast.OpMod:
		return BModInt
	case ast.OpAddWrap:
		return BAddWrap
	case ast.OpSubWrap:
		return BSubWrap
	case ast.OpMulWrap:
		return BMulWrap
	case ast.OpAddChecked:
		return BAddChecked
	case ast.OpSubChecked:
		return BSubChecked
	case ast.OpMulChecked:
		return BMulChecked
	case ast.OpAddSat:
		return BAddSat
	case ast.OpSubSat:
		return BSubSat
	case ast.OpMulSat:
		return BMulSat
	case ast.OpEq:
		return BEq
	case ast.OpNe:
		return BNe
	case ast.OpLt:
		if isFloat {
			return BLtFloat
		}
		return BLtInt
	case ast.OpLe:
		if isFloat {
			return BLeFloat
		}
		return BLeInt
	case ast.OpGt:
		if isFloat {
			return BGtFloat
		}
		return BGtInt
	case ast.OpGe:
		if isFloat {
			return BGeFloat
		}
		return BGeInt
	case ast.OpAnd:
		return BAnd
	case ast.OpOr:
		return BOr
	case ast.OpImplies:
		return BImplies
	case ast.OpShl:
		return BShl
	case ast.OpShr:
		return BShr
	case ast.OpBAnd:
		return BBAnd
	case ast.OpBOr:
		return BBOr
	case ast.OpBXor:
		return BBXor
	}
	return BAddInt
}

func chooseUnaryOp(op ast.UnOp, operandType ast.Type) MirUnaryOp {
	switch op {
	case ast.OpNeg:
		if isFloatType(operandType) {
			return UNegFloat
		}
		return UNegInt
	case ast.OpNot:
		return UNot
	case ast.OpBNot:
		return UBNot
	}
	return UNot
}
