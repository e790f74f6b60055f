package mir

import "github.com/zizixmas/bmb/internal/ast"

// lowerIf lowers `if cond then else` per §4.F: Branch on cond to
// then/else blocks; the merge block receives each branch's result
// through a Phi (eliminated into predecessor Copies by phi.go before
// Lower returns).
func (b *builder) lowerIf(n *ast.If) Operand {
	cond := b.lowerExpr(n.Cond)
	thenLabel := b.freshLabel("then")
	elseLabel := b.freshLabel("else")
	mergeLabel := b.freshLabel("merge")
	b.finish(&Branch{Cond: cond, Then: thenLabel, Else: elseLabel})

	b.setCur(b.newBlockNamed(thenLabel))
	thenVal := b.lowerExpr(n.Then)
	thenEnd := b.cur.Label
	b.finish(&Goto{Target: mergeLabel})

	b.setCur(b.newBlockNamed(elseLabel))
	var elseVal Operand = unitConst()
	if n.Else != nil {
		elseVal = b.lowerExpr(n.Else)
	}
	elseEnd := b.cur.Label
	b.finish(&Goto{Target: mergeLabel})

	b.setCur(b.newBlockNamed(mergeLabel))
	resultT := b.typeOf(n)
	if isUnit(resultT) {
		return unitConst()
	}
	dest := b.freshTemp(resultT)
	b.emit(&Phi{Dest: dest, Incoming: map[string]Operand{thenEnd: thenVal, elseEnd: elseVal}})
	return &Ref{Place: dest}
}

// lowerWhile lowers `while cond { body }`. n.Invariant is a
// verification artifact (§4.H), not runtime code, so it is not
// lowered here.
func (b *builder) lowerWhile(n *ast.While) Operand {
	condLabel := b.freshLabel("while_cond")
	bodyLabel := b.freshLabel("while_body")
	exitLabel := b.freshLabel("while_exit")
	b.finish(&Goto{Target: condLabel})

	b.setCur(b.newBlockNamed(condLabel))
	cond := b.lowerExpr(n.Cond)
	b.finish(&Branch{Cond: cond, Then: bodyLabel, Else: exitLabel})

	b.setCur(b.newBlockNamed(bodyLabel))
	b.loops = append(b.loops, loopFrame{condLabel: condLabel, exitLabel: exitLabel})
	b.lowerExpr(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if b.cur != nil && b.cur.Term == nil {
		b.finish(&Goto{Target: condLabel})
	}

	b.setCur(b.newBlockNamed(exitLabel))
	return unitConst()
}

// lowerLoop lowers `loop { body }`, an unconditional loop whose only
// exit is `break`.
func (b *builder) lowerLoop(n *ast.Loop) Operand {
	bodyLabel := b.freshLabel("loop_body")
	exitLabel := b.freshLabel("loop_exit")
	b.finish(&Goto{Target: bodyLabel})

	b.setCur(b.newBlockNamed(bodyLabel))
	b.loops = append(b.loops, loopFrame{condLabel: bodyLabel, exitLabel: exitLabel})
	b.lowerExpr(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if b.cur != nil && b.cur.Term == nil {
		b.finish(&Goto{Target: bodyLabel})
	}

	b.setCur(b.newBlockNamed(exitLabel))
	return unitConst()
}

// lowerFor reduces `for v in start..end { body }` to a while pattern
// with an induction variable incremented by one at the end of the
// body (§4.F).
func (b *builder) lowerFor(n *ast.For) Operand {
	start, end, inclusive := b.rangeBounds(n.Range)
	elemT := elemTypeOfRange(b.typeOf(n.Range))

	indName := b.uniqueLocalName(n.Var)
	indPlace := Place{Name: indName, Type: elemT}
	b.fn.Locals[indName] = elemT
	b.storeInto(indPlace, start)

	endPlace := b.freshTemp(elemT)
	b.storeInto(endPlace, end)

	condLabel := b.freshLabel("for_cond")
	bodyLabel := b.freshLabel("for_body")
	exitLabel := b.freshLabel("for_exit")
	b.finish(&Goto{Target: condLabel})

	b.setCur(b.newBlockNamed(condLabel))
	cmpOp := BLtInt
	switch {
	case inclusive && isFloatType(elemT):
		cmpOp = BLeFloat
	case inclusive:
		cmpOp = BLeInt
	case isFloatType(elemT):
		cmpOp = BLtFloat
	}
	cmpDest := b.freshTemp(&ast.Primitive{Name: "bool"})
	b.emit(&AssignBinOp{Dest: cmpDest, Op: cmpOp, Left: &Ref{Place: indPlace}, Right: &Ref{Place: endPlace}})
	b.finish(&Branch{Cond: &Ref{Place: cmpDest}, Then: bodyLabel, Else: exitLabel})

	b.setCur(b.newBlockNamed(bodyLabel))
	prevEnv := b.env
	b.env = b.env.child()
	b.env.bind(n.Var, indPlace)
	b.loops = append(b.loops, loopFrame{condLabel: condLabel, exitLabel: exitLabel})
	b.lowerExpr(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.env = prevEnv
	if b.cur != nil && b.cur.Term == nil {
		one := &Constant{Value: &ast.IntLit{Value: 1}, Type: elemT}
		b.emit(&AssignBinOp{Dest: indPlace, Op: BAddInt, Left: &Ref{Place: indPlace}, Right: one})
		b.finish(&Goto{Target: condLabel})
	}

	b.setCur(b.newBlockNamed(exitLabel))
	return unitConst()
}

func (b *builder) storeInto(dest Place, src Operand) {
	if c, ok := src.(*Constant); ok {
		b.emit(&AssignConst{Dest: dest, Value: c.Value})
	} else {
		b.emit(&AssignCopy{Dest: dest, Src: src})
	}
}

// rangeBounds extracts a for-loop's start/end/inclusive operands. A
// literal `a..b` range is lowered directly, avoiding ever
// materializing a Range value; any other range-typed expression is
// lowered once and its start/end read back out by position (tuple
// fields 0 and 1), the same order AssignAggregate{Kind:"range"} uses
// to build one.
func (b *builder) rangeBounds(e ast.Expr) (start, end Operand, inclusive bool) {
	if r, ok := e.(*ast.Range); ok {
		return b.lowerExpr(r.Start), b.lowerExpr(r.End), r.Inclusive
	}
	val := b.lowerExpr(e)
	elemT := elemTypeOfRange(b.typeOf(e))
	startDest := b.freshTemp(elemT)
	b.emit(&AssignTupleField{Dest: startDest, Base: val, Index: 0})
	endDest := b.freshTemp(elemT)
	b.emit(&AssignTupleField{Dest: endDest, Base: val, Index: 1})
	return &Ref{Place: startDest}, &Ref{Place: endDest}, false
}

func elemTypeOfRange(t ast.Type) ast.Type {
	if rt, ok := ast.BaseType(t).(*ast.RangeType); ok {
		return rt.Elem
	}
	return &ast.Primitive{Name: "i64"}
}

// lowerBreak jumps to the innermost loop's exit block. Its Value (if
// any) is lowered for side effects only: the checker types every loop
// construct as Unit regardless of break payloads, so no merge is
// needed at the exit block.
func (b *builder) lowerBreak(n *ast.Break) Operand {
	if n.Value != nil {
		b.lowerExpr(n.Value)
	}
	if len(b.loops) == 0 {
		return unitConst()
	}
	target := b.loops[len(b.loops)-1].exitLabel
	b.finish(&Goto{Target: target})
	b.setCur(b.newBlock("after_break"))
	return unitConst()
}

func (b *builder) lowerContinue(n *ast.Continue) Operand {
	if len(b.loops) == 0 {
		return unitConst()
	}
	target := b.loops[len(b.loops)-1].condLabel
	b.finish(&Goto{Target: target})
	b.setCur(b.newBlock("after_continue"))
	return unitConst()
}

func (b *builder) lowerReturn(n *ast.Return) Operand {
	var val Operand = unitConst()
	if n.Value != nil {
		val = b.lowerExpr(n.Value)
	}
	b.finish(&Return{Value: val})
	b.setCur(b.newBlock("after_return"))
	return unitConst()
}
