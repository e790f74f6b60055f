package miropt

import "github.com/zizixmas/bmb/internal/mir"

// destOf returns the Place an instruction writes, if any. Instructions
// with no destination (WriteField, WriteIndex) report ok=false, as
// does an AssignCall whose Dest is nil (a discarded unit-typed call).
func destOf(instr mir.Instr) (mir.Place, bool) {
	switch in := instr.(type) {
	case *mir.AssignConst:
		return in.Dest, true
	case *mir.AssignCopy:
		return in.Dest, true
	case *mir.AssignBinOp:
		return in.Dest, true
	case *mir.AssignUnaryOp:
		return in.Dest, true
	case *mir.AssignCall:
		if in.Dest == nil {
			return mir.Place{}, false
		}
		return *in.Dest, true
	case *mir.AssignMethodCall:
		return in.Dest, true
	case *mir.AssignField:
		return in.Dest, true
	case *mir.AssignTupleField:
		return in.Dest, true
	case *mir.AssignIndex:
		return in.Dest, true
	case *mir.AssignVariantPayload:
		return in.Dest, true
	case *mir.AssignIsVariant:
		return in.Dest, true
	case *mir.AssignAggregate:
		return in.Dest, true
	case *mir.AssignRef:
		return in.Dest, true
	case *mir.Phi:
		return in.Dest, true
	}
	return mir.Place{}, false
}

// hasSideEffect reports whether removing this instruction (because its
// Place is unused) would change program behavior. A call may do work
// beyond producing its return value; WriteField/WriteIndex exist only
// for their mutation. Every other instruction is a pure projection or
// pure arithmetic op over values the checker has already validated, so
// it is safe to drop when unused.
func hasSideEffect(instr mir.Instr) bool {
	switch instr.(type) {
	case *mir.AssignCall, *mir.AssignMethodCall, *mir.WriteField, *mir.WriteIndex:
		return true
	}
	return false
}

// mapOperands applies f to every Operand field an instruction reads,
// replacing it in place. Used both to rewrite operands (copy
// propagation) and, by passing a side-effecting identity function, to
// visit them read-only (computing used-place sets for DCE).
func mapOperands(instr mir.Instr, f func(mir.Operand) mir.Operand) {
	switch in := instr.(type) {
	case *mir.AssignCopy:
		in.Src = f(in.Src)
	case *mir.AssignBinOp:
		in.Left = f(in.Left)
		in.Right = f(in.Right)
	case *mir.AssignUnaryOp:
		in.Src = f(in.Src)
	case *mir.AssignCall:
		for i := range in.Args {
			in.Args[i] = f(in.Args[i])
		}
	case *mir.AssignMethodCall:
		in.Recv = f(in.Recv)
		for i := range in.Args {
			in.Args[i] = f(in.Args[i])
		}
	case *mir.AssignField:
		in.Base = f(in.Base)
	case *mir.AssignTupleField:
		in.Base = f(in.Base)
	case *mir.AssignIndex:
		in.Base = f(in.Base)
		in.Index = f(in.Index)
	case *mir.AssignVariantPayload:
		in.Base = f(in.Base)
	case *mir.AssignIsVariant:
		in.Base = f(in.Base)
	case *mir.AssignAggregate:
		for i := range in.Fields {
			in.Fields[i] = f(in.Fields[i])
		}
	case *mir.AssignRef:
		in.Src = f(in.Src)
	case *mir.WriteField:
		in.Value = f(in.Value)
	case *mir.WriteIndex:
		in.Index = f(in.Index)
		in.Value = f(in.Value)
	case *mir.Phi:
		for k, v := range in.Incoming {
			in.Incoming[k] = f(v)
		}
	}
}

// usedPlaces collects the name of every Place read anywhere in fn,
// across instruction operands and terminators.
func usedPlaces(fn *mir.Function) map[string]bool {
	used := map[string]bool{}
	mark := func(op mir.Operand) mir.Operand {
		if r, ok := op.(*mir.Ref); ok {
			used[r.Place.Name] = true
		}
		return op
	}
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		for _, instr := range blk.Instr {
			mapOperands(instr, mark)
		}
		switch t := blk.Term.(type) {
		case *mir.Branch:
			mark(t.Cond)
		case *mir.Switch:
			mark(t.Discriminant)
		case *mir.Return:
			mark(t.Value)
		}
	}
	return used
}
