package miropt

import "github.com/zizixmas/bmb/internal/mir"

// CopyPropagation replaces reads of dest, after a `dest = Copy src` or
// `dest = Const v` instruction, with src (or the constant) directly
// (§4.G forwards both: an AssignConst is a copy whose source happens
// to be a literal rather than another Place). Substitution is scoped
// to a single block's straight-line instruction list plus its
// terminator: a Place copied along one predecessor path may hold a
// different value by the time a successor block reads it, so
// propagation never crosses a block boundary.
func CopyPropagation(fn *mir.Function) bool {
	changed := false
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		subst := map[string]mir.Operand{}
		replace := func(op mir.Operand) mir.Operand {
			r, ok := op.(*mir.Ref)
			if !ok {
				return op
			}
			repl, ok := subst[r.Place.Name]
			if !ok {
				return op
			}
			changed = true
			return repl
		}
		for _, instr := range blk.Instr {
			mapOperands(instr, replace)
			switch in := instr.(type) {
			case *mir.AssignCopy:
				subst[in.Dest.Name] = in.Src
			case *mir.AssignConst:
				subst[in.Dest.Name] = &mir.Constant{Value: in.Value, Type: in.Dest.Type}
			default:
				if dest, ok := destOf(instr); ok {
					delete(subst, dest.Name)
				}
			}
		}
		switch t := blk.Term.(type) {
		case *mir.Branch:
			t.Cond = replace(t.Cond)
		case *mir.Switch:
			t.Discriminant = replace(t.Discriminant)
		case *mir.Return:
			t.Value = replace(t.Value)
		}
	}
	return changed
}
