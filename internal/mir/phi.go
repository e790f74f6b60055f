package mir

// eliminatePhis runs the φ-placement pass described in §4.F: every
// Phi's destination was already allocated as an ordinary function
// local by freshTemp at the point it was created, so "allocate as a
// local" is already satisfied; this pass only needs to (b) insert a
// Copy/Const into that destination immediately before each
// predecessor's terminator, then drop the Phi. Since Block keeps
// terminators separate from the instruction list, appending to a
// predecessor's Instr slice always lands "immediately before" its
// Term by construction.
func eliminatePhis(fn *Function) {
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		kept := blk.Instr[:0:0]
		for _, instr := range blk.Instr {
			phi, ok := instr.(*Phi)
			if !ok {
				kept = append(kept, instr)
				continue
			}
			for predLabel, val := range phi.Incoming {
				pred, ok := fn.Blocks[predLabel]
				if !ok {
					continue
				}
				pred.Instr = append(pred.Instr, copyOrConst(phi.Dest, val))
			}
		}
		blk.Instr = kept
	}
}

func copyOrConst(dest Place, val Operand) Instr {
	if c, ok := val.(*Constant); ok {
		return &AssignConst{Dest: dest, Value: c.Value}
	}
	return &AssignCopy{Dest: dest, Src: val}
}
