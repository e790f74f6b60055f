package miropt

import "github.com/zizixmas/bmb/internal/mir"

// DeadCodeElim removes instructions whose destination Place is never
// read anywhere in the function and which have no side effect (§4.G).
func DeadCodeElim(fn *mir.Function) bool {
	used := usedPlaces(fn)
	changed := false
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		kept := blk.Instr[:0:0]
		for _, instr := range blk.Instr {
			if hasSideEffect(instr) {
				kept = append(kept, instr)
				continue
			}
			dest, ok := destOf(instr)
			if ok && !used[dest.Name] {
				changed = true
				continue
			}
			kept = append(kept, instr)
		}
		blk.Instr = kept
	}
	return changed
}
