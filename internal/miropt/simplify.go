package miropt

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/mir"
)

// SimplifyBranches rewrites a Branch whose Then and Else targets are
// identical into a Goto, and a Branch whose condition has already
// folded to a Constant bool into a Goto to the taken side (§4.G).
func SimplifyBranches(fn *mir.Function) bool {
	changed := false
	for _, label := range fn.BlockOrder {
		blk := fn.Blocks[label]
		br, ok := blk.Term.(*mir.Branch)
		if !ok {
			continue
		}
		if br.Then == br.Else {
			blk.Term = &mir.Goto{Target: br.Then}
			changed = true
			continue
		}
		c, ok := br.Cond.(*mir.Constant)
		if !ok {
			continue
		}
		bl, ok := c.Value.(*ast.BoolLit)
		if !ok {
			continue
		}
		target := br.Else
		if bl.Value {
			target = br.Then
		}
		blk.Term = &mir.Goto{Target: target}
		changed = true
	}
	return changed
}
