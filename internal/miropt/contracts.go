package miropt

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/mir"
)

// ContractBoundsFacts looks for a precondition shaped `i < len(a)` on
// fnDef and, for every AssignIndex in fn indexing the same array
// Place by the same index Place, records a Fact in fn.Facts noting the
// bounds check that indexing implies is already proven by the
// precondition (§4.G "contract-based: … the implicit bounds check (if
// present) becomes Unreachable-guarded. Records Facts in the function
// header.").
//
// This MIR's AssignIndex carries no separate guard instruction to
// rewrite to Unreachable — indexing is a single op, not a
// check-then-read pair — so there is nothing here to replace; the
// match is recorded as a Fact only, available to a later backend that
// does lower an explicit bounds check.
//
// The match is syntactic: only a direct `ident < len(ident)` shape is
// recognized, and only a directly-Ref'd index/base operand (not one
// reached through an intervening Copy) is matched against it. This
// narrows the set of subsumptions this pass can find without ever
// reporting a false one.
func ContractBoundsFacts(fn *mir.Function, fnDef *ast.FnDef) bool {
	changed := false
	for _, clause := range boundsClauses(fnDef) {
		for _, label := range fn.BlockOrder {
			blk := fn.Blocks[label]
			for _, instr := range blk.Instr {
				idx, ok := instr.(*mir.AssignIndex)
				if !ok {
					continue
				}
				if placeName(idx.Base) != clause.array || placeName(idx.Index) != clause.index {
					continue
				}
				fn.Facts = append(fn.Facts, mir.Fact{
					Block: label,
					Description: fmt.Sprintf(
						"index of %s[%s] subsumed by precondition %s < len(%s)",
						clause.array, clause.index, clause.index, clause.array),
				})
				changed = true
			}
		}
	}
	return changed
}

type boundsClause struct {
	index, array string
}

// boundsClauses extracts every `i < len(a)` shaped legacy `pre` clause
// or `where` contract from fnDef.
func boundsClauses(fnDef *ast.FnDef) []boundsClause {
	var out []boundsClause
	add := func(e ast.Expr) {
		if c, ok := asBoundsClause(e); ok {
			out = append(out, c)
		}
	}
	if fnDef.HasPre() {
		add(fnDef.Pre.Node)
	}
	for _, nc := range fnDef.Contracts {
		add(nc.Cond.Node)
	}
	return out
}

func asBoundsClause(e ast.Expr) (boundsClause, bool) {
	bin, ok := e.(*ast.Binary)
	if !ok || bin.Op != ast.OpLt {
		return boundsClause{}, false
	}
	idx, ok := bin.Left.(*ast.Ident)
	if !ok {
		return boundsClause{}, false
	}
	call, ok := bin.Right.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return boundsClause{}, false
	}
	callee, ok := call.Callee.(*ast.Ident)
	if !ok || callee.Name != "len" {
		return boundsClause{}, false
	}
	arr, ok := call.Args[0].(*ast.Ident)
	if !ok {
		return boundsClause{}, false
	}
	return boundsClause{index: idx.Name, array: arr.Name}, true
}

func placeName(op mir.Operand) string {
	r, ok := op.(*mir.Ref)
	if !ok {
		return ""
	}
	return r.Place.Name
}
