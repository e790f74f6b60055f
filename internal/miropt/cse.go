package miropt

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/mir"
)

// CollectPureFunctions scans prog for top-level functions and impl
// methods carrying a `@pure` attribute, so CSE knows which AssignCall
// instructions are safe to hash-cons alongside BinOp/UnaryOp (§4.G
// "CSE: hash-cons pure BinOp/UnaryOp/Call-to-@pure within a block").
func CollectPureFunctions(prog *ast.Program) map[string]bool {
	pure := map[string]bool{}
	var visit func(ast.Item)
	visit = func(item ast.Item) {
		switch it := item.(type) {
		case *ast.FnDef:
			for _, a := range it.ItemAttrs() {
				if a.Name == "pure" {
					pure[it.Name] = true
				}
			}
		case *ast.ImplBlock:
			for _, fn := range it.Fns {
				visit(fn)
			}
		}
	}
	for _, item := range prog.Items {
		visit(item)
	}
	return pure
}

// CSE returns a Pass that hash-conses pure BinOp/UnaryOp instructions
// and calls to a function named in pureFuncs, within a single block: a
// later instruction computing the same operation over the same
// already-seen operands is rewritten into a Copy of the first result.
func CSE(pureFuncs map[string]bool) Pass {
	return func(fn *mir.Function) bool {
		changed := false
		for _, label := range fn.BlockOrder {
			blk := fn.Blocks[label]
			seen := map[string]mir.Place{}
			for i, instr := range blk.Instr {
				key, ok := cseKey(instr, pureFuncs)
				if !ok {
					continue
				}
				if prior, ok := seen[key]; ok {
					dest, _ := destOf(instr)
					blk.Instr[i] = &mir.AssignCopy{Dest: dest, Src: &mir.Ref{Place: prior}}
					changed = true
					continue
				}
				if dest, ok := destOf(instr); ok {
					seen[key] = dest
				}
			}
		}
		return changed
	}
}

func cseKey(instr mir.Instr, pureFuncs map[string]bool) (string, bool) {
	switch in := instr.(type) {
	case *mir.AssignBinOp:
		return fmt.Sprintf("bin:%d:%s:%s", in.Op, operandKey(in.Left), operandKey(in.Right)), true
	case *mir.AssignUnaryOp:
		return fmt.Sprintf("un:%d:%s", in.Op, operandKey(in.Src)), true
	case *mir.AssignCall:
		if in.Dest == nil || !pureFuncs[in.Func] {
			return "", false
		}
		key := "call:" + in.Func
		for _, a := range in.Args {
			key += ":" + operandKey(a)
		}
		return key, true
	}
	return "", false
}

func operandKey(op mir.Operand) string {
	switch o := op.(type) {
	case *mir.Ref:
		return "ref:" + o.Place.Name
	case *mir.Constant:
		return "const:" + fmt.Sprintf("%v", o.Value)
	}
	return ""
}
