package mir

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/types"
)

// LowerProgram lowers every function body in prog (including impl
// block methods) keyed by name. chk must already have checked prog
// via types.CheckProgram so its Types side table is populated.
func LowerProgram(prog *ast.Program, chk *types.Checker) map[string]*Function {
	out := map[string]*Function{}
	var visit func(ast.Item)
	visit = func(item ast.Item) {
		switch it := item.(type) {
		case *ast.FnDef:
			out[it.Name] = Lower(it, chk)
		case *ast.ImplBlock:
			for _, fn := range it.Fns {
				visit(fn)
			}
		}
	}
	for _, item := range prog.Items {
		visit(item)
	}
	return out
}
