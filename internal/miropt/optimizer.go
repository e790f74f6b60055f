package miropt

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/mir"
)

// DefaultMaxIterations is the cap §4.G names for the fixed-point
// driver when the caller doesn't choose its own.
const DefaultMaxIterations = 10

// DefaultPasses returns the standard §4.G pipeline in order: constant
// folding, dead code elimination, copy propagation, branch
// simplification, then CSE (which needs pureFuncs to recognize
// `@pure`-annotated calls). The contract-based bounds pass is run
// separately by OptimizeProgram since it needs each function's source
// ast.FnDef alongside its lowered mir.Function.
func DefaultPasses(pureFuncs map[string]bool) []Pass {
	return []Pass{
		ConstantFold,
		DeadCodeElim,
		CopyPropagation,
		SimplifyBranches,
		CSE(pureFuncs),
	}
}

// Optimize iterates passes over fn until every pass reports no change
// in a full round, or maxIterations is reached (§4.G). maxIterations
// <= 0 means DefaultMaxIterations.
func Optimize(fn *mir.Function, passes []Pass, maxIterations int) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	for i := 0; i < maxIterations; i++ {
		changed := false
		for _, p := range passes {
			if p(fn) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// OptimizeProgram runs the full §4.G pipeline, including the
// contract-based bounds pass, over every lowered function in funcs.
// fnDefs maps a function name to the ast.FnDef its contracts came
// from (collectFnDefs includes impl-block methods); a function with no
// entry simply skips that one pass.
func OptimizeProgram(funcs map[string]*mir.Function, prog *ast.Program, maxIterations int) {
	pureFuncs := CollectPureFunctions(prog)
	passes := DefaultPasses(pureFuncs)
	fnDefs := collectFnDefs(prog)
	for name, fn := range funcs {
		Optimize(fn, passes, maxIterations)
		if fnDef, ok := fnDefs[name]; ok {
			if ContractBoundsFacts(fn, fnDef) {
				Optimize(fn, passes, maxIterations)
			}
		}
	}
}

func collectFnDefs(prog *ast.Program) map[string]*ast.FnDef {
	out := map[string]*ast.FnDef{}
	var visit func(ast.Item)
	visit = func(item ast.Item) {
		switch it := item.(type) {
		case *ast.FnDef:
			out[it.Name] = it
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
