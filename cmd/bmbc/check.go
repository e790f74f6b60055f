package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/diagnostics"
	"github.com/zizixmas/bmb/internal/errors"
	"github.com/zizixmas/bmb/internal/exhaust"
	"github.com/zizixmas/bmb/internal/mir"
	"github.com/zizixmas/bmb/internal/miropt"
	"github.com/zizixmas/bmb/internal/module"
	"github.com/zizixmas/bmb/internal/types"
)

// cmdCheck lexes, parses, type-checks and runs exhaustiveness checking
// over every .bmb file reachable from paths, returning the process
// exit code (0 clean, 1 on any error-severity diagnostic).
func cmdCheck(paths []string, jsonMode bool) int {
	logger, _, ok := runCheckPipeline(paths, jsonMode)
	if logger.WarningCount() > 0 && !jsonMode {
		fmt.Fprintf(os.Stderr, "%s %d warning(s)\n", yellow("⚠"), logger.WarningCount())
	}
	if !ok {
		return 1
	}
	if !jsonMode {
		fmt.Printf("%s no errors found\n", green("✓"))
	}
	return 0
}

// checkedUnit pairs a loaded unit with the checker that validated it,
// so verify can reuse both without re-parsing or re-checking.
type checkedUnit struct {
	unit *module.Unit
	chk  *types.Checker
}

// runCheckPipeline is the shared load+typecheck+exhaustiveness pass
// behind both `check` and `verify`.
func runCheckPipeline(paths []string, jsonMode bool) (*diagnostics.Logger, []checkedUnit, bool) {
	mode := diagnostics.ModeHuman
	if jsonMode {
		mode = diagnostics.ModeMachine
	}
	logger := diagnostics.NewLogger(os.Stdout, mode)

	files, err := collectBmbFiles(paths)
	if err != nil {
		logger.Report(errors.NewGeneric("resolve", err))
		return logger, nil, false
	}

	_, units, err := loadUnits(files)
	if err != nil {
		if rep, ok := errors.AsReport(err); ok {
			logger.Report(rep)
		} else {
			logger.Report(errors.NewGeneric("resolve", err))
		}
		return logger, nil, false
	}

	ok := true
	var checked []checkedUnit
	for _, u := range units {
		src := readSource(u.FilePath)
		logger.AddSource(u.FilePath, src)

		chk := types.CheckProgram(u.Program)
		for _, diag := range chk.Diagnostics {
			logger.Report(diag.Report())
		}
		reportExhaustiveness(logger, chk, u.Program)
		if len(chk.Diagnostics) == 0 {
			reportMirInvariants(logger, chk, u.Program)
		}
		reportUnusedImports(logger, u)
		checked = append(checked, checkedUnit{unit: u, chk: chk})
	}

	if logger.HasErrors() {
		ok = false
	}
	return logger, checked, ok
}

// reportExhaustiveness finds every match expression in prog's function
// bodies (contract clauses are not walked) and runs exhaust.Checker
// against it,
// reusing the scrutinee types internal/types already recorded in
// chk.Types during type checking rather than re-inferring them.
func reportExhaustiveness(logger *diagnostics.Logger, chk *types.Checker, prog *ast.Program) {
	lookup := func(name string) ([]ast.EnumVariantType, bool) {
		if e, ok := chk.Enums[name]; ok {
			return e.Variants, true
		}
		if e, ok := chk.GenericEnums[name]; ok {
			return e.Variants, true
		}
		return nil, false
	}
	checker := exhaust.NewChecker(lookup)

	for _, fn := range collectFnDefs(prog) {
		walkMatches(fn.Body, func(m *ast.Match) {
			scrutT, ok := chk.Types[m.Scrutinee]
			if !ok {
				return
			}
			rep := checker.CheckMatch(m.Arms, scrutT)
			for _, missing := range rep.MissingPatterns {
				span := m.Pos()
				logger.Report(&errors.Report{
					Schema:  errors.ErrorV1,
					Code:    errors.EXH001,
					Phase:   "exhaust",
					Message: fmt.Sprintf("match is not exhaustive, missing pattern %q", missing),
					Span:    &span,
				})
			}
			for _, idx := range rep.UnreachableArms {
				span := m.Arms[idx].Span
				logger.Report(&errors.Report{
					Schema:  errors.ErrorV1,
					Code:    errors.EXH002,
					Phase:   "exhaust",
					Message: "unreachable match arm",
					Span:    &span,
				})
			}
			if rep.HasGuardsWithoutFallback {
				span := m.Pos()
				logger.Report(&errors.Report{
					Schema:  errors.ErrorV1,
					Code:    errors.EXH003,
					Phase:   "exhaust",
					Message: "guarded arm has no unconditional fallback",
					Span:    &span,
				})
			}
		})
	}
}

// reportMirInvariants lowers prog to MIR, runs the §4.G optimizer over
// every function, then checks the result against §4.F/P5's MIR
// well-formedness invariants (single entry block, unique terminators,
// no undeclared places, no surviving Phi). Only called once a program
// has type-checked cleanly, since lowering assumes chk.Types already
// has every expression's type.
func reportMirInvariants(logger *diagnostics.Logger, chk *types.Checker, prog *ast.Program) {
	funcs := mir.LowerProgram(prog, chk)
	miropt.OptimizeProgram(funcs, prog, miropt.DefaultMaxIterations)
	for _, name := range sortedKeys(funcs) {
		for _, rep := range mir.ValidateInvariants(funcs[name]) {
			logger.Report(rep)
		}
	}
}

// reportUnusedImports queries u's Imports table on request (§4.C) and
// reports each finding as an RES006 warning carrying the import's own
// span, rather than the file-wide location a plain println would give.
func reportUnusedImports(logger *diagnostics.Logger, u *module.Unit) {
	for _, uw := range u.UnusedImports() {
		span := uw.Span
		logger.Report(&errors.Report{
			Schema:  errors.ErrorV1,
			Code:    errors.RES006,
			Phase:   "resolve",
			Message: fmt.Sprintf("unused import %q from %q", uw.Symbol, uw.Module),
			Span:    &span,
		})
	}
}

func sortedKeys(funcs map[string]*mir.Function) []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
