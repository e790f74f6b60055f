package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zizixmas/bmb/internal/config"
	"github.com/zizixmas/bmb/internal/smt"
	"github.com/zizixmas/bmb/internal/verify"
)

// cmdVerify runs check, then for every unit that typechecked cleanly,
// verifies each function's contract goals against project's solver.
func cmdVerify(paths []string, project *config.Project, jsonMode bool) int {
	logger, checked, ok := runCheckPipeline(paths, jsonMode)
	if !ok {
		return 1
	}

	anyBlocking := false
	var resolvedSolverPath string
	for _, cu := range checked {
		verifier, err := verify.NewVerifier(cu.chk, project.Solver.Path, project.Solver.TimeoutSeconds, project.Strict)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
		if resolvedSolverPath == "" {
			resolvedSolverPath = verifier.Solver.Path
		}

		fnDefs := collectFnDefs(cu.unit.Program)
		if len(fnDefs) == 0 {
			continue
		}
		report := verifier.VerifyProgram(fnDefs)
		printProgramReport(cu.unit.FilePath, report)
		if report.HasBlockingFindings() {
			anyBlocking = true
		}
		for _, fr := range report.Functions {
			for _, g := range fr.Goals {
				if g.Outcome == smt.Failed {
					anyBlocking = true
				}
				if g.Outcome == smt.Unknown && project.Strict {
					anyBlocking = true
				}
			}
		}
	}

	if resolvedSolverPath != "" {
		writeLockFile(project, resolvedSolverPath)
	}

	if logger.HasErrors() || anyBlocking {
		return 1
	}
	fmt.Printf("%s all contracts verified\n", green("✓"))
	return 0
}

// writeLockFile records the solver actually used for this run next to
// the project's index directory, so a later reader can tell a
// Verified outcome apart from one produced by a since-replaced solver
// build. A failure here is reported but never turns a verify run that
// otherwise succeeded into a failing one.
func writeLockFile(project *config.Project, solverPath string) {
	lock := config.LockFile{
		SolverPath:     solverPath,
		SolverVersion:  smt.Version(solverPath),
		TimeoutSeconds: project.Solver.TimeoutSeconds,
		Strict:         project.Strict,
		GeneratedAt:    time.Now().UTC(),
	}
	path := filepath.Join(filepath.Dir(project.IndexDir), "bmb.lock.yaml")
	if err := config.WriteLockFile(path, lock); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", yellow("Warning"), err)
	}
}

func printProgramReport(file string, report *verify.ProgramReport) {
	for _, fr := range report.Functions {
		if fr.Trusted {
			fmt.Printf("%s %s::%s trusted (%s)\n", yellow("○"), file, fr.FnName, fr.TrustMsg)
			continue
		}
		for _, g := range fr.Goals {
			switch g.Outcome {
			case smt.Verified:
				fmt.Printf("%s %s::%s[%s] verified\n", green("✓"), file, fr.FnName, g.Goal)
			case smt.Failed:
				fmt.Printf("%s %s::%s[%s] failed: %s\n", red("✗"), file, fr.FnName, g.Goal, g.Reason)
				for _, a := range g.Model {
					fmt.Printf("    %s = %s\n", a.Name, a.Value)
				}
			case smt.Unknown:
				fmt.Printf("%s %s::%s[%s] unknown: %s\n", yellow("?"), file, fr.FnName, g.Goal, g.Reason)
			}
		}
		for _, f := range fr.Findings {
			glyph := yellow("⚠")
			if f.Severity == verify.SeverityError {
				glyph = red("✗")
			}
			fmt.Printf("  %s %s::%s %s: %s\n", glyph, file, fr.FnName, f.Check, f.Message)
		}
	}
}
