// Package verify orchestrates internal/smt across a whole program and
// reports per-function outcomes, plus the additional static checks
// §4.I layers on top of plain contract verification (§4.I).
package verify

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/smt"
	"github.com/zizixmas/bmb/internal/types"
)

// Severity classifies a Finding the way §4.I's table does.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Finding is one static check result beyond plain goal verification:
// a duplicate/trivial/unsatisfiable contract, a call-site conflict, or
// a @trust record.
type Finding struct {
	Check    string
	Message  string
	Severity Severity
}

// GoalResult is one contract goal's verification outcome, reusing
// smt.Outcome's Verified/Failed/Unknown vocabulary.
type GoalResult struct {
	Goal    string
	Outcome smt.Outcome
	Model   []smt.Assignment
	Reason  string
}

// FunctionReport is everything §4.I collects about one function.
type FunctionReport struct {
	FnName   string
	Trusted  bool
	TrustMsg string // set when Trusted, the @trust "reason" text
	Goals    []GoalResult
	Findings []Finding
}

// ProgramReport aggregates every function's report. Strict controls
// whether a Warning-severity Finding should be treated as blocking by
// the invoker; the verifier itself never upgrades a warning to an
// error on its own (§4.I: "never upgrade to errors unless strict mode
// is selected by the invoker").
type ProgramReport struct {
	Functions []*FunctionReport
	Strict    bool
}

// HasBlockingFindings reports whether any function's findings should
// stop the invoker's pipeline: always true for SeverityError, true for
// SeverityWarning only when r.Strict is set.
func (r *ProgramReport) HasBlockingFindings() bool {
	for _, fr := range r.Functions {
		for _, f := range fr.Findings {
			if f.Severity == SeverityError {
				return true
			}
			if f.Severity == SeverityWarning && r.Strict {
				return true
			}
		}
	}
	return false
}

// Verifier runs §4.H/§4.I over a checked program. Solver is the
// smt.Solver each goal is checked against; NewVerifier resolves its
// path via LookupSolver up front, before any goal is run.
type Verifier struct {
	Checker *types.Checker
	Solver  *smt.Solver
	Strict  bool
}

// NewVerifier resolves a solver via smt.LookupSolver (preferredSolver
// may be "" to try the default candidates) and returns a ready
// Verifier, or an error if none is available — the caller should
// surface that as SolverNotAvailable up-stack rather than attempt
// verification at all.
func NewVerifier(chk *types.Checker, preferredSolver string, timeout int, strict bool) (*Verifier, error) {
	path, err := smt.LookupSolver(preferredSolver)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		Checker: chk,
		Solver:  &smt.Solver{Path: path, Timeout: time.Duration(timeout) * time.Second},
		Strict:  strict,
	}, nil
}

// VerifyProgram runs VerifyFunction concurrently across every function
// in fnDefs (§5 notes the core itself is single-threaded and
// synchronous; this concurrency lives in the orchestration layer that
// drives many independent, side-effect-free solver invocations, not in
// the compilation core proper). Each function's solver calls are
// independent of every other function's, so no shared state needs
// protecting beyond the result slice itself.
func (v *Verifier) VerifyProgram(fnDefs []*ast.FnDef) *ProgramReport {
	reports := make([]*FunctionReport, len(fnDefs))
	var mu sync.Mutex
	var g errgroup.Group
	for i, fn := range fnDefs {
		i, fn := i, fn
		g.Go(func() error {
			report := v.VerifyFunction(fn)
			mu.Lock()
			reports[i] = report
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // VerifyFunction never returns an error; failures surface as Unknown outcomes

	byName := map[string]*FunctionReport{}
	for _, r := range reports {
		byName[r.FnName] = r
	}
	for callerName, findings := range v.CallSiteConflictFindings(fnDefs) {
		if r, ok := byName[callerName]; ok {
			r.Findings = append(r.Findings, findings...)
		}
	}

	return &ProgramReport{Functions: reports, Strict: v.Strict}
}

// VerifyFunction runs every contract goal on fn plus the additional
// §4.I static checks. A @trust "reason" attribute short-circuits all
// goal checking and records Trusted/Info instead (§4.I table).
func (v *Verifier) VerifyFunction(fn *ast.FnDef) *FunctionReport {
	report := &FunctionReport{FnName: fn.Name}

	if reason, trusted := trustReason(fn); trusted {
		report.Trusted = true
		report.TrustMsg = reason
		report.Findings = append(report.Findings, Finding{
			Check:    "trust",
			Message:  "all goals skipped: " + reason,
			Severity: SeverityInfo,
		})
		return report
	}

	plans := smt.BuildPlans(v.Checker, fn)
	for _, p := range plans {
		if p.TranslateErr != nil {
			report.Goals = append(report.Goals, GoalResult{
				Goal:    p.Goal.Name,
				Outcome: smt.Unknown,
				Reason:  p.TranslateErr.Error(),
			})
			continue
		}
		result := v.Solver.Check(p)
		report.Goals = append(report.Goals, GoalResult{
			Goal:    result.Goal,
			Outcome: result.Outcome,
			Model:   result.Model,
			Reason:  result.Reason,
		})
	}

	report.Findings = append(report.Findings, v.duplicateContractFindings(fn)...)
	report.Findings = append(report.Findings, v.trivialContractFindings(fn)...)
	report.Findings = append(report.Findings, v.unsatPreconditionFindings(fn)...)
	return report
}

func trustReason(fn *ast.FnDef) (string, bool) {
	for _, attr := range fn.ItemAttrs() {
		if attr.Name == "trust" {
			return attr.Reason, true
		}
	}
	return "", false
}
