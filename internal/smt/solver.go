package smt

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Outcome is the verdict of running one Plan against a solver.
type Outcome int

const (
	Verified Outcome = iota
	Failed
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Plan, with a counterexample model when
// Failed and a human-readable reason when Unknown.
type Result struct {
	FnName  string
	Goal    string
	Outcome Outcome
	Model   []Assignment // set only when Outcome == Failed
	Reason  string       // set only when Outcome == Unknown
}

// Solver drives an external SMT-LIB solver process: each Check writes
// a full script to the child's stdin, closes it, and reads stdout to
// EOF. The driver imposes no timeout of its own; the wall clock is
// the solver's own `-T:<seconds>` flag, passed once at spawn time (§5).
type Solver struct {
	// Path to the solver executable. Resolved once via LookupSolver and
	// reused across every Check call.
	Path string
	// Timeout is the wall-clock budget handed to the solver via its
	// -T:<seconds> flag. Check does not separately enforce it; a solver
	// that ignores its own flag will simply run until it exits.
	Timeout time.Duration
}

// defaultSolverNames are tried in order by LookupSolver; BMB has no
// single canonical SMT backend, so the first one found on PATH wins.
var defaultSolverNames = []string{"z3", "cvc5", "cvc4"}

// LookupSolver resolves a usable solver executable from PATH. An
// empty preferred name tries defaultSolverNames in order. A nil
// return with a non-nil error means SolverNotAvailable: the caller
// should surface that up-stack distinctly from a verification
// failure, never attempt to spawn anything.
func LookupSolver(preferred string) (string, error) {
	candidates := defaultSolverNames
	if preferred != "" {
		candidates = []string{preferred}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("SolverNotAvailable: none of %s found on PATH", strings.Join(candidates, ", "))
}

// Check runs one Plan against the solver and classifies the result
// per §4.H step 3: unsat -> Verified, sat (with model) -> Failed,
// unknown/spawn error -> Unknown(reason). A Plan that already failed
// to translate is reported as Unknown without spawning a process.
// Check blocks on the child until it exits; it trusts the -T:<seconds>
// flag to bound that wait rather than racing its own timer against it
// (§5) — a solver built without that flag wired up will simply hang.
func (s *Solver) Check(p Plan) Result {
	if p.TranslateErr != nil {
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Unknown, Reason: p.TranslateErr.Error()}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	cmd := exec.Command(s.Path, fmt.Sprintf("-T:%d", seconds), "-in")
	cmd.Stdin = strings.NewReader(p.Script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Unknown, Reason: fmt.Sprintf("solver spawn failed: %v", err)}
	}

	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Unknown, Reason: fmt.Sprintf("solver process error: %v", err)}
		}
	}
	return interpretOutput(p, stdout.String(), stderr.String())
}

func interpretOutput(p Plan, stdout, stderr string) Result {
	verdict := firstVerdict(stdout)
	switch verdict {
	case "unsat":
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Verified}
	case "sat":
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Failed, Model: ParseModel(stdout)}
	case "unknown":
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Unknown, Reason: "solver returned unknown"}
	default:
		reason := strings.TrimSpace(stderr)
		if reason == "" {
			reason = "solver produced no recognizable verdict"
		}
		return Result{FnName: p.FnName, Goal: p.Goal.Name, Outcome: Unknown, Reason: reason}
	}
}

func firstVerdict(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		switch line {
		case "sat", "unsat", "unknown":
			return line
		}
	}
	return ""
}
