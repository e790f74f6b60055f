// Package exhaust implements BMB's match-exhaustiveness check (§4.E):
// a usefulness algorithm over a constructor-set model of the
// scrutinee's type, reporting unreachable arms, missing patterns (as
// minimal witnesses) and guard-only coverage.
package exhaust

import "github.com/zizixmas/bmb/internal/ast"

// EnumLookup resolves an enum name to its variant list, used to build
// the constructor signature for enum-typed scrutinees. Both
// non-generic and generic enum tables satisfy this the same way: only
// variant names/arities matter for exhaustiveness, not type
// arguments (§9's generic-enum substitution note is a typechecking
// concern, not an exhaustiveness one — the set of constructors for
// `Option<T>` is {Some, None} regardless of T).
type EnumLookup func(name string) (variants []ast.EnumVariantType, ok bool)

// Report is the result of checking one match expression.
type Report struct {
	UnreachableArms          []int // arm indices (0-based) that can never be reached
	MissingPatterns          []string
	HasGuardsWithoutFallback bool
}

// Checker runs exhaustiveness checks against a set of enum
// declarations.
type Checker struct {
	Lookup EnumLookup
}

// NewChecker builds a Checker backed by lookup.
func NewChecker(lookup EnumLookup) *Checker {
	return &Checker{Lookup: lookup}
}

// CheckMatch runs the usefulness algorithm over arms's patterns
// against scrutineeType, arm by arm, in order (§4.E).
func (c *Checker) CheckMatch(arms []ast.MatchArm, scrutineeType ast.Type) *Report {
	rep := &Report{}
	var seen [][]ast.Pattern // matrix of previously-seen (single-column) rows

	for i, arm := range arms {
		expanded := expandOr(arm.Pattern)
		rowUseful := false
		for _, pat := range expanded {
			if c.useful(seen, []ast.Type{scrutineeType}, []ast.Pattern{pat}) {
				rowUseful = true
			}
			seen = append(seen, []ast.Pattern{pat})
		}
		if !rowUseful {
			rep.UnreachableArms = append(rep.UnreachableArms, i)
		}
		if arm.Guard != nil && !hasUnguardedFallback(arms, i) {
			rep.HasGuardsWithoutFallback = true
		}
	}

	wildcard := []ast.Pattern{&ast.WildcardPattern{}}
	if c.useful(seen, []ast.Type{scrutineeType}, wildcard) {
		for _, row := range c.missingWitnessRows(seen, []ast.Type{scrutineeType}) {
			rep.MissingPatterns = append(rep.MissingPatterns, row[0])
		}
	}
	return rep
}

// hasUnguardedFallback reports whether some later arm (or the guarded
// arm itself, trivially false since it has a guard) covers the
// remaining space unconditionally. A precise answer requires the same
// usefulness machinery restricted to arms after i; for the common case
// (a bare wildcard/var arm with no guard later in the list) this is
// sufficient and keeps the warning's intent — "this guard might be the
// last line of defense" — without re-deriving full exhaustiveness here.
func hasUnguardedFallback(arms []ast.MatchArm, i int) bool {
	for j := i + 1; j < len(arms); j++ {
		if arms[j].Guard != nil {
			continue
		}
		for _, p := range expandOr(arms[j].Pattern) {
			if isCatchAll(p) {
				return true
			}
		}
	}
	return false
}

func isCatchAll(p ast.Pattern) bool {
	switch n := p.(type) {
	case *ast.WildcardPattern, *ast.VarPattern:
		return true
	case *ast.BindingPattern:
		return isCatchAll(n.Sub)
	}
	return false
}

func expandOr(p ast.Pattern) []ast.Pattern {
	if or, ok := p.(*ast.OrPattern); ok {
		var out []ast.Pattern
		for _, alt := range or.Alts {
			out = append(out, expandOr(alt)...)
		}
		return out
	}
	return []ast.Pattern{p}
}
