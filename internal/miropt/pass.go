// Package miropt runs the §4.G fixed-point optimizer over a lowered
// internal/mir.Function: constant folding, dead code elimination,
// copy propagation, branch simplification, common subexpression
// elimination, and a contract-based bounds-check subsumption pass.
package miropt

import "github.com/zizixmas/bmb/internal/mir"

// Pass is one optimization pass. It reports whether it changed fn, so
// the driver in optimizer.go knows whether to keep iterating.
type Pass func(fn *mir.Function) bool
