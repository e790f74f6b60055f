package types

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

// TypeError is one TYP### diagnostic (§7). Checker.Diagnostics
// accumulates these; CheckProgram returns the first as an error while
// keeping the rest available for machine-mode batch reporting.
type TypeError struct {
	Code    string
	Message string
	Span    ast.Span
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Code, e.Message)
}

// Report converts e into the shared errors.Report shape used by every
// phase (§7's machine-mode JSON record).
func (e *TypeError) Report() *errors.Report {
	span := e.Span
	return &errors.Report{
		Schema:  errors.ErrorV1,
		Code:    e.Code,
		Phase:   "typecheck",
		Message: e.Message,
		Span:    &span,
	}
}

func (c *Checker) errorf(code string, span ast.Span, format string, args ...interface{}) *TypeError {
	te := &TypeError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
	c.Diagnostics = append(c.Diagnostics, te)
	return te
}

func (c *Checker) unify(code string, span ast.Span, expected, got ast.Type) *TypeError {
	return c.errorf(code, span, "expected type %s, got %s", expected, got)
}
