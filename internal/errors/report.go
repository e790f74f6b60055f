package errors

import (
	"encoding/json"
	"errors"

	"github.com/zizixmas/bmb/internal/ast"
)

// Report is the canonical structured diagnostic for BMB. Every phase
// builder (lex/parse/resolve/typecheck/exhaust/mir/smt/verify) returns
// a *Report, which call sites wrap as a ReportError to cross Go's error
// interface while keeping the structure recoverable via AsReport.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// ReportError wraps a Report so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error for normal Go propagation.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a Report as JSON, sorted keys, either compact or indented.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Report) mustEncode() []byte {
	e := newEncoded("unknown", r.Phase, r.Code, r.Message, r.Data)
	if r.Fix != nil {
		e = e.WithFix(r.Fix.Suggestion, r.Fix.Confidence)
	}
	if r.Span != nil {
		e = e.WithSourceSpan(r.Span.String())
	}
	data, _ := e.ToJSON()
	return data
}

// NewGeneric wraps an arbitrary Go error as a Report when a phase has
// no more specific builder for the failure it hit.
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  ErrorV1,
		Code:    "ERR000",
		Phase:   phase,
		Message: err.Error(),
		Data:    map[string]any{},
	}
}
