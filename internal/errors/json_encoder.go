package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorV1 identifies the machine-mode diagnostic schema version (§7).
const ErrorV1 = "bmb.error/v1"

// Fix represents a suggested fix with a confidence score.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Encoded is one machine-mode diagnostic record, emitted as a single
// line of JSON per §7 ("in machine mode, a single-line JSON record per
// diagnostic is emitted").
type Encoded struct {
	Schema     string      `json:"schema"`
	SID        string      `json:"sid"`
	Phase      string      `json:"phase"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Fix        Fix         `json:"fix"`
	Context    interface{} `json:"context,omitempty"`
	SourceSpan string      `json:"source_span,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
}

func newEncoded(sid, phase, code, msg string, ctx interface{}) Encoded {
	if sid == "" {
		sid = "unknown"
	}
	return Encoded{
		Schema:  ErrorV1,
		SID:     sid,
		Phase:   phase,
		Code:    code,
		Message: msg,
		Fix:     Fix{Suggestion: "", Confidence: 0.0},
		Context: ctx,
	}
}

// NewLex creates a lexer-phase diagnostic.
func NewLex(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "lex", code, msg, ctx)
}

// NewParse creates a parser-phase diagnostic.
func NewParse(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "parse", code, msg, ctx)
}

// NewResolve creates a resolver-phase diagnostic.
func NewResolve(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "resolve", code, msg, ctx)
}

// NewTypecheck creates a type-checker diagnostic.
func NewTypecheck(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "typecheck", code, msg, ctx)
}

// NewExhaustiveness creates an exhaustiveness-checker diagnostic.
func NewExhaustiveness(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "exhaust", code, msg, ctx)
}

// NewMir creates a MIR-lowering diagnostic.
func NewMir(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "mir", code, msg, ctx)
}

// NewSmt creates an SMT-translation/solver diagnostic.
func NewSmt(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "smt", code, msg, ctx)
}

// NewVerify creates a contract-verifier diagnostic.
func NewVerify(sid, code, msg string, ctx interface{}) Encoded {
	return newEncoded(sid, "verify", code, msg, ctx)
}

// WithFix attaches a suggested fix to the diagnostic.
func (e Encoded) WithFix(suggestion string, confidence float64) Encoded {
	e.Fix = Fix{Suggestion: suggestion, Confidence: confidence}
	return e
}

// WithSourceSpan attaches a rendered "file:line:col" location.
func (e Encoded) WithSourceSpan(span string) Encoded {
	e.SourceSpan = span
	return e
}

// WithMeta attaches arbitrary structured metadata.
func (e Encoded) WithMeta(meta interface{}) Encoded {
	e.Meta = meta
	return e
}

// ToJSON renders the diagnostic as a single compact JSON line. Struct
// field order and encoding/json's sorted map-key output make this
// deterministic across runs without a bespoke marshaler.
func (e Encoded) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		fallback := Encoded{
			Schema:  ErrorV1,
			Phase:   e.Phase,
			Message: "encoding failed",
			Meta:    map[string]string{"original_error": err.Error()},
		}
		return json.Marshal(fallback)
	}
	return data, nil
}

// ErrorContext carries phase-specific structured context alongside a message.
type ErrorContext struct {
	Constraints []string          `json:"constraints,omitempty"`
	Decisions   []string          `json:"decisions,omitempty"`
	TraceSlice  string            `json:"trace_slice,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// SafeEncodeError encodes any error as a machine-mode diagnostic line,
// never panicking even if the error has no structured form.
func SafeEncodeError(err error, phase string) []byte {
	if err == nil {
		return nil
	}
	if rep, ok := AsReport(err); ok {
		return rep.mustEncode()
	}
	encoded := newEncoded("unknown", phase, "ERR000", err.Error(), nil)
	data, _ := encoded.ToJSON()
	return data
}

// FormatSourceSpan formats a file position as "file:line:col".
func FormatSourceSpan(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
