package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTypecheckEncoding(t *testing.T) {
	err := NewTypecheck("N#42", TYP001, "type mismatch", nil)

	if err.Schema != ErrorV1 {
		t.Errorf("expected schema %s, got %s", ErrorV1, err.Schema)
	}
	if err.Phase != "typecheck" {
		t.Errorf("expected phase typecheck, got %s", err.Phase)
	}
	if err.Code != TYP001 {
		t.Errorf("expected code %s, got %s", TYP001, err.Code)
	}
	if err.SID != "N#42" {
		t.Errorf("expected SID N#42, got %s", err.SID)
	}

	err2 := NewTypecheck("", TYP006, "unbound variable", nil)
	if err2.SID != "unknown" {
		t.Errorf("expected SID unknown for empty input, got %s", err2.SID)
	}
}

func TestNewPhaseBuilders(t *testing.T) {
	tests := []struct {
		name  string
		enc   Encoded
		phase string
	}{
		{"lex", NewLex("s", LEX001, "bad byte", nil), "lex"},
		{"parse", NewParse("s", PAR001, "unexpected token", nil), "parse"},
		{"resolve", NewResolve("s", RES001, "module not found", nil), "resolve"},
		{"exhaust", NewExhaustiveness("s", EXH001, "missing patterns", nil), "exhaust"},
		{"mir", NewMir("s", MIR001, "bad cfg", nil), "mir"},
		{"smt", NewSmt("s", SMT002, "spawn failed", nil), "smt"},
		{"verify", NewVerify("s", VER001, "not provable", nil), "verify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.enc.Phase != tt.phase {
				t.Errorf("expected phase %s, got %s", tt.phase, tt.enc.Phase)
			}
		})
	}
}

func TestWithFix(t *testing.T) {
	err := NewTypecheck("N#1", TYP007, "missing type annotation", nil)
	err = err.WithFix("add a return type annotation", 0.9)

	if err.Fix.Suggestion != "add a return type annotation" {
		t.Errorf("expected fix suggestion, got %s", err.Fix.Suggestion)
	}
	if err.Fix.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", err.Fix.Confidence)
	}
}

func TestWithSourceSpan(t *testing.T) {
	err := NewResolve("N#2", RES001, "module not found", nil)
	err = err.WithSourceSpan("main.bmb:10:5")

	if err.SourceSpan != "main.bmb:10:5" {
		t.Errorf("expected source span main.bmb:10:5, got %s", err.SourceSpan)
	}
}

func TestWithMeta(t *testing.T) {
	meta := map[string]string{"hint": "check the module path", "severity": "error"}

	err := NewResolve("N#3", RES003, "import cycle", nil)
	err = err.WithMeta(meta)

	if err.Meta == nil {
		t.Error("expected meta to be set")
	}
}

func TestEncodedToJSON(t *testing.T) {
	ctx := ErrorContext{
		Constraints: []string{"x >= 0"},
		Decisions:   []string{"checked refinement obligation separately"},
	}

	err := NewVerify("N#42", VER004, "tautological contract", ctx).
		WithFix("remove the redundant clause", 0.85).
		WithSourceSpan("test.bmb:5:10")

	jsonData, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON failed: %v", jsonErr)
	}

	var result map[string]interface{}
	if parseErr := json.Unmarshal(jsonData, &result); parseErr != nil {
		t.Fatalf("failed to parse JSON: %v", parseErr)
	}

	if result["schema"] != ErrorV1 {
		t.Errorf("expected schema %s, got %v", ErrorV1, result["schema"])
	}
	if result["phase"] != "verify" {
		t.Errorf("expected phase verify, got %v", result["phase"])
	}
	if result["code"] != VER004 {
		t.Errorf("expected code %s, got %v", VER004, result["code"])
	}
	if _, ok := result["fix"]; !ok {
		t.Error("fix field should always be present")
	}
}

func TestSafeEncodeError(t *testing.T) {
	if result := SafeEncodeError(nil, "typecheck"); result != nil {
		t.Error("expected nil for nil error")
	}

	testErr := &testError{msg: "boom"}
	result := SafeEncodeError(testErr, "runtime")

	var parsed map[string]interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if parsed["phase"] != "runtime" {
		t.Errorf("expected phase runtime, got %v", parsed["phase"])
	}
	if !strings.Contains(parsed["message"].(string), "boom") {
		t.Errorf("expected message to contain 'boom', got %v", parsed["message"])
	}
}

func TestFormatSourceSpan(t *testing.T) {
	tests := []struct {
		file     string
		line     int
		col      int
		expected string
	}{
		{"main.bmb", 10, 5, "main.bmb:10:5"},
		{"test.bmb", 1, 1, "test.bmb:1:1"},
		{"/path/to/file.bmb", 100, 25, "/path/to/file.bmb:100:25"},
	}

	for _, tt := range tests {
		result := FormatSourceSpan(tt.file, tt.line, tt.col)
		if result != tt.expected {
			t.Errorf("FormatSourceSpan(%s, %d, %d) = %s, want %s",
				tt.file, tt.line, tt.col, result, tt.expected)
		}
	}
}

func TestErrorCodePrefixes(t *testing.T) {
	typecheckCodes := []string{TYP001, TYP002, TYP003, TYP004, TYP005, TYP006, TYP007, TYP008}
	for _, code := range typecheckCodes {
		if !strings.HasPrefix(code, "TYP") {
			t.Errorf("typecheck code %s should start with TYP", code)
		}
	}

	verifyCodes := []string{VER001, VER002, VER003, VER004, VER005, VER006}
	for _, code := range verifyCodes {
		if !strings.HasPrefix(code, "VER") {
			t.Errorf("verify code %s should start with VER", code)
		}
	}

	smtCodes := []string{SMT001, SMT002, SMT003, SMT004}
	for _, code := range smtCodes {
		if !strings.HasPrefix(code, "SMT") {
			t.Errorf("smt code %s should start with SMT", code)
		}
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
