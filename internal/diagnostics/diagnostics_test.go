package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

func TestLineColFindsOffsetOnSecondLine(t *testing.T) {
	src := "fn f() {\n  bad\n}\n"
	line, col := LineCol(src, 11) // the 'b' of "bad"
	if line != 2 || col != 3 {
		t.Fatalf("got line=%d col=%d, want line=2 col=3", line, col)
	}
}

func TestLineColClampsOutOfRangeOffset(t *testing.T) {
	src := "abc"
	line, col := LineCol(src, 1000)
	if line != 1 || col != len(src)+1 {
		t.Fatalf("got line=%d col=%d", line, col)
	}
}

func TestSourceLineMissingReturnsFalse(t *testing.T) {
	if _, ok := SourceLine("one line only", 5); ok {
		t.Fatal("expected ok=false for an out-of-range line")
	}
}

func TestLoggerHumanModeRendersCaretUnderSpan(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ModeHuman)
	src := "fn f(x: i32) -> i32 {\n  x + \n}\n"
	l.AddSource("f.bmb", src)

	l.Report(&errors.Report{
		Code:    errors.PAR001,
		Phase:   "parse",
		Message: "unexpected token",
		Span:    &ast.Span{File: "f.bmb", Start: 27, End: 28},
	})

	out := buf.String()
	if !strings.Contains(out, "f.bmb:2:") {
		t.Errorf("expected location prefix, got: %s", out)
	}
	if !strings.Contains(out, "unexpected token") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected a caret line, got: %s", out)
	}
	if l.HasErrors() != true || l.ErrorCount() != 1 || l.WarningCount() != 0 {
		t.Errorf("unexpected counts: errors=%d warnings=%d", l.ErrorCount(), l.WarningCount())
	}
}

func TestLoggerHumanModeMarksWarning(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ModeHuman)
	l.Report(&errors.Report{
		Code:    errors.VER004,
		Phase:   "verify",
		Message: `Trivial contract: contract "t" is always true (tautology)`,
	})
	out := buf.String()
	if !strings.Contains(out, "⚠") {
		t.Errorf("expected warning glyph, got: %s", out)
	}
	if l.HasErrors() {
		t.Error("a warning must not count as an error")
	}
	if l.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", l.WarningCount())
	}
}

func TestLoggerMachineModeEmitsOneJSONLinePerDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ModeMachine)
	l.Report(&errors.Report{Code: errors.TYP001, Phase: "typecheck", Message: "type mismatch"})
	l.Report(&errors.Report{Code: errors.VER003, Phase: "verify", Message: "duplicate contract"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line is not valid JSON: %v (%q)", err, line)
		}
		if rec["schema"] != errors.ErrorV1 {
			t.Errorf("unexpected schema: %v", rec["schema"])
		}
	}
	if l.ErrorCount() != 1 || l.WarningCount() != 1 {
		t.Errorf("expected 1 error + 1 warning, got errors=%d warnings=%d", l.ErrorCount(), l.WarningCount())
	}
}

func TestLoggerRendersWithoutSourceGracefully(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, ModeHuman)
	l.Report(&errors.Report{
		Code:    errors.RES001,
		Phase:   "resolve",
		Message: "module not found",
		Span:    &ast.Span{File: "missing.bmb", Start: 0, End: 1},
	})
	if !strings.Contains(buf.String(), "module not found") {
		t.Fatalf("expected message even without registered source, got: %s", buf.String())
	}
}
