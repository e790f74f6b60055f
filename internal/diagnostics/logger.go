// Package diagnostics renders *errors.Report values for a human to
// read or a machine to parse (§7 "User-visible behavior"). It never
// decides whether a diagnostic is fatal — that taxonomy lives in
// internal/errors's registry and internal/verify's Strict flag; this
// package only renders and counts.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/zizixmas/bmb/internal/errors"
)

// Mode selects human or machine rendering (§7).
type Mode int

const (
	ModeHuman Mode = iota
	ModeMachine
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnGlyph  = color.New(color.FgYellow).SprintFunc()
	caretColor = color.New(color.FgCyan).SprintFunc()
)

// Logger accumulates and renders diagnostics for one compilation run.
// AddSource registers a file's text so human mode can show the
// offending line and a caret; a diagnostic for an unregistered file
// still renders, just without the source excerpt.
type Logger struct {
	w            io.Writer
	mode         Mode
	sources      map[string]string
	errorCount   int
	warningCount int
}

// NewLogger builds a Logger writing to w in the given Mode.
func NewLogger(w io.Writer, mode Mode) *Logger {
	return &Logger{w: w, mode: mode, sources: map[string]string{}}
}

// AddSource registers filename's text for caret rendering.
func (l *Logger) AddSource(filename, src string) {
	l.sources[filename] = src
}

// Report renders one diagnostic and updates the running error/warning
// counts. Severity is looked up from errors.GetErrorInfo(rep.Code); an
// unregistered code (e.g. the ERR000 fallback) is treated as an error.
func (l *Logger) Report(rep *errors.Report) {
	warning := errors.IsWarning(rep.Code)
	if warning {
		l.warningCount++
	} else {
		l.errorCount++
	}

	if l.mode == ModeMachine {
		data := errors.SafeEncodeError(errors.WrapReport(rep), rep.Phase)
		l.w.Write(data)
		fmt.Fprintln(l.w)
		return
	}
	l.renderHuman(rep, warning)
}

func (l *Logger) renderHuman(rep *errors.Report, warning bool) {
	loc := ""
	if rep.Span != nil {
		line, col := LineCol(l.sources[rep.Span.File], rep.Span.Start)
		loc = fmt.Sprintf("%s:%d:%d: ", rep.Span.File, line, col)
	}

	if warning {
		fmt.Fprintf(l.w, "%s%s %s\n", loc, warnGlyph("⚠"), rep.Message)
	} else {
		fmt.Fprintf(l.w, "%s%s: %s\n", loc, errorLabel("error"), rep.Message)
	}

	if rep.Span == nil {
		return
	}
	src, ok := l.sources[rep.Span.File]
	if !ok {
		return
	}
	line, col := LineCol(src, rep.Span.Start)
	text, ok := SourceLine(src, line)
	if !ok {
		return
	}
	fmt.Fprintf(l.w, "  %s\n", text)
	fmt.Fprintf(l.w, "  %s%s\n", strings.Repeat(" ", col-1), caretColor(strings.Repeat("^", caretWidth(rep, col, text))))
}

func caretWidth(rep *errors.Report, col int, line string) int {
	width := 1
	if rep.Span != nil {
		if w := rep.Span.End - rep.Span.Start; w > 0 {
			width = w
		}
	}
	if max := len(line) - (col - 1); max > 0 && width > max {
		width = max
	}
	if width < 1 {
		width = 1
	}
	return width
}

// HasErrors reports whether any reported diagnostic was not a warning.
func (l *Logger) HasErrors() bool { return l.errorCount > 0 }

// ErrorCount returns the number of error-severity diagnostics reported so far.
func (l *Logger) ErrorCount() int { return l.errorCount }

// WarningCount returns the number of warning-severity diagnostics reported so far.
func (l *Logger) WarningCount() int { return l.warningCount }
