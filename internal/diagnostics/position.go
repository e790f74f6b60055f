package diagnostics

import "strings"

// LineCol derives a 1-indexed (line, column) pair from a byte offset
// into src by scanning for newlines, per §7 ("line/column derived from
// Span via a scan"). ast.Span carries byte offsets, not a line table,
// so every human-mode render recomputes this on demand rather than
// keeping a line index alongside the AST.
func LineCol(src string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = offset - lineStart + 1
	return line, col
}

// SourceLine returns the 1-indexed line's text, without its trailing
// newline, and whether that line exists in src.
func SourceLine(src string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}
