package smt

import "testing"

func TestVersionReportsUnknownForMissingBinary(t *testing.T) {
	if got := Version(""); got != "unknown" {
		t.Fatalf("expected unknown for an empty path, got %q", got)
	}
	if got := Version("/definitely/not/a/real/path/to/a/solver"); got != "unknown" {
		t.Fatalf("expected unknown for a nonexistent binary, got %q", got)
	}
}
