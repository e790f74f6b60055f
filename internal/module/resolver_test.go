package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zizixmas/bmb/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePackageDirectoryForm(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "math-arithmetic", "src", "lib.bmb"), "fn add(a: i32, b: i32) -> i32 { a + b }")

	r := NewResolver(root)
	got, err := r.Resolve("math.arithmetic", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Clean(filepath.Join(root, "math-arithmetic", "src", "lib.bmb"))
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestResolveSingleFileFallback(t *testing.T) {
	fromDir := t.TempDir()
	writeFile(t, filepath.Join(fromDir, "math", "core.bmb"), "fn id(x: i32) -> i32 { x }")

	r := NewResolver()
	got, err := r.Resolve("math.core", fromDir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Clean(filepath.Join(fromDir, "math", "core.bmb"))
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestResolvePackageDirectoryWinsOverFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "math-core", "src", "lib.bmb"), "fn id(x: i32) -> i32 { x }")
	writeFile(t, filepath.Join(root, "math", "core.bmb"), "fn other(x: i32) -> i32 { x }")

	r := NewResolver(root)
	got, err := r.Resolve("math.core", root)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Clean(filepath.Join(root, "math-core", "src", "lib.bmb"))
	if got != want {
		t.Fatalf("package directory should win, got %s", got)
	}
}

func TestResolveNotFoundReportsSuggestions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "math-arithmetic", "src", "lib.bmb"), "fn add(a: i32, b: i32) -> i32 { a + b }")

	r := NewResolver(root)
	_, err := r.Resolve("math.arithmitic", "")
	if err == nil {
		t.Fatal("expected a resolve error")
	}

	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected a *Report, got %T", err)
	}
	if rep.Code != errors.RES001 {
		t.Fatalf("expected code %s, got %s", errors.RES001, rep.Code)
	}
	suggestions, _ := rep.Data["suggestions"].([]string)
	found := false
	for _, s := range suggestions {
		if s == "math.arithmetic" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected math.arithmetic among suggestions, got %v", suggestions)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"arithmitic", "arithmetic", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
