package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadProjectMissingFileReturnsDefaults(t *testing.T) {
	p, err := LoadProject(filepath.Join(t.TempDir(), "bmb.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultProject()
	if len(p.IncludeRoots) != 1 || p.IncludeRoots[0] != want.IncludeRoots[0] {
		t.Errorf("got IncludeRoots=%v, want %v", p.IncludeRoots, want.IncludeRoots)
	}
	if p.Solver.TimeoutSeconds != want.Solver.TimeoutSeconds {
		t.Errorf("got timeout=%d, want %d", p.Solver.TimeoutSeconds, want.Solver.TimeoutSeconds)
	}
}

func TestLoadProjectParsesYAMLAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bmb.yaml")
	src := "include_roots:\n  - src\n  - vendor\nsolver:\n  path: /usr/local/bin/z3\nstrict: true\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.IncludeRoots) != 2 || p.IncludeRoots[0] != "src" || p.IncludeRoots[1] != "vendor" {
		t.Errorf("unexpected include roots: %v", p.IncludeRoots)
	}
	if p.Solver.Path != "/usr/local/bin/z3" {
		t.Errorf("unexpected solver path: %q", p.Solver.Path)
	}
	if p.Solver.TimeoutSeconds != 5 {
		t.Errorf("expected default timeout to survive partial solver config, got %d", p.Solver.TimeoutSeconds)
	}
	if !p.Strict {
		t.Error("expected strict: true to be honored")
	}
	if p.IndexDir != ".bmb/index" {
		t.Errorf("expected default index dir, got %q", p.IndexDir)
	}
}

func TestLoadProjectRejectsEmptyIncludeRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bmb.yaml")
	if err := os.WriteFile(path, []byte("include_roots:\n  - \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(path); err == nil {
		t.Fatal("expected an error for an empty include root")
	}
}

func TestLoadProjectRejectsNegativeTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bmb.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  timeout_seconds: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(path); err == nil {
		t.Fatal("expected an error for a negative timeout")
	}
}

func TestWriteLockFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bmb.lock.yaml")
	lock := LockFile{
		SolverPath:     "/usr/local/bin/z3",
		SolverVersion:  "Z3 version 4.13.0",
		TimeoutSeconds: 5,
		Strict:         true,
		GeneratedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := WriteLockFile(path, lock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written lock file: %v", err)
	}
	var got LockFile
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to parse written lock file: %v", err)
	}
	if got.SolverPath != lock.SolverPath || got.SolverVersion != lock.SolverVersion ||
		got.TimeoutSeconds != lock.TimeoutSeconds || got.Strict != lock.Strict {
		t.Errorf("got %#v, want %#v", got, lock)
	}
	if !got.GeneratedAt.Equal(lock.GeneratedAt) {
		t.Errorf("got GeneratedAt=%v, want %v", got.GeneratedAt, lock.GeneratedAt)
	}
}
