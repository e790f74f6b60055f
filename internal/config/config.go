// Package config loads a project's bmb.yaml: include roots, the
// solver binary and timeout to verify contracts with, strict mode,
// and the index output directory (§A.3 of the expanded design).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SolverConfig names the solver binary to prefer and how long to let
// it run per goal before treating the outcome as Unknown.
type SolverConfig struct {
	Path           string `yaml:"path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Project is the root of a project's bmb.yaml.
type Project struct {
	IncludeRoots []string     `yaml:"include_roots"`
	Solver       SolverConfig `yaml:"solver"`
	Strict       bool         `yaml:"strict"`
	IndexDir     string       `yaml:"index_dir"`
}

// DefaultProject returns the configuration used when no bmb.yaml is
// present: the current directory as the only include root, an
// auto-detected solver with a five-second timeout, strict mode off,
// and the conventional .bmb/index output directory.
func DefaultProject() *Project {
	return &Project{
		IncludeRoots: []string{"."},
		Solver:       SolverConfig{Path: "", TimeoutSeconds: 5},
		Strict:       false,
		IndexDir:     ".bmb/index",
	}
}

// LoadProject reads and parses path as a bmb.yaml. A missing file is
// not an error: it returns DefaultProject() instead, since a project
// with no config file is the common case, not a misconfiguration.
// Any field left zero-valued by the YAML falls back to the default.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProject(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	p := DefaultProject()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(p.IncludeRoots) == 0 {
		p.IncludeRoots = []string{"."}
	}
	if p.Solver.TimeoutSeconds == 0 {
		p.Solver.TimeoutSeconds = 5
	}
	if p.IndexDir == "" {
		p.IndexDir = ".bmb/index"
	}
	return p, p.Validate()
}

// Validate reports a malformed project file: a negative timeout or an
// empty include root entry are rejected outright rather than silently
// tolerated downstream in the loader or solver driver.
func (p *Project) Validate() error {
	if p.Solver.TimeoutSeconds <= 0 {
		return fmt.Errorf("solver.timeout_seconds must be positive, got %d", p.Solver.TimeoutSeconds)
	}
	for i, root := range p.IncludeRoots {
		if root == "" {
			return fmt.Errorf("include_roots[%d] is empty", i)
		}
	}
	return nil
}

// LockFile records which solver build and timeout actually produced a
// verify run, written alongside the index artifacts so a later reader
// can tell whether a Verified outcome is still trustworthy after a
// solver upgrade.
type LockFile struct {
	SolverPath     string    `yaml:"solver_path"`
	SolverVersion  string    `yaml:"solver_version"`
	TimeoutSeconds int       `yaml:"timeout_seconds"`
	Strict         bool      `yaml:"strict"`
	GeneratedAt    time.Time `yaml:"generated_at"`
}

// WriteLockFile marshals lock as YAML to path, creating or truncating
// the file. Errors are the caller's to surface; a failed lock write
// never blocks a verify run from reporting its own outcome.
func WriteLockFile(path string, lock LockFile) error {
	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
