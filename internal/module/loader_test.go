package module

import (
	"path/filepath"
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

func TestLoadFileNoHeader(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "solo.bmb")
	writeFile(t, path, `fn id(x: i32) -> i32 { x }`)

	l := NewLoader(root)
	unit, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if unit.Path != "solo" {
		t.Fatalf("expected derived path 'solo', got %q", unit.Path)
	}
	if len(unit.Program.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(unit.Program.Items))
	}
}

func TestLoadFileWithDependency(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper-core", "src", "lib.bmb"), `module helper.core
version: "1.0.0"
summary: "helper"
exports: [square]
depends: []
===

fn square(x: i32) -> i32 { x * x }
`)

	mainPath := filepath.Join(root, "main.bmb")
	writeFile(t, mainPath, `module main
version: "1.0.0"
summary: "entry"
exports: []
depends: [helper.core (square)]
===

use helper.core::{square};

fn run(x: i32) -> i32 { square(x) }
`)

	l := NewLoader(root)
	unit, err := l.LoadFile(mainPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(unit.Depends) != 1 || unit.Depends[0] != "helper.core" {
		t.Fatalf("expected depends [helper.core], got %v", unit.Depends)
	}

	dep, err := l.Load("helper.core", filepath.Dir(mainPath))
	if err != nil {
		t.Fatalf("expected helper.core to already be loaded and cached: %v", err)
	}
	if _, ok := dep.Exports["square"]; !ok {
		t.Fatalf("expected helper.core to export square, got %v", dep.Exports)
	}

	if unused := unit.UnusedImports(); len(unused) != 0 {
		t.Fatalf("did not expect an unused-import warning, got %v", unused)
	}
}

func TestLoadFileUnusedImportWarning(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper-core", "src", "lib.bmb"), `module helper.core
version: "1.0.0"
summary: "helper"
exports: [square, cube]
depends: []
===

fn square(x: i32) -> i32 { x * x }
fn cube(x: i32) -> i32 { x * x * x }
`)

	mainPath := filepath.Join(root, "main.bmb")
	writeFile(t, mainPath, `module main
version: "1.0.0"
summary: "entry"
exports: []
depends: [helper.core (square, cube)]
===

use helper.core::{square, cube};

fn run(x: i32) -> i32 { square(x) }
`)

	l := NewLoader(root)
	unit, err := l.LoadFile(mainPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	unused := unit.UnusedImports()
	found := false
	for _, uw := range unused {
		if uw.Symbol == "cube" {
			found = true
			if uw.Module != "helper.core" {
				t.Fatalf("expected unused import 'cube' to come from helper.core, got %q", uw.Module)
			}
		}
	}
	if !found {
		t.Fatalf("expected an unused-import warning for 'cube', got %v", unused)
	}
}

func TestLoadFileRecordsImportBindings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper-core", "src", "lib.bmb"), `module helper.core
version: "1.0.0"
summary: "helper"
exports: [square]
depends: []
===

fn square(x: i32) -> i32 { x * x }
`)

	mainPath := filepath.Join(root, "main.bmb")
	writeFile(t, mainPath, `module main
version: "1.0.0"
summary: "entry"
exports: []
depends: [helper.core (square)]
===

use helper.core::{square};

fn run(x: i32) -> i32 { square(x) }
`)

	l := NewLoader(root)
	unit, err := l.LoadFile(mainPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	binding, ok := unit.Imports["square"]
	if !ok {
		t.Fatalf("expected unit.Imports to record 'square', got %v", unit.Imports)
	}
	if binding.Module != "helper.core" {
		t.Fatalf("expected square's import to name helper.core, got %q", binding.Module)
	}
	if binding.Span == (ast.Span{}) {
		t.Fatal("expected square's import binding to carry a non-zero span")
	}
}

func TestLoadFileAmbiguousSymbolTwoImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a-pkg", "src", "lib.bmb"), `module a.pkg
version: "1.0.0"
summary: "a"
exports: [helper]
depends: []
===

fn helper(x: i32) -> i32 { x }
`)
	writeFile(t, filepath.Join(root, "b-pkg", "src", "lib.bmb"), `module b.pkg
version: "1.0.0"
summary: "b"
exports: [helper]
depends: []
===

fn helper(x: i32) -> i32 { x + 1 }
`)

	mainPath := filepath.Join(root, "main.bmb")
	writeFile(t, mainPath, `module main
version: "1.0.0"
summary: "entry"
exports: []
depends: [a.pkg (helper), b.pkg (helper)]
===

use a.pkg::{helper};
use b.pkg::{helper};

fn run(x: i32) -> i32 { helper(x) }
`)

	l := NewLoader(root)
	_, err := l.LoadFile(mainPath)
	if err == nil {
		t.Fatal("expected an ambiguous-symbol error")
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected a *Report, got %T (%v)", err, err)
	}
	if rep.Code != errors.RES002 {
		t.Fatalf("expected code %s, got %s", errors.RES002, rep.Code)
	}
}

func TestLoadFileAmbiguousSymbolShadowsLocal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helper-core", "src", "lib.bmb"), `module helper.core
version: "1.0.0"
summary: "helper"
exports: [square]
depends: []
===

fn square(x: i32) -> i32 { x * x }
`)

	mainPath := filepath.Join(root, "main.bmb")
	writeFile(t, mainPath, `module main
version: "1.0.0"
summary: "entry"
exports: []
depends: [helper.core (square)]
===

use helper.core::{square};

fn square(x: i32) -> i32 { x }
`)

	l := NewLoader(root)
	_, err := l.LoadFile(mainPath)
	if err == nil {
		t.Fatal("expected an ambiguous-symbol error")
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected a *Report, got %T (%v)", err, err)
	}
	if rep.Code != errors.RES002 {
		t.Fatalf("expected code %s, got %s", errors.RES002, rep.Code)
	}
}

func TestLoadImportCycleDetected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a-pkg", "src", "lib.bmb"), `module a.pkg
version: "1.0.0"
summary: "a"
exports: []
depends: [b.pkg ()]
===

fn fa(x: i32) -> i32 { x }
`)
	writeFile(t, filepath.Join(root, "b-pkg", "src", "lib.bmb"), `module b.pkg
version: "1.0.0"
summary: "b"
exports: []
depends: [a.pkg ()]
===

fn fb(x: i32) -> i32 { x }
`)

	l := NewLoader(root)
	_, err := l.Load("a.pkg", root)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected a *Report, got %T (%v)", err, err)
	}
	if rep.Code != errors.RES003 {
		t.Fatalf("expected code %s, got %s", errors.RES003, rep.Code)
	}
}

func TestLoadExtractExportsDefaultsToPublicItems(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "mix.bmb")
	writeFile(t, path, `pub fn visible(x: i32) -> i32 { x }
fn hidden(x: i32) -> i32 { x }
`)

	l := NewLoader(root)
	unit, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if _, ok := unit.Exports["visible"]; !ok {
		t.Fatalf("expected 'visible' to be exported, got %v", unit.Exports)
	}
	if _, ok := unit.Exports["hidden"]; ok {
		t.Fatalf("did not expect 'hidden' to be exported")
	}
}
