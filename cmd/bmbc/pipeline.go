package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/module"
)

// collectBmbFiles expands paths (files or directories) into a
// deduplicated list of .bmb source files. The list is not sorted: files
// appear in the order of paths, and a directory contributes its files
// in filepath.Walk's lexical order.
func collectBmbFiles(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if strings.HasSuffix(path, ".bmb") {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && strings.HasSuffix(p, ".bmb") {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// loadUnits parses every file in files through a single module.Loader,
// so that cross-file dependency cycles are detected and duplicate
// loads of a shared dependency are cached (§5).
func loadUnits(files []string) (*module.Loader, []*module.Unit, error) {
	loader := module.NewLoader(".")
	units := make([]*module.Unit, 0, len(files))
	for _, f := range files {
		u, err := loader.LoadFile(f)
		if err != nil {
			return loader, units, err
		}
		units = append(units, u)
	}
	return loader, units, nil
}

// collectFnDefs gathers every function declared directly in prog or
// inside an impl block, the same set internal/types.Checker.register
// walks when registering declarations.
func collectFnDefs(prog *ast.Program) []*ast.FnDef {
	var fns []*ast.FnDef
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FnDef:
			fns = append(fns, it)
		case *ast.ImplBlock:
			fns = append(fns, it.Fns...)
		}
	}
	return fns
}

// readSource reads path and applies the same BOM/CRLF/NFC
// normalization module.Loader applies before lexing (§6), so a
// diagnostic's displayed source line always matches the text its span
// was computed against.
func readSource(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(lexer.Normalize(data))
}
