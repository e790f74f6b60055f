package module

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
	"github.com/zizixmas/bmb/internal/lexer"
	"github.com/zizixmas/bmb/internal/parser"
)

// Unit is one parsed, loaded compilation unit: a single .bmb file plus
// its module header (if any) and the exports that header/body expose.
type Unit struct {
	Path     string // logical dotted path, e.g. "math.arithmetic"
	FilePath string // canonical absolute file path (the cache key, §5)
	Program  *ast.Program
	Exports  map[string]ast.Item
	Depends  []string // logical paths named by the module header's `depends:` list
	Imports  Imports  // imported symbol name -> module and import span (§4.C)
}

// ImportBinding records where one imported symbol was bound: the
// module it came from and the span of the `use` clause that named it.
type ImportBinding struct {
	Module string
	Span   ast.Span
}

// Imports maps each symbol name bound by a `use a.b::{x, y}` clause to
// its ImportBinding. A bare `use a.b;` import brings no individual
// symbol name into scope, so it has no entry here.
type Imports map[string]ImportBinding

// UnusedImport names one imported symbol that Unit.Imports records
// but that Unit.UnusedImports found no reference to.
type UnusedImport struct {
	Symbol string
	Module string
	Span   ast.Span
}

// Loader parses and caches Units for the life of one compilation job.
// Per §5 the cache is keyed by canonical file path and is not shared
// across jobs — callers create a fresh Loader per job.
type Loader struct {
	resolver *Resolver

	mu    sync.Mutex
	cache map[string]*Unit // keyed by canonical FilePath

	loadStack []string // canonical file paths currently being resolved, for cycle detection
}

// NewLoader creates a Loader that resolves against the given include roots.
func NewLoader(includeRoots ...string) *Loader {
	return &Loader{
		resolver: NewResolver(includeRoots...),
		cache:    make(map[string]*Unit),
	}
}

// LoadFile parses and loads a single file directly, without going
// through the path resolver — the compiler's entry-point file.
func (l *Loader) LoadFile(filePath string) (*Unit, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}
	return l.loadCanonical(abs, logicalPathOf(abs))
}

// Load resolves logicalPath to a file (relative to fromDir for the
// single-file fallback form) and loads it, recursively loading every
// module it depends on.
func (l *Loader) Load(logicalPath string, fromDir string) (*Unit, error) {
	filePath, err := l.resolver.Resolve(logicalPath, fromDir)
	if err != nil {
		return nil, err
	}
	return l.loadCanonical(filePath, logicalPath)
}

func (l *Loader) loadCanonical(filePath, logicalPath string) (*Unit, error) {
	filePath = filepath.Clean(filePath)

	l.mu.Lock()
	if u, ok := l.cache[filePath]; ok {
		l.mu.Unlock()
		return u, nil
	}
	l.mu.Unlock()

	if err := l.enterCycleCheck(filePath); err != nil {
		return nil, err
	}
	defer l.exitCycleCheck()

	unit, err := l.parseFile(filePath, logicalPath)
	if err != nil {
		return nil, err
	}

	fromDir := filepath.Dir(filePath)
	for _, dep := range unit.Depends {
		if _, err := l.Load(dep, fromDir); err != nil {
			return nil, fmt.Errorf("loading dependency %q of %q: %w", dep, logicalPath, err)
		}
	}

	l.mu.Lock()
	l.cache[filePath] = unit
	l.mu.Unlock()

	return unit, nil
}

func (l *Loader) parseFile(filePath, logicalPath string) (*Unit, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.WrapReport(&errors.Report{
			Schema:  errors.ErrorV1,
			Code:    errors.RES001,
			Phase:   "resolve",
			Message: fmt.Sprintf("failed to read module file %s: %v", filePath, err),
		})
	}

	content = lexer.Normalize(content)

	lex := lexer.New(string(content), filePath)
	p := parser.New(lex, filePath)
	prog := p.ParseProgram()
	if perr := p.Err(); perr != nil {
		return nil, errors.WrapReport(&errors.Report{
			Schema:  errors.ErrorV1,
			Code:    errors.PAR001,
			Phase:   "parse",
			Message: perr.Error(),
			Span:    &perr.Span,
		})
	}

	path := logicalPath
	if prog.Header != nil {
		path = prog.Header.Name
	}

	var depends []string
	if prog.Header != nil {
		for _, d := range prog.Header.Depends {
			depends = append(depends, d.Path)
		}
	}

	imports, err := buildImports(prog)
	if err != nil {
		return nil, err
	}

	unit := &Unit{
		Path:     path,
		FilePath: filePath,
		Program:  prog,
		Exports:  extractExports(prog),
		Depends:  depends,
		Imports:  imports,
	}
	return unit, nil
}

// buildImports walks prog's `use` items and records each imported
// symbol's binding, raising RES002 the moment a symbol name is bound
// twice: once by two `use` clauses, or once by a `use` clause and once
// by a same-named top-level item declared in this unit (§4.C).
func buildImports(prog *ast.Program) (Imports, error) {
	topLevel := map[string]bool{}
	for _, item := range prog.Items {
		if name := itemName(item); name != "" {
			topLevel[name] = true
		}
	}

	imports := make(Imports)
	for _, item := range prog.Items {
		use, ok := item.(*ast.Use)
		if !ok {
			continue
		}
		for i, sym := range use.Symbols {
			span := use.Span
			if i < len(use.SymbolSpans) {
				span = use.SymbolSpans[i]
			}
			if prev, dup := imports[sym]; dup {
				return nil, ambiguousSymbolError(sym, prev.Module, use.Path, span)
			}
			if topLevel[sym] {
				return nil, ambiguousSymbolError(sym, use.Path, "this module's own top-level declarations", span)
			}
			imports[sym] = ImportBinding{Module: use.Path, Span: span}
		}
	}
	return imports, nil
}

func ambiguousSymbolError(sym, fromA, fromB string, span ast.Span) error {
	return errors.WrapReport(&errors.Report{
		Schema:  errors.ErrorV1,
		Code:    errors.RES002,
		Phase:   "resolve",
		Message: fmt.Sprintf("ambiguous symbol %q: bound by both %q and %q", sym, fromA, fromB),
		Span:    &span,
		Data:    map[string]any{"symbol": sym},
	})
}

// extractExports finds the Item backing each name in the module
// header's `exports:` list; with no header (or an empty list), every
// public item is exported.
func extractExports(prog *ast.Program) map[string]ast.Item {
	byName := make(map[string]ast.Item)
	for _, item := range prog.Items {
		if name := itemName(item); name != "" {
			byName[name] = item
		}
	}

	exports := make(map[string]ast.Item)
	if prog.Header != nil && len(prog.Header.Exports) > 0 {
		for _, name := range prog.Header.Exports {
			if item, ok := byName[name]; ok {
				exports[name] = item
			}
		}
		return exports
	}

	for name, item := range byName {
		if item.ItemVis() == ast.Public {
			exports[name] = item
		}
	}
	return exports
}

func itemName(item ast.Item) string {
	switch it := item.(type) {
	case *ast.FnDef:
		return it.Name
	case *ast.StructDef:
		return it.Name
	case *ast.EnumDef:
		return it.Name
	case *ast.TypeAlias:
		return it.Name
	case *ast.TraitDef:
		return it.Name
	case *ast.ExternFn:
		return it.Name
	}
	return ""
}

func (l *Loader) enterCycleCheck(filePath string) error {
	for _, id := range l.loadStack {
		if id == filePath {
			cycle := append(append([]string{}, l.loadStack...), filePath)
			return errors.WrapReport(&errors.Report{
				Schema:  errors.ErrorV1,
				Code:    errors.RES003,
				Phase:   "resolve",
				Message: "import cycle detected",
				Data:    map[string]any{"cycle": cycle},
			})
		}
	}
	l.loadStack = append(l.loadStack, filePath)
	return nil
}

func (l *Loader) exitCycleCheck() {
	if len(l.loadStack) > 0 {
		l.loadStack = l.loadStack[:len(l.loadStack)-1]
	}
}

func logicalPathOf(filePath string) string {
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
