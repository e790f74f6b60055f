package index

import (
	"fmt"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/diagnostics"
)

// Generator accumulates symbols, functions and types across every
// file handed to IndexFile, then produces a ProjectIndex.
type Generator struct {
	project      string
	bmbVersion   string
	filesIndexed int
	symbols      []SymbolEntry
	functions    []FunctionEntry
	types        []TypeEntry
}

// New creates a Generator for project, stamping bmbVersion into the
// manifest the way a build's version string would.
func New(project, bmbVersion string) *Generator {
	return &Generator{project: project, bmbVersion: bmbVersion}
}

// IndexFile indexes every top-level item of program. src is used only
// to recover real line numbers from byte-offset spans; pass "" to fall
// back to line 1 for every entry in that file.
func (g *Generator) IndexFile(filename, src string, program *ast.Program) {
	g.filesIndexed++
	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.FnDef:
			g.indexFunction(filename, src, it)
		case *ast.StructDef:
			g.indexStruct(filename, src, it)
		case *ast.EnumDef:
			g.indexEnum(filename, src, it)
		case *ast.TraitDef:
			g.indexTrait(filename, src, it)
		case *ast.TypeAlias:
			g.indexTypeAlias(filename, src, it)
		case *ast.ExternFn:
			g.indexExternFn(filename, src, it)
		}
	}
}

func lineOf(src string, span ast.Span) int {
	if src == "" {
		return 1
	}
	line, _ := diagnostics.LineCol(src, span.Start)
	return line
}

func (g *Generator) indexFunction(filename, src string, fn *ast.FnDef) {
	isPub := fn.ItemVis() == ast.Public
	line := lineOf(src, fn.Pos())
	signature := formatFnSignature(fn)

	g.symbols = append(g.symbols, SymbolEntry{
		Kind:      SymbolFunction,
		Name:      fn.Name,
		File:      filename,
		Line:      line,
		IsPub:     isPub,
		Signature: &signature,
	})

	params := make([]ParamInfo, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ParamInfo{Name: p.Name, Type: p.Type.String()}
	}

	g.functions = append(g.functions, FunctionEntry{
		Name:  fn.Name,
		File:  filename,
		Line:  line,
		IsPub: isPub,
		Signature: FunctionSignature{
			Params:     params,
			ReturnType: fn.RetType.String(),
		},
		Contracts: extractContracts(fn),
		BodyInfo:  analyzeBody(fn.Body, fn.Name),
	})
}

func (g *Generator) indexStruct(filename, src string, s *ast.StructDef) {
	isPub := s.ItemVis() == ast.Public
	line := lineOf(src, s.Pos())

	g.symbols = append(g.symbols, SymbolEntry{
		Kind: SymbolStruct, Name: s.Name, File: filename, Line: line, IsPub: isPub,
	})

	fields := make([]FieldInfo, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = FieldInfo{Name: f.Name, Type: f.Type.String()}
	}

	g.types = append(g.types, TypeEntry{
		Name: s.Name, File: filename, Line: line, IsPub: isPub,
		Kind: "struct", Fields: fields,
	})
}

func (g *Generator) indexEnum(filename, src string, e *ast.EnumDef) {
	isPub := e.ItemVis() == ast.Public
	line := lineOf(src, e.Pos())

	g.symbols = append(g.symbols, SymbolEntry{
		Kind: SymbolEnum, Name: e.Name, File: filename, Line: line, IsPub: isPub,
	})

	variants := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		variants[i] = v.Name
	}

	g.types = append(g.types, TypeEntry{
		Name: e.Name, File: filename, Line: line, IsPub: isPub,
		Kind: "enum", Variants: variants,
	})
}

func (g *Generator) indexTrait(filename, src string, t *ast.TraitDef) {
	isPub := t.ItemVis() == ast.Public
	line := lineOf(src, t.Pos())

	g.symbols = append(g.symbols, SymbolEntry{
		Kind: SymbolTrait, Name: t.Name, File: filename, Line: line, IsPub: isPub,
	})

	g.types = append(g.types, TypeEntry{
		Name: t.Name, File: filename, Line: line, IsPub: isPub, Kind: "trait",
	})
}

// indexTypeAlias indexes `type Name = Target;`, including the
// refinement constraints of `type Name = Base{c1, c2};` — a symbol
// kind the upstream index schema names ("type") but never populated,
// since type aliases were not yet indexed there.
func (g *Generator) indexTypeAlias(filename, src string, t *ast.TypeAlias) {
	isPub := t.ItemVis() == ast.Public
	line := lineOf(src, t.Pos())

	g.symbols = append(g.symbols, SymbolEntry{
		Kind: SymbolType, Name: t.Name, File: filename, Line: line, IsPub: isPub,
	})

	entry := TypeEntry{Name: t.Name, File: filename, Line: line, IsPub: isPub, Kind: "type"}
	if ref, ok := t.Target.(*ast.RefinedType); ok {
		cs := make([]string, len(ref.Constraints))
		for i, c := range ref.Constraints {
			cs[i] = c.Node.String()
		}
		entry.Refinement = &RefinementInfo{
			Base:       ref.Base.String(),
			Constraint: strings.Join(cs, " && "),
		}
	}
	g.types = append(g.types, entry)
}

func (g *Generator) indexExternFn(filename, src string, e *ast.ExternFn) {
	isPub := e.ItemVis() == ast.Public
	line := lineOf(src, e.Pos())

	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type.String())
	}
	signature := fmt.Sprintf("extern %q fn(%s) -> %s", e.ABI, strings.Join(params, ", "), e.RetType.String())

	g.symbols = append(g.symbols, SymbolEntry{
		Kind:      SymbolFunction,
		Name:      e.Name,
		File:      filename,
		Line:      line,
		IsPub:     isPub,
		Signature: &signature,
	})
}

func formatFnSignature(fn *ast.FnDef) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type.String())
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), fn.RetType.String())
}

// extractContracts builds ContractInfo for fn, or nil when it carries
// no contract at all. The legacy `pre` clause is its own goal; `post`
// and every `where { … }` named contract land together, since both
// may reference `ret` and are both checked at the function's return
// (internal/smt.BuildPlans treats them as sibling goals).
func extractContracts(fn *ast.FnDef) *ContractInfo {
	var pre, post []ContractExpr
	if fn.HasPre() {
		pre = append(pre, analyzeContractExpr(fn.Pre.Node))
	}
	if fn.HasPost() {
		post = append(post, analyzeContractExpr(fn.Post.Node))
	}
	for _, nc := range fn.Contracts {
		post = append(post, analyzeContractExpr(nc.Cond.Node))
	}
	if pre == nil && post == nil {
		return nil
	}
	return &ContractInfo{Pre: pre, Post: post}
}

func analyzeContractExpr(e ast.Expr) ContractExpr {
	info := inspect(e)
	return ContractExpr{
		Expr:        e.String(),
		Quantifiers: info.quantifiers,
		Calls:       info.calls,
		UsesOld:     info.usesOld,
		UsesRet:     info.usesRet,
	}
}

func analyzeBody(body ast.Expr, fnName string) *BodyInfo {
	if body == nil {
		return nil
	}
	info := inspect(body)
	recursive := false
	for _, c := range info.calls {
		if c == fnName {
			recursive = true
			break
		}
	}
	calls := info.calls
	if calls == nil {
		calls = []string{}
	}
	return &BodyInfo{Calls: calls, Recursive: recursive, HasLoop: info.hasLoop}
}
