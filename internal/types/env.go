// Package types implements BMB's bidirectional type checker (§4.D):
// literal and operator rules, generic inference, method-call dispatch
// over the small built-in method set, refinement-type subtyping, and
// contract-clause checking. It reports TypeError via internal/errors'
// TYP### codes.
package types

import "github.com/zizixmas/bmb/internal/ast"

// Env is the variable environment Γ: a chain of scopes, each a flat
// name-to-type map, searched innermost-first. Checking a block or
// function body pushes a child scope and discards it on exit.
type Env struct {
	bindings map[string]ast.Type
	parent   *Env
}

// NewEnv creates an empty root environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]ast.Type)}
}

// Child creates a new scope nested under e.
func (e *Env) Child() *Env {
	return &Env{bindings: make(map[string]ast.Type), parent: e}
}

// Bind records name's type in the current scope, shadowing any
// binding of the same name in an enclosing scope.
func (e *Env) Bind(name string, t ast.Type) {
	e.bindings[name] = t
}

// Lookup searches e and its ancestors for name.
func (e *Env) Lookup(name string) (ast.Type, bool) {
	for s := e; s != nil; s = s.parent {
		if t, ok := s.bindings[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// TypeParamEnv tracks the generic type parameters in scope for the
// function or impl block currently being checked, and their trait
// bounds (bounds are recorded but not enforced beyond name resolution
// — BMB's method dispatch is the small built-in set in §4.D, not
// arbitrary trait resolution).
type TypeParamEnv struct {
	params map[string][]string // type param name -> bounds
}

// NewTypeParamEnv builds a TypeParamEnv from a declaration's TypeParams.
func NewTypeParamEnv(tps []ast.TypeParam) *TypeParamEnv {
	m := make(map[string][]string, len(tps))
	for _, tp := range tps {
		m[tp.Name] = tp.Bounds
	}
	return &TypeParamEnv{params: m}
}

// IsParam reports whether name is a generic type parameter in scope.
func (t *TypeParamEnv) IsParam(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.params[name]
	return ok
}

// Checker holds the whole-program symbol tables (§4.D): separate
// non-generic/generic tables for functions, structs and enums, so
// that call-site checking knows up front whether it must run
// inference or can check directly against a concrete signature.
type Checker struct {
	Funcs        map[string]*ast.FnDef
	GenericFuncs map[string]*ast.FnDef

	Structs        map[string]*ast.StructDef
	GenericStructs map[string]*ast.StructDef

	Enums        map[string]*ast.EnumDef
	GenericEnums map[string]*ast.EnumDef

	Aliases map[string]*ast.TypeAlias
	Traits  map[string]*ast.TraitDef
	Externs map[string]*ast.ExternFn

	// retType is the declared return type of the function body
	// currently being checked, consulted by `ret`/`return` checking.
	retType ast.Type

	// typeParams is the TypeParamEnv of the function/impl currently
	// being checked, nil at top level.
	typeParams *TypeParamEnv

	// itType is the Base type of the RefinedType whose Constraints are
	// currently being checked, consulted by `it` (§9 "refinement
	// subtyping"). nil outside a refinement-constraint context.
	itType ast.Type

	Diagnostics []*TypeError

	// Types records the inferred type of every expression node seen by
	// InferExpr, keyed by pointer identity. internal/mir consults this
	// side table during lowering instead of re-running inference.
	Types map[ast.Expr]ast.Type
}

// NewChecker builds an empty Checker.
func NewChecker() *Checker {
	return &Checker{
		Funcs:          make(map[string]*ast.FnDef),
		GenericFuncs:   make(map[string]*ast.FnDef),
		Structs:        make(map[string]*ast.StructDef),
		GenericStructs: make(map[string]*ast.StructDef),
		Enums:          make(map[string]*ast.EnumDef),
		GenericEnums:   make(map[string]*ast.EnumDef),
		Aliases:        make(map[string]*ast.TypeAlias),
		Traits:         make(map[string]*ast.TraitDef),
		Externs:        make(map[string]*ast.ExternFn),
		Types:          make(map[ast.Expr]ast.Type),
	}
}

// TypeOf returns the type InferExpr recorded for e, if any.
func (c *Checker) TypeOf(e ast.Expr) (ast.Type, bool) {
	t, ok := c.Types[e]
	return t, ok
}

func unitType() ast.Type { return &ast.Primitive{Name: "Unit"} }
func boolType() ast.Type { return &ast.Primitive{Name: "bool"} }

func isNumeric(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	if !ok {
		return false
	}
	switch p.Name {
	case "i32", "i64", "u32", "u64", "f64":
		return true
	}
	return false
}

func isInteger(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	if !ok {
		return false
	}
	switch p.Name {
	case "i32", "i64", "u32", "u64":
		return true
	}
	return false
}

func isString(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	return ok && p.Name == "String"
}

func isBool(t ast.Type) bool {
	p, ok := ast.BaseType(t).(*ast.Primitive)
	return ok && p.Name == "bool"
}
