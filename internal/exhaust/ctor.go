package exhaust

import (
	"fmt"
	"sort"

	"github.com/zizixmas/bmb/internal/ast"
)

// ctor identifies one constructor of a type's constructor-set model
// (§4.E): a variant name for enums, a literal/range key for
// int-like scalars, the fixed "tuple"/"struct" shape, or an
// exact-size array shape.
type ctor struct {
	kind  string // "bool", "variant", "lit", "range", "tuple", "struct", "array"
	name  string
	arity int
}

func (c ctor) key() string { return fmt.Sprintf("%s:%s:%d", c.kind, c.name, c.arity) }

// headCtor extracts p's head constructor. ok is false for a pattern
// that matches everything at this position (wildcard, plain variable,
// or — approximated — an array-rest pattern, per the simplification
// noted in DESIGN.md). A BindingPattern delegates to its sub-pattern
// (§4.E "binding patterns delegate to sub-pattern").
func headCtor(p ast.Pattern) (c ctor, sub []ast.Pattern, ok bool) {
	switch n := p.(type) {
	case *ast.WildcardPattern, *ast.VarPattern, nil:
		return ctor{}, nil, false
	case *ast.ArrayRestPattern:
		return ctor{}, nil, false
	case *ast.BindingPattern:
		return headCtor(n.Sub)
	case *ast.LitPattern:
		if b, isBool := n.Value.(*ast.BoolLit); isBool {
			return ctor{kind: "bool", name: fmt.Sprintf("%t", b.Value)}, nil, true
		}
		return ctor{kind: "lit", name: litKey(n.Value)}, nil, true
	case *ast.RangePattern:
		name := fmt.Sprintf("%s..%s,%v", exprKey(n.Start), exprKey(n.End), n.Inclusive)
		return ctor{kind: "range", name: name}, nil, true
	case *ast.VariantPattern:
		name := n.Variant
		if n.EnumName != "" {
			name = n.EnumName + "::" + n.Variant
		}
		return ctor{kind: "variant", name: name, arity: len(n.SubPats)}, n.SubPats, true
	case *ast.StructPattern:
		return ctor{kind: "struct", name: n.Name, arity: len(n.Fields)}, orderedStructFields(n), true
	case *ast.TuplePattern:
		return ctor{kind: "tuple", arity: len(n.Elems)}, n.Elems, true
	case *ast.ArrayPattern:
		return ctor{kind: "array", name: fmt.Sprintf("%d", len(n.Elems)), arity: len(n.Elems)}, n.Elems, true
	case *ast.OrPattern:
		// Callers expand or-patterns before reaching here; treat
		// defensively as the first alternative if one slips through.
		if len(n.Alts) > 0 {
			return headCtor(n.Alts[0])
		}
		return ctor{}, nil, false
	}
	return ctor{}, nil, false
}

func orderedStructFields(n *ast.StructPattern) []ast.Pattern {
	byName := map[string]ast.Pattern{}
	for _, f := range n.Fields {
		byName[f.Name] = f.Pattern
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ast.Pattern, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	return out
}

func litKey(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("int:%d", v.Value)
	case *ast.FloatLit:
		return fmt.Sprintf("float:%g", v.Value)
	case *ast.BoolLit:
		return fmt.Sprintf("bool:%t", v.Value)
	case *ast.StringLit:
		return fmt.Sprintf("str:%q", v.Value)
	case *ast.CharLit:
		return fmt.Sprintf("char:%q", v.Value)
	}
	return "lit:?"
}

func exprKey(e ast.Expr) string {
	if e == nil {
		return "?"
	}
	return e.String()
}

// fullSignature returns every constructor of t's model, or nil if t's
// model is open (int/float/String: completeness can't be decided from
// the type alone, only a wildcard is exhaustive — §4.E).
func (c *Checker) fullSignature(t ast.Type) []ctor {
	switch bt := ast.BaseType(t).(type) {
	case *ast.Primitive:
		switch bt.Name {
		case "bool":
			return []ctor{{kind: "bool", name: "true"}, {kind: "bool", name: "false"}}
		}
		return nil
	case *ast.Named:
		if variants, ok := c.Lookup(bt.Name); ok {
			return enumCtors(bt.Name, variants)
		}
		return nil
	case *ast.Generic:
		if variants, ok := c.Lookup(bt.Name); ok {
			return enumCtors(bt.Name, variants)
		}
		return nil
	case *ast.TupleType:
		return []ctor{{kind: "tuple", arity: len(bt.Elems)}}
	case *ast.StructType:
		return []ctor{{kind: "struct", name: bt.Name, arity: len(bt.Fields)}}
	case *ast.ArrayType:
		return []ctor{{kind: "array", name: fmt.Sprintf("%d", bt.Size), arity: int(bt.Size)}}
	}
	return nil
}

func enumCtors(enumName string, variants []ast.EnumVariantType) []ctor {
	out := make([]ctor, len(variants))
	for i, v := range variants {
		out[i] = ctor{kind: "variant", name: enumName + "::" + v.Name, arity: len(v.Fields)}
	}
	return out
}

// subTypes returns the element types a constructor's sub-patterns
// must be checked against, given the scrutinee's own type.
func (c *Checker) subTypes(t ast.Type, ct ctor) []ast.Type {
	switch bt := ast.BaseType(t).(type) {
	case *ast.Named:
		if variants, ok := c.Lookup(bt.Name); ok {
			for _, v := range variants {
				if bt.Name+"::"+v.Name == ct.name {
					return v.Fields
				}
			}
		}
	case *ast.Generic:
		if variants, ok := c.Lookup(bt.Name); ok {
			for _, v := range variants {
				if bt.Name+"::"+v.Name == ct.name {
					return v.Fields
				}
			}
		}
	case *ast.TupleType:
		return bt.Elems
	case *ast.StructType:
		names := make([]string, 0, len(bt.Fields))
		byName := map[string]ast.Type{}
		for _, f := range bt.Fields {
			names = append(names, f.Name)
			byName[f.Name] = f.Type
		}
		sort.Strings(names)
		out := make([]ast.Type, len(names))
		for i, name := range names {
			out[i] = byName[name]
		}
		return out
	case *ast.ArrayType:
		out := make([]ast.Type, ct.arity)
		for i := range out {
			out[i] = bt.Elem
		}
		return out
	}
	return nil
}

func renderCtor(ct ctor, subWitnesses []string) string {
	switch ct.kind {
	case "bool":
		return ct.name
	case "variant":
		if ct.arity == 0 {
			return ct.name
		}
		return fmt.Sprintf("%s(%s)", ct.name, joinComma(subWitnesses))
	case "tuple":
		return fmt.Sprintf("(%s)", joinComma(subWitnesses))
	case "struct":
		return fmt.Sprintf("%s{%s}", ct.name, joinComma(subWitnesses))
	case "array":
		return fmt.Sprintf("[%s]", joinComma(subWitnesses))
	}
	return "_"
}

func joinComma(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ", "
		}
		out += x
	}
	return out
}
