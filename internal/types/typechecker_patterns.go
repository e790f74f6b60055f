package types

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

func (c *Checker) inferMatch(n *ast.Match, env *Env) ast.Type {
	scrutT := c.InferExpr(n.Scrutinee, env)
	if len(n.Arms) == 0 {
		return unitType()
	}
	child0 := env.Child()
	c.CheckPattern(n.Arms[0].Pattern, scrutT, child0)
	if n.Arms[0].Guard != nil {
		c.CheckExpr(n.Arms[0].Guard, child0, boolType())
	}
	result := c.InferExpr(n.Arms[0].Body, child0)
	for _, arm := range n.Arms[1:] {
		child := env.Child()
		c.CheckPattern(arm.Pattern, scrutT, child)
		if arm.Guard != nil {
			c.CheckExpr(arm.Guard, child, boolType())
		}
		c.CheckExpr(arm.Body, child, result)
	}
	return result
}

func (c *Checker) checkMatchAgainst(n *ast.Match, env *Env, expected ast.Type) {
	scrutT := c.InferExpr(n.Scrutinee, env)
	for _, arm := range n.Arms {
		child := env.Child()
		c.CheckPattern(arm.Pattern, scrutT, child)
		if arm.Guard != nil {
			c.CheckExpr(arm.Guard, child, boolType())
		}
		c.CheckExpr(arm.Body, child, expected)
	}
}

// CheckPattern binds the names a pattern introduces into env and
// validates it against scrutinee's type (§4.D's pattern rules feed
// §4.E's exhaustiveness check once every arm has a known constructor
// shape).
func (c *Checker) CheckPattern(p ast.Pattern, scrutinee ast.Type, env *Env) {
	base := ast.BaseType(scrutinee)
	switch pat := p.(type) {
	case *ast.WildcardPattern:
	case *ast.VarPattern:
		env.Bind(pat.Name, scrutinee)
	case *ast.LitPattern:
		c.CheckExpr(pat.Value, env, scrutinee)
	case *ast.RangePattern:
		c.CheckExpr(pat.Start, env, scrutinee)
		c.CheckExpr(pat.End, env, scrutinee)
	case *ast.VariantPattern:
		c.checkVariantPattern(pat, base, env)
	case *ast.StructPattern:
		c.checkStructPattern(pat, base, env)
	case *ast.OrPattern:
		for _, alt := range pat.Alts {
			c.CheckPattern(alt, scrutinee, env)
		}
	case *ast.BindingPattern:
		env.Bind(pat.Name, scrutinee)
		c.CheckPattern(pat.Sub, scrutinee, env)
	case *ast.TuplePattern:
		tt, ok := base.(*ast.TupleType)
		if !ok || len(tt.Elems) != len(pat.Elems) {
			c.errorf(errors.TYP001, pat.Span, "pattern shape does not match type %s", scrutinee)
			return
		}
		for i, el := range pat.Elems {
			c.CheckPattern(el, tt.Elems[i], env)
		}
	case *ast.ArrayPattern:
		at, ok := base.(*ast.ArrayType)
		if !ok {
			c.errorf(errors.TYP001, pat.Span, "array pattern against non-array type %s", scrutinee)
			return
		}
		for _, el := range pat.Elems {
			c.CheckPattern(el, at.Elem, env)
		}
	case *ast.ArrayRestPattern:
		at, ok := base.(*ast.ArrayType)
		if !ok {
			c.errorf(errors.TYP001, pat.Span, "array pattern against non-array type %s", scrutinee)
			return
		}
		for _, el := range pat.Before {
			c.CheckPattern(el, at.Elem, env)
		}
		for _, el := range pat.After {
			c.CheckPattern(el, at.Elem, env)
		}
	}
}

func (c *Checker) checkVariantPattern(pat *ast.VariantPattern, base ast.Type, env *Env) {
	enumName := pat.EnumName
	var typeArgs []ast.Type
	if enumName == "" {
		switch bt := base.(type) {
		case *ast.Named:
			enumName = bt.Name
		case *ast.Generic:
			enumName = bt.Name
			typeArgs = bt.TypeArgs
		}
	} else if g, ok := base.(*ast.Generic); ok && g.Name == enumName {
		typeArgs = g.TypeArgs
	}

	if ed, ok := c.Enums[enumName]; ok {
		variant, vok := findVariant(ed.Variants, pat.Variant)
		if !vok {
			c.errorf(errors.TYP004, pat.Span, "enum %q has no variant %q", enumName, pat.Variant)
			return
		}
		c.bindVariantSubPatterns(pat, variant.Fields, env)
		return
	}
	if ed, ok := c.GenericEnums[enumName]; ok {
		variant, vok := findVariant(ed.Variants, pat.Variant)
		if !vok {
			c.errorf(errors.TYP004, pat.Span, "enum %q has no variant %q", enumName, pat.Variant)
			return
		}
		subst := Subst{}
		for i, tp := range ed.TypeParams {
			if i < len(typeArgs) {
				subst[tp.Name] = typeArgs[i]
			}
		}
		fields := make([]ast.Type, len(variant.Fields))
		for i, f := range variant.Fields {
			fields[i] = Apply(subst, f)
		}
		c.bindVariantSubPatterns(pat, fields, env)
		return
	}
	c.errorf(errors.TYP004, pat.Span, "unknown enum %q", enumName)
}

func (c *Checker) bindVariantSubPatterns(pat *ast.VariantPattern, fields []ast.Type, env *Env) {
	if len(pat.SubPats) != len(fields) {
		c.errorf(errors.TYP002, pat.Span, "variant %q expects %d sub-pattern(s), got %d", pat.Variant, len(fields), len(pat.SubPats))
		return
	}
	for i, sp := range pat.SubPats {
		c.CheckPattern(sp, fields[i], env)
	}
}

func (c *Checker) checkStructPattern(pat *ast.StructPattern, base ast.Type, env *Env) {
	name := pat.Name
	if name == "" {
		if nt, ok := base.(*ast.Named); ok {
			name = nt.Name
		}
	}
	if sd, ok := c.Structs[name]; ok {
		byName := map[string]ast.Type{}
		for _, f := range sd.Fields {
			byName[f.Name] = f.Type
		}
		for _, fp := range pat.Fields {
			if t, ok := byName[fp.Name]; ok {
				c.CheckPattern(fp.Pattern, t, env)
			} else {
				c.errorf(errors.TYP003, fp.Pattern.Pos(), "struct %q has no field %q", name, fp.Name)
			}
		}
		return
	}
	c.errorf(errors.TYP001, pat.Span, "unknown struct %q", name)
}
