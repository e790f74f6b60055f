package types

import "github.com/zizixmas/bmb/internal/ast"

// Subst maps a generic type parameter name to the concrete type bound
// to it during call-site inference (§4.D "Generic inference").
type Subst map[string]ast.Type

// Apply substitutes every TypeVar in t that subst knows about,
// recursing structurally through every composite Type shape.
func Apply(subst Subst, t ast.Type) ast.Type {
	switch ty := t.(type) {
	case nil:
		return nil
	case *ast.TypeVar:
		if bound, ok := subst[ty.Name]; ok {
			return bound
		}
		return ty
	case *ast.RefType:
		return &ast.RefType{Elem: Apply(subst, ty.Elem), Span: ty.Span}
	case *ast.RefMutType:
		return &ast.RefMutType{Elem: Apply(subst, ty.Elem), Span: ty.Span}
	case *ast.NullableType:
		return &ast.NullableType{Elem: Apply(subst, ty.Elem), Span: ty.Span}
	case *ast.ArrayType:
		return &ast.ArrayType{Elem: Apply(subst, ty.Elem), Size: ty.Size, Span: ty.Span}
	case *ast.RangeType:
		return &ast.RangeType{Elem: Apply(subst, ty.Elem), Span: ty.Span}
	case *ast.TupleType:
		elems := make([]ast.Type, len(ty.Elems))
		for i, e := range ty.Elems {
			elems[i] = Apply(subst, e)
		}
		return &ast.TupleType{Elems: elems, Span: ty.Span}
	case *ast.Generic:
		args := make([]ast.Type, len(ty.TypeArgs))
		for i, a := range ty.TypeArgs {
			args[i] = Apply(subst, a)
		}
		return &ast.Generic{Name: ty.Name, TypeArgs: args, Span: ty.Span}
	case *ast.FnType:
		params := make([]ast.Type, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = Apply(subst, p)
		}
		return &ast.FnType{Params: params, Ret: Apply(subst, ty.Ret), Span: ty.Span}
	case *ast.RefinedType:
		return &ast.RefinedType{Base: Apply(subst, ty.Base), Constraints: ty.Constraints, Span: ty.Span}
	default:
		return t
	}
}

// Unify attempts to bind the TypeVars free in pattern so that
// Apply(subst, pattern) structurally equals concrete, accumulating
// bindings into subst (§4.D "Unification"). A TypeVar unifies with
// anything in scope on first encounter; a second encounter of the
// same TypeVar must structurally match what it was already bound to.
// Generic{name, args} unifies point-wise by name; everything else
// unifies structurally, recursing through Ref/RefMut/Array/Range.
func Unify(subst Subst, pattern, concrete ast.Type) bool {
	pattern = ast.BaseType(pattern)
	concrete = ast.BaseType(concrete)

	if tv, ok := pattern.(*ast.TypeVar); ok {
		if bound, ok := subst[tv.Name]; ok {
			return Unify(subst, bound, concrete)
		}
		subst[tv.Name] = concrete
		return true
	}

	switch p := pattern.(type) {
	case *ast.Primitive:
		c, ok := concrete.(*ast.Primitive)
		return ok && c.Name == p.Name
	case *ast.Named:
		c, ok := concrete.(*ast.Named)
		return ok && c.Name == p.Name
	case *ast.Generic:
		c, ok := concrete.(*ast.Generic)
		if !ok || c.Name != p.Name || len(c.TypeArgs) != len(p.TypeArgs) {
			return false
		}
		for i := range p.TypeArgs {
			if !Unify(subst, p.TypeArgs[i], c.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *ast.RefType:
		c, ok := concrete.(*ast.RefType)
		return ok && Unify(subst, p.Elem, c.Elem)
	case *ast.RefMutType:
		c, ok := concrete.(*ast.RefMutType)
		return ok && Unify(subst, p.Elem, c.Elem)
	case *ast.NullableType:
		c, ok := concrete.(*ast.NullableType)
		return ok && Unify(subst, p.Elem, c.Elem)
	case *ast.ArrayType:
		c, ok := concrete.(*ast.ArrayType)
		return ok && c.Size == p.Size && Unify(subst, p.Elem, c.Elem)
	case *ast.RangeType:
		c, ok := concrete.(*ast.RangeType)
		return ok && Unify(subst, p.Elem, c.Elem)
	case *ast.TupleType:
		c, ok := concrete.(*ast.TupleType)
		if !ok || len(c.Elems) != len(p.Elems) {
			return false
		}
		for i := range p.Elems {
			if !Unify(subst, p.Elems[i], c.Elems[i]) {
				return false
			}
		}
		return true
	case *ast.FnType:
		c, ok := concrete.(*ast.FnType)
		if !ok || len(c.Params) != len(p.Params) {
			return false
		}
		for i := range p.Params {
			if !Unify(subst, p.Params[i], c.Params[i]) {
				return false
			}
		}
		return Unify(subst, p.Ret, c.Ret)
	case *ast.StructType:
		c, ok := concrete.(*ast.StructType)
		return ok && c.Name == p.Name
	case *ast.EnumType:
		c, ok := concrete.(*ast.EnumType)
		return ok && c.Name == p.Name
	default:
		return ast.TypeEqual(pattern, concrete)
	}
}
