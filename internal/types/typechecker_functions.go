package types

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/errors"
)

// inferCall implements §4.D's call-site rules, including generic
// inference: a TypeVar in a generic function's parameter list is
// bound to the argument's inferred type on first encounter (via
// Unify), and any TypeVar left unbound by the end of the argument
// list is a TYP007 "cannot infer" error (§9 "Generic enums with
// unbound type parameters" applies the same rule at call boundaries).
func (c *Checker) inferCall(n *ast.Call, env *Env) ast.Type {
	name, ok := calleeName(n.Callee)
	if !ok {
		fnT := ast.BaseType(c.InferExpr(n.Callee, env))
		ft, ok := fnT.(*ast.FnType)
		if !ok {
			c.errorf(errors.TYP001, n.Span, "cannot call non-function type %s", fnT)
			return &ast.Primitive{Name: "Never"}
		}
		return c.checkArgs(n, env, ft.Params, ft.Ret, nil)
	}

	if fn, ok := c.Funcs[name]; ok {
		params := make([]ast.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		return c.checkArgs(n, env, params, fn.RetType, nil)
	}

	if fn, ok := c.GenericFuncs[name]; ok {
		return c.inferGenericCall(n, env, fn)
	}

	if ext, ok := c.Externs[name]; ok {
		params := make([]ast.Type, len(ext.Params))
		for i, p := range ext.Params {
			params[i] = p.Type
		}
		return c.checkArgs(n, env, params, ext.RetType, nil)
	}

	c.errorf(errors.TYP006, n.Span, "unbound function %q", name)
	return &ast.Primitive{Name: "Never"}
}

func calleeName(e ast.Expr) (string, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

func (c *Checker) checkArgs(n *ast.Call, env *Env, params []ast.Type, ret ast.Type, subst Subst) ast.Type {
	if len(n.Args) != len(params) {
		c.errorf(errors.TYP002, n.Span, "expected %d argument(s), got %d", len(params), len(n.Args))
	}
	count := len(n.Args)
	if len(params) < count {
		count = len(params)
	}
	for i := 0; i < count; i++ {
		want := params[i]
		if subst != nil {
			want = Apply(subst, want)
		}
		c.CheckExpr(n.Args[i], env, want)
	}
	if subst != nil {
		return Apply(subst, ret)
	}
	return ret
}

func (c *Checker) inferGenericCall(n *ast.Call, env *Env, fn *ast.FnDef) ast.Type {
	subst := Subst{}
	count := len(n.Args)
	if len(fn.Params) < count {
		count = len(fn.Params)
	}
	for i := 0; i < count; i++ {
		argT := c.InferExpr(n.Args[i], env)
		if !Unify(subst, fn.Params[i].Type, argT) {
			c.unify(errors.TYP001, n.Args[i].Pos(), fn.Params[i].Type, argT)
		}
	}
	for _, tp := range fn.TypeParams {
		if _, ok := subst[tp.Name]; !ok {
			c.errorf(errors.TYP007, n.Span, "cannot infer type parameter %q of %q", tp.Name, fn.Name)
		}
	}
	params := make([]ast.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	return c.checkArgs(n, env, params, fn.RetType, subst)
}

// builtinMethodResult is §4.D's small built-in method set. prim names
// the receiver's concrete type constructor ("String", "Array",
// "Option", "Result"); typeArgs carries the receiver's instantiated
// generic arguments, if any.
func builtinMethodResult(prim string, typeArgs []ast.Type, method string, argc int) (ast.Type, bool) {
	switch prim {
	case "String":
		switch method {
		case "len":
			return &ast.Primitive{Name: "i64"}, true
		case "char_at":
			return &ast.Primitive{Name: "char"}, true
		case "slice":
			return &ast.Primitive{Name: "String"}, true
		case "is_empty":
			return boolType(), true
		}
	case "Array":
		if method == "len" {
			return &ast.Primitive{Name: "i64"}, true
		}
	case "Option":
		switch method {
		case "is_some", "is_none":
			return boolType(), true
		case "unwrap_or":
			if len(typeArgs) == 1 {
				return typeArgs[0], true
			}
		}
	case "Result":
		switch method {
		case "is_ok", "is_err":
			return boolType(), true
		case "unwrap_or":
			if len(typeArgs) >= 1 {
				return typeArgs[0], true
			}
		}
	}
	return nil, false
}

func (c *Checker) inferMethodCall(n *ast.MethodCall, env *Env) ast.Type {
	recvT := ast.BaseType(c.InferExpr(n.Receiver, env))

	var ctor string
	var typeArgs []ast.Type
	switch rt := recvT.(type) {
	case *ast.Primitive:
		if rt.Name == "String" {
			ctor = "String"
		}
	case *ast.ArrayType:
		ctor = "Array"
	case *ast.Generic:
		ctor = rt.Name
		typeArgs = rt.TypeArgs
	}

	for _, a := range n.Args {
		c.InferExpr(a, env)
	}

	if ctor != "" {
		if ret, ok := builtinMethodResult(ctor, typeArgs, n.Method, len(n.Args)); ok {
			return ret
		}
	}
	c.errorf(errors.TYP005, n.Span, "type %s has no method %q", recvT, n.Method)
	return &ast.Primitive{Name: "Never"}
}

func (c *Checker) inferFieldAccess(n *ast.FieldAccess, env *Env) ast.Type {
	recvT := ast.BaseType(c.InferExpr(n.Base, env))

	var structName string
	var typeArgs []ast.Type
	switch rt := recvT.(type) {
	case *ast.Named:
		structName = rt.Name
	case *ast.Generic:
		structName = rt.Name
		typeArgs = rt.TypeArgs
	case *ast.StructType:
		structName = rt.Name
	}

	if sd, ok := c.Structs[structName]; ok {
		for _, f := range sd.Fields {
			if f.Name == n.Field {
				return f.Type
			}
		}
	}
	if sd, ok := c.GenericStructs[structName]; ok {
		subst := Subst{}
		for i, tp := range sd.TypeParams {
			if i < len(typeArgs) {
				subst[tp.Name] = typeArgs[i]
			}
		}
		for _, f := range sd.Fields {
			if f.Name == n.Field {
				return Apply(subst, f.Type)
			}
		}
	}

	c.errorf(errors.TYP003, n.Span, "type %s has no field %q", recvT, n.Field)
	return &ast.Primitive{Name: "Never"}
}

func (c *Checker) inferNewStruct(n *ast.NewStruct, env *Env) ast.Type {
	if sd, ok := c.Structs[n.Name]; ok {
		c.checkStructFields(n, env, sd.Fields, nil)
		return &ast.Named{Name: n.Name}
	}
	if sd, ok := c.GenericStructs[n.Name]; ok {
		subst := Subst{}
		for _, fi := range n.Fields {
			for _, f := range sd.Fields {
				if f.Name == fi.Name {
					argT := c.InferExpr(fi.Value, env)
					Unify(subst, f.Type, argT)
				}
			}
		}
		c.checkStructFields(n, env, sd.Fields, subst)
		args := make([]ast.Type, len(sd.TypeParams))
		for i, tp := range sd.TypeParams {
			if bound, ok := subst[tp.Name]; ok {
				args[i] = bound
			} else {
				c.errorf(errors.TYP007, n.Span, "cannot infer type parameter %q of %q", tp.Name, sd.Name)
				args[i] = &ast.Primitive{Name: "Never"}
			}
		}
		return &ast.Generic{Name: n.Name, TypeArgs: args}
	}
	c.errorf(errors.TYP001, n.Span, "unknown struct %q", n.Name)
	return &ast.Primitive{Name: "Never"}
}

func (c *Checker) checkStructFields(n *ast.NewStruct, env *Env, fields []ast.StructField, subst Subst) {
	byName := map[string]ast.Type{}
	for _, f := range fields {
		t := f.Type
		if subst != nil {
			t = Apply(subst, t)
		}
		byName[f.Name] = t
	}
	for _, fi := range n.Fields {
		want, ok := byName[fi.Name]
		if !ok {
			c.errorf(errors.TYP003, fi.Value.Pos(), "struct %q has no field %q", n.Name, fi.Name)
			continue
		}
		c.CheckExpr(fi.Value, env, want)
	}
}

func (c *Checker) inferEnumVariant(n *ast.EnumVariantExpr, env *Env) ast.Type {
	for _, a := range n.Args {
		c.InferExpr(a, env)
	}
	if n.EnumName == "" {
		// Left free for the enclosing context to ground (§9 "generic
		// enums with unbound type parameters"); callers that need a
		// concrete type must check this expression, not infer it.
		return &ast.TypeVar{Name: fmt.Sprintf("?%s", n.Variant)}
	}

	if ed, ok := c.Enums[n.EnumName]; ok {
		variant, vok := findVariant(ed.Variants, n.Variant)
		if !vok {
			c.errorf(errors.TYP004, n.Span, "enum %q has no variant %q", n.EnumName, n.Variant)
			return &ast.Primitive{Name: "Never"}
		}
		c.checkVariantArgs(n, env, variant.Fields, nil)
		return &ast.Named{Name: n.EnumName}
	}

	if ed, ok := c.GenericEnums[n.EnumName]; ok {
		variant, vok := findVariant(ed.Variants, n.Variant)
		if !vok {
			c.errorf(errors.TYP004, n.Span, "enum %q has no variant %q", n.EnumName, n.Variant)
			return &ast.Primitive{Name: "Never"}
		}
		subst := Subst{}
		for i, field := range variant.Fields {
			if i < len(n.Args) {
				argT := c.InferExpr(n.Args[i], env)
				Unify(subst, field, argT)
			}
		}
		args := make([]ast.Type, len(ed.TypeParams))
		for i, tp := range ed.TypeParams {
			if bound, ok := subst[tp.Name]; ok {
				args[i] = bound
			} else {
				args[i] = &ast.TypeVar{Name: tp.Name} // still free; grounded by context
			}
		}
		return &ast.Generic{Name: n.EnumName, TypeArgs: args}
	}

	c.errorf(errors.TYP001, n.Span, "unknown enum %q", n.EnumName)
	return &ast.Primitive{Name: "Never"}
}

func (c *Checker) checkVariantArgs(n *ast.EnumVariantExpr, env *Env, fields []ast.Type, subst Subst) {
	if len(n.Args) != len(fields) {
		c.errorf(errors.TYP002, n.Span, "variant %q expects %d argument(s), got %d", n.Variant, len(fields), len(n.Args))
	}
	count := len(n.Args)
	if len(fields) < count {
		count = len(fields)
	}
	for i := 0; i < count; i++ {
		want := fields[i]
		if subst != nil {
			want = Apply(subst, want)
		}
		c.CheckExpr(n.Args[i], env, want)
	}
}

func findVariant(variants []ast.EnumVariantType, name string) (ast.EnumVariantType, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}
	return ast.EnumVariantType{}, false
}
