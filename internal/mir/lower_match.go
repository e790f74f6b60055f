package mir

import "github.com/zizixmas/bmb/internal/ast"

// lowerMatch compiles a match expression into a decision tree of
// Branches, one of the two forms §4.F licenses ("a Switch terminator
// for scrutinee-discriminant enums, or a decision tree of Branches").
// Arms are tried in order; exhaustiveness is assumed already proven by
// internal/exhaust, so the final arm's failure edge targets an
// Unreachable block rather than a runtime panic path.
func (b *builder) lowerMatch(n *ast.Match) Operand {
	scrutVal := b.lowerExpr(n.Scrutinee)
	scrutT := b.typeOf(n.Scrutinee)
	scrutPlace := b.materialize(scrutVal, scrutT)

	mergeLabel := b.freshLabel("match_merge")
	incoming := map[string]Operand{}

	for i, arm := range n.Arms {
		isLast := i == len(n.Arms)-1
		var failLabel string
		if isLast {
			failLabel = b.freshLabel("match_unreachable")
		} else {
			failLabel = b.freshLabel("arm_test")
		}

		childEnv := b.env
		b.env = b.env.child()
		b.compilePattern(arm.Pattern, &Ref{Place: scrutPlace}, scrutT, failLabel)

		if arm.Guard != nil {
			guardVal := b.lowerExpr(arm.Guard)
			bodyLabel := b.freshLabel("arm_body")
			b.finish(&Branch{Cond: guardVal, Then: bodyLabel, Else: failLabel})
			b.setCur(b.newBlockNamed(bodyLabel))
		}

		bodyVal := b.lowerExpr(arm.Body)
		endLabel := b.cur.Label
		incoming[endLabel] = bodyVal
		b.finish(&Goto{Target: mergeLabel})
		b.env = childEnv

		if isLast {
			b.setCur(b.newBlockNamed(failLabel))
			b.finish(&Unreachable{})
		} else {
			b.setCur(b.newBlockNamed(failLabel))
		}
	}

	b.setCur(b.newBlockNamed(mergeLabel))
	resultT := b.typeOf(n)
	if isUnit(resultT) {
		return unitConst()
	}
	dest := b.freshTemp(resultT)
	b.emit(&Phi{Dest: dest, Incoming: incoming})
	return &Ref{Place: dest}
}

func (b *builder) materialize(op Operand, t ast.Type) Place {
	if r, ok := op.(*Ref); ok {
		return r.Place
	}
	dest := b.freshTemp(t)
	b.storeInto(dest, op)
	return dest
}

// compilePattern emits the test/bind code for pat against value
// (already known to have type t). On a successful match execution
// falls through in b.cur; on failure control jumps to fail, a label
// the caller is responsible for turning into a block.
func (b *builder) compilePattern(pat ast.Pattern, value Operand, t ast.Type, fail string) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// always matches, binds nothing
	case *ast.VarPattern:
		place := b.materialize(value, t)
		b.env.bind(p.Name, place)
	case *ast.BindingPattern:
		place := b.materialize(value, t)
		b.env.bind(p.Name, place)
		b.compilePattern(p.Sub, &Ref{Place: place}, t, fail)
	case *ast.LitPattern:
		lit := &Constant{Value: p.Value, Type: t}
		eq := b.freshTemp(&ast.Primitive{Name: "bool"})
		b.emit(&AssignBinOp{Dest: eq, Op: BEq, Left: value, Right: lit})
		ok := b.freshLabel("pat_ok")
		b.finish(&Branch{Cond: &Ref{Place: eq}, Then: ok, Else: fail})
		b.setCur(b.newBlockNamed(ok))
	case *ast.RangePattern:
		startOp := b.lowerExpr(p.Start)
		endOp := b.lowerExpr(p.End)
		geOp, leOp := BGeInt, BLeInt
		if isFloatType(t) {
			geOp, leOp = BGeFloat, BLeFloat
		}
		if !p.Inclusive {
			leOp = BLtInt
			if isFloatType(t) {
				leOp = BLtFloat
			}
		}
		ge := b.freshTemp(&ast.Primitive{Name: "bool"})
		b.emit(&AssignBinOp{Dest: ge, Op: geOp, Left: value, Right: startOp})
		le := b.freshTemp(&ast.Primitive{Name: "bool"})
		b.emit(&AssignBinOp{Dest: le, Op: leOp, Left: value, Right: endOp})
		and := b.freshTemp(&ast.Primitive{Name: "bool"})
		b.emit(&AssignBinOp{Dest: and, Op: BAnd, Left: &Ref{Place: ge}, Right: &Ref{Place: le}})
		ok := b.freshLabel("pat_ok")
		b.finish(&Branch{Cond: &Ref{Place: and}, Then: ok, Else: fail})
		b.setCur(b.newBlockNamed(ok))
	case *ast.VariantPattern:
		isV := b.freshTemp(&ast.Primitive{Name: "bool"})
		b.emit(&AssignIsVariant{Dest: isV, Base: value, EnumName: p.EnumName, Variant: p.Variant})
		ok := b.freshLabel("pat_ok")
		b.finish(&Branch{Cond: &Ref{Place: isV}, Then: ok, Else: fail})
		b.setCur(b.newBlockNamed(ok))
		fieldTypes := b.variantFieldTypes(p.EnumName, t, p.Variant)
		for i, sub := range p.SubPats {
			var ft ast.Type = &ast.Primitive{Name: "Never"}
			if i < len(fieldTypes) {
				ft = fieldTypes[i]
			}
			payload := b.freshTemp(ft)
			b.emit(&AssignVariantPayload{Dest: payload, Base: value, Variant: p.Variant, PayloadIndex: i})
			b.compilePattern(sub, &Ref{Place: payload}, ft, fail)
		}
	case *ast.StructPattern:
		for _, f := range p.Fields {
			ft := b.structFieldType(p.Name, f.Name)
			payload := b.freshTemp(ft)
			b.emit(&AssignField{Dest: payload, Base: value, Field: f.Name})
			b.compilePattern(f.Pattern, &Ref{Place: payload}, ft, fail)
		}
	case *ast.TuplePattern:
		tt, _ := ast.BaseType(t).(*ast.TupleType)
		for i, sub := range p.Elems {
			var et ast.Type = &ast.Primitive{Name: "Never"}
			if tt != nil && i < len(tt.Elems) {
				et = tt.Elems[i]
			}
			payload := b.freshTemp(et)
			b.emit(&AssignTupleField{Dest: payload, Base: value, Index: i})
			b.compilePattern(sub, &Ref{Place: payload}, et, fail)
		}
	case *ast.ArrayPattern:
		at, _ := ast.BaseType(t).(*ast.ArrayType)
		var elemT ast.Type = &ast.Primitive{Name: "Never"}
		if at != nil {
			elemT = at.Elem
		}
		for i, sub := range p.Elems {
			idxConst := &Constant{Value: &ast.IntLit{Value: int64(i)}, Type: &ast.Primitive{Name: "i64"}}
			payload := b.freshTemp(elemT)
			b.emit(&AssignIndex{Dest: payload, Base: value, Index: idxConst})
			b.compilePattern(sub, &Ref{Place: payload}, elemT, fail)
		}
	case *ast.ArrayRestPattern:
		// Binds the fixed prefix/suffix; the open middle section is
		// unconstrained, matching the exhaustiveness checker's treatment
		// of this pattern as an open shape (see internal/exhaust's
		// documented simplification).
		at, _ := ast.BaseType(t).(*ast.ArrayType)
		var elemT ast.Type = &ast.Primitive{Name: "Never"}
		if at != nil {
			elemT = at.Elem
		}
		for i, sub := range p.Before {
			idxConst := &Constant{Value: &ast.IntLit{Value: int64(i)}, Type: &ast.Primitive{Name: "i64"}}
			payload := b.freshTemp(elemT)
			b.emit(&AssignIndex{Dest: payload, Base: value, Index: idxConst})
			b.compilePattern(sub, &Ref{Place: payload}, elemT, fail)
		}
		n := len(p.After)
		for i, sub := range p.After {
			offset := int64(n - i)
			lenDest := b.freshTemp(&ast.Primitive{Name: "i64"})
			b.emit(&AssignMethodCall{Dest: lenDest, Recv: value, Method: "len"})
			idxDest := b.freshTemp(&ast.Primitive{Name: "i64"})
			b.emit(&AssignBinOp{Dest: idxDest, Op: BSubInt, Left: &Ref{Place: lenDest}, Right: &Constant{Value: &ast.IntLit{Value: offset}, Type: &ast.Primitive{Name: "i64"}}})
			payload := b.freshTemp(elemT)
			b.emit(&AssignIndex{Dest: payload, Base: value, Index: &Ref{Place: idxDest}})
			b.compilePattern(sub, &Ref{Place: payload}, elemT, fail)
		}
	case *ast.OrPattern:
		doneLabel := b.freshLabel("or_done")
		doneBlock := b.newBlockNamed(doneLabel)
		for idx, alt := range p.Alts {
			altFail := fail
			if idx != len(p.Alts)-1 {
				altFail = b.freshLabel("or_alt")
			}
			b.compilePattern(alt, value, t, altFail)
			b.finish(&Goto{Target: doneLabel})
			if idx != len(p.Alts)-1 {
				b.setCur(b.newBlockNamed(altFail))
			}
		}
		b.setCur(doneBlock)
	}
}

func (b *builder) variantFieldTypes(enumName string, scrutineeType ast.Type, variant string) []ast.Type {
	if enumName == "" {
		if named, ok := ast.BaseType(scrutineeType).(*ast.Named); ok {
			enumName = named.Name
		} else if g, ok := ast.BaseType(scrutineeType).(*ast.Generic); ok {
			enumName = g.Name
		}
	}
	if ed, ok := b.chk.Enums[enumName]; ok {
		return findVariantFields(ed.Variants, variant)
	}
	if ed, ok := b.chk.GenericEnums[enumName]; ok {
		// Type-argument substitution is not performed here: field shapes
		// still line up positionally even if a generic parameter's
		// concrete type isn't resolved at this point.
		return findVariantFields(ed.Variants, variant)
	}
	return nil
}

func findVariantFields(variants []ast.EnumVariantType, name string) []ast.Type {
	for _, v := range variants {
		if v.Name == name {
			return v.Fields
		}
	}
	return nil
}

func (b *builder) structFieldType(structName, field string) ast.Type {
	if sd, ok := b.chk.Structs[structName]; ok {
		for _, f := range sd.Fields {
			if f.Name == field {
				return f.Type
			}
		}
	}
	if sd, ok := b.chk.GenericStructs[structName]; ok {
		for _, f := range sd.Fields {
			if f.Name == field {
				return f.Type
			}
		}
	}
	return &ast.Primitive{Name: "Never"}
}
