package ast

import (
	"fmt"
	"strings"
)

// Type is implemented by every type-syntax node (§3 "Type (tagged variant)").
//
// Structural equality on Type is decidable and ignores refinement
// constraints (TypeEqual below); BaseType strips refinements recursively.
type Type interface {
	Node
	typeNode()
}

// Primitive is one of the built-in scalar/unit/never types.
type Primitive struct {
	Name string // "i32", "i64", "u32", "u64", "f64", "bool", "char", "String", "Unit", "Never"
	Span Span
}

func (p *Primitive) String() string { return p.Name }
func (p *Primitive) Pos() Span      { return p.Span }
func (*Primitive) typeNode()        {}

// Named is a nominal type referenced by name; it may resolve to a
// struct, enum or alias during resolution/typechecking.
type Named struct {
	Name string
	Span Span
}

func (n *Named) String() string { return n.Name }
func (n *Named) Pos() Span      { return n.Span }
func (*Named) typeNode()        {}

// TypeVar is a bound generic parameter in the current scope.
type TypeVar struct {
	Name string
	Span Span
}

func (t *TypeVar) String() string { return t.Name }
func (t *TypeVar) Pos() Span      { return t.Span }
func (*TypeVar) typeNode()        {}

// Generic is an instantiated generic type, e.g. Option<i64>.
type Generic struct {
	Name     string
	TypeArgs []Type
	Span     Span
}

func (g *Generic) String() string {
	args := make([]string, len(g.TypeArgs))
	for i, a := range g.TypeArgs {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", g.Name, strings.Join(args, ", "))
}
func (g *Generic) Pos() Span { return g.Span }
func (*Generic) typeNode()   {}

// StructField is one (name, Type) field of a struct, in declared order.
type StructField struct {
	Name string
	Type Type
	Span Span
}

// StructType names a struct and its fields.
type StructType struct {
	Name   string
	Fields []StructField
	Span   Span
}

func (s *StructType) String() string { return s.Name }
func (s *StructType) Pos() Span      { return s.Span }
func (*StructType) typeNode()        {}

// EnumVariantType is one (name, payload types) variant of an enum.
type EnumVariantType struct {
	Name   string
	Fields []Type
	Span   Span
}

// EnumType names an enum and its variants, in declared order.
type EnumType struct {
	Name     string
	Variants []EnumVariantType
	Span     Span
}

func (e *EnumType) String() string { return e.Name }
func (e *EnumType) Pos() Span      { return e.Span }
func (*EnumType) typeNode()        {}

// TupleType is a fixed-arity product type.
type TupleType struct {
	Elems []Type
	Span  Span
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
func (t *TupleType) Pos() Span { return t.Span }
func (*TupleType) typeNode()   {}

// ArrayType is a fixed-size array.
type ArrayType struct {
	Elem Type
	Size int64
	Span Span
}

func (a *ArrayType) String() string { return fmt.Sprintf("[%s; %d]", a.Elem, a.Size) }
func (a *ArrayType) Pos() Span      { return a.Span }
func (*ArrayType) typeNode()        {}

// RangeType is a `Range<T>` of some integer element type.
type RangeType struct {
	Elem Type
	Span Span
}

func (r *RangeType) String() string { return fmt.Sprintf("Range<%s>", r.Elem) }
func (r *RangeType) Pos() Span      { return r.Span }
func (*RangeType) typeNode()        {}

// RefType is `&T`.
type RefType struct {
	Elem Type
	Span Span
}

func (r *RefType) String() string { return "&" + r.Elem.String() }
func (r *RefType) Pos() Span      { return r.Span }
func (*RefType) typeNode()        {}

// RefMutType is `&mut T`.
type RefMutType struct {
	Elem Type
	Span Span
}

func (r *RefMutType) String() string { return "&mut " + r.Elem.String() }
func (r *RefMutType) Pos() Span      { return r.Span }
func (*RefMutType) typeNode()        {}

// NullableType is `T?`.
type NullableType struct {
	Elem Type
	Span Span
}

func (n *NullableType) String() string { return n.Elem.String() + "?" }
func (n *NullableType) Pos() Span      { return n.Span }
func (*NullableType) typeNode()        {}

// FnType is a function type `fn(Params) -> Ret`.
type FnType struct {
	Params []Type
	Ret    Type
	Span   Span
}

func (f *FnType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}
func (f *FnType) Pos() Span { return f.Span }
func (*FnType) typeNode()   {}

// RefinedType is `Base{c1, c2, …}`. Equality on Type ignores
// Constraints (structural); subtyping and obligation generation use
// them (§4.D, §4.H).
type RefinedType struct {
	Base        Type
	Constraints []Spanned[Expr]
	Span        Span
}

func (r *RefinedType) String() string {
	cs := make([]string, len(r.Constraints))
	for i, c := range r.Constraints {
		cs[i] = c.Node.String()
	}
	return fmt.Sprintf("%s{%s}", r.Base, strings.Join(cs, ", "))
}
func (r *RefinedType) Pos() Span { return r.Span }
func (*RefinedType) typeNode()   {}

// TypeEqual is structural equality over Type, ignoring refinement
// constraints (invariant from §3).
func TypeEqual(a, b Type) bool {
	a = BaseType(a)
	b = BaseType(b)
	switch av := a.(type) {
	case *Primitive:
		bv, ok := b.(*Primitive)
		return ok && av.Name == bv.Name
	case *Named:
		bv, ok := b.(*Named)
		return ok && av.Name == bv.Name
	case *TypeVar:
		bv, ok := b.(*TypeVar)
		return ok && av.Name == bv.Name
	case *Generic:
		bv, ok := b.(*Generic)
		if !ok || av.Name != bv.Name || len(av.TypeArgs) != len(bv.TypeArgs) {
			return false
		}
		for i := range av.TypeArgs {
			if !TypeEqual(av.TypeArgs[i], bv.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *StructType:
		bv, ok := b.(*StructType)
		if !ok || av.Name != bv.Name || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !TypeEqual(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	case *EnumType:
		bv, ok := b.(*EnumType)
		if !ok || av.Name != bv.Name || len(av.Variants) != len(bv.Variants) {
			return false
		}
		for i := range av.Variants {
			if av.Variants[i].Name != bv.Variants[i].Name || len(av.Variants[i].Fields) != len(bv.Variants[i].Fields) {
				return false
			}
			for j := range av.Variants[i].Fields {
				if !TypeEqual(av.Variants[i].Fields[j], bv.Variants[i].Fields[j]) {
					return false
				}
			}
		}
		return true
	case *TupleType:
		bv, ok := b.(*TupleType)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !TypeEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bv, ok := b.(*ArrayType)
		return ok && av.Size == bv.Size && TypeEqual(av.Elem, bv.Elem)
	case *RangeType:
		bv, ok := b.(*RangeType)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case *RefType:
		bv, ok := b.(*RefType)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case *RefMutType:
		bv, ok := b.(*RefMutType)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case *NullableType:
		bv, ok := b.(*NullableType)
		return ok && TypeEqual(av.Elem, bv.Elem)
	case *FnType:
		bv, ok := b.(*FnType)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !TypeEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return TypeEqual(av.Ret, bv.Ret)
	default:
		return false
	}
}

// BaseType strips a RefinedType wrapper recursively (also recursing
// into structurally-nested positions is not required: refinements
// only ever wrap a whole type reference).
func BaseType(t Type) Type {
	for {
		r, ok := t.(*RefinedType)
		if !ok {
			return t
		}
		t = r.Base
	}
}
