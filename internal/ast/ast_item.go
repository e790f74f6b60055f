package ast

import "fmt"

// Item is implemented by every top-level declaration (§3).
type Item interface {
	Node
	itemNode()
	ItemAttrs() []*Attribute
	ItemVis() Visibility
}

// itemBase factors the common attribute/visibility/span fields shared
// by every Item variant.
type itemBase struct {
	Attrs []*Attribute
	Vis   Visibility
	Span  Span
}

func (b *itemBase) ItemAttrs() []*Attribute { return b.Attrs }
func (b *itemBase) ItemVis() Visibility     { return b.Vis }
func (b *itemBase) Pos() Span               { return b.Span }
func (*itemBase) itemNode()                 {}

// SetAttrs, SetVis and SetSpan let the parser fill in the common item
// fields after constructing a concrete Item literal, without needing
// to name the unexported itemBase field directly.
func (b *itemBase) SetAttrs(a []*Attribute) { b.Attrs = a }
func (b *itemBase) SetVis(v Visibility)     { b.Vis = v }
func (b *itemBase) SetSpan(s Span)          { b.Span = s }

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
	Span Span
}

// NamedContract is one `name: cond` entry of a `where { … }` block.
type NamedContract struct {
	Name string // may be empty for an unnamed entry
	Cond Spanned[Expr]
	Span Span
}

// FnDef is a function definition.
//
//	[@attrs] [pub] fn name<T…>(params) -> RetType [-> retBinding]
//	  [pre EXPR] [post EXPR] [where { name: cond; … }]
//	  = body;  |  { body }
type FnDef struct {
	itemBase
	Name       string
	TypeParams []TypeParam
	Params     []Param
	RetType    Type
	RetBinding string // optional return-value binding name used in Post, "" if unused
	Pre        Spanned[Expr]    // legacy `pre EXPR`; Pre.Node == nil if absent
	Post       Spanned[Expr]    // legacy `post EXPR`; Post.Node == nil if absent
	Contracts  []NamedContract  // `where { … }` entries
	Body       Expr
}

func (f *FnDef) String() string { return fmt.Sprintf("fn %s", f.Name) }

// HasPre reports whether a legacy `pre` clause is present.
func (f *FnDef) HasPre() bool { return f.Pre.Node != nil }

// HasPost reports whether a legacy `post` clause is present.
func (f *FnDef) HasPost() bool { return f.Post.Node != nil }

// StructDef is a struct type definition.
type StructDef struct {
	itemBase
	Name       string
	TypeParams []TypeParam
	Fields     []StructField
}

func (s *StructDef) String() string { return fmt.Sprintf("struct %s", s.Name) }

// EnumDef is an enum type definition.
type EnumDef struct {
	itemBase
	Name       string
	TypeParams []TypeParam
	Variants   []EnumVariantType
}

func (e *EnumDef) String() string { return fmt.Sprintf("enum %s", e.Name) }

// TypeAlias is `type Name<T…> = Type;`.
type TypeAlias struct {
	itemBase
	Name       string
	TypeParams []TypeParam
	Target     Type
}

func (t *TypeAlias) String() string { return fmt.Sprintf("type %s = %s", t.Name, t.Target) }

// Use is `use a.b.c;` or `use a.b.c::{x, y};`.
type Use struct {
	itemBase
	Path        string
	Symbols     []string // empty means import the whole module
	SymbolSpans []Span   // one span per Symbols entry, the symbol's own token span
}

func (u *Use) String() string { return fmt.Sprintf("use %s", u.Path) }

// ExternFn is `extern "ABI" fn name(params) -> T;` (§6). The core only
// records this declaration; it never emits ABI code.
type ExternFn struct {
	itemBase
	ABI        string // "bmb" (default), "C", or "system"
	Name       string
	Params     []Param
	RetType    Type
	LinkModule string // from @link("module_name"), "" if absent
}

func (e *ExternFn) String() string { return fmt.Sprintf("extern %q fn %s", e.ABI, e.Name) }

// TraitMethod is one method signature inside a TraitDef.
type TraitMethod struct {
	Name    string
	Params  []Param
	RetType Type
	Span    Span
}

// TraitDef is `trait Name<T…> { methods… }`.
type TraitDef struct {
	itemBase
	Name       string
	TypeParams []TypeParam
	Methods    []TraitMethod
}

func (t *TraitDef) String() string { return fmt.Sprintf("trait %s", t.Name) }

// ImplBlock is `impl Trait for Type { fns… }` (or `impl Type { fns… }`
// for an inherent impl when Trait == "").
type ImplBlock struct {
	itemBase
	Trait      string
	TypeParams []TypeParam
	ForType    Type
	Fns        []*FnDef
}

func (i *ImplBlock) String() string {
	if i.Trait == "" {
		return fmt.Sprintf("impl %s", i.ForType)
	}
	return fmt.Sprintf("impl %s for %s", i.Trait, i.ForType)
}
