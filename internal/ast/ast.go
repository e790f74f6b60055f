// Package ast defines the syntax tree produced by the parser: spans,
// types, expressions, patterns and top-level items for BMB source.
package ast

import "fmt"

// Span is a half-open byte interval [Start, End) in the originating
// source. It is never aliased between nodes; copy it freely.
type Span struct {
	Start int
	End   int
	File  string
}

// Spanned pairs a value with the span of source text it came from.
type Spanned[T any] struct {
	Node T
	Span Span
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d:%d)", s.File, s.Start, s.End)
}

// Join returns the smallest span covering both a and b. Both must
// belong to the same file.
func Join(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return Span{Start: start, End: end, File: a.File}
}

// Node is implemented by every syntactic node.
type Node interface {
	String() string
	Pos() Span
}

// Visibility is the exported-ness of a top-level item.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Attribute is one `@name`, `@name(args…)` or `@name "reason"`
// annotation on an item.
type Attribute struct {
	Name   string
	Args   []string
	Reason string // set for `@name "reason"` forms (mandatory for @trust)
	Span   Span
}

func (a *Attribute) String() string {
	if a.Reason != "" {
		return fmt.Sprintf("@%s %q", a.Name, a.Reason)
	}
	if len(a.Args) > 0 {
		return fmt.Sprintf("@%s(%v)", a.Name, a.Args)
	}
	return "@" + a.Name
}
func (a *Attribute) Pos() Span { return a.Span }

// HasAttr reports whether attrs contains an attribute with the given name.
func HasAttr(attrs []*Attribute, name string) bool {
	_, ok := FindAttr(attrs, name)
	return ok
}

// FindAttr returns the first attribute with the given name, if any.
func FindAttr(attrs []*Attribute, name string) (*Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// TypeParam is a generic type parameter with optional trait bounds.
type TypeParam struct {
	Name   string
	Bounds []string
	Span   Span
}

// ModuleHeader is the optional file prologue:
//
//	module a.b.c
//	version 1.2.3
//	summary "…"
//	exports foo, bar
//	depends math.arithmetic (add, sub)
//	===
type ModuleHeader struct {
	Name    string
	Version string
	Summary string
	Exports []string
	Depends []ModuleDependency
	Span    Span
}

// ModuleDependency is one `depends path (imports…)` line of a module header.
type ModuleDependency struct {
	Path    string
	Imports []string
	Span    Span
}

func (h *ModuleHeader) String() string { return fmt.Sprintf("module %s", h.Name) }
func (h *ModuleHeader) Pos() Span      { return h.Span }

// Program is a single parsed source file: optional header, items.
type Program struct {
	Header *ModuleHeader
	Items  []Item
	Span   Span
}

func (p *Program) String() string {
	s := ""
	if p.Header != nil {
		s += p.Header.String() + "\n===\n"
	}
	for _, it := range p.Items {
		s += it.String() + "\n"
	}
	return s
}
func (p *Program) Pos() Span { return p.Span }
