// Package smt translates BMB contract expressions and types to
// SMT-LIB 2, builds a verification-plan script per contract goal, and
// drives an external solver process over stdin/stdout (§4.H).
package smt

import (
	"fmt"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/types"
)

// Sort is a rendered SMT-LIB sort name, e.g. "Int", "Bool" or a
// declared enum/struct datatype name.
type Sort string

const (
	SortInt    Sort = "Int"
	SortReal   Sort = "Real"
	SortBool   Sort = "Bool"
	SortString Sort = "String"
)

// Catalog tracks the enum/struct datatypes a translation run has
// referenced, so the verification-plan script can declare each one
// exactly once before it's used.
type Catalog struct {
	chk      *types.Checker
	declared map[string]bool
	order    []string
}

func NewCatalog(chk *types.Checker) *Catalog {
	return &Catalog{chk: chk, declared: map[string]bool{}}
}

// SortOf maps a checked BMB type to its SMT-LIB sort per §4.H's table:
// i32/i64/u32/u64 -> Int, f64 -> Real, bool -> Bool, String -> String
// (uninterpreted equality, the theory's default), char -> Int (code
// point), and a Named/Generic enum or struct to its declared
// datatype, registering that declaration in the catalog on first use.
//
// A RefinedType's own bound assumptions are not asserted here: §4.H
// says range assumptions are "asserted when a refinement demands it",
// which this translator reads as the refinement's Constraints
// themselves supplying whatever bound is needed, rather than an
// implicit per-width bound baked into every Int. SortOf therefore
// strips RefinedType down to its Base and never widens it.
func (c *Catalog) SortOf(t ast.Type) Sort {
	switch bt := ast.BaseType(t).(type) {
	case *ast.Primitive:
		switch bt.Name {
		case "i32", "i64", "u32", "u64", "char":
			return SortInt
		case "f64":
			return SortReal
		case "bool":
			return SortBool
		case "String":
			return SortString
		default:
			return Sort(sanitize(bt.Name))
		}
	case *ast.Named:
		return c.declareNamed(bt.Name)
	case *ast.Generic:
		return c.declareNamed(bt.Name)
	case *ast.TupleType:
		// No native SMT-LIB tuple theory is assumed available; a tuple
		// is encoded the same way a struct is, under a synthetic name
		// keyed by its shape so two equal-shaped tuple types share one
		// declaration.
		name := tupleName(bt)
		return c.declareTuple(name, bt)
	default:
		return Sort(sanitize(t.String()))
	}
}

func (c *Catalog) declareNamed(name string) Sort {
	sortName := sanitize(name)
	if c.declared[sortName] {
		return Sort(sortName)
	}
	c.declared[sortName] = true
	if ed, ok := c.chk.Enums[name]; ok {
		c.order = append(c.order, c.renderEnum(sortName, ed.Variants))
		return Sort(sortName)
	}
	if ed, ok := c.chk.GenericEnums[name]; ok {
		c.order = append(c.order, c.renderEnum(sortName, ed.Variants))
		return Sort(sortName)
	}
	if sd, ok := c.chk.Structs[name]; ok {
		c.order = append(c.order, c.renderStruct(sortName, sd.Fields))
		return Sort(sortName)
	}
	if sd, ok := c.chk.GenericStructs[name]; ok {
		c.order = append(c.order, c.renderStruct(sortName, sd.Fields))
		return Sort(sortName)
	}
	// Unknown nominal type: declare an uninterpreted sort so the script
	// still parses; no equality/accessor reasoning is possible on it.
	c.order = append(c.order, fmt.Sprintf("(declare-sort %s 0)", sortName))
	return Sort(sortName)
}

func (c *Catalog) declareTuple(sortName string, tt *ast.TupleType) Sort {
	if c.declared[sortName] {
		return Sort(sortName)
	}
	c.declared[sortName] = true
	fields := make([]ast.StructField, len(tt.Elems))
	for i, e := range tt.Elems {
		fields[i] = ast.StructField{Name: fmt.Sprintf("_%d", i), Type: e}
	}
	c.order = append(c.order, c.renderStruct(sortName, fields))
	return Sort(sortName)
}

func (c *Catalog) renderEnum(sortName string, variants []ast.EnumVariantType) string {
	var ctors []string
	for _, v := range variants {
		var fields []string
		for i, ft := range v.Fields {
			fields = append(fields, fmt.Sprintf("(%s_%s_%d %s)", sortName, v.Name, i, c.SortOf(ft)))
		}
		ctors = append(ctors, fmt.Sprintf("(%s %s)", sanitize(v.Name), strings.Join(fields, " ")))
	}
	return fmt.Sprintf("(declare-datatypes ((%s 0)) ((%s)))", sortName, strings.Join(ctors, " "))
}

func (c *Catalog) renderStruct(sortName string, fields []ast.StructField) string {
	var accessors []string
	for _, f := range fields {
		accessors = append(accessors, fmt.Sprintf("(%s_%s %s)", sortName, f.Name, c.SortOf(f.Type)))
	}
	return fmt.Sprintf("(declare-datatypes ((%s 0)) ((mk-%s %s)))", sortName, sortName, strings.Join(accessors, " "))
}

// Declarations returns every declare-sort/declare-datatype form
// accumulated so far, in first-reference order.
func (c *Catalog) Declarations() []string {
	return c.order
}

func tupleName(tt *ast.TupleType) string {
	parts := make([]string, len(tt.Elems))
	for i, e := range tt.Elems {
		parts[i] = sanitize(e.String())
	}
	return "Tuple_" + strings.Join(parts, "_")
}

func sanitize(name string) string {
	r := strings.NewReplacer("<", "_", ">", "_", ",", "_", " ", "", "::", "_", ":", "_")
	return r.Replace(name)
}
