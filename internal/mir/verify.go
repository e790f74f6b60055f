package mir

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/errors"
)

// ValidateInvariants checks fn against §4.F/P5's MIR well-formedness
// invariants: a single declared entry block, exactly one terminator
// per block, no Place referenced without a declaring parameter or
// local, and no Phi surviving φ-elimination. It never panics on a
// malformed Function; every failure becomes a *errors.Report instead,
// the same MIR### taxonomy used by nothing else yet, since no lowering
// or optimizer bug has ever reached this checker before.
func ValidateInvariants(fn *Function) []*errors.Report {
	var reports []*errors.Report

	if fn.Entry == "" || fn.Blocks[fn.Entry] == nil {
		reports = append(reports, mirReport(errors.MIR001, fn.Name,
			fmt.Sprintf("function %q declares no valid entry block", fn.Name)))
	}

	declared := map[string]bool{}
	for name := range fn.Locals {
		declared[name] = true
	}

	for _, label := range fn.BlockOrder {
		block := fn.Blocks[label]
		if block == nil {
			continue
		}
		if block.Term == nil {
			reports = append(reports, mirReport(errors.MIR002, fn.Name,
				fmt.Sprintf("block %q in function %q has no terminator", label, fn.Name)))
		}
		for _, instr := range block.Instr {
			if _, ok := instr.(*Phi); ok {
				reports = append(reports, mirReport(errors.MIR004, fn.Name,
					fmt.Sprintf("block %q in function %q still has a Phi after lowering", label, fn.Name)))
			}
			for _, name := range referencedPlaces(instr) {
				if !declared[name] {
					reports = append(reports, mirReport(errors.MIR003, fn.Name,
						fmt.Sprintf("place %q referenced in function %q without a declaring parameter or local", name, fn.Name)))
				}
			}
		}
		for _, name := range referencedPlacesInTerm(block.Term) {
			if !declared[name] {
				reports = append(reports, mirReport(errors.MIR003, fn.Name,
					fmt.Sprintf("place %q referenced in function %q without a declaring parameter or local", name, fn.Name)))
			}
		}
	}

	return reports
}

func mirReport(code, fnName, message string) *errors.Report {
	return &errors.Report{
		Schema:  errors.ErrorV1,
		Code:    code,
		Phase:   "mir",
		Message: message,
		Data:    map[string]any{"function": fnName},
	}
}

// referencedPlaces returns every Place name an instruction reads or
// writes: its Dest (if any) plus every operand's Place.
func referencedPlaces(instr Instr) []string {
	var names []string
	add := func(p Place) { names = append(names, p.Name) }
	addOp := func(op Operand) {
		if ref, ok := op.(*Ref); ok {
			add(ref.Place)
		}
	}

	switch n := instr.(type) {
	case *AssignConst:
		add(n.Dest)
	case *AssignCopy:
		add(n.Dest)
		addOp(n.Src)
	case *AssignBinOp:
		add(n.Dest)
		addOp(n.Left)
		addOp(n.Right)
	case *AssignUnaryOp:
		add(n.Dest)
		addOp(n.Src)
	case *AssignCall:
		if n.Dest != nil {
			add(*n.Dest)
		}
		for _, a := range n.Args {
			addOp(a)
		}
	case *AssignMethodCall:
		add(n.Dest)
		addOp(n.Recv)
		for _, a := range n.Args {
			addOp(a)
		}
	case *AssignField:
		add(n.Dest)
		addOp(n.Base)
	case *AssignTupleField:
		add(n.Dest)
		addOp(n.Base)
	case *AssignIndex:
		add(n.Dest)
		addOp(n.Base)
		addOp(n.Index)
	case *AssignVariantPayload:
		add(n.Dest)
		addOp(n.Base)
	case *AssignIsVariant:
		add(n.Dest)
		addOp(n.Base)
	case *AssignAggregate:
		add(n.Dest)
		for _, f := range n.Fields {
			addOp(f)
		}
	case *AssignRef:
		add(n.Dest)
		addOp(n.Src)
	case *WriteField:
		add(n.Base)
		addOp(n.Value)
	case *WriteIndex:
		add(n.Base)
		addOp(n.Index)
		addOp(n.Value)
	case *Phi:
		add(n.Dest)
		for _, v := range n.Incoming {
			addOp(v)
		}
	}
	return names
}

func referencedPlacesInTerm(term Terminator) []string {
	var names []string
	addOp := func(op Operand) {
		if ref, ok := op.(*Ref); ok {
			names = append(names, ref.Place.Name)
		}
	}
	switch n := term.(type) {
	case *Branch:
		addOp(n.Cond)
	case *Switch:
		addOp(n.Discriminant)
	case *Return:
		addOp(n.Value)
	}
	return names
}
