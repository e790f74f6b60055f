// Package mir lowers a checked BMB function body into a control-flow
// graph of basic blocks (§4.F): fresh temporaries, fresh labels, an
// explicit Branch/Goto/Switch terminator per block, and Phi nodes
// eliminated into predecessor-block copies before the CFG leaves this
// package.
package mir

import "github.com/zizixmas/bmb/internal/ast"

// Place names a function-local storage slot: a parameter, a `let`
// binding, or a compiler-introduced temporary.
type Place struct {
	Name string
	Type ast.Type
}

// Operand is the result of lowering an expression: either a literal
// Constant or a reference to a Place.
type Operand interface{ operandNode() }

// Constant wraps a literal expression (Int/Float/Bool/String/Char lit).
type Constant struct {
	Value ast.Expr
	Type  ast.Type
}

// Ref reads the current value of a Place.
type Ref struct {
	Place Place
}

func (*Constant) operandNode() {}
func (*Ref) operandNode()      {}

// MirBinOp is the lowered, type-resolved counterpart of ast.BinOp: the
// checker has already picked integer vs. float vs. string behavior, so
// MIR never has to re-dispatch on operand type.
type MirBinOp int

const (
	BAddInt MirBinOp = iota
	BAddFloat
	BSubInt
	BSubFloat
	BMulInt
	BMulFloat
	BDivInt
	BDivFloat
	BModInt
	BAddWrap
	BSubWrap
	BMulWrap
	BAddChecked
	BSubChecked
	BMulChecked
	BAddSat
	BSubSat
	BMulSat
	BEq
	BNe
	BLtInt
	BLtFloat
	BLeInt
	BLeFloat
	BGtInt
	BGtFloat
	BGeInt
	BGeFloat
	BAnd
	BOr
	BImplies
	BShl
	BShr
	BBAnd
	BBOr
	BBXor
)

// MirUnaryOp is the lowered counterpart of ast.UnOp.
type MirUnaryOp int

const (
	UNegInt MirUnaryOp = iota
	UNegFloat
	UNot
	UBNot
)

// Instr is one straight-line instruction inside a Block.
type Instr interface{ instrNode() }

// AssignConst writes a literal into Dest.
type AssignConst struct {
	Dest  Place
	Value ast.Expr
}

// AssignCopy writes Src's current value into Dest.
type AssignCopy struct {
	Dest Place
	Src  Operand
}

// AssignBinOp writes the result of a binary op into Dest.
type AssignBinOp struct {
	Dest  Place
	Op    MirBinOp
	Left  Operand
	Right Operand
}

// AssignUnaryOp writes the result of a unary op into Dest.
type AssignUnaryOp struct {
	Dest Place
	Op   MirUnaryOp
	Src  Operand
}

// AssignCall writes the result of calling Func (by name) into Dest. A
// nil Dest means the call's result is discarded (its MIR type is unit).
type AssignCall struct {
	Dest *Place
	Func string
	Args []Operand
}

// AssignMethodCall lowers a method call on Recv (built-in method set
// only — see internal/types' builtin method table).
type AssignMethodCall struct {
	Dest   Place
	Recv   Operand
	Method string
	Args   []Operand
}

// AssignField extracts a named struct field from Base into Dest.
type AssignField struct {
	Dest  Place
	Base  Operand
	Field string
}

// AssignTupleField extracts the Index'th tuple element.
type AssignTupleField struct {
	Dest  Place
	Base  Operand
	Index int
}

// AssignIndex extracts Base[Index].
type AssignIndex struct {
	Dest  Place
	Base  Operand
	Index Operand
}

// AssignVariantPayload extracts the PayloadIndex'th field of an enum
// value already known (by a prior Switch/discriminant check) to be
// Variant.
type AssignVariantPayload struct {
	Dest         Place
	Base         Operand
	Variant      string
	PayloadIndex int
}

// AssignIsVariant tests whether Base currently holds EnumName::Variant
// (discriminant test), used by match-arm decision trees to guard
// payload extraction (§4.E "field and variant-payload extraction is
// explicit").
type AssignIsVariant struct {
	Dest     Place
	Base     Operand
	EnumName string
	Variant  string
}

// AssignAggregate builds a struct, tuple, array, enum-variant, range or
// opaque closure value out of already-lowered field operands. Kind is
// "struct", "tuple", "array", "variant", "range" or "closure"; Name
// carries the struct/enum name for "struct" and "variant", "incl" or
// "excl" for "range", and a fresh label for "closure".
type AssignAggregate struct {
	Dest   Place
	Kind   string
	Name   string
	Fields []Operand
}

// AssignRef takes (or dereferences) a reference to a Place; pure
// pass-through at MIR level, no ownership analysis (§4.F).
type AssignRef struct {
	Dest   Place
	Src    Operand
	Deref  bool
	Mutate bool
}

// WriteField mutates one field of Base in place (`base.field = value`
// through a `&mut` receiver).
type WriteField struct {
	Base  Place
	Field string
	Value Operand
}

// WriteIndex mutates Base[Index] in place.
type WriteIndex struct {
	Base  Place
	Index Operand
	Value Operand
}

// Phi is a placeholder SSA-style merge; the φ-placement pass (phi.go)
// removes every Phi before a Function is considered final.
type Phi struct {
	Dest     Place
	Incoming map[string]Operand // predecessor label -> value
}

func (*AssignConst) instrNode()          {}
func (*AssignCopy) instrNode()           {}
func (*AssignBinOp) instrNode()          {}
func (*AssignUnaryOp) instrNode()        {}
func (*AssignCall) instrNode()           {}
func (*AssignMethodCall) instrNode()     {}
func (*AssignField) instrNode()          {}
func (*AssignTupleField) instrNode()     {}
func (*AssignIndex) instrNode()          {}
func (*AssignVariantPayload) instrNode() {}
func (*AssignIsVariant) instrNode()      {}
func (*AssignAggregate) instrNode()      {}
func (*AssignRef) instrNode()            {}
func (*WriteField) instrNode()           {}
func (*WriteIndex) instrNode()           {}
func (*Phi) instrNode()                  {}

// Terminator ends a Block; every Block has exactly one (P5).
type Terminator interface{ termNode() }

// Goto jumps unconditionally to Target.
type Goto struct{ Target string }

// Branch jumps to Then if Cond is true, Else otherwise.
type Branch struct {
	Cond Operand
	Then string
	Else string
}

// Switch dispatches on Discriminant's enum-variant tag.
type Switch struct {
	Discriminant Operand
	Cases        map[string]string // variant name -> block label
	CaseOrder    []string
	Default      string
}

// Return ends the function, yielding Value.
type Return struct{ Value Operand }

// Unreachable marks a block that control can never reach (e.g. an
// exhaustiveness-eliminated match arm, or a contract-proven-dead
// bounds check per §4.G).
type Unreachable struct{}

func (*Goto) termNode()        {}
func (*Branch) termNode()      {}
func (*Switch) termNode()      {}
func (*Return) termNode()      {}
func (*Unreachable) termNode() {}

// Block is one basic block: straight-line instructions ending in
// exactly one terminator.
type Block struct {
	Label string
	Instr []Instr
	Term  Terminator
}

// Function is one lowered function body.
type Function struct {
	Name       string
	Params     []Place
	RetType    ast.Type
	Entry      string
	Blocks     map[string]*Block
	BlockOrder []string // insertion order, for stable iteration/printing
	Locals     map[string]ast.Type
	Facts      []Fact // static invariants recorded by internal/miropt's contract-based pass
}

// Fact records a static invariant internal/miropt proved about this
// function's body, such as a bounds check subsumed by a precondition.
// It is provenance for why a check became Unreachable-guarded, not
// something later passes consult to re-derive the same conclusion.
type Fact struct {
	Description string
	Block       string // block containing the subsumed check, if any
}

func (f *Function) block(label string) *Block { return f.Blocks[label] }

func (f *Function) addBlock(b *Block) {
	f.Blocks[b.Label] = b
	f.BlockOrder = append(f.BlockOrder, b.Label)
}
