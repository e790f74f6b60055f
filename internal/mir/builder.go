package mir

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/types"
)

// builder holds the per-function state used while walking an AST body
// (fresh temporaries, fresh labels, the block currently being
// appended to, and the enclosing loop's cond/exit labels for
// break/continue).
type builder struct {
	chk      *types.Checker
	fn       *Function
	tempSeq  int
	labelSeq map[string]int
	names    map[string]int // source identifier -> shadow count, for unique MIR local names
	cur      *Block
	env      *venv
	loops    []loopFrame
}

type loopFrame struct {
	condLabel string
	exitLabel string
}

// Lower builds fn's body into a control-flow graph (§4.F). chk is the
// Checker that already type-checked fn; its Types side table supplies
// every expression's type.
func Lower(fn *ast.FnDef, chk *types.Checker) *Function {
	b := &builder{
		chk:      chk,
		labelSeq: map[string]int{},
		names:    map[string]int{},
		fn: &Function{
			Name:    fn.Name,
			RetType: fn.RetType,
			Entry:   "entry",
			Blocks:  map[string]*Block{},
			Locals:  map[string]ast.Type{},
		},
	}
	b.env = newVenv()
	for _, p := range fn.Params {
		place := Place{Name: p.Name, Type: p.Type}
		b.fn.Params = append(b.fn.Params, place)
		b.fn.Locals[p.Name] = p.Type
		b.names[p.Name] = 1 // reserve the plain name; a shadowing `let` gets a suffix
		b.env.bind(p.Name, place)
	}

	entry := b.newBlockNamed("entry")
	b.setCur(entry)

	if fn.Body != nil {
		result := b.lowerExpr(fn.Body)
		if b.cur != nil && b.cur.Term == nil {
			b.finish(&Return{Value: result})
		}
	} else if b.cur != nil && b.cur.Term == nil {
		b.finish(&Return{Value: &Constant{Type: &ast.Primitive{Name: "Unit"}}})
	}

	eliminatePhis(b.fn)
	return b.fn
}

func (b *builder) freshTemp(t ast.Type) Place {
	name := fmt.Sprintf("_t%d", b.tempSeq)
	b.tempSeq++
	b.fn.Locals[name] = t
	return Place{Name: name, Type: t}
}

// uniqueLocalName returns a MIR-safe name for a `let`/closure-param
// binding named src, disambiguating shadowed bindings (the checker's
// Env allows shadowing across nested scopes; MIR's Locals map is flat
// per function).
func (b *builder) uniqueLocalName(src string) string {
	n := b.names[src]
	b.names[src] = n + 1
	if n == 0 {
		return src
	}
	return fmt.Sprintf("%s_%d", src, n)
}

func (b *builder) freshLabel(prefix string) string {
	n := b.labelSeq[prefix]
	b.labelSeq[prefix] = n + 1
	return fmt.Sprintf("%s_%d", prefix, n)
}

func (b *builder) newBlockNamed(label string) *Block {
	blk := &Block{Label: label}
	b.fn.addBlock(blk)
	return blk
}

func (b *builder) newBlock(prefix string) *Block {
	return b.newBlockNamed(b.freshLabel(prefix))
}

func (b *builder) setCur(blk *Block) { b.cur = blk }

func (b *builder) emit(i Instr) {
	b.cur.Instr = append(b.cur.Instr, i)
}

func (b *builder) finish(t Terminator) {
	b.cur.Term = t
	b.cur = nil
}

func (b *builder) typeOf(e ast.Expr) ast.Type {
	if t, ok := b.chk.TypeOf(e); ok {
		return t
	}
	return &ast.Primitive{Name: "Unit"}
}

func unitConst() Operand {
	return &Constant{Type: &ast.Primitive{Name: "Unit"}}
}
