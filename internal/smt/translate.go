package smt

import (
	"fmt"
	"strings"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/types"
)

// Translator turns contract expressions and (restricted) function
// bodies into SMT-LIB 2 term strings. It carries the two-state naming
// scheme §4.H specifies: a plain identifier reads its current (post)
// binding, and old(e)/e.pre reads a shadow constant suffixed __pre.
type Translator struct {
	chk     *types.Checker
	catalog *Catalog
	// arrayLens names every `len(ident)` reference seen, so Plan can
	// declare and constrain the reserved length constants it needs.
	arrayLens map[string]bool
	err       error
}

func NewTranslator(chk *types.Checker, catalog *Catalog) *Translator {
	return &Translator{chk: chk, catalog: catalog, arrayLens: map[string]bool{}}
}

// Err returns the first translation failure encountered, if any. A
// non-nil Err means the caller should report Unknown(err), not trust
// any term string produced alongside it.
func (tr *Translator) Err() error { return tr.err }

// ArrayLens returns every base identifier that len(ident) was applied
// to during translation.
func (tr *Translator) ArrayLens() []string {
	out := make([]string, 0, len(tr.arrayLens))
	for name := range tr.arrayLens {
		out = append(out, name)
	}
	return out
}

func (tr *Translator) fail(format string, args ...interface{}) string {
	if tr.err == nil {
		tr.err = fmt.Errorf(format, args...)
	}
	return "false"
}

// Expr translates a contract expression (pre/post/where clauses,
// refinement constraints) to an SMT-LIB term. ret and it resolve via
// the retName/itName arguments, which callers set to "" when that
// name isn't in scope for the clause being translated (e.g. a
// precondition never sees ret).
func (tr *Translator) Expr(e ast.Expr, retName, itName string) string {
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Value < 0 {
			return fmt.Sprintf("(- %d)", -n.Value)
		}
		return fmt.Sprintf("%d", n.Value)
	case *ast.FloatLit:
		return formatReal(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *ast.CharLit:
		return fmt.Sprintf("%d", n.Value)
	case *ast.Ident:
		return sanitize(n.Name)
	case *ast.Ret:
		if retName == "" {
			return tr.fail("ret referenced outside a postcondition")
		}
		return retName
	case *ast.It:
		if itName == "" {
			return tr.fail("it referenced outside a refinement constraint")
		}
		return itName
	case *ast.StateRef:
		return tr.stateRef(n, retName, itName)
	case *ast.Unary:
		return tr.unary(n, retName, itName)
	case *ast.Binary:
		return tr.binary(n, retName, itName)
	case *ast.Call:
		return tr.call(n, retName, itName)
	case *ast.Index:
		base := tr.Expr(n.Base, retName, itName)
		idx := tr.Expr(n.Index, retName, itName)
		return fmt.Sprintf("(select %s %s)", base, idx)
	case *ast.FieldAccess:
		return tr.fieldAccess(n, retName, itName)
	case *ast.TupleFieldAccess:
		sortName := tr.sortNameOf(n.Base)
		base := tr.Expr(n.Base, retName, itName)
		return fmt.Sprintf("(%s__%d %s)", sortName, n.Index, base)
	case *ast.If:
		cond := tr.Expr(n.Cond, retName, itName)
		then := tr.Expr(n.Then, retName, itName)
		els := "false"
		if n.Else != nil {
			els = tr.Expr(n.Else, retName, itName)
		}
		return fmt.Sprintf("(ite %s %s %s)", cond, then, els)
	case *ast.Let:
		value := tr.Expr(n.Value, retName, itName)
		body := tr.Expr(n.Body, retName, itName)
		return fmt.Sprintf("(let ((%s %s)) %s)", sanitize(n.Name), value, body)
	case *ast.Block:
		return tr.block(n, retName, itName)
	case *ast.Quantifier:
		sort := tr.catalog.SortOf(n.VarType)
		body := tr.Expr(n.Body, retName, itName)
		kw := "exists"
		if n.Universal {
			kw = "forall"
		}
		return fmt.Sprintf("(%s ((%s %s)) %s)", kw, sanitize(n.Var), sort, body)
	case *ast.Try:
		return tr.Expr(n.Expr, retName, itName)
	default:
		return tr.fail("expression shape %T has no SMT translation", e)
	}
}

func (tr *Translator) block(n *ast.Block, retName, itName string) string {
	if len(n.Exprs) == 0 {
		return "true"
	}
	last := len(n.Exprs) - 1
	term := tr.Expr(n.Exprs[last], retName, itName)
	for i := last - 1; i >= 0; i-- {
		stmt := n.Exprs[i]
		if let, ok := stmt.(*ast.Let); ok {
			value := tr.Expr(let.Value, retName, itName)
			term = fmt.Sprintf("(let ((%s %s)) %s)", sanitize(let.Name), value, term)
			continue
		}
		// A non-let statement in mid-block position (e.g. a discarded
		// call for its contract obligation only) carries no value that
		// folds into the final term; it is sequenced for its side effect
		// in the runtime but has nothing to contribute here.
	}
	return term
}

func (tr *Translator) stateRef(n *ast.StateRef, retName, itName string) string {
	ident, ok := n.Expr.(*ast.Ident)
	if !ok {
		if call, ok := n.Expr.(*ast.Call); ok {
			if callee, ok := call.Callee.(*ast.Ident); ok && callee.Name == "len" && len(call.Args) == 1 {
				if arg, ok := call.Args[0].(*ast.Ident); ok {
					tr.arrayLens[arg.Name] = true
					if n.Kind == ast.StatePre {
						return sanitize(arg.Name) + "__len__pre"
					}
					return sanitize(arg.Name) + "__len"
				}
			}
		}
		return tr.fail("old()/.pre only supports a bare identifier or len(identifier), got %T", n.Expr)
	}
	if n.Kind == ast.StatePre {
		return sanitize(ident.Name) + "__pre"
	}
	return tr.Expr(ident, retName, itName)
}

func (tr *Translator) unary(n *ast.Unary, retName, itName string) string {
	operand := tr.Expr(n.Expr, retName, itName)
	switch n.Op {
	case ast.OpNeg:
		return fmt.Sprintf("(- %s)", operand)
	case ast.OpNot:
		return fmt.Sprintf("(not %s)", operand)
	case ast.OpBNot:
		return tr.fail("bitwise not has no SMT-LIB linear-arithmetic translation")
	default:
		return tr.fail("unary operator %s has no SMT translation", n.Op)
	}
}

var binOpSMT = map[ast.BinOp]string{
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "div", ast.OpMod: "mod",
	ast.OpEq: "=", ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
	ast.OpAnd: "and", ast.OpOr: "or", ast.OpImplies: "=>",
	// Wrapping/checked/saturating variants model the same value as
	// their plain counterpart for verification purposes: a contract
	// that holds for the wrapped/checked/saturating result also holds
	// for the mathematical result whenever no overflow occurs, and
	// this translator has no bit-width-aware overflow theory to model
	// the case where it does. See DESIGN.md for the scope note.
	ast.OpAddWrap: "+", ast.OpSubWrap: "-", ast.OpMulWrap: "*",
	ast.OpAddChecked: "+", ast.OpSubChecked: "-", ast.OpMulChecked: "*",
	ast.OpAddSat: "+", ast.OpSubSat: "-", ast.OpMulSat: "*",
}

func (tr *Translator) binary(n *ast.Binary, retName, itName string) string {
	if n.Op == ast.OpNe {
		eq := tr.binary(&ast.Binary{Op: ast.OpEq, Left: n.Left, Right: n.Right, Span: n.Span}, retName, itName)
		return fmt.Sprintf("(not %s)", eq)
	}
	if n.Op == ast.OpShl || n.Op == ast.OpShr || n.Op == ast.OpBAnd || n.Op == ast.OpBOr || n.Op == ast.OpBXor {
		return tr.fail("bitwise operator %s has no SMT-LIB linear-arithmetic translation", n.Op)
	}
	sym, ok := binOpSMT[n.Op]
	if !ok {
		return tr.fail("binary operator %s has no SMT translation", n.Op)
	}
	left := tr.Expr(n.Left, retName, itName)
	right := tr.Expr(n.Right, retName, itName)
	return fmt.Sprintf("(%s %s %s)", sym, left, right)
}

func (tr *Translator) call(n *ast.Call, retName, itName string) string {
	callee, ok := n.Callee.(*ast.Ident)
	if !ok {
		return tr.fail("only direct calls to a named function translate to SMT")
	}
	if callee.Name == "len" && len(n.Args) == 1 {
		if arg, ok := n.Args[0].(*ast.Ident); ok {
			tr.arrayLens[arg.Name] = true
			return sanitize(arg.Name) + "__len"
		}
		return tr.fail("len() is only modeled for a bare identifier argument")
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = tr.Expr(a, retName, itName)
	}
	if len(args) == 0 {
		// An uninterpreted 0-ary function is just a fresh constant symbol.
		return sanitize(callee.Name) + "__uf"
	}
	return fmt.Sprintf("(%s__uf %s)", sanitize(callee.Name), strings.Join(args, " "))
}

func (tr *Translator) fieldAccess(n *ast.FieldAccess, retName, itName string) string {
	sortName := tr.sortNameOf(n.Base)
	base := tr.Expr(n.Base, retName, itName)
	return fmt.Sprintf("(%s_%s %s)", sortName, sanitize(n.Field), base)
}

func (tr *Translator) sortNameOf(e ast.Expr) string {
	t, ok := tr.chk.TypeOf(e)
	if !ok {
		return tr.fail("no checked type recorded for %s; cannot name its accessor sort", e)
	}
	return string(tr.catalog.SortOf(t))
}

func formatReal(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Sprintf("(- %s)", s[1:])
	}
	return s
}

// FunctionBodyHypothesis translates fn's body to a single SMT term
// usable as the value bound to __ret__, restricted to the loop-free,
// mutation-free subset of expressions Expr already handles: If as
// ite, Let/Block as nested let, a trailing expression as the result.
// Any While/For/Loop/Match/Assign/Break/Continue/mid-body Return makes
// the body unrepresentable as a closed-form term; the caller should
// treat a non-nil error as grounds to report Unknown, never to guess.
func (tr *Translator) FunctionBodyHypothesis(body ast.Expr, retName, itName string) (string, error) {
	if !bodyIsPure(body) {
		return "", fmt.Errorf("body not expressible in SMT without loop invariants")
	}
	tr.err = nil
	term := tr.Expr(body, retName, itName)
	if tr.err != nil {
		return "", tr.err
	}
	return term, nil
}

func bodyIsPure(e ast.Expr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *ast.Block:
		for _, x := range n.Exprs {
			if !bodyIsPure(x) {
				return false
			}
		}
		return true
	case *ast.Let:
		return bodyIsPure(n.Value) && bodyIsPure(n.Body)
	case *ast.If:
		return bodyIsPure(n.Cond) && bodyIsPure(n.Then) && bodyIsPure(n.Else)
	case *ast.Binary:
		return bodyIsPure(n.Left) && bodyIsPure(n.Right)
	case *ast.Unary:
		return bodyIsPure(n.Expr)
	case *ast.Call:
		for _, a := range n.Args {
			if !bodyIsPure(a) {
				return false
			}
		}
		return bodyIsPure(n.Callee)
	case *ast.Index:
		return bodyIsPure(n.Base) && bodyIsPure(n.Index)
	case *ast.FieldAccess:
		return bodyIsPure(n.Base)
	case *ast.TupleFieldAccess:
		return bodyIsPure(n.Base)
	case *ast.Try:
		return bodyIsPure(n.Expr)
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.StringLit, *ast.CharLit, *ast.Ident, *ast.Ret, *ast.It:
		return true
	case *ast.While, *ast.Loop, *ast.For, *ast.Match, *ast.Assign, *ast.Break, *ast.Continue, *ast.Return,
		*ast.Closure, *ast.NewStruct, *ast.EnumVariantExpr, *ast.ArrayLit, *ast.TupleLit, *ast.Range,
		*ast.Ref, *ast.RefMut, *ast.Deref, *ast.Cast, *ast.MethodCall, *ast.Todo:
		return false
	default:
		return false
	}
}
