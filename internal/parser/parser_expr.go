package parser

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

var binOpTokens = map[lexer.TokenType]ast.BinOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod,
	lexer.EQ: ast.OpEq, lexer.NOTEQ: ast.OpNe,
	lexer.LT: ast.OpLt, lexer.LTEQ: ast.OpLe, lexer.GT: ast.OpGt, lexer.GTEQ: ast.OpGe,
	lexer.AND: ast.OpAnd, lexer.ANDAND: ast.OpAnd,
	lexer.OR: ast.OpOr, lexer.OROR: ast.OpOr,
	lexer.SHL: ast.OpShl, lexer.SHR: ast.OpShr,
	lexer.AMP: ast.OpBAnd, lexer.BAND: ast.OpBAnd,
	lexer.PIPE: ast.OpBOr, lexer.BOR: ast.OpBOr,
	lexer.BXOR: ast.OpBXor,
	lexer.IMPLIES: ast.OpImplies,
	lexer.PLUSPERCENT: ast.OpAddWrap, lexer.MINUSPERCENT: ast.OpSubWrap, lexer.STARPERCENT: ast.OpMulWrap,
	lexer.PLUSQ: ast.OpAddChecked, lexer.MINUSQ: ast.OpSubChecked, lexer.STARQ: ast.OpMulChecked,
	lexer.PLUSPIPE: ast.OpAddSat, lexer.MINUSPIPE: ast.OpSubSat, lexer.STARPIPE: ast.OpMulSat,
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	opTok := p.cur
	op, ok := binOpTokens[opTok.Type]
	if !ok {
		p.fail("unknown binary operator " + opTok.Type.String())
		return nil
	}
	prec := opTok.Precedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if p.err != nil {
		return nil
	}
	return &ast.Binary{Op: op, Left: left, Right: right, Span: ast.Join(left.Pos(), right.Pos())}
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	inclusive := p.curIs(lexer.DOTDOTEQ)
	prec := p.cur.Precedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if p.err != nil {
		return nil
	}
	return &ast.Range{Start: left, End: right, Inclusive: inclusive, Span: ast.Join(left.Pos(), right.Pos())}
}

func (p *Parser) parseCastExpr(left ast.Expr) ast.Expr {
	p.nextToken() // consume 'as'
	ty := p.parseType()
	if p.err != nil {
		return nil
	}
	return &ast.Cast{Expr: left, Type: ty, Span: left.Pos()}
}

var unaryOpTokens = map[lexer.TokenType]ast.UnOp{
	lexer.MINUS: ast.OpNeg,
	lexer.BANG:  ast.OpNot,
	lexer.NOT:   ast.OpNot,
	lexer.BNOT:  ast.OpBNot,
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.curSpan()
	op := unaryOpTokens[p.cur.Type]
	p.nextToken()
	operand := p.parseExpression(UNARY)
	if p.err != nil {
		return nil
	}
	return &ast.Unary{Op: op, Expr: operand, Span: p.spanFrom(start)}
}

func (p *Parser) parseRefExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '&'
	if p.curIs(lexer.MUT) {
		p.nextToken()
		inner := p.parseExpression(UNARY)
		if p.err != nil {
			return nil
		}
		return &ast.RefMut{Expr: inner, Span: p.spanFrom(start)}
	}
	inner := p.parseExpression(UNARY)
	if p.err != nil {
		return nil
	}
	return &ast.Ref{Expr: inner, Span: p.spanFrom(start)}
}

func (p *Parser) parseDerefExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '*'
	inner := p.parseExpression(UNARY)
	if p.err != nil {
		return nil
	}
	return &ast.Deref{Expr: inner, Span: p.spanFrom(start)}
}

// parseParenOrTuple parses `(e)` (grouping) or `(e1, e2, …)` (tuple
// literal, arity != 1; `()` is the empty tuple / unit value).
func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '('
	if p.curIs(lexer.RPAREN) {
		p.nextToken()
		return &ast.TupleLit{Span: p.spanFrom(start)}
	}
	first := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if p.curIs(lexer.RPAREN) {
		p.nextToken()
		return first
	}
	elems := []ast.Expr{first}
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		if p.curIs(lexer.RPAREN) {
			break
		}
		e := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		elems = append(elems, e)
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return &ast.TupleLit{Elems: elems, Span: p.spanFrom(start)}
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '['
	var elems []ast.Expr
	for !p.curIs(lexer.RBRACKET) {
		e := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		elems = append(elems, e)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return &ast.ArrayLit{Elems: elems, Span: p.spanFrom(start)}
}

// parseBlock parses `{ stmt; stmt; … result }`. A `let` encountered at
// statement position absorbs every remaining statement as its own
// Body (§3 Let), so the resulting Exprs slice usually holds a single
// element once any let-binding appears in the block.
func (p *Parser) parseBlock() ast.Expr {
	start := p.curSpan()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	exprs := p.parseStmtList()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return &ast.Block{Exprs: exprs, Span: p.spanFrom(start)}
}

// parseStmtList parses `;`-separated statements up to (but not
// consuming) the enclosing `}` or EOF. A brace-ended statement (while,
// for, loop, if, match, block) may be followed by the next statement
// without a `;`.
func (p *Parser) parseStmtList() []ast.Expr {
	var exprs []ast.Expr
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) && p.err == nil {
		if p.curIs(lexer.LET) {
			e := p.parseLetExpr()
			if p.err != nil {
				return nil
			}
			exprs = append(exprs, e)
			return exprs
		}
		e := p.parseStatementExpr()
		if p.err != nil {
			return nil
		}
		exprs = append(exprs, e)
		if p.curIs(lexer.SEMI) {
			p.nextToken()
			continue
		}
		switch e.(type) {
		case *ast.While, *ast.For, *ast.Loop, *ast.If, *ast.Match, *ast.Block:
			continue
		}
		break
	}
	return exprs
}

// parseStatementExpr parses one expression at block-statement
// position, folding in a trailing `= value` into an Assign node.
func (p *Parser) parseStatementExpr() ast.Expr {
	left := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		return &ast.Assign{Target: left, Value: value, Span: ast.Join(left.Pos(), value.Pos())}
	}
	return left
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'if'
	cond := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if p.curIs(lexer.THEN) {
		p.nextToken()
		then := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		var els ast.Expr
		if p.curIs(lexer.ELSE) {
			p.nextToken()
			els = p.parseExpression(LOWEST)
			if p.err != nil {
				return nil
			}
		}
		return &ast.If{Cond: cond, Then: then, Else: els, Span: p.spanFrom(start)}
	}
	then := p.parseBlock()
	if p.err != nil {
		return nil
	}
	var els ast.Expr
	if p.curIs(lexer.ELSE) {
		p.nextToken()
		if p.curIs(lexer.IF) {
			els = p.parseIfExpr()
		} else {
			els = p.parseBlock()
		}
		if p.err != nil {
			return nil
		}
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Span: p.spanFrom(start)}
}

func (p *Parser) parseLetExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'let'
	mutable := false
	if p.curIs(lexer.MUT) {
		mutable = true
		p.nextToken()
	}
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	var ty ast.Type
	if p.curIs(lexer.COLON) {
		p.nextToken()
		ty = p.parseType()
		if p.err != nil {
			return nil
		}
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	value := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.SEMI) {
		return nil
	}
	rest := p.parseStmtList()
	if p.err != nil {
		return nil
	}
	var body ast.Expr
	switch len(rest) {
	case 0:
		body = &ast.TupleLit{Span: p.curSpan()}
	case 1:
		body = rest[0]
	default:
		body = &ast.Block{Exprs: rest, Span: ast.Join(rest[0].Pos(), rest[len(rest)-1].Pos())}
	}
	return &ast.Let{Mutable: mutable, Name: name, Type: ty, Value: value, Body: body, Span: p.spanFrom(start)}
}

func (p *Parser) parseWhileExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'while'
	cond := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	var invariant ast.Expr
	if p.curIs(lexer.INVARIANT) {
		p.nextToken()
		invariant = p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
	}
	body := p.parseBlock()
	if p.err != nil {
		return nil
	}
	return &ast.While{Cond: cond, Invariant: invariant, Body: body, Span: p.spanFrom(start)}
}

func (p *Parser) parseLoopExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'loop'
	body := p.parseBlock()
	if p.err != nil {
		return nil
	}
	return &ast.Loop{Body: body, Span: p.spanFrom(start)}
}

func (p *Parser) parseForExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'for'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	if !p.expect(lexer.IN) {
		return nil
	}
	rangeExpr := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	body := p.parseBlock()
	if p.err != nil {
		return nil
	}
	return &ast.For{Var: name, Range: rangeExpr, Body: body, Span: p.spanFrom(start)}
}

func (p *Parser) parseBreakExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'break'
	var value ast.Expr
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) {
		value = p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
	}
	return &ast.Break{Value: value, Span: p.spanFrom(start)}
}

func (p *Parser) parseContinueExpr() ast.Expr {
	span := p.curSpan()
	p.nextToken()
	return &ast.Continue{Span: span}
}

func (p *Parser) parseReturnExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'return'
	var value ast.Expr
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) {
		value = p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
	}
	return &ast.Return{Value: value, Span: p.spanFrom(start)}
}

func (p *Parser) parseRetExpr() ast.Expr {
	span := p.curSpan()
	p.nextToken()
	return &ast.Ret{Span: span}
}

func (p *Parser) parseItExpr() ast.Expr {
	span := p.curSpan()
	p.nextToken()
	return &ast.It{Span: span}
}

func (p *Parser) parseTodoExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'todo'
	msg := ""
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		msg = p.cur.Literal
		if !p.expect(lexer.STRING) {
			return nil
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
	} else if p.curIs(lexer.STRING) {
		msg = p.cur.Literal
		p.nextToken()
	}
	return &ast.Todo{Message: msg, Span: p.spanFrom(start)}
}

func (p *Parser) parseTryExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'try'
	inner := p.parseExpression(UNARY)
	if p.err != nil {
		return nil
	}
	return &ast.Try{Expr: inner, Span: p.spanFrom(start)}
}

func (p *Parser) parseTrySuffix(left ast.Expr) ast.Expr {
	span := ast.Join(left.Pos(), p.curSpan())
	p.nextToken() // consume '?'
	return &ast.Try{Expr: left, Span: span}
}

func (p *Parser) parseQuantifier() ast.Expr {
	start := p.curSpan()
	universal := p.curIs(lexer.FORALL)
	p.nextToken() // consume 'forall'/'exists'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	if !p.expect(lexer.COLON) {
		return nil
	}
	ty := p.parseType()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.COMMA) {
		return nil
	}
	body := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	return &ast.Quantifier{Universal: universal, Var: name, VarType: ty, Body: body, Span: p.spanFrom(start)}
}

// parseClosure parses `|p1: T1, p2: T2| -> RetT? body` or `|p1, p2| body`.
func (p *Parser) parseClosure() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '|'
	var params []ast.ClosureParam
	for !p.curIs(lexer.PIPE) {
		pstart := p.curSpan()
		pname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var pty ast.Type
		if p.curIs(lexer.COLON) {
			p.nextToken()
			pty = p.parseType()
			if p.err != nil {
				return nil
			}
		}
		params = append(params, ast.ClosureParam{Name: pname, Type: pty, Span: p.spanFrom(pstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.PIPE) {
		return nil
	}
	return p.finishClosure(start, params)
}

// parseEmptyParamsClosure handles the lexer producing `||` as a single
// OROR token for a zero-parameter closure: `|| body`.
func (p *Parser) parseEmptyParamsClosure() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume '||'
	return p.finishClosure(start, nil)
}

func (p *Parser) finishClosure(start ast.Span, params []ast.ClosureParam) ast.Expr {
	var retTy ast.Type
	if p.curIs(lexer.ARROW) {
		p.nextToken()
		retTy = p.parseType()
		if p.err != nil {
			return nil
		}
	}
	body := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	return &ast.Closure{Params: params, RetTy: retTy, Body: body, Span: p.spanFrom(start)}
}

// parseNewExpr parses `new StructName{field: value, …}`.
func (p *Parser) parseNewExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'new'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var fields []ast.StructFieldInit
	for !p.curIs(lexer.RBRACE) {
		fstart := p.curSpan()
		fname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var value ast.Expr
		if p.curIs(lexer.COLON) {
			p.nextToken()
			value = p.parseExpression(LOWEST)
			if p.err != nil {
				return nil
			}
		} else {
			value = &ast.Ident{Name: fname, Span: p.prevSpan}
		}
		fields = append(fields, ast.StructFieldInit{Name: fname, Value: value, Span: p.spanFrom(fstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return &ast.NewStruct{Name: name, Fields: fields, Span: p.spanFrom(start)}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.curSpan()
	p.nextToken() // consume 'match'
	scrutinee := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var arms []ast.MatchArm
	for !p.curIs(lexer.RBRACE) {
		armStart := p.curSpan()
		pat := p.parsePattern()
		if p.err != nil {
			return nil
		}
		var guard ast.Expr
		if p.curIs(lexer.IF) {
			p.nextToken()
			guard = p.parseExpression(LOWEST)
			if p.err != nil {
				return nil
			}
		}
		if !p.expect(lexer.FATARROW) {
			return nil
		}
		armBody := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: armBody, Span: p.spanFrom(armStart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return &ast.Match{Scrutinee: scrutinee, Arms: arms, Span: p.spanFrom(start)}
}

// parseCallExpr parses the argument list of a call: `callee(a, b, …)`.
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) {
		a := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		args = append(args, a)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	span := ast.Join(callee.Pos(), p.curSpan())
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return &ast.Call{Callee: callee, Args: args, Span: span}
}

func (p *Parser) parseIndexExpr(base ast.Expr) ast.Expr {
	idx := p.parseExpression(LOWEST)
	if p.err != nil {
		return nil
	}
	span := ast.Join(base.Pos(), p.curSpan())
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return &ast.Index{Base: base, Index: idx, Span: span}
}

// parseDotExpr handles `.field`, `.0` (tuple field), `.method(args)`,
// and the contract two-state suffixes `.pre` / `.post`.
func (p *Parser) parseDotExpr(base ast.Expr) ast.Expr {
	if p.curIs(lexer.PRE) || p.curIs(lexer.POST) {
		kind := ast.StatePost
		if p.curIs(lexer.PRE) {
			kind = ast.StatePre
		}
		span := ast.Join(base.Pos(), p.curSpan())
		p.nextToken()
		return &ast.StateRef{Expr: base, Kind: kind, Span: span}
	}
	if p.curIs(lexer.INT) {
		idx := int(parseArraySize(p.cur.Literal))
		span := ast.Join(base.Pos(), p.curSpan())
		p.nextToken()
		return &ast.TupleFieldAccess{Base: base, Index: idx, Span: span}
	}
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		var args []ast.Expr
		for !p.curIs(lexer.RPAREN) {
			a := p.parseExpression(LOWEST)
			if p.err != nil {
				return nil
			}
			args = append(args, a)
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		span := ast.Join(base.Pos(), p.curSpan())
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return &ast.MethodCall{Receiver: base, Method: name, Args: args, Span: span}
	}
	return &ast.FieldAccess{Base: base, Field: name, Span: ast.Join(base.Pos(), p.prevSpan)}
}
