// Package parser turns a BMB token stream into an AST (§4.B). It is a
// recursive-descent parser with Pratt-style precedence climbing for
// expressions, structured the way the teacher parser is: a table of
// prefix/infix parse functions keyed by token type, plus a family of
// per-construct parseXxx methods split across files by concern.
package parser

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Precedence levels. Binary-operator levels mirror lexer.Token.Precedence;
// postfix constructs (call, index, field/method access, `?`, `as`) sit
// above every binary operator.
const (
	LOWEST int = iota
	_              // 1: or -- matches lexer.Token.Precedence()
	_              // 2: and
	_              // 3: equality
	_              // 4: comparison
	_              // 5: range
	_              // 6: shift/bitwise
	_              // 7: additive
	_              // 8: multiplicative
	_              // 9: cast (as)
	UNARY          // 10: prefix -x, !x, not x, bnot x, &x, &mut x, *x
	POSTFIX        // 11: call, index, field, method, ?, .pre/.post
)

// Parser parses a single BMB source file into an *ast.Program.
type Parser struct {
	l    *lexer.Lexer
	file string

	cur      lexer.Token
	peek     lexer.Token
	prevSpan ast.Span

	err *ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, file: filename}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntLit)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLit)
	p.registerPrefix(lexer.STRING, p.parseStringLit)
	p.registerPrefix(lexer.CHAR, p.parseCharLit)
	p.registerPrefix(lexer.TRUE, p.parseBoolLit)
	p.registerPrefix(lexer.FALSE, p.parseBoolLit)
	p.registerPrefix(lexer.LPAREN, p.parseParenOrTuple)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLit)
	p.registerPrefix(lexer.LBRACE, p.parseBlock)
	p.registerPrefix(lexer.MINUS, p.parseUnary)
	p.registerPrefix(lexer.BANG, p.parseUnary)
	p.registerPrefix(lexer.NOT, p.parseUnary)
	p.registerPrefix(lexer.BNOT, p.parseUnary)
	p.registerPrefix(lexer.AMP, p.parseRefExpr)
	p.registerPrefix(lexer.STAR, p.parseDerefExpr)
	p.registerPrefix(lexer.IF, p.parseIfExpr)
	p.registerPrefix(lexer.LET, p.parseLetExpr)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpr)
	p.registerPrefix(lexer.LOOP, p.parseLoopExpr)
	p.registerPrefix(lexer.FOR, p.parseForExpr)
	p.registerPrefix(lexer.MATCH, p.parseMatchExpr)
	p.registerPrefix(lexer.NEW, p.parseNewExpr)
	p.registerPrefix(lexer.BREAK, p.parseBreakExpr)
	p.registerPrefix(lexer.CONTINUE, p.parseContinueExpr)
	p.registerPrefix(lexer.RETURN, p.parseReturnExpr)
	p.registerPrefix(lexer.RET, p.parseRetExpr)
	p.registerPrefix(lexer.IT, p.parseItExpr)
	p.registerPrefix(lexer.TODO, p.parseTodoExpr)
	p.registerPrefix(lexer.TRY, p.parseTryExpr)
	p.registerPrefix(lexer.PIPE, p.parseClosure)
	p.registerPrefix(lexer.OROR, p.parseEmptyParamsClosure)
	p.registerPrefix(lexer.FORALL, p.parseQuantifier)
	p.registerPrefix(lexer.EXISTS, p.parseQuantifier)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT,
		lexer.PLUSPERCENT, lexer.MINUSPERCENT, lexer.STARPERCENT,
		lexer.PLUSQ, lexer.MINUSQ, lexer.STARQ,
		lexer.PLUSPIPE, lexer.MINUSPIPE, lexer.STARPIPE,
		lexer.EQ, lexer.NOTEQ, lexer.LT, lexer.GT, lexer.LTEQ, lexer.GTEQ,
		lexer.AND, lexer.OR, lexer.ANDAND, lexer.OROR,
		lexer.SHL, lexer.SHR, lexer.AMP, lexer.PIPE, lexer.BAND, lexer.BOR, lexer.BXOR,
		lexer.IMPLIES,
	} {
		p.registerInfix(tt, p.parseBinaryExpr)
	}
	p.registerInfix(lexer.DOTDOT, p.parseRangeExpr)
	p.registerInfix(lexer.DOTDOTEQ, p.parseRangeExpr)
	p.registerInfix(lexer.DOTDOTLT, p.parseRangeExpr)
	p.registerInfix(lexer.AS, p.parseCastExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseDotExpr)
	p.registerInfix(lexer.QUESTION, p.parseTrySuffix)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixParseFns[tt] = fn }

// Err returns the single ParseError recorded, if any.
func (p *Parser) Err() *ParseError { return p.err }

func (p *Parser) nextToken() {
	p.prevSpan = ast.Span{Start: p.cur.Start, End: p.cur.End, File: p.file}
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peek.Type == tt }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.curIs(tt) {
		p.nextToken()
		return true
	}
	p.failExpected(tt)
	return false
}

func (p *Parser) expectPeek(tt lexer.TokenType) bool {
	if p.peekIs(tt) {
		p.nextToken()
		return true
	}
	p.failPeek(tt)
	return false
}

func (p *Parser) curSpan() ast.Span {
	return ast.Span{Start: p.cur.Start, End: p.cur.End, File: p.file}
}

func (p *Parser) spanFrom(start ast.Span) ast.Span {
	return ast.Join(start, p.prevSpan)
}

func (p *Parser) peekPrecedence() int {
	switch p.peek.Type {
	case lexer.LPAREN, lexer.LBRACKET, lexer.DOT, lexer.QUESTION:
		return POSTFIX
	case lexer.AS:
		return 9
	default:
		return p.peek.Precedence()
	}
}

// parseExpression is the Pratt loop: parse a prefix production, then
// repeatedly fold in infix/postfix operators whose precedence exceeds
// the caller's minimum.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	if p.err != nil {
		return nil
	}
	prefix, ok := p.prefixParseFns[p.cur.Type]
	if !ok {
		p.fail("unexpected token in expression: " + p.cur.Type.String())
		return nil
	}
	left := prefix()

	for p.err == nil {
		infix, ok := p.infixParseFns[p.cur.Type]
		prec := p.cur.Precedence()
		if p.curIs(lexer.LPAREN) || p.curIs(lexer.LBRACKET) || p.curIs(lexer.DOT) || p.curIs(lexer.QUESTION) {
			prec = POSTFIX
		}
		if !ok || precedence >= prec {
			return left
		}
		if prec == POSTFIX && !p.curIs(lexer.QUESTION) {
			p.nextToken() // consume '(', '[' or '.'
		}
		left = infix(left)
	}
	return left
}

// ParseProgram parses an entire source file: an optional module header
// followed by a sequence of items.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.curSpan()
	prog := &ast.Program{}

	if p.curIs(lexer.MODULE) {
		prog.Header = p.parseModuleHeader()
	}

	for !p.curIs(lexer.EOF) && p.err == nil {
		item := p.parseItem()
		if item == nil {
			break
		}
		prog.Items = append(prog.Items, item)
	}
	prog.Span = ast.Join(start, p.curSpan())
	return prog
}
