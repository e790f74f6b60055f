package parser

import (
	"fmt"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

// ParseError is the single structured error a Parser can produce (§4.B).
// Recovery policy is single-error: the parser stops attempting further
// progress on the first offending token rather than resynchronizing.
type ParseError struct {
	Span     ast.Span
	Message  string
	Near     lexer.Token
	Expected []lexer.TokenType
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func newParseError(span ast.Span, near lexer.Token, message string, expected ...lexer.TokenType) *ParseError {
	return &ParseError{Span: span, Message: message, Near: near, Expected: expected}
}

func (p *Parser) fail(message string, expected ...lexer.TokenType) {
	if p.err != nil {
		return
	}
	p.err = newParseError(p.curSpan(), p.cur, message, expected...)
}

func (p *Parser) failExpected(want lexer.TokenType) {
	p.fail(fmt.Sprintf("expected %s, got %s", want, p.cur.Type), want)
}

func (p *Parser) failPeek(want lexer.TokenType) {
	p.fail(fmt.Sprintf("expected %s, got %s", want, p.peek.Type), want)
}
