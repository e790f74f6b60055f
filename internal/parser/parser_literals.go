package parser

import (
	"strconv"

	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

func (p *Parser) parseIdentifier() ast.Expr {
	tok := p.cur
	span := p.curSpan()
	p.nextToken()

	if tok.Literal == "old" && p.curIs(lexer.LPAREN) {
		p.nextToken()
		inner := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		closeSpan := p.curSpan()
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return &ast.StateRef{Expr: inner, Kind: ast.StatePre, Span: ast.Join(span, closeSpan)}
	}

	if p.curIs(lexer.COLONCOLON) {
		p.nextToken()
		variant := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var args []ast.Expr
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
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
			if !p.expect(lexer.RPAREN) {
				return nil
			}
		}
		return &ast.EnumVariantExpr{EnumName: tok.Literal, Variant: variant, Args: args, Span: p.spanFrom(span)}
	}

	return &ast.Ident{Name: tok.Literal, Span: span}
}

func (p *Parser) parseIntLit() ast.Expr {
	tok := p.cur
	span := p.curSpan()
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.fail("invalid integer literal: " + tok.Literal)
		return nil
	}
	p.nextToken()
	return &ast.IntLit{Value: v, Span: span}
}

func (p *Parser) parseFloatLit() ast.Expr {
	tok := p.cur
	span := p.curSpan()
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.fail("invalid float literal: " + tok.Literal)
		return nil
	}
	p.nextToken()
	return &ast.FloatLit{Value: v, Span: span}
}

func (p *Parser) parseStringLit() ast.Expr {
	tok := p.cur
	span := p.curSpan()
	p.nextToken()
	return &ast.StringLit{Value: tok.Literal, Span: span}
}

func (p *Parser) parseCharLit() ast.Expr {
	tok := p.cur
	span := p.curSpan()
	r := []rune(tok.Literal)
	if len(r) != 1 {
		p.fail("invalid char literal: " + tok.Literal)
		return nil
	}
	p.nextToken()
	return &ast.CharLit{Value: r[0], Span: span}
}

func (p *Parser) parseBoolLit() ast.Expr {
	span := p.curSpan()
	v := p.curIs(lexer.TRUE)
	p.nextToken()
	return &ast.BoolLit{Value: v, Span: span}
}
