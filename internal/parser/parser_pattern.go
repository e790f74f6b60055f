package parser

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

// parsePattern parses a single pattern, including the `|` or-pattern
// suffix and the `@` binding-pattern prefix (§3 Pattern).
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternPrimary()
	if p.err != nil {
		return nil
	}
	if !p.curIs(lexer.PIPE) {
		return first
	}
	start := first.Pos()
	alts := []ast.Pattern{first}
	for p.curIs(lexer.PIPE) {
		p.nextToken()
		alts = append(alts, p.parsePatternPrimary())
		if p.err != nil {
			return nil
		}
	}
	return &ast.OrPattern{Alts: alts, Span: p.spanFrom(start)}
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	start := p.curSpan()

	switch p.cur.Type {
	case lexer.UNDERSCORE:
		p.nextToken()
		return &ast.WildcardPattern{Span: start}

	case lexer.MINUS, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE:
		return p.parseLitOrRangePattern()

	case lexer.LPAREN:
		p.nextToken()
		var elems []ast.Pattern
		for !p.curIs(lexer.RPAREN) {
			elems = append(elems, p.parsePattern())
			if p.err != nil {
				return nil
			}
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		return &ast.TuplePattern{Elems: elems, Span: p.spanFrom(start)}

	case lexer.LBRACKET:
		return p.parseArrayPattern()

	case lexer.IDENT:
		return p.parseIdentPattern()
	}

	p.fail("expected a pattern, got " + p.cur.Type.String())
	return nil
}

func (p *Parser) parseLitOrRangePattern() ast.Pattern {
	start := p.curSpan()
	lit := p.parseExpression(POSTFIX)
	if p.err != nil {
		return nil
	}
	if p.curIs(lexer.DOTDOT) || p.curIs(lexer.DOTDOTEQ) || p.curIs(lexer.DOTDOTLT) {
		inclusive := p.curIs(lexer.DOTDOTEQ)
		p.nextToken()
		end := p.parseExpression(POSTFIX)
		if p.err != nil {
			return nil
		}
		return &ast.RangePattern{Start: lit, End: end, Inclusive: inclusive, Span: p.spanFrom(start)}
	}
	return &ast.LitPattern{Value: lit, Span: p.spanFrom(start)}
}

// parseIdentPattern disambiguates VarPattern, BindingPattern (`n @ p`),
// VariantPattern (`Enum::Variant(...)` or bare), and StructPattern
// (`Name{field: pat, …}`) — all of which start with an identifier.
func (p *Parser) parseIdentPattern() ast.Pattern {
	start := p.curSpan()
	name := p.cur.Literal
	p.nextToken()

	if p.curIs(lexer.AT) {
		p.nextToken()
		sub := p.parsePatternPrimary()
		if p.err != nil {
			return nil
		}
		return &ast.BindingPattern{Name: name, Sub: sub, Span: p.spanFrom(start)}
	}

	if p.curIs(lexer.COLONCOLON) {
		p.nextToken()
		variant := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var subs []ast.Pattern
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
			for !p.curIs(lexer.RPAREN) {
				subs = append(subs, p.parsePattern())
				if p.err != nil {
					return nil
				}
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
		return &ast.VariantPattern{EnumName: name, Variant: variant, SubPats: subs, Span: p.spanFrom(start)}
	}

	if p.curIs(lexer.LBRACE) && isUpper(name) {
		return p.parseStructPatternFields(name, start)
	}

	if isUpper(name) {
		// Bare capitalized identifier with no arguments: a nullary
		// enum variant referenced without its enum name, e.g. `None`.
		return &ast.VariantPattern{EnumName: "", Variant: name, Span: p.spanFrom(start)}
	}

	return &ast.VarPattern{Name: name, Span: p.spanFrom(start)}
}

func (p *Parser) parseStructPatternFields(name string, start ast.Span) ast.Pattern {
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var fields []ast.StructFieldPattern
	for !p.curIs(lexer.RBRACE) {
		fstart := p.curSpan()
		fname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var fpat ast.Pattern
		if p.curIs(lexer.COLON) {
			p.nextToken()
			fpat = p.parsePattern()
		} else {
			fpat = &ast.VarPattern{Name: fname, Span: fstart}
		}
		if p.err != nil {
			return nil
		}
		fields = append(fields, ast.StructFieldPattern{Name: fname, Pattern: fpat, Span: p.spanFrom(fstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return &ast.StructPattern{Name: name, Fields: fields, Span: p.spanFrom(start)}
}

// parseArrayPattern parses `[p1, p2, …]` or the rest form
// `[p1, p2, .., q1, q2]` (§4.E ArrayRest constructor).
func (p *Parser) parseArrayPattern() ast.Pattern {
	start := p.curSpan()
	if !p.expect(lexer.LBRACKET) {
		return nil
	}
	var before []ast.Pattern
	sawRest := false
	for !p.curIs(lexer.RBRACKET) {
		if p.curIs(lexer.DOTDOT) {
			sawRest = true
			p.nextToken()
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			}
			continue
		}
		pat := p.parsePattern()
		if p.err != nil {
			return nil
		}
		if sawRest {
			var after []ast.Pattern
			after = append(after, pat)
			for p.curIs(lexer.COMMA) {
				p.nextToken()
				if p.curIs(lexer.RBRACKET) {
					break
				}
				next := p.parsePattern()
				if p.err != nil {
					return nil
				}
				after = append(after, next)
			}
			if !p.expect(lexer.RBRACKET) {
				return nil
			}
			return &ast.ArrayRestPattern{Before: before, After: after, Span: p.spanFrom(start)}
		}
		before = append(before, pat)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	if sawRest {
		return &ast.ArrayRestPattern{Before: before, Span: p.spanFrom(start)}
	}
	return &ast.ArrayPattern{Elems: before, Span: p.spanFrom(start)}
}

func isUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
