package parser

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

var primitiveKeywords = map[lexer.TokenType]string{
	lexer.TY_I32:    "i32",
	lexer.TY_I64:    "i64",
	lexer.TY_U32:    "u32",
	lexer.TY_U64:    "u64",
	lexer.TY_F64:    "f64",
	lexer.TY_BOOL:   "bool",
	lexer.TY_STRING: "String",
	lexer.TY_CHAR:   "char",
}

// parseType parses a type expression (§3 Type), then wraps it in a
// Refined node if a `{constraints}` suffix follows.
func (p *Parser) parseType() ast.Type {
	start := p.curSpan()
	base := p.parseTypeAtom()
	if p.err != nil || base == nil {
		return base
	}
	if p.curIs(lexer.LBRACE) {
		return p.parseRefinedSuffix(base, start)
	}
	return base
}

func (p *Parser) parseTypeAtom() ast.Type {
	start := p.curSpan()

	if name, ok := primitiveKeywords[p.cur.Type]; ok {
		p.nextToken()
		return &ast.Primitive{Name: name, Span: p.spanFrom(start)}
	}

	switch p.cur.Type {
	case lexer.AMP:
		p.nextToken()
		if p.curIs(lexer.MUT) {
			p.nextToken()
			elem := p.parseTypeAtom()
			if p.err != nil {
				return nil
			}
			return &ast.RefMutType{Elem: elem, Span: p.spanFrom(start)}
		}
		elem := p.parseTypeAtom()
		if p.err != nil {
			return nil
		}
		return &ast.RefType{Elem: elem, Span: p.spanFrom(start)}

	case lexer.QUESTION:
		p.nextToken()
		elem := p.parseTypeAtom()
		if p.err != nil {
			return nil
		}
		return &ast.NullableType{Elem: elem, Span: p.spanFrom(start)}

	case lexer.LBRACKET:
		p.nextToken()
		elem := p.parseType()
		if p.err != nil {
			return nil
		}
		if p.curIs(lexer.SEMI) {
			p.nextToken()
			sizeTok := p.cur
			if !p.expect(lexer.INT) {
				return nil
			}
			size := parseArraySize(sizeTok.Literal)
			if !p.expect(lexer.RBRACKET) {
				return nil
			}
			return &ast.ArrayType{Elem: elem, Size: size, Span: p.spanFrom(start)}
		}
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
		return &ast.ArrayType{Elem: elem, Size: -1, Span: p.spanFrom(start)}

	case lexer.LPAREN:
		p.nextToken()
		var elems []ast.Type
		for !p.curIs(lexer.RPAREN) {
			t := p.parseType()
			if p.err != nil {
				return nil
			}
			elems = append(elems, t)
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
		if p.curIs(lexer.ARROW) {
			p.nextToken()
			ret := p.parseType()
			if p.err != nil {
				return nil
			}
			return &ast.FnType{Params: elems, Ret: ret, Span: p.spanFrom(start)}
		}
		return &ast.TupleType{Elems: elems, Span: p.spanFrom(start)}

	case lexer.IDENT:
		name := p.cur.Literal
		p.nextToken()
		if p.curIs(lexer.LT) {
			p.nextToken()
			var args []ast.Type
			for !p.curIs(lexer.GT) {
				t := p.parseType()
				if p.err != nil {
					return nil
				}
				args = append(args, t)
				if p.curIs(lexer.COMMA) {
					p.nextToken()
				} else {
					break
				}
			}
			if !p.expect(lexer.GT) {
				return nil
			}
			return &ast.Generic{Name: name, TypeArgs: args, Span: p.spanFrom(start)}
		}
		if isTypeVarName(name) {
			return &ast.TypeVar{Name: name, Span: p.spanFrom(start)}
		}
		return &ast.Named{Name: name, Span: p.spanFrom(start)}
	}

	p.fail("expected a type, got " + p.cur.Type.String())
	return nil
}

// isTypeVarName treats single uppercase letters (T, U, E, K, V, …) as
// bound generic parameters rather than nominal type references; the
// type checker still confirms membership in the active type_param_env.
func isTypeVarName(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseRefinedSuffix(base ast.Type, start ast.Span) ast.Type {
	if !p.expect(lexer.LBRACE) {
		return base
	}
	var constraints []ast.Spanned[ast.Expr]
	for !p.curIs(lexer.RBRACE) {
		cstart := p.curSpan()
		e := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		constraints = append(constraints, ast.Spanned[ast.Expr]{Node: e, Span: p.spanFrom(cstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return &ast.RefinedType{Base: base, Constraints: constraints, Span: p.spanFrom(start)}
}

func parseArraySize(lit string) int64 {
	var n int64
	for _, c := range lit {
		n = n*10 + int64(c-'0')
	}
	return n
}

// parseTypeParams parses `<T: Bound, U, …>` after a name in an item
// header; returns nil if no `<` follows.
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.curIs(lexer.LT) {
		return nil
	}
	p.nextToken()
	var params []ast.TypeParam
	for !p.curIs(lexer.GT) {
		start := p.curSpan()
		name := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var bounds []string
		if p.curIs(lexer.COLON) {
			p.nextToken()
			bounds = append(bounds, p.cur.Literal)
			if !p.expect(lexer.IDENT) {
				return nil
			}
			for p.curIs(lexer.PLUS) {
				p.nextToken()
				bounds = append(bounds, p.cur.Literal)
				if !p.expect(lexer.IDENT) {
					return nil
				}
			}
		}
		params = append(params, ast.TypeParam{Name: name, Bounds: bounds, Span: p.spanFrom(start)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.GT) {
		return nil
	}
	return params
}
