package parser

import (
	"github.com/zizixmas/bmb/internal/ast"
	"github.com/zizixmas/bmb/internal/lexer"
)

// parseModuleHeader parses the optional file prologue:
//
//	module [dotted.name]
//	version: "semver"
//	summary: "one line"
//	exports: [sym, …]
//	depends: [path (imp, …), …]
//	===
func (p *Parser) parseModuleHeader() *ast.ModuleHeader {
	start := p.curSpan()
	p.nextToken() // consume 'module'

	h := &ast.ModuleHeader{}
	if p.curIs(lexer.IDENT) {
		h.Name = p.parseDottedPath()
	}

	for !p.curIs(lexer.HEADER_SEP) && !p.curIs(lexer.EOF) && p.err == nil {
		switch p.cur.Type {
		case lexer.VERSION:
			p.nextToken()
			if !p.expect(lexer.COLON) {
				return nil
			}
			h.Version = p.cur.Literal
			if !p.expect(lexer.STRING) {
				return nil
			}
		case lexer.SUMMARY:
			p.nextToken()
			if !p.expect(lexer.COLON) {
				return nil
			}
			h.Summary = p.cur.Literal
			if !p.expect(lexer.STRING) {
				return nil
			}
		case lexer.EXPORTS:
			p.nextToken()
			if !p.expect(lexer.COLON) {
				return nil
			}
			h.Exports = p.parseIdentList()
		case lexer.DEPENDS:
			p.nextToken()
			if !p.expect(lexer.COLON) {
				return nil
			}
			h.Depends = p.parseDependList()
		default:
			p.fail("expected version/summary/exports/depends or ===, got " + p.cur.Type.String())
			return nil
		}
	}
	if !p.expect(lexer.HEADER_SEP) {
		return nil
	}
	h.Span = p.spanFrom(start)
	return h
}

func (p *Parser) parseDottedPath() string {
	name := p.cur.Literal
	p.nextToken()
	for p.curIs(lexer.DOT) {
		p.nextToken()
		name += "." + p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return name
		}
	}
	return name
}

func (p *Parser) parseIdentList() []string {
	if !p.expect(lexer.LBRACKET) {
		return nil
	}
	var out []string
	for !p.curIs(lexer.RBRACKET) {
		out = append(out, p.cur.Literal)
		if !p.expect(lexer.IDENT) {
			return nil
		}
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return out
}

func (p *Parser) parseDependList() []ast.ModuleDependency {
	if !p.expect(lexer.LBRACKET) {
		return nil
	}
	var out []ast.ModuleDependency
	for !p.curIs(lexer.RBRACKET) {
		start := p.curSpan()
		path := p.parseDottedPath()
		var imports []string
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
			for !p.curIs(lexer.RPAREN) {
				imports = append(imports, p.cur.Literal)
				if !p.expect(lexer.IDENT) {
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
		out = append(out, ast.ModuleDependency{Path: path, Imports: imports, Span: p.spanFrom(start)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	return out
}

// parseAttributes parses zero or more `@name`, `@name(args…)`, or
// `@name "reason"` prefixes on an item.
func (p *Parser) parseAttributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.curIs(lexer.AT) {
		start := p.curSpan()
		p.nextToken()
		name := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		attr := &ast.Attribute{Name: name}
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
			for !p.curIs(lexer.RPAREN) {
				attr.Args = append(attr.Args, p.cur.Literal)
				p.nextToken()
				if p.curIs(lexer.COMMA) {
					p.nextToken()
				} else {
					break
				}
			}
			if !p.expect(lexer.RPAREN) {
				return nil
			}
		} else if p.curIs(lexer.STRING) {
			attr.Reason = p.cur.Literal
			p.nextToken()
		}
		attr.Span = p.spanFrom(start)
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) parseVisibility() ast.Visibility {
	if p.curIs(lexer.PUB) {
		p.nextToken()
		return ast.Public
	}
	return ast.Private
}

// parseItem dispatches on the current keyword to one of the Item
// constructors (§3 Item).
func (p *Parser) parseItem() ast.Item {
	start := p.curSpan()
	attrs := p.parseAttributes()
	if p.err != nil {
		return nil
	}
	vis := p.parseVisibility()

	switch p.cur.Type {
	case lexer.FN:
		return p.parseFnDef(attrs, vis, start)
	case lexer.STRUCT:
		return p.parseStructDef(attrs, vis, start)
	case lexer.ENUM:
		return p.parseEnumDef(attrs, vis, start)
	case lexer.TYPE:
		return p.parseTypeAlias(attrs, vis, start)
	case lexer.USE:
		return p.parseUse(attrs, vis, start)
	case lexer.EXTERN:
		return p.parseExternFn(attrs, vis, start)
	case lexer.TRAIT:
		return p.parseTraitDef(attrs, vis, start)
	case lexer.IMPL:
		return p.parseImplBlock(attrs, vis, start)
	}

	p.fail("expected an item (fn/struct/enum/type/use/extern/trait/impl), got " + p.cur.Type.String())
	return nil
}

func (p *Parser) parseParamList() []ast.Param {
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var params []ast.Param
	for !p.curIs(lexer.RPAREN) {
		start := p.curSpan()
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
		params = append(params, ast.Param{Name: name, Type: ty, Span: p.spanFrom(start)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return params
}

// parseContracts parses any mix (order-independent) of legacy
// `pre EXPR` / `post EXPR` clauses and a `where { name?: cond; … }`
// block, appearing after the signature and before `=`/`{` (§4.B).
func (p *Parser) parseContracts(fn *ast.FnDef) {
	for {
		switch p.cur.Type {
		case lexer.PRE:
			p.nextToken()
			start := p.curSpan()
			e := p.parseExpression(LOWEST)
			if p.err != nil {
				return
			}
			fn.Pre = ast.Spanned[ast.Expr]{Node: e, Span: p.spanFrom(start)}
			continue
		case lexer.POST:
			p.nextToken()
			start := p.curSpan()
			e := p.parseExpression(LOWEST)
			if p.err != nil {
				return
			}
			fn.Post = ast.Spanned[ast.Expr]{Node: e, Span: p.spanFrom(start)}
			continue
		case lexer.WHERE:
			p.nextToken()
			if !p.expect(lexer.LBRACE) {
				return
			}
			for !p.curIs(lexer.RBRACE) && p.err == nil {
				cstart := p.curSpan()
				name := ""
				if p.curIs(lexer.IDENT) && p.peekIs(lexer.COLON) {
					name = p.cur.Literal
					p.nextToken()
					p.nextToken() // consume ':'
				}
				cond := p.parseExpression(LOWEST)
				if p.err != nil {
					return
				}
				fn.Contracts = append(fn.Contracts, ast.NamedContract{
					Name: name,
					Cond: ast.Spanned[ast.Expr]{Node: cond, Span: p.spanFrom(cstart)},
					Span: p.spanFrom(cstart),
				})
				if p.curIs(lexer.SEMI) {
					p.nextToken()
				} else {
					break
				}
			}
			if !p.expect(lexer.RBRACE) {
				return
			}
			continue
		}
		return
	}
}

// parseFnDef parses:
//
//	[pub] fn name<T…>(params) -> RetType [-> retBinding]
//	  [pre EXPR] [post EXPR] [where { … }]
//	  = body;  |  { body }
func (p *Parser) parseFnDef(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.FnDef {
	p.nextToken() // consume 'fn'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	params := p.parseParamList()
	if p.err != nil {
		return nil
	}
	var retType ast.Type
	if p.curIs(lexer.ARROW) {
		p.nextToken()
		retType = p.parseTypeAtom() // a `{` here opens the body, not a refinement
		if p.err != nil {
			return nil
		}
	}
	retBinding := ""
	if p.curIs(lexer.ARROW) {
		p.nextToken()
		retBinding = p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
	}

	fn := &ast.FnDef{
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		RetType:    retType,
		RetBinding: retBinding,
	}
	fn.SetAttrs(attrs)
	fn.SetVis(vis)
	p.parseContracts(fn)
	if p.err != nil {
		return nil
	}

	if p.curIs(lexer.ASSIGN) {
		p.nextToken()
		fn.Body = p.parseExpression(LOWEST)
		if p.curIs(lexer.SEMI) {
			p.nextToken()
		}
	} else {
		fn.Body = p.parseBlock()
	}
	if p.err != nil {
		return nil
	}
	fn.SetSpan(p.spanFrom(start))
	return fn
}

func (p *Parser) parseStructDef(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.StructDef {
	p.nextToken() // consume 'struct'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var fields []ast.StructField
	for !p.curIs(lexer.RBRACE) {
		fstart := p.curSpan()
		fname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		if !p.expect(lexer.COLON) {
			return nil
		}
		fty := p.parseType()
		if p.err != nil {
			return nil
		}
		fields = append(fields, ast.StructField{Name: fname, Type: fty, Span: p.spanFrom(fstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	s := &ast.StructDef{
		Name:       name,
		TypeParams: typeParams,
		Fields:     fields,
	}
	s.SetAttrs(attrs)
	s.SetVis(vis)
	s.SetSpan(p.spanFrom(start))
	return s
}

func (p *Parser) parseEnumDef(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.EnumDef {
	p.nextToken() // consume 'enum'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var variants []ast.EnumVariantType
	for !p.curIs(lexer.RBRACE) {
		vstart := p.curSpan()
		vname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		var fields []ast.Type
		if p.curIs(lexer.LPAREN) {
			p.nextToken()
			for !p.curIs(lexer.RPAREN) {
				ft := p.parseType()
				if p.err != nil {
					return nil
				}
				fields = append(fields, ft)
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
		variants = append(variants, ast.EnumVariantType{Name: vname, Fields: fields, Span: p.spanFrom(vstart)})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	e := &ast.EnumDef{
		Name:       name,
		TypeParams: typeParams,
		Variants:   variants,
	}
	e.SetAttrs(attrs)
	e.SetVis(vis)
	e.SetSpan(p.spanFrom(start))
	return e
}

func (p *Parser) parseTypeAlias(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.TypeAlias {
	p.nextToken() // consume 'type'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	target := p.parseType()
	if p.err != nil {
		return nil
	}
	if p.curIs(lexer.SEMI) {
		p.nextToken()
	}
	ta := &ast.TypeAlias{
		Name:       name,
		TypeParams: typeParams,
		Target:     target,
	}
	ta.SetAttrs(attrs)
	ta.SetVis(vis)
	ta.SetSpan(p.spanFrom(start))
	return ta
}

// parseUse parses `use a.b.c;` or `use a.b.c::{x, y};`.
func (p *Parser) parseUse(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.Use {
	p.nextToken() // consume 'use'
	path := p.parseDottedPath()
	var symbols []string
	var symbolSpans []ast.Span
	if p.curIs(lexer.COLONCOLON) {
		p.nextToken()
		if !p.expect(lexer.LBRACE) {
			return nil
		}
		for !p.curIs(lexer.RBRACE) {
			symbolSpans = append(symbolSpans, p.curSpan())
			symbols = append(symbols, p.cur.Literal)
			if !p.expect(lexer.IDENT) {
				return nil
			}
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			} else {
				break
			}
		}
		if !p.expect(lexer.RBRACE) {
			return nil
		}
	}
	if p.curIs(lexer.SEMI) {
		p.nextToken()
	}
	u := &ast.Use{
		Path:        path,
		Symbols:     symbols,
		SymbolSpans: symbolSpans,
	}
	u.SetAttrs(attrs)
	u.SetVis(vis)
	u.SetSpan(p.spanFrom(start))
	return u
}

// parseExternFn parses `extern ["ABI"] fn name(params) -> T;`, honoring
// an `@link("module")` attribute for LinkModule (§6).
func (p *Parser) parseExternFn(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.ExternFn {
	p.nextToken() // consume 'extern'
	abi := "bmb"
	if p.curIs(lexer.STRING) {
		abi = p.cur.Literal
		p.nextToken()
	}
	if !p.expect(lexer.FN) {
		return nil
	}
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	params := p.parseParamList()
	if p.err != nil {
		return nil
	}
	var retType ast.Type
	if p.curIs(lexer.ARROW) {
		p.nextToken()
		retType = p.parseType()
		if p.err != nil {
			return nil
		}
	}
	if p.curIs(lexer.SEMI) {
		p.nextToken()
	}
	linkModule := ""
	if a, ok := ast.FindAttr(attrs, "link"); ok && len(a.Args) > 0 {
		linkModule = a.Args[0]
	}
	ef := &ast.ExternFn{
		ABI:        abi,
		Name:       name,
		Params:     params,
		RetType:    retType,
		LinkModule: linkModule,
	}
	ef.SetAttrs(attrs)
	ef.SetVis(vis)
	ef.SetSpan(p.spanFrom(start))
	return ef
}

func (p *Parser) parseTraitDef(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.TraitDef {
	p.nextToken() // consume 'trait'
	name := p.cur.Literal
	if !p.expect(lexer.IDENT) {
		return nil
	}
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var methods []ast.TraitMethod
	for !p.curIs(lexer.RBRACE) {
		mstart := p.curSpan()
		if !p.expect(lexer.FN) {
			return nil
		}
		mname := p.cur.Literal
		if !p.expect(lexer.IDENT) {
			return nil
		}
		mparams := p.parseParamList()
		if p.err != nil {
			return nil
		}
		var mret ast.Type
		if p.curIs(lexer.ARROW) {
			p.nextToken()
			mret = p.parseType()
			if p.err != nil {
				return nil
			}
		}
		if p.curIs(lexer.SEMI) {
			p.nextToken()
		}
		methods = append(methods, ast.TraitMethod{Name: mname, Params: mparams, RetType: mret, Span: p.spanFrom(mstart)})
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	td := &ast.TraitDef{
		Name:       name,
		TypeParams: typeParams,
		Methods:    methods,
	}
	td.SetAttrs(attrs)
	td.SetVis(vis)
	td.SetSpan(p.spanFrom(start))
	return td
}

func (p *Parser) parseImplBlock(attrs []*ast.Attribute, vis ast.Visibility, start ast.Span) *ast.ImplBlock {
	p.nextToken() // consume 'impl'
	typeParams := p.parseTypeParams()
	if p.err != nil {
		return nil
	}
	first := p.parseTypeAtom()
	if p.err != nil {
		return nil
	}
	trait := ""
	forType := first
	if p.curIs(lexer.FOR) {
		if named, ok := first.(*ast.Named); ok {
			trait = named.Name
		}
		p.nextToken()
		forType = p.parseTypeAtom()
		if p.err != nil {
			return nil
		}
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	var fns []*ast.FnDef
	for !p.curIs(lexer.RBRACE) {
		fnStart := p.curSpan()
		fnAttrs := p.parseAttributes()
		if p.err != nil {
			return nil
		}
		fnVis := p.parseVisibility()
		fn := p.parseFnDef(fnAttrs, fnVis, fnStart)
		if p.err != nil {
			return nil
		}
		fns = append(fns, fn)
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	ib := &ast.ImplBlock{
		Trait:      trait,
		TypeParams: typeParams,
		ForType:    forType,
		Fns:        fns,
	}
	ib.SetAttrs(attrs)
	ib.SetVis(vis)
	ib.SetSpan(p.spanFrom(start))
	return ib
}
