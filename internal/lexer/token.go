package lexer

import "fmt"

// TokenType is the type of a lexical token (§4.A).
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT
	INT
	FLOAT
	STRING
	CHAR

	// Keywords
	FN
	LET
	VAR
	IF
	THEN
	ELSE
	PRE
	POST
	TRUE
	FALSE
	RET
	AND
	OR
	NOT
	STRUCT
	ENUM
	MATCH
	NEW
	MUT
	WHILE
	FOR
	IN
	LOOP
	BREAK
	CONTINUE
	RETURN
	BAND
	BOR
	BXOR
	BNOT
	PUB
	USE
	MOD
	WHERE
	IT
	EXTERN
	TRY
	AS
	TRAIT
	IMPL
	TYPE
	TODO
	INVARIANT
	IMPLIES
	FORALL
	EXISTS
	MODULE
	VERSION
	SUMMARY
	EXPORTS
	DEPENDS
	HEADER_SEP // ===

	// Type keywords
	TY_I32
	TY_I64
	TY_U32
	TY_U64
	TY_F64
	TY_BOOL
	TY_STRING
	TY_CHAR

	// Symbols
	COLON
	COLONCOLON
	ARROW
	FATARROW
	UNDERSCORE
	DOTDOTLT // ..<
	DOTDOTEQ // ..=
	DOTDOT   // ..
	DOT
	ASSIGN // =
	SEMI
	COMMA
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	AMP // &
	AT
	QUESTION
	PIPE // |

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NOTEQ
	LTEQ
	GTEQ
	LT
	GT
	SHL // <<
	SHR // >>

	PLUSPERCENT  // +%
	MINUSPERCENT // -%
	STARPERCENT  // *%
	PLUSQ        // +?
	MINUSQ       // -?
	STARQ        // *?
	PLUSPIPE     // +|
	MINUSPIPE    // -|
	STARPIPE     // *|

	ANDAND // &&
	OROR   // ||
	BANG   // !
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING", CHAR: "CHAR",

	FN: "fn", LET: "let", VAR: "var", IF: "if", THEN: "then", ELSE: "else",
	PRE: "pre", POST: "post", TRUE: "true", FALSE: "false", RET: "ret",
	AND: "and", OR: "or", NOT: "not", STRUCT: "struct", ENUM: "enum",
	MATCH: "match", NEW: "new", MUT: "mut", WHILE: "while", FOR: "for",
	IN: "in", LOOP: "loop", BREAK: "break", CONTINUE: "continue",
	RETURN: "return", BAND: "band", BOR: "bor", BXOR: "bxor", BNOT: "bnot",
	PUB: "pub", USE: "use", MOD: "mod", WHERE: "where", IT: "it",
	EXTERN: "extern", TRY: "try", AS: "as", TRAIT: "trait", IMPL: "impl",
	TYPE: "type",
	TODO: "todo", INVARIANT: "invariant", IMPLIES: "implies",
	FORALL: "forall", EXISTS: "exists", MODULE: "module", VERSION: "version",
	SUMMARY: "summary", EXPORTS: "exports", DEPENDS: "depends",
	HEADER_SEP: "===",

	TY_I32: "i32", TY_I64: "i64", TY_U32: "u32", TY_U64: "u64",
	TY_F64: "f64", TY_BOOL: "bool", TY_STRING: "String", TY_CHAR: "char",

	COLON: ":", COLONCOLON: "::", ARROW: "->", FATARROW: "=>",
	UNDERSCORE: "_", DOTDOTLT: "..<", DOTDOTEQ: "..=", DOTDOT: "..",
	DOT: ".", ASSIGN: "=", SEMI: ";", COMMA: ",",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", AMP: "&", AT: "@", QUESTION: "?", PIPE: "|",

	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NOTEQ: "!=", LTEQ: "<=", GTEQ: ">=", LT: "<", GT: ">",
	SHL: "<<", SHR: ">>",
	PLUSPERCENT: "+%", MINUSPERCENT: "-%", STARPERCENT: "*%",
	PLUSQ: "+?", MINUSQ: "-?", STARQ: "*?",
	PLUSPIPE: "+|", MINUSPIPE: "-|", STARPIPE: "*|",
	ANDAND: "&&", OROR: "||", BANG: "!",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// keywords maps keyword spellings to their token type. It is a separate
// literal from tokenNames; the two are kept in step by hand.
var keywords = map[string]TokenType{
	"fn": FN, "let": LET, "var": VAR, "if": IF, "then": THEN, "else": ELSE,
	"pre": PRE, "post": POST, "true": TRUE, "false": FALSE, "ret": RET,
	"and": AND, "or": OR, "not": NOT, "struct": STRUCT, "enum": ENUM,
	"match": MATCH, "new": NEW, "mut": MUT, "while": WHILE, "for": FOR,
	"in": IN, "loop": LOOP, "break": BREAK, "continue": CONTINUE,
	"return": RETURN, "band": BAND, "bor": BOR, "bxor": BXOR, "bnot": BNOT,
	"pub": PUB, "use": USE, "mod": MOD, "where": WHERE, "it": IT,
	"extern": EXTERN, "try": TRY, "as": AS, "trait": TRAIT, "impl": IMPL,
	"type": TYPE,
	"todo": TODO, "invariant": INVARIANT, "implies": IMPLIES,
	"forall": FORALL, "exists": EXISTS, "module": MODULE, "version": VERSION,
	"summary": SUMMARY, "exports": EXPORTS, "depends": DEPENDS,
	"i32": TY_I32, "i64": TY_I64, "u32": TY_U32, "u64": TY_U64,
	"f64": TY_F64, "bool": TY_BOOL, "String": TY_STRING, "char": TY_CHAR,
}

// LookupIdent classifies an identifier as a keyword token or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is one lexical token with its source span (§3 Span).
type Token struct {
	Type    TokenType
	Literal string
	Start   int
	End     int
	Line    int
	Column  int
	File    string
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %s:%d:%d}", t.Type, t.Literal, t.File, t.Line, t.Column)
}

// Precedence gives the binding power of a binary operator token for
// the Pratt parser (§4.B); non-operator tokens return 0.
func (t Token) Precedence() int {
	switch t.Type {
	case OR, OROR:
		return 1
	case AND, ANDAND:
		return 2
	case EQ, NOTEQ:
		return 3
	case LT, GT, LTEQ, GTEQ:
		return 4
	case DOTDOT, DOTDOTEQ, DOTDOTLT:
		return 5
	case SHL, SHR, AMP, PIPE, BAND, BOR, BXOR:
		return 6
	case PLUS, MINUS, PLUSPERCENT, MINUSPERCENT, PLUSQ, MINUSQ, PLUSPIPE, MINUSPIPE:
		return 7
	case STAR, SLASH, PERCENT, STARPERCENT, STARQ, STARPIPE:
		return 8
	case AS:
		return 9
	default:
		return 0
	}
}
