package lexer

import "testing"

func TestNextTokenBasics(t *testing.T) {
	input := `fn add(a: i32, b: i32) -> i32 {
  a + b
}

let x: i32 = 5 + 10
if x > 10 then "big" else "small"

match x {
  0 => "zero",
  n => "other",
}

[1, 2, 3]
-- comment
true && false || not true
x..<10
x..=10
y::Z
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{FN, "fn"}, {IDENT, "add"}, {LPAREN, "("},
		{IDENT, "a"}, {COLON, ":"}, {TY_I32, "i32"}, {COMMA, ","},
		{IDENT, "b"}, {COLON, ":"}, {TY_I32, "i32"}, {RPAREN, ")"},
		{ARROW, "->"}, {TY_I32, "i32"}, {LBRACE, "{"},
		{IDENT, "a"}, {PLUS, "+"}, {IDENT, "b"}, {RBRACE, "}"},

		{LET, "let"}, {IDENT, "x"}, {COLON, ":"}, {TY_I32, "i32"}, {ASSIGN, "="},
		{INT, "5"}, {PLUS, "+"}, {INT, "10"},

		{IF, "if"}, {IDENT, "x"}, {GT, ">"}, {INT, "10"}, {THEN, "then"},
		{STRING, "big"}, {ELSE, "else"}, {STRING, "small"},

		{MATCH, "match"}, {IDENT, "x"}, {LBRACE, "{"},
		{INT, "0"}, {FATARROW, "=>"}, {STRING, "zero"}, {COMMA, ","},
		{IDENT, "n"}, {FATARROW, "=>"}, {STRING, "other"}, {COMMA, ","},
		{RBRACE, "}"},

		{LBRACKET, "["}, {INT, "1"}, {COMMA, ","}, {INT, "2"}, {COMMA, ","}, {INT, "3"}, {RBRACKET, "]"},

		{TRUE, "true"}, {ANDAND, "&&"}, {FALSE, "false"}, {OROR, "||"}, {NOT, "not"}, {TRUE, "true"},

		{IDENT, "x"}, {DOTDOTLT, "..<"}, {INT, "10"},
		{IDENT, "x"}, {DOTDOTEQ, "..="}, {INT, "10"},
		{IDENT, "y"}, {COLONCOLON, "::"}, {IDENT, "Z"},

		{EOF, ""},
	}

	l := New(string(Normalize([]byte(input))), "test.bmb")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextTokenOperatorDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"..<", []TokenType{DOTDOTLT}},
		{"..=", []TokenType{DOTDOTEQ}},
		{"..", []TokenType{DOTDOT}},
		{".", []TokenType{DOT}},
		{"::", []TokenType{COLONCOLON}},
		{":", []TokenType{COLON}},
		{"==", []TokenType{EQ}},
		{"===", []TokenType{HEADER_SEP}},
		{"!=", []TokenType{NOTEQ}},
		{"<=", []TokenType{LTEQ}},
		{">=", []TokenType{GTEQ}},
		{"<<", []TokenType{SHL}},
		{">>", []TokenType{SHR}},
		{"+%", []TokenType{PLUSPERCENT}},
		{"-%", []TokenType{MINUSPERCENT}},
		{"*%", []TokenType{STARPERCENT}},
		{"+?", []TokenType{PLUSQ}},
		{"-?", []TokenType{MINUSQ}},
		{"*?", []TokenType{STARQ}},
		{"+|", []TokenType{PLUSPIPE}},
		{"-|", []TokenType{MINUSPIPE}},
		{"*|", []TokenType{STARPIPE}},
		{"&&", []TokenType{ANDAND}},
		{"||", []TokenType{OROR}},
		{"->", []TokenType{ARROW}},
		{"=>", []TokenType{FATARROW}},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.bmb")
		for _, want := range tt.expected {
			got := l.NextToken()
			if got.Type != want {
				t.Errorf("input %q: expected %s, got %s", tt.input, want, got.Type)
			}
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		input        string
		expectedType TokenType
		expectedLit  string
	}{
		{"42", INT, "42"},
		{"3.14", FLOAT, "3.14"},
		{"1e-5", FLOAT, "1e-5"},
		{"6.022E23", FLOAT, "6.022E23"},
		{"10..20", INT, "10"}, // range operator must not be swallowed into the float
	}
	for _, tt := range tests {
		l := New(tt.input, "test.bmb")
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLit {
			t.Errorf("input %q: expected {%s %q}, got {%s %q}", tt.input, tt.expectedType, tt.expectedLit, tok.Type, tok.Literal)
		}
	}
}

func TestNextTokenStringsAndChars(t *testing.T) {
	l := New(`"hello\nworld" 'a' '\t'`, "test.bmb")

	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "hello\nworld" {
		t.Fatalf("string literal: got %v", tok)
	}
	tok = l.NextToken()
	if tok.Type != CHAR || tok.Literal != "a" {
		t.Fatalf("char literal: got %v", tok)
	}
	tok = l.NextToken()
	if tok.Type != CHAR || tok.Literal != "\t" {
		t.Fatalf("char literal escape: got %v", tok)
	}
}

func TestNextTokenIllegalByte(t *testing.T) {
	l := New("let x = `", "test.bmb")
	l.NextToken() // let
	l.NextToken() // x
	l.NextToken() // =
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 recorded error, got %d", len(l.Errors()))
	}
}

func TestNextTokenModuleHeaderKeywords(t *testing.T) {
	input := `module
version: "1.0.0"
summary: "demo"
exports: [f]
depends: []
===`
	l := New(input, "test.bmb")
	want := []TokenType{MODULE, VERSION, COLON, STRING, SUMMARY, COLON, STRING,
		EXPORTS, COLON, LBRACKET, IDENT, RBRACKET, DEPENDS, COLON, LBRACKET, RBRACKET, HEADER_SEP}
	for i, w := range want {
		got := l.NextToken()
		if got.Type != w {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, w, got.Type, got.Literal)
		}
	}
}
