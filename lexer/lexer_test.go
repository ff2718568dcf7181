package lexer

import (
	"testing"

	"mildew/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, source string, want ...token.Kind) []token.Token {
	t.Helper()
	toks, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) kinds = %v, want %v", source, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize(%q) kinds = %v, want %v", source, got, want)
		}
	}
	return toks
}

func TestOperators(t *testing.T) {
	assertKinds(t, "== != === !== <= >= << >> >>> && || **",
		token.EQ, token.NEQ, token.STRICT_EQ, token.STRICT_NEQ,
		token.LE, token.GE, token.SHL, token.SHR, token.USHR,
		token.AND_AND, token.OR_OR, token.STARSTAR, token.EOF)
}

func TestCompoundAssignOperators(t *testing.T) {
	assertKinds(t, "+= -= *= /= %= &= |= ^=",
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.PERCENT_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN,
		token.EOF)
}

func TestPunctuation(t *testing.T) {
	assertKinds(t, "(){}[],;:.?=>~",
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON,
		token.COLON, token.DOT, token.QUESTION, token.ARROW, token.TILDE, token.EOF)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := assertKinds(t, "var x = function",
		token.VAR, token.IDENTIFIER, token.ASSIGN, token.FUNCTION, token.EOF)
	if toks[1].Lexeme != "x" {
		t.Errorf("identifier lexeme = %q, want x", toks[1].Lexeme)
	}
}

func TestLabel(t *testing.T) {
	toks := assertKinds(t, "outer: while (true) break outer",
		token.LABEL, token.WHILE, token.LPAREN, token.TRUE, token.RPAREN,
		token.BREAK, token.IDENTIFIER, token.EOF)
	if toks[0].Lexeme != "outer" {
		t.Errorf("label lexeme = %q, want outer", toks[0].Lexeme)
	}
}

func TestIntegerLiteral(t *testing.T) {
	toks := assertKinds(t, "42", token.NUMBER, token.EOF)
	if toks[0].Literal != int64(42) {
		t.Errorf("literal = %v, want 42", toks[0].Literal)
	}
	if toks[0].NumberFlag != token.NumberNone {
		t.Errorf("NumberFlag = %v, want NumberNone", toks[0].NumberFlag)
	}
}

func TestFloatLiteral(t *testing.T) {
	toks := assertKinds(t, "3.14", token.NUMBER, token.EOF)
	if toks[0].Literal != 3.14 {
		t.Errorf("literal = %v, want 3.14", toks[0].Literal)
	}
}

func TestExponentLiteral(t *testing.T) {
	toks := assertKinds(t, "1e10", token.NUMBER, token.EOF)
	if toks[0].Literal != 1e10 {
		t.Errorf("literal = %v, want 1e10", toks[0].Literal)
	}
}

func TestHexOctalBinaryLiterals(t *testing.T) {
	toks := assertKinds(t, "0xFF 0o17 0b101",
		token.NUMBER, token.NUMBER, token.NUMBER, token.EOF)
	if toks[0].Literal != int64(255) || toks[0].NumberFlag != token.NumberHex {
		t.Errorf("hex literal = %v flag %v", toks[0].Literal, toks[0].NumberFlag)
	}
	if toks[1].Literal != int64(15) || toks[1].NumberFlag != token.NumberOctal {
		t.Errorf("octal literal = %v flag %v", toks[1].Literal, toks[1].NumberFlag)
	}
	if toks[2].Literal != int64(5) || toks[2].NumberFlag != token.NumberBinary {
		t.Errorf("binary literal = %v flag %v", toks[2].Literal, toks[2].NumberFlag)
	}
}

func TestMalformedNumberTrailingDot(t *testing.T) {
	if _, err := Tokenize("1."); err == nil {
		t.Fatal("expected error for '1.'")
	}
}

func TestMalformedNumberDoubleDot(t *testing.T) {
	if _, err := Tokenize("1.2.3"); err == nil {
		t.Fatal("expected error for '1.2.3'")
	}
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := assertKinds(t, `"hi\n\t\"there\""`, token.STRING, token.EOF)
	if toks[0].Literal != "hi\n\t\"there\"" {
		t.Errorf("literal = %q", toks[0].Literal)
	}
}

func TestSingleQuotedString(t *testing.T) {
	toks := assertKinds(t, `'abc'`, token.STRING, token.EOF)
	if toks[0].Literal != "abc" {
		t.Errorf("literal = %q, want abc", toks[0].Literal)
	}
}

func TestUnterminatedStringError(t *testing.T) {
	if _, err := Tokenize(`"abc`); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestUnknownEscapeError(t *testing.T) {
	if _, err := Tokenize(`"a\qb"`); err == nil {
		t.Fatal("expected error for unknown escape sequence")
	}
}

func TestTemplateStringRawInterior(t *testing.T) {
	toks := assertKinds(t, "`hello ${name}!`", token.TEMPLATE, token.EOF)
	if toks[0].Literal != "hello ${name}!" {
		t.Errorf("template literal = %q", toks[0].Literal)
	}
}

func TestUnterminatedTemplateError(t *testing.T) {
	if _, err := Tokenize("`abc"); err == nil {
		t.Fatal("expected error for unterminated template")
	}
}

func TestLineComment(t *testing.T) {
	assertKinds(t, "1 // comment\n2", token.NUMBER, token.NUMBER, token.EOF)
}

func TestBlockComment(t *testing.T) {
	assertKinds(t, "1 /* multi\nline */ 2", token.NUMBER, token.NUMBER, token.EOF)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := Tokenize("var x\nvar y")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Line != 1 {
		t.Errorf("first VAR line = %d, want 1", toks[0].Line)
	}
	var secondVarLine int
	seen := 0
	for _, tok := range toks {
		if tok.Kind == token.VAR {
			seen++
			if seen == 2 {
				secondVarLine = tok.Line
			}
		}
	}
	if secondVarLine != 2 {
		t.Errorf("second VAR line = %d, want 2", secondVarLine)
	}
}

func TestUnexpectedCharacterError(t *testing.T) {
	if _, err := Tokenize("@"); err == nil {
		t.Fatal("expected error for unexpected character")
	}
}
