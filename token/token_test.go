package token

import "testing"

func TestNew(t *testing.T) {
	tok := New(PLUS, "+", 3, 10)
	want := Token{Kind: PLUS, Lexeme: "+", Line: 3, Column: 10}
	if tok != want {
		t.Errorf("New() = %+v, want %+v", tok, want)
	}
}

func TestNewLiteral(t *testing.T) {
	tok := NewLiteral(NUMBER, "42", int64(42), 1, 1)
	if tok.Literal != int64(42) {
		t.Errorf("NewLiteral() literal = %v, want 42", tok.Literal)
	}
	if tok.Kind != NUMBER || tok.Lexeme != "42" {
		t.Errorf("NewLiteral() = %+v", tok)
	}
}

func TestKeywordsLookup(t *testing.T) {
	tests := []struct {
		lexeme string
		want   Kind
	}{
		{"var", VAR},
		{"let", LET},
		{"const", CONST},
		{"function", FUNCTION},
		{"instanceof", INSTANCEOF},
		{"super", SUPER},
		{"of", OF},
	}
	for _, tt := range tests {
		got, ok := Keywords[tt.lexeme]
		if !ok {
			t.Errorf("Keywords[%q] missing", tt.lexeme)
			continue
		}
		if got != tt.want {
			t.Errorf("Keywords[%q] = %s, want %s", tt.lexeme, got, tt.want)
		}
	}
	if _, ok := Keywords["notAKeyword"]; ok {
		t.Errorf("Keywords contains unexpected entry for identifier")
	}
}

func TestIsAssignmentOperator(t *testing.T) {
	if !New(PLUS_ASSIGN, "+=", 0, 0).IsAssignmentOperator() {
		t.Error("expected += to be an assignment operator")
	}
	if New(PLUS, "+", 0, 0).IsAssignmentOperator() {
		t.Error("expected + to not be an assignment operator")
	}
}

func TestCompoundOperator(t *testing.T) {
	op, ok := New(PLUS_ASSIGN, "+=", 0, 0).CompoundOperator()
	if !ok || op != PLUS {
		t.Errorf("CompoundOperator() = %s, %v, want PLUS, true", op, ok)
	}
	if _, ok := New(ASSIGN, "=", 0, 0).CompoundOperator(); ok {
		t.Error("CompoundOperator() should report false for plain assignment")
	}
}

func TestString(t *testing.T) {
	tok := New(IDENTIFIER, "x", 1, 1)
	if tok.String() == "" {
		t.Error("String() returned empty string")
	}
}
