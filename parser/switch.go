package parser

import (
	"mildew/ast"
	"mildew/token"
)

// switchStatement precomputes case labels at parse time: each `case` must be
// a literal, duplicate labels are rejected immediately, and every case/
// default records the index into the shared Body slice its clause starts
// at, matching C-style fallthrough between clauses.
func (p *Parser) switchStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(token.LPAREN, "expected '(' after 'switch'"); err != nil {
		return nil, err
	}
	discriminant, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after switch discriminant"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' after switch discriminant"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	defaultIndex := -1
	var body []ast.Stmt
	seenKeys := map[any]bool{}

	for !p.check(token.RBRACE) && !p.isFinished() {
		switch {
		case p.isMatch(token.CASE):
			keyTok := p.peek()
			keyExpr, err := p.expression()
			if err != nil {
				return nil, err
			}
			lit, ok := keyExpr.(*ast.Literal)
			if !ok {
				return nil, syntaxErrorf(keyTok.Line, keyTok.Column, "case label must be a literal value")
			}
			if _, err := p.consume(token.COLON, "expected ':' after case label"); err != nil {
				return nil, err
			}
			if seenKeys[lit.Value] {
				return nil, syntaxErrorf(keyTok.Line, keyTok.Column, "duplicate case label")
			}
			seenKeys[lit.Value] = true
			cases = append(cases, ast.SwitchCase{Key: lit.Value, StatementIndex: len(body)})
		case p.isMatch(token.DEFAULT):
			if defaultIndex != -1 {
				tok := p.previous()
				return nil, syntaxErrorf(tok.Line, tok.Column, "switch may have only one default clause")
			}
			if _, err := p.consume(token.COLON, "expected ':' after 'default'"); err != nil {
				return nil, err
			}
			defaultIndex = len(body)
		default:
			stmt, err := p.declaration()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close switch body"); err != nil {
		return nil, err
	}

	return &ast.Switch{
		StmtBase: ast.NewLine(line), Discriminant: discriminant,
		Cases: cases, DefaultIndex: defaultIndex, Body: body,
	}, nil
}
