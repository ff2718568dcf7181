package parser

import "mildew/ast"
import "mildew/token"

// declaration parses a declaration or falls through to a plain statement.
func (p *Parser) declaration() (ast.Stmt, error) {
	switch {
	case p.isMatch(token.VAR, token.LET, token.CONST):
		return p.varDeclaration(p.previous())
	case p.isMatch(token.FUNCTION):
		return p.functionDeclaration()
	case p.isMatch(token.CLASS):
		return p.classDeclaration()
	}
	return p.statement()
}

func qualifierFromKeyword(k token.Kind) ast.Qualifier {
	switch k {
	case token.LET:
		return ast.QualifierLet
	case token.CONST:
		return ast.QualifierConst
	default:
		return ast.QualifierVar
	}
}

func (p *Parser) varDeclaration(keyword token.Token) (ast.Stmt, error) {
	qualifier := qualifierFromKeyword(keyword.Kind)
	var decls []ast.Expr

	for {
		name, err := p.consume(token.IDENTIFIER, "expected binding name")
		if err != nil {
			return nil, err
		}
		target := &ast.Variable{Name: name}
		if qualifier == ast.QualifierConst {
			if _, err := p.consume(token.ASSIGN, "const binding requires an initializer"); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			decls = append(decls, &ast.Assign{Target: target, Operator: token.Token{Kind: token.ASSIGN}, Value: value})
		} else if p.isMatch(token.ASSIGN) {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			decls = append(decls, &ast.Assign{Target: target, Operator: token.Token{Kind: token.ASSIGN}, Value: value})
		} else {
			decls = append(decls, target)
		}

		if !p.isMatch(token.COMMA) {
			break
		}
	}

	p.optionalSemicolon()
	return &ast.VarDecl{StmtBase: ast.NewLine(keyword.Line), Qualifier: qualifier, Decls: decls}, nil
}

func (p *Parser) functionDeclaration() (ast.Stmt, error) {
	keyword := p.previous()
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	fn, err := p.functionTail(name.Lexeme, keyword.Line, false)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{StmtBase: ast.NewLine(keyword.Line), Name: name.Lexeme, Literal: fn}, nil
}

// functionTail parses the parameter list and body following a function
// name (or the `function` keyword itself, for anonymous literals).
func (p *Parser) functionTail(name string, line int, isClass bool) (*ast.FunctionLiteral, error) {
	if _, err := p.consume(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(token.RPAREN) {
		for {
			pname, err := p.consume(token.IDENTIFIER, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, pname.Lexeme)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LBRACE, "expected '{' before function body"); err != nil {
		return nil, err
	}
	body, err := p.blockStatements()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{Name: name, Parameters: params, Body: body, IsClass: isClass, Line: line}, nil
}

func (p *Parser) classDeclaration() (ast.Stmt, error) {
	keyword := p.previous()
	def, err := p.classBody(true)
	if err != nil {
		return nil, err
	}
	return &ast.ClassDecl{StmtBase: ast.NewLine(keyword.Line), Definition: def}, nil
}

// statement parses a single non-declaration statement.
func (p *Parser) statement() (ast.Stmt, error) {
	if p.check(token.LABEL) {
		return p.labeledStatement()
	}

	switch {
	case p.isMatch(token.LBRACE):
		line := p.previous().Line
		stmts, err := p.blockStatements()
		if err != nil {
			return nil, err
		}
		return &ast.Block{StmtBase: ast.NewLine(line), Statements: stmts}, nil
	case p.isMatch(token.IF):
		return p.ifStatement()
	case p.isMatch(token.WHILE):
		return p.whileStatement("")
	case p.isMatch(token.DO):
		return p.doWhileStatement("")
	case p.isMatch(token.FOR):
		return p.forStatement("")
	case p.isMatch(token.SWITCH):
		return p.switchStatement()
	case p.isMatch(token.BREAK):
		return p.breakStatement()
	case p.isMatch(token.CONTINUE):
		return p.continueStatement()
	case p.isMatch(token.RETURN):
		return p.returnStatement()
	case p.isMatch(token.THROW):
		return p.throwStatement()
	case p.isMatch(token.TRY):
		return p.tryStatement()
	case p.isMatch(token.DELETE):
		return p.deleteStatement()
	case p.isMatch(token.SEMICOLON):
		return &ast.Block{StmtBase: ast.NewLine(p.previous().Line)}, nil
	}

	return p.expressionStatement()
}

func (p *Parser) labeledStatement() (ast.Stmt, error) {
	labelTok := p.advance()
	label := labelTok.Lexeme

	switch {
	case p.isMatch(token.WHILE):
		return p.whileStatement(label)
	case p.isMatch(token.DO):
		return p.doWhileStatement(label)
	case p.isMatch(token.FOR):
		return p.forStatement(label)
	}
	return nil, syntaxErrorf(labelTok.Line, labelTok.Column, "label %q must precede a loop", label)
}

func (p *Parser) blockStatements() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isFinished() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	line := p.peek().Line
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.ExpressionStmt{StmtBase: ast.NewLine(line), Expression: expr}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(token.LPAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	thenStmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.isMatch(token.ELSE) {
		elseStmt, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{StmtBase: ast.NewLine(line), Condition: cond, Then: thenStmt, Else: elseStmt}, nil
}

func (p *Parser) whileStatement(label string) (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(token.LPAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.While{StmtBase: ast.NewLine(line), Label: label, Condition: cond, Body: body}, nil
}

func (p *Parser) doWhileStatement(label string) (ast.Stmt, error) {
	line := p.previous().Line
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.WHILE, "expected 'while' after do-block"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.DoWhile{StmtBase: ast.NewLine(line), Label: label, Body: body, Condition: cond}, nil
}

func (p *Parser) forStatement(label string) (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(token.LPAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	saved := p.position
	if stmt, ok, err := p.tryForOf(label, line); err != nil {
		return nil, err
	} else if ok {
		return stmt, nil
	}
	p.position = saved

	return p.classicFor(label, line)
}

func (p *Parser) tryForOf(label string, line int) (ast.Stmt, bool, error) {
	if !p.check(token.VAR) && !p.check(token.LET) && !p.check(token.CONST) {
		return nil, false, nil
	}
	qualifier := qualifierFromKeyword(p.advance().Kind)

	if !p.check(token.IDENTIFIER) {
		return nil, false, nil
	}
	first := p.advance()

	var second token.Token
	hasSecond := false
	if p.isMatch(token.COMMA) {
		if !p.check(token.IDENTIFIER) {
			return nil, false, nil
		}
		second = p.advance()
		hasSecond = true
	}

	isForIn := false
	if p.isMatch(token.OF) {
	} else if p.isMatch(token.IN) {
		isForIn = true
	} else {
		return nil, false, nil
	}

	object, err := p.expression()
	if err != nil {
		return nil, true, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after for-of/in header"); err != nil {
		return nil, true, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, true, err
	}

	keyName, valueName := "", first.Lexeme
	if hasSecond {
		keyName, valueName = first.Lexeme, second.Lexeme
	}
	return &ast.ForOf{
		StmtBase: ast.NewLine(line), Label: label, Qualifier: qualifier,
		KeyName: keyName, ValueName: valueName, IsForIn: isForIn, Object: object, Body: body,
	}, true, nil
}

func (p *Parser) classicFor(label string, line int) (ast.Stmt, error) {
	var init ast.Stmt
	var err error
	switch {
	case p.isMatch(token.SEMICOLON):
		init = nil
	case p.isMatch(token.VAR, token.LET, token.CONST):
		init, err = p.varDeclaration(p.previous())
		if err != nil {
			return nil, err
		}
	default:
		init, err = p.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var post ast.Expr
	if !p.check(token.RPAREN) {
		post, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	return &ast.For{StmtBase: ast.NewLine(line), Label: label, Init: init, Condition: cond, Post: post, Body: body}, nil
}

func (p *Parser) breakStatement() (ast.Stmt, error) {
	line := p.previous().Line
	label := ""
	if p.check(token.IDENTIFIER) {
		label = p.advance().Lexeme
	}
	p.optionalSemicolon()
	return &ast.Break{StmtBase: ast.NewLine(line), Label: label}, nil
}

func (p *Parser) continueStatement() (ast.Stmt, error) {
	line := p.previous().Line
	label := ""
	if p.check(token.IDENTIFIER) {
		label = p.advance().Lexeme
	}
	p.optionalSemicolon()
	return &ast.Continue{StmtBase: ast.NewLine(line), Label: label}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	line := p.previous().Line
	var value ast.Expr
	if !p.check(token.SEMICOLON) && !p.check(token.RBRACE) && !p.isFinished() {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	p.optionalSemicolon()
	return &ast.Return{StmtBase: ast.NewLine(line), Value: value}, nil
}

func (p *Parser) throwStatement() (ast.Stmt, error) {
	line := p.previous().Line
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.Throw{StmtBase: ast.NewLine(line), Value: value}, nil
}

func (p *Parser) tryStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(token.LBRACE, "expected '{' after 'try'"); err != nil {
		return nil, err
	}
	body, err := p.blockStatements()
	if err != nil {
		return nil, err
	}

	var hasCatch bool
	var catchName string
	var catchBody []ast.Stmt
	if p.isMatch(token.CATCH) {
		hasCatch = true
		if p.isMatch(token.LPAREN) {
			name, err := p.consume(token.IDENTIFIER, "expected catch binding name")
			if err != nil {
				return nil, err
			}
			catchName = name.Lexeme
			if _, err := p.consume(token.RPAREN, "expected ')' after catch binding"); err != nil {
				return nil, err
			}
		}
		if _, err := p.consume(token.LBRACE, "expected '{' after 'catch'"); err != nil {
			return nil, err
		}
		catchBody, err = p.blockStatements()
		if err != nil {
			return nil, err
		}
	}

	var finallyBody []ast.Stmt
	if p.isMatch(token.FINALLY) {
		if _, err := p.consume(token.LBRACE, "expected '{' after 'finally'"); err != nil {
			return nil, err
		}
		finallyBody, err = p.blockStatements()
		if err != nil {
			return nil, err
		}
	}

	if !hasCatch && finallyBody == nil {
		tok := p.previous()
		return nil, syntaxErrorf(tok.Line, tok.Column, "'try' requires a 'catch' or 'finally' clause")
	}

	return &ast.Try{
		StmtBase: ast.NewLine(line), Body: body, HasCatch: hasCatch,
		CatchName: catchName, CatchBody: catchBody, FinallyBody: finallyBody,
	}, nil
}

func (p *Parser) deleteStatement() (ast.Stmt, error) {
	line := p.previous().Line
	target, err := p.unary()
	if err != nil {
		return nil, err
	}
	switch target.(type) {
	case *ast.Member, *ast.Index:
	default:
		return nil, syntaxErrorf(line, 0, "'delete' target must be a member or index expression")
	}
	p.optionalSemicolon()
	return &ast.Delete{StmtBase: ast.NewLine(line), Target: target}, nil
}
