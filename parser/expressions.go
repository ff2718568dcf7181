package parser

import (
	"mildew/ast"
	"mildew/lexer"
	"mildew/token"
)

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if p.peek().IsAssignmentOperator() {
		opTok := p.advance()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		switch expr.(type) {
		case *ast.Variable, *ast.Member, *ast.Index:
		default:
			return nil, syntaxErrorf(opTok.Line, opTok.Column, "invalid assignment target")
		}
		return &ast.Assign{Target: expr, Operator: opTok, Value: value}, nil
	}
	return expr, nil
}

func (p *Parser) ternary() (ast.Expr, error) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.isMatch(token.QUESTION) {
		thenExpr, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "expected ':' in ternary expression"); err != nil {
			return nil, err
		}
		elseExpr, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Condition: cond, Then: thenExpr, Else: elseExpr}, nil
	}
	return cond, nil
}

func (p *Parser) logicalOr() (ast.Expr, error)  { return p.logicalLevel(p.logicalAnd, token.OR_OR) }
func (p *Parser) logicalAnd() (ast.Expr, error) { return p.logicalLevel(p.bitwiseOr, token.AND_AND) }

func (p *Parser) logicalLevel(next func() (ast.Expr, error), kind token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.check(kind) {
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) bitwiseOr() (ast.Expr, error)  { return p.binaryLevel(p.bitwiseXor, token.PIPE) }
func (p *Parser) bitwiseXor() (ast.Expr, error) { return p.binaryLevel(p.bitwiseAnd, token.CARET) }
func (p *Parser) bitwiseAnd() (ast.Expr, error) { return p.binaryLevel(p.equality, token.AMP) }

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.comparison, token.EQ, token.NEQ, token.STRICT_EQ, token.STRICT_NEQ)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(p.shift, token.LT, token.LE, token.GT, token.GE, token.INSTANCEOF)
}

func (p *Parser) shift() (ast.Expr, error) {
	return p.binaryLevel(p.additive, token.SHL, token.SHR, token.USHR)
}

func (p *Parser) additive() (ast.Expr, error) {
	return p.binaryLevel(p.multiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	return p.binaryLevel(p.exponent, token.STAR, token.SLASH, token.PERCENT)
}

// exponent is right-associative, unlike every other binary level.
func (p *Parser) exponent() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	if p.isMatch(token.STARSTAR) {
		op := p.previous()
		right, err := p.exponent()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: left, Operator: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) binaryLevel(next func() (ast.Expr, error), kinds ...token.Kind) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.isMatch(kinds...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.isMatch(token.BANG, token.MINUS, token.TILDE, token.TYPEOF, token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: op, Right: right}, nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.callOrMember()
	if err != nil {
		return nil, err
	}
	if p.isMatch(token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		switch expr.(type) {
		case *ast.Variable, *ast.Member, *ast.Index:
		default:
			return nil, syntaxErrorf(op.Line, op.Column, "invalid postfix-operator target")
		}
		return &ast.Postfix{Operator: op, Left: expr}, nil
	}
	return expr, nil
}

func (p *Parser) callOrMember() (ast.Expr, error) {
	if p.isMatch(token.NEW) {
		return p.newExpression()
	}
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	return p.finishCallChain(expr)
}

func (p *Parser) finishCallChain(expr ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.isMatch(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Member{Object: expr, Name: name}
		case p.isMatch(token.LBRACKET):
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Object: expr, Key: key}
		case p.isMatch(token.LPAREN):
			args, err := p.argumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) argumentList() ([]ast.Expr, error) {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// newExpression parses `new Target(args)`, where Target is a dotted/indexed
// chain that stops before the first call parenthesis (those belong to the
// `new` expression itself, not an intermediate call).
func (p *Parser) newExpression() (ast.Expr, error) {
	callee, err := p.primary()
	if err != nil {
		return nil, err
	}
chainLoop:
	for {
		switch {
		case p.isMatch(token.DOT):
			name, err := p.consume(token.IDENTIFIER, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			callee = &ast.Member{Object: callee, Name: name}
		case p.isMatch(token.LBRACKET):
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			callee = &ast.Index{Object: callee, Key: key}
		default:
			break chainLoop
		}
	}

	if _, err := p.consume(token.LPAREN, "expected '(' after 'new' target"); err != nil {
		return nil, err
	}
	args, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	newExpr := &ast.New{Call: &ast.Call{Callee: callee, Args: args, IsNew: true}}
	return p.finishCallChain(newExpr)
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.isMatch(token.FALSE):
		return &ast.Literal{Value: false}, nil
	case p.isMatch(token.TRUE):
		return &ast.Literal{Value: true}, nil
	case p.isMatch(token.NULL, token.UNDEFINED):
		return &ast.Literal{Value: nil}, nil
	case p.isMatch(token.NUMBER, token.STRING):
		return &ast.Literal{Value: p.previous().Literal}, nil
	case p.isMatch(token.TEMPLATE):
		return p.templateString(p.previous())
	case p.isMatch(token.THIS):
		return &ast.This{Keyword: p.previous()}, nil
	case p.isMatch(token.SUPER):
		return &ast.Super{Keyword: p.previous()}, nil
	case p.check(token.IDENTIFIER) && p.peekAt(1).Kind == token.ARROW:
		param := p.advance()
		p.advance()
		return p.arrowBody([]string{param.Lexeme}, param.Line)
	case p.isMatch(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}, nil
	case p.isMatch(token.LPAREN):
		return p.parenOrArrow()
	case p.isMatch(token.LBRACKET):
		return p.arrayLiteral()
	case p.isMatch(token.LBRACE):
		return p.objectLiteral()
	case p.isMatch(token.FUNCTION):
		return p.functionLiteralExpr()
	case p.isMatch(token.CLASS):
		return p.classLiteralExpr()
	}
	cur := p.peek()
	return nil, syntaxErrorf(cur.Line, cur.Column, "unexpected token %s %q", cur.Kind, cur.Lexeme)
}

// parenOrArrow disambiguates `(expr)` grouping from `(params) => body` by
// speculatively parsing an arrow parameter list and backtracking if it
// isn't followed by '=>'.
func (p *Parser) parenOrArrow() (ast.Expr, error) {
	start := p.position
	if params, ok := p.tryArrowParams(); ok && p.isMatch(token.ARROW) {
		line := p.previous().Line
		return p.arrowBody(params, line)
	}
	p.position = start

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after expression"); err != nil {
		return nil, err
	}
	return &ast.Grouping{Expression: expr}, nil
}

func (p *Parser) tryArrowParams() ([]string, bool) {
	var params []string
	if p.check(token.RPAREN) {
		p.advance()
		return params, true
	}
	for {
		if !p.check(token.IDENTIFIER) {
			return nil, false
		}
		params = append(params, p.advance().Lexeme)
		if p.isMatch(token.COMMA) {
			continue
		}
		break
	}
	if !p.check(token.RPAREN) {
		return nil, false
	}
	p.advance()
	return params, true
}

func (p *Parser) arrowBody(params []string, line int) (ast.Expr, error) {
	if p.isMatch(token.LBRACE) {
		body, err := p.blockStatements()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionLiteral{Parameters: params, Body: body, Line: line}, nil
	}
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{
		Parameters: params,
		Body:       []ast.Stmt{&ast.Return{StmtBase: ast.NewLine(line), Value: value}},
		Line:       line,
	}, nil
}

func (p *Parser) arrayLiteral() (ast.Expr, error) {
	var elems []ast.Expr
	if !p.check(token.RBRACKET) {
		for {
			e, err := p.assignment()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.isMatch(token.COMMA) {
				break
			}
			if p.check(token.RBRACKET) {
				break
			}
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' to close array literal"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Elements: elems}, nil
}

func (p *Parser) objectLiteral() (ast.Expr, error) {
	var keys, values []ast.Expr
	if !p.check(token.RBRACE) {
		for {
			var key ast.Expr
			colonConsumed := false
			switch {
			case p.isMatch(token.LABEL):
				// `name:` with no space lexes as one LABEL token that
				// already includes the colon.
				key = &ast.Literal{Value: p.previous().Lexeme}
				colonConsumed = true
			case p.isMatch(token.STRING):
				key = &ast.Literal{Value: p.previous().Literal}
			case p.isMatch(token.IDENTIFIER):
				key = &ast.Literal{Value: p.previous().Lexeme}
			case p.isMatch(token.LBRACKET):
				k, err := p.expression()
				if err != nil {
					return nil, err
				}
				if _, err := p.consume(token.RBRACKET, "expected ']' after computed property key"); err != nil {
					return nil, err
				}
				key = k
			default:
				cur := p.peek()
				return nil, syntaxErrorf(cur.Line, cur.Column, "expected property key")
			}
			if !colonConsumed {
				if _, err := p.consume(token.COLON, "expected ':' after property key"); err != nil {
					return nil, err
				}
			}
			value, err := p.assignment()
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			values = append(values, value)
			if !p.isMatch(token.COMMA) {
				break
			}
			if p.check(token.RBRACE) {
				break
			}
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close object literal"); err != nil {
		return nil, err
	}
	return &ast.ObjectLiteral{Keys: keys, Values: values}, nil
}

func (p *Parser) functionLiteralExpr() (ast.Expr, error) {
	line := p.previous().Line
	name := ""
	if p.check(token.IDENTIFIER) {
		name = p.advance().Lexeme
	}
	return p.functionTail(name, line, false)
}

func (p *Parser) classLiteralExpr() (ast.Expr, error) {
	def, err := p.classBody(false)
	if err != nil {
		return nil, err
	}
	return &ast.ClassLiteral{Definition: def}, nil
}

// templateString splits a TEMPLATE token's raw interior into literal and
// embedded-expression parts, re-lexing and re-parsing each `${...}` span on
// its own. The lexer has already validated that every span's braces balance.
func (p *Parser) templateString(tok token.Token) (ast.Expr, error) {
	runes := []rune(tok.Lexeme)
	var parts []ast.TemplatePart
	var literal []rune

	flush := func() {
		if len(literal) > 0 {
			parts = append(parts, ast.TemplatePart{Literal: string(literal)})
			literal = nil
		}
	}

	i := 0
	for i < len(runes) {
		if runes[i] == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '`':
				literal = append(literal, '`')
			case '$':
				literal = append(literal, '$')
			case '\\':
				literal = append(literal, '\\')
			case 'n':
				literal = append(literal, '\n')
			case 't':
				literal = append(literal, '\t')
			default:
				literal = append(literal, runes[i+1])
			}
			i += 2
			continue
		}
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			flush()
			depth := 1
			j := i + 2
			for j < len(runes) {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := string(runes[i+2 : j])
			exprTokens, err := lexer.Tokenize(exprSrc)
			if err != nil {
				return nil, err
			}
			exprAST, err := New(exprTokens).expression()
			if err != nil {
				return nil, err
			}
			parts = append(parts, ast.TemplatePart{Expr: exprAST})
			i = j + 1
			continue
		}
		literal = append(literal, runes[i])
		i++
	}
	flush()
	return &ast.TemplateString{Parts: parts}, nil
}
