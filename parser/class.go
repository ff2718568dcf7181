package parser

import (
	"mildew/ast"
	"mildew/token"
)

// classBody parses the body of a class declaration or class expression; the
// `class` keyword itself has already been consumed by the caller.
func (p *Parser) classBody(requireName bool) (*ast.ClassDefinition, error) {
	line := p.previous().Line
	name := ""
	if p.check(token.IDENTIFIER) {
		name = p.advance().Lexeme
	} else if requireName {
		cur := p.peek()
		return nil, syntaxErrorf(cur.Line, cur.Column, "expected class name")
	}

	var base ast.Expr
	if p.isMatch(token.EXTENDS) {
		b, err := p.callOrMember()
		if err != nil {
			return nil, err
		}
		base = b
	}

	if _, err := p.consume(token.LBRACE, "expected '{' to open class body"); err != nil {
		return nil, err
	}

	def := &ast.ClassDefinition{Name: name, BaseClass: base}
	for !p.check(token.RBRACE) && !p.isFinished() {
		if err := p.classMember(def); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close class body"); err != nil {
		return nil, err
	}

	if def.Constructor == nil {
		def.Constructor = synthesizeConstructor(base, line)
	}

	return def, nil
}

// synthesizeConstructor builds the implicit constructor a class body without
// one still needs, matching the ClassDefinition invariant that Constructor
// is never nil. A derived class's implicit constructor forwards no
// arguments to its base — this grammar has no rest parameter to collect
// them with — so it still satisfies "exactly one super() call" for classes
// that rely on the base class taking no constructor arguments.
func synthesizeConstructor(base ast.Expr, line int) *ast.FunctionLiteral {
	var body []ast.Stmt
	if base != nil {
		body = []ast.Stmt{
			&ast.ExpressionStmt{StmtBase: ast.NewLine(line), Expression: &ast.Call{
				Callee: &ast.Super{Keyword: token.Token{Kind: token.SUPER, Lexeme: "super", Line: line}},
			}},
		}
	}
	return &ast.FunctionLiteral{Name: "constructor", Body: body, IsClass: true, Line: line}
}

// classMember parses one constructor/method/getter/setter/static entry.
// `static`, `get`, and `set` are contextual keywords: each is only treated
// as a modifier when it isn't itself the member name (i.e. isn't
// immediately followed by '(').
func (p *Parser) classMember(def *ast.ClassDefinition) error {
	isStatic := false
	if p.check(token.IDENTIFIER) && p.peek().Lexeme == "static" && p.peekAt(1).Kind != token.LPAREN {
		p.advance()
		isStatic = true
	}

	kind := "method"
	switch {
	case p.check(token.IDENTIFIER) && p.peek().Lexeme == "get" && p.peekAt(1).Kind != token.LPAREN:
		p.advance()
		kind = "get"
	case p.check(token.IDENTIFIER) && p.peek().Lexeme == "set" && p.peekAt(1).Kind != token.LPAREN:
		p.advance()
		kind = "set"
	}

	nameTok, err := p.consume(token.IDENTIFIER, "expected member name")
	if err != nil {
		return err
	}
	fn, err := p.functionTail(nameTok.Lexeme, nameTok.Line, true)
	if err != nil {
		return err
	}

	switch {
	case nameTok.Lexeme == "constructor" && !isStatic && kind == "method":
		def.Constructor = fn
	case kind == "get":
		def.GetterNames = append(def.GetterNames, nameTok.Lexeme)
		def.Getters = append(def.Getters, fn)
	case kind == "set":
		def.SetterNames = append(def.SetterNames, nameTok.Lexeme)
		def.Setters = append(def.Setters, fn)
	case isStatic:
		def.StaticNames = append(def.StaticNames, nameTok.Lexeme)
		def.Statics = append(def.Statics, fn)
	default:
		def.MethodNames = append(def.MethodNames, nameTok.Lexeme)
		def.Methods = append(def.Methods, fn)
	}
	return nil
}
