// expressions.go contains all the expression AST nodes. An expression node
// always evaluates to a value.

package ast

import "mildew/token"

// Literal represents a literal value in the source code (number, string,
// boolean, null, or undefined).
type Literal struct {
	Value any
}

func (e *Literal) Accept(v ExprVisitor) { v.VisitLiteral(e) }

// TemplatePart is one piece of a template string: either raw literal text
// (Expr is nil) or an embedded expression re-lexed from the template's
// interior.
type TemplatePart struct {
	Literal string
	Expr    Expr
}

// TemplateString represents a back-tick delimited template string as a
// sequence of literal and embedded-expression parts.
type TemplateString struct {
	Parts []TemplatePart
}

func (e *TemplateString) Accept(v ExprVisitor) { v.VisitTemplateString(e) }

// ArrayLiteral represents `[a, b, c]`.
type ArrayLiteral struct {
	Elements []Expr
}

func (e *ArrayLiteral) Accept(v ExprVisitor) { v.VisitArrayLiteral(e) }

// ObjectLiteral represents `{k1: v1, k2: v2}` as parallel key/value
// vectors.
type ObjectLiteral struct {
	Keys   []Expr
	Values []Expr
}

func (e *ObjectLiteral) Accept(v ExprVisitor) { v.VisitObjectLiteral(e) }

// ClassLiteral represents a class expression; its fields mirror
// ClassDefinition so declaration and expression positions share one shape.
type ClassLiteral struct {
	Definition *ClassDefinition
}

func (e *ClassLiteral) Accept(v ExprVisitor) { v.VisitClassLiteral(e) }

// Binary represents a binary operation expression (e.g., "a + b").
type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (e *Binary) Accept(v ExprVisitor) { v.VisitBinary(e) }

// Unary represents a prefix unary operation (e.g., "!a", "-b", "++a").
type Unary struct {
	Operator token.Token
	Right    Expr
}

func (e *Unary) Accept(v ExprVisitor) { v.VisitUnary(e) }

// Postfix represents a postfix operation (e.g., "a++", "a--").
type Postfix struct {
	Operator token.Token
	Left     Expr
}

func (e *Postfix) Accept(v ExprVisitor) { v.VisitPostfix(e) }

// Ternary represents `cond ? then : else`.
type Ternary struct {
	Condition Expr
	Then      Expr
	Else      Expr
}

func (e *Ternary) Accept(v ExprVisitor) { v.VisitTernary(e) }

// Grouping represents a parenthesized expression.
type Grouping struct {
	Expression Expr
}

func (e *Grouping) Accept(v ExprVisitor) { v.VisitGrouping(e) }

// Variable represents the retrieval of a value bound to a name.
type Variable struct {
	Name token.Token
}

func (e *Variable) Accept(v ExprVisitor) { v.VisitVariable(e) }

// Assign represents assigning Value to Target, where Target is a Variable,
// Index, or Member expression.
type Assign struct {
	Target   Expr
	Operator token.Token // ASSIGN or a compound-assignment kind
	Value    Expr
}

func (e *Assign) Accept(v ExprVisitor) { v.VisitAssign(e) }

// Logical represents `&&` or `||`, which short-circuit and so cannot be
// modeled as a plain Binary.
type Logical struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (e *Logical) Accept(v ExprVisitor) { v.VisitLogical(e) }

// Call represents a function call, optionally flagged as a `new` call site.
type Call struct {
	Callee Expr
	Args   []Expr
	IsNew  bool
}

func (e *Call) Accept(v ExprVisitor) { v.VisitCall(e) }

// Index represents `obj[key]`.
type Index struct {
	Object Expr
	Key    Expr
}

func (e *Index) Accept(v ExprVisitor) { v.VisitIndex(e) }

// Member represents `obj.name`.
type Member struct {
	Object Expr
	Name   token.Token
}

func (e *Member) Accept(v ExprVisitor) { v.VisitMember(e) }

// New wraps a Call with IsNew set to true; it exists as a distinct node so
// the parser can build it directly from the `new` keyword.
type New struct {
	Call *Call
}

func (e *New) Accept(v ExprVisitor) { v.VisitNew(e) }

// FunctionLiteral represents a function expression or the function half of
// a function/method declaration.
type FunctionLiteral struct {
	Name       string // empty for anonymous functions
	Parameters []string
	Body       []Stmt
	IsClass    bool // true when this literal is a class method/constructor
	Line       int
}

func (e *FunctionLiteral) Accept(v ExprVisitor) { v.VisitFunctionLiteral(e) }

// Super represents a `super` reference, either as `super(args)` (handled by
// wrapping in Call with Callee set to Super) or `super.m`.
type Super struct {
	Keyword token.Token
}

func (e *Super) Accept(v ExprVisitor) { v.VisitSuper(e) }

// This represents the `this` keyword.
type This struct {
	Keyword token.Token
}

func (e *This) Accept(v ExprVisitor) { v.VisitThis(e) }
