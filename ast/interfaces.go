// Package ast defines the Mildew abstract syntax tree: expression and
// statement node types, and the visitor interfaces the compiler implements
// to walk them.
package ast

// ExprVisitor operates on every expression node kind. Unlike a
// dynamic-tagged-return visitor, every Visit method returns no value: the
// compiler that implements this interface emits bytecode as a side effect
// instead of threading a return value through the tree.
type ExprVisitor interface {
	VisitLiteral(e *Literal)
	VisitTemplateString(e *TemplateString)
	VisitArrayLiteral(e *ArrayLiteral)
	VisitObjectLiteral(e *ObjectLiteral)
	VisitClassLiteral(e *ClassLiteral)
	VisitBinary(e *Binary)
	VisitUnary(e *Unary)
	VisitPostfix(e *Postfix)
	VisitTernary(e *Ternary)
	VisitVariable(e *Variable)
	VisitAssign(e *Assign)
	VisitLogical(e *Logical)
	VisitCall(e *Call)
	VisitIndex(e *Index)
	VisitMember(e *Member)
	VisitNew(e *New)
	VisitFunctionLiteral(e *FunctionLiteral)
	VisitSuper(e *Super)
	VisitThis(e *This)
	VisitGrouping(e *Grouping)
}

// StmtVisitor operates on every statement node kind. Like ExprVisitor, every
// Visit method returns no value.
type StmtVisitor interface {
	VisitExpressionStmt(s *ExpressionStmt)
	VisitVarDecl(s *VarDecl)
	VisitBlock(s *Block)
	VisitIf(s *If)
	VisitSwitch(s *Switch)
	VisitWhile(s *While)
	VisitDoWhile(s *DoWhile)
	VisitFor(s *For)
	VisitForOf(s *ForOf)
	VisitBreak(s *Break)
	VisitContinue(s *Continue)
	VisitReturn(s *Return)
	VisitThrow(s *Throw)
	VisitTry(s *Try)
	VisitDelete(s *Delete)
	VisitFunctionDecl(s *FunctionDecl)
	VisitClassDecl(s *ClassDecl)
}

// Expr is the base interface for all expression nodes.
type Expr interface {
	Accept(v ExprVisitor)
}

// Stmt is the base interface for all statement nodes. Every statement
// carries the source line it begins on, so the compiler can record
// per-statement debug info before emitting it.
type Stmt interface {
	Accept(v StmtVisitor)
	Line() int
}

// StmtBase centralizes the Line() accessor; concrete statement types embed
// it and set SrcLine at construction. Exported so other packages (the
// parser) can set it directly in a composite literal.
type StmtBase struct {
	SrcLine int
}

func (b StmtBase) Line() int { return b.SrcLine }

// NewLine builds a StmtBase carrying line, for use in statement-node
// composite literals.
func NewLine(line int) StmtBase { return StmtBase{SrcLine: line} }
