// Package compiler turns a Mildew AST into a Chunk: bytecode, a constant
// table, and a debug line map. It implements ast.ExprVisitor and
// ast.StmtVisitor, emitting bytecode as a side effect of the walk instead of
// threading a return value through the tree.
package compiler

import (
	"fmt"

	"mildew/ast"
	"mildew/parser"
	"mildew/token"
)

// Compiler walks an AST and emits bytecode into a stack of per-function
// contexts. It is single-threaded and non-reentrant: one instance compiles
// one source string at a time, via Compile.
type Compiler struct {
	contexts       []*funcContext
	baseClasses    []ast.Expr
	functionDepth  int
}

// Compile lexes, parses, and compiles source into a Chunk. It is the sole
// public entry point, matching the external-interface contract.
func Compile(source string) (chunk *Chunk, err error) {
	stmts, errs := parser.Parse(source)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	c := &Compiler{}
	c.contexts = append(c.contexts, newFuncContext(0))
	// The top level has a lexical scope of its own for let/const/class
	// bindings; it emits no OPEN_SCOPE/CLOSE_SCOPE.
	c.current().scopes = append(c.current().scopes, newLexicalScope())

	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(CompileError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	for _, stmt := range stmts {
		c.compileStmt(stmt)
	}

	root := c.current()
	for _, lc := range root.loops {
		if len(lc.pending) > 0 {
			panic(compileErrorf(0, "unresolved break/continue at end of function"))
		}
	}

	return root.chunk, nil
}

func (c *Compiler) current() *funcContext {
	return c.contexts[len(c.contexts)-1]
}

func (c *Compiler) chunk() *Chunk {
	return c.current().chunk
}

// compileStmt records debug info for stmt, then dispatches to its Accept.
func (c *Compiler) compileStmt(s ast.Stmt) {
	c.chunk().recordLine(s.Line())
	s.Accept(c)
}

func (c *Compiler) compileExpr(e ast.Expr) {
	e.Accept(c)
}

// ---- Literal & aggregate expressions ----

func (c *Compiler) VisitLiteral(e *ast.Literal) {
	switch v := e.Value.(type) {
	case int64:
		switch v {
		case 0:
			c.chunk().emit(PUSH_ZERO)
			return
		case 1:
			c.chunk().emit(PUSH_ONE)
			return
		}
	case nil:
		c.chunk().emit(PUSH_UNDEF)
		return
	}
	idx := c.chunk().addConstant(e.Value)
	c.chunk().emit(CONST, int(idx))
}

func (c *Compiler) VisitTemplateString(e *ast.TemplateString) {
	for _, part := range e.Parts {
		if part.Expr != nil {
			c.compileExpr(part.Expr)
			continue
		}
		idx := c.chunk().addConstant(part.Literal)
		c.chunk().emit(CONST, int(idx))
	}
	c.chunk().emit(CONCAT, len(e.Parts))
}

func (c *Compiler) VisitArrayLiteral(e *ast.ArrayLiteral) {
	for _, elem := range e.Elements {
		c.compileExpr(elem)
	}
	c.chunk().emit(ARRAY, len(e.Elements))
}

func (c *Compiler) VisitObjectLiteral(e *ast.ObjectLiteral) {
	for i := range e.Keys {
		c.compileExpr(e.Keys[i])
		c.compileExpr(e.Values[i])
	}
	c.chunk().emit(OBJECT, len(e.Keys))
}

func (c *Compiler) VisitGrouping(e *ast.Grouping) {
	c.compileExpr(e.Expression)
}

// ---- Operators ----

func (c *Compiler) VisitBinary(e *ast.Binary) {
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	c.chunk().emit(binaryOpcode(e.Operator.Kind))
	if e.Operator.Kind == token.STRICT_NEQ {
		c.chunk().emit(NOT)
	}
}

func binaryOpcode(k token.Kind) Opcode {
	switch k {
	case token.STARSTAR:
		return POW
	case token.STAR:
		return MUL
	case token.SLASH:
		return DIV
	case token.PERCENT:
		return MOD
	case token.PLUS:
		return ADD
	case token.MINUS:
		return SUB
	case token.SHL:
		return BIT_LSHIFT
	case token.SHR:
		return BIT_RSHIFT
	case token.USHR:
		return BIT_URSHIFT
	case token.AMP:
		return BIT_AND
	case token.PIPE:
		return BIT_OR
	case token.CARET:
		return BIT_XOR
	case token.LT:
		return LT
	case token.LE:
		return LE
	case token.GT:
		return GT
	case token.GE:
		return GE
	case token.EQ:
		return EQ
	case token.NEQ:
		return NEQ
	case token.STRICT_EQ, token.STRICT_NEQ:
		return STRICT_EQ
	case token.INSTANCEOF:
		return INSTANCEOF
	}
	panic(fmt.Sprintf("compiler: unhandled binary operator %s", k))
}

func (c *Compiler) VisitUnary(e *ast.Unary) {
	switch e.Operator.Kind {
	case token.PLUS_PLUS, token.MINUS_MINUS:
		op := token.PLUS
		if e.Operator.Kind == token.MINUS_MINUS {
			op = token.MINUS
		}
		c.compileCompoundAssign(e.Right, op)
		return
	case token.TYPEOF:
		c.compileExpr(e.Right)
		c.chunk().emit(TYPEOF)
		return
	}
	c.compileExpr(e.Right)
	switch e.Operator.Kind {
	case token.MINUS:
		c.chunk().emit(NEG)
	case token.BANG:
		c.chunk().emit(NOT)
	case token.TILDE:
		c.chunk().emit(BIT_NOT)
	default:
		panic(fmt.Sprintf("compiler: unhandled unary operator %s", e.Operator.Kind))
	}
}

func (c *Compiler) VisitPostfix(e *ast.Postfix) {
	c.compileExpr(e.Left)
	op := token.PLUS
	if e.Operator.Kind == token.MINUS_MINUS {
		op = token.MINUS
	}
	c.compileCompoundAssign(e.Left, op)
	c.chunk().emit(POP)
}

func (c *Compiler) VisitTernary(e *ast.Ternary) {
	c.compileExpr(e.Condition)
	c.compileExpr(e.Then)
	c.compileExpr(e.Else)
	c.chunk().emit(TERN)
}

func (c *Compiler) VisitLogical(e *ast.Logical) {
	c.compileExpr(e.Left)
	switch e.Operator.Kind {
	case token.OR_OR:
		jumpIfFalse := c.chunk().emitPlaceholderJump(JMP_FALSE, true)
		jumpEnd := c.chunk().emitPlaceholderJump(JMP, true)
		c.chunk().patchHere(jumpIfFalse)
		c.chunk().emit(POP)
		c.compileExpr(e.Right)
		c.chunk().patchHere(jumpEnd)
	case token.AND_AND:
		jumpIfFalse := c.chunk().emitPlaceholderJump(JMP_FALSE, true)
		c.chunk().emit(POP)
		c.compileExpr(e.Right)
		c.chunk().patchHere(jumpIfFalse)
	default:
		panic(fmt.Sprintf("compiler: unhandled logical operator %s", e.Operator.Kind))
	}
}

// ---- Variables & assignment ----

func (c *Compiler) VisitVariable(e *ast.Variable) {
	c.emitVariableLoad(e.Name.Lexeme, e.Name.Line)
}

func (c *Compiler) emitVariableLoad(name string, line int) {
	if meta, ok := c.current().resolve(name); ok {
		c.chunk().emit(PUSH_STACK, meta.stackLocation)
		return
	}
	idx := c.chunk().addNameConstant(name)
	c.chunk().emit(GET_VAR, int(idx))
}

func (c *Compiler) VisitAssign(e *ast.Assign) {
	if e.Operator.Kind != token.ASSIGN {
		op, _ := e.Operator.CompoundOperator()
		c.compileCompoundWithRHS(e.Target, op, e.Value)
		return
	}

	switch t := e.Target.(type) {
	case *ast.Variable:
		c.compileExpr(e.Value)
		c.storeTo(t)
	case *ast.Member:
		c.compileExpr(t.Object)
		idx := c.chunk().addConstant(t.Name.Lexeme)
		c.chunk().emit(CONST, int(idx))
		c.compileExpr(e.Value)
		c.chunk().emit(SET_INDEX)
	case *ast.Index:
		c.compileExpr(t.Object)
		c.compileExpr(t.Key)
		c.compileExpr(e.Value)
		c.chunk().emit(SET_INDEX)
	default:
		panic(fmt.Sprintf("compiler: invalid assignment target %T", e.Target))
	}
}

// storeTo emits the variable-assignment half of an assignment: it assumes
// the value to store is already on top of the stack. Member/Index targets
// are handled directly in VisitAssign/compileCompoundWithRHS since SET_INDEX
// needs obj and key emitted before the value.
func (c *Compiler) storeTo(target *ast.Variable) {
	name := target.Name.Lexeme
	if meta, ok := c.current().resolve(name); ok {
		if meta.isConstant {
			panic(compileErrorf(target.Name.Line, "assignment to constant %q", name))
		}
		c.chunk().emit(STORE_STACK, meta.stackLocation)
		return
	}
	idx := c.chunk().addNameConstant(name)
	c.chunk().emit(SET_VAR, int(idx))
}

// compileCompoundAssign rewrites `target op= value`/`target++` into
// `target = target op 1-or-value` at emit time, per the spec's emit-time
// reduction (no dedicated compound opcodes).
func (c *Compiler) compileCompoundAssign(target ast.Expr, op token.Kind) {
	c.compileCompoundWithRHS(target, op, nil)
}

// compileCompoundWithRHS reduces `target op= rhs` (rhs nil means the
// increment/decrement literal 1) to `target = target op rhs` without
// re-evaluating any subexpression of target more than once: obj/key
// expressions for member/index targets are evaluated a single time and
// duplicated via PUSH_STACK -2 relative addressing on the operand stack, so
// SET_INDEX receives obj, key, then the new value.
func (c *Compiler) compileCompoundWithRHS(target ast.Expr, op token.Kind, rhs ast.Expr) {
	switch t := target.(type) {
	case *ast.Variable:
		c.emitVariableLoad(t.Name.Lexeme, t.Name.Line)
		c.emitRHS(rhs)
		c.chunk().emit(binaryOpcode(op))
		c.storeTo(t)
	case *ast.Member:
		c.compileExpr(t.Object)
		idx := c.chunk().addConstant(t.Name.Lexeme)
		c.chunk().emit(CONST, int(idx))
		c.chunk().emit(PUSH_STACK, -2)
		c.chunk().emit(PUSH_STACK, -2)
		c.chunk().emit(GET_INDEX)
		c.emitRHS(rhs)
		c.chunk().emit(binaryOpcode(op))
		c.chunk().emit(SET_INDEX)
	case *ast.Index:
		c.compileExpr(t.Object)
		c.compileExpr(t.Key)
		c.chunk().emit(PUSH_STACK, -2)
		c.chunk().emit(PUSH_STACK, -2)
		c.chunk().emit(GET_INDEX)
		c.emitRHS(rhs)
		c.chunk().emit(binaryOpcode(op))
		c.chunk().emit(SET_INDEX)
	default:
		panic(fmt.Sprintf("compiler: invalid compound-assignment target %T", target))
	}
}

func (c *Compiler) emitRHS(rhs ast.Expr) {
	if rhs == nil {
		c.chunk().emit(PUSH_ONE)
		return
	}
	c.compileExpr(rhs)
}

// ---- Calls, new, super, this, member/index ----

func (c *Compiler) VisitCall(e *ast.Call) {
	switch callee := e.Callee.(type) {
	case *ast.Member:
		c.compileExpr(callee.Object)
		c.chunk().emit(PUSH_STACK, -1)
		idx := c.chunk().addConstant(callee.Name.Lexeme)
		c.chunk().emit(CONST, int(idx))
		c.chunk().emit(GET_INDEX)
	case *ast.Index:
		c.compileExpr(callee.Object)
		c.chunk().emit(PUSH_STACK, -1)
		c.compileExpr(callee.Key)
		c.chunk().emit(GET_INDEX)
	case *ast.Super:
		if len(c.baseClasses) == 0 {
			panic(compileErrorf(callee.Keyword.Line, "'super' call outside derived class constructor"))
		}
		c.chunk().emit(THIS)
		c.compileExpr(c.baseClasses[len(c.baseClasses)-1])
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		c.chunk().emit(CALL, len(e.Args))
		return
	default:
		c.chunk().emit(THIS)
		c.compileExpr(e.Callee)
	}
	for _, a := range e.Args {
		c.compileExpr(a)
	}
	c.chunk().emit(CALL, len(e.Args))
}

func (c *Compiler) VisitNew(e *ast.New) {
	c.compileExpr(e.Call.Callee)
	for _, a := range e.Call.Args {
		c.compileExpr(a)
	}
	c.chunk().emit(NEW, len(e.Call.Args))
}

func (c *Compiler) VisitIndex(e *ast.Index) {
	c.compileExpr(e.Object)
	c.compileExpr(e.Key)
	c.chunk().emit(GET_INDEX)
}

func (c *Compiler) VisitMember(e *ast.Member) {
	c.compileExpr(e.Object)
	idx := c.chunk().addConstant(e.Name.Lexeme)
	c.chunk().emit(CONST, int(idx))
	c.chunk().emit(GET_INDEX)
}

func (c *Compiler) VisitSuper(e *ast.Super) {
	if len(c.baseClasses) == 0 {
		panic(compileErrorf(e.Keyword.Line, "'super' reference outside derived class"))
	}
	c.compileExpr(c.baseClasses[len(c.baseClasses)-1])
}

func (c *Compiler) VisitThis(e *ast.This) {
	c.chunk().emit(THIS)
}

// ---- Function literals ----

func (c *Compiler) VisitFunctionLiteral(e *ast.FunctionLiteral) {
	c.functionDepth++
	fc := newFuncContext(c.functionDepth)
	c.contexts = append(c.contexts, fc)

	fc.pushScope()
	for i, p := range e.Parameters {
		fc.declare(p, &varMetadata{name: p, defined: true, stackLocation: fc.stackSlotCounter, functionDepth: fc.functionDepth})
		fc.stackSlotCounter++
		_ = i
	}
	for _, stmt := range e.Body {
		c.compileStmt(stmt)
	}
	fc.popScope()

	for _, lc := range fc.loops {
		if len(lc.pending) > 0 {
			panic(compileErrorf(e.Line, "unresolved break/continue at end of function %q", e.Name))
		}
	}

	fc.chunk.emit(PUSH_UNDEF)
	fc.chunk.emit(RETURN)

	c.contexts = c.contexts[:len(c.contexts)-1]
	c.functionDepth--

	fn := &FunctionValue{Name: e.Name, Parameters: e.Parameters, Body: fc.chunk, IsClass: e.IsClass}
	idx := c.chunk().addConstant(fn)
	c.chunk().emit(CONST, int(idx))
}
