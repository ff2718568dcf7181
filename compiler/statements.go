package compiler

import (
	"fmt"

	"mildew/ast"
)

func (c *Compiler) VisitExpressionStmt(s *ast.ExpressionStmt) {
	c.compileExpr(s.Expression)
	c.chunk().emit(POP)
}

func (c *Compiler) VisitVarDecl(s *ast.VarDecl) {
	for _, decl := range s.Decls {
		var name string
		var line int
		var init ast.Expr
		switch d := decl.(type) {
		case *ast.Variable:
			name, line = d.Name.Lexeme, d.Name.Line
		case *ast.Assign:
			v := d.Target.(*ast.Variable)
			name, line, init = v.Name.Lexeme, v.Name.Line, d.Value
		default:
			panic(fmt.Sprintf("compiler: invalid declarator %T", decl))
		}
		c.declareOne(s.Qualifier, name, line, init)
	}
}

// declareOne implements the two binding regimes: `var`/function declarations
// are late-bound (name in the constant table, DECLARE_VAR/GET_VAR/SET_VAR),
// while `let`/`const` bindings get an absolute operand-stack slot
// (PUSH_STACK/STORE_STACK).
func (c *Compiler) declareOne(q ast.Qualifier, name string, line int, init ast.Expr) {
	fc := c.current()

	if q == ast.QualifierVar {
		idx := c.chunk().addNameConstant(name)
		c.chunk().emit(DECLARE_VAR, int(idx))
		if init != nil {
			c.compileExpr(init)
			c.chunk().emit(SET_VAR, int(idx))
			c.chunk().emit(POP)
		}
		return
	}

	if fc.declaredInCurrentScope(name) {
		panic(compileErrorf(line, "redeclaration of lexical binding %q in the same scope", name))
	}

	slot := fc.stackSlotCounter
	fc.stackSlotCounter++
	meta := &varMetadata{
		name: name, defined: false, stackLocation: slot,
		functionDepth: fc.functionDepth, isConstant: q == ast.QualifierConst,
	}

	if init != nil {
		c.compileExpr(init)
	} else {
		c.chunk().emit(PUSH_UNDEF)
	}

	if q == ast.QualifierConst {
		c.chunk().emit(DECL_CONST, slot)
	} else {
		c.chunk().emit(DECL_LEXICAL, slot)
	}
	meta.defined = true
	fc.declare(name, meta)
}

func (c *Compiler) VisitBlock(s *ast.Block) {
	c.current().pushScope()
	for _, stmt := range s.Statements {
		c.compileStmt(stmt)
	}
	c.current().popScope()
}

func (c *Compiler) VisitIf(s *ast.If) {
	c.compileExpr(s.Condition)
	jumpFalse := c.chunk().emitPlaceholderJump(JMP_FALSE, true)
	c.compileStmt(s.Then)
	if s.Else != nil {
		jumpEnd := c.chunk().emitPlaceholderJump(JMP, true)
		c.chunk().patchHere(jumpFalse)
		c.compileStmt(s.Else)
		c.chunk().patchHere(jumpEnd)
	} else {
		c.chunk().patchHere(jumpFalse)
	}
}

func (c *Compiler) VisitWhile(s *ast.While) {
	fc := c.current()
	loopStart := len(c.chunk().Instructions)
	lc := fc.pushLoop(s.Label, false)
	lc.continueTarget = loopStart

	c.compileExpr(s.Condition)
	jumpFalse := c.chunk().emitPlaceholderJump(JMP_FALSE, true)
	c.compileStmt(s.Body)
	c.chunk().emit(JMP, loopStart-(len(c.chunk().Instructions)+5))
	c.chunk().patchHere(jumpFalse)

	c.resolveLoopPatches(lc, loopStart, len(c.chunk().Instructions))
	fc.popLoop()
}

func (c *Compiler) VisitDoWhile(s *ast.DoWhile) {
	fc := c.current()
	bodyStart := len(c.chunk().Instructions)
	lc := fc.pushLoop(s.Label, false)

	c.compileStmt(s.Body)
	continueTarget := len(c.chunk().Instructions)
	lc.continueTarget = continueTarget
	c.compileExpr(s.Condition)
	c.chunk().emit(NOT)
	c.chunk().emit(JMP_FALSE, bodyStart-(len(c.chunk().Instructions)+5))

	c.resolveLoopPatches(lc, continueTarget, len(c.chunk().Instructions))
	fc.popLoop()
}

func (c *Compiler) VisitFor(s *ast.For) {
	fc := c.current()
	fc.pushScope()
	if s.Init != nil {
		c.compileStmt(s.Init)
	}

	loopStart := len(c.chunk().Instructions)
	lc := fc.pushLoop(s.Label, false)

	var jumpFalse PatchHandle
	hasCondition := s.Condition != nil
	if hasCondition {
		c.compileExpr(s.Condition)
		jumpFalse = c.chunk().emitPlaceholderJump(JMP_FALSE, true)
	}

	c.compileStmt(s.Body)

	continueTarget := len(c.chunk().Instructions)
	lc.continueTarget = continueTarget
	if s.Post != nil {
		c.compileExpr(s.Post)
		c.chunk().emit(POP)
	}
	c.chunk().emit(JMP, loopStart-(len(c.chunk().Instructions)+5))

	if hasCondition {
		c.chunk().patchHere(jumpFalse)
	}

	c.resolveLoopPatches(lc, continueTarget, len(c.chunk().Instructions))
	fc.popLoop()
	fc.popScope()
}

// resolveLoopPatches patches every pending break/continue collected for lc:
// breaks target loopEnd, continues target continueTarget, and each
// scope-pop-count is the number of scopes open at the break/continue site
// minus the scopes open at loop entry.
func (c *Compiler) resolveLoopPatches(lc *loopContext, continueTarget, loopEnd int) {
	for _, p := range lc.pending {
		target := loopEnd
		if p.isContinue {
			target = continueTarget
		}
		popCount := p.depth - lc.depthAtEntry
		c.chunk().patchGoto(p.goTo, target, popCount)
	}
}

func (c *Compiler) VisitForOf(s *ast.ForOf) {
	fc := c.current()
	fc.pushScope()

	c.compileExpr(s.Object)
	c.chunk().emit(ITER)
	iterSlot := fc.stackSlotCounter
	fc.stackSlotCounter++
	fc.declare("@iter", &varMetadata{name: "@iter", defined: true, stackLocation: iterSlot, functionDepth: fc.functionDepth})
	c.chunk().emit(DECL_LEXICAL, iterSlot)

	loopStart := len(c.chunk().Instructions)
	lc := fc.pushLoop(s.Label, false)
	lc.continueTarget = loopStart

	c.chunk().emit(PUSH_STACK, iterSlot)
	idx := c.chunk().addConstant("next")
	c.chunk().emit(CONST, int(idx))
	c.chunk().emit(GET_INDEX)
	c.chunk().emit(CALL, 0)
	resultSlot := fc.stackSlotCounter
	fc.stackSlotCounter++
	fc.declare("@result", &varMetadata{name: "@result", defined: true, stackLocation: resultSlot, functionDepth: fc.functionDepth})
	c.chunk().emit(DECL_LEXICAL, resultSlot)

	c.chunk().emit(PUSH_STACK, resultSlot)
	doneIdx := c.chunk().addConstant("done")
	c.chunk().emit(CONST, int(doneIdx))
	c.chunk().emit(GET_INDEX)
	jumpDone := c.chunk().emitPlaceholderJump(JMP_FALSE, true)
	jumpExit := c.chunk().emitPlaceholderJump(JMP, true)
	c.chunk().patchHere(jumpDone)

	fc.pushScope()
	if s.KeyName != "" {
		c.declareForOfBinding(s.Qualifier, s.KeyName, resultSlot, "key")
	}
	c.declareForOfBinding(s.Qualifier, s.ValueName, resultSlot, "value")
	c.compileStmt(s.Body)
	fc.popScope()

	c.chunk().emit(JMP, loopStart-(len(c.chunk().Instructions)+5))
	c.chunk().patchHere(jumpExit)

	c.resolveLoopPatches(lc, loopStart, len(c.chunk().Instructions))
	fc.popLoop()

	c.chunk().emit(POP_N, 2)
	fc.popScope()
}

func (c *Compiler) declareForOfBinding(q ast.Qualifier, name string, resultSlot int, field string) {
	fc := c.current()
	c.chunk().emit(PUSH_STACK, resultSlot)
	idx := c.chunk().addConstant(field)
	c.chunk().emit(CONST, int(idx))
	c.chunk().emit(GET_INDEX)
	slot := fc.stackSlotCounter
	fc.stackSlotCounter++
	fc.declare(name, &varMetadata{name: name, defined: true, stackLocation: slot, functionDepth: fc.functionDepth, isConstant: q == ast.QualifierConst})
	if q == ast.QualifierConst {
		c.chunk().emit(DECL_CONST, slot)
	} else {
		c.chunk().emit(DECL_LEXICAL, slot)
	}
}

func (c *Compiler) VisitBreak(s *ast.Break) {
	c.emitGotoFor(s.Label, false, s.SrcLine)
}

func (c *Compiler) VisitContinue(s *ast.Continue) {
	c.emitGotoFor(s.Label, true, s.SrcLine)
}

func (c *Compiler) emitGotoFor(label string, isContinue bool, line int) {
	fc := c.current()
	lc := fc.findLoopForLabel(label, isContinue)
	if lc == nil {
		word := "break"
		if isContinue {
			word = "continue"
		}
		panic(compileErrorf(line, "%s to unknown label %q", word, label))
	}
	g := c.chunk().emitGoto()
	lc.pending = append(lc.pending, breakContinuePatch{
		label: label, isContinue: isContinue, goTo: g, depth: fc.depth(),
	})
}

func (c *Compiler) VisitReturn(s *ast.Return) {
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else {
		c.chunk().emit(PUSH_UNDEF)
	}
	c.chunk().emit(RETURN)
}

func (c *Compiler) VisitThrow(s *ast.Throw) {
	c.compileExpr(s.Value)
	c.chunk().emit(THROW)
}

func (c *Compiler) VisitTry(s *ast.Try) {
	catchTarget := c.chunk().emitPlaceholderJump(TRY, false)

	for _, stmt := range s.Body {
		c.compileStmt(stmt)
	}
	c.chunk().emit(END_TRY)
	overCatch := c.chunk().emitPlaceholderJump(JMP, true)
	c.chunk().patchHere(catchTarget)

	fc := c.current()
	fc.pushScope()
	if s.HasCatch {
		c.chunk().emit(LOAD_EXCEPTION)
		if s.CatchName != "" {
			slot := fc.stackSlotCounter
			fc.stackSlotCounter++
			fc.declare(s.CatchName, &varMetadata{name: s.CatchName, defined: true, stackLocation: slot, functionDepth: fc.functionDepth})
			c.chunk().emit(DECL_LEXICAL, slot)
		} else {
			c.chunk().emit(POP)
		}
		for _, stmt := range s.CatchBody {
			c.compileStmt(stmt)
		}
	} else {
		c.chunk().emit(LOAD_EXCEPTION)
		c.chunk().emit(POP)
	}
	fc.popScope()
	c.chunk().patchHere(overCatch)

	if s.FinallyBody != nil {
		for _, stmt := range s.FinallyBody {
			c.compileStmt(stmt)
		}
	}
	if !s.HasCatch && s.FinallyBody != nil {
		c.chunk().emit(RETHROW)
	}
}

func (c *Compiler) VisitDelete(s *ast.Delete) {
	switch t := s.Target.(type) {
	case *ast.Member:
		c.compileExpr(t.Object)
		idx := c.chunk().addConstant(t.Name.Lexeme)
		c.chunk().emit(CONST, int(idx))
	case *ast.Index:
		c.compileExpr(t.Object)
		c.compileExpr(t.Key)
	default:
		panic(compileErrorf(s.SrcLine, "delete target must be a member or index expression"))
	}
	c.chunk().emit(DELETE)
}

func (c *Compiler) VisitFunctionDecl(s *ast.FunctionDecl) {
	c.declareOne(ast.QualifierVar, s.Name, s.SrcLine, s.Literal)
}

func (c *Compiler) VisitClassDecl(s *ast.ClassDecl) {
	c.compileClass(s.Definition)
	fc := c.current()
	if fc.declaredInCurrentScope(s.Definition.Name) {
		panic(compileErrorf(s.SrcLine, "redeclaration of lexical binding %q in the same scope", s.Definition.Name))
	}
	slot := fc.stackSlotCounter
	fc.stackSlotCounter++
	fc.declare(s.Definition.Name, &varMetadata{name: s.Definition.Name, defined: true, stackLocation: slot, functionDepth: fc.functionDepth})
	c.chunk().emit(DECL_LEXICAL, slot)
}
