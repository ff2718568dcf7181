package compiler

import "mildew/ast"

// VisitSwitch builds the case table as a runtime array value rather than an
// out-of-band constant: each case becomes a [key, target] pair assembled
// with CONST <key>, CONST <target placeholder>, ARRAY 2, and every pair is
// then packed into one array with ARRAY <n-cases>. The discriminant is
// pushed next, and SWITCH carries the default branch's absolute byte offset
// directly as its operand. Targets and the default are reserved as
// placeholders and patched once the shared statement body has been emitted,
// so every case so labels a point to fall into, not a separate block.
func (c *Compiler) VisitSwitch(s *ast.Switch) {
	targets := make([]constPatchHandle, len(s.Cases))
	for i, cs := range s.Cases {
		keyIdx := c.chunk().addConstant(cs.Key)
		c.chunk().emit(CONST, int(keyIdx))
		targets[i] = c.chunk().reserveConstPatch()
		c.chunk().emit(CONST, int(targets[i].index))
		c.chunk().emit(ARRAY, 2)
	}
	c.chunk().emit(ARRAY, len(s.Cases))

	c.compileExpr(s.Discriminant)

	defaultHandle := c.chunk().emitPlaceholderJump(SWITCH, false)

	fc := c.current()
	fc.pushScope()
	lc := fc.pushLoop("", true)

	bodyOffsets := make([]int, len(s.Body)+1)
	for i, stmt := range s.Body {
		bodyOffsets[i] = len(c.chunk().Instructions)
		c.compileStmt(stmt)
	}
	bodyOffsets[len(s.Body)] = len(c.chunk().Instructions)
	switchEnd := bodyOffsets[len(s.Body)]

	for i, cs := range s.Cases {
		c.chunk().patchConst(targets[i], bodyOffsets[cs.StatementIndex])
	}
	if s.DefaultIndex >= 0 {
		c.chunk().patchTo(defaultHandle, bodyOffsets[s.DefaultIndex])
	} else {
		c.chunk().patchTo(defaultHandle, switchEnd)
	}

	c.resolveLoopPatches(lc, switchEnd, switchEnd)
	fc.popLoop()
	fc.popScope()
}
