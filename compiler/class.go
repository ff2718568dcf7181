package compiler

import "mildew/ast"

// maxClassMemberCount is the largest count the CLASS opcode's four u8
// operands can carry.
const maxClassMemberCount = 255

// compileClass emits a class literal's fixed bytecode sequence: every
// method/getter/setter/static as a (name-constant, function) pair in that
// order, then the constructor, then the base class value (or PUSH_UNDEF),
// before the single CLASS instruction that assembles them into a class
// value. 'super' inside the constructor or a method resolves against the
// base-class expression pushed onto baseClasses for the duration of the
// literal.
func (c *Compiler) compileClass(def *ast.ClassDefinition) {
	// base is pushed onto baseClasses before the constructor and methods
	// compile, since 'super' inside either must resolve against it; its own
	// bytecode is emitted later, after the constructor, to match emission
	// order.
	if def.BaseClass != nil {
		c.baseClasses = append(c.baseClasses, def.BaseClass)
		defer func() { c.baseClasses = c.baseClasses[:len(c.baseClasses)-1] }()
	}

	emitPairs := func(names []string, fns []*ast.FunctionLiteral) {
		for i, name := range names {
			idx := c.chunk().addConstant(name)
			c.chunk().emit(CONST, int(idx))
			c.compileExpr(fns[i])
		}
	}
	emitPairs(def.MethodNames, def.Methods)
	emitPairs(def.GetterNames, def.Getters)
	emitPairs(def.SetterNames, def.Setters)
	emitPairs(def.StaticNames, def.Statics)

	c.compileExpr(def.Constructor)

	if def.BaseClass != nil {
		c.compileExpr(def.BaseClass)
	} else {
		c.chunk().emit(PUSH_UNDEF)
	}

	for _, count := range []int{len(def.MethodNames), len(def.GetterNames), len(def.SetterNames), len(def.StaticNames)} {
		if count > maxClassMemberCount {
			panic(compileErrorf(def.Constructor.Line, "class %q has too many members of one kind (%d, max %d)", def.Name, count, maxClassMemberCount))
		}
	}

	c.chunk().emit(CLASS, len(def.MethodNames), len(def.GetterNames), len(def.SetterNames), len(def.StaticNames))
}

func (c *Compiler) VisitClassLiteral(e *ast.ClassLiteral) {
	c.compileClass(e.Definition)
}
