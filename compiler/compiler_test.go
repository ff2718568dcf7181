package compiler

import (
	"fmt"
	"strings"
	"testing"
)

func mustCompile(t *testing.T, source string) *Chunk {
	t.Helper()
	chunk, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", source, err)
	}
	return chunk
}

func mustFail(t *testing.T, source string) {
	t.Helper()
	if _, err := Compile(source); err == nil {
		t.Fatalf("Compile(%q) succeeded, want error", source)
	}
}

// TestArithmeticAndPop covers scenario 1: `1 + 2;` emits PUSH_ONE, CONST
// <idx-of-2>, ADD, POP, with 2 in the constant table at the referenced index.
func TestArithmeticAndPop(t *testing.T) {
	chunk := mustCompile(t, "1 + 2;")
	want := Bytecode(AssembleInstruction(PUSH_ONE))
	want = append(want, AssembleInstruction(CONST, 0)...)
	want = append(want, AssembleInstruction(ADD)...)
	want = append(want, AssembleInstruction(POP)...)

	if len(chunk.Instructions) != len(want) {
		t.Fatalf("Instructions = % x, want % x", chunk.Instructions, want)
	}
	for i := range want {
		if chunk.Instructions[i] != want[i] {
			t.Fatalf("Instructions = % x, want % x", chunk.Instructions, want)
		}
	}
	if len(chunk.Constants) != 1 || chunk.Constants[0] != int64(2) {
		t.Fatalf("Constants = %v, want [2]", chunk.Constants)
	}
}

// TestLexicalCompoundAssign covers scenario 2: `let x = 5; x += 3;` declares
// x lexically at stack slot 0, then rewrites the compound assignment to
// PUSH_STACK 0, CONST <3>, ADD, STORE_STACK 0, POP.
func TestLexicalCompoundAssign(t *testing.T) {
	chunk := mustCompile(t, "let x = 5; x += 3;")
	listing := Disassemble(chunk.Instructions)

	for _, want := range []string{
		"DECL_LEXICAL 0",
		"PUSH_STACK 0",
		"ADD",
		"STORE_STACK 0",
		"POP",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}

// TestIfElseBranchTargets covers scenario 3: the condition is loaded with
// GET_VAR, both JMP_FALSE and JMP are emitted, and every jump displacement
// is patched to a target inside the instruction stream.
func TestIfElseBranchTargets(t *testing.T) {
	chunk := mustCompile(t, "if (a) { b; } else { c; }")
	listing := Disassemble(chunk.Instructions)

	for _, want := range []string{"GET_VAR", "JMP_FALSE", "JMP "} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}

	assertNoUnpatchedJumps(t, chunk.Instructions)
}

// TestWhileBreakContinue covers scenario 4: every JMP/JMP_FALSE is patched
// to an in-bounds target and the loop has exactly one back-edge JMP.
func TestWhileBreakContinue(t *testing.T) {
	chunk := mustCompile(t, "while (cond) { if (done) break; continue; }")
	assertNoUnpatchedJumps(t, chunk.Instructions)

	backEdges := 0
	offset := 0
	for offset < len(chunk.Instructions) {
		op := Opcode(chunk.Instructions[offset])
		_, width := DisassembleInstruction(chunk.Instructions[offset:])
		if op == JMP {
			d, _ := Get(JMP)
			operands, _ := ReadOperands(d, chunk.Instructions[offset+1:])
			if operands[0] < 0 {
				backEdges++
			}
		}
		offset += width
	}
	if backEdges != 1 {
		t.Errorf("back-edge JMP count = %d, want 1", backEdges)
	}
}

// TestFunctionDeclAndCall covers scenario 5: the function body computes
// x * x from its own parameter slot and returns it; the call site pushes a
// receiver, the function value, and the argument before CALL.
func TestFunctionDeclAndCall(t *testing.T) {
	chunk := mustCompile(t, "function f(x) { return x * x; } f(3);")
	listing := Disassemble(chunk.Instructions)

	for _, want := range []string{"THIS", "GET_VAR", "CALL 1"} {
		if !strings.Contains(listing, want) {
			t.Errorf("outer listing missing %q:\n%s", want, listing)
		}
	}

	var fn *FunctionValue
	for _, c := range chunk.Constants {
		if f, ok := c.(*FunctionValue); ok {
			fn = f
		}
	}
	if fn == nil {
		t.Fatalf("no FunctionValue in constant table: %v", chunk.Constants)
	}
	body := Disassemble(fn.Body.Instructions)
	for _, want := range []string{"PUSH_STACK 0", "MUL", "RETURN"} {
		if !strings.Contains(body, want) {
			t.Errorf("function body missing %q:\n%s", want, body)
		}
	}
}

// TestClassWithSuperCall covers scenario 6: the class body emits its method
// name and method function, then the constructor function, then the
// base-class expression B, then a single CLASS instruction with one method
// and zero getters/setters/statics; the new-site emits NEW with the
// argument count.
func TestClassWithSuperCall(t *testing.T) {
	chunk := mustCompile(t, `
		class A extends B {
			constructor(x) { super(x); }
			m() { return 1; }
		}
		new A(4);
	`)
	listing := Disassemble(chunk.Instructions)

	if !strings.Contains(listing, "CLASS 1 0 0 0") {
		t.Errorf("listing missing CLASS 1 0 0 0:\n%s", listing)
	}
	if !strings.Contains(listing, "NEW 1") {
		t.Errorf("listing missing NEW 1:\n%s", listing)
	}

	methodCount := 0
	for _, c := range chunk.Constants {
		if _, ok := c.(*FunctionValue); ok {
			methodCount++
		}
		if s, ok := c.(string); ok && s == "A" {
			t.Errorf("class name %q must not be pushed as a constant", s)
		}
	}
	if methodCount != 2 {
		t.Errorf("FunctionValue constants = %d, want 2 (constructor + method)", methodCount)
	}

	// Emission order: method name+fn pair, then constructor fn, then base
	// expression, then CLASS — not base-before-constructor, and no trailing
	// class-name CONST right before CLASS.
	methodNameIdx := -1
	for i, c := range chunk.Constants {
		if s, ok := c.(string); ok && s == "m" {
			methodNameIdx = i
		}
	}
	if methodNameIdx == -1 {
		t.Fatalf("method name constant %q not found", "m")
	}

	classOffset := strings.Index(listing, "CLASS 1 0 0 0")
	methodNameOffset := strings.Index(listing, fmt.Sprintf("CONST %d", methodNameIdx))
	getVarBOffset := strings.Index(listing, "GET_VAR")
	if methodNameOffset == -1 || methodNameOffset > classOffset {
		t.Errorf("method name CONST must precede CLASS:\n%s", listing)
	}
	if getVarBOffset == -1 || getVarBOffset > classOffset || getVarBOffset < methodNameOffset {
		t.Errorf("base-class GET_VAR must come after the method pair and before CLASS:\n%s", listing)
	}
}

// TestSwitchCaseTableAndDefault covers the case-table lowering: each case
// becomes a [key, target] pair built with CONST/CONST/ARRAY 2, all cases are
// packed with ARRAY <n>, and SWITCH's operand is an absolute byte offset
// patched to the default clause, not a constant-table index.
func TestSwitchCaseTableAndDefault(t *testing.T) {
	chunk := mustCompile(t, `switch (x) {
		case 1:
			a;
			break;
		default:
			b;
	}`)
	listing := Disassemble(chunk.Instructions)

	for _, want := range []string{"ARRAY 2", "ARRAY 1", "SWITCH "} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}

	// Every constant here must be one of the documented wire-format kinds
	// (integer, double, string, boolean, nil) — no switch-specific struct.
	for _, c := range chunk.Constants {
		switch c.(type) {
		case int64, float64, string, bool, nil:
		default:
			t.Errorf("constant table carries non-wire-format value %T: %v", c, c)
		}
	}

	offset := 0
	found := false
	for offset < len(chunk.Instructions) {
		op := Opcode(chunk.Instructions[offset])
		_, width := DisassembleInstruction(chunk.Instructions[offset:])
		if op == SWITCH {
			d, _ := Get(SWITCH)
			operands, _ := ReadOperands(d, chunk.Instructions[offset+1:])
			target := operands[0]
			if target < 0 || target > len(chunk.Instructions) {
				t.Errorf("SWITCH default target %d out of bounds", target)
			}
			found = true
		}
		offset += width
	}
	if !found {
		t.Fatalf("no SWITCH instruction emitted")
	}
}

// TestDeclarationQualifierRules exercises the redeclaration rules for let,
// const and var (lexical same-scope duplicates error, var duplicates do
// not) and checks that a const without an initializer is rejected.
func TestDeclarationQualifierRules(t *testing.T) {
	mustFail(t, "let a = 1; let a = 2;")
	mustFail(t, "const a = 1; const a = 2;")
	mustCompile(t, "var a = 1; var a = 2;")
	mustFail(t, "const a;")
}

// TestDeterministicRecompile asserts compiling the same source twice on
// fresh compiler instances yields byte-identical bytecode and equal
// constant tables.
func TestDeterministicRecompile(t *testing.T) {
	source := "let x = 1; function f(y) { return x + y; } f(2);"
	a := mustCompile(t, source)
	b := mustCompile(t, source)

	if string(a.Instructions) != string(b.Instructions) {
		t.Errorf("instructions differ between compiles")
	}
	if len(a.Constants) != len(b.Constants) {
		t.Fatalf("constant table length differs: %d vs %d", len(a.Constants), len(b.Constants))
	}
}

func TestAssignmentToConstErrors(t *testing.T) {
	mustFail(t, "const a = 1; a = 2;")
}

func TestUnresolvedBreakAtFunctionEndErrors(t *testing.T) {
	mustFail(t, "function f() { break; }")
}

// assertNoUnpatchedJumps walks every JMP/JMP_FALSE in ins and fails if any
// displacement still carries the unpatched placeholder sentinel or lands
// outside the instruction stream.
func assertNoUnpatchedJumps(t *testing.T, ins Bytecode) {
	t.Helper()
	offset := 0
	for offset < len(ins) {
		op := Opcode(ins[offset])
		_, width := DisassembleInstruction(ins[offset:])
		if op == JMP || op == JMP_FALSE {
			d, _ := Get(op)
			operands, _ := ReadOperands(d, ins[offset+1:])
			target := offset + width + operands[0]
			if target < 0 || target > len(ins) {
				t.Errorf("jump at %d targets out-of-bounds offset %d", offset, target)
			}
		}
		offset += width
	}
}
