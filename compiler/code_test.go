package compiler

import "testing"

func TestAssembleInstruction(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{CONST, []int{65000}, []byte{byte(CONST), 0xE8, 0xFD, 0, 0}},
		{PUSH_ZERO, []int{}, []byte{byte(PUSH_ZERO)}},
		{ADD, []int{}, []byte{byte(ADD)}},
		{CLASS, []int{1, 2, 3, 4}, []byte{byte(CLASS), 1, 2, 3, 4}},
		{GOTO, []int{10, 2}, []byte{byte(GOTO), 10, 0, 0, 0, 2}},
		{PUSH_STACK, []int{-1}, []byte{byte(PUSH_STACK), 0xFF, 0xFF, 0xFF, 0xFF}},
		{JMP, []int{-5}, []byte{byte(JMP), 0xFB, 0xFF, 0xFF, 0xFF}},
		{POP, []int{}, []byte{byte(POP)}},
	}

	for _, tt := range tests {
		got := AssembleInstruction(tt.op, tt.operands...)
		if len(got) != len(tt.expected) {
			t.Fatalf("AssembleInstruction(%v, %v) = %v, want %v", tt.op, tt.operands, got, tt.expected)
		}
		for i, b := range tt.expected {
			if got[i] != b {
				t.Errorf("AssembleInstruction(%v, %v)[%d] = %d, want %d", tt.op, tt.operands, i, got[i], b)
			}
		}
	}
}

func TestReadOperandsRoundTrip(t *testing.T) {
	instr := AssembleInstruction(PUSH_STACK, -3)
	d, err := Get(PUSH_STACK)
	if err != nil {
		t.Fatalf("Get(PUSH_STACK) error: %v", err)
	}
	operands, n := ReadOperands(d, instr[1:])
	if n != 4 {
		t.Errorf("ReadOperands width = %d, want 4", n)
	}
	if len(operands) != 1 || operands[0] != -3 {
		t.Errorf("ReadOperands = %v, want [-3]", operands)
	}
}

func TestDisassembleInstruction(t *testing.T) {
	tests := []struct {
		ins      []byte
		expected string
	}{
		{AssembleInstruction(CONST, 65000), "CONST 65000"},
		{AssembleInstruction(POP), "POP"},
		{AssembleInstruction(CLASS, 1, 0, 2, 0), "CLASS 1 0 2 0"},
		{AssembleInstruction(PUSH_STACK, -1), "PUSH_STACK -1"},
	}

	for _, tt := range tests {
		got, _ := DisassembleInstruction(tt.ins)
		if got != tt.expected {
			t.Errorf("DisassembleInstruction(%v) = %q, want %q", tt.ins, got, tt.expected)
		}
	}
}

func TestDisassembleMultipleInstructions(t *testing.T) {
	var ins Bytecode
	ins = append(ins, AssembleInstruction(PUSH_ONE)...)
	ins = append(ins, AssembleInstruction(PUSH_ONE)...)
	ins = append(ins, AssembleInstruction(ADD)...)
	ins = append(ins, AssembleInstruction(POP)...)

	want := "0000 PUSH_ONE\n0001 PUSH_ONE\n0002 ADD\n0003 POP\n"
	got := Disassemble(ins)
	if got != want {
		t.Errorf("Disassemble() = %q, want %q", got, want)
	}
}
