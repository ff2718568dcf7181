package compiler

import (
	"encoding/binary"
	"math"
)

// UnpatchedJMP is the sentinel payload written into a jump/target operand
// until its real value is known. It must never survive past the emission of
// the construct that created it.
const UnpatchedJMP int32 = math.MaxInt32

// ConstPlaceholder is the sentinel value written into a constant-table slot
// that a switch statement reserves for a case's byte-offset target before
// the target statement has been emitted.
const ConstPlaceholder = "\x00mildew-switch-placeholder\x00"

// PatchHandle identifies an unresolved jump/target operand by its byte
// offset in the instruction stream. It is a distinct type (rather than a
// bare int) so a caller cannot accidentally pass an unrelated offset to
// patchHere.
type PatchHandle struct {
	offset int
	signed bool // true: relative i32 displacement; false: absolute u32 target
}

// emitPlaceholderJump emits op with an UnpatchedJMP placeholder operand (for
// relative and absolute targets alike) and returns a handle to it; signed
// selects how the target is later encoded.
func (c *Chunk) emitPlaceholderJump(op Opcode, signed bool) PatchHandle {
	placeholder := int(UnpatchedJMP)
	operandOffset := len(c.Instructions) + 1
	c.emit(op, placeholder)
	return PatchHandle{offset: operandOffset, signed: signed}
}

// patchHere patches h to target the current end of the instruction stream:
// a relative displacement for signed handles (JMP/JMP_FALSE, measured from
// the byte immediately following the 4-byte operand), or the absolute
// offset for unsigned handles (SWITCH/TRY targets).
func (c *Chunk) patchHere(h PatchHandle) {
	c.patchTo(h, len(c.Instructions))
}

// patchTo patches h to target the given absolute byte offset.
func (c *Chunk) patchTo(h PatchHandle, target int) {
	if h.signed {
		displacement := int32(target - (h.offset + 4))
		binary.LittleEndian.PutUint32(c.Instructions[h.offset:], uint32(displacement))
	} else {
		binary.LittleEndian.PutUint32(c.Instructions[h.offset:], uint32(target))
	}
}

// constPatchHandle identifies a constant-table slot reserved for a
// byte-offset value that isn't known yet (used by switch-table lowering).
type constPatchHandle struct {
	index uint32
}

func (c *Chunk) reserveConstPatch() constPatchHandle {
	idx := uint32(len(c.Constants))
	c.Constants = append(c.Constants, ConstPlaceholder)
	return constPatchHandle{index: idx}
}

func (c *Chunk) patchConst(h constPatchHandle, target int) {
	c.Constants[h.index] = int64(target)
}

// gotoPatch identifies the two unresolved operands of a GOTO instruction:
// the absolute u32 target and the u8 scope-pop-count, both written only
// once the branch is resolved.
type gotoPatch struct {
	targetOffset   int
	popCountOffset int
}

func (c *Chunk) emitGoto() gotoPatch {
	targetOffset := len(c.Instructions) + 1
	c.emit(GOTO, int(uint32(0xFFFFFFFF)), 0)
	return gotoPatch{targetOffset: targetOffset, popCountOffset: targetOffset + 4}
}

func (c *Chunk) patchGoto(g gotoPatch, target, popCount int) {
	binary.LittleEndian.PutUint32(c.Instructions[g.targetOffset:], uint32(target))
	c.Instructions[g.popCountOffset] = byte(popCount)
}

// breakContinuePatch records a pending break/continue GOTO awaiting
// resolution at loop/switch exit, per the scope-pop-count contract.
type breakContinuePatch struct {
	label      string
	isContinue bool
	goTo       gotoPatch
	depth      int // scope depth at the point of the break/continue
}
