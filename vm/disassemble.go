package vm

import (
	"fmt"

	kencoding "github.com/kvasm/vm32/encoding"
)

// Disassemble renders one decoded instruction word back to assembly-like
// text, e.g. "add $r0, $r2" or "li $r1, 100". It never fails: an unknown
// opcode byte renders as a placeholder instead of an error, since this is a
// debugging aid (vm32 run --trace), not a decode path the interpreter
// relies on for correctness.
func Disassemble(word uint32) string {
	op := kencoding.DecodeOpcode(word)
	if !op.Valid() {
		return fmt.Sprintf("<unknown opcode %d>", uint8(op))
	}
	switch op.Format() {
	case kencoding.FormatTwoReg:
		r0, r1 := kencoding.DecodeTwoReg(word)
		return fmt.Sprintf("%s $%s, $%s", op, r0, r1)
	case kencoding.FormatReg:
		r := kencoding.DecodeReg(word)
		return fmt.Sprintf("%s $%s", op, r)
	case kencoding.FormatRegImm:
		r0, imm := kencoding.DecodeRegImm(word)
		if op == kencoding.LI {
			return fmt.Sprintf("%s $%s, %d", op, r0, int32(kencoding.SignExtend20(imm)))
		}
		return fmt.Sprintf("%s $%s, %d", op, r0, imm)
	default: // kencoding.FormatImm
		imm := kencoding.DecodeImm(word)
		return fmt.Sprintf("%s %d", op, imm)
	}
}
