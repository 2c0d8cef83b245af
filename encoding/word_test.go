package encoding

import "testing"

func TestTwoRegRoundTrip(t *testing.T) {
	cases := []struct {
		op     Opcode
		r0, r1 Register
	}{
		{ADD, R0, R1},
		{XOR, R7, SP},
		{CPY, IP, ERR},
	}
	for _, c := range cases {
		word := EncodeTwoReg(c.op, c.r0, c.r1)
		if got := DecodeOpcode(word); got != c.op {
			t.Fatalf("opcode: got %v want %v", got, c.op)
		}
		r0, r1 := DecodeTwoReg(word)
		if r0 != c.r0 || r1 != c.r1 {
			t.Fatalf("regs: got (%v,%v) want (%v,%v)", r0, r1, c.r0, c.r1)
		}
	}
}

func TestRegImmRoundTrip(t *testing.T) {
	word := EncodeRegImm(LI, R2, 0x0ABCD)
	if op := DecodeOpcode(word); op != LI {
		t.Fatalf("opcode: got %v want LI", op)
	}
	r0, imm := DecodeRegImm(word)
	if r0 != R2 || imm != 0x0ABCD {
		t.Fatalf("got (%v,%#x) want (r2,0xabcd)", r0, imm)
	}
}

func TestRegImmMasksOverflow(t *testing.T) {
	word := EncodeRegImm(ADDI, R0, 0xFFFFFFFF)
	_, imm := DecodeRegImm(word)
	if imm != imm20Mask {
		t.Fatalf("got %#x want %#x", imm, imm20Mask)
	}
}

func TestSignExtend20(t *testing.T) {
	cases := []struct {
		in   uint32
		want uint32
	}{
		{0, 0},
		{1, 1},
		{imm20Mask, 0xFFFFFFFF},          // -1
		{imm20SignBit, 0xFFF80000},       // most negative 20-bit value
		{imm20SignBit - 1, imm20SignBit - 1}, // most positive
	}
	for _, c := range cases {
		if got := SignExtend20(c.in); got != c.want {
			t.Fatalf("SignExtend20(%#x) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestRegRoundTrip(t *testing.T) {
	word := EncodeReg(NOT, R5)
	if op := DecodeOpcode(word); op != NOT {
		t.Fatalf("opcode: got %v want NOT", op)
	}
	if r := DecodeReg(word); r != R5 {
		t.Fatalf("reg: got %v want r5", r)
	}
}

func TestImmRoundTrip(t *testing.T) {
	word := EncodeImm(JI, 0x00FFFFFF)
	if op := DecodeOpcode(word); op != JI {
		t.Fatalf("opcode: got %v want JI", op)
	}
	if imm := DecodeImm(word); imm != 0x00FFFFFF {
		t.Fatalf("imm: got %#x want 0xffffff", imm)
	}
}

func TestOpcodeByMnemonicRoundTrip(t *testing.T) {
	for op := Opcode(0); op <= LastOpcode; op++ {
		got, ok := OpcodeByMnemonic(op.String())
		if !ok || got != op {
			t.Fatalf("mnemonic %q did not round trip: got %v ok=%v", op.String(), got, ok)
		}
	}
}

func TestRegisterByNameRoundTrip(t *testing.T) {
	for r := Register(0); r <= LastRegister; r++ {
		got, ok := RegisterByName(r.String())
		if !ok || got != r {
			t.Fatalf("register name %q did not round trip", r.String())
		}
	}
}
