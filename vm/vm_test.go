package vm_test

import (
	"bytes"
	"testing"

	"github.com/kvasm/vm32/compiler"
	"github.com/kvasm/vm32/vm"
)

// run assembles src, loads it at offset 0, and executes it, failing the
// test immediately on any compile diagnostic.
func run(t *testing.T, src string) (uint32, vm.Snapshot, *bytes.Buffer) {
	t.Helper()
	img, diags := compiler.Assemble(src)
	if len(diags) != 0 {
		t.Fatalf("assemble: unexpected diagnostics: %v", diags)
	}
	var out bytes.Buffer
	m := vm.New(vm.DefaultMemorySize, &out)
	if !m.LoadImage(img.Bytes) {
		t.Fatalf("image too large for memory")
	}
	code, snap := m.Execute(0)
	return code, snap, &out
}

func TestHalt(t *testing.T) {
	code, snap, _ := run(t, "syscalli 0\n")
	if code != 0 {
		t.Fatalf("exit code: got %d want 0", code)
	}
	if snap.SP != vm.DefaultMemorySize {
		t.Fatalf("SP: got %d want %d", snap.SP, vm.DefaultMemorySize)
	}
	if snap.RA != 4 {
		t.Fatalf("RA: got %d want 4", snap.RA)
	}
	if snap.R0 != 0 || snap.R1 != 0 || snap.ERR != 0 {
		t.Fatalf("expected zero registers and no error, got %+v", snap)
	}
}

func TestAddImmediateConstants(t *testing.T) {
	code, snap, _ := run(t, "li $r2, 100\nli $r0, 32\nadd $r0, $r2\nsyscalli 0\n")
	if code != 0 {
		t.Fatalf("exit code: got %d want 0", code)
	}
	if snap.R0 != 132 {
		t.Fatalf("R0: got %d want 132", snap.R0)
	}
}

func TestPrint(t *testing.T) {
	src := "li $r1, %s\nli $r2, 14\nsyscalli 1\nli $r1, 0\nsyscalli 0\ns:\n.str \"Hello, world!\\n\"\n"
	code, _, out := run(t, src)
	if code != 0 {
		t.Fatalf("exit code: got %d want 0", code)
	}
	if out.String() != "Hello, world!\n" {
		t.Fatalf("stdout: got %q", out.String())
	}
}

func TestCallAndReturnAddress(t *testing.T) {
	src := "ji 4\njil 16\nli $r1, 0\nsyscalli 0\nli $r0, 32\ncpy $r3, $ra\nli $r1, 0\nsyscalli 0\n"
	code, snap, _ := run(t, src)
	if code != 0 {
		t.Fatalf("exit code: got %d want 0", code)
	}
	if snap.R0 != 32 {
		t.Fatalf("R0: got %d want 32", snap.R0)
	}
	if snap.R3 != 8 {
		t.Fatalf("R3: got %d want 8", snap.R3)
	}
}

func TestDivisorZero(t *testing.T) {
	code, snap, _ := run(t, "li $r0, 20\nli $r1, 0\ndiv $r0, $r1\nsyscalli 0\n")
	if code != 32000+6 {
		t.Fatalf("exit code: got %d want %d", code, 32000+6)
	}
	if snap.R0 != 0 {
		t.Fatalf("R0: got %d want 0", snap.R0)
	}
}

func TestReadonlyRegisterWrite(t *testing.T) {
	code, snap, _ := run(t, "li $ip, 4\nsyscalli 0\n")
	if snap.ERR != 5 { // ErrReadonlyRegister
		t.Fatalf("ERR: got %d want 5", snap.ERR)
	}
	if code != 32000+5 {
		t.Fatalf("exit code: got %d want %d", code, 32000+5)
	}
}

func TestUnknownOpcodeFault(t *testing.T) {
	// .i32 with the top byte set past the last valid opcode decodes as an
	// unrecognized instruction at fetch time.
	code, snap, _ := run(t, ".i32 0xFF000000\n")
	if snap.ERR != 1 { // ErrOpCode
		t.Fatalf("ERR: got %d want 1", snap.ERR)
	}
	if code != 32000+1 {
		t.Fatalf("exit code: got %d want %d", code, 32000+1)
	}
}

func TestInvalidRegisterFieldFaultsInsteadOfPanicking(t *testing.T) {
	// CPY with reg0 = 0 and reg1 = 0xF (bits 3..0) decodes to a register
	// number outside the 12 architectural registers; it must fault cleanly
	// rather than index out of range.
	code, snap, _ := run(t, ".i32 0x000F000F\n")
	if snap.ERR != 2 { // ErrRegister
		t.Fatalf("ERR: got %d want 2", snap.ERR)
	}
	if code != 32000+2 {
		t.Fatalf("exit code: got %d want %d", code, 32000+2)
	}
}

func TestShiftMasksAmountTo5Bits(t *testing.T) {
	// A shift amount of 32 must behave as 32 & 31 == 0, i.e. a no-op,
	// rather than relying on host-defined behavior for a full-width shift.
	// The exit code is R1, which holds the shift amount.
	code, snap, _ := run(t, "li $r0, 1\nli $r1, 32\nsll $r0, $r1\nsyscalli 0\n")
	if code != 32 {
		t.Fatalf("exit code: got %d want 32", code)
	}
	if snap.R0 != 1 {
		t.Fatalf("R0: got %d want 1 (shift amount should mask to 0)", snap.R0)
	}
}

func TestLoadStoreByte(t *testing.T) {
	code, snap, _ := run(t, "li $r0, 258\nli $r1, 0\nsb $r0, $r1\nlb $r2, $r1\nsyscalli 0\n")
	if code != 0 {
		t.Fatalf("exit code: got %d want 0", code)
	}
	if snap.R2 != 2 { // 258 truncated to one byte is 2
		t.Fatalf("R2: got %d want 2", snap.R2)
	}
}
