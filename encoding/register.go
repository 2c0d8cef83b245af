// Package encoding defines the 32-bit instruction word layout shared by the
// assembler and the interpreter: opcode and register enumerations, and the
// pack/unpack helpers for the four instruction formats.
package encoding

import "fmt"

// Register identifies one of the twelve architectural registers. Register
// numbers occupy 4 bits in an instruction word.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	SP
	IP
	RA
	ERR
)

// LastRegister is the highest valid Register value.
const LastRegister = ERR

// Valid reports whether r names one of the twelve architectural registers.
func (r Register) Valid() bool {
	return r <= LastRegister
}

// ReadOnly reports whether user code is forbidden from writing r directly.
// The interpreter itself updates IP and ERR outside the user-write gate.
func (r Register) ReadOnly() bool {
	return r == IP || r == ERR
}

var registerNames = [...]string{
	R0: "r0", R1: "r1", R2: "r2", R3: "r3",
	R4: "r4", R5: "r5", R6: "r6", R7: "r7",
	SP: "sp", IP: "ip", RA: "ra", ERR: "err",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// RegisterByName looks up a register by its lower-case assembly name (the
// part after the leading '$'). It returns false if name does not match one
// of the twelve architectural registers.
func RegisterByName(name string) (Register, bool) {
	for i, n := range registerNames {
		if n == name {
			return Register(i), true
		}
	}
	return 0, false
}
