package vm

import "fmt"

// MachineError is the closed set of runtime failures the interpreter can
// report through the ERR register. Zero means no error.
type MachineError uint32

const (
	NoError MachineError = iota
	ErrOpCode
	ErrRegister
	ErrSyscall
	ErrMemory
	ErrReadonlyRegister
	ErrDivisorNotZero
)

// ExitCodeBase is added to a non-zero MachineError to produce the VM's exit
// code, keeping machine errors far away from ordinary program exit codes.
const ExitCodeBase = 32000

var errorNames = [...]string{
	NoError: "NoError", ErrOpCode: "OpCode", ErrRegister: "Register",
	ErrSyscall: "Syscall", ErrMemory: "Memory",
	ErrReadonlyRegister: "ReadonlyRegister", ErrDivisorNotZero: "DivisorNotZero",
}

func (e MachineError) String() string {
	if int(e) < len(errorNames) {
		return errorNames[e]
	}
	return fmt.Sprintf("MachineError(%d)", uint32(e))
}
