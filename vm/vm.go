// Package vm implements the interpreter: a flat-memory machine with a
// 12-register file that decodes and executes one fixed-width instruction
// per step until a halt syscall, a machine error, or an out-of-bounds
// fetch.
package vm

import (
	kencoding "github.com/kvasm/vm32/encoding"
)

// DefaultMemorySize is the architectural memory size: 4 MiB.
const DefaultMemorySize = 1024 * 1024 * 4

// VM holds everything Execute needs and nothing it doesn't: the register
// file, memory, whether it's still running, the print syscall's
// destination, and read-only execution counters.
type VM struct {
	regs    [12]uint32
	mem     *Memory
	running bool
	stdout  StdoutSink
	stats   Statistics
}

// New returns a VM with a freshly zeroed memory of memSize bytes. All
// registers start at zero except SP, which is set to memSize (the stack
// grows toward lower addresses; nothing currently pushes or pops, but the
// register and its initial value are reserved for that use). stdout
// receives the bytes written by SYSCALLI 1; pass a discarding io.Writer if
// the program never prints.
func New(memSize int, stdout StdoutSink) *VM {
	v := &VM{mem: NewMemory(memSize), stdout: stdout}
	v.regs[kencoding.SP] = uint32(memSize)
	return v
}

// LoadImage copies image into memory at offset 0. It fails if image is
// larger than memory.
func (v *VM) LoadImage(image []byte) bool {
	return v.mem.Load(image)
}

// Memory exposes the VM's memory for callers that need to inspect it after
// execution (tests, JSON reporting).
func (v *VM) Memory() *Memory { return v.mem }

// Statistics returns a copy of the execution counters accumulated so far.
func (v *VM) Statistics() Statistics { return v.stats }

// Snapshot returns the current register file as 12 named values.
func (v *VM) Snapshot() Snapshot {
	return Snapshot{
		R0: v.regs[kencoding.R0], R1: v.regs[kencoding.R1],
		R2: v.regs[kencoding.R2], R3: v.regs[kencoding.R3],
		R4: v.regs[kencoding.R4], R5: v.regs[kencoding.R5],
		R6: v.regs[kencoding.R6], R7: v.regs[kencoding.R7],
		SP: v.regs[kencoding.SP], IP: v.regs[kencoding.IP],
		RA: v.regs[kencoding.RA], ERR: v.regs[kencoding.ERR],
	}
}

// TraceFunc, when set via ExecuteTraced, is invoked once per decoded
// instruction before it dispatches.
type TraceFunc func(ip uint32, word uint32)

// Execute runs from byte offset entry until the VM halts or errors, and
// returns the exit code together with the final register snapshot. Per the
// architecture's exit-code convention, the result is R1 when ERR ==
// NoError, and ExitCodeBase + ERR otherwise.
func (v *VM) Execute(entry uint32) (uint32, Snapshot) {
	return v.run(entry, nil)
}

// ExecuteTraced behaves like Execute but invokes trace once per executed
// instruction, before it dispatches — used by vm32 run --trace.
func (v *VM) ExecuteTraced(entry uint32, trace TraceFunc) (uint32, Snapshot) {
	return v.run(entry, trace)
}

func (v *VM) run(entry uint32, trace TraceFunc) (uint32, Snapshot) {
	v.regs[kencoding.IP] = entry
	v.running = true

	for {
		word, ok := v.mem.ReadU32(v.regs[kencoding.IP])
		if !ok {
			v.setErr(ErrMemory)
			break
		}
		op := kencoding.DecodeOpcode(word)
		if !op.Valid() {
			v.setErr(ErrOpCode)
			break
		}
		if trace != nil {
			trace(v.regs[kencoding.IP], word)
		}
		v.dispatch(op, word)
		v.stats.InstructionsExecuted++

		if v.regs[kencoding.ERR] != 0 || !v.running {
			break
		}
		v.regs[kencoding.IP] += 4
	}

	snap := v.Snapshot()
	if snap.ERR == 0 {
		return snap.R1, snap
	}
	return ExitCodeBase + snap.ERR, snap
}

// setErr bypasses the user-write gate: only the interpreter itself may set
// ERR.
func (v *VM) setErr(e MachineError) {
	v.regs[kencoding.ERR] = uint32(e)
}

// regRead is the gate every instruction handler routes its source reads
// through: a decoded Register field is 4 bits wide (0-15) but only 12
// values name an architectural register, so every read has to be checked
// before it can safely index v.regs. An invalid field sets ErrRegister and
// reports ok=false so the caller aborts the instruction without touching
// v.regs.
func (v *VM) regRead(reg kencoding.Register) (value uint32, ok bool) {
	if !reg.Valid() {
		v.setErr(ErrRegister)
		return 0, false
	}
	return v.regs[reg], true
}

// userWrite is the gate every instruction handler routes its destination
// writes through. An out-of-range register field is ErrRegister; writing
// IP or ERR from an instruction handler is a program error, not an
// interpreter bug, so it is reported as ErrReadonlyRegister rather than by
// panicking.
func (v *VM) userWrite(reg kencoding.Register, value uint32) {
	if !reg.Valid() {
		v.setErr(ErrRegister)
		return
	}
	if reg.ReadOnly() {
		v.setErr(ErrReadonlyRegister)
		return
	}
	v.regs[reg] = value
}

func (v *VM) dispatch(op kencoding.Opcode, word uint32) {
	switch op {
	case kencoding.CPY:
		r0, r1 := kencoding.DecodeTwoReg(word)
		val, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, val)

	case kencoding.LI:
		r0, imm := kencoding.DecodeRegImm(word)
		v.userWrite(r0, kencoding.SignExtend20(imm))

	case kencoding.LW, kencoding.LH, kencoding.LB:
		r0, r1 := kencoding.DecodeTwoReg(word)
		addr, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.load(op, r0, addr)
	case kencoding.SW, kencoding.SH, kencoding.SB:
		r0, r1 := kencoding.DecodeTwoReg(word)
		val, ok := v.regRead(r0)
		if !ok {
			return
		}
		addr, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.store(op, val, addr)

	case kencoding.LWI, kencoding.LHI, kencoding.LBI:
		r0, imm := kencoding.DecodeRegImm(word)
		v.load(op, r0, imm)
	case kencoding.SWI, kencoding.SHI, kencoding.SBI:
		r0, imm := kencoding.DecodeRegImm(word)
		val, ok := v.regRead(r0)
		if !ok {
			return
		}
		v.store(op, val, imm)

	case kencoding.ADD, kencoding.SUB, kencoding.MUL, kencoding.DIV:
		v.arithTwoReg(op, word)
	case kencoding.ADDI, kencoding.SUBI, kencoding.MULI, kencoding.DIVI:
		v.arithImm(op, word)

	case kencoding.AND:
		r0, r1 := kencoding.DecodeTwoReg(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		b, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, a&b)
	case kencoding.OR:
		r0, r1 := kencoding.DecodeTwoReg(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		b, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, a|b)
	case kencoding.XOR:
		r0, r1 := kencoding.DecodeTwoReg(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		b, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, a^b)
	case kencoding.NOT:
		r := kencoding.DecodeReg(word)
		val, ok := v.regRead(r)
		if !ok {
			return
		}
		v.userWrite(r, ^val)

	case kencoding.SRL:
		r0, r1 := kencoding.DecodeTwoReg(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		b, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, a>>(b&31))
	case kencoding.SLL:
		r0, r1 := kencoding.DecodeTwoReg(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		b, ok := v.regRead(r1)
		if !ok {
			return
		}
		v.userWrite(r0, a<<(b&31))
	case kencoding.SRLI:
		r0, imm := kencoding.DecodeRegImm(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		v.userWrite(r0, a>>(imm&31))
	case kencoding.SLLI:
		r0, imm := kencoding.DecodeRegImm(word)
		a, ok := v.regRead(r0)
		if !ok {
			return
		}
		v.userWrite(r0, a<<(imm&31))

	case kencoding.J:
		r := kencoding.DecodeReg(word)
		target, ok := v.regRead(r)
		if !ok {
			return
		}
		v.jumpTo(target)
	case kencoding.JI:
		v.jumpTo(kencoding.DecodeImm(word))
	case kencoding.JIL:
		target := kencoding.DecodeImm(word)
		v.regs[kencoding.RA] = v.regs[kencoding.IP] + 4
		v.jumpTo(target)
	case kencoding.JZI, kencoding.JNZI, kencoding.JLZI, kencoding.JGZI:
		v.condJump(op, word)

	case kencoding.SYSCALLI:
		v.syscall(kencoding.DecodeImm(word))
	}
}

// jumpTo writes target - 4 into IP, so that the execute loop's unconditional
// IP += 4 after dispatch lands exactly on target.
func (v *VM) jumpTo(target uint32) {
	v.regs[kencoding.IP] = target - 4
}

func (v *VM) condJump(op kencoding.Opcode, word uint32) {
	r0, imm := kencoding.DecodeRegImm(word)
	val, ok := v.regRead(r0)
	if !ok {
		return
	}
	var take bool
	switch op {
	case kencoding.JZI:
		take = val == 0
	case kencoding.JNZI:
		take = val != 0
	case kencoding.JLZI:
		take = int32(val) < 0
	case kencoding.JGZI:
		take = int32(val) > 0
	}
	if take {
		v.jumpTo(imm)
	}
}

func (v *VM) arithTwoReg(op kencoding.Opcode, word uint32) {
	r0, r1 := kencoding.DecodeTwoReg(word)
	a, ok := v.regRead(r0)
	if !ok {
		return
	}
	b, ok := v.regRead(r1)
	if !ok {
		return
	}
	switch op {
	case kencoding.ADD:
		v.userWrite(r0, a+b)
	case kencoding.SUB:
		v.userWrite(r0, a-b)
	case kencoding.MUL:
		v.userWrite(r0, a*b)
	case kencoding.DIV:
		if b == 0 {
			v.setErr(ErrDivisorNotZero)
			v.userWrite(r0, 0)
			return
		}
		v.userWrite(r0, a/b)
	}
}

func (v *VM) arithImm(op kencoding.Opcode, word uint32) {
	r0, imm := kencoding.DecodeRegImm(word)
	a, ok := v.regRead(r0)
	if !ok {
		return
	}
	switch op {
	case kencoding.ADDI:
		v.userWrite(r0, a+imm)
	case kencoding.SUBI:
		v.userWrite(r0, a-imm)
	case kencoding.MULI:
		v.userWrite(r0, a*imm)
	case kencoding.DIVI:
		if imm == 0 {
			v.setErr(ErrDivisorNotZero)
			v.userWrite(r0, 0)
			return
		}
		v.userWrite(r0, a/imm)
	}
}

// load handles LW/LH/LB and their *I variants; addr is either a register
// value or a zero-extended immediate depending on which opcode dispatched
// here. Loads always zero-extend into the destination register.
func (v *VM) load(op kencoding.Opcode, dst kencoding.Register, addr uint32) {
	switch op {
	case kencoding.LW, kencoding.LWI:
		val, ok := v.mem.ReadU32(addr)
		if !ok {
			v.setErr(ErrMemory)
			return
		}
		v.userWrite(dst, val)
	case kencoding.LH, kencoding.LHI:
		val, ok := v.mem.ReadU16(addr)
		if !ok {
			v.setErr(ErrMemory)
			return
		}
		v.userWrite(dst, uint32(val))
	case kencoding.LB, kencoding.LBI:
		val, ok := v.mem.ReadU8(addr)
		if !ok {
			v.setErr(ErrMemory)
			return
		}
		v.userWrite(dst, uint32(val))
	}
}

// store handles SW/SH/SB and their *I variants; addr is either a register
// value or a zero-extended immediate. Stores truncate the source value to
// the store width.
func (v *VM) store(op kencoding.Opcode, srcVal, addr uint32) {
	switch op {
	case kencoding.SW, kencoding.SWI:
		if !v.mem.WriteU32(addr, srcVal) {
			v.setErr(ErrMemory)
		}
	case kencoding.SH, kencoding.SHI:
		if !v.mem.WriteU16(addr, uint16(srcVal)) {
			v.setErr(ErrMemory)
		}
	case kencoding.SB, kencoding.SBI:
		if !v.mem.WriteU8(addr, uint8(srcVal)) {
			v.setErr(ErrMemory)
		}
	}
}

func (v *VM) syscall(num uint32) {
	v.regs[kencoding.RA] = v.regs[kencoding.IP] + 4
	switch num {
	case 0:
		v.running = false
	case 1:
		ptr, length := v.regs[kencoding.R1], v.regs[kencoding.R2]
		data, ok := v.mem.ReadSlice(ptr, length)
		if !ok {
			v.setErr(ErrMemory)
			return
		}
		if _, err := v.stdout.Write(data); err != nil {
			v.setErr(ErrSyscall)
		}
	default:
		v.setErr(ErrSyscall)
	}
}
