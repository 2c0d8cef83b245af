package vm

import "encoding/binary"

// Memory is a flat, zero-initialized, byte-addressable buffer. Every access
// is bounds-checked; an access whose range is not fully contained in
// [0, Len()) never panics — it reports failure so the caller can set
// ERR = Memory instead.
type Memory struct {
	buf []byte
}

// NewMemory allocates a zeroed buffer of the given size.
func NewMemory(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// Len returns the memory size in bytes.
func (m *Memory) Len() int { return len(m.buf) }

// Load copies image into the buffer starting at byte 0. It fails if image
// is larger than the buffer; the buffer is left untouched on failure.
func (m *Memory) Load(image []byte) bool {
	if len(image) > len(m.buf) {
		return false
	}
	copy(m.buf, image)
	return true
}

func (m *Memory) inBounds(addr uint32, width int) bool {
	return uint64(addr)+uint64(width) <= uint64(len(m.buf))
}

func (m *Memory) ReadU8(addr uint32) (uint8, bool) {
	if !m.inBounds(addr, 1) {
		return 0, false
	}
	return m.buf[addr], true
}

func (m *Memory) ReadU16(addr uint32) (uint16, bool) {
	if !m.inBounds(addr, 2) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(m.buf[addr:]), true
}

func (m *Memory) ReadU32(addr uint32) (uint32, bool) {
	if !m.inBounds(addr, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.buf[addr:]), true
}

func (m *Memory) WriteU8(addr uint32, v uint8) bool {
	if !m.inBounds(addr, 1) {
		return false
	}
	m.buf[addr] = v
	return true
}

func (m *Memory) WriteU16(addr uint32, v uint16) bool {
	if !m.inBounds(addr, 2) {
		return false
	}
	binary.LittleEndian.PutUint16(m.buf[addr:], v)
	return true
}

func (m *Memory) WriteU32(addr uint32, v uint32) bool {
	if !m.inBounds(addr, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.buf[addr:], v)
	return true
}

// ReadSlice returns a read-only view of length bytes starting at addr, used
// by the print syscall. The returned slice aliases the memory buffer; the
// caller must not retain it past the current instruction.
func (m *Memory) ReadSlice(addr, length uint32) ([]byte, bool) {
	if !m.inBounds(addr, int(length)) {
		return nil, false
	}
	return m.buf[addr : addr+length], true
}
