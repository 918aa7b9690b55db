package vm

import "go.creack.net/smol/op"

// Memory is the unified address space. The stack and variable regions
// are views over the same buffer.
type Memory struct {
	buf [op.MemSize]byte
}

// Bytes returns the whole address space.
func (m *Memory) Bytes() []byte { return m.buf[:] }

// Stack returns the stack region.
func (m *Memory) Stack() []byte { return m.buf[:op.StackSize] }

// Variables returns the variable region.
func (m *Memory) Variables() []byte { return m.buf[op.VariableBase:] }

// From returns the memory starting at addr, used for variable pointer
// relative accesses.
func (m *Memory) From(addr uint16) []byte { return m.buf[addr:] }

// Read loads a little endian value. 16 bits accesses wrap around the
// end of memory.
func (m *Memory) Read(addr uint16, w Width) Value {
	if w == W8 {
		return V8(m.buf[addr])
	}
	return V16(uint16(m.buf[addr]) | uint16(m.buf[addr+1])<<8)
}

// Write stores a little endian value.
func (m *Memory) Write(addr uint16, v Value) {
	m.buf[addr] = byte(v.v)
	if v.Width == W16 {
		m.buf[addr+1] = byte(v.v >> 8)
	}
}
