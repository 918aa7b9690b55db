package vm

import (
	"fmt"

	"go.creack.net/smol/op"
)

func (m *Machine) push(v Value) error {
	if int(m.Regs.SP)+int(v.Width) > op.StackSize {
		return fmt.Errorf("push %s at 0x%04x: %w", v, m.Regs.SP, ErrStackOverflow)
	}
	m.Mem.Write(m.Regs.SP, v)
	m.Regs.SP += uint16(v.Width)
	return nil
}

func (m *Machine) pop(w Width) (Value, error) {
	if int(m.Regs.SP) < int(w) {
		return Value{}, fmt.Errorf("pop %s at 0x%04x: %w", w, m.Regs.SP, ErrStackUnderflow)
	}
	m.Regs.SP -= uint16(w)
	return m.Mem.Read(m.Regs.SP, w), nil
}

// source reads a register or an immediate at offset 1.
func (m *Machine) source(f op.Fields, w Width) (Value, int, error) {
	if f.Imm {
		v, err := m.imm(1, w)
		return v, 1 + int(w), err
	}
	r, err := m.reg(1, w)
	if err != nil {
		return Value{}, 0, err
	}
	v, err := m.Regs.Get(r)
	return v, 2, err
}

// execStack runs push, pop and the variable pointer instructions.
// The stack pointer and the variable pointer never affect each other.
func (m *Machine) execStack(f op.Fields) (int, bool, error) {
	w := widthOf(f.Wide)

	switch f.Sub {
	case op.StackPush:
		v, n, err := m.source(f, w)
		if err != nil {
			return 0, false, err
		}
		return n, false, m.push(v)

	case op.StackPop:
		r, err := m.reg(1, w)
		if err != nil {
			return 0, false, err
		}
		v, err := m.pop(w)
		if err != nil {
			return 0, false, err
		}
		return 2, false, m.Regs.Set(r, v)

	case op.StackLoadVar:
		v, n, err := m.source(f, w)
		if err != nil {
			return 0, false, err
		}
		m.Regs.VP = op.VariableBase + v.Uint16()
		return n, false, nil

	case op.StackUnloadVar:
		m.Regs.VP = op.VariableBase
		return 1, false, nil
	}
	return 0, false, fmt.Errorf("stack operation %d: %w", f.Sub, ErrReservedEncoding)
}
