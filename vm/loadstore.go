package vm

import (
	"fmt"

	"go.creack.net/smol/op"
)

// execLoadStore moves values between registers, immediates and memory.
// Addresses are absolute.
//
//	[op pair]                 st, swp
//	[op reg imm8|imm16]       sti
//	[op addr addr imm8|imm16] stm
//	[op addr addr reg]        str, ldm, swm
func (m *Machine) execLoadStore(f op.Fields) (int, bool, error) {
	w := widthOf(f.Wide)

	if !f.Mem {
		switch {
		case f.Sub == op.LSStore && f.Imm:
			r, err := m.reg(1, w)
			if err != nil {
				return 0, false, err
			}
			v, err := m.imm(2, w)
			if err != nil {
				return 0, false, err
			}
			return 2 + int(w), false, m.Regs.Set(r, v)
		case f.Sub == op.LSStore:
			dst, src, err := m.pair(1, w)
			if err != nil {
				return 0, false, err
			}
			v, err := m.Regs.Get(src)
			if err != nil {
				return 0, false, err
			}
			return 2, false, m.Regs.Set(dst, v)
		case f.Sub == op.LSSwap:
			a, b, err := m.pair(1, w)
			if err != nil {
				return 0, false, err
			}
			va, err := m.Regs.Get(a)
			if err != nil {
				return 0, false, err
			}
			vb, err := m.Regs.Get(b)
			if err != nil {
				return 0, false, err
			}
			if err := m.Regs.Set(a, vb); err != nil {
				return 0, false, err
			}
			return 2, false, m.Regs.Set(b, va)
		}
		return 0, false, fmt.Errorf("load/store direction %d without address: %w", f.Sub, ErrReservedEncoding)
	}

	addr, err := m.addr(1)
	if err != nil {
		return 0, false, err
	}
	if f.Sub == op.LSStore && f.Imm {
		v, err := m.imm(3, w)
		if err != nil {
			return 0, false, err
		}
		m.Mem.Write(addr, v)
		return 3 + int(w), false, nil
	}

	r, err := m.reg(3, w)
	if err != nil {
		return 0, false, err
	}
	switch f.Sub {
	case op.LSStore:
		v, err := m.Regs.Get(r)
		if err != nil {
			return 0, false, err
		}
		m.Mem.Write(addr, v)
	case op.LSLoad:
		if err := m.Regs.Set(r, m.Mem.Read(addr, w)); err != nil {
			return 0, false, err
		}
	case op.LSSwap:
		v, err := m.Regs.Get(r)
		if err != nil {
			return 0, false, err
		}
		old := m.Mem.Read(addr, w)
		m.Mem.Write(addr, v)
		if err := m.Regs.Set(r, old); err != nil {
			return 0, false, err
		}
	default:
		return 0, false, fmt.Errorf("load/store direction %d: %w", f.Sub, ErrReservedEncoding)
	}
	return 4, false, nil
}
