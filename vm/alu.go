package vm

import (
	"fmt"

	"go.creack.net/smol/op"
)

var aluOps = map[byte]func(a, b Value) (Value, error){
	op.ALUAdd: Add,
	op.ALUSub: Sub,
	op.ALUAnd: And,
	op.ALUOr:  Or,
	op.ALUXor: Xor,
}

// execALU runs the arithmetic, logic and equality instructions.
//
//	[op pair]            register source
//	[op reg imm8|imm16]  immediate source
//	[op reg]             not, inc, dec
func (m *Machine) execALU(f op.Fields) (int, bool, error) {
	w := widthOf(f.Wide)

	// Unary.
	if f.Sub == op.ALUNot || f.Sub == op.ALUIncDec {
		r, err := m.reg(1, w)
		if err != nil {
			return 0, false, err
		}
		a, err := m.Regs.Get(r)
		if err != nil {
			return 0, false, err
		}
		res := Not(a)
		if f.Sub == op.ALUIncDec {
			if f.Imm {
				res, err = Sub(a, One(w))
			} else {
				res, err = Add(a, One(w))
			}
			if err != nil {
				return 0, false, err
			}
		}
		return 2, false, m.Regs.Set(r, res)
	}

	var (
		dst op.Register
		src Value
		n   int
		err error
	)
	if f.Imm {
		if dst, err = m.reg(1, w); err != nil {
			return 0, false, err
		}
		if src, err = m.imm(2, w); err != nil {
			return 0, false, err
		}
		n = 2 + int(w)
	} else {
		var r op.Register
		if dst, r, err = m.pair(1, w); err != nil {
			return 0, false, err
		}
		if src, err = m.Regs.Get(r); err != nil {
			return 0, false, err
		}
		n = 2
	}
	a, err := m.Regs.Get(dst)
	if err != nil {
		return 0, false, err
	}

	if f.Sub == op.ALUEq {
		flags, err := Compare(a, src)
		if err != nil {
			return 0, false, err
		}
		m.Regs.FG = flags
		return n, false, nil
	}

	fn, ok := aluOps[f.Sub]
	if !ok {
		return 0, false, fmt.Errorf("alu operation %d: %w", f.Sub, ErrReservedEncoding)
	}
	res, err := fn(a, src)
	if err != nil {
		return 0, false, err
	}
	return n, false, m.Regs.Set(dst, res)
}
