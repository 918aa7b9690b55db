package vm

import (
	"fmt"

	"go.creack.net/smol/op"
)

// execBranch runs jumps, calls, returns and the syscall trap.
// Conditional branches test the flags of the last equality instruction.
func (m *Machine) execBranch(f op.Fields) (int, bool, error) {
	if f.Trap {
		return 1, false, m.syscall()
	}

	switch f.Sub {
	case op.BranchRet:
		v, err := m.pop(W16)
		if err != nil {
			return 0, false, err
		}
		m.Regs.IC = v.Uint16()
		return 1, true, nil
	case op.BranchReti:
		return 0, false, fmt.Errorf("reti: %w", ErrUnimplemented)
	}

	target, err := m.addr(1)
	if err != nil {
		return 0, false, err
	}
	var taken bool
	switch f.Sub {
	case op.BranchJmp:
		taken = true
	case op.BranchEq:
		taken = m.Regs.FG&op.FlagEqual != 0
	case op.BranchNe:
		taken = m.Regs.FG&op.FlagEqual == 0
	case op.BranchGt:
		taken = m.Regs.FG&op.FlagGreater != 0
	case op.BranchLt:
		taken = m.Regs.FG&op.FlagLess != 0
	case op.BranchCall:
		if err := m.push(V16(m.Regs.IC + 3)); err != nil {
			return 0, false, err
		}
		taken = true
	default:
		return 0, false, fmt.Errorf("branch operation %d: %w", f.Sub, ErrReservedEncoding)
	}
	if taken {
		m.Regs.IC = target
	}
	return 3, taken, nil
}
