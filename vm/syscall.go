package vm

// Syscall numbers, passed in r0.
const (
	SysRead  = 0
	SysWrite = 1
	SysOpen  = 2
	SysClose = 3
	SysExit  = 60
)

// Call is a trapped syscall.
type Call struct {
	Number byte    // r0.
	Args   [3]byte // r1, r2, r3.

	// Data is memory from the variable pointer to the end of the address
	// space. Buffer arguments are offsets into it.
	Data []byte
}

// Bridge executes syscalls on behalf of the program. The returned byte
// is written back in r0. Returning an *ExitError stops the machine.
type Bridge interface {
	Syscall(c Call) (byte, error)
}

// BridgeFunc adapts a function to the Bridge interface.
type BridgeFunc func(c Call) (byte, error)

func (f BridgeFunc) Syscall(c Call) (byte, error) { return f(c) }

func (m *Machine) syscall() error {
	if m.Bridge == nil {
		return ErrNoBridge
	}
	c := Call{
		Number: m.Regs.R[0],
		Args:   [3]byte{m.Regs.R[1], m.Regs.R[2], m.Regs.R[3]},
		Data:   m.Mem.From(m.Regs.VP),
	}
	log.Infof("syscall %d args %v", c.Number, c.Args)
	m.emit(MsgSyscall, "syscall %d args %v", c.Number, c.Args)
	ret, err := m.Bridge.Syscall(c)
	if err != nil {
		return err
	}
	m.Regs.R[0] = ret
	return nil
}
