// Package vm implements the smol virtual machine.
package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/op"
	"go.creack.net/smol/smolfile"
)

var log = commonlog.GetLogger("smol.vm")

// Machine is one program instance. Not safe for concurrent use; run
// several programs with several machines.
type Machine struct {
	Regs Registers
	Mem  *Memory
	Code []byte

	Bridge Bridge

	// Hook, when set, receives the machine events on the running goroutine.
	Hook func(Message)

	// Trace logs every instruction at debug level.
	Trace bool

	Steps uint64 // Executed instructions.
}

// New creates a machine using the given syscall bridge.
func New(bridge Bridge) *Machine {
	m := &Machine{
		Mem:    &Memory{},
		Bridge: bridge,
	}
	m.Regs.VP = op.VariableBase
	return m
}

// Load resets the machine with the given program.
func (m *Machine) Load(f *smolfile.File) error {
	if len(f.Instructions) > 0xffff {
		return fmt.Errorf("program is %d bytes, max is %d", len(f.Instructions), 0xffff)
	}
	if int(f.Entry) > len(f.Instructions) {
		return fmt.Errorf("entry 0x%04x outside of the %d bytes program", f.Entry, len(f.Instructions))
	}
	m.Mem = &Memory{}
	if err := f.FillVariables(m.Mem.Variables()); err != nil {
		return fmt.Errorf("load variables: %w", err)
	}
	m.Code = f.Instructions
	m.Regs = Registers{
		IC: f.Entry,
		VP: op.VariableBase,
	}
	m.Steps = 0
	return nil
}

// decoder executes one instruction of its family. Returns how many bytes
// the instruction uses and whether it set the instruction counter itself.
type decoder func(m *Machine, f op.Fields) (n int, jumped bool, err error)

var decoders = [4]decoder{
	op.FamilyALU:       (*Machine).execALU,
	op.FamilyLoadStore: (*Machine).execLoadStore,
	op.FamilyStack:     (*Machine).execStack,
	op.FamilyBranch:    (*Machine).execBranch,
}

// Halted reports whether the instruction counter reached the end of the
// program.
func (m *Machine) Halted() bool { return int(m.Regs.IC) == len(m.Code) }

// Step executes one instruction. Returns io.EOF once the program halted.
func (m *Machine) Step() error {
	ic := m.Regs.IC
	if int(ic) == len(m.Code) {
		m.emit(MsgHalt, "halted after %d steps", m.Steps)
		return io.EOF
	}
	if int(ic) > len(m.Code) {
		return m.fault(0, ErrICOverrun)
	}

	code := m.Code[ic]
	if _, ok := op.Lookup(code); !ok {
		return m.fault(code, ErrReservedEncoding)
	}
	if m.Trace {
		if ins, _, err := parser.DecodeNextInstruction(m.Code[ic:]); err == nil {
			log.Debugf("0x%04x: %s", ic, ins.PrettyPrint(nil))
		}
	}
	m.emit(MsgStep, "0b%08b", code)

	f := op.DecodeFields(code)
	n, jumped, err := decoders[f.Family](m, f)
	if err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			m.emit(MsgExit, "exit status %d", exit.Status)
			return exit
		}
		return m.fault(code, err)
	}
	if !jumped {
		m.Regs.IC = ic + uint16(n)
	}
	m.Steps++

	if int(m.Regs.IC) > len(m.Code) {
		return m.fault(code, fmt.Errorf("0x%04x: %w", m.Regs.IC, ErrICOverrun))
	}
	return nil
}

func (m *Machine) fault(code byte, err error) error {
	f := &Fault{IC: m.Regs.IC, Opcode: code, Err: err}
	log.Errorf("%s", f)
	m.emit(MsgFault, "%s", err)
	return f
}

// Run executes until the program halts, faults or exits. A clean halt
// returns nil, an exit request returns the *ExitError.
func (m *Machine) Run() error {
	for {
		if err := m.Step(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// operand reads the bytes of the current instruction at the given offset.
func (m *Machine) operand(off, size int) ([]byte, error) {
	start := int(m.Regs.IC) + off
	if start+size > len(m.Code) {
		return nil, fmt.Errorf("need %d bytes at 0x%04x: %w", size, start, ErrTruncated)
	}
	return m.Code[start : start+size], nil
}

// imm reads an immediate of the given width.
func (m *Machine) imm(off int, w Width) (Value, error) {
	b, err := m.operand(off, int(w))
	if err != nil {
		return Value{}, err
	}
	if w == W8 {
		return V8(b[0]), nil
	}
	return V16(op.Endian.Uint16(b)), nil
}

// addr reads a 2 bytes address.
func (m *Machine) addr(off int) (uint16, error) {
	v, err := m.imm(off, W16)
	return v.Uint16(), err
}

func checkRegister(r op.Register, w Width) error {
	if !r.Valid() {
		return fmt.Errorf("selector %d: %w", byte(r), ErrInvalidRegister)
	}
	if widthOf(r.Wide()) != w {
		return fmt.Errorf("%s register %s in a %s instruction: %w", widthOf(r.Wide()), r, w, ErrWidthMismatch)
	}
	return nil
}

// reg reads a single register selector byte.
func (m *Machine) reg(off int, w Width) (op.Register, error) {
	b, err := m.operand(off, 1)
	if err != nil {
		return 0, err
	}
	r := op.Register(b[0])
	return r, checkRegister(r, w)
}

// pair reads a packed register pair byte.
func (m *Machine) pair(off int, w Width) (op.Register, op.Register, error) {
	b, err := m.operand(off, 1)
	if err != nil {
		return 0, 0, err
	}
	a, c := op.UnpackPair(b[0])
	if err := checkRegister(a, w); err != nil {
		return 0, 0, err
	}
	return a, c, checkRegister(c, w)
}
