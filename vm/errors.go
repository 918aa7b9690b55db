package vm

import (
	"errors"
	"fmt"
)

// Run-time errors. Execution errors are wrapped in a *Fault.
var (
	ErrInvalidRegister  = errors.New("invalid register")
	ErrICOverrun        = errors.New("instruction counter past the end of the program")
	ErrUnimplemented    = errors.New("unimplemented opcode")
	ErrReservedEncoding = errors.New("reserved encoding")
	ErrTruncated        = errors.New("truncated instruction")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrNoBridge         = errors.New("no syscall bridge")
)

// Fault is a fatal run-time error.
type Fault struct {
	IC     uint16
	Opcode byte
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at 0x%04x (opcode 0b%08b): %s", f.IC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// ExitError is returned by Run when the program asked to exit.
type ExitError struct {
	Status int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Status) }
