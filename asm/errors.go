package asm

import (
	"errors"
	"fmt"
)

// Assembly errors. They are always wrapped in an *Error.
var (
	ErrDuplicateLabel     = errors.New("duplicate label")
	ErrUnresolvedLabel    = errors.New("unresolved label")
	ErrMissingEntry       = errors.New("missing entry label")
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrInitializerLength  = errors.New("initializer length does not match the declared size")
	ErrInvalidOperand     = errors.New("invalid operand")
	ErrStorageOverflow    = errors.New("variables overflow the variable region")
	ErrProgramTooLarge    = errors.New("program does not fit the 16 bits address space")
	ErrUnknownInstruction = errors.New("unknown instruction")
)

// Error locates an assembly error in the source.
type Error struct {
	Line      int    // 0 when the error is not tied to a line.
	Construct string // What was being assembled.
	Err       error
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Construct, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Construct, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
