package vm

import (
	"fmt"

	"go.creack.net/smol/op"
)

// Registers is the register file.
type Registers struct {
	R  [8]byte `cbor:"r"`  // r0 to r7.
	VP uint16  `cbor:"vp"` // Variable pointer.
	L0 uint16  `cbor:"l0"`
	L1 uint16  `cbor:"l1"`
	IC uint16  `cbor:"ic"` // Instruction counter.
	FG uint16  `cbor:"fg"` // Flags.
	CR uint16  `cbor:"cr"` // Control register.
	SP uint16  `cbor:"sp"` // Stack pointer.
	ZR uint16  `cbor:"zr"` // Zero register, usable as scratch.
}

func (r *Registers) wide(sel op.Register) *uint16 {
	switch sel {
	case op.VP:
		return &r.VP
	case op.L0:
		return &r.L0
	case op.L1:
		return &r.L1
	case op.IC:
		return &r.IC
	case op.FG:
		return &r.FG
	case op.CR:
		return &r.CR
	case op.SP:
		return &r.SP
	case op.ZR:
		return &r.ZR
	default:
		return nil
	}
}

// Get reads a register.
func (r *Registers) Get(sel op.Register) (Value, error) {
	if !sel.Valid() {
		return Value{}, fmt.Errorf("read selector %d: %w", byte(sel), ErrInvalidRegister)
	}
	if !sel.Wide() {
		return V8(r.R[sel]), nil
	}
	return V16(*r.wide(sel)), nil
}

// Set writes a register. The value width must match the register width.
func (r *Registers) Set(sel op.Register, v Value) error {
	if !sel.Valid() {
		return fmt.Errorf("write selector %d: %w", byte(sel), ErrInvalidRegister)
	}
	if want := widthOf(sel.Wide()); v.Width != want {
		return fmt.Errorf("write %s value to %s register %s: %w", v.Width, want, sel, ErrWidthMismatch)
	}
	if !sel.Wide() {
		r.R[sel] = byte(v.v)
		return nil
	}
	*r.wide(sel) = v.v
	return nil
}

func (r Registers) String() string {
	return fmt.Sprintf("r0-7=% x l0=0x%04x l1=0x%04x vp=0x%04x ic=0x%04x fg=0b%03b cr=0x%04x sp=0x%04x zr=0x%04x",
		r.R[:], r.L0, r.L1, r.VP, r.IC, r.FG, r.CR, r.SP, r.ZR)
}
