package vm

import (
	"errors"
	"fmt"

	"go.creack.net/smol/op"
)

// ErrWidthMismatch is returned when mixing 8 and 16 bits values.
var ErrWidthMismatch = errors.New("width mismatch")

// Width of a value in bytes.
type Width int

// Width values.
const (
	W8  Width = 1
	W16 Width = 2
)

func widthOf(wide bool) Width {
	if wide {
		return W16
	}
	return W8
}

func (w Width) mask() uint16 {
	if w == W8 {
		return 0xff
	}
	return 0xffff
}

func (w Width) String() string {
	if w == W8 {
		return "8 bits"
	}
	return "16 bits"
}

// Value is either an 8 bits or a 16 bits unsigned integer.
type Value struct {
	Width Width
	v     uint16
}

// V8 makes an 8 bits value.
func V8(b byte) Value { return Value{Width: W8, v: uint16(b)} }

// V16 makes a 16 bits value.
func V16(v uint16) Value { return Value{Width: W16, v: v} }

// Uint16 returns the value, zero extended.
func (v Value) Uint16() uint16 { return v.v }

func (v Value) String() string {
	if v.Width == W8 {
		return fmt.Sprintf("0x%02x", v.v)
	}
	return fmt.Sprintf("0x%04x", v.v)
}

func binop(name string, f func(a, b uint16) uint16) func(a, b Value) (Value, error) {
	return func(a, b Value) (Value, error) {
		if a.Width != b.Width {
			return Value{}, fmt.Errorf("%s %s and %s: %w", name, a.Width, b.Width, ErrWidthMismatch)
		}
		return Value{Width: a.Width, v: f(a.v, b.v) & a.Width.mask()}, nil
	}
}

// Arithmetic and logic operators. Results wrap at the operands width.
var (
	Add = binop("add", func(a, b uint16) uint16 { return a + b })
	Sub = binop("sub", func(a, b uint16) uint16 { return a - b })
	And = binop("and", func(a, b uint16) uint16 { return a & b })
	Or  = binop("or", func(a, b uint16) uint16 { return a | b })
	Xor = binop("xor", func(a, b uint16) uint16 { return a ^ b })
)

// Not is the bitwise complement.
func Not(a Value) Value { return Value{Width: a.Width, v: ^a.v & a.Width.mask()} }

// One is 1 at the given width.
func One(w Width) Value { return Value{Width: w, v: 1} }

// Compare returns the single flag bit describing a against b.
func Compare(a, b Value) (uint16, error) {
	if a.Width != b.Width {
		return 0, fmt.Errorf("compare %s and %s: %w", a.Width, b.Width, ErrWidthMismatch)
	}
	switch {
	case a.v == b.v:
		return op.FlagEqual, nil
	case a.v > b.v:
		return op.FlagGreater, nil
	default:
		return op.FlagLess, nil
	}
}
