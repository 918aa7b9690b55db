package op

import "fmt"

// Register is a 4 bits register selector.
type Register byte

// Register selectors.
const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	VP // Variable pointer.
	L0
	L1
	IC // Instruction counter.
	FG // Flags.
	CR // Control register.
	SP // Stack pointer.
	ZR // Zero register.

	RegisterCount = 16
)

var registerNames = [RegisterCount]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"vp", "l0", "l1", "ic", "fg", "cr", "sp", "zr",
}

func (r Register) String() string {
	if !r.Valid() {
		return fmt.Sprintf("<invalid register %d>", byte(r))
	}
	return registerNames[r]
}

// Valid reports whether r fits a 4 bits selector.
func (r Register) Valid() bool { return r < RegisterCount }

// Wide reports whether the register holds 16 bits values.
// r0 to r7 are the only 8 bits registers.
func (r Register) Wide() bool { return r >= VP }

// ParamType returns the operand type accepting the register.
func (r Register) ParamType() ParamType {
	if r.Wide() {
		return TReg16
	}
	return TReg8
}

// ParseRegister looks up a register by name.
func ParseRegister(name string) (Register, bool) {
	for i, elem := range registerNames {
		if elem == name {
			return Register(i), true
		}
	}
	return 0, false
}

// PackPair packs two register selectors in a single byte,
// the first operand in the low nibble.
func PackPair(first, second Register) byte {
	return byte(second)<<4 | byte(first)&0x0f
}

// UnpackPair is the inverse of PackPair.
func UnpackPair(b byte) (first, second Register) {
	return Register(b & 0x0f), Register(b >> 4)
}
