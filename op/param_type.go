package op

import "strings"

// ParamType enum type. Values are bit flags so a parsed operand can
// carry every type it could satisfy.
type ParamType int

// ParamType values.
const (
	TReg8  ParamType = 1 << iota // r0 to r7.
	TReg16                       // l0, l1 and the special registers.
	TImm8                        // 1 byte immediate.
	TImm16                       // 2 bytes immediate.
	TAddr                        // 2 bytes absolute memory address.
	TLabel                       // 2 bytes instruction stream address.
	TVar                         // Variable name, encoded as its 2 bytes offset.

	TReg = TReg8 | TReg16
	TNum = TImm8 | TImm16 | TAddr
)

func (pt ParamType) String() string {
	var parts []string
	for _, elem := range []struct {
		t    ParamType
		name string
	}{
		{TReg8, "reg8"},
		{TReg16, "reg16"},
		{TImm8, "imm8"},
		{TImm16, "imm16"},
		{TAddr, "address"},
		{TLabel, "label"},
		{TVar, "variable"},
	} {
		if pt&elem.t != 0 {
			parts = append(parts, elem.name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// Size of the encoded operand in bytes. Only defined for single types.
func (pt ParamType) Size() int {
	switch pt {
	case TReg8, TReg16, TImm8:
		return 1
	case TImm16, TAddr, TLabel, TVar:
		return 2
	default:
		return -1
	}
}

// IsRegister reports whether the type is a register selector.
func (pt ParamType) IsRegister() bool { return pt != 0 && pt&^TReg == 0 }

// Max is the largest unsigned value the type can encode.
func (pt ParamType) Max() int64 {
	switch pt {
	case TReg8, TReg16:
		return RegisterCount - 1
	case TImm8:
		return 0xff
	default:
		return 0xffff
	}
}

// Encoding writes v in buf and returns the number of bytes written.
func (pt ParamType) Encoding(buf []byte, v uint16) int {
	if pt.Size() == 1 {
		buf[0] = byte(v)
		return 1
	}
	Endian.PutUint16(buf, v)
	return 2
}

// Decoding reads the operand from buf and returns it with its size.
func (pt ParamType) Decoding(buf []byte) (uint16, int) {
	if pt.Size() == 1 {
		return uint16(buf[0]), 1
	}
	return Endian.Uint16(buf), 2
}
