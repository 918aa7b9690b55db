package op

import "fmt"

// Family is the top level class of an opcode, bits 7 and 6.
type Family byte

// Family values.
const (
	FamilyALU Family = iota
	FamilyLoadStore
	FamilyStack
	FamilyBranch
)

func (f Family) String() string {
	switch f {
	case FamilyALU:
		return "alu"
	case FamilyLoadStore:
		return "load/store"
	case FamilyStack:
		return "stack"
	case FamilyBranch:
		return "branch"
	default:
		return fmt.Sprintf("<unknown family %d>", byte(f))
	}
}

// ALU sub operations, bits 5 to 3.
const (
	ALUAdd byte = iota
	ALUSub
	ALUAnd
	ALUOr
	ALUXor
	ALUNot
	ALUEq
	ALUIncDec // Imm bit selects decrement.
)

// Load/store directions, bits 5 and 4.
const (
	LSStore byte = 0b00
	LSLoad  byte = 0b01
	LSSwap  byte = 0b11
)

// Stack/variable sub operations, bits 5 and 4.
const (
	StackPush byte = iota
	StackPop
	StackLoadVar
	StackUnloadVar
)

// Branch/call sub operations, bits 5 to 3.
const (
	BranchJmp byte = iota
	BranchEq
	BranchNe
	BranchGt
	BranchLt
	BranchCall
	BranchRet
	BranchReti
)

// Fields is the decoded view of an opcode byte. Every family packs the
// same concepts at different positions; Encode and DecodeFields are the
// only places knowing where.
//
//	alu        00 sss i w 0
//	load/store 01 dd m i w 0
//	stack      10 ss i w 00
//	branch     11 sss 000   (11 101 111 is the syscall trap)
type Fields struct {
	Family Family
	Sub    byte // Family specific sub operation.
	Mem    bool // Memory address operand, load/store only.
	Imm    bool // Immediate source. Decrement for ALUIncDec.
	Wide   bool // 16 bits operands.
	Trap   bool // Syscall trap, branch family only.

	// Reserved holds the bits that must be zero for the encoding to be
	// defined, in place.
	Reserved byte
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Encode builds the opcode byte.
func (f Fields) Encode() byte {
	out := byte(f.Family) << 6
	switch f.Family {
	case FamilyALU:
		out |= (f.Sub&0b111)<<3 | b2u(f.Imm)<<2 | b2u(f.Wide)<<1
	case FamilyLoadStore:
		out |= (f.Sub&0b11)<<4 | b2u(f.Mem)<<3 | b2u(f.Imm)<<2 | b2u(f.Wide)<<1
	case FamilyStack:
		out |= (f.Sub&0b11)<<4 | b2u(f.Imm)<<3 | b2u(f.Wide)<<2
	case FamilyBranch:
		out |= (f.Sub & 0b111) << 3
		if f.Trap {
			out |= 0b111
		}
	}
	return out | f.Reserved
}

// DecodeFields splits an opcode byte into its fields.
func DecodeFields(code byte) Fields {
	f := Fields{Family: Family(code >> 6)}
	switch f.Family {
	case FamilyALU:
		f.Sub = (code >> 3) & 0b111
		f.Imm = code&(1<<2) != 0
		f.Wide = code&(1<<1) != 0
		f.Reserved = code & 0b1
	case FamilyLoadStore:
		f.Sub = (code >> 4) & 0b11
		f.Mem = code&(1<<3) != 0
		f.Imm = code&(1<<2) != 0
		f.Wide = code&(1<<1) != 0
		f.Reserved = code & 0b1
	case FamilyStack:
		f.Sub = (code >> 4) & 0b11
		f.Imm = code&(1<<3) != 0
		f.Wide = code&(1<<2) != 0
		f.Reserved = code & 0b11
	case FamilyBranch:
		f.Sub = (code >> 3) & 0b111
		low := code & 0b111
		if f.Sub == BranchCall && low == 0b111 {
			f.Trap = true
		} else {
			f.Reserved = low
		}
	}
	return f
}

// Syscall is the trap opcode handing control to the syscall bridge.
var Syscall = Fields{Family: FamilyBranch, Sub: BranchCall, Trap: true}.Encode()
