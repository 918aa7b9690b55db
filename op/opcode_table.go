package op

import "fmt"

// OpCode is the definition of instructions.
type OpCode struct {
	Name       string
	ParamTypes []ParamType
	Code       byte
	Comment    string
}

// Packed reports whether the two register operands share one byte.
func (o OpCode) Packed() bool {
	return len(o.ParamTypes) == 2 && o.ParamTypes[0].IsRegister() && o.ParamTypes[1].IsRegister()
}

// Size of the encoded instruction in bytes, opcode included.
func (o OpCode) Size() int {
	if o.Packed() {
		return 2
	}
	n := 1
	for _, elem := range o.ParamTypes {
		n += elem.Size()
	}
	return n
}

// Fields returns the decoded opcode byte.
func (o OpCode) Fields() Fields { return DecodeFields(o.Code) }

func (o OpCode) String() string { return fmt.Sprintf("%s (0x%02x)", o.Name, o.Code) }

func alu(sub byte, imm, wide bool) byte {
	return Fields{Family: FamilyALU, Sub: sub, Imm: imm, Wide: wide}.Encode()
}

func ls(dir byte, mem, imm, wide bool) byte {
	return Fields{Family: FamilyLoadStore, Sub: dir, Mem: mem, Imm: imm, Wide: wide}.Encode()
}

func stack(sub byte, imm, wide bool) byte {
	return Fields{Family: FamilyStack, Sub: sub, Imm: imm, Wide: wide}.Encode()
}

func branch(sub byte) byte {
	return Fields{Family: FamilyBranch, Sub: sub}.Encode()
}

type ptypes = []ParamType

var OpCodeTable = []OpCode{
	// ALU / equality.
	{"add", ptypes{TReg8, TReg8}, alu(ALUAdd, false, false), "a += b"},
	{"addi", ptypes{TReg8, TImm8}, alu(ALUAdd, true, false), "a += imm"},
	{"addl", ptypes{TReg16, TReg16}, alu(ALUAdd, false, true), "a += b, 16 bits"},
	{"addil", ptypes{TReg16, TImm16}, alu(ALUAdd, true, true), "a += imm, 16 bits"},
	{"sub", ptypes{TReg8, TReg8}, alu(ALUSub, false, false), "a -= b"},
	{"subi", ptypes{TReg8, TImm8}, alu(ALUSub, true, false), "a -= imm"},
	{"subl", ptypes{TReg16, TReg16}, alu(ALUSub, false, true), "a -= b, 16 bits"},
	{"subil", ptypes{TReg16, TImm16}, alu(ALUSub, true, true), "a -= imm, 16 bits"},
	{"and", ptypes{TReg8, TReg8}, alu(ALUAnd, false, false), "a &= b"},
	{"andi", ptypes{TReg8, TImm8}, alu(ALUAnd, true, false), "a &= imm"},
	{"andl", ptypes{TReg16, TReg16}, alu(ALUAnd, false, true), "a &= b, 16 bits"},
	{"andil", ptypes{TReg16, TImm16}, alu(ALUAnd, true, true), "a &= imm, 16 bits"},
	{"or", ptypes{TReg8, TReg8}, alu(ALUOr, false, false), "a |= b"},
	{"ori", ptypes{TReg8, TImm8}, alu(ALUOr, true, false), "a |= imm"},
	{"orl", ptypes{TReg16, TReg16}, alu(ALUOr, false, true), "a |= b, 16 bits"},
	{"oril", ptypes{TReg16, TImm16}, alu(ALUOr, true, true), "a |= imm, 16 bits"},
	{"xor", ptypes{TReg8, TReg8}, alu(ALUXor, false, false), "a ^= b"},
	{"xori", ptypes{TReg8, TImm8}, alu(ALUXor, true, false), "a ^= imm"},
	{"xorl", ptypes{TReg16, TReg16}, alu(ALUXor, false, true), "a ^= b, 16 bits"},
	{"xoril", ptypes{TReg16, TImm16}, alu(ALUXor, true, true), "a ^= imm, 16 bits"},
	{"not", ptypes{TReg8}, alu(ALUNot, false, false), "a = ^a"},
	{"notl", ptypes{TReg16}, alu(ALUNot, false, true), "a = ^a, 16 bits"},
	{"eqr", ptypes{TReg8, TReg8}, alu(ALUEq, false, false), "compare a and b into fg"},
	{"eqi", ptypes{TReg8, TImm8}, alu(ALUEq, true, false), "compare a and imm into fg"},
	{"eqrl", ptypes{TReg16, TReg16}, alu(ALUEq, false, true), "compare a and b into fg, 16 bits"},
	{"eqil", ptypes{TReg16, TImm16}, alu(ALUEq, true, true), "compare a and imm into fg, 16 bits"},
	{"inc", ptypes{TReg8}, alu(ALUIncDec, false, false), "a++"},
	{"dec", ptypes{TReg8}, alu(ALUIncDec, true, false), "a--"},
	{"incl", ptypes{TReg16}, alu(ALUIncDec, false, true), "a++, 16 bits"},
	{"decl", ptypes{TReg16}, alu(ALUIncDec, true, true), "a--, 16 bits"},

	// Load / store / swap.
	{"st", ptypes{TReg8, TReg8}, ls(LSStore, false, false, false), "a = b"},
	{"stl", ptypes{TReg16, TReg16}, ls(LSStore, false, false, true), "a = b, 16 bits"},
	{"sti", ptypes{TReg8, TImm8}, ls(LSStore, false, true, false), "a = imm"},
	{"stil", ptypes{TReg16, TImm16}, ls(LSStore, false, true, true), "a = imm, 16 bits"},
	{"stm", ptypes{TAddr, TImm8}, ls(LSStore, true, true, false), "mem[addr] = imm"},
	{"stml", ptypes{TAddr, TImm16}, ls(LSStore, true, true, true), "mem[addr:addr+2] = imm"},
	{"str", ptypes{TAddr, TReg8}, ls(LSStore, true, false, false), "mem[addr] = a"},
	{"strl", ptypes{TAddr, TReg16}, ls(LSStore, true, false, true), "mem[addr:addr+2] = a"},
	{"ldm", ptypes{TAddr, TReg8}, ls(LSLoad, true, false, false), "a = mem[addr]"},
	{"ldml", ptypes{TAddr, TReg16}, ls(LSLoad, true, false, true), "a = mem[addr:addr+2]"},
	{"swp", ptypes{TReg8, TReg8}, ls(LSSwap, false, false, false), "a, b = b, a"},
	{"swpl", ptypes{TReg16, TReg16}, ls(LSSwap, false, false, true), "a, b = b, a, 16 bits"},
	{"swm", ptypes{TAddr, TReg8}, ls(LSSwap, true, false, false), "mem[addr], a = a, mem[addr]"},
	{"swml", ptypes{TAddr, TReg16}, ls(LSSwap, true, false, true), "mem[addr:addr+2], a = a, mem[addr:addr+2]"},

	// Stack / variable.
	{"pur", ptypes{TReg8}, stack(StackPush, false, false), "push register"},
	{"purl", ptypes{TReg16}, stack(StackPush, false, true), "push register, 16 bits"},
	{"pui", ptypes{TImm8}, stack(StackPush, true, false), "push immediate"},
	{"puil", ptypes{TImm16}, stack(StackPush, true, true), "push immediate, 16 bits"},
	{"por", ptypes{TReg8}, stack(StackPop, false, false), "pop into register"},
	{"porl", ptypes{TReg16}, stack(StackPop, false, true), "pop into register, 16 bits"},
	{"svr", ptypes{TReg8}, stack(StackLoadVar, false, false), "vp = base + a"},
	{"svrl", ptypes{TReg16}, stack(StackLoadVar, false, true), "vp = base + a, 16 bits"},
	{"svi", ptypes{TImm8}, stack(StackLoadVar, true, false), "vp = base + imm"},
	{"sv", ptypes{TVar}, stack(StackLoadVar, true, true), "vp = base + offset of variable"},
	{"uv", nil, stack(StackUnloadVar, false, false), "vp = base"},

	// Branch / call.
	{"jmp", ptypes{TLabel}, branch(BranchJmp), "jump"},
	{"be", ptypes{TLabel}, branch(BranchEq), "jump if equal"},
	{"bne", ptypes{TLabel}, branch(BranchNe), "jump if not equal"},
	{"bgt", ptypes{TLabel}, branch(BranchGt), "jump if greater"},
	{"blt", ptypes{TLabel}, branch(BranchLt), "jump if less"},
	{"call", ptypes{TLabel}, branch(BranchCall), "push return address and jump"},
	{"ret", nil, branch(BranchRet), "pop return address"},
	{"reti", nil, branch(BranchReti), "return from interrupt"},
	{"syscall", nil, Syscall, "call the syscall bridge"},
}

var (
	byCode [256]*OpCode
	byName = map[string]*OpCode{}
)

func init() {
	for i := range OpCodeTable {
		o := &OpCodeTable[i]
		if byCode[o.Code] != nil {
			panic(fmt.Sprintf("op: duplicate opcode 0x%02x for %q and %q", o.Code, byCode[o.Code].Name, o.Name))
		}
		if _, ok := byName[o.Name]; ok {
			panic(fmt.Sprintf("op: duplicate mnemonic %q", o.Name))
		}
		byCode[o.Code] = o
		byName[o.Name] = o
	}
}

// Lookup returns the definition for an opcode byte. Bytes absent from
// the table are reserved encodings.
func Lookup(code byte) (OpCode, bool) {
	o := byCode[code]
	if o == nil {
		return OpCode{}, false
	}
	return *o, true
}

// LookupName returns the definition for a mnemonic.
func LookupName(name string) (OpCode, bool) {
	o, ok := byName[name]
	if !ok {
		return OpCode{}, false
	}
	return *o, true
}

// ParamOffset returns the position of the i-th operand from the start of
// the instruction.
func (o OpCode) ParamOffset(i int) int {
	if o.Packed() {
		return 1
	}
	n := 1
	for _, elem := range o.ParamTypes[:i] {
		n += elem.Size()
	}
	return n
}
