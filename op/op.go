// Package op defines the smol instruction set: opcode families, register
// selectors, operand types and the opcode table shared by the assembler,
// the disassembler and the VM.
package op

import "encoding/binary"

// Endian is the byte order of every multi-byte operand and of the
// compiled artifact.
var Endian = binary.LittleEndian

// Memory layout.
const (
	MemSize      = 1 << 16     // Unified memory, stack and variables.
	StackSize    = MemSize / 2 // Stack region is [0, StackSize).
	VariableBase = StackSize   // Variable region is [VariableBase, MemSize).
	VariableSize = MemSize - VariableBase
)

// InitializedFlag tags the size field of a storage descriptor entry
// carrying an initializer.
const InitializedFlag = 0x8000

// Flag bits set by the equality instructions.
const (
	FlagEqual   = 1 << iota // First operand == second.
	FlagGreater             // First operand > second.
	FlagLess                // First operand < second.
)

// EntryLabel is the label the VM starts executing at.
const EntryLabel = "main"

// Tokens.
const (
	CommentChars      = "#;"
	LabelChar         = ':'
	StringChar        = '"'
	VariableSeparator = "---"
	IdentChars        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_0123456789"
)
