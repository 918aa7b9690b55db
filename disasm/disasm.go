// Package disasm turns a compiled program back into assembly.
package disasm

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.creack.net/smol/asm"
	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/op"
	"go.creack.net/smol/smolfile"
)

var (
	ErrBadTarget  = errors.New("branch target is not an instruction boundary")
	ErrBadStorage = errors.New("storage is not laid out sequentially")
)

// labelName is the synthesized name of the label at the given address.
func labelName(addr uint16) string { return fmt.Sprintf("L_%04x", addr) }

// varName is the synthesized name of the i-th variable.
func varName(i int) string { return fmt.Sprintf("v%d", i) }

// Disasm decodes the program. Branch targets get synthesized labels, the
// entry point is labeled main and the variables are named in order.
// Assembling the result gives back the same file.
func Disasm(f *smolfile.File) (*parser.Parser, error) {
	p := &parser.Parser{}

	// Storage.
	vars := map[uint16]string{}
	offset := 0
	for i, item := range f.Storage {
		if int(item.Offset) != offset {
			return nil, fmt.Errorf("variable %d at offset %d, expected %d: %w", i, item.Offset, offset, ErrBadStorage)
		}
		v := &parser.Variable{Name: varName(i), Size: int(item.Size)}
		if item.Initialized() {
			v.Init = bytes.Clone(item.Init)
		}
		vars[item.Offset] = v.Name
		p.Variables = append(p.Variables, v)
		offset += int(item.Size)
	}

	// First pass: decode and collect the targets.
	var (
		instructions []*parser.Instruction
		addrs        []uint16
		boundaries   = map[uint16]bool{}
		targets      = map[uint16]string{f.Entry: op.EntryLabel}
	)
	for idx := 0; idx < len(f.Instructions); {
		ins, n, err := parser.DecodeNextInstruction(f.Instructions[idx:])
		if err != nil {
			return nil, fmt.Errorf("0x%04x: %w", idx, err)
		}
		for i, t := range ins.OpCode.ParamTypes {
			param := ins.Params[i]
			switch t {
			case op.TLabel:
				addr := uint16(param.Value)
				if _, ok := targets[addr]; !ok {
					targets[addr] = labelName(addr)
				}
			case op.TVar:
				name, ok := vars[uint16(param.Value)]
				if !ok {
					return nil, fmt.Errorf("0x%04x: %s offset %d: %w", idx, ins.OpCode.Name, param.Value, asm.ErrUndefinedVariable)
				}
				param.Name = name
			}
		}
		boundaries[uint16(idx)] = true
		instructions = append(instructions, ins)
		addrs = append(addrs, uint16(idx))
		idx += n
	}
	boundaries[uint16(len(f.Instructions))] = true

	for addr := range targets {
		if !boundaries[addr] {
			return nil, fmt.Errorf("0x%04x: %w", addr, ErrBadTarget)
		}
	}

	// Second pass: name the label operands and lay out the nodes.
	for i, ins := range instructions {
		if name, ok := targets[addrs[i]]; ok {
			p.Nodes = append(p.Nodes, &parser.Label{Name: name})
		}
		for j, t := range ins.OpCode.ParamTypes {
			if t == op.TLabel {
				ins.Params[j].Name = targets[uint16(ins.Params[j].Value)]
			}
		}
		p.Nodes = append(p.Nodes, ins)
	}
	if name, ok := targets[uint16(len(f.Instructions))]; ok {
		p.Nodes = append(p.Nodes, &parser.Label{Name: name})
	}
	return p, nil
}

// FindSource looks for a source in known that compiles to the same
// program. Returns the parsed source and its name, nil when there is none.
func FindSource(f *smolfile.File, known fs.FS) (*parser.Parser, string, error) {
	want, err := f.MarshalBinary()
	if err != nil {
		return nil, "", err
	}
	entries, err := fs.ReadDir(known, ".")
	if err != nil {
		return nil, "", fmt.Errorf("failed to list known sources: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".s") {
			continue
		}
		src, err := fs.ReadFile(known, e.Name())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %q: %w", e.Name(), err)
		}
		f2, p, err := asm.Compile(e.Name(), string(src))
		if err != nil {
			// Not our concern, skip it.
			continue
		}
		got, err := f2.MarshalBinary()
		if err != nil {
			return nil, "", err
		}
		if bytes.Equal(got, want) {
			return p, e.Name(), nil
		}
	}
	return nil, "", nil
}
