package asm

import (
	"fmt"

	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/op"
)

// patch is a forward label reference waiting for its definition.
type patch struct {
	Label    string
	Offset   int // Position of the 2 bytes placeholder in the stream.
	Line     int
	Resolved bool
}

// Program is the growing instruction stream with its label table.
type Program struct {
	buf     []byte
	labels  map[string]uint16
	pending []patch
	vars    map[string]uint16
}

// NewProgram creates an empty program referencing the given variables.
func NewProgram(vars map[string]uint16) *Program {
	return &Program{
		labels: map[string]uint16{},
		vars:   vars,
	}
}

// Size of the stream so far.
func (p *Program) Size() int { return len(p.buf) }

// Bytes returns the stream.
func (p *Program) Bytes() []byte { return p.buf }

// Label returns the address of a defined label.
func (p *Program) Label(name string) (uint16, bool) {
	addr, ok := p.labels[name]
	return addr, ok
}

// Labels returns the label table.
func (p *Program) Labels() map[string]uint16 { return p.labels }

// DefineLabel records the current stream position for the label and
// patches every pending reference to it.
func (p *Program) DefineLabel(l *parser.Label) error {
	construct := "label " + l.Name
	if _, ok := p.labels[l.Name]; ok {
		return &Error{Line: l.Line, Construct: construct, Err: ErrDuplicateLabel}
	}
	if len(p.buf) > 0xffff {
		return &Error{Line: l.Line, Construct: construct, Err: ErrProgramTooLarge}
	}
	addr := uint16(len(p.buf))
	p.labels[l.Name] = addr
	log.Debugf("label %q at 0x%04x", l.Name, addr)

	for i := range p.pending {
		elem := &p.pending[i]
		if elem.Resolved || elem.Label != l.Name {
			continue
		}
		op.Endian.PutUint16(p.buf[elem.Offset:], addr)
		elem.Resolved = true
		log.Debugf("patched %q reference at 0x%04x", l.Name, elem.Offset)
	}
	return nil
}

// Emit appends the instruction to the stream. Label operands not yet
// defined are emitted as a zero placeholder and queued for patching.
func (p *Program) Emit(ins *parser.Instruction) error {
	construct := ins.OpCode.Name
	if err := ins.ValidateParameters(); err != nil {
		return &Error{Line: ins.Line, Construct: construct, Err: fmt.Errorf("%w: %w", ErrInvalidOperand, err)}
	}

	start := len(p.buf)
	if start+ins.OpCode.Size() > 0xffff {
		return &Error{Line: ins.Line, Construct: construct, Err: ErrProgramTooLarge}
	}

	// Resolve on a copy, the parsed program stays untouched.
	resolved := parser.Instruction{OpCode: ins.OpCode, Line: ins.Line}
	for i, t := range ins.OpCode.ParamTypes {
		param := *ins.Params[i]
		switch t {
		case op.TLabel:
			if addr, ok := p.labels[param.Name]; ok {
				param.Value = int64(addr)
				break
			}
			param.Value = 0
			p.pending = append(p.pending, patch{
				Label:  param.Name,
				Offset: start + ins.OpCode.ParamOffset(i),
				Line:   ins.Line,
			})
		case op.TVar:
			offset, ok := p.vars[param.Name]
			if !ok {
				return &Error{Line: ins.Line, Construct: construct + " " + param.Name, Err: ErrUndefinedVariable}
			}
			param.Value = int64(offset)
		}
		resolved.Params = append(resolved.Params, &param)
	}

	p.buf = append(p.buf, make([]byte, ins.OpCode.Size())...)
	if _, err := resolved.Encode(p.buf[start:]); err != nil {
		return &Error{Line: ins.Line, Construct: construct, Err: err}
	}
	return nil
}

// unresolved returns the references still waiting for a label.
func (p *Program) unresolved() []patch {
	var out []patch
	for _, elem := range p.pending {
		if !elem.Resolved {
			out = append(out, elem)
		}
	}
	return out
}
