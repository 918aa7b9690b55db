// Package asm compiles smol assembly into a smolfile.File.
package asm

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/op"
	"go.creack.net/smol/smolfile"
)

var log = commonlog.GetLogger("smol.asm")

// Assemble lays out the variables, emits the instructions in order and
// resolves the labels. Either everything succeeds or no file is returned.
func Assemble(vars []*parser.Variable, nodes []parser.Node) (*smolfile.File, *Program, error) {
	storage, offsets, err := layout(vars)
	if err != nil {
		return nil, nil, err
	}

	p := NewProgram(offsets)
	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Label:
			err = p.DefineLabel(n)
		case *parser.Instruction:
			err = p.Emit(n)
		default:
			err = &Error{Construct: fmt.Sprintf("%T", n), Err: ErrUnknownInstruction}
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if missing := p.unresolved(); len(missing) > 0 {
		errs := make([]error, 0, len(missing))
		for _, elem := range missing {
			errs = append(errs, &Error{Line: elem.Line, Construct: "reference to " + elem.Label, Err: ErrUnresolvedLabel})
		}
		return nil, nil, errors.Join(errs...)
	}

	entry, ok := p.Label(op.EntryLabel)
	if !ok {
		return nil, nil, &Error{Construct: "label " + op.EntryLabel, Err: ErrMissingEntry}
	}

	log.Infof("assembled %d bytes, %d variables, entry 0x%04x", p.Size(), len(storage), entry)
	return &smolfile.File{
		Storage:      storage,
		Entry:        entry,
		Instructions: p.Bytes(),
	}, p, nil
}

// Compile parses and assembles the given source.
func Compile(inputName, inputData string) (*smolfile.File, *parser.Parser, error) {
	// Parse the input.
	ps, err := parser.Parse(inputName, inputData)
	if err != nil {
		var operr *parser.OperandError
		if errors.As(err, &operr) {
			return nil, nil, &Error{Line: operr.Line, Construct: operr.Instruction, Err: fmt.Errorf("%w: %w", ErrInvalidOperand, operr.Err)}
		}
		return nil, nil, fmt.Errorf("failed to parse: %w", err)
	}

	// Encode the program.
	f, _, err := Assemble(ps.Variables, ps.Nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to assemble: %w", inputName, err)
	}
	return f, ps, nil
}
