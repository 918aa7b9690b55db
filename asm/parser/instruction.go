package parser

import (
	"errors"
	"fmt"
	"strings"

	"go.creack.net/smol/op"
)

// Decoding errors.
var (
	ErrInvalidOpcode   = errors.New("invalid opcode")
	ErrTruncated       = errors.New("truncated instruction")
	ErrInvalidRegister = errors.New("invalid register selector")
)

type Instruction struct {
	OpCode op.OpCode    // OpCode reference.
	Params []*Parameter // Parameters.
	Line   int          // Source line, only set when parsing.
	Size   int          // In bytes, only set when decoding.
}

func (ins Instruction) PrettyPrint(_ []Node) string {
	paramStrs := make([]string, 0, len(ins.Params))
	for _, param := range ins.Params {
		paramStrs = append(paramStrs, param.String())
	}
	if len(paramStrs) == 0 {
		return "\t" + ins.OpCode.Name
	}
	return fmt.Sprintf("\t%-8s%s", ins.OpCode.Name, strings.Join(paramStrs, " "))
}

func (ins Instruction) String() string {
	out := "<" + ins.OpCode.Name
	paramStrs := make([]string, 0, len(ins.Params))
	for _, param := range ins.Params {
		paramStrs = append(paramStrs, param.String())
	}
	if len(paramStrs) == 0 {
		return out + ">"
	}
	return out + " (" + strings.Join(paramStrs, ", ") + ")>"
}

// ValidateParameters checks the parameters against the opcode definition.
func (ins Instruction) ValidateParameters() error {
	if len(ins.Params) != len(ins.OpCode.ParamTypes) {
		return fmt.Errorf("expected %d parameters, got %d", len(ins.OpCode.ParamTypes), len(ins.Params))
	}
	for i, param := range ins.Params {
		want := ins.OpCode.ParamTypes[i]
		// Check that `param.Typ` bytes is within the expected type mask.
		if param.Typ&want == 0 {
			return fmt.Errorf("invalid parameter %d %q for %q, expect %s, got %s", i+1, param, ins.OpCode.Name, want, param.Typ)
		}
		if !param.Fits(want) {
			return fmt.Errorf("parameter %d %q for %q overflows %s", i+1, param, ins.OpCode.Name, want)
		}
	}
	return nil
}

// Encode writes the instruction in buf. Every parameter value must already
// be resolved. Returns how many bytes have been written.
func (ins Instruction) Encode(buf []byte) (int, error) {
	size := ins.OpCode.Size()
	if len(buf) < size {
		return 0, fmt.Errorf("encode %s: need %d bytes, have %d", ins, size, len(buf))
	}
	if len(ins.Params) != len(ins.OpCode.ParamTypes) {
		return 0, fmt.Errorf("encode %s: expected %d parameters, got %d", ins, len(ins.OpCode.ParamTypes), len(ins.Params))
	}

	buf[0] = ins.OpCode.Code
	if ins.OpCode.Packed() {
		buf[1] = op.PackPair(op.Register(ins.Params[0].Value), op.Register(ins.Params[1].Value))
		return 2, nil
	}
	idx := 1
	for i, t := range ins.OpCode.ParamTypes {
		idx += t.Encoding(buf[idx:], uint16(ins.Params[i].Value))
	}
	return idx, nil
}

func registerParam(r op.Register) *Parameter {
	return &Parameter{Typ: r.ParamType(), Value: int64(r), Name: r.String()}
}

func decodeRegister(o op.OpCode, i int, r op.Register) (*Parameter, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%s parameter %d: selector %d: %w", o.Name, i+1, byte(r), ErrInvalidRegister)
	}
	if want := o.ParamTypes[i]; r.ParamType() != want {
		return nil, fmt.Errorf("%s parameter %d: %s is not a %s: %w", o.Name, i+1, r, want, ErrInvalidRegister)
	}
	return registerParam(r), nil
}

// DecodeNextInstruction decodes the instruction at the start of buf.
// Returns the instruction and how many bytes have been consumed.
func DecodeNextInstruction(buf []byte) (*Instruction, int, error) {
	if len(buf) == 0 {
		return nil, 0, fmt.Errorf("empty buffer")
	}

	o, ok := op.Lookup(buf[0])
	if !ok {
		return nil, 0, fmt.Errorf("0b%08b: %w", buf[0], ErrInvalidOpcode)
	}
	size := o.Size()
	if len(buf) < size {
		return nil, len(buf), fmt.Errorf("%s needs %d bytes, %d left: %w", o.Name, size, len(buf), ErrTruncated)
	}
	ins := &Instruction{OpCode: o, Size: size}

	if o.Packed() {
		a, b := op.UnpackPair(buf[1])
		for i, r := range []op.Register{a, b} {
			p, err := decodeRegister(o, i, r)
			if err != nil {
				return nil, size, err
			}
			ins.Params = append(ins.Params, p)
		}
		return ins, size, nil
	}

	idx := 1
	for i, t := range o.ParamTypes {
		v, n := t.Decoding(buf[idx:])
		idx += n
		if t.IsRegister() {
			p, err := decodeRegister(o, i, op.Register(v))
			if err != nil {
				return nil, size, err
			}
			ins.Params = append(ins.Params, p)
			continue
		}
		ins.Params = append(ins.Params, &Parameter{Typ: t, Value: int64(v)})
	}
	return ins, idx, nil
}
