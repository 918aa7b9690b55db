package parser

import (
	"fmt"
	"strconv"
	"strings"

	"go.creack.net/smol/op"
)

// Parameter represents a parameter in an instruction.
// Typ holds every operand type the parameter could satisfy; the opcode
// definition picks one.
type Parameter struct {
	Typ   op.ParamType
	Value int64  // Register selector, number, or resolved address.
	Name  string // Register, label or variable name.
}

func (p Parameter) String() string {
	if p.Name != "" {
		return p.Name
	}
	return strconv.FormatInt(p.Value, 10)
}

// parseNumber accepts decimal, 0x, 0o and 0b notations with an optional sign.
func parseNumber(in string) (int64, error) {
	s := strings.ReplaceAll(in, "_", "")
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	var (
		n   int64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = strconv.ParseInt(s[2:], 16, 64)
	} else if strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O") {
		n, err = strconv.ParseInt(s[2:], 8, 64)
	} else if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		n, err = strconv.ParseInt(s[2:], 2, 64)
	} else {
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", in, err)
	}
	if neg {
		n = -n
	}
	return n, nil
}

// ParseParameter converts an operand token into a Parameter.
// Registers resolve to their width, numbers to any numeric operand and
// other identifiers to a label or variable reference.
func ParseParameter(tok string) (*Parameter, error) {
	if tok == "" {
		return nil, fmt.Errorf("empty parameter")
	}
	if r, ok := op.ParseRegister(tok); ok {
		return &Parameter{Typ: r.ParamType(), Value: int64(r), Name: tok}, nil
	}
	if c := tok[0]; c == '-' || c == '+' || ('0' <= c && c <= '9') {
		n, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return &Parameter{Typ: op.TNum, Value: n}, nil
	}
	return &Parameter{Typ: op.TLabel | op.TVar, Name: tok}, nil
}

// Fits reports whether the value can be encoded as t. Negative numbers
// are accepted down to the two's complement minimum of the width.
func (p Parameter) Fits(t op.ParamType) bool {
	if t&(op.TLabel|op.TVar) != 0 && p.Name != "" {
		return true
	}
	limit := t.Max()
	return p.Value <= limit && p.Value >= -(limit+1)/2
}
