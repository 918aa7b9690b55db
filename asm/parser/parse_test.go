package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.creack.net/smol/op"
)

func TestLexer(t *testing.T) {
	l := NewLexer("test", "main:\n\taddi r0 0x0f # comment\n---\nbuf 4 \"ab\\tc\"\n---\n")
	var got []itemType
	for {
		i := l.nextItem()
		got = append(got, i.typ)
		if i.typ == itemEOF || i.typ == itemError {
			break
		}
	}
	want := []itemType{
		itemLabel, itemNewline,
		itemIdentifier, itemIdentifier, itemNumber, itemComment,
		itemSeparator, itemNewline,
		itemIdentifier, itemNumber, itemRawString, itemNewline,
		itemSeparator, itemEOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d: got %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10", 10},
		{"-3", -3},
		{"+7", 7},
		{"0x1F", 31},
		{"0b1010", 10},
		{"0o17", 15},
		{"1_000", 1000},
		{"-0x10", -16},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if err != nil {
			t.Fatalf("%q: %s", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %d, want %d", tt.in, got, tt.want)
		}
	}
	if _, err := parseNumber("0xZZ"); err == nil {
		t.Error("expected error for 0xZZ")
	}
}

func TestParse(t *testing.T) {
	src := `# Variables.
---
msg 5 "hello"
buf 16
---

main:
	sv msg
	addi r0 5
	eqrl l0 l1
	be done
done:
	syscall
`
	p, err := Parse("test.s", src)
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	if len(p.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(p.Variables))
	}
	if v := p.Variables[0]; v.Name != "msg" || v.Size != 5 || string(v.Init) != "hello" {
		t.Errorf("unexpected first variable %+v", v)
	}
	if v := p.Variables[1]; v.Name != "buf" || v.Size != 16 || v.Init != nil {
		t.Errorf("unexpected second variable %+v", v)
	}
	if len(p.Nodes) != 7 {
		t.Fatalf("expected 7 nodes, got %d", len(p.Nodes))
	}
	if l, ok := p.Nodes[0].(*Label); !ok || l.Name != "main" {
		t.Errorf("expected main label, got %v", p.Nodes[0])
	}
	ins, ok := p.Nodes[2].(*Instruction)
	if !ok || ins.OpCode.Name != "addi" {
		t.Fatalf("expected addi, got %v", p.Nodes[2])
	}
	if ins.Params[0].Value != int64(op.R0) || ins.Params[1].Value != 5 {
		t.Errorf("unexpected addi params %v", ins)
	}
	if ins.Line != 9 {
		t.Errorf("expected addi on line 9, got %d", ins.Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown instruction", "main:\n\tfoo r0\n", "unknown instruction"},
		{"wrong width", "main:\n\tadd l0 r1\n", "expect reg8"},
		{"missing param", "main:\n\taddi r0\n", "expected 2 parameters"},
		{"overflow", "main:\n\taddi r0 300\n", "overflows"},
		{"register as immediate", "main:\n\tsti r0 r1\n", "expect imm8"},
		{"bad string", "---\nmsg 2 \"ab\n---\n", "missing closing quote"},
		{"duplicate variable", "---\na 1\na 2\n---\n", "duplicate variable"},
		{"unterminated block", "---\na 1\n", "unterminated"},
		{"bad number", "main:\n\taddi r0 12ab\n", "bad number"},
		{"string operand", "main:\n\tadd r0 \"x\"\n", `unexpected string "\"x\"" in "add" parameters`},
		{"label operand", "main:\n\tjmp done:\n", `unexpected label "done"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.s", tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, err)
			}
		})
	}
}

func sampleParam(t op.ParamType) *Parameter {
	switch t {
	case op.TReg8:
		return registerParam(op.R3)
	case op.TReg16:
		return registerParam(op.L1)
	case op.TImm8:
		return &Parameter{Typ: t, Value: 0xa5}
	default:
		return &Parameter{Typ: t, Value: 0x1234}
	}
}

// Every opcode must decode to what was encoded.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, o := range op.OpCodeTable {
		ins := Instruction{OpCode: o}
		for _, elem := range o.ParamTypes {
			ins.Params = append(ins.Params, sampleParam(elem))
		}
		buf := make([]byte, 8)
		n, err := ins.Encode(buf)
		if err != nil {
			t.Fatalf("%s: encode: %s", o, err)
		}
		if n != o.Size() {
			t.Fatalf("%s: encoded %d bytes, want %d", o, n, o.Size())
		}
		got, m, err := DecodeNextInstruction(buf[:n])
		if err != nil {
			t.Fatalf("%s: decode: %s", o, err)
		}
		if m != n || got.OpCode.Code != o.Code {
			t.Fatalf("%s: decoded %s (%d bytes)", o, got.OpCode, m)
		}
		for i, p := range got.Params {
			if p.Value != ins.Params[i].Value {
				t.Errorf("%s: param %d: got %d, want %d", o, i, p.Value, ins.Params[i].Value)
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"reserved", []byte{0b01_10_0000}, ErrInvalidOpcode},
		{"truncated", []byte{0b11_001_000, 0x05}, ErrTruncated},
		{"selector overflow", []byte{0b01_00_0_1_0_0, 0x1f, 3}, ErrInvalidRegister},
		{"wide register in 8 bits slot", []byte{0b00_000_0_0_0, byte(op.L0)}, ErrInvalidRegister},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeNextInstruction(tt.buf)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPrettyPrint(t *testing.T) {
	p, err := Parse("test.s", "main:\n\tstm 256 25\n\tret\n")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for _, n := range p.Nodes {
		buf.WriteString(n.PrettyPrint(p.Nodes) + "\n")
	}
	want := "main:\n\tstm     256 25\n\tret\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
