package asm

import (
	"bytes"
	"errors"
	"testing"

	"go.creack.net/smol/op"
)

func compile(t *testing.T, src string) []byte {
	t.Helper()
	f, _, err := Compile("test.s", src)
	if err != nil {
		t.Fatalf("compile: %s", err)
	}
	return f.Instructions
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []byte
	}{
		{"addi", "main:\naddi r0 5\naddi r0 5\n", []byte{0b00000100, 0, 5, 0b00000100, 0, 5}},
		{"sti", "main:\nsti r1 3\n", []byte{0b01000100, 1, 3}},
		{"stm", "main:\nstm 256 25\n", []byte{0b01001100, 0, 1, 25}},
		{"stml", "main:\nstml 0x8000 0x0102\n", []byte{0b01001110, 0x00, 0x80, 0x02, 0x01}},
		{"str", "main:\nstr 0x10 r2\n", []byte{0b01001000, 0x10, 0, 2}},
		{"ldml", "main:\nldml 4 l0\n", []byte{0b01011010, 4, 0, byte(op.L0)}},
		{"register pair", "main:\neqr r7 r6\n", []byte{0b00110000, 0b0110_0111}},
		{"st pair", "main:\nst r1 r2\n", []byte{0b01000000, 0b0010_0001}},
		{"push imm16", "main:\npuil 258\n", []byte{0b10001100, 2, 1}},
		{"pop wide", "main:\nporl l1\n", []byte{0b10010100, byte(op.L1)}},
		{"uv", "main:\nuv\n", []byte{0b10110000}},
		{"syscall", "main:\nsyscall\n", []byte{0b11101111}},
		{"negative immediate", "main:\naddi r0 -1\n", []byte{0b00000100, 0, 0xff}},
		{"backward label", "main:\njmp main\n", []byte{0b11000000, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compile(t, tt.src); !bytes.Equal(got, tt.want) {
				t.Fatalf("got %08b, want %08b", got, tt.want)
			}
		})
	}
}

func TestBranchToLabelFiveBytesLater(t *testing.T) {
	f, _, err := Compile("test.s", "main:\neqr r7 r6\nbe done\ndone:\n")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0b00110000, 0b0110_0111, 0b11001000, 5, 0}
	if !bytes.Equal(f.Instructions, want) {
		t.Fatalf("got %v, want %v", f.Instructions, want)
	}
}

func TestForwardPatch(t *testing.T) {
	src := `main:
	be end
	addi r0 1
	stil l0 0x1234
end:
	ret
`
	got := compile(t, src)
	// The placeholder right after the branch opcode holds the label address.
	if got[1] != 10 || got[2] != 0 {
		t.Fatalf("patch site: got %v, want [10 0]", got[1:3])
	}
	if got[10] != 0b11110000 {
		t.Fatalf("expected ret at 10, got %08b", got[10])
	}
}

func TestMultiplePendingReferences(t *testing.T) {
	src := `main:
	call f
	jmp f
	bne g
f:
	ret
g:
	be f
`
	got := compile(t, src)
	for _, site := range []int{1, 4} {
		if addr := op.Endian.Uint16(got[site:]); addr != 9 {
			t.Errorf("site %d: got %d, want 9", site, addr)
		}
	}
	if addr := op.Endian.Uint16(got[7:]); addr != 10 {
		t.Errorf("g: got %d, want 10", addr)
	}
	if addr := op.Endian.Uint16(got[11:]); addr != 9 {
		t.Errorf("backward f: got %d, want 9", addr)
	}
}

// Addresses depend on the stream position, not the order labels are declared.
func TestLabelOrderIndependence(t *testing.T) {
	a := compile(t, "a:\njmp b\nb:\nmain:\njmp a\n")
	b := compile(t, "a:\njmp b\nmain:\nb:\njmp a\n")
	if !bytes.Equal(a, b) {
		t.Fatalf("got %v and %v", a, b)
	}
}

func TestDeterminism(t *testing.T) {
	src := "---\nmsg 2 \"hi\"\nbuf 4\n---\nmain:\nsv buf\ncall f\nsyscall\nf:\nret\n"
	f1, _, err := Compile("a.s", src)
	if err != nil {
		t.Fatal(err)
	}
	f2, _, err := Compile("a.s", src)
	if err != nil {
		t.Fatal(err)
	}
	d1, _ := f1.MarshalBinary()
	d2, _ := f2.MarshalBinary()
	if !bytes.Equal(d1, d2) {
		t.Fatal("assembling twice gave different artifacts")
	}
}

func TestStorageLayout(t *testing.T) {
	src := `---
msg 5 "hello"
buf 16
flag 1 "\x01"
---
main:
	sv buf
	sv flag
`
	f, _, err := Compile("test.s", src)
	if err != nil {
		t.Fatal(err)
	}
	wantOffsets := []uint16{0, 5, 21}
	for i, elem := range f.Storage {
		if elem.Offset != wantOffsets[i] {
			t.Errorf("item %d: offset %d, want %d", i, elem.Offset, wantOffsets[i])
		}
	}
	if f.Storage[0].Tag() != 5|op.InitializedFlag || f.Storage[1].Tag() != 16 {
		t.Errorf("unexpected tags %04x %04x", f.Storage[0].Tag(), f.Storage[1].Tag())
	}
	want := []byte{0b10101100, 5, 0, 0b10101100, 21, 0}
	if !bytes.Equal(f.Instructions, want) {
		t.Fatalf("got %v, want %v", f.Instructions, want)
	}
}

func TestEntry(t *testing.T) {
	f, _, err := Compile("test.s", "f:\nret\nmain:\ncall f\n")
	if err != nil {
		t.Fatal(err)
	}
	if f.Entry != 1 {
		t.Fatalf("entry: got %d, want 1", f.Entry)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{"duplicate label", "main:\nret\nmain:\n", ErrDuplicateLabel, 3},
		{"unresolved label", "main:\nbe nowhere\n", ErrUnresolvedLabel, 2},
		{"missing entry", "start:\nret\n", ErrMissingEntry, 0},
		{"undefined variable", "main:\nsv nope\n", ErrUndefinedVariable, 2},
		{"initializer length", "---\nmsg 4 \"abc\"\n---\nmain:\n", ErrInitializerLength, 2},
		{"immediate overflow", "main:\naddi r0 300\n", ErrInvalidOperand, 2},
		{"wrong operand kind", "main:\nret\nadd l0 r1\n", ErrInvalidOperand, 3},
		{"operand count", "main:\nadd r0\n", ErrInvalidOperand, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile("test.s", tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if e.Line != tt.line {
				t.Errorf("line: got %d, want %d", e.Line, tt.line)
			}
			if e.Construct == "" {
				t.Error("missing construct")
			}
		})
	}
}

func TestMnemonicCase(t *testing.T) {
	lower, _, err := Compile("test.s", "main:\nadd r0 r1\nret\n")
	if err != nil {
		t.Fatal(err)
	}
	upper, _, err := Compile("test.s", "main:\nADD r0 r1\nRet\n")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(lower.Instructions, upper.Instructions) {
		t.Fatalf("expected %x, got %x", lower.Instructions, upper.Instructions)
	}
}

func TestAllUnresolvedReported(t *testing.T) {
	_, _, err := Compile("test.s", "main:\njmp a\njmp b\n")
	if !errors.Is(err, ErrUnresolvedLabel) {
		t.Fatalf("expected unresolved label, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"reference to a", "reference to b"} {
		if !bytes.Contains([]byte(msg), []byte(want)) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
