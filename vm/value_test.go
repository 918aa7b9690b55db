package vm

import (
	"errors"
	"testing"

	"go.creack.net/smol/op"
)

func TestValueOperators(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b Value) (Value, error)
		a, b Value
		want Value
	}{
		{"add wraps 8", Add, V8(200), V8(100), V8(44)},
		{"add wraps 16", Add, V16(0xffff), V16(1), V16(0)},
		{"sub wraps 8", Sub, V8(0), V8(1), V8(0xff)},
		{"and", And, V16(0xff00), V16(0x0ff0), V16(0x0f00)},
		{"or", Or, V8(0xf0), V8(0x0f), V8(0xff)},
		{"xor", Xor, V8(0xff), V8(0x0f), V8(0xf0)},
	}
	for _, tt := range tests {
		got, err := tt.fn(tt.a, tt.b)
		if err != nil {
			t.Fatalf("%s: %s", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := Add(V8(1), V16(1)); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("Expected width mismatch, got %v", err)
	}
	if _, err := Compare(V16(1), V8(1)); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("Expected width mismatch, got %v", err)
	}
	if got := Not(V8(0x0f)); got != V8(0xf0) {
		t.Errorf("not: got %s", got)
	}
}

func TestCompare(t *testing.T) {
	for _, tt := range []struct {
		a, b Value
		want uint16
	}{
		{V8(5), V8(5), op.FlagEqual},
		{V8(6), V8(5), op.FlagGreater},
		{V16(5), V16(0x100), op.FlagLess},
	} {
		got, err := Compare(tt.a, tt.b)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("compare %s %s: got 0b%03b, want 0b%03b", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRegisterWidths(t *testing.T) {
	var r Registers
	if err := r.Set(op.R0, V16(1)); !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("Expected width mismatch, got %v", err)
	}
	if err := r.Set(op.SP, V16(0x1234)); err != nil || r.SP != 0x1234 {
		t.Errorf("sp: got 0x%04x %v", r.SP, err)
	}
	if _, err := r.Get(op.Register(16)); !errors.Is(err, ErrInvalidRegister) {
		t.Errorf("Expected invalid register, got %v", err)
	}
}

func TestMemoryWrap(t *testing.T) {
	var m Memory
	m.Write(0xffff, V16(0x0102))
	if m.Bytes()[0xffff] != 0x02 || m.Bytes()[0] != 0x01 {
		t.Fatalf("Expected the high byte at address 0, got % x % x", m.Bytes()[0xffff], m.Bytes()[0])
	}
	if got := m.Read(0xffff, W16); got != V16(0x0102) {
		t.Fatalf("got %s", got)
	}
	if &m.Stack()[0] != &m.Bytes()[0] || &m.Variables()[0] != &m.Bytes()[op.VariableBase] {
		t.Fatal("regions do not alias the memory")
	}
}
