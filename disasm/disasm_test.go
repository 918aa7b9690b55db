package disasm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.creack.net/smol/asm"
	"go.creack.net/smol/assets"
	"go.creack.net/smol/smolfile"
)

func compile(t *testing.T, name, src string) *smolfile.File {
	t.Helper()
	f, _, err := asm.Compile(name, src)
	if err != nil {
		t.Fatalf("Failed to compile %q: %s.", name, err)
	}
	return f
}

func marshal(t *testing.T, f *smolfile.File) []byte {
	t.Helper()
	buf, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestRoundTrip(t *testing.T) {
	for _, name := range assets.Names() {
		t.Run(name, func(t *testing.T) {
			src, err := assets.Source(name)
			if err != nil {
				t.Fatal(err)
			}
			f := compile(t, name, string(src))

			p, err := Disasm(f)
			if err != nil {
				t.Fatalf("Failed to disassemble: %s.", err)
			}
			out := p.PrettyPrint()
			f2 := compile(t, name+" (disasm)", out)
			if !bytes.Equal(marshal(t, f), marshal(t, f2)) {
				t.Fatalf("Round trip mismatch.\nSource:\n%s", out)
			}
		})
	}
}

func TestSynthesizedNames(t *testing.T) {
	const src = `---
a 1
b 2 "hi"
---
main:
	sv      b
loop:
	inc     r0
	eqi     r0 3
	bne     loop
	jmp     end
end:
`
	p, err := Disasm(compile(t, "test", src))
	if err != nil {
		t.Fatal(err)
	}
	const want = `---
v0 1
v1 2 "hi"
---

main:
	sv      v1

L_0003:
	inc     r0
	eqi     r0 3
	bne     L_0003
	jmp     L_000e

L_000e:
`
	if got := p.PrettyPrint(); got != want {
		t.Fatalf("Unexpected disassembly.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestDisasmErrors(t *testing.T) {
	for name, f := range map[string]*smolfile.File{
		"reserved opcode": {Instructions: []byte{0b11_000_110}},
		"truncated":       {Instructions: []byte{0b11_000_000, 0x01}},
		"mid instruction": {Instructions: []byte{0b11_000_000, 0x01, 0x00}},
		"sparse storage": {
			Storage:      []smolfile.StorageItem{{Size: 1, Offset: 4}},
			Instructions: []byte{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Disasm(f); err == nil {
				t.Fatal("Expected error.")
			}
		})
	}

	_, err := Disasm(&smolfile.File{Instructions: []byte{0b11_000_000, 0x01, 0x00}})
	if !errors.Is(err, ErrBadTarget) {
		t.Fatalf("Expected ErrBadTarget, got %v.", err)
	}
}

func TestFindSource(t *testing.T) {
	src, err := assets.Source("countdown")
	if err != nil {
		t.Fatal(err)
	}
	p, name, err := FindSource(compile(t, "countdown", string(src)), assets.Examples)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || name != "countdown.s" {
		t.Fatalf("Expected countdown.s, got %q.", name)
	}
	if !strings.Contains(p.PrettyPrint(), "print:") {
		t.Fatalf("Expected the original labels, got:\n%s", p.PrettyPrint())
	}

	p, _, err = FindSource(compile(t, "other", "main:\n\tinc r7\n"), assets.Examples)
	if err != nil || p != nil {
		t.Fatalf("Expected no match, got %v, %v.", p, err)
	}
}
