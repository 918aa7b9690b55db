package sysbridge

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"go.creack.net/smol/asm"
	"go.creack.net/smol/vm"
)

func runWith(t *testing.T, b vm.Bridge, src string) (*vm.Machine, error) {
	t.Helper()
	f, _, err := asm.Compile("test.s", src)
	if err != nil {
		t.Fatalf("compile: %s", err)
	}
	m := vm.New(b)
	if err := m.Load(f); err != nil {
		t.Fatalf("load: %s", err)
	}
	return m, m.Run()
}

func TestStdioWrite(t *testing.T) {
	var out bytes.Buffer
	s := &Stdio{Out: &out}
	m, err := runWith(t, s, `---
msg 6 "hello\n"
---
main:
	sv msg
	sti r0 1
	sti r1 1
	sti r2 0
	sti r3 6
	syscall
`)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("Expected hello, got %q", out.String())
	}
	if m.Regs.R[0] != 6 {
		t.Errorf("Expected r0=6 bytes written, got %d", m.Regs.R[0])
	}
}

func TestWriteCappedBelowErrorResult(t *testing.T) {
	var out bytes.Buffer
	s := &Stdio{Out: &out}
	m, err := runWith(t, s, `---
buf 255
---
main:
	sv buf
	sti r0 1
	sti r1 1
	sti r2 0
	sti r3 255
	syscall
`)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != MaxTransfer {
		t.Fatalf("Expected %d bytes written, got %d", MaxTransfer, out.Len())
	}
	if m.Regs.R[0] != MaxTransfer {
		t.Errorf("Expected r0=%d, got %d", MaxTransfer, m.Regs.R[0])
	}
}

func TestStdioRead(t *testing.T) {
	s := &Stdio{In: strings.NewReader("abc")}
	m, err := runWith(t, s, `---
buf 4
---
main:
	sv buf
	sti r0 0
	sti r1 0
	sti r2 1
	sti r3 3
	syscall
`)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Mem.Variables()[1:4]; string(got) != "abc" {
		t.Fatalf("Expected abc at buf+1, got %q", got)
	}
	if m.Regs.R[0] != 3 {
		t.Errorf("Expected r0=3, got %d", m.Regs.R[0])
	}
}

func TestStdioOpenReadClose(t *testing.T) {
	s := &Stdio{FS: fstest.MapFS{"data.txt": {Data: []byte("xyz")}}}
	m, err := runWith(t, s, `---
path 9 "data.txt\x00"
buf 3
fd 1
---
main:
	sv path
	sti r0 2
	sti r1 0
	syscall
	st r1 r0
	sti r0 0
	sti r2 9
	sti r3 3
	syscall
	sti r0 3
	syscall
	st r4 r0
`)
	if err != nil {
		t.Fatal(err)
	}
	if m.Regs.R[1] != 3 {
		t.Errorf("Expected first fd to be 3, got %d", m.Regs.R[1])
	}
	if got := m.Mem.Variables()[9:12]; string(got) != "xyz" {
		t.Errorf("Expected xyz in buf, got %q", got)
	}
	if m.Regs.R[4] != 0 {
		t.Errorf("Expected close to return 0, got %d", m.Regs.R[4])
	}
	if len(s.files) != 0 {
		t.Errorf("Expected no open file, got %d", len(s.files))
	}
}

func TestStdioErrors(t *testing.T) {
	s := &Stdio{}
	tests := []struct {
		name string
		call vm.Call
	}{
		{"bad fd", vm.Call{Number: vm.SysWrite, Args: [3]byte{9, 0, 1}, Data: make([]byte, 4)}},
		{"buffer overflow", vm.Call{Number: vm.SysRead, Args: [3]byte{0, 3, 5}, Data: make([]byte, 4)}},
		{"unterminated path", vm.Call{Number: vm.SysOpen, Data: []byte("abc")}},
		{"close unknown", vm.Call{Number: vm.SysClose, Args: [3]byte{7}}},
	}
	for _, tt := range tests {
		got, err := s.Syscall(tt.call)
		if err != nil {
			t.Fatalf("%s: host errors must not be fatal, got %s", tt.name, err)
		}
		if got != ErrorResult {
			t.Errorf("%s: Expected error result, got %d", tt.name, got)
		}
	}

	if _, err := s.Syscall(vm.Call{Number: 42}); !errors.Is(err, ErrUnknownSyscall) {
		t.Errorf("Expected unknown syscall, got %v", err)
	}
}

func TestExit(t *testing.T) {
	_, err := runWith(t, &Stdio{}, "main:\nsti r0 60\nsti r1 4\nsyscall\n")
	var exit *vm.ExitError
	if !errors.As(err, &exit) || exit.Status != 4 {
		t.Fatalf("Expected exit 4, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if b, err := New(NameStdio); err != nil || b == nil {
		t.Fatalf("stdio: %v", err)
	}
	if _, err := New("nope"); err == nil {
		t.Fatal("Expected unknown bridge error")
	}
}
