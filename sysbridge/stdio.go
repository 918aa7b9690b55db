package sysbridge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.creack.net/smol/vm"
)

// Stdio is a portable bridge. File descriptors 0, 1 and 2 map to In, Out
// and Err, open resolves paths in FS.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	FS  fs.FS

	files map[byte]any
	next  byte
}

// NewStdio creates a bridge on the process standard streams and the
// working directory.
func NewStdio() *Stdio {
	return &Stdio{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		FS:  os.DirFS("."),
	}
}

func (s *Stdio) file(fd byte) (any, bool) {
	switch fd {
	case 0:
		return s.In, s.In != nil
	case 1:
		return s.Out, s.Out != nil
	case 2:
		return s.Err, s.Err != nil
	}
	f, ok := s.files[fd]
	return f, ok
}

func (s *Stdio) read(c vm.Call) (int, error) {
	buf, err := buffer(c)
	if err != nil {
		return 0, err
	}
	f, ok := s.file(c.Args[0])
	r, isReader := f.(io.Reader)
	if !ok || !isReader {
		return 0, fmt.Errorf("read: bad file descriptor %d", c.Args[0])
	}
	n, err := r.Read(buf)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

func (s *Stdio) write(c vm.Call) (int, error) {
	buf, err := buffer(c)
	if err != nil {
		return 0, err
	}
	f, ok := s.file(c.Args[0])
	w, isWriter := f.(io.Writer)
	if !ok || !isWriter {
		return 0, fmt.Errorf("write: bad file descriptor %d", c.Args[0])
	}
	return w.Write(buf)
}

func (s *Stdio) open(c vm.Call) (int, error) {
	name, err := path(c)
	if err != nil {
		return 0, err
	}
	if s.FS == nil {
		return 0, fmt.Errorf("open %q: no filesystem", name)
	}
	if s.files == nil {
		s.files = map[byte]any{}
		s.next = 3
	}
	fd := s.next
	for _, used := s.files[fd]; used; _, used = s.files[fd] {
		fd++
		if fd == ErrorResult {
			return 0, fmt.Errorf("open %q: too many open files", name)
		}
	}
	f, err := s.FS.Open(name)
	if err != nil {
		return 0, err
	}
	s.files[fd] = f
	s.next = fd + 1
	return int(fd), nil
}

func (s *Stdio) close(c vm.Call) (int, error) {
	fd := c.Args[0]
	f, ok := s.files[fd]
	if !ok {
		return 0, fmt.Errorf("close: bad file descriptor %d", fd)
	}
	delete(s.files, fd)
	if fd < s.next {
		s.next = fd
	}
	if cl, ok := f.(io.Closer); ok {
		return 0, cl.Close()
	}
	return 0, nil
}

// Syscall implements vm.Bridge.
func (s *Stdio) Syscall(c vm.Call) (byte, error) {
	switch c.Number {
	case vm.SysRead:
		return result(s.read(c)), nil
	case vm.SysWrite:
		return result(s.write(c)), nil
	case vm.SysOpen:
		return result(s.open(c)), nil
	case vm.SysClose:
		return result(s.close(c)), nil
	case vm.SysExit:
		return 0, exit(c)
	default:
		return 0, unknown(c)
	}
}
