// Package sysbridge provides the syscall bridges behind the VM syscall trap.
//
// Register convention: r0 is the call number and receives the result,
// r1 is the file descriptor (or the path offset for open), r2 the buffer
// offset from the variable pointer and r3 the length.
//
// Reads and writes move at most MaxTransfer bytes per call so that a
// byte count never collides with ErrorResult. Programs loop on short
// counts.
package sysbridge

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"go.creack.net/smol/vm"
)

var log = commonlog.GetLogger("smol.sysbridge")

// ErrorResult is written to r0 when the host call fails.
const ErrorResult = 0xff

// MaxTransfer is the largest count a read or write reports.
const MaxTransfer = ErrorResult - 1

var ErrUnknownSyscall = errors.New("unknown syscall")

// Names of the bridges, as used in the configuration.
const (
	NameUnix  = "unix"
	NameStdio = "stdio"
)

func unknown(c vm.Call) error {
	return fmt.Errorf("syscall %d: %w", c.Number, ErrUnknownSyscall)
}

func exit(c vm.Call) error {
	return &vm.ExitError{Status: int(c.Args[0])}
}

// buffer returns the [r2, r2+r3) slice of the variable view, capped to
// MaxTransfer bytes.
func buffer(c vm.Call) ([]byte, error) {
	off, n := int(c.Args[1]), int(c.Args[2])
	if off+n > len(c.Data) {
		return nil, fmt.Errorf("buffer [%d:%d] past the end of memory", off, off+n)
	}
	return c.Data[off : off+min(n, MaxTransfer)], nil
}

// path reads the NUL terminated string at r1 in the variable view.
func path(c vm.Call) (string, error) {
	off := int(c.Args[0])
	if off >= len(c.Data) {
		return "", fmt.Errorf("path offset %d past the end of memory", off)
	}
	end := bytes.IndexByte(c.Data[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated path at offset %d", off)
	}
	return string(c.Data[off : off+end]), nil
}

// result converts a host result to the r0 byte.
func result(n int, err error) byte {
	if err != nil || n < 0 || n > MaxTransfer {
		if err != nil {
			log.Warningf("host call failed: %s", err)
		}
		return ErrorResult
	}
	return byte(n)
}
