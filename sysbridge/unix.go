//go:build unix

package sysbridge

import (
	"golang.org/x/sys/unix"

	"go.creack.net/smol/vm"
)

// Unix forwards the calls to the host file descriptors.
type Unix struct{}

// Syscall implements vm.Bridge.
func (Unix) Syscall(c vm.Call) (byte, error) {
	switch c.Number {
	case vm.SysRead:
		buf, err := buffer(c)
		if err != nil {
			return result(0, err), nil
		}
		return result(unix.Read(int(c.Args[0]), buf)), nil
	case vm.SysWrite:
		buf, err := buffer(c)
		if err != nil {
			return result(0, err), nil
		}
		return result(unix.Write(int(c.Args[0]), buf)), nil
	case vm.SysOpen:
		name, err := path(c)
		if err != nil {
			return result(0, err), nil
		}
		return result(unix.Open(name, unix.O_RDONLY|unix.O_CLOEXEC, 0)), nil
	case vm.SysClose:
		return result(0, unix.Close(int(c.Args[0]))), nil
	case vm.SysExit:
		return 0, exit(c)
	default:
		return 0, unknown(c)
	}
}
