package sysbridge

import (
	"fmt"

	"go.creack.net/smol/vm"
)

// New returns the bridge registered under name.
func New(name string) (vm.Bridge, error) {
	switch name {
	case NameStdio:
		return NewStdio(), nil
	case NameUnix, "":
		return newHost()
	default:
		return nil, fmt.Errorf("unknown syscall bridge %q", name)
	}
}
