//go:build !unix

package sysbridge

import "go.creack.net/smol/vm"

// Without host file descriptors, fall back on the portable bridge.
func newHost() (vm.Bridge, error) {
	log.Noticef("no unix host bridge on this platform, using %s", NameStdio)
	return NewStdio(), nil
}
