//go:build unix

package sysbridge

import "go.creack.net/smol/vm"

func newHost() (vm.Bridge, error) { return Unix{}, nil }
