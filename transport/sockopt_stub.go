//go:build !linux

// File: transport/sockopt_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "syscall"

// reuseAddrControl is a no-op on platforms without the linux sockopt path.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
