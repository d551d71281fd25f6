//go:build !unix

package netutil

import "net"

// readSocketOptions is a no-op where golang.org/x/sys/unix is unavailable.
func readSocketOptions(_ *net.TCPConn, _ *SocketDiagnostics) error {
	return nil
}
