//go:build unix

package netutil

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// readSocketOptions queries SO_RCVBUF, SO_SNDBUF, SO_KEEPALIVE and SO_REUSEADDR.
func readSocketOptions(conn *net.TCPConn, d *SocketDiagnostics) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to access raw socket: %w", err)
	}

	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		get := func(opt int) int {
			if sockErr != nil {
				return 0
			}
			v, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, opt) //nolint:gosec // fd comes from the runtime
			if err != nil {
				sockErr = fmt.Errorf("getsockopt %d: %w", opt, err)
				return 0
			}
			return v
		}

		d.RecvBufferSize = get(unix.SO_RCVBUF)
		d.SendBufferSize = get(unix.SO_SNDBUF)
		d.KeepAlive = get(unix.SO_KEEPALIVE) != 0
		d.ReuseAddress = get(unix.SO_REUSEADDR) != 0
	})
	if ctrlErr != nil {
		return fmt.Errorf("failed to read socket options: %w", ctrlErr)
	}
	return sockErr
}
