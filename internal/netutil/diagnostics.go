package netutil

import (
	"net"
	"strconv"
)

// SocketDiagnostics holds socket options read back from a connected socket.
type SocketDiagnostics struct {
	RecvBufferSize int
	SendBufferSize int
	KeepAlive      bool
	ReuseAddress   bool
	RemoteIP       string
	RemotePort     uint16
}

// ReadDiagnostics reads socket options and the peer address from conn.
// Socket options are only available for direct *net.TCPConn connections on
// Unix platforms; otherwise they are left at their zero values.
func ReadDiagnostics(conn net.Conn) (SocketDiagnostics, error) {
	var d SocketDiagnostics

	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		d.RemoteIP = tcpAddr.IP.String()
		d.RemotePort = uint16(tcpAddr.Port) //nolint:gosec // TCP ports fit in uint16
	} else if conn.RemoteAddr() != nil {
		host, port, err := net.SplitHostPort(conn.RemoteAddr().String())
		if err == nil {
			d.RemoteIP = host
			if n, err := strconv.ParseUint(port, 10, 16); err == nil {
				d.RemotePort = uint16(n)
			}
		}
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return d, nil
	}

	if err := readSocketOptions(tcpConn, &d); err != nil {
		return d, err
	}
	return d, nil
}
