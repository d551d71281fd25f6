package model

import "time"

// ConnectionInfo is the record produced for each successfully connected target
// in direct-connect mode.
type ConnectionInfo struct {
	Host    string        `json:"host"`
	Port    uint16        `json:"port"`
	Timeout time.Duration `json:"timeout_ns"`

	// RecvBufferSize and SendBufferSize are SO_RCVBUF and SO_SNDBUF as reported by the kernel.
	RecvBufferSize int `json:"recv_buffer_size"`
	SendBufferSize int `json:"send_buffer_size"`

	KeepAlive    bool `json:"keepalive"`
	ReuseAddress bool `json:"reuse_address"`

	// RemoteIP and RemotePort describe the peer the socket is connected to.
	RemoteIP   string `json:"remote_ip"`
	RemotePort uint16 `json:"remote_port"`

	// Service is empty when fingerprinting was disabled.
	Service ServiceLabel `json:"service,omitempty"`
}

// Target returns the requested address of the connection.
func (c ConnectionInfo) Target() TargetAddress {
	return NewTargetAddress(c.Host, c.Port)
}
