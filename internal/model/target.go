package model

import (
	"net"
	"strconv"
)

// TargetAddress is a host and TCP port pair.
// It is treated as an immutable value once created.
type TargetAddress struct {
	// Host is a host name or IP literal as given by the caller.
	Host string `json:"host"`

	// Port is the TCP port.
	Port uint16 `json:"port"`
}

// NewTargetAddress creates a TargetAddress.
func NewTargetAddress(host string, port uint16) TargetAddress {
	return TargetAddress{Host: host, Port: port}
}

// String returns the address in "host:port" form, bracketing IPv6 literals.
func (t TargetAddress) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}
