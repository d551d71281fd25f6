package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrResolution is matched by every *ResolutionError.
	ErrResolution = errors.New("address resolution failed")

	// ErrUnreachable is matched by every *ConnectError.
	ErrUnreachable = errors.New("target unreachable")

	// ErrNoAddress is returned when a lookup succeeds but yields no address.
	ErrNoAddress = errors.New("no addresses found")

	// ErrEmptyHost is returned when resolving an empty host string.
	ErrEmptyHost = errors.New("empty host")

	// ErrUnsupportedProxy is returned for proxy URLs whose scheme is not socks5 or socks5h.
	ErrUnsupportedProxy = errors.New("unsupported proxy scheme: expected socks5 or socks5h")
)

// ResolutionError reports that a host could not be turned into a socket address.
type ResolutionError struct {
	// Address is the "host:port" that was being resolved.
	Address string

	// Err is the underlying resolver error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Address, e.Err)
}

// Unwrap returns the resolver error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrResolution) succeed.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// ConnectError reports that a TCP connect did not complete within its timeout.
type ConnectError struct {
	// Address is the dialed "ip:port".
	Address string

	// Err is the underlying dial error.
	Err error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Address, e.Err)
}

// Unwrap returns the dial error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnreachable) succeed.
func (e *ConnectError) Is(target error) bool {
	return target == ErrUnreachable
}

// Timeout reports whether the connect attempt ran out of time.
func (e *ConnectError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Refused reports whether the peer actively refused the connection.
func (e *ConnectError) Refused() bool {
	return errors.Is(e.Err, syscall.ECONNREFUSED)
}

// Reason returns a short classification of the failure for logs and reports.
func (e *ConnectError) Reason() string {
	switch {
	case e.Refused():
		return "connection refused"
	case e.Timeout():
		return "timeout"
	default:
		return e.Err.Error()
	}
}
