package netutil

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// Resolver turns a host and port into a connectable TCP address.
type Resolver struct {
	lookup *net.Resolver
}

// NewResolver creates a Resolver backed by net.DefaultResolver.
func NewResolver() *Resolver {
	return &Resolver{lookup: net.DefaultResolver}
}

// Resolve looks up host and returns the first address in resolver order.
// Any failure, including a malformed or empty host, is a *ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, host string, port uint16) (*net.TCPAddr, error) {
	address := net.JoinHostPort(host, strconv.Itoa(int(port)))

	host = strings.TrimSpace(host)
	if host == "" {
		return nil, &ResolutionError{Address: address, Err: ErrEmptyHost}
	}
	// Accept bracketed IPv6 literals the way users type them in URLs.
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	lookup := r.lookup
	if lookup == nil {
		lookup = net.DefaultResolver
	}

	addrs, err := lookup.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, &ResolutionError{Address: address, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolutionError{Address: address, Err: ErrNoAddress}
	}

	first := addrs[0]
	return &net.TCPAddr{IP: first.IP, Port: int(port), Zone: first.Zone}, nil
}
