// Package netutil provides the TCP plumbing underneath the scanner:
// name resolution, bounded-time connection attempts and socket diagnostics.
//
// # Error taxonomy
//
// Resolution failures are reported as *ResolutionError and match
// ErrResolution with errors.Is. Refused, timed-out or otherwise failed
// connects are reported as *ConnectError and match ErrUnreachable.
// Callers decide whether either is fatal: the range scanner records them per
// port, the direct connector aborts on the first one.
//
// # Proxies
//
// A Prober dials directly by default. WithProxyURL routes connections through
// a SOCKS5 proxy using golang.org/x/net/proxy.
package netutil
