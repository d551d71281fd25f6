// Package protocol identifies the application protocol behind an open TCP
// connection.
//
// # Architecture
//
// A Fingerprinter walks an ordered table of probes over a single live
// connection. Each Probe optionally writes a payload, reads a bounded reply
// and hands the bytes to its matcher. The first matcher that returns a label
// wins and the remaining probes are skipped, so a label is never revised.
//
// The default table is grouped into four stages which always run in this
// order:
//   - banner: passive read of whatever the service sends unprompted
//   - http: GET /, then OPTIONS / if the GET reply did not match
//   - database: MySQL, PostgreSQL, Redis, MongoDB
//   - mail: SMTP EHLO, POP3 USER, IMAP CAPABILITY
//
// When nothing matches the label is model.ServiceUnknown.
//
// # Failure handling
//
// Every read and write carries its own deadline. An I/O failure is reported
// to the logger as a *ProbeIOError and the probe is treated as a non-match;
// it never aborts identification.
package protocol
