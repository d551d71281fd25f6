// Package scanner composes address resolution, connection probing and
// service fingerprinting into the two entry points of portcat.
//
// Orchestrator scans a port range concurrently. Every port is probed by its
// own unit of work; a unit's failure is recorded as a non-open outcome and
// never affects its siblings. Results are joined, filtered to open ports and
// sorted before they are returned.
//
// Connector processes an explicit list of ports one at a time and reports
// socket diagnostics for each connection. The first resolution or connect
// failure aborts the whole call.
package scanner
