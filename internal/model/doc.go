// Package model defines the core data structures shared by the portcat scanner.
//
// This package contains the following main types:
//   - TargetAddress: A host and port pair to probe
//   - ServiceLabel: The fixed set of service names the fingerprinter can emit
//   - ProbeOutcome: The classification of a single probed port
//   - ScanResult: The aggregated, ascending list of open ports from a range scan
//   - ConnectionInfo: Socket-level diagnostics for a direct connection
//
// The models carry JSON tags so that report writers and any embedding layer
// can serialize them without additional wrapper types.
package model
