// Package main provides the entry point for the portcat CLI.
//
// portcat connects to TCP ports, scans port ranges and identifies the
// service listening on each open port.
//
// Usage:
//
//	portcat connect <host> -p 22,80,443
//	portcat scan <host> -r 1-1024
//	portcat <host> -s 1-1024
//
// See --help for all available options.
package main

func main() {
	Execute()
}
