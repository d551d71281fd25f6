package model

import (
	"fmt"
	"time"
)

// PortState is the classification of a probed port.
type PortState int

const (
	// PortClosed means the connection was refused, timed out or otherwise failed.
	PortClosed PortState = iota

	// PortOpen means a TCP connection completed within the mode's timeout.
	PortOpen

	// PortResolutionFailed means the host could not be resolved for this probe.
	PortResolutionFailed
)

// String returns a lowercase name for the state.
func (s PortState) String() string {
	switch s {
	case PortOpen:
		return "open"
	case PortClosed:
		return "closed"
	case PortResolutionFailed:
		return "resolution-failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s PortState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PortState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*s = PortOpen
	case "closed":
		*s = PortClosed
	case "resolution-failed":
		*s = PortResolutionFailed
	default:
		return fmt.Errorf("unknown port state %q", string(text))
	}
	return nil
}

// ProbeOutcome is produced once per probed port and never mutated afterwards.
// Service is only meaningful for open ports; Reason only for the failure states.
type ProbeOutcome struct {
	State   PortState    `json:"state"`
	Service ServiceLabel `json:"service,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

// OpenOutcome returns an Open outcome. Pass the zero ServiceLabel when
// fingerprinting was not performed.
func OpenOutcome(service ServiceLabel) ProbeOutcome {
	return ProbeOutcome{State: PortOpen, Service: service}
}

// ClosedOutcome returns a Closed outcome carrying the connect failure text.
func ClosedOutcome(reason string) ProbeOutcome {
	return ProbeOutcome{State: PortClosed, Reason: reason}
}

// ResolutionFailedOutcome returns a ResolutionFailed outcome carrying the resolver error text.
func ResolutionFailedOutcome(reason string) ProbeOutcome {
	return ProbeOutcome{State: PortResolutionFailed, Reason: reason}
}

// IsOpen reports whether the outcome is Open.
func (o ProbeOutcome) IsOpen() bool {
	return o.State == PortOpen
}

// PortResult pairs a port with its outcome.
type PortResult struct {
	Port    uint16        `json:"port"`
	Outcome ProbeOutcome  `json:"outcome"`
	Latency time.Duration `json:"latency_ns"`
}
