package model

import (
	"slices"
	"time"
)

// ScanResult is the aggregate of a range scan.
// Open holds only ports classified Open, deduplicated and in ascending port order.
type ScanResult struct {
	// Host is the scanned host exactly as requested.
	Host string `json:"host"`

	// Start and End are the inclusive bounds of the scanned range.
	Start uint16 `json:"start"`
	End   uint16 `json:"end"`

	// Probed is the number of ports that were attempted.
	Probed int `json:"probed"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time from the first probe to the join.
	Duration time.Duration `json:"duration_ns"`

	// Open contains the open ports in ascending order.
	Open []PortResult `json:"open"`
}

// NewScanResult builds a ScanResult from unordered per-port results.
// Non-open results are dropped, duplicates are collapsed and the rest is sorted by port.
func NewScanResult(host string, start, end uint16, results []PortResult) *ScanResult {
	open := make([]PortResult, 0)
	seen := make(map[uint16]struct{}, len(results))
	for _, r := range results {
		if !r.Outcome.IsOpen() {
			continue
		}
		if _, dup := seen[r.Port]; dup {
			continue
		}
		seen[r.Port] = struct{}{}
		open = append(open, r)
	}
	slices.SortFunc(open, func(a, b PortResult) int {
		return int(a.Port) - int(b.Port)
	})

	return &ScanResult{
		Host:   host,
		Start:  start,
		End:    end,
		Probed: len(results),
		Open:   open,
	}
}

// OpenPorts returns the open port numbers in ascending order.
func (r *ScanResult) OpenPorts() []uint16 {
	ports := make([]uint16, len(r.Open))
	for i, p := range r.Open {
		ports[i] = p.Port
	}
	return ports
}

// HasOpen reports whether at least one port was open.
func (r *ScanResult) HasOpen() bool {
	return len(r.Open) > 0
}

// Range returns the total number of ports in the scanned range.
func (r *ScanResult) Range() int {
	return int(r.End) - int(r.Start) + 1
}
