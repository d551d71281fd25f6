package protocol

import (
	"errors"
	"fmt"
)

// ErrProbeIO is matched by every *ProbeIOError.
var ErrProbeIO = errors.New("probe I/O failed")

// ProbeIOError reports a failed read or write while running a probe.
type ProbeIOError struct {
	// Probe is the name of the probe that failed.
	Probe string

	// Op is "write" or "read".
	Op string

	// Err is the underlying I/O error.
	Err error
}

// Error implements the error interface.
func (e *ProbeIOError) Error() string {
	return fmt.Sprintf("probe %s: %s failed: %v", e.Probe, e.Op, e.Err)
}

// Unwrap returns the I/O error.
func (e *ProbeIOError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProbeIO) succeed.
func (e *ProbeIOError) Is(target error) bool {
	return target == ErrProbeIO
}
