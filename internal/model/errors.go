package model

import (
	"errors"
	"fmt"
)

// ErrRangeFormat is matched by every *RangeFormatError via errors.Is.
var ErrRangeFormat = errors.New("invalid port range")

// RangeFormatError reports a malformed range string or a range whose start exceeds its end.
// It is always raised before any network activity.
type RangeFormatError struct {
	// Range is the offending input as given by the caller.
	Range string

	// Reason describes what is wrong with it.
	Reason string
}

// Error implements the error interface.
func (e *RangeFormatError) Error() string {
	return fmt.Sprintf("invalid port range %q: %s", e.Range, e.Reason)
}

// Is makes errors.Is(err, ErrRangeFormat) succeed.
func (e *RangeFormatError) Is(target error) bool {
	return target == ErrRangeFormat
}

// ValidateRange checks that start does not exceed end.
func ValidateRange(start, end uint16) error {
	if start > end {
		return &RangeFormatError{
			Range:  fmt.Sprintf("%d-%d", start, end),
			Reason: "start must be <= end",
		}
	}
	return nil
}
