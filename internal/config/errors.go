package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrEmptyHost is returned when no host is configured.
	ErrEmptyHost = errors.New("invalid host: must not be empty")

	// ErrInvalidTimeout is returned when the direct connect timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidScanTimeout is returned when the range scan timeout is not positive.
	ErrInvalidScanTimeout = errors.New("invalid scan timeout: must be positive")

	// ErrInvalidProbeTimeout is returned when the fingerprint I/O timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidRate is returned when the connect rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: expected text or json")

	// ErrInvalidPortList is returned when a port list contains no ports.
	ErrInvalidPortList = errors.New("invalid port list: no ports given")

	// ErrInvalidPort is returned when a port is not a number between 1 and 65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")
)
