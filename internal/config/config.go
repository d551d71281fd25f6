package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/portcat/internal/log"
	"github.com/nao1215/portcat/internal/netutil"
	"github.com/nao1215/portcat/internal/protocol"
	"github.com/nao1215/portcat/internal/scanner"
)

// Default configuration values.
const (
	// DefaultHost is probed when no host argument is given.
	DefaultHost = "localhost"

	// DefaultPorts is the port list used by connect when none is given.
	DefaultPorts = "80,443"

	// DefaultTimeout is the direct connect timeout.
	DefaultTimeout = netutil.DefaultConnectTimeout

	// DefaultScanTimeout is the per-port connect timeout of a range scan.
	// It favors throughput over patience.
	DefaultScanTimeout = netutil.DefaultScanTimeout

	// DefaultProbeTimeout bounds every fingerprint read and write.
	DefaultProbeTimeout = protocol.DefaultIOTimeout

	// DefaultConcurrency caps the number of ports probed at once.
	DefaultConcurrency = scanner.DefaultConcurrency

	// AppName is the application name used for XDG directory paths.
	AppName = "portcat"
)

// Config holds all options for a connect or scan run.
// It is populated from defaults, then the config file, then CLI flags.
type Config struct {
	// Host is the target host name or IP literal.
	Host string

	// Ports is the explicit port list for connect.
	Ports []uint16

	// Range is the "<start>-<end>" string for scan.
	Range string

	// Timeout is the direct connect timeout.
	Timeout time.Duration

	// ScanTimeout is the per-port connect timeout used by scan.
	ScanTimeout time.Duration

	// ProbeTimeout is the per-read and per-write timeout of fingerprinting.
	ProbeTimeout time.Duration

	// Concurrency caps in-flight probes during a scan.
	// Zero or a negative value removes the cap.
	Concurrency int

	// Rate limits connection attempts per second during a scan. Zero disables it.
	Rate float64

	// Detect enables service fingerprinting of open ports.
	Detect bool

	// ProxyURL is an optional socks5:// or socks5h:// proxy.
	ProxyURL string

	// Verbose forces debug logging.
	Verbose bool

	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// LogFormat is text or json.
	LogFormat string

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file path.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	ports, _ := ParsePorts(DefaultPorts) //nolint:errcheck // constant input
	return &Config{
		Host:         DefaultHost,
		Ports:        ports,
		Timeout:      DefaultTimeout,
		ScanTimeout:  DefaultScanTimeout,
		ProbeTimeout: DefaultProbeTimeout,
		Concurrency:  DefaultConcurrency,
		Detect:       true,
		LogLevel:     "info",
		LogFormat:    log.FormatText,
	}
}

// XDGConfigDir returns the XDG config directory for portcat.
// On Linux: ~/.config/portcat
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the path of the config file inside XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrEmptyHost
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ScanTimeout <= 0 {
		return ErrInvalidScanTimeout
	}
	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}
	if c.Rate < 0 {
		return ErrInvalidRate
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != log.FormatText && c.LogFormat != log.FormatJSON {
		return ErrInvalidLogFormat
	}
	return nil
}
