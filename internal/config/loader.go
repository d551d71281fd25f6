package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".portcat"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the YAML configuration file.
// Every field is optional; unset fields leave the defaults untouched.
type File struct {
	Host         string         `yaml:"host,omitempty"`
	Ports        string         `yaml:"ports,omitempty"`
	Timeout      *time.Duration `yaml:"timeout,omitempty"`
	ProbeTimeout *time.Duration `yaml:"probe_timeout,omitempty"`
	Detect       *bool          `yaml:"detect,omitempty"`
	Proxy        string         `yaml:"proxy,omitempty"`
	Scan         ScanSection    `yaml:"scan,omitempty"`
	Log          LogSection     `yaml:"log,omitempty"`
	Report       ReportSection  `yaml:"report,omitempty"`
}

// ScanSection holds range scan settings.
type ScanSection struct {
	Range       string         `yaml:"range,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	Concurrency *int           `yaml:"concurrency,omitempty"`
	Rate        *float64       `yaml:"rate,omitempty"`
}

// LogSection holds logging settings.
type LogSection struct {
	Level   string `yaml:"level,omitempty"`
	Format  string `yaml:"format,omitempty"`
	Verbose *bool  `yaml:"verbose,omitempty"`
}

// ReportSection holds report settings.
type ReportSection struct {
	// Format is text, json or markdown.
	Format string `yaml:"format,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// LoadConfigFile reads and decodes a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f.Host != "" {
		cfg.Host = f.Host
	}
	if f.Ports != "" {
		ports, err := ParsePorts(f.Ports)
		if err != nil {
			return fmt.Errorf("config file ports: %w", err)
		}
		cfg.Ports = ports
	}
	if f.Timeout != nil {
		cfg.Timeout = *f.Timeout
	}
	if f.ProbeTimeout != nil {
		cfg.ProbeTimeout = *f.ProbeTimeout
	}
	if f.Detect != nil {
		cfg.Detect = *f.Detect
	}
	if f.Proxy != "" {
		cfg.ProxyURL = f.Proxy
	}

	if f.Scan.Range != "" {
		cfg.Range = f.Scan.Range
	}
	if f.Scan.Timeout != nil {
		cfg.ScanTimeout = *f.Scan.Timeout
	}
	if f.Scan.Concurrency != nil {
		cfg.Concurrency = *f.Scan.Concurrency
	}
	if f.Scan.Rate != nil {
		cfg.Rate = *f.Scan.Rate
	}

	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	if f.Log.Verbose != nil {
		cfg.Verbose = *f.Log.Verbose
	}

	switch f.Report.Format {
	case "", "text":
	case "json":
		cfg.JSONReport = true
	case "markdown":
		cfg.MarkdownReport = true
	default:
		return fmt.Errorf("config file report format %q: expected text, json or markdown", f.Report.Format)
	}
	if f.Report.Output != "" {
		cfg.ReportFile = f.Report.Output
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, when it is given
//  2. .portcat in the current directory
//  3. config.yaml in the XDG config directory
//  4. .portcat in the user's home directory
//
// Returns the path of the first file found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}
	return firstExisting(searchPaths())
}

func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, XDGConfigFile())
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
