package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidLevel is returned by ParseLevel for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level: expected debug, info, warn or error")

// Options configures NewLogger.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string

	// Format is FormatText or FormatJSON. Empty means FormatText.
	Format string

	// Verbose forces debug level regardless of Level.
	Verbose bool
}

// ParseLevel converts a level name to a slog.Level. Matching is case-insensitive
// and "warning" is accepted for warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// NewLogger creates a redacting logger that writes to w.
func NewLogger(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.Format {
	case "", FormatText:
		handler = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q: expected %s or %s", opts.Format, FormatText, FormatJSON)
	}

	return slog.New(NewRedactingHandler(handler)), nil
}
