package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/portcat/internal/config"
	"github.com/nao1215/portcat/internal/log"
	"github.com/nao1215/portcat/internal/netutil"
	"github.com/nao1215/portcat/internal/protocol"
	"github.com/nao1215/portcat/internal/report"
	"github.com/nao1215/portcat/internal/scanner"
	"github.com/spf13/cobra"
)

// runFunc executes one mode with a fully built configuration.
type runFunc func(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error

// addConnectFlags registers the flags shared by the root and connect commands.
func addConnectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", config.DefaultPorts,
		"Comma separated ports or ranges to connect to (e.g. 22,80,8000-8010)")
	cmd.Flags().IntP("timeout", "t", defaultTimeoutSeconds,
		"Connect timeout in seconds")
	addProbeFlags(cmd)
}

// addProbeFlags registers the flags that control dialing and detection.
func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().String("proxy", "",
		"Dial through a SOCKS5 proxy (socks5://[user:pass@]host:port)")
	cmd.Flags().Bool("no-detect", false,
		"Do not fingerprint services on open ports")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"Timeout for each fingerprint read and write")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed); a text summary is still printed")
}

// flagChanged reports whether the flag exists on cmd and was set by the user.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// buildConfig creates a Config from defaults, the config file, the host
// argument and the command flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// An explicitly given config file must exist; a missing default file is fine.
	if path := config.FindConfigFile(configPath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config file %s: %w", path, err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if len(args) > 0 {
		cfg.Host = args[0]
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flagChanged(cmd, "port") {
		s, err := flags.GetString("port")
		if err != nil {
			return err
		}
		ports, err := config.ParsePorts(s)
		if err != nil {
			return err
		}
		cfg.Ports = ports
	}
	if flagChanged(cmd, "timeout") {
		seconds, err := flags.GetInt("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	for _, name := range []string{"range", "scan"} {
		if flagChanged(cmd, name) {
			s, err := flags.GetString(name)
			if err != nil {
				return err
			}
			cfg.Range = s
		}
	}
	if flagChanged(cmd, "scan-timeout") {
		d, err := flags.GetDuration("scan-timeout")
		if err != nil {
			return err
		}
		cfg.ScanTimeout = d
	}
	if flagChanged(cmd, "probe-timeout") {
		d, err := flags.GetDuration("probe-timeout")
		if err != nil {
			return err
		}
		cfg.ProbeTimeout = d
	}
	if flagChanged(cmd, "concurrency") {
		n, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = n
	}
	if flagChanged(cmd, "rate") {
		r, err := flags.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.Rate = r
	}
	if flagChanged(cmd, "no-detect") {
		noDetect, err := flags.GetBool("no-detect")
		if err != nil {
			return err
		}
		cfg.Detect = !noDetect
	}
	if flagChanged(cmd, "proxy") {
		proxyURL, err := flags.GetString("proxy")
		if err != nil {
			return err
		}
		cfg.ProxyURL = proxyURL
	}
	if flagChanged(cmd, "verbose") {
		verbose, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = verbose
	}
	if flagChanged(cmd, "log-level") {
		level, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if flagChanged(cmd, "log-format") {
		format, err := flags.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.LogFormat = format
	}
	jsonSet, markdownSet := flagChanged(cmd, "json"), flagChanged(cmd, "markdown")
	if jsonSet {
		v, err := flags.GetBool("json")
		if err != nil {
			return err
		}
		cfg.JSONReport = v
	}
	if markdownSet {
		v, err := flags.GetBool("markdown")
		if err != nil {
			return err
		}
		cfg.MarkdownReport = v
	}
	// A format chosen on the command line replaces the one from the config file.
	if jsonSet && cfg.JSONReport && !markdownSet {
		cfg.MarkdownReport = false
	}
	if markdownSet && cfg.MarkdownReport && !jsonSet {
		cfg.JSONReport = false
	}
	if flagChanged(cmd, "output") {
		output, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.ReportFile = output
	}
	return nil
}

// runWithSignals builds the logger, cancels on SIGINT or SIGTERM and runs fn.
func runWithSignals(cmd *cobra.Command, cfg *config.Config, fn runFunc) error {
	logger, err := log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return fn(ctx, cmd, cfg, logger)
}

// scannerOptions returns the options shared by connect and scan.
func scannerOptions(cfg *config.Config, logger *slog.Logger) ([]scanner.Option, error) {
	prober, err := netutil.NewProber(netutil.WithProxyURL(cfg.ProxyURL))
	if err != nil {
		return nil, err
	}
	if cfg.ProxyURL != "" {
		logger.Info("dialing through proxy", "proxy", cfg.ProxyURL)
	}

	opts := []scanner.Option{
		scanner.WithProber(prober),
		scanner.WithLogger(logger),
	}
	if cfg.Detect {
		opts = append(opts, scanner.WithIdentifier(protocol.NewFingerprinter(
			protocol.WithIOTimeout(cfg.ProbeTimeout),
			protocol.WithLogger(logger),
		)))
	}
	return opts, nil
}

// openReportWriter returns the writer selected by cfg and a function that
// releases its destination. With a report file, the selected format goes to
// the file and a text summary is still printed to stdout.
func openReportWriter(cmd *cobra.Command, cfg *config.Config) (report.Writer, func() error, error) {
	stdout := cmd.OutOrStdout()
	if cfg.ReportFile == "" {
		return formatWriter(stdout, cfg), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports reveal network layout, so they are readable by the owner only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := report.NewMultiWriter(
		formatWriter(f, cfg),
		report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)),
	)
	return w, f.Close, nil
}

// formatWriter returns the writer for the report format chosen in cfg.
func formatWriter(output io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// writeReport opens the configured writer, calls write and closes it.
func writeReport(cmd *cobra.Command, cfg *config.Config, write func(report.Writer) error) error {
	w, closeFn, err := openReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	return errors.Join(write(w), closeFn())
}
