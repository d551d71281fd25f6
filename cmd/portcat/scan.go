package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/portcat/internal/config"
	"github.com/nao1215/portcat/internal/report"
	"github.com/nao1215/portcat/internal/scanner"
	"github.com/spf13/cobra"
)

// errNoRange is returned when scan runs without a port range.
var errNoRange = errors.New("no port range specified: provide one with --range (e.g. 1-1024)")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [host]",
		Short: "Scan a port range and identify open services",
		Long: `Scan probes every port in an inclusive range concurrently and lists the
open ones in ascending order, each with its detected service.

A port that refuses or does not answer within the scan timeout is closed.
The range is validated before any connection is made.

Examples:
  # Scan the well-known ports of localhost
  portcat scan -r 1-1024

  # Scan with a longer per-port timeout and at most 200 connects per second
  portcat scan example.com -r 1-65535 --scan-timeout 500ms --rate 200

  # Skip service detection and write a Markdown report
  portcat scan 10.0.0.5 -r 20-30 --no-detect --markdown -o report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("range", "r", "",
		"Inclusive port range to scan (e.g. 1-1024)")
	cmd.Flags().Duration("scan-timeout", config.DefaultScanTimeout,
		"Connect timeout for each scanned port")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Maximum number of ports probed at once (0 for no limit)")
	cmd.Flags().Float64("rate", 0,
		"Maximum connection attempts per second (0 for no limit)")
	addProbeFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	return runWithSignals(cmd, cfg, runScan)
}

// runScan scans cfg.Range on cfg.Host and writes the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Range == "" {
		return errNoRange
	}
	start, end, err := config.ParseRange(cfg.Range)
	if err != nil {
		return err
	}

	opts, err := scannerOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(opts,
		scanner.WithScanTimeout(cfg.ScanTimeout),
		scanner.WithConcurrency(cfg.Concurrency),
		scanner.WithRateLimit(cfg.Rate),
	)

	orchestrator, err := scanner.NewOrchestrator(opts...)
	if err != nil {
		return err
	}

	result, err := orchestrator.ScanRange(ctx, cfg.Host, start, end)
	if err != nil {
		return err
	}

	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteScan(result)
		return err
	})
}
