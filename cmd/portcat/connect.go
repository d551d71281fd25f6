package main

import (
	"context"
	"log/slog"

	"github.com/nao1215/portcat/internal/config"
	"github.com/nao1215/portcat/internal/report"
	"github.com/nao1215/portcat/internal/scanner"
	"github.com/spf13/cobra"
)

// NewConnectCmd creates the connect command.
func NewConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect [host]",
		Short: "Connect to specific ports and report socket details",
		Long: `Connect opens a TCP connection to each given port, one after another.

For every connection it identifies the service and reports socket details:
receive and send buffer sizes, keep-alive, address reuse and the peer address.
The first port that cannot be resolved or reached aborts the command.

Examples:
  # Connect to 80 and 443 on localhost
  portcat connect

  # Connect to SSH and Redis with a 2 second timeout
  portcat connect db.internal -p 22,6379 -t 2

  # Output a JSON report
  portcat connect example.com -p 443 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConnectCmd,
	}

	addConnectFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

func runConnectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	return runWithSignals(cmd, cfg, runConnect)
}

// runConnect connects to cfg.Ports on cfg.Host and writes the report.
func runConnect(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	opts, err := scannerOptions(cfg, logger)
	if err != nil {
		return err
	}
	connector, err := scanner.NewConnector(opts...)
	if err != nil {
		return err
	}

	infos, err := connector.Connect(ctx, cfg.Host, cfg.Ports, cfg.Timeout)
	if err != nil {
		return err
	}

	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteConnections(infos)
		return err
	})
}
