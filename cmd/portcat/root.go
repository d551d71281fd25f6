package main

import (
	"fmt"
	"os"

	"github.com/nao1215/portcat/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for portcat.
//
// Invoked without a subcommand, portcat connects to the ports given with -p,
// or scans the range given with -s.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portcat [host]",
		Short: "TCP connect, port scan and service fingerprinting",
		Long: `portcat connects to TCP endpoints, scans port ranges for reachability and
identifies the application protocol behind each open port.

Service detection reads the banner a server sends on connect and then, if
needed, sends small HTTP, database and mail probes.

Examples:
  # Connect to the default ports (80,443) on localhost
  portcat

  # Connect to specific ports with a 2 second timeout
  portcat example.com -p 22,80 -t 2

  # Scan a port range
  portcat example.com -s 1-1024`,
		Version:       getVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging (same as --log-level debug)")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .portcat in current directory, XDG config or home)")

	addConnectFlags(cmd)
	cmd.Flags().StringP("scan", "s", "", "Scan the given port range instead of connecting (e.g. 1-1024)")
	addReportFlags(cmd)

	cmd.AddCommand(NewConnectCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if flagChanged(cmd, "scan") {
		return runWithSignals(cmd, cfg, runScan)
	}
	return runWithSignals(cmd, cfg, runConnect)
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultTimeoutSeconds is the --timeout default, in whole seconds.
var defaultTimeoutSeconds = int(config.DefaultTimeout.Seconds())
