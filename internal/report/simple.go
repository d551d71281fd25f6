package report

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/portcat/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-port latency to scan reports.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScan outputs the scan result in human-readable format.
func (w *SimpleWriter) WriteScan(result *model.ScanResult) (int, error) {
	if result == nil {
		return 0, nil
	}

	var sb strings.Builder
	writeBanner(&sb, "PORTCAT SCAN REPORT")

	fmt.Fprintf(&sb, "Host:      %s\n", result.Host)
	fmt.Fprintf(&sb, "Range:     %d-%d (%d ports)\n", result.Start, result.End, result.Range())
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Started:   %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "Duration:  %s\n\n", result.Duration.Round(time.Millisecond))

	writeSection(&sb, fmt.Sprintf("OPEN PORTS (%d)", len(result.Open)))
	if !result.HasOpen() {
		fmt.Fprintf(&sb, "  No open ports found in range %d-%d\n\n", result.Start, result.End)
		return w.output.Write([]byte(sb.String()))
	}

	if w.verbose {
		fmt.Fprintf(&sb, "  %-7s %-16s %s\n", "PORT", "SERVICE", "LATENCY")
	} else {
		fmt.Fprintf(&sb, "  %-7s %s\n", "PORT", "SERVICE")
	}
	for _, p := range result.Open {
		if w.verbose {
			fmt.Fprintf(&sb, "  %-7d %-16s %s\n", p.Port, p.Outcome.Service, p.Latency.Round(time.Microsecond))
		} else {
			fmt.Fprintf(&sb, "  %-7d %s\n", p.Port, p.Outcome.Service)
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteConnections outputs the connection records in human-readable format.
func (w *SimpleWriter) WriteConnections(infos []model.ConnectionInfo) (int, error) {
	var sb strings.Builder
	writeBanner(&sb, "PORTCAT CONNECT REPORT")
	writeSection(&sb, fmt.Sprintf("CONNECTIONS (%d)", len(infos)))

	for _, info := range infos {
		fmt.Fprintf(&sb, "  %s\n", info.Target())
		fmt.Fprintf(&sb, "    Remote:         %s\n", net.JoinHostPort(info.RemoteIP, strconv.Itoa(int(info.RemotePort))))
		fmt.Fprintf(&sb, "    Service:        %s\n", info.Service)
		fmt.Fprintf(&sb, "    Timeout:        %s\n", info.Timeout)
		fmt.Fprintf(&sb, "    Recv buffer:    %d\n", info.RecvBufferSize)
		fmt.Fprintf(&sb, "    Send buffer:    %d\n", info.SendBufferSize)
		fmt.Fprintf(&sb, "    Keep-alive:     %t\n", info.KeepAlive)
		fmt.Fprintf(&sb, "    Reuse address:  %t\n\n", info.ReuseAddress)
	}

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := max(0, (ruleWidth-len(title))/2)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
