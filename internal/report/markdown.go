package report

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/portcat/internal/model"
)

// MarkdownWriter outputs reports in GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteScan outputs the scan result in Markdown format.
func (w *MarkdownWriter) WriteScan(result *model.ScanResult) (int, error) {
	if result == nil {
		return 0, nil
	}

	md := markdown.NewMarkdown(w.output)

	md.H1("Portcat Scan Report")
	md.PlainText("")

	rows := [][]string{
		{"Host", "`" + result.Host + "`"},
		{"Range", strconv.Itoa(int(result.Start)) + "-" + strconv.Itoa(int(result.End))},
		{"Ports Probed", strconv.Itoa(result.Probed)},
		{"Open Ports", strconv.Itoa(len(result.Open))},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	if !result.StartedAt.IsZero() {
		rows = append(rows, []string{"Scan Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Open Ports")
	md.PlainText("")

	if !result.HasOpen() {
		md.Note("No open ports found in the scanned range.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	portRows := make([][]string, len(result.Open))
	for i, p := range result.Open {
		portRows[i] = []string{
			strconv.Itoa(int(p.Port)),
			p.Outcome.Service.String(),
			p.Latency.Round(time.Microsecond).String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Port", "Service", "Latency"},
		Rows:   portRows,
	})
	md.PlainText("")

	w.writeServiceChart(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteConnections outputs the connection records in Markdown format.
func (w *MarkdownWriter) WriteConnections(infos []model.ConnectionInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Portcat Connect Report")
	md.PlainText("")

	if len(infos) == 0 {
		md.Note("No connections were made.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{
			"`" + info.Target().String() + "`",
			net.JoinHostPort(info.RemoteIP, strconv.Itoa(int(info.RemotePort))),
			info.Service.String(),
			strconv.Itoa(info.RecvBufferSize),
			strconv.Itoa(info.SendBufferSize),
			strconv.FormatBool(info.KeepAlive),
			strconv.FormatBool(info.ReuseAddress),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Target", "Remote", "Service", "Recv Buffer", "Send Buffer", "Keep-Alive", "Reuse Address"},
		Rows:   rows,
	})
	md.PlainText("")

	md.Tip("All targets connected within " + infos[0].Timeout.String() + ".")
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeServiceChart writes a mermaid pie chart of detected services.
func (w *MarkdownWriter) writeServiceChart(md *markdown.Markdown, result *model.ScanResult) {
	order, counts := serviceCounts(result)
	if len(order) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Detected Services"),
		piechart.WithShowData(true),
	)
	for _, label := range order {
		chart.LabelAndIntValue(label.String(), uint64(counts[label])) //nolint:gosec // counts are positive
	}

	md.H2("Service Distribution")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [portcat](https://github.com/nao1215/portcat)*")
}
