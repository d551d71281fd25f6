package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/portcat/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ConnectReport is the JSON document written for a direct connect.
type ConnectReport struct {
	Connections []model.ConnectionInfo `json:"connections"`
}

// WriteScan outputs the scan result as a JSON object.
func (w *JSONWriter) WriteScan(result *model.ScanResult) (int, error) {
	return w.writeJSON(result)
}

// WriteConnections outputs the records wrapped in a ConnectReport.
func (w *JSONWriter) WriteConnections(infos []model.ConnectionInfo) (int, error) {
	if infos == nil {
		infos = []model.ConnectionInfo{}
	}
	return w.writeJSON(ConnectReport{Connections: infos})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
