package report

import (
	"io"

	"github.com/nao1215/portcat/internal/model"
)

// Writer renders results to an output destination.
type Writer interface {
	// WriteScan outputs the result of a range scan.
	// Returns the number of bytes written and any error encountered.
	WriteScan(result *model.ScanResult) (int, error)

	// WriteConnections outputs the records of a direct connect.
	WriteConnections(infos []model.ConnectionInfo) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteScan outputs the scan result to all configured Writers.
func (m *MultiWriter) WriteScan(result *model.ScanResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteScan(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteConnections outputs the connection records to all configured Writers.
func (m *MultiWriter) WriteConnections(infos []model.ConnectionInfo) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteConnections(infos)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// serviceCounts tallies open ports per service label in first-seen order.
// Ports scanned without fingerprinting are not counted.
func serviceCounts(result *model.ScanResult) ([]model.ServiceLabel, map[model.ServiceLabel]int) {
	var order []model.ServiceLabel
	counts := make(map[model.ServiceLabel]int)
	for _, p := range result.Open {
		label := p.Outcome.Service
		if !label.IsSet() {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	return order, counts
}
