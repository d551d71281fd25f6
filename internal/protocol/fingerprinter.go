package protocol

import (
	"log/slog"
	"net"
	"time"

	"github.com/nao1215/portcat/internal/model"
)

// DefaultIOTimeout bounds every individual probe read and write.
const DefaultIOTimeout = 3 * time.Second

// Detection describes how a label was reached.
type Detection struct {
	// Label is the identified service, model.ServiceUnknown when nothing matched.
	Label model.ServiceLabel

	// Probe is the name of the matching probe. Empty when nothing matched.
	Probe string

	// Stage is the stage of the matching probe. Empty when nothing matched.
	Stage Stage
}

// Matched reports whether a probe produced the label.
func (d Detection) Matched() bool {
	return d.Probe != ""
}

// Fingerprinter runs an ordered probe table against a live connection.
// It holds no per-connection state and is safe for concurrent use.
//
// The first probe whose matcher accepts a reply decides the label and no
// later probe is sent. When nothing matches the label is model.ServiceUnknown.
//
// Design decision: Every read and write gets its own deadline instead of
// one budget for the whole table because:
//  1. A slow stage cannot starve the stages after it
//  2. The worst case stays predictable: probes times the I/O timeout
//  3. It keeps each probe's outcome independent of its position
type Fingerprinter struct {
	probes    []Probe
	ioTimeout time.Duration
	logger    *slog.Logger
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithIOTimeout sets the per-read and per-write deadline.
// Non-positive values are ignored.
func WithIOTimeout(timeout time.Duration) Option {
	return func(f *Fingerprinter) {
		if timeout > 0 {
			f.ioTimeout = timeout
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fingerprinter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithProbes replaces the probe table. Probes run in slice order.
func WithProbes(probes []Probe) Option {
	return func(f *Fingerprinter) {
		f.probes = append([]Probe(nil), probes...)
	}
}

// NewFingerprinter creates a Fingerprinter using DefaultProbes.
func NewFingerprinter(opts ...Option) *Fingerprinter {
	f := &Fingerprinter{
		probes:    DefaultProbes(),
		ioTimeout: DefaultIOTimeout,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Identify returns the service label for conn.
func (f *Fingerprinter) Identify(conn net.Conn, port uint16) model.ServiceLabel {
	d := f.Detect(conn, port)
	if !d.Matched() {
		f.logger.Debug("no probe matched", slog.Int("port", int(port)))
	}
	return d.Label
}

// Detect walks the probe table and stops at the first match.
// I/O failures are logged and treated as a non-match.
func (f *Fingerprinter) Detect(conn net.Conn, port uint16) Detection {
	for _, p := range f.probes {
		reply, err := f.exchange(conn, p)
		if err != nil {
			f.logger.Debug("probe did not complete",
				slog.Int("port", int(port)),
				slog.String("stage", string(p.Stage)),
				slog.Any("error", err),
			)
			continue
		}

		label, ok := p.Match(reply)
		if !ok {
			continue
		}

		f.logger.Debug("service detected",
			slog.Int("port", int(port)),
			slog.String("probe", p.Name),
			slog.String("service", label.String()),
		)
		return Detection{Label: label, Probe: p.Name, Stage: p.Stage}
	}

	return Detection{Label: model.ServiceUnknown}
}

// exchange writes the probe payload, if any, and reads one reply.
func (f *Fingerprinter) exchange(conn net.Conn, p Probe) ([]byte, error) {
	if p.Payload != nil {
		if err := conn.SetWriteDeadline(time.Now().Add(f.ioTimeout)); err != nil {
			return nil, &ProbeIOError{Probe: p.Name, Op: "write", Err: err}
		}
		if _, err := conn.Write(p.Payload); err != nil {
			return nil, &ProbeIOError{Probe: p.Name, Op: "write", Err: err}
		}
	}

	if err := conn.SetReadDeadline(time.Now().Add(f.ioTimeout)); err != nil {
		return nil, &ProbeIOError{Probe: p.Name, Op: "read", Err: err}
	}

	size := p.ReadSize
	if size <= 0 {
		size = 1024
	}
	buf := make([]byte, size)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return nil, &ProbeIOError{Probe: p.Name, Op: "read", Err: err}
	}
	return buf[:n], nil
}
