package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/portcat/internal/model"
	"github.com/nao1215/portcat/internal/netutil"
	"golang.org/x/sync/errgroup"
)

// Orchestrator scans port ranges concurrently.
// Every port in a range is one unit of work: resolve, connect with the
// short scan timeout and, only when the connect succeeded, fingerprint.
// Units never talk to each other; each writes its own result slot and the
// orchestrator sorts the open ports after a full join.
//
// Design decision: Fan-out uses errgroup.SetLimit with a default cap of
// DefaultConcurrency rather than one goroutine per port because:
//  1. A full 1-65535 scan would otherwise hold tens of thousands of sockets
//     and exhaust the file descriptor limit
//  2. The cap changes only timing, never which ports are reported open
//  3. WithConcurrency(0) still gives the unbounded fan-out when wanted
//
// The optional rate limiter spaces connection attempts on top of the cap.
type Orchestrator struct {
	*settings
}

// NewOrchestrator creates an Orchestrator. Without options it resolves with
// the system resolver, dials directly with netutil.DefaultScanTimeout and
// does not fingerprint.
func NewOrchestrator(opts ...Option) (*Orchestrator, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{settings: s}, nil
}

// ScanRange probes every port in the inclusive range [start, end] on host.
//
// The range is validated before any network I/O and a *model.RangeFormatError
// is returned when start > end. The host is resolved once up front; a host
// that cannot be resolved at all fails the scan with a *netutil.ResolutionError.
// When the prober resolves through its proxy (socks5h), no local lookup is made.
// After that, every port is probed exactly once by an independent unit and
// per-port failures only mark that port as not open.
//
// Cancelling ctx stops scheduling new ports; the scan then returns ctx.Err().
func (o *Orchestrator) ScanRange(ctx context.Context, host string, start, end uint16) (*model.ScanResult, error) {
	if err := model.ValidateRange(start, end); err != nil {
		return nil, err
	}
	if _, err := o.target(ctx, host, start); err != nil {
		return nil, err
	}

	total := int(end) - int(start) + 1
	o.logger.Info("starting range scan",
		"host", host,
		"start", start,
		"end", end,
		"ports", total,
		"concurrency", o.concurrency,
	)

	startedAt := time.Now()

	// Each unit writes only its own slot.
	results := make([]model.PortResult, total)

	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	for i := range total {
		if ctx.Err() != nil {
			break
		}
		port := uint16(int(start) + i)
		g.Go(func() error {
			results[i] = o.probePort(ctx, host, port)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := model.NewScanResult(host, start, end, results)
	result.StartedAt = startedAt
	result.Duration = time.Since(startedAt)

	if result.HasOpen() {
		o.logger.Info("found open ports",
			"host", host,
			"count", len(result.Open),
			"ports", result.OpenPorts(),
			"duration", result.Duration,
		)
	} else {
		o.logger.Info("no open ports found",
			"host", host,
			"range", fmt.Sprintf("%d-%d", start, end),
			"duration", result.Duration,
		)
	}
	return result, nil
}

// probePort runs one unit of work. It never returns an error; every failure
// becomes a non-open outcome.
func (o *Orchestrator) probePort(ctx context.Context, host string, port uint16) model.PortResult {
	began := time.Now()
	result := model.PortResult{Port: port}

	o.logger.Debug("scanning port", "port", port)

	addr, err := o.target(ctx, host, port)
	if err != nil {
		o.logger.Debug("address resolution failed", "port", port, "error", err)
		result.Outcome = model.ResolutionFailedOutcome(err.Error())
		result.Latency = time.Since(began)
		return result
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			result.Outcome = model.ClosedOutcome(err.Error())
			result.Latency = time.Since(began)
			return result
		}
	}

	conn, err := o.prober.Attempt(ctx, addr, o.timeout)
	result.Latency = time.Since(began)
	if err != nil {
		reason := err.Error()
		var connErr *netutil.ConnectError
		if errors.As(err, &connErr) {
			reason = connErr.Reason()
		}
		o.logger.Warn("port closed", "port", port, "reason", reason)
		result.Outcome = model.ClosedOutcome(reason)
		return result
	}
	defer conn.Close()

	service := o.identify(conn, port)
	o.logger.Info("port open", "port", port, "service", service.String())
	result.Outcome = model.OpenOutcome(service)
	return result
}
