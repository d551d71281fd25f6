package scanner

import (
	"context"
	"time"

	"github.com/nao1215/portcat/internal/model"
	"github.com/nao1215/portcat/internal/netutil"
)

// Connector performs sequential, fail-fast connects to explicit ports.
// Each target is fully processed (connect, fingerprint, socket diagnostics)
// before the next one starts, and the connection is closed afterwards.
//
// Design decision: Connector stops at the first failure instead of
// collecting partial results because:
//  1. It verifies specific targets, where one unreachable port already
//     answers the question
//  2. Ports keep the order the user gave, so "first failure" is well defined
//  3. Range scans that tolerate failures are the Orchestrator's job
type Connector struct {
	*settings
}

// NewConnector creates a Connector. Concurrency, rate and scan timeout
// options are ignored.
func NewConnector(opts ...Option) (*Connector, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return &Connector{settings: s}, nil
}

// Connect connects to each port of host in order, waiting at most timeout
// per connect. A non-positive timeout means netutil.DefaultConnectTimeout.
//
// Each target is resolved (locally, or by a socks5h proxy), connected,
// fingerprinted and inspected before the next one starts. The first resolution or connect failure is returned
// immediately and no later port is attempted.
func (c *Connector) Connect(ctx context.Context, host string, ports []uint16, timeout time.Duration) ([]model.ConnectionInfo, error) {
	if timeout <= 0 {
		timeout = netutil.DefaultConnectTimeout
	}

	infos := make([]model.ConnectionInfo, 0, len(ports))
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := c.connectOne(ctx, host, port, timeout)
		if err != nil {
			c.logger.Error("connect failed", "host", host, "port", port, "error", err)
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (c *Connector) connectOne(ctx context.Context, host string, port uint16, timeout time.Duration) (model.ConnectionInfo, error) {
	addr, err := c.target(ctx, host, port)
	if err != nil {
		return model.ConnectionInfo{}, err
	}

	conn, err := c.prober.Attempt(ctx, addr, timeout)
	if err != nil {
		return model.ConnectionInfo{}, err
	}
	defer conn.Close()

	c.logger.Info("connected", "address", addr.String())

	info := model.ConnectionInfo{
		Host:    host,
		Port:    port,
		Timeout: timeout,
	}

	info.Service = c.identify(conn, port)
	if info.Service.IsSet() {
		c.logger.Info("service detected", "port", port, "service", info.Service.String())
	}

	diag, err := netutil.ReadDiagnostics(conn)
	if err != nil {
		c.logger.Warn("socket diagnostics incomplete", "port", port, "error", err)
	}
	info.RecvBufferSize = diag.RecvBufferSize
	info.SendBufferSize = diag.SendBufferSize
	info.KeepAlive = diag.KeepAlive
	info.ReuseAddress = diag.ReuseAddress
	info.RemoteIP = diag.RemoteIP
	info.RemotePort = diag.RemotePort

	return info, nil
}
