package scanner

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/portcat/internal/model"
	"github.com/nao1215/portcat/internal/netutil"
	"golang.org/x/time/rate"
)

// DefaultConcurrency caps the number of ports probed at once.
const DefaultConcurrency = 1000

// AddressResolver resolves a host and port to a TCP address.
type AddressResolver interface {
	Resolve(ctx context.Context, host string, port uint16) (*net.TCPAddr, error)
}

// ConnectionProber opens a TCP connection with a bounded wait.
type ConnectionProber interface {
	Attempt(ctx context.Context, addr net.Addr, timeout time.Duration) (net.Conn, error)
}

// remoteResolver is implemented by probers that pass host names to a proxy
// for resolution, such as a netutil.Prober configured for socks5h.
type remoteResolver interface {
	ResolvesRemotely() bool
}

// Identifier labels the service behind a live connection.
type Identifier interface {
	Identify(conn net.Conn, port uint16) model.ServiceLabel
}

// settings is shared by Orchestrator and Connector.
type settings struct {
	resolver    AddressResolver
	prober      ConnectionProber
	identifier  Identifier
	timeout     time.Duration
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Option configures an Orchestrator or a Connector.
// Options that do not apply to the receiving type are ignored.
type Option func(*settings)

// WithResolver replaces the address resolver.
func WithResolver(r AddressResolver) Option {
	return func(s *settings) {
		s.resolver = r
	}
}

// WithProber replaces the connection prober.
func WithProber(p ConnectionProber) Option {
	return func(s *settings) {
		s.prober = p
	}
}

// WithIdentifier enables fingerprinting of open ports.
// A nil Identifier disables it and open ports carry no service label.
func WithIdentifier(id Identifier) Option {
	return func(s *settings) {
		s.identifier = id
	}
}

// WithScanTimeout sets the per-port connect timeout used by Orchestrator.
func WithScanTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithConcurrency caps how many ports Orchestrator probes at once.
// Zero or a negative value removes the cap.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		s.concurrency = n
	}
}

// WithRateLimit limits Orchestrator to perSecond connection attempts per second.
// Zero or a negative value disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(s *settings) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		burst := max(1, int(perSecond))
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) (*settings, error) {
	s := &settings{
		timeout:     netutil.DefaultScanTimeout,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = netutil.NewResolver()
	}
	if s.prober == nil {
		p, err := netutil.NewProber()
		if err != nil {
			return nil, err
		}
		s.prober = p
	}
	return s, nil
}

// target returns the address to dial for host and port. Host names are
// resolved locally unless the prober leaves resolution to its proxy.
func (s *settings) target(ctx context.Context, host string, port uint16) (net.Addr, error) {
	if rr, ok := s.prober.(remoteResolver); ok && rr.ResolvesRemotely() {
		if strings.TrimSpace(host) == "" {
			return nil, &netutil.ResolutionError{
				Address: net.JoinHostPort(host, strconv.Itoa(int(port))),
				Err:     netutil.ErrEmptyHost,
			}
		}
		return netutil.HostAddr{Host: host, Port: port}, nil
	}
	addr, err := s.resolver.Resolve(ctx, host, port)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// identify returns the service label for conn, or the zero label when
// fingerprinting is disabled.
func (s *settings) identify(conn net.Conn, port uint16) model.ServiceLabel {
	if s.identifier == nil {
		return ""
	}
	return s.identifier.Identify(conn, port)
}
