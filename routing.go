package rb

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RoutingClient is a synchronous convenience client that routes and
// executes a single command inline, with one-shot retry on connection or
// timeout errors. It is also the factory for MappingClient/FanoutClient and
// their MapManager-scoped sessions.
type RoutingClient struct {
	cluster Cluster
	router  Router
	pool    *RoutingPool

	autoBatch bool
	log       *zap.Logger
	metrics   *metrics
}

type routingClientOptions struct {
	autoBatch  bool
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// RoutingClientOption configures NewRoutingClient.
type RoutingClientOption func(*routingClientOptions)

// WithRoutingLogger attaches a zap.Logger to the RoutingClient and every
// session it creates by default.
func WithRoutingLogger(l *zap.Logger) RoutingClientOption {
	return func(o *routingClientOptions) { o.logger = l }
}

// WithPrometheus registers this client's metrics with reg. Passing nil (the
// default) leaves the metrics unregistered but still functional.
func WithPrometheus(reg prometheus.Registerer) RoutingClientOption {
	return func(o *routingClientOptions) { o.registerer = reg }
}

// NewRoutingClient builds a RoutingClient over cluster/router. autoBatch is
// the auto-batch setting its Map/Fanout sessions get unless WithAutoBatch
// overrides it.
func NewRoutingClient(cluster Cluster, router Router, autoBatch bool, opts ...RoutingClientOption) *RoutingClient {
	var o routingClientOptions
	o.autoBatch = autoBatch
	for _, opt := range opts {
		opt(&o)
	}

	return &RoutingClient{
		cluster:   cluster,
		router:    router,
		pool:      NewRoutingPool(cluster),
		autoBatch: autoBatch,
		log:       logger(o.logger),
		metrics:   newMetrics(o.registerer),
	}
}

// Execute routes a single command and runs it inline, synchronously. On a
// transport or timeout error it disconnects and retries once on a fresh
// connection, unless the error was a timeout and the connection declines
// timeout retries.
func (c *RoutingClient) Execute(name string, args ...[]byte) (any, error) {
	if isUnsupported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	command := NewCommand(name, args...)
	hostID, err := c.router.HostFor(command.Name, command.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}

	conn, err := c.pool.Get(command.Name, hostID)
	if err != nil {
		return nil, err
	}

	value, execErr := c.executeOnce(conn, command)
	if execErr != nil && shouldRetry(conn, execErr) {
		c.metrics.inlineRetries.Inc()
		_ = conn.Disconnect()
		if err := conn.Connect(); err != nil {
			_ = c.pool.Release(conn)
			return nil, wrapTransport(err)
		}
		value, execErr = c.executeOnce(conn, command)
	}

	if releaseErr := c.pool.Release(conn); releaseErr != nil {
		c.log.Warn("rb: failed to release connection", zap.String("host", string(hostID)), zap.Error(releaseErr))
	}

	if execErr != nil {
		return nil, execErr
	}
	return value, nil
}

func (c *RoutingClient) executeOnce(conn Connection, command Command) (any, error) {
	payload, err := conn.Pack([]Command{command})
	if err != nil {
		return nil, err
	}
	if err := conn.Write(payload); err != nil {
		return nil, wrapTransport(err)
	}
	value, err := conn.ParseResponse(command.Name)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, wrapTransport(err)
		}
		return nil, wrapProtocol(err)
	}
	return value, nil
}

func shouldRetry(conn Connection, err error) bool {
	if !errors.Is(err, ErrTransport) {
		return false
	}
	if !conn.RetryOnTimeout() && isTimeoutErr(err) {
		return false
	}
	return true
}

// timeoutErr lets a Connection implementation mark a transport error as a
// timeout so RoutingClient.Execute can honor RetryOnTimeout.
type timeoutErr interface{ Timeout() bool }

func isTimeoutErr(err error) bool {
	var t timeoutErr
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return false
}

var unsupportedCommands = map[string]bool{
	"SUBSCRIBE":   true,
	"UNSUBSCRIBE": true,
	"PSUBSCRIBE":  true,
	"PUNSUBSCRIBE": true,
	"WATCH":        true,
	"MULTI":        true,
	"EXEC":         true,
	"DISCARD":      true,
}

func isUnsupported(name string) bool {
	return unsupportedCommands[NewCommand(name).Name]
}

// GetMappingClient returns a thread-unsafe mapping client that works like a
// pipeline and returns eventual Promise results; it must eventually be
// Join'd or Cancel'd. Prefer Map, which does this automatically.
func (c *RoutingClient) GetMappingClient(opts ...Option) *MappingClient {
	return newMappingClient(c.cluster, c.router, c.log, c.metrics, c.resolveOptions(opts))
}

// GetFanoutClient returns a thread-unsafe fanout client targeting hosts (or
// []HostId{AllHosts} for every known host).
func (c *RoutingClient) GetFanoutClient(hosts []HostId, opts ...Option) *FanoutClient {
	return newFanoutClient(c.cluster, c.log, c.metrics, c.resolveOptions(opts), hosts)
}

func (c *RoutingClient) resolveOptions(opts []Option) clientOptions {
	o := clientOptions{autoBatch: c.autoBatch}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Map returns a MapManager scoping a MappingClient: the manager guarantees
// Join on normal return from Run and Cancel if the callback errors.
func (c *RoutingClient) Map(timeout *time.Duration, opts ...Option) *MapManager[*MappingClient] {
	client := c.GetMappingClient(opts...)
	return newMapManager[*MappingClient](client, timeout)
}

// Fanout returns a MapManager scoping a FanoutClient targeting hosts.
func (c *RoutingClient) Fanout(hosts []HostId, timeout *time.Duration, opts ...Option) *MapManager[*FanoutClient] {
	client := c.GetFanoutClient(hosts, opts...)
	return newMapManager[*FanoutClient](client, timeout)
}

// session is implemented by *MappingClient and *FanoutClient: anything a
// MapManager can Join or Cancel on scope exit.
type session interface {
	Join(timeout *time.Duration) error
	Cancel() error
}

// MapManager is the scoped session that guarantees a terminal Join (drain
// all pending) on normal return from Run, and Cancel (discard all pending)
// if the callback returns an error. Go has no context-manager syntax, so
// Run is the analogue of the source library's `with cluster.map() as
// client:` block.
type MapManager[C session] struct {
	client  C
	timeout *time.Duration
	entered time.Time
}

func newMapManager[C session](client C, timeout *time.Duration) *MapManager[C] {
	return &MapManager[C]{client: client, timeout: timeout}
}

// Run invokes fn with the scoped client, then joins (on success) or cancels
// (on failure) before returning. If fn fails, Run returns fn's error;
// otherwise it returns any error Join reports.
func (m *MapManager[C]) Run(fn func(C) error) error {
	m.entered = time.Now()
	client := m.client

	if err := fn(client); err != nil {
		if cancelErr := client.Cancel(); cancelErr != nil {
			return fmt.Errorf("%w (cancel also failed: %v)", err, cancelErr)
		}
		return err
	}

	remaining := m.remainingTimeout()
	return client.Join(remaining)
}

// Client exposes the underlying MappingClient/FanoutClient directly, for
// callers who want manual control instead of the Run callback form (they
// remain responsible for calling Join or Cancel themselves).
func (m *MapManager[C]) Client() C {
	if m.entered.IsZero() {
		m.entered = time.Now()
	}
	return m.client
}

// Join proxies to the underlying client's Join, honoring the manager's
// configured timeout relative to when the manager was entered.
func (m *MapManager[C]) Join() error {
	return m.client.Join(m.remainingTimeout())
}

// Cancel proxies to the underlying client's Cancel.
func (m *MapManager[C]) Cancel() error {
	return m.client.Cancel()
}

func (m *MapManager[C]) remainingTimeout() *time.Duration {
	if m.timeout == nil {
		return nil
	}
	elapsed := time.Since(m.entered)
	remaining := *m.timeout - elapsed
	if remaining < time.Second {
		remaining = time.Second
	}
	return &remaining
}
