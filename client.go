package rb

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// defaultBackpressureTimeout is how long MappingClient's back-pressure step
// waits for a slot to free up before giving the caller another chance to
// make progress, matching the "default 1 s" the spec calls out.
const defaultBackpressureTimeout = time.Second

// MappingClient accepts individual commands, resolves each to a host via
// its Router, obtains (creating if needed) that host's CommandBuffer,
// enqueues the command and returns its Promise immediately. It owns the
// poll registry for every buffer it creates and enforces maxConcurrency.
//
// A MappingClient is single-owner: it must not be used from more than one
// goroutine at a time. Session methods enter an in-use guard on a
// best-effort basis (see goroutineToken.check) and panic on a detected
// breach rather than silently corrupting buffer state.
type MappingClient struct {
	cluster        Cluster
	router         Router
	maxConcurrency int
	autoBatch      bool

	registry *PollRegistry
	pools    map[HostId]Pool

	log     *zap.Logger
	metrics *metrics

	owner goroutineToken
}

type clientOptions struct {
	logger         *zap.Logger
	metrics        *metrics
	maxConcurrency int
	autoBatch      bool
}

// Option configures a MappingClient/FanoutClient created by a
// RoutingClient (GetMappingClient, GetFanoutClient, Map, Fanout).
type Option func(*clientOptions)

// WithLogger attaches a zap.Logger, in place of the RoutingClient's own,
// used for warnings about failed flushes, drains and connection releases.
func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// withMetrics attaches pre-built metrics in place of the RoutingClient's own
// metrics set (normally only used by tests).
func withMetrics(m *metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithMaxConcurrency overrides the default max-concurrency (64) used by
// Map/Fanout.
func WithMaxConcurrency(n int) Option {
	return func(o *clientOptions) { o.maxConcurrency = n }
}

// WithAutoBatch overrides the RoutingClient's default auto-batch setting for
// one Map/Fanout session.
func WithAutoBatch(enabled bool) Option {
	return func(o *clientOptions) { o.autoBatch = enabled }
}

func newMappingClient(cluster Cluster, router Router, log *zap.Logger, m *metrics, opts clientOptions) *MappingClient {
	maxConcurrency := opts.maxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 64
	}
	if opts.logger != nil {
		log = opts.logger
	}
	if opts.metrics != nil {
		m = opts.metrics
	}
	return &MappingClient{
		cluster:        cluster,
		router:         router,
		maxConcurrency: maxConcurrency,
		autoBatch:      opts.autoBatch,
		registry:       NewPollRegistry(),
		pools:          make(map[HostId]Pool),
		log:            logger(log),
		metrics:        m,
		owner:          currentGoroutineToken(),
	}
}

// Execute resolves the host id for (name, args) via the router, obtains
// that host's buffer (creating it under back-pressure if necessary) and
// enqueues the command there. It fails synchronously with ErrNoRoute if the
// router rejects the command.
func (c *MappingClient) Execute(name string, args ...[]byte) (*Promise[any], error) {
	defer c.owner.check()()
	if isUnsupported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	command := NewCommand(name, args...)

	hostID, err := c.router.HostFor(command.Name, command.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}

	buf, err := c.bufferFor(hostID, command.Name)
	if err != nil {
		return nil, err
	}

	promise, err := buf.Enqueue(command.Name, command.Args)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.commandsExecuted.WithLabelValues(string(hostID)).Inc()
	}
	return promise, nil
}

// bufferFor returns the registered buffer for hostID, creating one (after
// enforcing the concurrency cap) if none exists yet.
func (c *MappingClient) bufferFor(hostID HostId, commandName string) (*CommandBuffer, error) {
	if buf, ok := c.registry.Get(hostID); ok {
		return buf, nil
	}

	for c.registry.Len() >= c.maxConcurrency {
		if c.metrics != nil {
			c.metrics.backpressureWait.Inc()
		}
		c.relieveBackpressure(defaultBackpressureTimeout)
	}

	pool, err := c.cluster.PoolFor(hostID)
	if err != nil {
		return nil, err
	}
	conn, err := pool.Get(commandName, hostID)
	if err != nil {
		return nil, err
	}
	buf, err := NewCommandBuffer(hostID, conn, c.autoBatch)
	if err != nil {
		_ = pool.Release(conn)
		return nil, err
	}
	buf.attachMetrics(c.metrics)
	c.pools[hostID] = pool
	c.registry.Register(hostID, buf)
	c.updateActiveGauge()
	return buf, nil
}

// relieveBackpressure flushes every registered buffer and polls once with a
// bounded timeout, draining and releasing whatever becomes ready. It does
// not guarantee progress on any single call but bounds outstanding sockets
// over the long run, exactly as MappingClient._try_to_clear_outstanding_requests
// does in the source this package is modeled on.
func (c *MappingClient) relieveBackpressure(timeout time.Duration) {
	if c.registry.Len() == 0 {
		return
	}

	for _, buf := range c.registry.Buffers() {
		if err := buf.Flush(); err != nil {
			c.log.Warn("rb: flush failed during back-pressure relief", zap.String("host", string(buf.HostId())), zap.Error(err))
		}
	}

	ready := c.registry.Poll(&timeout)
	for _, hostID := range ready {
		buf, ok := c.registry.Get(hostID)
		if !ok {
			continue
		}
		if err := buf.Drain(); err != nil {
			c.log.Warn("rb: drain failed during back-pressure relief", zap.String("host", string(hostID)), zap.Error(err))
		}
		c.releaseBuffer(buf)
	}
}

// Join flushes every registered buffer, then repeatedly polls the registry
// and drains whatever becomes ready until the registry empties or the
// cumulative elapsed time exceeds timeout (nil means unbounded). Drain
// errors from individual buffers are aggregated with multierr rather than
// aborting the rest of the drain.
func (c *MappingClient) Join(timeout *time.Duration) error {
	defer c.owner.check()()

	for _, buf := range c.registry.Buffers() {
		if err := buf.Flush(); err != nil {
			c.log.Warn("rb: flush failed during join", zap.String("host", string(buf.HostId())), zap.Error(err))
		}
	}

	var remaining *time.Duration
	if timeout != nil {
		r := *timeout
		remaining = &r
	}

	var errs error
	for c.registry.Len() > 0 {
		if remaining != nil && *remaining <= 0 {
			break
		}

		start := time.Now()
		ready := c.registry.Poll(remaining)
		if remaining != nil {
			*remaining -= time.Since(start)
		}

		if len(ready) == 0 {
			if remaining != nil {
				break
			}
			continue
		}

		for _, hostID := range ready {
			buf, ok := c.registry.Get(hostID)
			if !ok {
				continue
			}
			if err := buf.Drain(); err != nil {
				if c.metrics != nil {
					c.metrics.joinErrors.Inc()
				}
				errs = multierr.Append(errs, fmt.Errorf("rb: host %s: %w", hostID, err))
			}
			c.releaseBuffer(buf)
		}
	}

	return errs
}

// Cancel releases every registered buffer immediately without draining.
// Still-pending promises are rejected with ErrCancelled.
func (c *MappingClient) Cancel() error {
	defer c.owner.check()()

	for _, buf := range c.registry.Buffers() {
		for _, t := range buf.commands {
			t.promise.Reject(ErrCancelled)
		}
		for _, pr := range buf.pendingResponses {
			pr.promise.Reject(ErrCancelled)
		}
		c.releaseBuffer(buf)
	}
	return nil
}

func (c *MappingClient) releaseBuffer(buf *CommandBuffer) {
	hostID := buf.HostId()
	conn := buf.Release()
	c.registry.Unregister(hostID)
	c.updateActiveGauge()

	pool, ok := c.pools[hostID]
	delete(c.pools, hostID)

	if conn == nil || !ok {
		return
	}
	if err := pool.Release(conn); err != nil {
		c.log.Warn("rb: pool release failed", zap.String("host", string(hostID)), zap.Error(err))
	}
}

func (c *MappingClient) updateActiveGauge() {
	if c.metrics == nil {
		return
	}
	c.metrics.buffersActive.WithLabelValues("mapping").Set(float64(c.registry.Len()))
}
