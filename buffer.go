package rb

import (
	"time"
)

type pendingResponse struct {
	name    string
	promise *Promise[any]
}

// CommandBuffer is a per-host pipeline accumulator bound to one live
// Connection. Commands are enqueued without blocking; Flush packs and
// writes whatever has accumulated; Drain reads the responses back in the
// order they were written and resolves the matching promises. A buffer is
// exclusively owned by whichever session created it until it is released.
type CommandBuffer struct {
	hostID     HostId
	connection Connection
	autoBatch  bool
	metrics    *metrics

	commands         []triple
	pendingResponses []pendingResponse

	closed bool
}

// NewCommandBuffer creates a buffer bound to connection after calling its
// Connect method (respconn.Conn's Connect leaves an already-connected
// connection as it is). The caller (MappingClient, RoutingClient, ...)
// owns the returned buffer.
func NewCommandBuffer(hostID HostId, connection Connection, autoBatch bool) (*CommandBuffer, error) {
	if err := connection.Connect(); err != nil {
		return nil, err
	}
	return &CommandBuffer{
		hostID:     hostID,
		connection: connection,
		autoBatch:  autoBatch,
	}, nil
}

// HostId returns the host this buffer is pipelining commands to.
func (b *CommandBuffer) HostId() HostId { return b.hostID }

// attachMetrics wires a metrics set into the buffer after construction, so
// NewCommandBuffer's signature stays stable for callers (tests included)
// that don't care about instrumentation.
func (b *CommandBuffer) attachMetrics(m *metrics) { b.metrics = m }

// Closed reports whether the buffer has no live connection.
func (b *CommandBuffer) Closed() bool { return b.closed || b.connection == nil }

// Enqueue appends a new command to the buffer and returns its promise. It
// fails with ErrBufferClosed if the buffer has already been released.
func (b *CommandBuffer) Enqueue(commandName string, args [][]byte) (*Promise[any], error) {
	if b.Closed() {
		return nil, ErrBufferClosed
	}
	promise := NewPromise[any]()
	b.commands = append(b.commands, triple{name: commandName, args: args, promise: promise})
	return promise, nil
}

// Flush packs every not-yet-sent command (after coalescing, if enabled)
// into one wire write. A write failure rejects every promise whose command
// was accepted into this flush with ErrTransport and closes the buffer.
func (b *CommandBuffer) Flush() error {
	if b.Closed() {
		return ErrBufferClosed
	}
	if len(b.commands) == 0 {
		return nil
	}

	unsent := b.commands
	b.commands = nil

	effective := unsent
	if b.autoBatch {
		var fused int
		effective, fused = coalesceCommands(unsent)
		if fused > 0 && b.metrics != nil {
			b.metrics.coalescedGroups.Add(float64(fused))
		}
	}

	cmds := make([]Command, len(effective))
	for i, t := range effective {
		cmds[i] = Command{Name: t.name, Args: t.args}
	}

	payload, err := b.connection.Pack(cmds)
	if err != nil {
		b.failAll(effective, err)
		return err
	}

	if err := b.connection.Write(payload); err != nil {
		wrapped := wrapTransport(err)
		b.failAll(effective, wrapped)
		return wrapped
	}

	for _, t := range effective {
		b.pendingResponses = append(b.pendingResponses, pendingResponse{name: t.name, promise: t.promise})
	}
	return nil
}

func (b *CommandBuffer) failAll(effective []triple, err error) {
	for _, t := range effective {
		t.promise.Reject(err)
	}
	b.closed = true
}

// Drain reads and parses one response per pending command, in order,
// resolving each matching promise. A read failure rejects the current and
// all subsequent pending entries with the same error and closes the buffer.
func (b *CommandBuffer) Drain() error {
	if b.Closed() {
		return ErrBufferClosed
	}

	pending := b.pendingResponses
	b.pendingResponses = nil

	for i, pr := range pending {
		value, err := b.connection.ParseResponse(pr.name)
		if err != nil {
			wrapped := wrapProtocol(err)
			pr.promise.Reject(wrapped)
			for _, rest := range pending[i+1:] {
				rest.promise.Reject(wrapped)
			}
			b.closed = true
			return wrapped
		}
		pr.promise.Resolve(value)
	}
	return nil
}

// Ready exposes the underlying connection's readiness handle for the poll
// registry's multiplexed wait.
func (b *CommandBuffer) Ready(timeout time.Duration) (bool, error) {
	if b.Closed() {
		return false, ErrBufferClosed
	}
	return b.connection.Ready(timeout)
}

// Release tears the buffer down without draining it, detaching its
// connection so a subsequent release-to-pool step can reclaim it. The
// caller is responsible for returning the connection to its pool.
func (b *CommandBuffer) Release() Connection {
	conn := b.connection
	b.connection = nil
	b.closed = true
	return conn
}

func wrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return &wrappedErr{kind: ErrTransport, cause: err}
}

func wrapProtocol(err error) error {
	if err == nil {
		return nil
	}
	return &wrappedErr{kind: ErrProtocol, cause: err}
}

type wrappedErr struct {
	kind  error
	cause error
}

func (e *wrappedErr) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *wrappedErr) Is(target error) bool { return target == e.kind }

func (e *wrappedErr) Unwrap() error { return e.cause }
