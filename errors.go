package rb

import "errors"

// Sentinel error kinds. Callers should compare with errors.Is, since these
// are usually returned wrapped with extra context. Errors coming from a
// Cluster or Pool collaborator (PoolFor, Get) are passed through as they
// are, without one of these kinds.
var (
	// ErrNoRoute is returned when the router cannot place a command on
	// any host.
	ErrNoRoute = errors.New("rb: no route for command")

	// ErrUntargeted is returned by a FanoutClient that has no target
	// host set configured.
	ErrUntargeted = errors.New("rb: fanout client has no target hosts")

	// ErrUnsupported is returned for pub/sub, manual pipeline, and lock
	// operations, which routing clients never implement.
	ErrUnsupported = errors.New("rb: operation unsupported by routing client")

	// ErrBufferClosed is returned by an operation against a CommandBuffer
	// that has already been released.
	ErrBufferClosed = errors.New("rb: command buffer is closed")

	// ErrAlreadySettled is returned by Resolve/Reject on a Promise that
	// has already transitioned out of the pending state.
	ErrAlreadySettled = errors.New("rb: promise already settled")

	// ErrNotReady is returned by Value/Err on a Promise that is still
	// pending.
	ErrNotReady = errors.New("rb: promise not ready")

	// ErrAlreadyRetargeted is returned by Retarget on a FanoutClient
	// alias that has already been retargeted once.
	ErrAlreadyRetargeted = errors.New("rb: fanout client already retargeted")

	// ErrTransport wraps connection and timeout errors from the wire.
	ErrTransport = errors.New("rb: transport error")

	// ErrProtocol wraps response parse errors from the wire.
	ErrProtocol = errors.New("rb: protocol error")

	// ErrCancelled is the rejection reason given to promises that were
	// still pending when Cancel ran.
	ErrCancelled = errors.New("rb: cancelled")
)
