package rb

import "time"

// defaultPollInterval bounds how often PollRegistry.Poll re-checks
// readiness while waiting. It is the Go stand-in for the granularity of a
// real select()/poll() syscall, since Connection.Ready is a plain method
// call rather than an fd the registry can multiplex natively.
const defaultPollInterval = 2 * time.Millisecond

// PollRegistry is an ordered mapping from HostId to CommandBuffer, plus a
// readiness primitive that blocks until one or more registered buffers have
// a response available to read (or a timeout elapses). Iteration order
// matches registration order, which keeps flush order deterministic in
// tests.
type PollRegistry struct {
	order []HostId
	bufs  map[HostId]*CommandBuffer
}

// NewPollRegistry returns an empty registry.
func NewPollRegistry() *PollRegistry {
	return &PollRegistry{bufs: make(map[HostId]*CommandBuffer)}
}

// Register adds buffer under hostID. Registering over an existing hostID
// replaces it without disturbing its position in the iteration order.
func (r *PollRegistry) Register(hostID HostId, buffer *CommandBuffer) {
	if _, exists := r.bufs[hostID]; !exists {
		r.order = append(r.order, hostID)
	}
	r.bufs[hostID] = buffer
}

// Unregister removes hostID from the registry.
func (r *PollRegistry) Unregister(hostID HostId) {
	if _, exists := r.bufs[hostID]; !exists {
		return
	}
	delete(r.bufs, hostID)
	for i, id := range r.order {
		if id == hostID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the buffer registered under hostID, if any.
func (r *PollRegistry) Get(hostID HostId) (*CommandBuffer, bool) {
	buf, ok := r.bufs[hostID]
	return buf, ok
}

// Len returns the number of currently registered buffers.
func (r *PollRegistry) Len() int { return len(r.order) }

// Order returns the registered host ids in registration order. The returned
// slice is owned by the caller.
func (r *PollRegistry) Order() []HostId {
	out := make([]HostId, len(r.order))
	copy(out, r.order)
	return out
}

// Buffers returns the registered buffers in registration order.
func (r *PollRegistry) Buffers() []*CommandBuffer {
	out := make([]*CommandBuffer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bufs[id])
	}
	return out
}

// Poll blocks up to timeout (nil means indefinitely, a zero duration means a
// single non-blocking pass) and returns the ids of registered buffers that
// are readable, preserving registration order. A buffer whose readiness
// check itself errors is reported as ready too, so the caller's Drain can
// surface that error promptly instead of spinning on it forever.
func (r *PollRegistry) Poll(timeout *time.Duration) []HostId {
	if len(r.order) == 0 {
		return nil
	}

	var deadline time.Time
	hasDeadline := timeout != nil
	if hasDeadline {
		deadline = time.Now().Add(*timeout)
	}

	for {
		var ready []HostId
		for _, id := range r.order {
			buf := r.bufs[id]
			ok, err := buf.Ready(0)
			if err != nil || ok {
				ready = append(ready, id)
			}
		}
		if len(ready) > 0 {
			return ready
		}
		if hasDeadline {
			if !time.Now().Before(deadline) {
				return nil
			}
			remaining := time.Until(deadline)
			if remaining < defaultPollInterval {
				time.Sleep(remaining)
				continue
			}
		}
		time.Sleep(defaultPollInterval)
	}
}
