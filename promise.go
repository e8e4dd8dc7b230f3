package rb

import "sync"

type promiseState int

const (
	promisePending promiseState = iota
	promiseResolved
	promiseRejected
)

// Promise is a single-assignment future with success/failure callbacks,
// following the promise described by the rb client this package is modeled
// on: a promise transitions pending -> resolved or pending -> rejected
// exactly once, and callbacks registered after the transition fire
// immediately instead of being lost.
type Promise[T any] struct {
	mu    sync.Mutex
	state promiseState
	value T
	err   error

	onSuccess []func(T)
	onFailure []func(error)
}

// NewPromise returns a Promise in the pending state.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Resolved returns a Promise already settled with value.
func Resolved[T any](value T) *Promise[T] {
	p := NewPromise[T]()
	p.Resolve(value)
	return p
}

// Rejected returns a Promise already settled with err.
func Rejected[T any](err error) *Promise[T] {
	p := NewPromise[T]()
	p.Reject(err)
	return p
}

// Resolve transitions the promise to resolved(value). It returns
// ErrAlreadySettled if the promise was not pending.
func (p *Promise[T]) Resolve(value T) error {
	p.mu.Lock()
	if p.state != promisePending {
		p.mu.Unlock()
		return ErrAlreadySettled
	}
	p.state = promiseResolved
	p.value = value
	callbacks := p.onSuccess
	p.onSuccess = nil
	p.onFailure = nil
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(value)
	}
	return nil
}

// Reject transitions the promise to rejected(err). It returns
// ErrAlreadySettled if the promise was not pending.
func (p *Promise[T]) Reject(err error) error {
	p.mu.Lock()
	if p.state != promisePending {
		p.mu.Unlock()
		return ErrAlreadySettled
	}
	p.state = promiseRejected
	p.err = err
	callbacks := p.onFailure
	p.onSuccess = nil
	p.onFailure = nil
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(err)
	}
	return nil
}

// OnSuccess registers fn to run with the resolved value. If the promise is
// already resolved, fn runs immediately (synchronously, on the calling
// goroutine).
func (p *Promise[T]) OnSuccess(fn func(T)) {
	p.mu.Lock()
	switch p.state {
	case promisePending:
		p.onSuccess = append(p.onSuccess, fn)
		p.mu.Unlock()
	case promiseResolved:
		value := p.value
		p.mu.Unlock()
		fn(value)
	default:
		p.mu.Unlock()
	}
}

// OnFailure registers fn to run with the rejection error. If the promise is
// already rejected, fn runs immediately.
func (p *Promise[T]) OnFailure(fn func(error)) {
	p.mu.Lock()
	switch p.state {
	case promisePending:
		p.onFailure = append(p.onFailure, fn)
		p.mu.Unlock()
	case promiseRejected:
		err := p.err
		p.mu.Unlock()
		fn(err)
	default:
		p.mu.Unlock()
	}
}

// Pending reports whether the promise has not yet settled.
func (p *Promise[T]) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == promisePending
}

// Value returns the resolved value. It returns ErrNotReady if the promise is
// still pending, or the rejection error if it was rejected.
func (p *Promise[T]) Value() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case promiseResolved:
		return p.value, nil
	case promiseRejected:
		var zero T
		return zero, p.err
	default:
		var zero T
		return zero, ErrNotReady
	}
}

// Err returns the rejection error, or ErrNotReady if the promise has not
// rejected (including if it resolved successfully).
func (p *Promise[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == promiseRejected {
		return p.err
	}
	return ErrNotReady
}

// PromiseAll resolves once every child in the mapping has resolved, with a
// map carrying exactly the same keys. It rejects with the first child
// rejection to fire; children already rejected when PromiseAll is called
// are visited in Go's randomized map iteration order, so which of them
// wins is not defined. Exactly one rejection reason is surfaced.
func PromiseAll[T any](children map[HostId]*Promise[T]) *Promise[map[HostId]T] {
	result := NewPromise[map[HostId]T]()

	if len(children) == 0 {
		result.Resolve(map[HostId]T{})
		return result
	}

	var mu sync.Mutex
	values := make(map[HostId]T, len(children))
	remaining := len(children)
	settled := false

	for hostID, child := range children {
		hostID := hostID
		child.OnSuccess(func(v T) {
			mu.Lock()
			defer mu.Unlock()
			if settled {
				return
			}
			values[hostID] = v
			remaining--
			if remaining == 0 {
				settled = true
				result.Resolve(values)
			}
		})
		child.OnFailure(func(err error) {
			mu.Lock()
			defer mu.Unlock()
			if settled {
				return
			}
			settled = true
			result.Reject(err)
		})
	}

	return result
}
