package rb

import "sync/atomic"

// goroutineToken is a cheap, best-effort single-owner guard. MappingClient
// and FanoutClient are documented as not safe for concurrent use by more
// than one goroutine at a time; rather than silently corrupting the command
// buffer and poll registry state under a race, every public method enters
// the guard on the way in and releases it on the way out, panicking if it
// finds the guard already held. This is not a substitute for the race
// detector - a well-interleaved misuse can still slip through - but it
// turns the common case (two goroutines sharing a session) into a loud,
// immediate failure instead of silent corruption.
type goroutineToken struct {
	inUse int32
}

func currentGoroutineToken() goroutineToken { return goroutineToken{} }

// check enters the guard and returns a function that releases it; callers
// are expected to `defer` the returned function.
func (g *goroutineToken) check() func() {
	if !atomic.CompareAndSwapInt32(&g.inUse, 0, 1) {
		panic("rb: concurrent use of a single-owner session detected")
	}
	return func() { atomic.StoreInt32(&g.inUse, 0) }
}
