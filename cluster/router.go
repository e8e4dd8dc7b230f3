package cluster

import (
	"fmt"
	"hash/crc32"

	"github.com/txodds/rb"
)

// StaticRouter routes commands over a fixed, ordered host list by hashing
// the command's key argument modulo the host count. It implements
// rb.Router. The source library this package's sibling engine is modeled on
// leaves the router entirely external ("a pure function over a topology
// snapshot"); StaticRouter is the default, swappable implementation that
// makes the engine runnable out of the box.
type StaticRouter struct {
	hosts []rb.HostId
}

// NewStaticRouter builds a router over hosts in the given order. The order
// is significant: StaticRouter is not a consistent-hash ring, so changing
// it reshards every key.
func NewStaticRouter(hosts []rb.HostId) *StaticRouter {
	cp := make([]rb.HostId, len(hosts))
	copy(cp, hosts)
	return &StaticRouter{hosts: cp}
}

// HostFor hashes args[0] (the command's key, by convention the first
// argument) and returns the host that owns it. Commands with no arguments
// cannot be routed and fail with rb.ErrNoRoute.
func (r *StaticRouter) HostFor(commandName string, args [][]byte) (rb.HostId, error) {
	if len(r.hosts) == 0 {
		return "", fmt.Errorf("%w: router has no hosts", rb.ErrNoRoute)
	}
	if len(args) == 0 {
		return "", fmt.Errorf("%w: %s has no key argument to route on", rb.ErrNoRoute, commandName)
	}
	idx := crc32.ChecksumIEEE(args[0]) % uint32(len(r.hosts))
	return r.hosts[idx], nil
}

// Hosts returns the ordered host list this router was built with.
func (r *StaticRouter) Hosts() []rb.HostId {
	out := make([]rb.HostId, len(r.hosts))
	copy(out, r.hosts)
	return out
}
