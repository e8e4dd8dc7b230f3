package rb

import "fmt"

// RoutingPool adapts a Cluster to look like a single Pool: Get/Release
// delegate to whichever per-host pool the cluster hands back for the
// explicit shardHint, instead of this type owning any connections itself.
// It exists so RoutingClient (which is written against the plain Pool
// interface) can transparently span every host in the cluster.
type RoutingPool struct {
	cluster Cluster
}

// NewRoutingPool wraps cluster as a Pool.
func NewRoutingPool(cluster Cluster) *RoutingPool {
	return &RoutingPool{cluster: cluster}
}

// Get requires a non-empty shardHint (the host id) and delegates to that
// host's real pool.
func (p *RoutingPool) Get(commandName string, shardHint HostId) (Connection, error) {
	if shardHint == "" {
		return nil, fmt.Errorf("rb: routing pool requires a host id as shard hint")
	}
	realPool, err := p.cluster.PoolFor(shardHint)
	if err != nil {
		return nil, err
	}
	conn, err := realPool.Get(commandName, shardHint)
	if err != nil {
		return nil, err
	}
	return &routedConnection{Connection: conn, pool: realPool}, nil
}

// Release returns conn to the pool that originally created it. The
// originating pool travels with the connection via routedConnection instead
// of a weak back-reference, per the DESIGN.md resolution of the source's
// weakref trick.
func (p *RoutingPool) Release(conn Connection) error {
	routed, ok := conn.(*routedConnection)
	if !ok {
		return nil
	}
	return routed.pool.Release(routed.Connection)
}

// Disconnect tears down every pool in the cluster.
func (p *RoutingPool) Disconnect() error {
	return p.cluster.DisconnectAll()
}

// routedConnection pairs a Connection with the concrete per-host Pool that
// created it, so RoutingPool.Release can hand it back without needing any
// weak reference or attribute-reaching into the cluster.
type routedConnection struct {
	Connection
	pool Pool
}
