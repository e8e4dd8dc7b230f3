package cluster

import (
	"fmt"

	"github.com/txodds/rb"
)

// PoolFactory creates the rb.Pool for one host, given its configured
// address and auth string. This is the generalized form of the teacher's
// own CreatePool: "the signature for returning a connection pool based on
// the input Redis address and auth strings."
type PoolFactory func(addr, auth string) (rb.Pool, error)

// Cluster wires a ClusterConfig's ordered host list to a StaticRouter and a
// per-host rb.Pool built with a PoolFactory. It implements rb.Cluster.
type Cluster struct {
	router *StaticRouter
	pools  map[rb.HostId]rb.Pool
	hosts  []rb.HostId
}

// New builds a Cluster from cfg, creating one pool per host via create.
func New(cfg ClusterConfig, create PoolFactory) (*Cluster, error) {
	hosts := make([]rb.HostId, 0, len(cfg.Hosts))
	pools := make(map[rb.HostId]rb.Pool, len(cfg.Hosts))

	for _, h := range cfg.Hosts {
		hostID := rb.HostId(h.ID)
		pool, err := create(h.Addr, h.Auth)
		if err != nil {
			return nil, fmt.Errorf("cluster: creating pool for host %q: %w", h.ID, err)
		}
		hosts = append(hosts, hostID)
		pools[hostID] = pool
	}

	return &Cluster{
		router: NewStaticRouter(hosts),
		pools:  pools,
		hosts:  hosts,
	}, nil
}

// Router returns the cluster's StaticRouter.
func (c *Cluster) Router() *StaticRouter { return c.router }

// PoolFor implements rb.Cluster.
func (c *Cluster) PoolFor(hostID rb.HostId) (rb.Pool, error) {
	pool, ok := c.pools[hostID]
	if !ok {
		return nil, fmt.Errorf("cluster: unknown host %q", hostID)
	}
	return pool, nil
}

// Hosts implements rb.Cluster.
func (c *Cluster) Hosts() []rb.HostId {
	out := make([]rb.HostId, len(c.hosts))
	copy(out, c.hosts)
	return out
}

// DisconnectAll implements rb.Cluster by asking every host's pool, if it
// supports it, to close its idle connections.
func (c *Cluster) DisconnectAll() error {
	var firstErr error
	for hostID, pool := range c.pools {
		closer, ok := pool.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cluster: disconnecting host %q: %w", hostID, err)
		}
	}
	return firstErr
}
