// Package rb is a client-side router and pipelining layer for a sharded
// cluster of Redis-compatible servers. Callers issue individual commands
// addressed by key; the router picks the owning host, commands destined for
// the same host are batched into a single pipelined write, and each caller
// gets back a Promise that resolves once the response has been read back off
// that host's connection.
//
// The engine (Promise, CommandBuffer, Coalescer, PollRegistry, MappingClient,
// FanoutClient, RoutingClient, MapManager) is the hard part and is fully
// self-contained in this package. The cluster topology, the RESP wire codec
// and the connection pool are collaborators described by the Router,
// Cluster, Pool and Connection interfaces in interfaces.go; the cluster and
// respconn sub-packages provide default, swappable implementations of them.
package rb
