package respconn

import (
	"fmt"
	"sync"
	"time"

	"github.com/txodds/rb"
)

// idleConn pairs a Conn with the last moment it was returned to the pool,
// so Get can evict anything that sat idle past idleTimeout - the same
// TestOnBorrow-by-age idea as the redigo pool this package generalizes
// away from, minus the dependency.
type idleConn struct {
	conn *Conn
	at   time.Time
}

// Pool is a capped idle-connection pool of respconn.Conn, one per backend
// address. It implements rb.Pool directly; Factory wraps New as a
// cluster.PoolFactory.
type Pool struct {
	addr    string
	auth    string
	timeout time.Duration

	maxIdle     int
	idleTimeout time.Duration

	mu   sync.Mutex
	idle []idleConn
}

// New returns a Pool dialing addr, authenticating with auth (if non-empty),
// holding at most maxIdle idle connections for up to idleTimeout each.
// timeout bounds every command's read/write deadline. maxIdle <= 0 defaults
// to 3 and idleTimeout <= 0 defaults to 240s, matching the pack's own
// redigo.Pool defaults.
func New(addr, auth string, timeout time.Duration, maxIdle int, idleTimeout time.Duration) *Pool {
	if maxIdle <= 0 {
		maxIdle = 3
	}
	if idleTimeout <= 0 {
		idleTimeout = 240 * time.Second
	}
	return &Pool{
		addr:        addr,
		auth:        auth,
		timeout:     timeout,
		maxIdle:     maxIdle,
		idleTimeout: idleTimeout,
	}
}

// Factory adapts New to a cluster.PoolFactory: New(addr, auth, timeout, maxIdle, idleTimeout).
func Factory(timeout time.Duration, maxIdle int, idleTimeout time.Duration) func(addr, auth string) (rb.Pool, error) {
	return func(addr, auth string) (rb.Pool, error) {
		return New(addr, auth, timeout, maxIdle, idleTimeout), nil
	}
}

// Get implements rb.Pool. shardHint is accepted for interface symmetry
// with rb.Pool; a Pool only ever serves its own single backend address.
func (p *Pool) Get(commandName string, shardHint rb.HostId) (rb.Connection, error) {
	if conn := p.takeIdle(); conn != nil {
		if ready, err := conn.Ready(0); err != nil || (!ready && !probePing(conn)) {
			_ = conn.Disconnect()
		} else {
			return conn, nil
		}
	}

	conn := New(p.addr, p.auth, p.timeout)
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("respconn: dialing %s: %w", p.addr, err)
	}
	return conn, nil
}

// probePing exercises a borrowed-but-idle connection with a PING, the
// TestOnBorrow equivalent of the redigo pool this type replaces.
func probePing(conn *Conn) bool {
	payload, err := conn.Pack([]rb.Command{rb.NewCommand("PING")})
	if err != nil {
		return false
	}
	if err := conn.Write(payload); err != nil {
		return false
	}
	_, err = conn.ParseResponse("PING")
	return err == nil
}

func (p *Pool) takeIdle() *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-p.idleTimeout)
	for len(p.idle) > 0 {
		last := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if last.at.Before(cutoff) {
			_ = last.conn.Disconnect()
			continue
		}
		return last.conn
	}
	return nil
}

// Release implements rb.Pool.
func (p *Pool) Release(conn rb.Connection) error {
	c, ok := conn.(*Conn)
	if !ok {
		return fmt.Errorf("respconn: Release: foreign connection type %T", conn)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) >= p.maxIdle {
		p.mu.Unlock()
		err := c.Disconnect()
		p.mu.Lock()
		return err
	}
	p.idle = append(p.idle, idleConn{conn: c, at: time.Now()})
	return nil
}

// Close disconnects every idle connection. cluster.Cluster.DisconnectAll
// calls this on any pool that implements it.
func (p *Pool) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, ic := range idle {
		if err := ic.conn.Disconnect(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
