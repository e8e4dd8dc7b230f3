package cluster

import (
	"errors"
	"testing"

	"github.com/txodds/rb"
)

type fakePool struct {
	addr   string
	auth   string
	closed bool
}

func (p *fakePool) Get(string, rb.HostId) (rb.Connection, error) { return nil, nil }
func (p *fakePool) Release(rb.Connection) error                 { return nil }
func (p *fakePool) Close() error                                 { p.closed = true; return nil }

func TestClusterNewBuildsPoolsForEveryHost(t *testing.T) {
	cfg := ClusterConfig{Hosts: []HostConfig{
		{ID: "host-1", Addr: "10.0.0.1:6379"},
		{ID: "host-2", Addr: "10.0.0.2:6379", Auth: "s3cret"},
	}}

	var built []*fakePool
	c, err := New(cfg, func(addr, auth string) (rb.Pool, error) {
		p := &fakePool{addr: addr, auth: auth}
		built = append(built, p)
		return p, nil
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if len(c.Hosts()) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(c.Hosts()))
	}
	if built[1].auth != "s3cret" {
		t.Fatalf("expected auth to be passed through to the factory, got %q", built[1].auth)
	}

	pool, err := c.PoolFor("host-1")
	if err != nil {
		t.Fatalf("PoolFor failed: %v", err)
	}
	if pool.(*fakePool).addr != "10.0.0.1:6379" {
		t.Fatalf("unexpected pool addr: %+v", pool)
	}
}

func TestClusterPoolForUnknownHostFails(t *testing.T) {
	c, err := New(ClusterConfig{}, func(addr, auth string) (rb.Pool, error) { return &fakePool{}, nil })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.PoolFor("nope"); err == nil {
		t.Fatalf("expected an error for an unknown host")
	}
}

func TestClusterNewPropagatesFactoryError(t *testing.T) {
	cfg := ClusterConfig{Hosts: []HostConfig{{ID: "host-1", Addr: "10.0.0.1:6379"}}}
	factoryErr := errors.New("dial refused")
	if _, err := New(cfg, func(addr, auth string) (rb.Pool, error) { return nil, factoryErr }); !errors.Is(err, factoryErr) {
		t.Fatalf("expected the factory error to propagate, got %v", err)
	}
}

func TestClusterDisconnectAllClosesEveryPool(t *testing.T) {
	cfg := ClusterConfig{Hosts: []HostConfig{
		{ID: "host-1", Addr: "10.0.0.1:6379"},
		{ID: "host-2", Addr: "10.0.0.2:6379"},
	}}
	var built []*fakePool
	c, _ := New(cfg, func(addr, auth string) (rb.Pool, error) {
		p := &fakePool{addr: addr}
		built = append(built, p)
		return p, nil
	})

	if err := c.DisconnectAll(); err != nil {
		t.Fatalf("DisconnectAll failed: %v", err)
	}
	for _, p := range built {
		if !p.closed {
			t.Fatalf("expected every pool to be closed, got %+v", p)
		}
	}
}

func TestClusterRouterUsesSameHostOrder(t *testing.T) {
	cfg := ClusterConfig{Hosts: []HostConfig{
		{ID: "host-1", Addr: "10.0.0.1:6379"},
		{ID: "host-2", Addr: "10.0.0.2:6379"},
	}}
	c, _ := New(cfg, func(addr, auth string) (rb.Pool, error) { return &fakePool{}, nil })

	if got := c.Router().Hosts(); len(got) != 2 || got[0] != "host-1" || got[1] != "host-2" {
		t.Fatalf("expected router to share the cluster's host order, got %v", got)
	}
}
