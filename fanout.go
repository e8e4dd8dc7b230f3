package rb

import (
	"fmt"

	"go.uber.org/zap"
)

// FanoutClient is a MappingClient variant that ignores the router: it sends
// every command to an explicit set of hosts (or every known host, via
// AllHosts) and returns one Promise that aggregates all of the per-host
// results.
type FanoutClient struct {
	*MappingClient
	targetHosts []HostId
	targetAll   bool
	retargeted  bool
}

func newFanoutClient(cluster Cluster, log *zap.Logger, m *metrics, opts clientOptions, hosts []HostId) *FanoutClient {
	mc := newMappingClient(cluster, noopRouter{}, log, m, opts)
	return &FanoutClient{
		MappingClient: mc,
		targetHosts:   hosts,
		targetAll:     isAllSentinel(hosts),
	}
}

// noopRouter satisfies Router for FanoutClient, which never consults it -
// Execute is overridden to bypass routing entirely.
type noopRouter struct{}

func (noopRouter) HostFor(string, [][]byte) (HostId, error) { return "", ErrUntargeted }

// Execute enqueues (name, args) on every targeted host's buffer and returns
// a Promise that resolves to a map of per-host results once they have all
// settled, or fails with ErrUntargeted if this client has no target hosts.
func (f *FanoutClient) Execute(name string, args ...[]byte) (*Promise[map[HostId]any], error) {
	defer f.owner.check()()
	if isUnsupported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}

	hosts := f.targetHosts
	if f.targetAll {
		hosts = f.cluster.Hosts()
	}
	if len(hosts) == 0 {
		return nil, ErrUntargeted
	}

	command := NewCommand(name, args...)
	promises := make(map[HostId]*Promise[any], len(hosts))

	for _, hostID := range hosts {
		buf, err := f.bufferFor(hostID, command.Name)
		if err != nil {
			return nil, err
		}
		promise, err := buf.Enqueue(command.Name, command.Args)
		if err != nil {
			return nil, err
		}
		promises[hostID] = promise
		if f.metrics != nil {
			f.metrics.commandsExecuted.WithLabelValues(string(hostID)).Inc()
		}
	}

	return PromiseAll(promises), nil
}

// Retarget returns a shallow alias of f that shares the same poll registry
// (so flushes and drains of both route through the same buffers) but
// targets a different host set. The returned alias may not itself be
// retargeted again - a second Retarget call on it fails with
// ErrAlreadyRetargeted - but f remains free to produce further independent
// aliases.
func (f *FanoutClient) Retarget(hosts []HostId) (*FanoutClient, error) {
	defer f.owner.check()()

	if f.retargeted {
		return nil, ErrAlreadyRetargeted
	}

	alias := &FanoutClient{
		MappingClient: f.MappingClient,
		targetHosts:   hosts,
		targetAll:     isAllSentinel(hosts),
		retargeted:    true,
	}
	return alias, nil
}

func isAllSentinel(hosts []HostId) bool {
	return len(hosts) == 1 && hosts[0] == AllHosts
}
