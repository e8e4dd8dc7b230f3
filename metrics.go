package rb

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus instrumentation shared by MappingClient,
// FanoutClient and RoutingClient. It mirrors the kind of buffer-lifecycle
// and coalescing counters the proxy-shaped repos in the reference pack
// (redisbetween, systemli-userli-postfix-adapter) wire around their own
// pipelining cores.
type metrics struct {
	commandsExecuted *prometheus.CounterVec
	buffersActive    *prometheus.GaugeVec
	coalescedGroups  prometheus.Counter
	backpressureWait prometheus.Counter
	joinErrors       prometheus.Counter
	inlineRetries    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		commandsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rb",
			Name:      "commands_executed_total",
			Help:      "Commands accepted by a routing client, by host.",
		}, []string{"host"}),
		buffersActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rb",
			Name:      "buffers_active",
			Help:      "Command buffers currently registered in a mapping or fanout client's poll registry.",
		}, []string{"client"}),
		coalescedGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rb",
			Name:      "coalesced_groups_total",
			Help:      "Groups of consecutive same-name commands fused by the coalescer.",
		}),
		backpressureWait: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rb",
			Name:      "backpressure_waits_total",
			Help:      "Times a mapping client had to flush and poll to stay under max concurrency.",
		}),
		joinErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rb",
			Name:      "join_errors_total",
			Help:      "Buffer drain failures observed while joining a session.",
		}),
		inlineRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rb",
			Name:      "inline_retries_total",
			Help:      "One-shot retries taken by RoutingClient.Execute after a transport error.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.commandsExecuted, m.buffersActive, m.coalescedGroups,
			m.backpressureWait, m.joinErrors, m.inlineRetries,
		} {
			if err := reg.Register(c); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					_ = are
					continue
				}
			}
		}
	}

	return m
}
