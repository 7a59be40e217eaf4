package signaling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the signaling server's Prometheus counters, grounded on
// Chapter13/prom_http's promauto.NewCounter + promhttp.Handler idiom. Each
// server owns its own registry (rather than the global default one) so
// that multiple servers can coexist in the same process, e.g. in tests.
type metrics struct {
	registry           *prometheus.Registry
	contextsRegistered prometheus.Counter
	vaddrsAssigned     prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		contextsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "graybat_signaling_contexts_registered_total",
			Help: "Total number of named contexts fully registered by the signaling service.",
		}),
		vaddrsAssigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "graybat_signaling_vaddrs_assigned_total",
			Help: "Total number of VAddrs assigned by the signaling service.",
		}),
	}
}
