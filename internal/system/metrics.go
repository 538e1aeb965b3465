package system

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics exported by the status service.
type Metrics struct {
	registry prometheus.Registerer

	PeerCount         prometheus.Gauge
	ReservedPeerCount prometheus.Gauge
	SyncCurrentBlock  prometheus.Gauge
	SyncHighestBlock  prometheus.Gauge
	NetworkRequests   *prometheus.HistogramVec
	SubsystemTimeouts prometheus.Counter
}

// NewMetrics creates and registers all status service metrics. A nil
// registerer uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registry: reg,
		PeerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_node_peer_count",
			Help: "Number of connected peers",
		}),
		ReservedPeerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_node_reserved_peer_count",
			Help: "Size of the reserved peer set",
		}),
		SyncCurrentBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_node_sync_current_block",
			Help: "Current best block of the sync engine",
		}),
		SyncHighestBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_node_sync_highest_block",
			Help: "Highest block known from connected peers",
		}),
		NetworkRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "substrate_node_network_request_seconds",
			Help:    "Duration of round-trips to the network subsystem",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
		SubsystemTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "substrate_node_subsystem_timeouts_total",
			Help: "Subsystem round-trips abandoned after the request timeout",
		}),
	}

	reg.MustRegister(
		m.PeerCount,
		m.ReservedPeerCount,
		m.SyncCurrentBlock,
		m.SyncHighestBlock,
		m.NetworkRequests,
		m.SubsystemTimeouts,
	)

	return m
}

// Close unregisters all metrics.
func (m *Metrics) Close() {
	for _, c := range []prometheus.Collector{
		m.PeerCount,
		m.ReservedPeerCount,
		m.SyncCurrentBlock,
		m.SyncHighestBlock,
		m.NetworkRequests,
		m.SubsystemTimeouts,
	} {
		m.registry.Unregister(c)
	}
}
