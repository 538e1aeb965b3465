// Package node wires the status service to its collaborators and owns
// their lifecycle.
package node

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nazar-pc/substrate/internal/chainspec"
	"github.com/nazar-pc/substrate/internal/config"
	"github.com/nazar-pc/substrate/internal/logfilter"
	"github.com/nazar-pc/substrate/internal/peerset"
	"github.com/nazar-pc/substrate/internal/syncstate"
	"github.com/nazar-pc/substrate/internal/system"
)

const (
	// healthLogTick is how often the node reports its own health.
	healthLogTick = 30 * time.Second
	// metricsTick is how often exported gauges are refreshed.
	metricsTick = 5 * time.Second
)

// Node assembles the status service and the channel endpoints the
// network stack and sync engine attach to.
type Node struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     *config.Config
	spec    *chainspec.Spec
	service *system.Service

	registry *peerset.Registry
	tracker  *syncstate.Tracker
	logs     *logfilter.Controller
	metrics  *system.Metrics

	// subsystem endpoints
	networkRequests chan system.NetworkRequest
	peerEvents      chan peerset.Event
	syncUpdates     chan syncstate.Status

	metricsServer *http.Server
	log           *logrus.Entry

	done chan struct{}
}

// New builds a node from configuration: chain spec, log filter
// baseline, peer registry, sync tracker values and the status service
// on top. Configuration problems surface here, at startup, so the
// service's own query paths stay infallible.
func New(ctx context.Context, cfg *config.Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	spec, err := chainspec.Load(cfg.ChainSpecPath)
	if err != nil {
		return nil, err
	}

	base := logrus.New()
	base.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	base.SetLevel(level)

	logs, err := logfilter.NewController(base, cfg.LogDirectives)
	if err != nil {
		return nil, err
	}

	roles := make([]system.NodeRole, 0, len(cfg.Roles))
	for _, r := range cfg.Roles {
		role, err := system.ParseRole(r)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	networkRequests := make(chan system.NetworkRequest)
	notifier := &networkNotifier{requests: networkRequests, timeout: cfg.RequestTimeout}
	registry := peerset.NewRegistry(notifier, logs.Logger("peerset"))
	tracker := syncstate.NewTracker(0, logs.Logger("sync"))

	metrics := system.NewMetrics(nil)

	service, err := system.NewService(system.Config{
		Info: system.Info{
			Name:    cfg.NodeName,
			Version: cfg.Version,
			Spec:    spec,
			Roles:   roles,
			IsDev:   cfg.Dev || spec.ChainType.IsDevelopment(),
		},
		Registry: registry,
		Sync:     tracker,
		Logs:     logs,
		Network:  networkRequests,
		Timeout:  cfg.RequestTimeout,
		Metrics:  metrics,
		Log:      logs.Logger("system"),
	})
	if err != nil {
		metrics.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Node{
		ctx:             ctx,
		cancel:          cancel,
		cfg:             cfg,
		spec:            spec,
		service:         service,
		registry:        registry,
		tracker:         tracker,
		logs:            logs,
		metrics:         metrics,
		networkRequests: networkRequests,
		peerEvents:      make(chan peerset.Event, 64),
		syncUpdates:     make(chan syncstate.Status, 16),
		log:             logs.Logger("node"),
		done:            make(chan struct{}),
	}, nil
}

// Service returns the status service facade.
func (n *Node) Service() *system.Service { return n.service }

// NetworkRequests is consumed by the network stack to answer status
// queries and reserved-peer commands.
func (n *Node) NetworkRequests() <-chan system.NetworkRequest { return n.networkRequests }

// PeerEvents is written by the network stack on peer connect,
// disconnect and best-block announcements.
func (n *Node) PeerEvents() chan<- peerset.Event { return n.peerEvents }

// SyncUpdates is written by the sync engine as its progress changes.
func (n *Node) SyncUpdates() chan<- syncstate.Status { return n.syncUpdates }

// Start launches the node's background loops and, if configured, the
// Prometheus endpoint.
func (n *Node) Start() error {
	go n.tracker.Run(n.ctx, n.syncUpdates)
	go n.consumePeerEvents()
	go n.periodicTasks()

	if n.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		n.metricsServer = &http.Server{Addr: n.cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := n.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				n.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	n.log.WithFields(logrus.Fields{
		"name":    n.cfg.NodeName,
		"version": n.cfg.Version,
		"chain":   n.spec.Name,
		"type":    n.spec.ChainType.String(),
	}).Info("Node status service started")
	return nil
}

// Stop tears the node down and releases its metrics.
func (n *Node) Stop() error {
	n.cancel()
	<-n.done

	if n.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.metricsServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
	}

	n.metrics.Close()
	return nil
}

// consumePeerEvents folds network-layer connection events into the
// peer registry.
func (n *Node) consumePeerEvents() {
	for {
		select {
		case <-n.ctx.Done():
			return
		case ev := <-n.peerEvents:
			n.registry.Apply(ev)
		}
	}
}

// periodicTasks refreshes exported gauges and logs a health report
// until the node stops.
func (n *Node) periodicTasks() {
	defer close(n.done)

	metricsTicker := time.NewTicker(metricsTick)
	healthTicker := time.NewTicker(healthLogTick)
	defer metricsTicker.Stop()
	defer healthTicker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-metricsTicker.C:
			n.updateMetrics()
		case <-healthTicker.C:
			h := n.service.Health()
			n.log.WithFields(logrus.Fields{
				"peers":   h.Peers,
				"syncing": h.IsSyncing,
				"healthy": h.Ok(),
			}).Info("Node health")
		}
	}
}

func (n *Node) updateMetrics() {
	n.metrics.PeerCount.Set(float64(n.registry.PeerCount()))
	n.metrics.ReservedPeerCount.Set(float64(n.registry.ReservedCount()))

	s := n.tracker.Snapshot()
	n.metrics.SyncCurrentBlock.Set(float64(s.CurrentBlock))
	if s.HighestBlock != nil {
		n.metrics.SyncHighestBlock.Set(float64(*s.HighestBlock))
	}
}
