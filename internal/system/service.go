// Package system implements the node status service: the component
// that aggregates live subsystem state into point-in-time answers and
// mutates shared node policy on behalf of external callers.
package system

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nazar-pc/substrate/internal/chainspec"
	"github.com/nazar-pc/substrate/internal/health"
	"github.com/nazar-pc/substrate/internal/logfilter"
	"github.com/nazar-pc/substrate/internal/peerset"
	"github.com/nazar-pc/substrate/internal/syncstate"
)

// NodeRole is a role the node advertises to the network. The set is
// fixed at startup.
type NodeRole string

const (
	RoleFull        NodeRole = "Full"
	RoleLightClient NodeRole = "LightClient"
	RoleAuthority   NodeRole = "Authority"
	RoleArchive     NodeRole = "Archive"
)

// ParseRole parses a role name from configuration.
func ParseRole(s string) (NodeRole, error) {
	switch NodeRole(s) {
	case RoleFull, RoleLightClient, RoleAuthority, RoleArchive:
		return NodeRole(s), nil
	}
	return "", fmt.Errorf("unknown node role %q", s)
}

// DefaultRequestTimeout bounds every round-trip to the network
// subsystem unless the service is configured otherwise.
const DefaultRequestTimeout = 5 * time.Second

// Info is the static identity the service reports. It never changes
// after startup; anything wrong with it is a startup error, not a
// runtime one.
type Info struct {
	Name    string
	Version string
	Spec    *chainspec.Spec
	Roles   []NodeRole
	IsDev   bool
}

// Service is the single entry point for status and control requests.
//
// It is stateless: all state lives in the registry, the sync tracker
// and the log controller, or behind the network request channel. Each
// request either reads local state synchronously or performs one
// bounded round-trip against the network subsystem.
type Service struct {
	info     Info
	registry *peerset.Registry
	sync     *syncstate.Tracker
	logs     *logfilter.Controller
	net      chan<- NetworkRequest
	timeout  time.Duration
	metrics  *Metrics
	log      *logrus.Entry
}

// Config collects the service's collaborators.
type Config struct {
	Info     Info
	Registry *peerset.Registry
	Sync     *syncstate.Tracker
	Logs     *logfilter.Controller
	Network  chan<- NetworkRequest
	Timeout  time.Duration
	Metrics  *Metrics
	Log      *logrus.Entry
}

// NewService wires a status service from its collaborators.
func NewService(cfg Config) (*Service, error) {
	if cfg.Info.Name == "" || cfg.Info.Version == "" {
		return nil, fmt.Errorf("service: name and version are required")
	}
	if cfg.Info.Spec == nil {
		return nil, fmt.Errorf("service: chain spec is required")
	}
	if len(cfg.Info.Roles) == 0 {
		return nil, fmt.Errorf("service: at least one node role is required")
	}
	if cfg.Registry == nil || cfg.Sync == nil || cfg.Logs == nil || cfg.Network == nil {
		return nil, fmt.Errorf("service: all collaborators are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Service{
		info:     cfg.Info,
		registry: cfg.Registry,
		sync:     cfg.Sync,
		logs:     cfg.Logs,
		net:      cfg.Network,
		timeout:  cfg.Timeout,
		metrics:  cfg.Metrics,
		log:      cfg.Log,
	}, nil
}

// Name returns the node implementation name.
func (s *Service) Name() string { return s.info.Name }

// Version returns the node implementation version, a semver string.
func (s *Service) Version() string { return s.info.Version }

// Chain returns the chain name from the chain specification.
func (s *Service) Chain() string { return s.info.Spec.Name }

// ChainType returns the kind of network the chain runs as.
func (s *Service) ChainType() chainspec.ChainType { return s.info.Spec.ChainType }

// Properties returns the chain-spec-defined property bag, opaque to
// the node.
func (s *Service) Properties() chainspec.Properties { return s.info.Spec.Properties }

// NodeRoles returns the roles the node is running as.
func (s *Service) NodeRoles() []NodeRole {
	roles := make([]NodeRole, len(s.info.Roles))
	copy(roles, s.info.Roles)
	return roles
}

// Health recomputes the node health report from live state. A node is
// conventionally healthy when it has peers (unless running a
// development chain) and is not stuck in a major sync.
func (s *Service) Health() health.Health {
	return health.Evaluate(s.registry.PeerCount(), s.sync.IsMajorSyncing(), s.info.IsDev)
}

// SyncState returns the latest block-sync snapshot.
func (s *Service) SyncState() syncstate.Status {
	return s.sync.Snapshot()
}

// LocalPeerID returns the base58-encoded peer id of the local node.
func (s *Service) LocalPeerID(ctx context.Context) (string, error) {
	req := LocalPeerIDRequest{Reply: make(chan string, 1)}
	return roundTrip(ctx, s, "local_peer_id", req, req.Reply)
}

// LocalListenAddresses returns the multiaddresses the local node
// listens on, each with a trailing /p2p/ local peer id suffix.
func (s *Service) LocalListenAddresses(ctx context.Context) ([]string, error) {
	req := ListenAddressesRequest{Reply: make(chan []string, 1)}
	return roundTrip(ctx, s, "listen_addresses", req, req.Reply)
}

// Peers returns the currently connected peers as reported by the
// network subsystem.
func (s *Service) Peers(ctx context.Context) ([]peerset.PeerInfo, error) {
	req := PeersRequest{Reply: make(chan []peerset.PeerInfo, 1)}
	return roundTrip(ctx, s, "peers", req, req.Reply)
}

// NetworkState returns the network stack's internal state dump.
//
// The payload is explicitly unstable: its shape is owned by the
// network stack and may change between versions without notice. Do not
// interpret it programmatically.
func (s *Service) NetworkState(ctx context.Context) (json.RawMessage, error) {
	req := NetworkStateRequest{Reply: make(chan json.RawMessage, 1)}
	return roundTrip(ctx, s, "network_state", req, req.Reply)
}

// AddReservedPeer adds a reserved peer. The address must be a
// multiaddr with an embedded /p2p/ peer id, e.g.
// /ip4/198.51.100.19/tcp/30333/p2p/QmSk5HQbn6LhUwDiNMseVUjuRYhEtYj4aUZ6WfWoGURpdV.
func (s *Service) AddReservedPeer(addr string) error {
	if err := s.registry.AddReserved(addr); err != nil {
		return err
	}
	s.updateReservedMetric()
	return nil
}

// RemoveReservedPeer removes a reserved peer by its peer id.
func (s *Service) RemoveReservedPeer(peerID string) error {
	if err := s.registry.RemoveReserved(peerID); err != nil {
		return err
	}
	s.updateReservedMetric()
	return nil
}

// ReservedPeers returns the reserved peer ids.
func (s *Service) ReservedPeers() []string {
	return s.registry.ListReserved()
}

// AddLogFilter merges the supplied directives into the active log
// filter. The syntax is the CLI's "target=level,target=level".
func (s *Service) AddLogFilter(directives string) error {
	if err := s.logs.AddDirectives(directives); err != nil {
		return err
	}
	s.log.WithField("directives", directives).Info("Log filter updated")
	return nil
}

// ResetLogFilter restores the log filter captured at startup.
func (s *Service) ResetLogFilter() {
	s.logs.Reset()
	s.log.Info("Log filter reset to defaults")
}

func (s *Service) updateReservedMetric() {
	if s.metrics != nil {
		s.metrics.ReservedPeerCount.Set(float64(s.registry.ReservedCount()))
	}
}

// roundTrip performs one bounded request/response exchange with the
// network subsystem. On timeout the request is abandoned; the reply
// channel is buffered so a late answer is dropped, not blocked on.
func roundTrip[T any](ctx context.Context, s *Service, call string, req NetworkRequest, reply <-chan T) (T, error) {
	var zero T

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.NetworkRequests.WithLabelValues(call))
		defer timer.ObserveDuration()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case s.net <- req:
	case <-ctx.Done():
		return zero, s.unavailable(call, "request not accepted")
	}

	select {
	case v, ok := <-reply:
		if !ok {
			return zero, s.unavailable(call, "subsystem closed reply")
		}
		return v, nil
	case <-ctx.Done():
		return zero, s.unavailable(call, "no response before deadline")
	}
}

func (s *Service) unavailable(call, reason string) error {
	if s.metrics != nil {
		s.metrics.SubsystemTimeouts.Inc()
	}
	s.log.WithFields(logrus.Fields{"call": call, "reason": reason}).
		Warn("Network subsystem round-trip failed")
	return fmt.Errorf("%s: %w", call, ErrSubsystemUnavailable)
}
