package peerset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Notifier propagates reserved-peer changes to the network layer. It is
// implemented by an adapter over the network subsystem's command
// channel; the registry never holds the network stack itself.
type Notifier interface {
	AddReserved(peerID, addr string) error
	RemoveReserved(peerID string) error
}

// Registry is the authoritative record of connected peers and the
// reserved-peer set.
//
// Connection events from the network layer keep the peer cache current,
// so listing peers never touches the network. Reserved-peer mutations
// update the local view optimistically, then propagate through the
// Notifier; if the network layer rejects the change the local view is
// rolled back and the error surfaced to the caller.
//
// Writers are serialized; readers get copies and never block a writer
// for longer than the copy takes.
type Registry struct {
	// wmu serializes reserved-set writers across the whole mutation,
	// including the notifier round-trip, so two callers cannot
	// interleave their updates.
	wmu sync.Mutex
	// mu guards the maps and is held only for map access.
	mu       sync.RWMutex
	peers    map[string]PeerInfo
	reserved map[string]string // peer id -> address it was reserved with

	notifier Notifier
	log      *logrus.Entry
}

// NewRegistry creates an empty registry backed by the given notifier.
func NewRegistry(notifier Notifier, log *logrus.Entry) *Registry {
	return &Registry{
		peers:    make(map[string]PeerInfo),
		reserved: make(map[string]string),
		notifier: notifier,
		log:      log,
	}
}

// PeerConnected records a newly connected peer, replacing any stale
// entry for the same identifier.
func (r *Registry) PeerConnected(info PeerInfo) {
	r.mu.Lock()
	r.peers[info.PeerID] = info
	r.mu.Unlock()
	r.log.WithField("peer", info.PeerID).Debug("Peer connected")
}

// PeerDisconnected drops a peer from the connected set. Reserved status
// is unaffected: the network layer keeps trying to reconnect.
func (r *Registry) PeerDisconnected(peerID string) {
	r.mu.Lock()
	delete(r.peers, peerID)
	r.mu.Unlock()
	r.log.WithField("peer", peerID).Debug("Peer disconnected")
}

// UpdateBestBlock refreshes a connected peer's reported chain head.
func (r *Registry) UpdateBestBlock(peerID string, info PeerInfo) {
	r.mu.Lock()
	if _, ok := r.peers[peerID]; ok {
		r.peers[peerID] = info
	}
	r.mu.Unlock()
}

// ListPeers returns a consistent snapshot of the connected peers,
// ordered by peer id.
func (r *Registry) ListPeers() []PeerInfo {
	r.mu.RLock()
	peers := make([]PeerInfo, 0, len(r.peers))
	for _, info := range r.peers {
		peers = append(peers, info)
	}
	r.mu.RUnlock()

	sort.Slice(peers, func(i, j int) bool { return peers[i].PeerID < peers[j].PeerID })
	return peers
}

// PeerCount returns the number of currently connected peers.
func (r *Registry) PeerCount() uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint(len(r.peers))
}

// AddReserved parses addr, which must embed a /p2p/ peer identifier,
// and adds the peer to the reserved set. Adding a peer that is already
// reserved fails with ErrAlreadyReserved.
func (r *Registry) AddReserved(addr string) error {
	peerID, err := ParseReservedAddr(addr)
	if err != nil {
		return err
	}

	r.wmu.Lock()
	defer r.wmu.Unlock()

	r.mu.Lock()
	if _, ok := r.reserved[peerID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyReserved, peerID)
	}
	r.reserved[peerID] = addr
	r.mu.Unlock()

	if err := r.notifier.AddReserved(peerID, addr); err != nil {
		r.mu.Lock()
		delete(r.reserved, peerID)
		r.mu.Unlock()
		return fmt.Errorf("reserving peer %s: %w", peerID, err)
	}

	r.log.WithFields(logrus.Fields{"peer": peerID, "addr": addr}).Info("Reserved peer added")
	return nil
}

// RemoveReserved removes a peer from the reserved set by identifier.
// Removing a peer that is not reserved fails with ErrNotReserved.
func (r *Registry) RemoveReserved(peerID string) error {
	if err := ValidatePeerID(peerID); err != nil {
		return err
	}

	r.wmu.Lock()
	defer r.wmu.Unlock()

	r.mu.Lock()
	addr, ok := r.reserved[peerID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotReserved, peerID)
	}
	delete(r.reserved, peerID)
	r.mu.Unlock()

	if err := r.notifier.RemoveReserved(peerID); err != nil {
		r.mu.Lock()
		r.reserved[peerID] = addr
		r.mu.Unlock()
		return fmt.Errorf("unreserving peer %s: %w", peerID, err)
	}

	r.log.WithField("peer", peerID).Info("Reserved peer removed")
	return nil
}

// ListReserved returns the reserved peer identifiers, ordered.
func (r *Registry) ListReserved() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.reserved))
	for id := range r.reserved {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// ReservedCount returns the size of the reserved set.
func (r *Registry) ReservedCount() uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint(len(r.reserved))
}
