package node

import (
	"fmt"
	"time"

	"github.com/nazar-pc/substrate/internal/system"
)

// networkNotifier adapts the network request channel to the peer
// registry's Notifier interface. Commands are bounded the same way
// facade round-trips are: if the network stack does not acknowledge in
// time the command counts as rejected and the registry rolls back.
type networkNotifier struct {
	requests chan<- system.NetworkRequest
	timeout  time.Duration
}

func (n *networkNotifier) AddReserved(peerID, addr string) error {
	req := system.AddReservedRequest{PeerID: peerID, Addr: addr, Reply: make(chan error, 1)}
	return n.send(req, req.Reply)
}

func (n *networkNotifier) RemoveReserved(peerID string) error {
	req := system.RemoveReservedRequest{PeerID: peerID, Reply: make(chan error, 1)}
	return n.send(req, req.Reply)
}

func (n *networkNotifier) send(req system.NetworkRequest, reply <-chan error) error {
	deadline := time.NewTimer(n.timeout)
	defer deadline.Stop()

	select {
	case n.requests <- req:
	case <-deadline.C:
		return fmt.Errorf("reserved peer command: %w", system.ErrSubsystemUnavailable)
	}

	select {
	case err, ok := <-reply:
		if !ok {
			return fmt.Errorf("reserved peer command: %w", system.ErrSubsystemUnavailable)
		}
		return err
	case <-deadline.C:
		return fmt.Errorf("reserved peer command: %w", system.ErrSubsystemUnavailable)
	}
}
