package system

import (
	"encoding/json"

	"github.com/nazar-pc/substrate/internal/peerset"
)

// NetworkRequest is a message sent to the network subsystem over its
// request channel. Each variant carries its own buffered reply channel
// so an abandoned request can never block the subsystem's answer.
//
// The service holds only the channel handle; the network stack behind
// it is free to change shape without touching this package.
type NetworkRequest interface {
	networkRequest()
}

// LocalPeerIDRequest asks for the base58-encoded local peer id.
type LocalPeerIDRequest struct {
	Reply chan string
}

// ListenAddressesRequest asks for the multiaddresses the node listens
// on. Each returned address carries a trailing /p2p/ suffix with the
// local peer id, making it directly usable as a reserved-peer or
// bootnode address.
type ListenAddressesRequest struct {
	Reply chan []string
}

// PeersRequest asks for a fresh list of currently connected peers.
type PeersRequest struct {
	Reply chan []peerset.PeerInfo
}

// NetworkStateRequest asks for the network stack's internal state dump.
type NetworkStateRequest struct {
	Reply chan json.RawMessage
}

// AddReservedRequest commands the network stack to treat a peer as
// reserved. A non-nil error on Reply means the command was rejected.
type AddReservedRequest struct {
	PeerID string
	Addr   string
	Reply  chan error
}

// RemoveReservedRequest commands the network stack to drop a peer from
// its reserved set.
type RemoveReservedRequest struct {
	PeerID string
	Reply  chan error
}

func (LocalPeerIDRequest) networkRequest()     {}
func (ListenAddressesRequest) networkRequest() {}
func (PeersRequest) networkRequest()           {}
func (NetworkStateRequest) networkRequest()    {}
func (AddReservedRequest) networkRequest()     {}
func (RemoveReservedRequest) networkRequest()  {}
