package peerset

// EventType discriminates peer connection events.
type EventType int

const (
	// EventConnected: a new peer finished the handshake.
	EventConnected EventType = iota
	// EventDisconnected: a peer connection was closed.
	EventDisconnected
	// EventBestBlock: a connected peer announced a new chain head.
	EventBestBlock
)

// Event is a connection event pushed by the network layer. The
// registry applies events in arrival order to keep its peer cache
// current without ever querying the network itself.
type Event struct {
	Type EventType
	Peer PeerInfo
}

// Apply folds a connection event into the registry.
func (r *Registry) Apply(ev Event) {
	switch ev.Type {
	case EventConnected:
		r.PeerConnected(ev.Peer)
	case EventDisconnected:
		r.PeerDisconnected(ev.Peer.PeerID)
	case EventBestBlock:
		r.UpdateBestBlock(ev.Peer.PeerID, ev.Peer)
	}
}
