// Package health derives the node health report served to status callers.
package health

// Health is the point-in-time health report of the node. It is always
// recomputed from live subsystem state, never stored.
type Health struct {
	// Peers is the number of currently connected peers.
	Peers uint `json:"peers"`
	// IsSyncing is true while the node is performing a major sync to
	// catch up with the network head.
	IsSyncing bool `json:"isSyncing"`
	// ShouldHavePeers indicates whether a zero peer count is abnormal
	// for this node. Development chains run happily with no peers.
	ShouldHavePeers bool `json:"shouldHavePeers"`
}

// Evaluate computes the health report from the current peer count, the
// sync engine's major-sync flag and the static development-mode flag.
//
// The report carries the raw inputs rather than a single verdict so
// callers can apply their own policy. The conventional reading is that
// a node is healthy when it has peers (or does not need any) and is not
// stuck in a major sync.
func Evaluate(peerCount uint, isSyncing, isDevMode bool) Health {
	return Health{
		Peers:           peerCount,
		IsSyncing:       isSyncing,
		ShouldHavePeers: !isDevMode,
	}
}

// Ok reports the conventional healthy projection of the report: the
// node either has peers or is not expected to have any.
func (h Health) Ok() bool {
	return h.Peers > 0 || !h.ShouldHavePeers
}
