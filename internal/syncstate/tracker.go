// Package syncstate caches the block-sync engine's progress for status queries.
package syncstate

import (
	"context"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/sirupsen/logrus"
)

// Status is a snapshot of block-sync progress as reported by the sync
// engine: the block the node started syncing from, the current best
// block, and the highest block known from peers (absent until the node
// has heard from the network).
type Status struct {
	StartingBlock types.BlockNumber  `json:"startingBlock"`
	CurrentBlock  types.BlockNumber  `json:"currentBlock"`
	HighestBlock  *types.BlockNumber `json:"highestBlock,omitempty"`

	// IsMajorSyncing is true while the engine considers itself far
	// behind the network head. Not part of the syncState response
	// shape, reported through health instead.
	IsMajorSyncing bool `json:"-"`
}

// valid reports whether the snapshot is internally consistent.
func (s Status) valid() bool {
	if s.StartingBlock > s.CurrentBlock {
		return false
	}
	if s.HighestBlock != nil && s.CurrentBlock > *s.HighestBlock {
		return false
	}
	return true
}

// Tracker is a read-through cache of the latest Status pushed by the
// sync engine. The engine is the only writer; concurrent pushes are
// last-write-wins. Readers get a copy and never block a writer for
// longer than the copy takes.
type Tracker struct {
	mu  sync.RWMutex
	cur Status
	log *logrus.Entry
}

// NewTracker creates a tracker seeded with the node's starting block.
func NewTracker(start types.BlockNumber, log *logrus.Entry) *Tracker {
	return &Tracker{
		cur: Status{StartingBlock: start, CurrentBlock: start},
		log: log,
	}
}

// Run consumes sync engine updates until the context is cancelled or
// the channel is closed.
func (t *Tracker) Run(ctx context.Context, updates <-chan Status) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			t.Set(s)
		}
	}
}

// Set replaces the cached status wholesale. Snapshots that violate the
// starting <= current <= highest ordering are dropped so readers never
// observe an inconsistent state.
func (t *Tracker) Set(s Status) {
	if !s.valid() {
		t.log.WithFields(logrus.Fields{
			"starting": s.StartingBlock,
			"current":  s.CurrentBlock,
		}).Warn("Dropping inconsistent sync status update")
		return
	}
	t.mu.Lock()
	t.cur = s
	t.mu.Unlock()
}

// Snapshot returns a copy of the latest sync status.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.cur
	if t.cur.HighestBlock != nil {
		h := *t.cur.HighestBlock
		s.HighestBlock = &h
	}
	return s
}

// IsMajorSyncing reports whether the sync engine last declared a major sync.
func (t *Tracker) IsMajorSyncing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cur.IsMajorSyncing
}
