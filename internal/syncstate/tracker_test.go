package syncstate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/require"

	"github.com/nazar-pc/substrate/internal/testutil"
)

func num(n uint32) *types.BlockNumber {
	b := types.BlockNumber(n)
	return &b
}

func newTracker(t *testing.T, start uint32) (*Tracker, *testutil.TestLogger) {
	log := testutil.NewTestLogger(t)
	return NewTracker(types.BlockNumber(start), log.Entry("sync")), log
}

func TestSnapshotInvariant(t *testing.T) {
	tr, _ := newTracker(t, 100)

	updates := []Status{
		{StartingBlock: 100, CurrentBlock: 100},
		{StartingBlock: 100, CurrentBlock: 250, HighestBlock: num(1000), IsMajorSyncing: true},
		{StartingBlock: 100, CurrentBlock: 1000, HighestBlock: num(1000)},
	}
	for _, u := range updates {
		tr.Set(u)
		s := tr.Snapshot()
		require.LessOrEqual(t, s.StartingBlock, s.CurrentBlock)
		if s.HighestBlock != nil {
			require.LessOrEqual(t, s.CurrentBlock, *s.HighestBlock)
		}
	}
}

func TestSetDropsInconsistentUpdates(t *testing.T) {
	tr, log := newTracker(t, 100)
	tr.Set(Status{StartingBlock: 100, CurrentBlock: 200, HighestBlock: num(500)})

	// current behind starting
	tr.Set(Status{StartingBlock: 300, CurrentBlock: 200})
	// current past highest
	tr.Set(Status{StartingBlock: 100, CurrentBlock: 600, HighestBlock: num(500)})

	s := tr.Snapshot()
	require.Equal(t, types.BlockNumber(200), s.CurrentBlock)
	require.Equal(t, types.BlockNumber(500), *s.HighestBlock)
	require.True(t, strings.Contains(log.String(), "Dropping inconsistent sync status"))
}

func TestLastWriteWins(t *testing.T) {
	tr, _ := newTracker(t, 0)
	tr.Set(Status{CurrentBlock: 10, IsMajorSyncing: true})
	tr.Set(Status{CurrentBlock: 11})

	require.Equal(t, types.BlockNumber(11), tr.Snapshot().CurrentBlock)
	require.False(t, tr.IsMajorSyncing())
}

func TestSnapshotCopiesHighestBlock(t *testing.T) {
	tr, _ := newTracker(t, 0)
	tr.Set(Status{CurrentBlock: 5, HighestBlock: num(9)})

	s := tr.Snapshot()
	*s.HighestBlock = 42
	require.Equal(t, types.BlockNumber(9), *tr.Snapshot().HighestBlock)
}

func TestRunConsumesUpdates(t *testing.T) {
	tr, _ := newTracker(t, 0)
	updates := make(chan Status)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		tr.Run(ctx, updates)
		close(done)
	}()

	updates <- Status{CurrentBlock: 3, IsMajorSyncing: true}
	require.Eventually(t, tr.IsMajorSyncing, time.Second, time.Millisecond)

	close(updates)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop on closed channel")
	}
}
