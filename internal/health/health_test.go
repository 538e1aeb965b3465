package health

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateShouldHavePeers(t *testing.T) {
	// shouldHavePeers tracks dev mode only, independent of peer count
	// and sync state.
	for peers := uint(0); peers <= 64; peers++ {
		for _, syncing := range []bool{false, true} {
			require.True(t, Evaluate(peers, syncing, false).ShouldHavePeers)
			require.False(t, Evaluate(peers, syncing, true).ShouldHavePeers)
		}
	}
}

func TestEvaluateCarriesInputs(t *testing.T) {
	h := Evaluate(7, true, false)
	require.Equal(t, uint(7), h.Peers)
	require.True(t, h.IsSyncing)
	require.True(t, h.ShouldHavePeers)
}

func TestOk(t *testing.T) {
	for peers := uint(0); peers <= 64; peers++ {
		for _, dev := range []bool{false, true} {
			h := Evaluate(peers, false, dev)
			require.Equal(t, peers > 0 || dev, h.Ok(),
				"peers=%d dev=%v", peers, dev)
		}
	}
}
