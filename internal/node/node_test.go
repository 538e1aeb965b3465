package node

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/require"

	"github.com/nazar-pc/substrate/internal/config"
	"github.com/nazar-pc/substrate/internal/peerset"
	"github.com/nazar-pc/substrate/internal/syncstate"
	"github.com/nazar-pc/substrate/internal/system"
)

const testPeerID = "QmRHoJ6G7jXbSChYAVEBgJtwqigw9nwqmkhowfbDYeDkJT"

func writeChainSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.json")
	raw := `{
		"name": "Local Testnet",
		"id": "local_testnet",
		"chainType": "Local",
		"properties": {"tokenSymbol": "UNIT", "tokenDecimals": 12}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		NodeName:       "substrate-node",
		Version:        "0.9.0",
		ChainSpecPath:  writeChainSpec(t),
		Roles:          []string{"Full"},
		LogLevel:       "error",
		RequestTimeout: 200 * time.Millisecond,
	}
}

func startNode(t *testing.T) *Node {
	t.Helper()
	n, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() { require.NoError(t, n.Stop()) })
	return n
}

// runNetworkStub answers the node's network requests until stop closes.
func runNetworkStub(n *Node, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case req := <-n.NetworkRequests():
			switch r := req.(type) {
			case system.LocalPeerIDRequest:
				r.Reply <- testPeerID
			case system.ListenAddressesRequest:
				r.Reply <- []string{"/ip4/127.0.0.1/tcp/30333/p2p/" + testPeerID}
			case system.PeersRequest:
				r.Reply <- nil
			case system.NetworkStateRequest:
				r.Reply <- []byte(`{}`)
			case system.AddReservedRequest:
				r.Reply <- nil
			case system.RemoveReservedRequest:
				r.Reply <- nil
			}
		}
	}
}

func TestNewValidatesConfiguration(t *testing.T) {
	cfg := testConfig(t)
	cfg.Roles = []string{"Sentry"}
	_, err := New(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.ChainSpecPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = New(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.LogDirectives = "sync=loud"
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNodeEndToEnd(t *testing.T) {
	n := startNode(t)

	stop := make(chan struct{})
	defer close(stop)
	go runNetworkStub(n, stop)

	svc := n.Service()
	require.Equal(t, "substrate-node", svc.Name())
	require.Equal(t, "Local Testnet", svc.Chain())

	// peer events flow into the health report
	n.PeerEvents() <- peerset.Event{Type: peerset.EventConnected, Peer: peerset.PeerInfo{
		PeerID: testPeerID,
		Roles:  "FULL",
	}}
	require.Eventually(t, func() bool {
		return svc.Health().Peers == 1
	}, time.Second, 5*time.Millisecond)

	// sync updates flow into the sync state snapshot
	highest := types.BlockNumber(90)
	n.SyncUpdates() <- syncstate.Status{CurrentBlock: 30, HighestBlock: &highest, IsMajorSyncing: true}
	require.Eventually(t, func() bool {
		return svc.SyncState().CurrentBlock == 30
	}, time.Second, 5*time.Millisecond)
	require.True(t, svc.Health().IsSyncing)

	// reserved peer commands reach the stub network
	addr := "/ip4/127.0.0.1/tcp/30333/p2p/" + testPeerID
	require.NoError(t, svc.AddReservedPeer(addr))
	require.Equal(t, []string{testPeerID}, svc.ReservedPeers())

	// facade round-trips answered by the stub
	id, err := svc.LocalPeerID(context.Background())
	require.NoError(t, err)
	require.Equal(t, testPeerID, id)
}

func TestNodeWithoutNetworkTimesOut(t *testing.T) {
	n := startNode(t)

	_, err := n.Service().LocalPeerID(context.Background())
	require.ErrorIs(t, err, system.ErrSubsystemUnavailable)

	// reserved peer commands fail closed and leave no trace
	addr := "/ip4/127.0.0.1/tcp/30333/p2p/" + testPeerID
	err = n.Service().AddReservedPeer(addr)
	require.ErrorIs(t, err, system.ErrSubsystemUnavailable)
	require.Empty(t, n.Service().ReservedPeers())
}

func TestDevChainSpecImpliesDevMode(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "dev.json")
	raw := `{"name":"Development","id":"dev","chainType":"Development","properties":{}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	cfg.ChainSpecPath = path

	n, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	defer func() { require.NoError(t, n.Stop()) }()

	require.False(t, n.Service().Health().ShouldHavePeers)
}
