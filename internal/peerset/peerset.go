// Package peerset tracks connected peers and the reserved-peer policy.
package peerset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/decred/base58"
	ma "github.com/multiformats/go-multiaddr"
)

var (
	// ErrInvalidAddress is returned when a reserved-peer address is not
	// a valid multiaddr carrying a /p2p/ peer identifier.
	ErrInvalidAddress = errors.New("invalid peer address")
	// ErrInvalidPeerID is returned when a peer identifier is not a
	// well-formed base58 multihash.
	ErrInvalidPeerID = errors.New("invalid peer id")
	// ErrAlreadyReserved is returned when adding a peer that is already
	// in the reserved set.
	ErrAlreadyReserved = errors.New("peer already reserved")
	// ErrNotReserved is returned when removing a peer that is not in
	// the reserved set.
	ErrNotReserved = errors.New("peer not reserved")
)

// PeerInfo describes a currently connected peer: its identifier, the
// roles it advertised during the handshake, and its best known block.
type PeerInfo struct {
	PeerID     string            `json:"peerId"`
	Roles      string            `json:"roles"`
	BestHash   types.Hash        `json:"bestHash"`
	BestNumber types.BlockNumber `json:"bestNumber"`
}

// multihash prefixes are two bytes, digests 32 to 64 bytes.
const (
	minPeerIDBytes = 34
	maxPeerIDBytes = 66
)

// ValidatePeerID checks that id is a plausible base58-encoded peer
// identifier (e.g. "QmSk5HQbn6LhUwDiNMseVUjuRYhEtYj4aUZ6WfWoGURpdV").
func ValidatePeerID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPeerID)
	}
	decoded := base58.Decode(id)
	if len(decoded) == 0 {
		return fmt.Errorf("%w: %q is not base58", ErrInvalidPeerID, id)
	}
	if len(decoded) < minPeerIDBytes || len(decoded) > maxPeerIDBytes {
		return fmt.Errorf("%w: %q has unexpected length", ErrInvalidPeerID, id)
	}
	return nil
}

// ParseReservedAddr parses a reserved-peer address of the form
// /ip4/198.51.100.19/tcp/30333/p2p/QmSk5HQbn...  and returns the
// embedded peer identifier. Addresses without a trailing /p2p/ suffix
// are rejected: a reserved peer must be unambiguously identified.
func ParseReservedAddr(addr string) (string, error) {
	if !strings.HasPrefix(addr, "/") {
		return "", fmt.Errorf("%w: %q is not a multiaddr", ErrInvalidAddress, addr)
	}
	parsed, err := ma.NewMultiaddr(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	id, err := parsed.ValueForProtocol(ma.P_P2P)
	if err != nil {
		return "", fmt.Errorf("%w: %q lacks a /p2p/ peer id", ErrInvalidAddress, addr)
	}
	if err := ValidatePeerID(id); err != nil {
		return "", err
	}
	return id, nil
}
