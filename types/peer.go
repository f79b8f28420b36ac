// fork from github.com/tendermint/tendermint/types/validator.go
package types

import (
	"errors"
	"fmt"

	"github.com/tendermint/tendermint/crypto"
)

// Peer is a single member of the validating set: a public key and the
// network endpoint it can be reached at. Peers have a stable position in
// the chain ordering (§3) — the index a Peer is found at in a PeerSet's
// slice IS its chain position, so callers must not reorder a PeerSet
// after construction.
type Peer struct {
	Address  Address       `json:"address"`
	PubKey   crypto.PubKey `json:"pub_key"`
	Endpoint string        `json:"endpoint"`
}

// NewPeer returns a Peer derived from a public key and network endpoint.
func NewPeer(pubKey crypto.PubKey, endpoint string) *Peer {
	return &Peer{
		Address:  GetAddress(pubKey),
		PubKey:   pubKey,
		Endpoint: endpoint,
	}
}

func (p *Peer) ValidateBasic() error {
	if p == nil {
		return errors.New("nil peer")
	}
	if p.PubKey == nil {
		return errors.New("peer has no public key")
	}
	if len(p.Address) != crypto.AddressSize {
		return fmt.Errorf("peer address is the wrong size: %v", p.Address)
	}
	return nil
}

func (p *Peer) String() string {
	if p == nil {
		return "nil-Peer"
	}
	return fmt.Sprintf("Peer{%v %v}", p.Address, p.Endpoint)
}

// PeerSet is the globally agreed, position-ordered set of peers that
// defines the chain 0 → 1 → … → N-1 (§3). It is a read-only snapshot:
// PeerService hands one out per call and callers never mutate it.
type PeerSet struct {
	peers []*Peer
}

// NewPeerSet builds a PeerSet from peers already in their agreed chain
// order (lexicographic on address, or an explicit index assigned by
// configuration — the ordering decision lives with PeerService, not here).
func NewPeerSet(peers []*Peer) *PeerSet {
	cp := make([]*Peer, len(peers))
	copy(cp, peers)
	return &PeerSet{peers: cp}
}

// Size returns N, the number of peers in the set.
func (ps *PeerSet) Size() int {
	if ps == nil {
		return 0
	}
	return len(ps.peers)
}

// At returns the peer at the given chain position, or nil if out of range.
func (ps *PeerSet) At(position int) *Peer {
	if ps == nil || position < 0 || position >= len(ps.peers) {
		return nil
	}
	return ps.peers[position]
}

// IndexOf returns the chain position of the peer with the given address,
// or -1 if not present.
func (ps *PeerSet) IndexOf(addr Address) int {
	if ps == nil {
		return -1
	}
	for i, p := range ps.peers {
		if p.Address.Equal(addr) {
			return i
		}
	}
	return -1
}

// IndexOfPubKey returns the chain position of the peer with the given
// public key bytes, or -1 if not present. Used by sigverify to check
// whether a counted signature's pubkey belongs to the active set (§4.3.5).
func (ps *PeerSet) IndexOfPubKey(pubKey []byte) int {
	if ps == nil {
		return -1
	}
	for i, p := range ps.peers {
		if p.PubKey != nil && string(p.PubKey.Bytes()) == string(pubKey) {
			return i
		}
	}
	return -1
}

// Peers returns a copy of the ordered peer slice.
func (ps *PeerSet) Peers() []*Peer {
	if ps == nil {
		return nil
	}
	cp := make([]*Peer, len(ps.peers))
	copy(cp, ps.peers)
	return cp
}
