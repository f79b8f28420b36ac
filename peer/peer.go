// Package peer implements the PeerService collaborator (§6): read-only
// access to the active peer set and this node's own keypair.
//
// Grounded on the teacher's types.ValidatorSet (deterministic ordering,
// GetByIndex/Size) and privval.FilePV's key-holding shape, minus the
// disk-persisted double-sign guard — persistence format is an explicit
// spec.md Non-goal, and PeerService.selfSecretKey is specified as a pure
// accessor.
package peer

import (
	"github.com/mrsmuneton/iroha/types"
)

// Service is the read-only peer directory and local identity collaborator.
// Implementations must be safe for concurrent reads; nothing in this
// module ever asks a Service to mutate state (§5: "read-only snapshots,
// readers never block each other").
type Service interface {
	// ActivePeers returns the current, position-ordered peer set.
	ActivePeers() *types.PeerSet

	// SelfPubKey returns this node's own public key.
	SelfPubKey() []byte

	// SelfSecretKey returns this node's own secret key, used only by
	// the signing step of BlockProcessor.
	SelfSecretKey() []byte

	// SelfPosition returns this node's chain position within
	// ActivePeers(), or -1 if it is not a member of the active set.
	SelfPosition() int
}

// Static is a fixed-membership Service: the peer set and local keys never
// change once constructed. Reconfiguration is out of scope (§1 Non-goals
// — "BChain's embedded reconfiguration is deliberately deferred").
type Static struct {
	peers      *types.PeerSet
	selfPub    []byte
	selfSecret []byte
	selfPos    int
}

// NewStatic builds a Static PeerService. selfPub/selfSecret identify
// which member of peers is "this" node; selfPos is recomputed from peers
// rather than trusted blindly, so callers can't desync the two.
func NewStatic(peers *types.PeerSet, selfPub, selfSecret []byte) *Static {
	pos := -1
	for i, p := range peers.Peers() {
		if p.PubKey != nil && string(p.PubKey.Bytes()) == string(selfPub) {
			pos = i
			break
		}
	}
	return &Static{
		peers:      peers,
		selfPub:    selfPub,
		selfSecret: selfSecret,
		selfPos:    pos,
	}
}

func (s *Static) ActivePeers() *types.PeerSet { return s.peers }
func (s *Static) SelfPubKey() []byte          { return s.selfPub }
func (s *Static) SelfSecretKey() []byte       { return s.selfSecret }
func (s *Static) SelfPosition() int           { return s.selfPos }

// IsLeader reports whether the peer at chain position 0 is the block's
// first signer — the production hardening of §9 Open Question 2. It is
// opt-in (see config.SumeragiConfig.StrictLeaderCheck); the default leader check stays
// spec.md's "exactly one signature" rule in blockprocessor.
func IsLeader(peers *types.PeerSet, firstSigner []byte) bool {
	leader := peers.At(0)
	if leader == nil || leader.PubKey == nil || firstSigner == nil {
		return false
	}
	return string(leader.PubKey.Bytes()) == string(firstSigner)
}
