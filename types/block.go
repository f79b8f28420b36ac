package types

import (
	"sync"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"golang.org/x/crypto/sha3"

	"github.com/mrsmuneton/iroha/quorumcert"
)

// PeerSignature is a single peer's signature over a block's body hash.
// PubKey and Signature are opaque byte strings per the Crypto collaborator
// interface (§6) — callers never inspect their internal encoding.
type PeerSignature struct {
	PubKey    tmbytes.HexBytes `json:"pubkey"`
	Signature tmbytes.HexBytes `json:"signature"`
}

// Header carries everything about a Block that is not the opaque body.
type Header struct {
	// CreatedTime is written by the peer that produces this version of the
	// block, i.e. updated on every hop along the chain.
	CreatedTime int64 `json:"created_time"`

	// PeerSignatures is the ordered sequence of (pubkey, signature) pairs
	// collected so far. Order matters for §3's leader-origination rule
	// (the first entry is the proposer's) but duplicate pubkeys are only
	// ever counted once — see sigverify.CountValid.
	PeerSignatures []PeerSignature `json:"peer_signatures"`
}

// Block is the unit ordered and committed by Sumeragi. Body is opaque —
// consensus never interprets it, only hashes and relays it. A Block is
// immutable once a peer has appended its own signature to Header; callers
// must treat a processed Block as owned by whichever component it was
// handed to next (Transport, Ledger, or the timeout registry), per §3.
type Block struct {
	mtx sync.Mutex

	Body   []byte `json:"body"`
	Header Header `json:"header"`

	// QuorumCert is an optional BLS quorum attestation attached at
	// COMMIT time (domain-stack addition, not part of spec.md's core
	// data model — see quorumcert). Absent when quorum-cert generation
	// is disabled.
	QuorumCert *quorumcert.Certificate `json:"quorum_cert,omitempty"`

	bodyHash tmbytes.HexBytes
}

// NewBlock wraps a transaction body with an empty signature set.
func NewBlock(body []byte) *Block {
	return &Block{Body: body}
}

// Clone returns a deep-enough copy for a peer to append its own signature
// without mutating the caller's view of the block.
func (b *Block) Clone() *Block {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	sigs := make([]PeerSignature, len(b.Header.PeerSignatures))
	copy(sigs, b.Header.PeerSignatures)

	return &Block{
		Body: b.Body,
		Header: Header{
			CreatedTime:    b.Header.CreatedTime,
			PeerSignatures: sigs,
		},
		bodyHash: b.bodyHash,
	}
}

// BodyHash returns sha3_256(Body), the message every peer signature is
// computed over (§3, §4.3). It is cached since Body never changes after
// construction.
func (b *Block) BodyHash() tmbytes.HexBytes {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.bodyHash == nil {
		sum := sha3.Sum256(b.Body)
		b.bodyHash = sum[:]
	}
	return b.bodyHash
}

// ID identifies a Block for dedup/timeout-registry/committed-check
// purposes. Two Blocks with the same Body share an ID regardless of how
// many signatures each carries, since the signature set is accumulated
// in place as the block is relayed along the chain.
func (b *Block) ID() string {
	return b.BodyHash().String()
}

// AppendSignature extends the signature chain in place. Callers must hold
// no other reference expecting the old, unsigned Header.
func (b *Block) AppendSignature(sig PeerSignature, createdTime int64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.Header.CreatedTime = createdTime
	b.Header.PeerSignatures = append(b.Header.PeerSignatures, sig)
}

// SignatureCount returns the raw (possibly duplicate-pubkey) number of
// entries in the signature chain. Use sigverify.CountValid for the
// deduplicated, verified count that consensus actually acts on.
func (b *Block) SignatureCount() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return len(b.Header.PeerSignatures)
}

// Signatures returns a copy of the peer signature chain.
func (b *Block) Signatures() []PeerSignature {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	sigs := make([]PeerSignature, len(b.Header.PeerSignatures))
	copy(sigs, b.Header.PeerSignatures)
	return sigs
}

// SetQuorumCert attaches a BLS quorum certificate to a block classified
// for COMMIT, before it is sent and committed (domain-stack addition,
// see quorumcert). Callers must not call
// this before the block has reached CLASSIFY/COMMIT — it is not part of
// the signed payload and plays no role in sigverify.CountValid.
func (b *Block) SetQuorumCert(cert *quorumcert.Certificate) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.QuorumCert = cert
}

// FirstSigner returns the pubkey of the first signature in the chain, or
// nil if the block is unsigned. Used by the optional leader-identity check
// (§9 Open Question 2).
func (b *Block) FirstSigner() tmbytes.HexBytes {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if len(b.Header.PeerSignatures) == 0 {
		return nil
	}
	return b.Header.PeerSignatures[0].PubKey
}
