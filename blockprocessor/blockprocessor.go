// Package blockprocessor implements §4.2, the BlockProcessor state
// machine: validate → append-tentative → sign → classify →
// broadcast/relay/commit. This is the consensus hard part — every
// transition here must match spec.md exactly or the protocol loses
// safety or liveness.
package blockprocessor

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/chainposition"
	"github.com/mrsmuneton/iroha/clientadapter"
	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/metrics"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/quorum"
	"github.com/mrsmuneton/iroha/quorumcert"
	"github.com/mrsmuneton/iroha/sigverify"
	"github.com/mrsmuneton/iroha/timeout"
	"github.com/mrsmuneton/iroha/types"
	"github.com/mrsmuneton/iroha/validation"
)

// Events fired on eventSwitch after a successful transition, so
// observers (the rpc status stream, metrics) can react without being
// wired into the state machine itself — mirrors the teacher's
// eventSwitch.FireEvent(EventNewProposal, ...) in consensus/state.go.
const (
	EventBroadcast = "BlockBroadcast"
	EventRelayed   = "BlockRelayed"
	EventCommitted = "BlockCommitted"
)

// BlockProcessor runs one block through START→REJECT/
// APPEND_TENTATIVE→SIGN→CLASSIFY→{BROADCAST,RELAY,COMMIT} to completion.
// A single instance is shared by every worker in the Dispatcher's pool;
// all the state it touches per call (chainposition.Picker, the timeout
// handle) is constructed fresh per block, so concurrent Process calls on
// distinct blocks never interfere (§5).
type BlockProcessor struct {
	validator validation.Validator
	ledger    ledger.Ledger
	crypto    cryptoimpl.Crypto
	peers     peer.Service
	client    *clientadapter.ClientAdapter
	timeouts  *timeout.Manager
	events    events.EventSwitch
	logger    log.Logger

	strictLeaderCheck bool

	// quorumCert, when non-nil, is used to attach a BLS quorum
	// attestation to blocks this node commits (domain-stack addition,
	// see quorumcert).
	quorumCert *quorumcert.KeyPair

	// latency, when non-nil, records how long each Process call takes
	// end to end, regardless of which of the three CLASSIFY branches it
	// exits through.
	latency *metrics.LatencyTracker
}

// Option configures optional BlockProcessor behavior.
type Option func(*BlockProcessor)

// WithStrictLeaderCheck additionally requires the block's first signer
// to match PeerService's position-0 peer before treating a
// single-signature block as leader-originated (§9 Open Question 2).
func WithStrictLeaderCheck() Option {
	return func(bp *BlockProcessor) { bp.strictLeaderCheck = true }
}

// WithQuorumCertKeyPair enables BLS quorum-attestation generation at
// COMMIT using kp.
func WithQuorumCertKeyPair(kp quorumcert.KeyPair) Option {
	return func(bp *BlockProcessor) { bp.quorumCert = &kp }
}

// WithLatencyTracker records each Process call's wall-clock duration
// into t.
func WithLatencyTracker(t *metrics.LatencyTracker) Option {
	return func(bp *BlockProcessor) { bp.latency = t }
}

// New constructs a BlockProcessor. timeouts must be the same
// *timeout.Manager that Sumeragi.OnCommit cancels through on
// commit observation, so the two halves of §4.5's lifecycle stay
// consistent.
func New(
	validator validation.Validator,
	l ledger.Ledger,
	crypto cryptoimpl.Crypto,
	peers peer.Service,
	client *clientadapter.ClientAdapter,
	timeouts *timeout.Manager,
	eventSwitch events.EventSwitch,
	logger log.Logger,
	opts ...Option,
) *BlockProcessor {
	bp := &BlockProcessor{
		validator: validator,
		ledger:    l,
		crypto:    crypto,
		peers:     peers,
		client:    client,
		timeouts:  timeouts,
		events:    eventSwitch,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(bp)
	}
	return bp
}

// Process runs the state machine to completion for one block. It never
// returns an error: every failure disposition in §7 is logged and the
// task is dropped locally, with recovery left to timers.
func (bp *BlockProcessor) Process(block *types.Block) {
	if bp.latency != nil {
		start := time.Now()
		defer func() { bp.latency.Observe(time.Since(start)) }()
	}

	// START
	if !bp.validator.Validate(block) {
		bp.logger.Info("block processor: stateful validation failed, dropping", "block", block.ID())
		return
	}

	// APPEND_TENTATIVE
	// The merkle root is only used to detect a failed append; it is not
	// signed. The signature below is computed over
	// sha3_256(body) so that SignatureVerifier.CountValid stays a pure
	// function of the block value alone (§4.3, §8 invariant: referential
	// transparency) — a peer at a different ledger height must still be
	// able to verify the same signature.
	if _, err := bp.ledger.AppendTentative(block); err != nil {
		bp.logger.Error("block processor: append tentative failed, dropping", "err", errors.Cause(err), "block", block.ID())
		return
	}

	// SIGN
	newBlock := block.Clone()
	hash := newBlock.BodyHash()
	sig, err := bp.crypto.Sign(hash, bp.peers.SelfSecretKey())
	if err != nil {
		bp.logger.Error("block processor: signing failed, dropping", "err", err, "block", block.ID())
		return
	}
	newBlock.AppendSignature(types.PeerSignature{
		PubKey:    bp.peers.SelfPubKey(),
		Signature: sig,
	}, time.Now().Unix())

	// CLASSIFY
	if bp.isLeaderOriginated(newBlock) {
		bp.doBroadcast(newBlock)
		return
	}

	active := bp.peers.ActivePeers()
	q := quorum.Compute(active.Size())
	count := sigverify.CountValid(bp.crypto, newBlock, active)

	switch {
	case count < q.Threshold():
		bp.doRelay(newBlock, active.Size())
	case count == q.Threshold():
		bp.doCommit(newBlock)
	default:
		// count > 2f+1: an upstream peer should already have committed
		// this block. Treated as a local no-op per §4.2's documented
		// choice — the existing timer (armed by whichever hop put us in
		// this state) remains responsible for recovery.
		bp.logger.Info("block processor: signature count exceeds quorum, no-op", "block", newBlock.ID(), "count", count, "threshold", q.Threshold())
	}
}

// isLeaderOriginated implements §3/§4.2's leader check: exactly one
// signature on the post-signing block. When strictLeaderCheck is set,
// it additionally requires that signature to belong to the peer at
// chain position 0 (§9 Open Question 2's hardening, opt-in only).
func (bp *BlockProcessor) isLeaderOriginated(block *types.Block) bool {
	if block.SignatureCount() != 1 {
		return false
	}
	if !bp.strictLeaderCheck {
		return true
	}
	return peer.IsLeader(bp.peers.ActivePeers(), block.FirstSigner())
}

func (bp *BlockProcessor) doBroadcast(block *types.Block) {
	bp.client.Broadcast(block)
	bp.arm(block, bp.newPicker(bp.peers.ActivePeers().Size()))
	bp.logger.Info("block processor: broadcast leader-originated block", "block", block.ID())
	bp.events.FireEvent(EventBroadcast, block)
}

func (bp *BlockProcessor) doRelay(block *types.Block, n int) {
	picker := bp.newPicker(n)
	tail := picker.Next()
	if tail == chainposition.NoTail {
		bp.logger.Error("block processor: chain exhausted on relay", "block", block.ID())
		return
	}

	if err := bp.client.Unicast(block, tail); err != nil {
		bp.logger.Error("block processor: relay unicast failed", "err", err, "block", block.ID(), "tail", tail)
	}
	bp.arm(block, picker)
	bp.logger.Info("block processor: relayed block", "block", block.ID(), "tail", tail)
	bp.events.FireEvent(EventRelayed, block)
}

func (bp *BlockProcessor) doCommit(block *types.Block) {
	if bp.quorumCert != nil {
		if cert := bp.buildQuorumCert(block); cert != nil {
			block.SetQuorumCert(cert)
		}
	}

	bp.client.Commit(block)
	bp.arm(block, bp.newPicker(bp.peers.ActivePeers().Size()))

	if err := bp.ledger.Commit(block); err != nil {
		bp.logger.Error("block processor: local commit failed", "err", err, "block", block.ID())
		return
	}
	// This peer has now itself observed the commit it just announced;
	// the timer armed above exists only to satisfy §4.2's "arm timer"
	// step uniformly across all three branches, and is immediately
	// cancelled per §4.5's "on commit observation ... cancel the
	// outstanding handle."
	bp.timeouts.Cancel(block.ID())

	bp.logger.Info("block processor: committed block", "block", block.ID())
	bp.events.FireEvent(EventCommitted, block)
}

func (bp *BlockProcessor) buildQuorumCert(block *types.Block) *quorumcert.Certificate {
	share, err := quorumcert.Sign(*bp.quorumCert, block.BodyHash())
	if err != nil {
		bp.logger.Error("block processor: quorum cert signing failed", "err", err, "block", block.ID())
		return nil
	}
	cert, err := quorumcert.Aggregate([][]byte{share})
	if err != nil {
		bp.logger.Error("block processor: quorum cert aggregation failed", "err", err, "block", block.ID())
		return nil
	}
	return cert
}

func (bp *BlockProcessor) newPicker(n int) *chainposition.Picker {
	q := quorum.Compute(n)
	return chainposition.New(n, q.ProxyTailStart())
}

func (bp *BlockProcessor) arm(block *types.Block, picker *chainposition.Picker) {
	bp.timeouts.Arm(block, picker)
}
