package sumeragi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/ed25519"
	"github.com/tendermint/tendermint/libs/events"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/blockprocessor"
	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/transport"
	"github.com/mrsmuneton/iroha/types"
	"github.com/mrsmuneton/iroha/validation"
)

type fakeLedger struct {
	committed chan *types.Block
}

func newFakeLedger() *fakeLedger { return &fakeLedger{committed: make(chan *types.Block, 8)} }

func (f *fakeLedger) AppendTentative(block *types.Block) ([]byte, error) { return []byte("root"), nil }
func (f *fakeLedger) IsCommitted(blockID string) bool                    { return false }
func (f *fakeLedger) Commit(block *types.Block) error {
	f.committed <- block
	return nil
}

var _ ledger.Ledger = (*fakeLedger)(nil)

type fakeTransport struct {
	receiver transport.Receiver
}

func (f *fakeTransport) RegisterReceiver(r transport.Receiver) { f.receiver = r }
func (f *fakeTransport) Broadcast(block *types.Block) error    { return nil }
func (f *fakeTransport) Unicast(block *types.Block, position int) error { return nil }
func (f *fakeTransport) Commit(block *types.Block) error       { return nil }

var _ transport.Transport = (*fakeTransport)(nil)

// TestNew_RegistersItselfAsReceiver checks New wires itself into the
// transport exactly once, the precondition every OnPropose/OnCommit
// delivery depends on.
func TestNew_RegistersItselfAsReceiver(t *testing.T) {
	tr := &fakeTransport{}
	peers, secrets := genPeers(4)
	ps := peer.NewStatic(types.NewPeerSet(peers), peers[0].PubKey.Bytes(), secrets[0])

	s := New(DefaultConfig(), validation.Permissive{}, newFakeLedger(), cryptoimpl.NewEd25519(), ps, tr, log.NewNopLogger())

	assert.Same(t, s, tr.receiver)
}

// TestLifecycle_StartProcessesProposeThenStop drives a single-node
// leader-originated block through OnPropose end to end and checks
// OnStop doesn't hang waiting for the dispatcher's worker pool to
// drain.
func TestLifecycle_StartProcessesProposeThenStop(t *testing.T) {
	tr := &fakeTransport{}
	peers, secrets := genPeers(4)
	ps := peer.NewStatic(types.NewPeerSet(peers), peers[0].PubKey.Bytes(), secrets[0])
	l := newFakeLedger()

	s := New(DefaultConfig(), validation.Permissive{}, l, cryptoimpl.NewEd25519(), ps, tr, log.NewNopLogger())
	require.NoError(t, s.Start())
	defer s.Stop()

	committedCh := make(chan *types.Block, 1)
	s.EventSwitch().AddListenerForEvent("test", blockprocessor.EventBroadcast, func(data events.EventData) {
		committedCh <- data.(*types.Block)
	})
	defer s.EventSwitch().RemoveListener("test")

	s.OnPropose(types.NewBlock([]byte("tx")))

	select {
	case block := <-committedCh:
		assert.Equal(t, 1, block.SignatureCount())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventBroadcast")
	}
}

// genPeers mirrors blockprocessor's test helper; duplicated rather than
// exported since it exists purely to build fixtures for these two
// packages' tests.
func genPeers(n int) ([]*types.Peer, [][]byte) {
	peers := make([]*types.Peer, n)
	secrets := make([][]byte, n)
	for i := 0; i < n; i++ {
		pub, sec := cryptoimpl.GenerateKeypair()
		secrets[i] = sec
		peers[i] = types.NewPeer(ed25519.PubKey(pub), "peer")
	}
	return peers, secrets
}
