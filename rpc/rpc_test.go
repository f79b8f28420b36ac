package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"github.com/mrsmuneton/iroha/ledger"
	"github.com/mrsmuneton/iroha/metrics"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/types"
)

type fakeLedger struct {
	committed map[string]bool
}

func (f *fakeLedger) AppendTentative(block *types.Block) ([]byte, error) { return nil, nil }
func (f *fakeLedger) IsCommitted(blockID string) bool                    { return f.committed[blockID] }
func (f *fakeLedger) Commit(block *types.Block) error                    { return nil }

type fakePeers struct {
	position int
	n        int
}

func (f *fakePeers) ActivePeers() *types.PeerSet {
	peers := make([]*types.Peer, f.n)
	for i := range peers {
		peers[i] = &types.Peer{}
	}
	return types.NewPeerSet(peers)
}
func (f *fakePeers) SelfPubKey() []byte    { return nil }
func (f *fakePeers) SelfSecretKey() []byte { return nil }
func (f *fakePeers) SelfPosition() int     { return f.position }

var (
	_ ledger.Ledger = (*fakeLedger)(nil)
	_ peer.Service  = (*fakePeers)(nil)
)

func TestStatus(t *testing.T) {
	SetEnvironment(&Environment{
		Ledger: &fakeLedger{committed: map[string]bool{}},
		Peers:  &fakePeers{position: 2, n: 4},
	})

	result, err := Status(&rpctypes.Context{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SelfPosition)
	assert.Equal(t, 4, result.PeerCount)
}

func TestIsCommitted(t *testing.T) {
	SetEnvironment(&Environment{
		Ledger: &fakeLedger{committed: map[string]bool{"abc": true}},
		Peers:  &fakePeers{},
	})

	committed, err := IsCommitted(&rpctypes.Context{}, "abc")
	require.NoError(t, err)
	assert.True(t, committed.Committed)

	notCommitted, err := IsCommitted(&rpctypes.Context{}, "xyz")
	require.NoError(t, err)
	assert.False(t, notCommitted.Committed)
}

type fakeMetricItem string

func (f fakeMetricItem) JSONString() string { return string(f) }

func TestJSONMetrics_SingleLabel(t *testing.T) {
	set := metrics.NewMetricSet()
	require.NoError(t, set.SetMetrics("dispatcher", fakeMetricItem(`{"queued":1}`)))
	SetEnvironment(&Environment{MetricSet: set})

	result, err := JSONMetrics(&rpctypes.Context{}, "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, `{"queued":1}`, result.Metrics["dispatcher"])
}

func TestJSONMetrics_AllLabelsWhenEmpty(t *testing.T) {
	set := metrics.NewMetricSet()
	require.NoError(t, set.SetMetrics("dispatcher", fakeMetricItem(`{}`)))
	require.NoError(t, set.SetMetrics("latency", fakeMetricItem(`{}`)))
	SetEnvironment(&Environment{MetricSet: set})

	result, err := JSONMetrics(&rpctypes.Context{}, "")
	require.NoError(t, err)
	assert.Len(t, result.Metrics, 2)
}
