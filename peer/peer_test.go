package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/crypto/ed25519"

	"github.com/mrsmuneton/iroha/types"
)

func genPeers(n int) ([]*types.Peer, [][]byte) {
	peers := make([]*types.Peer, n)
	secrets := make([][]byte, n)
	for i := 0; i < n; i++ {
		priv := ed25519.GenPrivKey()
		secrets[i] = priv.Bytes()
		peers[i] = types.NewPeer(priv.PubKey(), "peer")
	}
	return peers, secrets
}

func TestNewStatic_ResolvesSelfPosition(t *testing.T) {
	peers, secrets := genPeers(4)
	svc := NewStatic(types.NewPeerSet(peers), peers[2].PubKey.Bytes(), secrets[2])

	assert.Equal(t, 2, svc.SelfPosition())
	assert.Equal(t, peers[2].PubKey.Bytes(), svc.SelfPubKey())
	assert.Equal(t, secrets[2], svc.SelfSecretKey())
}

func TestNewStatic_SelfPositionIsMinusOneWhenNotAMember(t *testing.T) {
	peers, _ := genPeers(4)
	stranger, strangerSecret := genPeers(1)

	svc := NewStatic(types.NewPeerSet(peers), stranger[0].PubKey.Bytes(), strangerSecret[0])
	assert.Equal(t, -1, svc.SelfPosition())
}

func TestActivePeers_ReturnsConfiguredSet(t *testing.T) {
	peers, secrets := genPeers(3)
	svc := NewStatic(types.NewPeerSet(peers), peers[0].PubKey.Bytes(), secrets[0])

	assert.Equal(t, 3, svc.ActivePeers().Size())
}

func TestIsLeader_TrueWhenFirstSignerIsPositionZero(t *testing.T) {
	peers, _ := genPeers(4)
	ps := types.NewPeerSet(peers)

	assert.True(t, IsLeader(ps, peers[0].PubKey.Bytes()))
}

func TestIsLeader_FalseForNonLeaderSigner(t *testing.T) {
	peers, _ := genPeers(4)
	ps := types.NewPeerSet(peers)

	assert.False(t, IsLeader(ps, peers[1].PubKey.Bytes()))
}

func TestIsLeader_FalseWhenFirstSignerNil(t *testing.T) {
	peers, _ := genPeers(4)
	ps := types.NewPeerSet(peers)

	assert.False(t, IsLeader(ps, nil))
}
