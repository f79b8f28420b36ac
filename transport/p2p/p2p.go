// Package p2p implements transport.Transport over tendermint/p2p's
// Switch/Reactor machinery, grounded on the teacher's
// consensus/reactor.go (channel layout, BaseReactor embedding, Receive
// dispatch) and node/node.go (createTransport/createSwitch wiring).
package p2p

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/cmap"
	tmp2p "github.com/tendermint/tendermint/p2p"

	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/transport"
	"github.com/mrsmuneton/iroha/types"
)

const (
	// IdentifyChannel carries a one-shot self-introduction: this node's
	// consensus pubkey, so outbound Unicast-by-position can find the
	// right tendermint/p2p.Peer for a pubkey it only knows from
	// PeerService. Mirrors the teacher's AddPeer sending a literal
	// "consensus" probe byte string on TestChannel.
	IdentifyChannel = byte(0x20)
	ProposeChannel  = byte(0x21)
	CommitChannel   = byte(0x22)

	maxMsgSize = 1 << 20
)

// Reactor is the p2p.Reactor half of the transport: it owns no consensus
// logic, only message framing and dispatch to a transport.Receiver.
type Reactor struct {
	tmp2p.BaseReactor

	selfPubKey []byte
	peersByKey *cmap.CMap // hex(pubkey) -> tmp2p.Peer

	receiver transport.Receiver
}

// NewReactor builds a Reactor that introduces itself with selfPubKey on
// AddPeer.
func NewReactor(selfPubKey []byte) *Reactor {
	r := &Reactor{
		selfPubKey: selfPubKey,
		peersByKey: cmap.NewCMap(),
	}
	r.BaseReactor = *tmp2p.NewBaseReactor("Sumeragi", r)
	return r
}

// SetReceiver installs recv as the inbound message sink.
func (r *Reactor) SetReceiver(recv transport.Receiver) {
	r.receiver = recv
}

func (r *Reactor) GetChannels() []*tmp2p.ChannelDescriptor {
	return []*tmp2p.ChannelDescriptor{
		{ID: IdentifyChannel, Priority: 5, SendQueueCapacity: 8, RecvBufferCapacity: 256},
		{ID: ProposeChannel, Priority: 10, SendQueueCapacity: 100, RecvBufferCapacity: maxMsgSize},
		{ID: CommitChannel, Priority: 10, SendQueueCapacity: 100, RecvBufferCapacity: maxMsgSize},
	}
}

func (r *Reactor) AddPeer(p tmp2p.Peer) {
	sent := p.Send(IdentifyChannel, r.selfPubKey)
	r.Logger.Debug("sent self-identification", "peer", p.ID(), "ok", sent)
}

func (r *Reactor) RemovePeer(p tmp2p.Peer, reason interface{}) {
	for _, key := range r.peersByKey.Keys() {
		if v := r.peersByKey.Get(key); v != nil && v.(tmp2p.Peer).ID() == p.ID() {
			r.peersByKey.Delete(key)
			return
		}
	}
}

func (r *Reactor) Receive(chID byte, src tmp2p.Peer, msgBytes []byte) {
	switch chID {
	case IdentifyChannel:
		r.peersByKey.Set(hex.EncodeToString(msgBytes), src)

	case ProposeChannel:
		var block types.Block
		if err := tmjson.Unmarshal(msgBytes, &block); err != nil {
			r.Logger.Error("unmarshal PROPOSE failed", "err", err, "src", src.ID())
			return
		}
		if r.receiver != nil {
			r.receiver.OnPropose(&block)
		}

	case CommitChannel:
		var block types.Block
		if err := tmjson.Unmarshal(msgBytes, &block); err != nil {
			r.Logger.Error("unmarshal COMMIT failed", "err", err, "src", src.ID())
			return
		}
		if r.receiver != nil {
			r.receiver.OnCommit(&block)
		}

	default:
		r.Logger.Error("unknown channel", "chID", chID)
	}
}

func (r *Reactor) peerByPubKey(pubKey []byte) (tmp2p.Peer, bool) {
	v := r.peersByKey.Get(hex.EncodeToString(pubKey))
	if v == nil {
		return nil, false
	}
	p, ok := v.(tmp2p.Peer)
	return p, ok
}

// Transport wires a Reactor into tendermint/p2p's Switch and adapts it
// to the transport.Transport interface used by clientadapter.
type Transport struct {
	sw      *tmp2p.Switch
	reactor *Reactor
	peers   peer.Service
	logger  log.Logger
}

// New wraps a *p2p.Switch (constructed the way the teacher's
// node.createSwitch does, with reactor pre-registered). The switch need
// not be started yet.
func New(sw *tmp2p.Switch, reactor *Reactor, peers peer.Service, logger log.Logger) *Transport {
	return &Transport{sw: sw, reactor: reactor, peers: peers, logger: logger}
}

func (t *Transport) RegisterReceiver(r transport.Receiver) {
	t.reactor.SetReceiver(r)
}

func (t *Transport) Broadcast(block *types.Block) error {
	bz, err := tmjson.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "marshal block for broadcast")
	}
	t.sw.Broadcast(ProposeChannel, bz)
	return nil
}

func (t *Transport) Unicast(block *types.Block, position int) error {
	target := t.peers.ActivePeers().At(position)
	if target == nil {
		return fmt.Errorf("p2p transport: no peer at position %d", position)
	}

	p, ok := t.reactor.peerByPubKey(target.PubKey.Bytes())
	if !ok {
		return fmt.Errorf("p2p transport: position %d (%s) not yet connected", position, target.Address)
	}

	bz, err := tmjson.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "marshal block for unicast")
	}

	if !p.Send(ProposeChannel, bz) {
		return fmt.Errorf("p2p transport: send to %s failed", p.ID())
	}
	return nil
}

func (t *Transport) Commit(block *types.Block) error {
	bz, err := tmjson.Marshal(block)
	if err != nil {
		return errors.Wrap(err, "marshal block for commit")
	}
	t.sw.Broadcast(CommitChannel, bz)
	return nil
}
