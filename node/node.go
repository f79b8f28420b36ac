// Package node wires a complete Sumeragi process together: load
// config and genesis, build the peer set and ledger, stand up the p2p
// transport, and start the Sumeragi service on top of it.
//
// Grounded on the teacher's node/node.go (createTransport/createSwitch/
// makeNodeInfo, Node as a service.BaseService wrapping a *p2p.Switch) —
// the shape is kept, the reactor it wires in is Sumeragi's
// transport/p2p.Reactor instead of the teacher's test consensus reactor.
package node

import (
	"fmt"
	"strings"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/p2p/conn"
	"github.com/tendermint/tendermint/version"
	"go.dedis.ch/kyber/v3/util/random"

	"github.com/mrsmuneton/iroha/blockprocessor"
	"github.com/mrsmuneton/iroha/config"
	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/ledger/kv"
	"github.com/mrsmuneton/iroha/metrics"
	"github.com/mrsmuneton/iroha/peer"
	"github.com/mrsmuneton/iroha/privval"
	"github.com/mrsmuneton/iroha/quorumcert"
	"github.com/mrsmuneton/iroha/sumeragi"
	p2ptransport "github.com/mrsmuneton/iroha/transport/p2p"
	"github.com/mrsmuneton/iroha/types"
	"github.com/mrsmuneton/iroha/validation"
)

// Provider builds a Node from config, the way tendermint's
// node.Provider does for every node binary in this ecosystem.
type Provider func(*config.Config, log.Logger) (*Node, error)

// Node is the top-level process: a p2p.Switch carrying Sumeragi's
// transport.Reactor, with the consensus core itself running on top.
type Node struct {
	service.BaseService

	config *config.Config

	transport *p2p.MultiplexTransport
	sw        *p2p.Switch
	nodeInfo  p2p.NodeInfo
	nodeKey   *p2p.NodeKey

	ledger   *kv.Ledger
	peers    peer.Service
	sumeragi *sumeragi.Sumeragi
	latency  *metrics.LatencyTracker
}

// DefaultNewNode builds a Node with this module's default collaborator
// implementations: a FilePV-backed identity, a static genesis-derived
// peer set, a leveldb-backed ledger, and the permissive Validator.
func DefaultNewNode(cfg *config.Config, logger log.Logger) (*Node, error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(cfg.NodeKeyFile())
	if err != nil {
		return nil, fmt.Errorf("loading node key: %w", err)
	}
	return NewNode(cfg, nodeKey, logger)
}

func createTransport(nodeInfo p2p.NodeInfo, nodeKey *p2p.NodeKey) *p2p.MultiplexTransport {
	mConnConfig := conn.DefaultMConnConfig()
	return p2p.NewMultiplexTransport(nodeInfo, *nodeKey, mConnConfig)
}

func createSwitch(
	cfg *config.Config,
	transport p2p.Transport,
	reactor *p2ptransport.Reactor,
	nodeInfo p2p.NodeInfo,
	nodeKey *p2p.NodeKey,
	p2pLogger log.Logger,
) *p2p.Switch {
	sw := p2p.NewSwitch(cfg.P2P, transport)
	sw.SetLogger(p2pLogger)
	sw.AddReactor("SUMERAGI", reactor)
	sw.SetNodeInfo(nodeInfo)
	sw.SetNodeKey(nodeKey)

	p2pLogger.Info("P2P Node ID", "ID", nodeKey.ID(), "file", cfg.NodeKeyFile())
	return sw
}

func makeNodeInfo(cfg *config.Config, nodeKey *p2p.NodeKey) (p2p.NodeInfo, error) {
	nodeInfo := p2p.DefaultNodeInfo{
		ProtocolVersion: p2p.NewProtocolVersion(8, 11, 0),
		DefaultNodeID:   nodeKey.ID(),
		Network:         "sumeragi",
		Version:         version.TMCoreSemVer,
		Channels: []byte{
			p2ptransport.IdentifyChannel,
			p2ptransport.ProposeChannel,
			p2ptransport.CommitChannel,
		},
		Moniker: cfg.Moniker,
		Other: p2p.DefaultNodeInfoOther{
			TxIndex:    "off",
			RPCAddress: cfg.RPC.ListenAddress,
		},
	}

	lAddr := cfg.P2P.ExternalAddress
	if lAddr == "" {
		lAddr = cfg.P2P.ListenAddress
	}
	nodeInfo.ListenAddr = lAddr

	return nodeInfo, nodeInfo.Validate()
}

// NewNode assembles every collaborator and hands them to sumeragi.New,
// which registers itself as the transport's sole Receiver.
func NewNode(cfg *config.Config, nodeKey *p2p.NodeKey, logger log.Logger) (*Node, error) {
	genDoc, err := types.GenesisDocFromFile(cfg.Sumeragi.GenesisFile)
	if err != nil {
		return nil, fmt.Errorf("loading genesis: %w", err)
	}
	peerSet := genDoc.PeerSet()

	pv := privval.LoadOrGenFilePV(cfg.Sumeragi.PeerKeyFile)
	peerService := peer.NewStatic(peerSet, pv.PubKeyBytes(), pv.SecretKeyBytes())
	if peerService.SelfPosition() < 0 {
		return nil, fmt.Errorf("this node's peer key is not present in the genesis peer set")
	}

	ledger, err := kv.New("ledger", cfg.Sumeragi.LedgerDir, nil, logger.With("module", "ledger"))
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	p2pLogger := logger.With("module", "p2p")

	nodeInfo, err := makeNodeInfo(cfg, nodeKey)
	if err != nil {
		return nil, err
	}

	transport := createTransport(nodeInfo, nodeKey)
	reactor := p2ptransport.NewReactor(pv.PubKeyBytes())
	reactor.SetLogger(p2pLogger)
	sw := createSwitch(cfg, transport, reactor, nodeInfo, nodeKey, p2pLogger)

	sumTransport := p2ptransport.New(sw, reactor, peerService, logger.With("module", "transport"))

	sumCfg := sumeragi.Config{
		Workers:           cfg.Sumeragi.Workers,
		QueueSize:         cfg.Sumeragi.QueueSize,
		CommitTimeout:     cfg.Sumeragi.CommitTimeout(),
		StrictLeaderCheck: cfg.Sumeragi.StrictLeaderCheck,
	}

	latency := metrics.NewLatencyTracker(1024)

	opts := []blockprocessor.Option{blockprocessor.WithLatencyTracker(latency)}
	if cfg.Sumeragi.QuorumCert {
		kp := quorumcert.GenerateKeyPair(random.New())
		opts = append(opts, blockprocessor.WithQuorumCertKeyPair(kp))
	}

	sum := sumeragi.New(
		sumCfg,
		validation.Permissive{},
		ledger,
		cryptoimpl.NewEd25519(),
		peerService,
		sumTransport,
		logger.With("module", "sumeragi"),
		opts...,
	)

	n := &Node{
		config:    cfg,
		transport: transport,
		sw:        sw,
		nodeInfo:  nodeInfo,
		nodeKey:   nodeKey,
		ledger:    ledger,
		peers:     peerService,
		sumeragi:  sum,
		latency:   latency,
	}
	n.BaseService = *service.NewBaseService(logger, "Node", n)

	return n, nil
}

func (n *Node) Switch() *p2p.Switch              { return n.sw }
func (n *Node) NodeInfo() p2p.NodeInfo           { return n.nodeInfo }
func (n *Node) Ledger() *kv.Ledger               { return n.ledger }
func (n *Node) Peers() peer.Service              { return n.peers }
func (n *Node) Sumeragi() *sumeragi.Sumeragi     { return n.sumeragi }
func (n *Node) Latency() *metrics.LatencyTracker { return n.latency }

func (n *Node) OnStart() error {
	addr, err := p2p.NewNetAddressString(p2p.IDAddressString(n.nodeKey.ID(), n.config.P2P.ListenAddress))
	if err != nil {
		return err
	}
	if err := n.transport.Listen(*addr); err != nil {
		return err
	}

	if err := n.sw.Start(); err != nil {
		return err
	}

	if err := n.sumeragi.Start(); err != nil {
		return err
	}

	n.Logger.Info("node started", "peers", n.config.P2P.PersistentPeers)
	return n.sw.DialPeersAsync(splitAndTrimEmpty(n.config.P2P.PersistentPeers, ",", " "))
}

func (n *Node) OnStop() {
	n.sumeragi.Stop()
	n.sw.Stop()
	n.transport.Close()
	n.ledger.Close()
}

func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}
	spl := strings.Split(s, sep)
	out := make([]string, 0, len(spl))
	for _, e := range spl {
		e = strings.Trim(e, cutset)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
