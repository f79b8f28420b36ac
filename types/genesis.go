package types

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/tendermint/tendermint/crypto"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/tempfile"
	tmtime "github.com/tendermint/tendermint/types/time"
)

// GenesisPeer is one member of the genesis peer set: a public key and
// the network endpoint it is reachable at. Genesis peer order fixes
// the chain position every PeerService derives (§3) — entries must be
// listed in the agreed order, not re-sorted on load.
type GenesisPeer struct {
	PubKey   crypto.PubKey `json:"pub_key"`
	Endpoint string        `json:"endpoint"`
	Moniker  string        `json:"moniker,omitempty"`
}

// GenesisDoc is the cluster's shared bootstrap document: everyone who
// joins the network must agree on the same ChainID and Peers before
// Quorum arithmetic or chain positions mean anything.
type GenesisDoc struct {
	ChainID     string        `json:"chain_id"`
	GenesisTime time.Time     `json:"genesis_time"`
	Peers       []GenesisPeer `json:"peers"`
}

// ValidateAndComplete fills in GenesisTime if unset and checks for an
// empty peer set, mirroring the teacher's genesis validation shape
// (tendermint's types.GenesisDoc.ValidateAndComplete).
func (g *GenesisDoc) ValidateAndComplete() error {
	if g.ChainID == "" {
		return fmt.Errorf("genesis doc must include non-empty chain_id")
	}
	if len(g.Peers) == 0 {
		return fmt.Errorf("genesis doc must include at least one peer")
	}
	if g.GenesisTime.IsZero() {
		g.GenesisTime = tmtime.Now()
	}
	for i, p := range g.Peers {
		if p.PubKey == nil {
			return fmt.Errorf("genesis peer %d: missing pub_key", i)
		}
	}
	return nil
}

// PeerSet builds the runtime PeerSet from the genesis peer list, in
// genesis order.
func (g *GenesisDoc) PeerSet() *PeerSet {
	peers := make([]*Peer, len(g.Peers))
	for i, gp := range g.Peers {
		peers[i] = NewPeer(gp.PubKey, gp.Endpoint)
	}
	return NewPeerSet(peers)
}

// SaveAs writes the genesis doc as indented JSON via tmjson, the same
// wire-format library the rest of this module's wire types use.
func (g *GenesisDoc) SaveAs(file string) error {
	bz, err := tmjson.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return tempfile.WriteFileAtomic(file, bz, 0644)
}

// GenesisDocFromFile reads and validates a GenesisDoc from disk.
func GenesisDocFromFile(genDocFile string) (*GenesisDoc, error) {
	jsonBlob, err := ioutil.ReadFile(genDocFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read genesis file: %w", err)
	}
	genDoc := &GenesisDoc{}
	if err := tmjson.Unmarshal(jsonBlob, genDoc); err != nil {
		return nil, fmt.Errorf("error unmarshalling genesis doc: %w", err)
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return nil, fmt.Errorf("error in genesis doc: %w", err)
	}
	return genDoc, nil
}
