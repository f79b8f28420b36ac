package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// ResultStatus reports this node's view of the cluster: its own chain
// position and the size of the active peer set, read from §6's
// PeerService collaborator. Block committed-ness is reported
// separately by IsCommitted.
type ResultStatus struct {
	SelfPosition int `json:"self_position"`
	PeerCount    int `json:"peer_count"`
}

func Status(ctx *rpctypes.Context) (*ResultStatus, error) {
	return &ResultStatus{
		SelfPosition: env.Peers.SelfPosition(),
		PeerCount:    env.Peers.ActivePeers().Size(),
	}, nil
}

// ResultIsCommitted reports whether a block with the given ID has been
// committed locally.
type ResultIsCommitted struct {
	Committed bool `json:"committed"`
}

func IsCommitted(ctx *rpctypes.Context, blockID string) (*ResultIsCommitted, error) {
	return &ResultIsCommitted{Committed: env.Ledger.IsCommitted(blockID)}, nil
}
