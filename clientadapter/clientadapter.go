// Package clientadapter implements §4.7: the three outbound operations
// over Transport that BlockProcessor and the timeout manager use to move
// a block along the chain.
//
// Grounded on original_source's SumeragiClient
// (sender.broadCast/unicast/commit) and the teacher's
// consensus/reactor.go broadcastProposal/broadcastVote: marshal, log on
// failure, never propagate the error past this layer — recovery is the
// timer's job, not the caller's (§4.7, §7).
package clientadapter

import (
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/transport"
	"github.com/mrsmuneton/iroha/types"
)

// ClientAdapter is the outbound half of the Transport collaborator as
// BlockProcessor sees it.
type ClientAdapter struct {
	transport transport.Transport
	logger    log.Logger
}

func New(t transport.Transport, logger log.Logger) *ClientAdapter {
	return &ClientAdapter{transport: t, logger: logger}
}

// Broadcast sends block to all peers as PROPOSE. Used for
// leader-originated blocks (§4.2 BROADCAST branch).
func (c *ClientAdapter) Broadcast(block *types.Block) {
	if err := c.transport.Broadcast(block); err != nil {
		c.logger.Error("broadcast failed", "err", err, "block", block.ID())
	}
}

// Unicast sends block to the peer at the given chain position as
// PROPOSE. Used both for RELAY (§4.2) and for the TimeoutManager's
// fallback hops (§4.5) — clientadapter.ClientAdapter itself satisfies
// timeout.Relayer.
func (c *ClientAdapter) Unicast(block *types.Block, position int) error {
	// Unlike Broadcast/Commit, the error is returned rather than logged
	// here: both call sites (blockprocessor's RELAY branch and
	// timeout.Manager's fallback) need to know whether the send landed.
	return c.transport.Unicast(block, position)
}

// Commit sends block to all peers as COMMIT (§4.2 COMMIT branch).
func (c *ClientAdapter) Commit(block *types.Block) {
	if err := c.transport.Commit(block); err != nil {
		c.logger.Error("commit broadcast failed", "err", err, "block", block.ID())
	}
}
