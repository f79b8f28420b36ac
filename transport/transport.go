// Package transport specifies the Transport collaborator (§6): the wire
// protocol carrying PROPOSE and COMMIT messages between peers. The
// transport itself — framing, peer discovery, connection management —
// is out of scope (§1); this package only pins down what Sumeragi needs
// from it.
package transport

import "github.com/mrsmuneton/iroha/types"

// Receiver is notified of inbound wire messages. A PROPOSE message
// carries a block with >=1 signature and is routed to the Dispatcher; a
// COMMIT message carries no new signatures and marks the block
// committed at the receiver (§4.7, §6).
type Receiver interface {
	OnPropose(block *types.Block)
	OnCommit(block *types.Block)
}

// Transport is the outbound half of the collaborator: broadcast,
// unicast, and commit dissemination (§4.7's ClientAdapter operations).
// All three are fire-and-forget — errors are logged by the caller, not
// returned up into the consensus state machine, since recovery is
// timer-driven rather than delivery-acknowledgement-driven (§4.7, §7).
type Transport interface {
	// RegisterReceiver installs the single inbound handler. Implementations
	// call the Receiver's methods from their own network goroutine(s), so
	// those methods must return quickly per §5 ("the transport callback
	// thread performs only the committed-check and enqueue").
	RegisterReceiver(r Receiver)

	// Broadcast sends block as PROPOSE to every active peer in parallel.
	Broadcast(block *types.Block) error

	// Unicast sends block as PROPOSE to the peer at the given chain
	// position.
	Unicast(block *types.Block, position int) error

	// Commit sends block as COMMIT to every active peer.
	Commit(block *types.Block) error
}
