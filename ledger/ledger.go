// Package ledger specifies the Ledger collaborator (§6): tentative
// append + Merkle root, the committed-block set, and final commit.
// The block store and Merkle-root computation are explicitly out of
// scope as a "consensus hard part" (§1) — this package only pins down
// the interface Sumeragi's BlockProcessor and Dispatcher call through.
package ledger

import "github.com/mrsmuneton/iroha/types"

// Ledger is the block store collaborator. AppendTentative computes the
// tentative Merkle root before a peer signs; IsCommitted backs the
// Dispatcher's inbound
// already-committed check (§4.1, §9 Open Question 4); Commit transitions
// ownership of a block to the ledger permanently (§3 lifecycle).
type Ledger interface {
	// AppendTentative returns the Merkle root over the chain plus this
	// block. BlockProcessor only checks it for an error; peer signatures
	// are computed over the block's body hash, not over this root.
	AppendTentative(block *types.Block) (merkleRoot []byte, err error)

	// IsCommitted reports whether a block with this ID has already been
	// committed at this node.
	IsCommitted(blockID string) bool

	// Commit finalizes a block: marks it committed and routes its body
	// to the world-state-view write path.
	Commit(block *types.Block) error
}
