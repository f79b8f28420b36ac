// Package wsv specifies the WsvCommand collaborator only: the
// world-state-view mutation API for the ledger's state, named in §1 as
// "an orthogonal write-path subsystem for the ledger state and is not
// the consensus hard part." Sumeragi never calls this interface
// directly — it exists so a Ledger implementation has somewhere to
// route committed transactions without consensus needing to know how.
package wsv

import "github.com/mrsmuneton/iroha/types"

// Command applies a committed block's body to the world state view.
// Sumeragi's own components never invoke Command; a Ledger
// implementation's Commit method is the only caller.
type Command interface {
	Apply(block *types.Block) error
}
