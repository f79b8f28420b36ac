// Package validation defines the Validator collaborator (§6). Stateful
// transaction validation is explicitly out of scope for this module
// (§1) — consensus only needs a side-effect-free predicate to gate
// APPEND_TENTATIVE, so this package keeps its default implementation
// deliberately thin.
package validation

import "github.com/mrsmuneton/iroha/types"

// Validator performs stateful validation of a proposed block's body.
// Implementations MUST be idempotent and side-effect-free (§4.2): calling
// Validate twice on the same block, or calling it and then discarding the
// result, must never observably change system state.
type Validator interface {
	Validate(block *types.Block) bool
}

// Permissive accepts any block with a non-empty body. It stands in for
// the real transaction-validation subsystem this module treats as an
// external collaborator; wiring a production Validator (schema checks,
// signature-on-transactions, balance checks, etc.) is the concern of the
// ledger/application layer, not of Sumeragi itself.
type Permissive struct{}

func (Permissive) Validate(block *types.Block) bool {
	return block != nil && len(block.Body) > 0
}
