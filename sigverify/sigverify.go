// Package sigverify implements the deduplicated, verified signature
// count a block's classification hinges on (§4.3).
//
// countValidSignatures in the original source (original_source's
// sumeragi.cpp) walks the signature list with a std::set<std::string> of
// already-seen pubkeys; CountValid below is that same walk, translated to
// a Go map, since this is the one routine in this module with a direct
// line-for-line correspondence to the original.
package sigverify

import (
	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/types"
)

// ActiveSet restricts which pubkeys are eligible to be counted. Passing
// nil disables the restriction (§4.3.5: "MAY be ignored" — this module
// makes that an explicit, caller-controlled choice rather than a silent
// default, so every peer in the network can apply it uniformly).
type ActiveSet interface {
	IndexOfPubKey(pubKey []byte) int
}

// CountValid walks block's peer signatures in order, verifying each
// against sha3_256(block.Body) and counting each distinct, valid pubkey
// at most once (§4.3, §8 invariants 1 and 3). It is pure: calling it twice
// on the same Block value yields the same answer (§4.3's "referentially
// transparent" requirement).
func CountValid(crypto cryptoimpl.Crypto, block *types.Block, active ActiveSet) int {
	hash := block.BodyHash()

	seen := make(map[string]struct{}, block.SignatureCount())
	count := 0

	for _, sig := range block.Signatures() {
		key := string(sig.PubKey)
		if _, ok := seen[key]; ok {
			continue
		}
		if active != nil && active.IndexOfPubKey(sig.PubKey) < 0 {
			continue
		}
		if !crypto.Verify(sig.Signature, hash, sig.PubKey) {
			continue
		}
		seen[key] = struct{}{}
		count++
	}

	return count
}
