// Package cryptoimpl implements the Crypto collaborator (§6): the
// signature primitive and the hash function every signed message is
// computed over.
//
// Public and secret keys are treated as opaque byte strings throughout —
// per §9's redesign note on the source's "bytes in proto → string
// null-byte problem," nothing here ever treats key or message bytes as
// a null-terminated C string.
package cryptoimpl

import (
	"encoding/hex"

	"github.com/tendermint/tendermint/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

// Crypto is the signature/hash collaborator consensus signs and verifies
// through. It has no knowledge of Block or Peer — just bytes.
type Crypto interface {
	// Sha3256Hex returns the lowercase hex encoding of sha3_256(msg).
	Sha3256Hex(msg []byte) string

	// Sign produces a signature over msg under secretKey.
	Sign(msg, secretKey []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature over msg under
	// pubKey.
	Verify(sig, msg, pubKey []byte) bool
}

// Ed25519 is the default Crypto implementation, backed by
// tendermint/tendermint/crypto/ed25519.
type Ed25519 struct{}

// NewEd25519 returns the default ed25519-backed Crypto.
func NewEd25519() Ed25519 {
	return Ed25519{}
}

func (Ed25519) Sha3256Hex(msg []byte) string {
	sum := sha3.Sum256(msg)
	return hex.EncodeToString(sum[:])
}

func (Ed25519) Sign(msg, secretKey []byte) ([]byte, error) {
	priv := ed25519.PrivKey(secretKey)
	return priv.Sign(msg)
}

func (Ed25519) Verify(sig, msg, pubKey []byte) bool {
	pub := ed25519.PubKey(pubKey)
	return pub.VerifySignature(msg, sig)
}

// GenerateKeypair creates a fresh ed25519 keypair for use by a PeerService
// implementation or the gen-peer-key CLI command.
func GenerateKeypair() (pubKey, secretKey []byte) {
	priv := ed25519.GenPrivKey()
	return priv.PubKey().Bytes(), priv.Bytes()
}
