// Package quorumcert folds BLS signature shares over a block's body hash
// into a single BLS aggregate signature, in constant space regardless of
// the number of shares. blockprocessor aggregates only the committing
// peer's own share, so the certificates it attaches carry one signer; the
// 2f+1 ed25519 peer signatures are not folded in.
//
// This supplements, rather than replaces, spec.md §4.6's Quorum (the
// pure f/2f+1/N arithmetic in package quorum): that calculator is
// unchanged. quorumcert is new surface introduced to give
// go.dedis.ch/kyber/v3 — the teacher's BLS threshold-signature
// dependency behind privval's crypto/bls and crypto/threshold packages,
// and behind types.Quorum's stubbed "aggregated signature" field — a
// concrete home in this module.
package quorumcert

import (
	"crypto/cipher"

	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing/bn256"
	"go.dedis.ch/kyber/v3/sign/bls"
)

// suite is shared across all BLS operations in this package; bn256 is
// the pairing-friendly curve kyber's bls package is built against.
var suite = bn256.NewSuite()

// Certificate is the aggregated proof that a quorum of peers signed a
// block's body hash.
type Certificate struct {
	AggregateSignature []byte
	SignerCount        int
}

// KeyPair holds a peer's BLS share: Secret signs, Public verifies and is
// published to peers so AggregatePublicKeys can check a Certificate.
type KeyPair struct {
	Secret kyber.Scalar
	Public kyber.Point
}

// GenerateKeyPair derives a fresh BLS keypair for a peer's quorum-cert
// share, the BLS analogue of privval's GenFilePV.
func GenerateKeyPair(random cipher.Stream) KeyPair {
	secret, public := bls.NewKeyPair(suite, random)
	return KeyPair{Secret: secret, Public: public}
}

// Sign produces this peer's BLS share of the signature over msg.
func Sign(kp KeyPair, msg []byte) ([]byte, error) {
	sig, err := bls.Sign(suite, kp.Secret, msg)
	if err != nil {
		return nil, errors.Wrap(err, "bls sign")
	}
	return sig, nil
}

// Aggregate folds shares into a single Certificate. Called by
// blockprocessor with its own single share exactly once, at the
// moment a block transitions to COMMIT (§4.2's CLASSIFY/COMMIT branch).
func Aggregate(shares [][]byte) (*Certificate, error) {
	if len(shares) == 0 {
		return nil, errors.New("quorumcert: no shares to aggregate")
	}

	agg, err := bls.AggregateSignatures(suite, shares...)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate bls signatures")
	}

	return &Certificate{AggregateSignature: agg, SignerCount: len(shares)}, nil
}

// Verify checks a Certificate against the aggregate of the given
// per-peer public keys over msg.
func Verify(cert *Certificate, publicKeys []kyber.Point, msg []byte) error {
	aggPub := bls.AggregatePublicKeys(suite, publicKeys...)
	return bls.Verify(suite, aggPub, msg, cert.AggregateSignature)
}
