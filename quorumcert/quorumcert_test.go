package quorumcert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/util/random"
)

func TestSignAggregateVerify_QuorumOfShares(t *testing.T) {
	msg := []byte("block body hash")

	kps := make([]KeyPair, 3)
	shares := make([][]byte, 3)
	pubs := make([]kyber.Point, 3)
	for i := range kps {
		kps[i] = GenerateKeyPair(random.New())
		pubs[i] = kps[i].Public

		sig, err := Sign(kps[i], msg)
		require.NoError(t, err)
		shares[i] = sig
	}

	cert, err := Aggregate(shares)
	require.NoError(t, err)
	assert.Equal(t, 3, cert.SignerCount)

	require.NoError(t, Verify(cert, pubs, msg))
}

func TestVerify_FailsOnTamperedMessage(t *testing.T) {
	kp := GenerateKeyPair(random.New())
	sig, err := Sign(kp, []byte("original"))
	require.NoError(t, err)

	cert, err := Aggregate([][]byte{sig})
	require.NoError(t, err)

	err = Verify(cert, []kyber.Point{kp.Public}, []byte("tampered"))
	assert.Error(t, err)
}

func TestVerify_FailsWithWrongPublicKey(t *testing.T) {
	msg := []byte("block body hash")
	signer := GenerateKeyPair(random.New())
	other := GenerateKeyPair(random.New())

	sig, err := Sign(signer, msg)
	require.NoError(t, err)

	cert, err := Aggregate([][]byte{sig})
	require.NoError(t, err)

	err = Verify(cert, []kyber.Point{other.Public}, msg)
	assert.Error(t, err)
}

func TestAggregate_EmptySharesErrors(t *testing.T) {
	_, err := Aggregate(nil)
	assert.Error(t, err)
}
