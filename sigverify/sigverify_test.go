package sigverify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/types"
)

type fakeActiveSet struct {
	active map[string]int
}

func (f *fakeActiveSet) IndexOfPubKey(pubKey []byte) int {
	idx, ok := f.active[string(pubKey)]
	if !ok {
		return -1
	}
	return idx
}

func sign(t *testing.T, crypto cryptoimpl.Crypto, block *types.Block, pub, sec []byte) {
	t.Helper()
	sig, err := crypto.Sign(block.BodyHash(), sec)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	block.AppendSignature(types.PeerSignature{PubKey: pub, Signature: sig}, 0)
}

func TestCountValid_CountsDistinctValidSignatures(t *testing.T) {
	crypto := cryptoimpl.NewEd25519()
	block := types.NewBlock([]byte("tx"))

	pub1, sec1 := cryptoimpl.GenerateKeypair()
	pub2, sec2 := cryptoimpl.GenerateKeypair()
	sign(t, crypto, block, pub1, sec1)
	sign(t, crypto, block, pub2, sec2)

	assert.Equal(t, 2, CountValid(crypto, block, nil))
}

func TestCountValid_DeduplicatesRepeatedPubKey(t *testing.T) {
	crypto := cryptoimpl.NewEd25519()
	block := types.NewBlock([]byte("tx"))

	pub, sec := cryptoimpl.GenerateKeypair()
	sign(t, crypto, block, pub, sec)
	sign(t, crypto, block, pub, sec)

	assert.Equal(t, 1, CountValid(crypto, block, nil))
}

func TestCountValid_IgnoresInvalidSignature(t *testing.T) {
	crypto := cryptoimpl.NewEd25519()
	block := types.NewBlock([]byte("tx"))

	pub, _ := cryptoimpl.GenerateKeypair()
	block.AppendSignature(types.PeerSignature{PubKey: pub, Signature: []byte("garbage")}, 0)

	assert.Equal(t, 0, CountValid(crypto, block, nil))
}

func TestCountValid_RespectsActiveSetRestriction(t *testing.T) {
	crypto := cryptoimpl.NewEd25519()
	block := types.NewBlock([]byte("tx"))

	pub1, sec1 := cryptoimpl.GenerateKeypair()
	pub2, sec2 := cryptoimpl.GenerateKeypair()
	sign(t, crypto, block, pub1, sec1)
	sign(t, crypto, block, pub2, sec2)

	active := &fakeActiveSet{active: map[string]int{string(pub1): 0}}
	assert.Equal(t, 1, CountValid(crypto, block, active))
}

func TestCountValid_PureAcrossRepeatedCalls(t *testing.T) {
	crypto := cryptoimpl.NewEd25519()
	block := types.NewBlock([]byte("tx"))

	pub, sec := cryptoimpl.GenerateKeypair()
	sign(t, crypto, block, pub, sec)

	first := CountValid(crypto, block, nil)
	second := CountValid(crypto, block, nil)
	assert.Equal(t, first, second)
}
