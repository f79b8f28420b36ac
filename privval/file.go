// Package privval persists a node's own Sumeragi identity keypair to
// disk, the way the teacher's FilePV persists a validator's signing
// key. This module's PeerService.SelfSecretKey is specified as a pure
// in-memory accessor (§6) — FilePV is the on-disk loader that produces
// the bytes handed to peer.NewStatic, not a PeerService itself.
package privval

import (
	"fmt"
	"io/ioutil"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/tempfile"

	"github.com/mrsmuneton/iroha/cryptoimpl"
	"github.com/mrsmuneton/iroha/types"
)

// FilePVKey stores the immutable part of a node's identity: its
// ed25519 keypair and the derived address.
type FilePVKey struct {
	Address types.Address  `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	PrivKey crypto.PrivKey `json:"priv_key"`

	filePath string
}

// Save persists the FilePVKey to its filePath.
func (pvKey FilePVKey) Save() {
	outFile := pvKey.filePath
	if outFile == "" {
		panic("cannot save peer key: filePath not set")
	}

	jsonBytes, err := tmjson.MarshalIndent(pvKey, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := tempfile.WriteFileAtomic(outFile, jsonBytes, 0600); err != nil {
		panic(err)
	}
}

// FilePV holds a node's own Sumeragi signing identity, persisted to
// disk so a restarted node keeps the same chain position across
// restarts (§9: PeerService is otherwise static for the lifetime of a
// run; FilePV is what makes it static across runs too).
type FilePV struct {
	Key FilePVKey
}

// NewFilePV wraps an ed25519 keypair as a persistable FilePV.
func NewFilePV(privKey crypto.PrivKey, keyFilePath string) *FilePV {
	return &FilePV{
		Key: FilePVKey{
			Address:  types.Address(privKey.PubKey().Address()),
			PubKey:   privKey.PubKey(),
			PrivKey:  privKey,
			filePath: keyFilePath,
		},
	}
}

// GenFilePV generates a fresh ed25519 keypair and sets the file path,
// but does not call Save().
func GenFilePV(keyFilePath string) *FilePV {
	_, secret := cryptoimpl.GenerateKeypair()
	return NewFilePV(ed25519.PrivKey(secret), keyFilePath)
}

// LoadFilePV loads a FilePV from keyFilePath. If the file does not
// exist, the process exits, mirroring the teacher's loadFilePV.
func LoadFilePV(keyFilePath string) *FilePV {
	return loadFilePV(keyFilePath)
}

func loadFilePV(keyFilePath string) *FilePV {
	keyJSONBytes, err := ioutil.ReadFile(keyFilePath)
	if err != nil {
		tmos.Exit(err.Error())
	}
	pvKey := FilePVKey{}
	if err := tmjson.Unmarshal(keyJSONBytes, &pvKey); err != nil {
		tmos.Exit(fmt.Sprintf("error reading peer key from %v: %v\n", keyFilePath, err))
	}

	pvKey.PubKey = pvKey.PrivKey.PubKey()
	pvKey.Address = types.Address(pvKey.PubKey.Address())
	pvKey.filePath = keyFilePath

	return &FilePV{Key: pvKey}
}

// LoadOrGenFilePV loads a FilePV from keyFilePath or else generates and
// saves a fresh one.
func LoadOrGenFilePV(keyFilePath string) *FilePV {
	if tmos.FileExists(keyFilePath) {
		return LoadFilePV(keyFilePath)
	}
	pv := GenFilePV(keyFilePath)
	pv.Save()
	return pv
}

// GetAddress returns the node's address.
func (pv *FilePV) GetAddress() types.Address {
	return pv.Key.Address
}

// GetPubKey returns the node's public key.
func (pv *FilePV) GetPubKey() (crypto.PubKey, error) {
	return pv.Key.PubKey, nil
}

// SecretKeyBytes returns the raw secret key bytes PeerService.
// SelfSecretKey expects.
func (pv *FilePV) SecretKeyBytes() []byte {
	return pv.Key.PrivKey.Bytes()
}

// PubKeyBytes returns the raw public key bytes PeerService.SelfPubKey
// expects.
func (pv *FilePV) PubKeyBytes() []byte {
	return pv.Key.PubKey.Bytes()
}

// Save persists the FilePV to disk.
func (pv *FilePV) Save() {
	pv.Key.Save()
}

// String returns a string representation of the FilePV.
func (pv *FilePV) String() string {
	return fmt.Sprintf("FilePV{%v}", pv.GetAddress())
}
