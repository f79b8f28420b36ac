package commands

import (
	"fmt"

	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"

	"github.com/spf13/cobra"

	"github.com/mrsmuneton/iroha/privval"
)

// GenValidatorCmd generates this node's ed25519 consensus identity
// keypair (§6 PeerService's selfPubKey/selfSecretKey, persisted to
// disk). Replaces the teacher's BLS threshold-share generation — BLS
// keys in this module are quorumcert's concern (per-peer keypairs), not
// an individual peer's signing identity.
var GenValidatorCmd = &cobra.Command{
	Use:     "gen-peer-key",
	Aliases: []string{"gen-validator", "gen_validator"},
	Args:    cobra.ArbitraryArgs,
	Short:   "Generate a new peer keypair for this node",
	PreRun:  deprecateSnakeCase,
	RunE:    genValidator,
}

func genValidator(cmd *cobra.Command, args []string) error {
	peerKeyFile := cfg.Sumeragi.PeerKeyFile
	if tmos.FileExists(peerKeyFile) {
		return fmt.Errorf("peer key already exists at %s", peerKeyFile)
	}

	pv := privval.GenFilePV(peerKeyFile)
	jsbz, err := tmjson.Marshal(pv.Key)
	if err != nil {
		return err
	}
	pv.Save()

	fmt.Println(string(jsbz))
	return nil
}

// ShowValidatorCmd prints this node's peer public key. If no peer key
// file exists yet, one is generated and saved first.
var ShowValidatorCmd = &cobra.Command{
	Use:     "show-peer-key",
	Aliases: []string{"show-validator"},
	Short:   "Show this node's peer public key",
	RunE:    showValidator,
}

func showValidator(cmd *cobra.Command, args []string) error {
	pv := privval.LoadOrGenFilePV(cfg.Sumeragi.PeerKeyFile)
	jsbz, err := tmjson.Marshal(pv.Key.PubKey)
	if err != nil {
		return err
	}
	fmt.Println(string(jsbz))
	return nil
}
