package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	"github.com/mrsmuneton/iroha/privval"
	"github.com/mrsmuneton/iroha/types"
)

var (
	chainID      string
	peerKeyFiles []string
	endpoints    []string
)

// GenGenesisCmd assembles a genesis.json from a list of peer key files
// and their network endpoints, replacing the teacher's BLS cluster-key
// genesis (BLS key generation lives in quorumcert as per-peer keypairs,
// exercised directly by its own tests rather than by a live multi-party
// CLI ceremony this module doesn't otherwise need).
var GenGenesisCmd = &cobra.Command{
	Use:     "gen-genesis-block",
	Aliases: []string{"gen-genesis", "gen_genesis"},
	Short:   "Generate a genesis peer set for the cluster",
	RunE:    genGenesisFile,
}

func init() {
	GenGenesisCmd.Flags().StringVar(&chainID, "chain-id", "sumeragi-test", "chain identifier shared by the whole cluster")
	GenGenesisCmd.Flags().StringSliceVar(&peerKeyFiles, "peer-key-file", nil, "peer public key file, repeatable, one per cluster member")
	GenGenesisCmd.Flags().StringSliceVar(&endpoints, "endpoint", nil, "network endpoint, repeatable, aligned by index with --peer-key-file")
	GenGenesisCmd.MarkFlagRequired("peer-key-file")
	GenGenesisCmd.MarkFlagRequired("endpoint")
}

func genGenesisFile(cmd *cobra.Command, args []string) error {
	genFile := cfg.Sumeragi.GenesisFile
	if tmos.FileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}

	if len(peerKeyFiles) != len(endpoints) {
		return fmt.Errorf("--peer-key-file and --endpoint must be given the same number of times")
	}

	peers := make([]types.GenesisPeer, len(peerKeyFiles))
	for i, keyFile := range peerKeyFiles {
		pv := privval.LoadFilePV(keyFile)
		pub, err := pv.GetPubKey()
		if err != nil {
			return fmt.Errorf("reading peer key %s: %w", keyFile, err)
		}
		peers[i] = types.GenesisPeer{
			PubKey:   pub,
			Endpoint: endpoints[i],
			Moniker:  fmt.Sprintf("peer-%d", i),
		}
	}

	genDoc := &types.GenesisDoc{
		ChainID: chainID,
		Peers:   peers,
	}
	if err := genDoc.ValidateAndComplete(); err != nil {
		return err
	}
	if err := genDoc.SaveAs(genFile); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile, "peers", len(peers))
	return nil
}
