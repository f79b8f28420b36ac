package commands

import (
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/p2p"

	"github.com/mrsmuneton/iroha/privval"
)

// InitFilesCmd initializes a fresh sumeragi-node instance's local
// files: the p2p node key and this node's peer identity. It does not
// generate a genesis file — unlike a single node key, genesis.json is
// a cluster-wide document every member must agree on, produced once by
// GenGenesisCmd and distributed out of band.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sumeragi-node instance",
	RunE:  initFiles,
}

func initFiles(cmd *cobra.Command, args []string) error {
	peerKeyFile := cfg.Sumeragi.PeerKeyFile
	if tmos.FileExists(peerKeyFile) {
		logger.Info("Found peer key", "keyFile", peerKeyFile)
	} else {
		pv := privval.GenFilePV(peerKeyFile)
		pv.Save()
		logger.Info("Generated peer key", "keyFile", peerKeyFile)
	}

	nodeKeyFile := cfg.NodeKeyFile()
	if tmos.FileExists(nodeKeyFile) {
		logger.Info("Found node key", "path", nodeKeyFile)
	} else {
		if _, err := p2p.LoadOrGenNodeKey(nodeKeyFile); err != nil {
			return err
		}
		logger.Info("Generated node key", "path", nodeKeyFile)
	}

	return nil
}
