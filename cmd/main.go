package main

import (
	"fmt"
	"os"
	"path/filepath"

	cfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli"

	cmd "github.com/mrsmuneton/iroha/cmd/commands"
	nm "github.com/mrsmuneton/iroha/node"
)

func main() {
	cfg.DefaultTendermintDir = ".sumeragi"
	rootCmd := cmd.RootCmd

	// Users wishing to supply their own Ledger, Crypto, or Transport
	// implementation can copy this file and use something other than
	// DefaultNewNode.
	nodeFunc := nm.DefaultNewNode

	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.GenNodeKeyCmd,
		cmd.ShowNodeIDCmd,
		cmd.GenValidatorCmd,
		cmd.ShowValidatorCmd,
		cmd.GenGenesisCmd,
		cmd.NewRunNodeCmd(nodeFunc),
		cli.NewCompletionCmd(rootCmd, true),
	)

	baseCmd := cli.PrepareBaseCmd(rootCmd, "SUMERAGI", os.ExpandEnv(filepath.Join("$HOME", cfg.DefaultTendermintDir)))
	if err := baseCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
