// Package commands implements the sumeragi-node CLI: init/gen-peer-
// key/gen-genesis/run-node, cobra-structured the way the teacher's
// cmd/commands package is, with viper-backed config loading standing
// in for the teacher's bare cli.PrepareBaseCmd flow.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/cli"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/mrsmuneton/iroha/config"
)

var (
	cfg    *config.Config
	logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
)

// RootCmd is the base command every sumeragi-node subcommand attaches
// to. PersistentPreRunE loads config.toml from --home before any
// subcommand runs, mirroring the teacher's reliance on
// cli.PrepareBaseCmd to populate the package-level config/logger
// globals before RunE fires.
var RootCmd = &cobra.Command{
	Use:   "sumeragi-node",
	Short: "Sumeragi BFT consensus core node",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		home := viperHomeDir(cmd)
		loaded, err := config.Load(home)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		logger = logger.With("chain_id", "sumeragi")
		return nil
	},
}

func viperHomeDir(cmd *cobra.Command) string {
	home, _ := cmd.Flags().GetString(cli.HomeFlag)
	if home == "" {
		home = cli.HomeFlag
	}
	return home
}

// deprecateSnakeCase prints a deprecation notice for snake_case command
// aliases, the same pre-run hook the teacher attaches to every command
// that still carries one (gen-node-key, gen-validator).
func deprecateSnakeCase(cmd *cobra.Command, args []string) {
	if cmd.CalledAs() != cmd.Name() {
		fmt.Printf("snake_case commands are deprecated, please use %s\n", cmd.Name())
	}
}
