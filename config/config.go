// Package config loads a node's runtime configuration: the ambient
// tendermint/config.Config this module's p2p transport still needs for
// its Switch/Transport plumbing, plus the Sumeragi-specific tunables
// spec.md §6 names (workers, queue_size, commit_timeout_ms) and the
// opt-in hardening from §9's open questions.
//
// Grounded on the teacher's cmd/commands (package-level config/logger
// globals populated by cli.PrepareBaseCmd) generalized to a
// spf13/viper-backed loader, the way the rest of the tendermint
// ecosystem's node binaries read a config.toml.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	tmcfg "github.com/tendermint/tendermint/config"

	"github.com/mrsmuneton/iroha/dispatcher"
	"github.com/mrsmuneton/iroha/timeout"
)

// SumeragiConfig holds the tunables from spec.md §6's Configuration
// table.
type SumeragiConfig struct {
	Workers           int    `mapstructure:"workers"`
	QueueSize         int    `mapstructure:"queue_size"`
	CommitTimeoutMS   int    `mapstructure:"commit_timeout_ms"`
	StrictLeaderCheck bool   `mapstructure:"strict_leader_check"`
	QuorumCert        bool   `mapstructure:"quorum_cert"`
	PeerKeyFile       string `mapstructure:"peer_key_file"`
	GenesisFile       string `mapstructure:"genesis_file"`
	LedgerDir         string `mapstructure:"ledger_dir"`
}

// Config is the full configuration a node reads at startup: the
// tendermint p2p/rpc config this module's transport layer is built on,
// plus SumeragiConfig.
type Config struct {
	*tmcfg.Config `mapstructure:",squash"`
	Sumeragi      SumeragiConfig `mapstructure:"sumeragi"`
}

// DefaultSumeragiConfig returns spec.md §6's stated defaults.
func DefaultSumeragiConfig() SumeragiConfig {
	return SumeragiConfig{
		Workers:         0,
		QueueSize:       dispatcher.DefaultQueueSize,
		CommitTimeoutMS: int(timeout.DefaultDuration / time.Millisecond),
		PeerKeyFile:     "config/peer_key.json",
		GenesisFile:     "config/genesis.json",
		LedgerDir:       "data/ledger",
	}
}

// DefaultConfig returns a Config with tendermint's default P2P/RPC
// settings and Sumeragi's defaults. Load sets its root directory.
func DefaultConfig() *Config {
	return &Config{
		Config:   tmcfg.DefaultConfig(),
		Sumeragi: DefaultSumeragiConfig(),
	}
}

// CommitTimeout converts the configured millisecond value to a
// time.Duration for timeout.NewManager.
func (c SumeragiConfig) CommitTimeout() time.Duration {
	return time.Duration(c.CommitTimeoutMS) * time.Millisecond
}

// Load reads config.toml from rootDir via viper, falling back to
// defaults for anything unset. rootDir is set on the returned
// tendermint config the same way cli.PrepareBaseCmd sets it on every
// tendermint-based node binary.
func Load(rootDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.SetRoot(rootDir)

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(cfg.RootDir + "/config")
	v.SetEnvPrefix("SUMERAGI")
	v.AutomaticEnv()

	v.SetDefault("sumeragi.workers", cfg.Sumeragi.Workers)
	v.SetDefault("sumeragi.queue_size", cfg.Sumeragi.QueueSize)
	v.SetDefault("sumeragi.commit_timeout_ms", cfg.Sumeragi.CommitTimeoutMS)
	v.SetDefault("sumeragi.strict_leader_check", cfg.Sumeragi.StrictLeaderCheck)
	v.SetDefault("sumeragi.quorum_cert", cfg.Sumeragi.QuorumCert)
	v.SetDefault("sumeragi.peer_key_file", cfg.Sumeragi.PeerKeyFile)
	v.SetDefault("sumeragi.genesis_file", cfg.Sumeragi.GenesisFile)
	v.SetDefault("sumeragi.ledger_dir", cfg.Sumeragi.LedgerDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.UnmarshalKey("sumeragi", &cfg.Sumeragi); err != nil {
		return nil, fmt.Errorf("unmarshalling sumeragi config: %w", err)
	}

	return cfg, nil
}
