package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenConfigFileAbsent(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, DefaultSumeragiConfig().QueueSize, cfg.Sumeragi.QueueSize)
	assert.Equal(t, DefaultSumeragiConfig().CommitTimeoutMS, cfg.Sumeragi.CommitTimeoutMS)
	assert.Equal(t, root, cfg.RootDir)
}

func TestLoad_OverridesFromConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0755))

	toml := `
[sumeragi]
workers = 7
queue_size = 256
commit_timeout_ms = 1500
strict_leader_check = true
quorum_cert = true
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.toml"), []byte(toml), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Sumeragi.Workers)
	assert.Equal(t, 256, cfg.Sumeragi.QueueSize)
	assert.Equal(t, 1500, cfg.Sumeragi.CommitTimeoutMS)
	assert.True(t, cfg.Sumeragi.StrictLeaderCheck)
	assert.True(t, cfg.Sumeragi.QuorumCert)
}

func TestLoad_QuorumCertDefaultsToFalse(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.False(t, cfg.Sumeragi.QuorumCert)
}

func TestSumeragiConfig_CommitTimeout(t *testing.T) {
	c := SumeragiConfig{CommitTimeoutMS: 2500}
	assert.Equal(t, int64(2500), c.CommitTimeout().Milliseconds())
}
