package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.SweepEnabled)
	assert.Equal(t, 30, cfg.SweepEveryMinutes)
	assert.Equal(t, 120, cfg.SweepMessages)
	assert.Equal(t, "claude", cfg.DispatcherBin)
	assert.Equal(t, "notes", cfg.NotesDir)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "vault: /my/vault\nsweep_messages: 50\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/my/vault", cfg.Vault)
	assert.Equal(t, 50, cfg.SweepMessages)
	assert.Equal(t, 30, cfg.SweepEveryMinutes)
}

func TestLoadConfigDisableSweep(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "sweep_enabled: false\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.SweepEnabled)
}

func TestLoadConfigClampsBounds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
sweep_every_minutes: 1
sweep_messages: 9999
sweep_max_files: 0
sweep_stale_minutes: 99999
messages: -5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, MinSweepEveryMinutes, cfg.SweepEveryMinutes)
	assert.Equal(t, MaxSweepMessages, cfg.SweepMessages)
	assert.Equal(t, MinSweepMaxFiles, cfg.SweepMaxFiles)
	assert.Equal(t, MaxSweepStaleMinutes, cfg.SweepStaleMinutes)
	assert.Equal(t, MinResetMessages, cfg.Messages)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "vault: [unclosed\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveLoadConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Vault = "/some/vault"
	cfg.Model = "sonnet"
	cfg.ExpectFinal = true
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/some/vault", loaded.Vault)
	assert.Equal(t, "sonnet", loaded.Model)
	assert.True(t, loaded.ExpectFinal)
}

func TestConfigVaultPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vault = "/v"
	assert.Equal(t, filepath.Join("/v", "notes"), cfg.NotesPath())
	assert.Equal(t, filepath.Join("/v", "journal"), cfg.JournalPath())
}
