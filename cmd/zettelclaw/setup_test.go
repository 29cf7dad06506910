package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupScaffoldsVaultAndConfig(t *testing.T) {
	vault := filepath.Join(t.TempDir(), "vault")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, _, err := execCmd(t, "", "setup", vault, "--config", cfgPath, "--no-hook")
	require.NoError(t, err)
	assert.Contains(t, out, "Scaffolded vault at "+vault)
	assert.Contains(t, out, "Initialized git repository")
	assert.Contains(t, out, "Wrote config to "+cfgPath)

	assert.True(t, internal.IsGitRepo(vault))

	cfg, err := internal.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, vault, cfg.Vault)

	_, err = os.Stat(filepath.Join(vault, "notes"))
	assert.NoError(t, err)
}

func TestSetupNoGit(t *testing.T) {
	vault := filepath.Join(t.TempDir(), "vault")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, _, err := execCmd(t, "", "setup", vault, "--config", cfgPath, "--no-git", "--no-hook")
	require.NoError(t, err)
	assert.NotContains(t, out, "Initialized git repository")
	assert.False(t, internal.IsGitRepo(vault))
}

func TestSetupRerunSkipsGitInit(t *testing.T) {
	vault := filepath.Join(t.TempDir(), "vault")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execCmd(t, "", "setup", vault, "--config", cfgPath, "--no-hook")
	require.NoError(t, err)

	out, _, err := execCmd(t, "", "setup", vault, "--config", cfgPath, "--no-hook")
	require.NoError(t, err)
	assert.Contains(t, out, "Git repository already present")
}

func TestSetupRequiresVault(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execCmd(t, "", "setup", "--config", cfgPath, "--no-hook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault path required")
}

func TestSetupInstallsHook(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	vault := filepath.Join(t.TempDir(), "vault")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execCmd(t, "", "setup", vault, "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".claude", "settings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hook run")
	assert.Contains(t, string(data), "SessionStart")
}
