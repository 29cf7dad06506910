package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureWritesObsidianSettings(t *testing.T) {
	cfgPath, cfg := writeTestConfig(t, nil)

	out, _, err := execCmd(t, "", "configure", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "app.json: updated")
	assert.Contains(t, out, "daily-notes.json: updated")

	data, err := os.ReadFile(filepath.Join(cfg.Vault, internal.ObsidianDir, "daily-notes.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, cfg.JournalDir, doc["folder"])
	assert.Equal(t, "YYYY-MM-DD", doc["format"])
}

func TestConfigureIsIdempotent(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, nil)

	_, _, err := execCmd(t, "", "configure", "--config", cfgPath)
	require.NoError(t, err)

	out, _, err := execCmd(t, "", "configure", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "app.json: unchanged")
}

func TestConfigureDryRunShowsDiffWithoutWriting(t *testing.T) {
	cfgPath, cfg := writeTestConfig(t, nil)

	out, _, err := execCmd(t, "", "configure", "--config", cfgPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+ ")

	_, err = os.Stat(filepath.Join(cfg.Vault, internal.ObsidianDir, "app.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigurePreservesHandEdits(t *testing.T) {
	cfgPath, cfg := writeTestConfig(t, nil)

	appJSON := filepath.Join(cfg.Vault, internal.ObsidianDir, "app.json")
	require.NoError(t, os.WriteFile(appJSON, []byte(`{"theme":"moonstone"}`), 0644))

	_, _, err := execCmd(t, "", "configure", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(appJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "moonstone")
	assert.Contains(t, string(data), "attachmentFolderPath")
}

func TestConfigureRequiresVault(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, internal.SaveConfig(cfgPath, internal.DefaultConfig()))

	_, _, err := execCmd(t, "", "configure", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault not configured")
}
