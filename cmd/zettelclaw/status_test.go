package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/maxpetretta/zettelclaw-sub001/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEmptyState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	out, _, err := execCmd(t, "", "status", "--state", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Last sweep: never")
	assert.Contains(t, out, "Tracked transcripts: 0")
}

func TestStatusListsRecentEntries(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	now := time.Now().UTC().Truncate(time.Second)

	state := internal.NewSweepState()
	state.LastSweepAt = &now
	state.Files["/a.jsonl"] = internal.SweepCursor{Offset: 4, UpdatedAt: now.Add(-time.Hour)}
	state.Files["/b.jsonl"] = internal.SweepCursor{Offset: 9, UpdatedAt: now}
	require.NoError(t, internal.SaveSweepState(statePath, state))

	out, _, err := execCmd(t, "", "status", "--state", statePath, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracked transcripts: 2")
	assert.Contains(t, out, "/b.jsonl")
	assert.NotContains(t, out, "/a.jsonl")
}
