package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// PatchJSONFile deep-merges patch over the JSON document at path,
// preserving keys the patch does not name. An absent file is treated as an
// empty document. It returns the before and after serializations; the file
// is only written when dryRun is false and something changed.
func PatchJSONFile(path string, patch map[string]any, dryRun bool) (before, after string, err error) {
	var doc map[string]any

	data, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return "", "", fmt.Errorf("parse %s: %w", path, err)
		}
		before = string(data)
	case os.IsNotExist(readErr):
		doc = make(map[string]any)
	default:
		return "", "", fmt.Errorf("read %s: %w", path, readErr)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	merged := mergeValue(doc, patch)

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal %s: %w", path, err)
	}
	after = string(out) + "\n"

	if dryRun || before == after {
		return before, after, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(after), 0644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", path, err)
	}

	return before, after, nil
}

// mergeValue merges patch over base: maps merge recursively, everything
// else is replaced by the patch value.
func mergeValue(base, patch any) any {
	baseMap, baseOK := base.(map[string]any)
	patchMap, patchOK := patch.(map[string]any)
	if !baseOK || !patchOK {
		return patch
	}

	merged := make(map[string]any, len(baseMap)+len(patchMap))
	for k, v := range baseMap {
		merged[k] = v
	}
	for k, v := range patchMap {
		if existing, ok := merged[k]; ok {
			merged[k] = mergeValue(existing, v)
		} else {
			merged[k] = v
		}
	}
	return merged
}

// DiffText renders a line-oriented diff between two serializations,
// used for --dry-run previews.
func DiffText(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			out += prefixLines(d.Text, "+ ")
		case diffmatchpatch.DiffDelete:
			out += prefixLines(d.Text, "- ")
		}
	}
	return out
}

func prefixLines(text, prefix string) string {
	var out string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out += prefix + text[start:i] + "\n"
			start = i + 1
		}
	}
	if start < len(text) {
		out += prefix + text[start:] + "\n"
	}
	return out
}

// AppendUnique adds values to a JSON string array field, keeping existing
// entries and order. Used to enable community plugins.
func AppendUnique(existing []any, values ...string) []any {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		if s, ok := v.(string); ok {
			seen[s] = true
		}
	}
	out := existing
	for _, v := range values {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// HookCommand is the shell command installed into the agent runtime's
// settings so session events reach the hook.
func HookCommand(binPath string) string {
	return binPath + " hook run"
}

// InstallHookSettings patches the agent runtime settings file (usually
// ~/.claude/settings.json) so SessionStart events invoke the hook. Other
// settings and unrelated hooks are preserved; a matcher already pointing at
// the hook is not duplicated.
func InstallHookSettings(settingsPath, binPath string) error {
	var doc map[string]any
	data, err := os.ReadFile(settingsPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse settings: %w", err)
		}
	case os.IsNotExist(err):
		doc = make(map[string]any)
	default:
		return fmt.Errorf("read settings: %w", err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	command := HookCommand(binPath)

	hooks, _ := doc["hooks"].(map[string]any)
	if hooks == nil {
		hooks = make(map[string]any)
	}
	entries, _ := hooks["SessionStart"].([]any)

	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		inner, _ := m["hooks"].([]any)
		for _, h := range inner {
			hm, ok := h.(map[string]any)
			if ok && hm["command"] == command {
				return nil // already installed
			}
		}
	}

	entries = append(entries, map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": command},
		},
	})
	hooks["SessionStart"] = entries
	doc["hooks"] = hooks

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(settingsPath, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}
