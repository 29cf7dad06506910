package internal

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TranscriptCandidate identifies one transcript file worth sweeping.
// Recomputed on every locator pass, never persisted.
type TranscriptCandidate struct {
	Path    string
	ModTime time.Time
}

// ClaudeProjectsDir returns the root under which the agent runtime keeps
// per-project session directories.
func ClaudeProjectsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// SessionDirs lists the per-project session directories under root. A
// missing or unreadable root yields nil.
func SessionDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs
}

// IsTranscript reports whether name matches the transcript naming
// convention (primary or reset variant).
func IsTranscript(name string) bool {
	return strings.HasSuffix(name, ".jsonl")
}

// IsResetTranscript reports whether name is a reset-variant sibling, the
// closed-out copy written when a session is explicitly reset.
func IsResetTranscript(name string) bool {
	if !strings.HasSuffix(name, ".jsonl") {
		return false
	}
	return strings.HasSuffix(name, ".reset.jsonl") || strings.Contains(name, ".reset-")
}

// LocateCandidates discovers transcript files across the session
// directories, sorted oldest-modified-first so backlog clears in arrival
// order. Primary files modified within staleAfter of now are excluded:
// an actively-written conversation is not swept mid-stream. Reset variants
// are final by construction and never excluded by freshness. Directories
// that cannot be listed are skipped.
func LocateCandidates(sessionDirs []string, staleAfter time.Duration, now time.Time) []TranscriptCandidate {
	// Keyed by resolved path so the same transcript reached through two
	// roots is only counted once, keeping the freshest instance.
	seen := make(map[string]TranscriptCandidate)

	for _, dir := range sessionDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !IsTranscript(name) {
				continue
			}

			info, err := e.Info()
			if err != nil {
				continue
			}

			if !IsResetTranscript(name) && now.Sub(info.ModTime()) < staleAfter {
				continue
			}

			path := filepath.Join(dir, name)
			key := resolvePath(path)
			cand := TranscriptCandidate{Path: path, ModTime: info.ModTime()}

			if prev, ok := seen[key]; !ok || cand.ModTime.After(prev.ModTime) {
				seen[key] = cand
			}
		}
	}

	candidates := make([]TranscriptCandidate, 0, len(seen))
	for _, c := range seen {
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].ModTime.Equal(candidates[j].ModTime) {
			return candidates[i].ModTime.Before(candidates[j].ModTime)
		}
		return candidates[i].Path < candidates[j].Path
	})

	return candidates
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
