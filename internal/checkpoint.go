package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	sweepStateVersion = 1

	// MaxTrackedFiles bounds the checkpoint map; oldest-updated entries are
	// pruned on save once the bound is exceeded.
	MaxTrackedFiles = 4000
)

// SweepCursor is the per-transcript resumability bookmark. Hash is always
// the fingerprint of exactly the first Offset turns of the file content the
// cursor was computed from.
type SweepCursor struct {
	Offset    int       `json:"offset"`
	Hash      string    `json:"hash"`
	MTime     time.Time `json:"mtime"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SweepState is the full persisted checkpoint document, keyed by transcript
// file path.
type SweepState struct {
	Version     int                    `json:"version"`
	LastSweepAt *time.Time             `json:"lastSweepAt,omitempty"`
	Files       map[string]SweepCursor `json:"files"`
}

func NewSweepState() *SweepState {
	return &SweepState{
		Version: sweepStateVersion,
		Files:   make(map[string]SweepCursor),
	}
}

// DefaultStatePath returns the checkpoint file location under the XDG state
// directory: $XDG_STATE_HOME/zettelclaw/sweep-state.json or
// ~/.local/state/zettelclaw/sweep-state.json.
func DefaultStatePath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "zettelclaw", "sweep-state.json"), nil
}

// LoadSweepState reads the persisted state. Any read or parse failure
// degrades to an empty state: a corrupt checkpoint means "reprocess
// everything", never a crash.
func LoadSweepState(path string) *SweepState {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewSweepState()
	}

	var st SweepState
	if err := json.Unmarshal(data, &st); err != nil {
		return NewSweepState()
	}
	if st.Files == nil {
		st.Files = make(map[string]SweepCursor)
	}
	st.Version = sweepStateVersion
	return &st
}

// SaveSweepState prunes the state to the entry bound and writes it
// atomically via a temp file and rename.
func SaveSweepState(path string, st *SweepState) error {
	st.prune(MaxTrackedFiles)

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sweep state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "sweep-state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write sweep state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close sweep state: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename sweep state: %w", err)
	}

	return nil
}

// prune keeps the max most-recently-updated entries.
func (st *SweepState) prune(max int) {
	if len(st.Files) <= max {
		return
	}

	type entry struct {
		path   string
		cursor SweepCursor
	}
	entries := make([]entry, 0, len(st.Files))
	for p, c := range st.Files {
		entries = append(entries, entry{p, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cursor.UpdatedAt.After(entries[j].cursor.UpdatedAt)
	})

	kept := make(map[string]SweepCursor, max)
	for _, e := range entries[:max] {
		kept[e.path] = e.cursor
	}
	st.Files = kept
}

// Fingerprint field and record separators. Explicit separators keep
// ("a","bc") and ("ab","c") from hashing alike.
const (
	fpFieldSep = "\x1f"
	fpTurnSep  = "\x1e"
)

// FingerprintTurns computes the deterministic, order-sensitive hash over
// (role, content) pairs used to verify a cursor's prefix.
func FingerprintTurns(turns []Turn) string {
	h := sha256.New()
	for _, t := range turns {
		h.Write([]byte(t.Role))
		h.Write([]byte(fpFieldSep))
		h.Write([]byte(t.Content))
		h.Write([]byte(fpTurnSep))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// UpdateCursor recomputes the cursor for path from the full current turn
// sequence and stores it if anything differs. It reports whether the state
// changed. A stored cursor with a newer UpdatedAt wins: the reset path and
// a sweep can both touch the same entry, and last-write-wins on the
// monotonic timestamp resolves that race.
func (st *SweepState) UpdateCursor(path string, turns []Turn, mtime, now time.Time) bool {
	next := SweepCursor{
		Offset:    len(turns),
		Hash:      FingerprintTurns(turns),
		MTime:     mtime,
		UpdatedAt: now,
	}

	prev, ok := st.Files[path]
	if ok {
		if prev.UpdatedAt.After(now) {
			return false
		}
		if prev.Offset == next.Offset && prev.Hash == next.Hash && prev.MTime.Equal(next.MTime) {
			return false
		}
	}

	st.Files[path] = next
	return true
}

// VerifiedOffset returns the resume point for the current turns of path:
// the stored offset when its fingerprinted prefix still matches, otherwise
// zero (truncation, rewrite, or rotation invalidated the cursor).
func (st *SweepState) VerifiedOffset(path string, turns []Turn) int {
	cur, ok := st.Files[path]
	if !ok || cur.Offset <= 0 {
		return 0
	}
	if cur.Offset > len(turns) {
		return 0
	}
	if FingerprintTurns(turns[:cur.Offset]) != cur.Hash {
		return 0
	}
	return cur.Offset
}
