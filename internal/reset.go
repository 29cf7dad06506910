package internal

import (
	"context"
	"os"
	"time"
)

// ResetSummary reports the immediate start-fresh path for the status line.
type ResetSummary struct {
	Dispatched bool
	Skipped    bool
	Message    string
	Changed    bool
}

// RunReset handles an explicit start-fresh event: dispatch the most recent
// window of the current session's transcript, then checkpoint it so the
// background sweep does not re-dispatch the same content. Isolated
// (sandboxed) sessions are excluded entirely.
func RunReset(ctx context.Context, cfg *Config, st *SweepState, d *Dispatcher, ev *HookEvent, now time.Time) ResetSummary {
	if ev.IsIsolated() {
		return ResetSummary{Skipped: true, Message: "isolated session, skipped"}
	}
	if ev.TranscriptPath == "" {
		return ResetSummary{Skipped: true, Message: "no transcript for session"}
	}

	// mtime is read before extraction: an append racing the reset bumps
	// the real mtime past the recorded one, forcing re-examination.
	var mtime time.Time
	if info, err := os.Stat(ev.TranscriptPath); err == nil {
		mtime = info.ModTime()
	}

	turns := ExtractTurns(ev.TranscriptPath)
	if len(turns) == 0 {
		return ResetSummary{Skipped: true, Message: "empty transcript"}
	}

	window := turns
	if len(window) > cfg.Messages {
		window = window[len(window)-cfg.Messages:]
	}

	mode := DispatchNow
	if cfg.ExpectFinal {
		mode = DispatchWait
	}

	req := DispatchRequest{
		Transcript:     RenderTranscript(window),
		Source:         "reset",
		Timestamp:      now,
		VaultPath:      cfg.Vault,
		NotesDir:       cfg.NotesDir,
		NoteContext:    ReadDailyNote(cfg, now),
		Model:          cfg.Model,
		TranscriptPath: ev.TranscriptPath,
	}

	res := d.Dispatch(ctx, req, mode)
	if !res.Success {
		return ResetSummary{Message: res.Message}
	}

	sum := ResetSummary{Dispatched: true, Message: res.Message}

	// Only a successful dispatch advances the cursor.
	sum.Changed = st.UpdateCursor(ev.TranscriptPath, turns, mtime, now)

	return sum
}
