package internal

import (
	"context"
	"time"
)

// minDispatchTurns is the smallest unprocessed suffix worth dispatching.
// A single trailing message is not a complete exchange.
const minDispatchTurns = 2

// Sweeper runs the periodic backfill pass: discover quiet transcripts,
// compute each file's unprocessed suffix against the checkpoint state, and
// hand qualifying suffixes to the dispatcher.
type Sweeper struct {
	Config     *Config
	State      *SweepState
	Dispatcher *Dispatcher

	// Force skips the interval gate (used by the watch loop).
	Force bool

	// Extract and Now are swapped out in tests.
	Extract func(path string) []Turn
	Now     func() time.Time
}

func NewSweeper(cfg *Config, st *SweepState, d *Dispatcher) *Sweeper {
	return &Sweeper{
		Config:     cfg,
		State:      st,
		Dispatcher: d,
		Extract:    ExtractTurns,
		Now:        time.Now,
	}
}

// SweepSummary reports one pass for the status line.
type SweepSummary struct {
	Ran        bool
	Examined   int
	Dispatched int
	Failed     int
	Changed    bool // state mutated, needs persisting
}

// Run executes at most one sweep pass over the session directories. State
// is mutated in memory only; the caller persists it once per invocation.
func (s *Sweeper) Run(ctx context.Context, sessionDirs []string) SweepSummary {
	var sum SweepSummary

	now := s.Now()

	if !s.Force && s.State.LastSweepAt != nil {
		interval := time.Duration(s.Config.SweepEveryMinutes) * time.Minute
		if now.Sub(*s.State.LastSweepAt) < interval {
			return sum
		}
	}
	sum.Ran = true

	staleAfter := time.Duration(s.Config.SweepStaleMinutes) * time.Minute
	candidates := LocateCandidates(sessionDirs, staleAfter, now)

	for _, cand := range candidates {
		if sum.Examined >= s.Config.SweepMaxFiles {
			break
		}

		// Unchanged files are skipped without spending budget.
		if cur, ok := s.State.Files[cand.Path]; ok && cur.MTime.Equal(cand.ModTime) {
			continue
		}

		sum.Examined++
		if s.sweepFile(ctx, cand, now, &sum) {
			sum.Changed = true
		}
	}

	// A pass with failures stays eligible to retry before the full
	// interval elapses.
	if sum.Failed == 0 {
		s.State.LastSweepAt = &now
		sum.Changed = true
	}

	return sum
}

// sweepFile processes one candidate and reports whether state changed.
func (s *Sweeper) sweepFile(ctx context.Context, cand TranscriptCandidate, now time.Time, sum *SweepSummary) bool {
	turns := s.Extract(cand.Path)
	if len(turns) == 0 {
		return s.State.UpdateCursor(cand.Path, turns, cand.ModTime, now)
	}

	offset := s.State.VerifiedOffset(cand.Path, turns)
	suffix := turns[offset:]

	if len(suffix) < minDispatchTurns {
		return s.State.UpdateCursor(cand.Path, turns, cand.ModTime, now)
	}

	window := suffix
	if len(window) > s.Config.SweepMessages {
		window = window[len(window)-s.Config.SweepMessages:]
	}

	req := DispatchRequest{
		Transcript:     RenderTranscript(window),
		Source:         "sweep",
		Timestamp:      now,
		VaultPath:      s.Config.Vault,
		NotesDir:       s.Config.NotesDir,
		NoteContext:    ReadDailyNote(s.Config, now),
		Model:          s.Config.Model,
		TranscriptPath: cand.Path,
	}

	res := s.Dispatcher.Dispatch(ctx, req, DispatchNow)
	if !res.Success {
		// Cursor untouched so the file is retried next pass.
		sum.Failed++
		return false
	}

	sum.Dispatched++

	// Advance past everything currently in the file. If the message cap
	// dropped part of the suffix, that tail is accepted as lost. The mtime
	// recorded is the one observed at listing: an append racing the sweep
	// bumps the real mtime past it, so the file is re-examined next pass
	// and the verified prefix picks up exactly the appended turns.
	return s.State.UpdateCursor(cand.Path, turns, cand.ModTime, now)
}
