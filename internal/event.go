package internal

import (
	"encoding/json"
	"fmt"
	"io"
)

// HookEvent is the payload the agent runtime pipes to the hook on stdin.
type HookEvent struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	Source         string `json:"source"`
	IsSandbox      bool   `json:"is_sandbox,omitempty"`
}

// ParseHookEvent decodes one hook event from r.
func ParseHookEvent(r io.Reader) (*HookEvent, error) {
	var ev HookEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode hook event: %w", err)
	}
	return &ev, nil
}

// IsReset reports whether the event is an explicit start-fresh: the user
// cleared or compacted the session, closing out the previous transcript.
func (e *HookEvent) IsReset() bool {
	return e.Source == "clear" || e.Source == "compact"
}

// IsIsolated reports whether the session is a sandboxed, ephemeral kind
// that the reset path must not process.
func (e *HookEvent) IsIsolated() bool {
	return e.IsSandbox
}
