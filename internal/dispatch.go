package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DispatchMode selects how long the client waits on the dispatcher.
type DispatchMode int

const (
	// DispatchNow fires the request and only waits long enough to know it
	// was accepted.
	DispatchNow DispatchMode = iota
	// DispatchWait blocks until the dispatcher reports completion.
	DispatchWait
)

// DispatchRequest carries one bounded conversation excerpt plus vault
// context to the external agent dispatcher. Never persisted.
type DispatchRequest struct {
	Transcript     string
	Source         string // "reset" or "sweep"
	Timestamp      time.Time
	VaultPath      string
	NotesDir       string
	NoteContext    string // existing note content for the date
	Model          string
	TranscriptPath string
}

// DispatchResult classifies one dispatch outcome.
type DispatchResult struct {
	Success bool
	Message string
}

// Payload ceilings. Oversized sections are cut with an explicit marker so
// dropped content is always signaled.
const (
	maxTranscriptChars  = 60000
	maxNoteContextChars = 20000
)

const (
	defaultNowTimeout  = 15 * time.Second
	defaultWaitTimeout = 10 * time.Minute
)

// commandRunner runs the dispatcher binary and returns stdout, stderr, and
// the run error. Swapped out in tests.
type commandRunner func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error)

// Dispatcher invokes the external agent dispatcher CLI.
type Dispatcher struct {
	Bin         string
	NowTimeout  time.Duration
	WaitTimeout time.Duration

	run commandRunner
}

func NewDispatcher(bin string) *Dispatcher {
	if bin == "" {
		bin = "claude"
	}
	return &Dispatcher{
		Bin:         bin,
		NowTimeout:  defaultNowTimeout,
		WaitTimeout: defaultWaitTimeout,
		run:         runCommand,
	}
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Dispatch sends one request to the dispatcher and classifies the outcome.
// It never returns an error; every failure mode collapses into a
// DispatchResult with Success=false and a descriptive message.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest, mode DispatchMode) DispatchResult {
	timeout := d.NowTimeout
	if mode == DispatchWait {
		timeout = d.WaitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildPrompt(req, uuid.NewString())

	args := []string{"-p", prompt, "--output-format", "json"}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}

	stdout, stderr, err := d.run(ctx, d.Bin, args...)

	switch {
	case err == nil:
		return DispatchResult{Success: true, Message: statusMessage(stdout, mode)}
	case errors.Is(err, exec.ErrNotFound):
		return DispatchResult{Message: fmt.Sprintf("dispatcher %q not found in PATH", d.Bin)}
	case ctx.Err() == context.DeadlineExceeded:
		return DispatchResult{Message: fmt.Sprintf("dispatch timed out after %s", timeout)}
	default:
		msg := firstLine(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return DispatchResult{Message: fmt.Sprintf("dispatch failed: %s", msg)}
	}
}

// buildPrompt renders the fixed instruction template with the request
// context injected. The transcript and note sections are truncated with an
// explicit marker when they exceed their ceilings.
func buildPrompt(req DispatchRequest, requestID string) string {
	var sb strings.Builder

	sb.WriteString("Extract durable notes from the conversation below and file them into the vault.\n\n")
	fmt.Fprintf(&sb, "request-id: %s\n", requestID)
	fmt.Fprintf(&sb, "source: %s\n", req.Source)
	fmt.Fprintf(&sb, "timestamp: %s\n", req.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "vault: %s\n", req.VaultPath)
	fmt.Fprintf(&sb, "notes-dir: %s\n", req.NotesDir)
	if req.Model != "" {
		fmt.Fprintf(&sb, "model: %s\n", req.Model)
	}
	if req.TranscriptPath != "" {
		fmt.Fprintf(&sb, "transcript-path: %s\n", req.TranscriptPath)
	}

	sb.WriteString("\n--- conversation ---\n")
	sb.WriteString(truncateWithMarker(req.Transcript, maxTranscriptChars))

	if req.NoteContext != "" {
		sb.WriteString("\n--- existing notes for this date ---\n")
		sb.WriteString(truncateWithMarker(req.NoteContext, maxNoteContextChars))
	}

	return sb.String()
}

// truncateWithMarker keeps the head of s up to max bytes and appends a
// marker naming how much was cut. Data is never dropped silently.
func truncateWithMarker(s string, max int) string {
	if len(s) <= max {
		return s
	}
	omitted := len(s) - max
	return s[:max] + fmt.Sprintf("\n[truncated: omitted %d chars]", omitted)
}

// statusMessage extracts a human-readable status from dispatcher output:
// a structured status/message/id field when stdout is JSON, else the first
// non-blank line, else a generic phrase for the mode.
func statusMessage(stdout []byte, mode DispatchMode) string {
	var parsed struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(stdout, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return parsed.Message
		case parsed.Status != "":
			return parsed.Status
		case parsed.ID != "":
			return "task " + parsed.ID
		}
	}

	if line := firstLine(string(stdout)); line != "" {
		return line
	}

	if mode == DispatchWait {
		return "dispatch completed"
	}
	return "dispatch queued"
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if len(line) > 200 {
				line = line[:200]
			}
			return line
		}
	}
	return ""
}
