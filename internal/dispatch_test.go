package internal

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDispatcher returns a Dispatcher whose runner is replaced by fn.
func stubDispatcher(fn commandRunner) *Dispatcher {
	d := NewDispatcher("claude")
	d.run = fn
	return d
}

func okRunner(stdout string) commandRunner {
	return func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		return []byte(stdout), nil, nil
	}
}

func TestDispatchSuccessStructuredOutput(t *testing.T) {
	d := stubDispatcher(okRunner(`{"status":"ok","message":"filed 3 notes","id":"t-1"}`))

	res := d.Dispatch(context.Background(), DispatchRequest{Source: "sweep"}, DispatchNow)
	assert.True(t, res.Success)
	assert.Equal(t, "filed 3 notes", res.Message)
}

func TestDispatchSuccessPlainOutput(t *testing.T) {
	d := stubDispatcher(okRunner("\n  queued task 42  \nsecond line"))

	res := d.Dispatch(context.Background(), DispatchRequest{Source: "sweep"}, DispatchNow)
	assert.True(t, res.Success)
	assert.Equal(t, "queued task 42", res.Message)
}

func TestDispatchSuccessEmptyOutputFallback(t *testing.T) {
	d := stubDispatcher(okRunner(""))

	res := d.Dispatch(context.Background(), DispatchRequest{}, DispatchNow)
	assert.True(t, res.Success)
	assert.Equal(t, "dispatch queued", res.Message)

	res = d.Dispatch(context.Background(), DispatchRequest{}, DispatchWait)
	assert.Equal(t, "dispatch completed", res.Message)
}

func TestDispatchBinaryNotFound(t *testing.T) {
	d := stubDispatcher(func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		return nil, nil, exec.ErrNotFound
	})

	res := d.Dispatch(context.Background(), DispatchRequest{}, DispatchNow)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "not found")
}

func TestDispatchNonZeroExit(t *testing.T) {
	d := stubDispatcher(func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		return nil, []byte("boom: no vault\n"), errors.New("exit status 1")
	})

	res := d.Dispatch(context.Background(), DispatchRequest{}, DispatchNow)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "boom: no vault")
}

func TestDispatchTimeout(t *testing.T) {
	d := stubDispatcher(func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	})
	d.NowTimeout = 10 * time.Millisecond

	res := d.Dispatch(context.Background(), DispatchRequest{}, DispatchNow)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "timed out")
}

func TestDispatchPromptCarriesContext(t *testing.T) {
	var prompt string
	var gotArgs []string
	d := stubDispatcher(func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		gotArgs = args
		require.GreaterOrEqual(t, len(args), 2)
		prompt = args[1]
		return []byte("{}"), nil, nil
	})

	req := DispatchRequest{
		Transcript:     "user: hello",
		Source:         "reset",
		Timestamp:      time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		VaultPath:      "/vault",
		NotesDir:       "notes",
		NoteContext:    "## Log",
		Model:          "sonnet",
		TranscriptPath: "/tmp/s.jsonl",
	}
	res := d.Dispatch(context.Background(), req, DispatchNow)
	require.True(t, res.Success)

	assert.Contains(t, prompt, "source: reset")
	assert.Contains(t, prompt, "vault: /vault")
	assert.Contains(t, prompt, "notes-dir: notes")
	assert.Contains(t, prompt, "model: sonnet")
	assert.Contains(t, prompt, "transcript-path: /tmp/s.jsonl")
	assert.Contains(t, prompt, "request-id: ")
	assert.Contains(t, prompt, "user: hello")
	assert.Contains(t, prompt, "## Log")
	assert.Contains(t, gotArgs, "--model")
}

func TestDispatchTruncatesOversizedSections(t *testing.T) {
	var prompt string
	d := stubDispatcher(func(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
		prompt = args[1]
		return nil, nil, nil
	})

	req := DispatchRequest{
		Transcript:  strings.Repeat("x", maxTranscriptChars+500),
		NoteContext: strings.Repeat("y", maxNoteContextChars+100),
	}
	res := d.Dispatch(context.Background(), req, DispatchNow)
	require.True(t, res.Success)

	assert.Contains(t, prompt, "[truncated: omitted 500 chars]")
	assert.Contains(t, prompt, "[truncated: omitted 100 chars]")
}

func TestTruncateWithMarkerNoop(t *testing.T) {
	assert.Equal(t, "short", truncateWithMarker("short", 100))
}
