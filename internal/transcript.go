package internal

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// Turn is one conversational message extracted from a transcript file.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// transcript lines can carry large embedded tool output
const maxTranscriptLine = 4 * 1024 * 1024

// maximum envelope nesting the decoder will follow ("message" inside
// "payload" inside a typed record is the deepest shape seen in the wild)
const maxEnvelopeDepth = 3

// ExtractTurns parses a newline-delimited transcript file into its ordered
// turns. A missing or unreadable file yields nil; a malformed line is
// skipped, never fatal.
func ExtractTurns(path string) []Turn {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var turns []Turn

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxTranscriptLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if turn, ok := decodeTurn([]byte(line), 0); ok {
			turns = append(turns, turn)
		}
	}

	return turns
}

// transcriptRecord is the closed set of shapes the decoder recognizes: a
// flat {role, content} pair, a typed record whose payload sits under
// "message", or a generic "payload" wrapper. Anything else is dropped.
type transcriptRecord struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Message json.RawMessage `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

func decodeTurn(data []byte, depth int) (Turn, bool) {
	if depth > maxEnvelopeDepth {
		return Turn{}, false
	}

	var rec transcriptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Turn{}, false
	}

	role := normalizeRole(rec.Role)
	if role == "" {
		role = normalizeRole(rec.Type)
	}

	content := flattenContent(rec.Content, 0)

	if role != "" && content != "" {
		return Turn{Role: role, Content: content}, true
	}

	// The role/content pair may live inside a wrapper. A role found on the
	// outer record (e.g. type:"user" with the text under "message") still
	// applies to the inner content.
	for _, inner := range []json.RawMessage{rec.Message, rec.Payload} {
		if len(inner) == 0 {
			continue
		}
		turn, ok := decodeTurn(inner, depth+1)
		if !ok {
			if role != "" {
				if c := flattenContent(inner, 0); c != "" {
					return Turn{Role: role, Content: c}, true
				}
			}
			continue
		}
		if turn.Role == "" {
			turn.Role = role
		}
		if turn.Role != "" && turn.Content != "" {
			return turn, true
		}
	}

	return Turn{}, false
}

// normalizeRole maps the role synonyms upstream producers use onto the two
// canonical roles. Unrecognized values (tool results, summaries, progress
// records) resolve to "".
func normalizeRole(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	case "assistant", "model", "ai":
		return RoleAssistant
	default:
		return ""
	}
}

// flattenContent reduces a content value to a single trimmed string. It
// accepts a plain string, an array of blocks, or an object carrying one of
// the common text fields.
func flattenContent(raw json.RawMessage, depth int) string {
	if len(raw) == 0 || depth > maxEnvelopeDepth {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if part := flattenContent(b, depth+1); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}

	var obj struct {
		Text    json.RawMessage `json:"text"`
		Value   json.RawMessage `json:"value"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, field := range []json.RawMessage{obj.Text, obj.Value, obj.Content} {
			if part := flattenContent(field, depth+1); part != "" {
				return part
			}
		}
	}

	return ""
}

// RenderTranscript formats turns as the plain-text conversation block sent
// to the dispatcher.
func RenderTranscript(turns []Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(t.Role)
		sb.WriteString(": ")
		sb.WriteString(t.Content)
	}
	return sb.String()
}
