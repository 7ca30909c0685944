// Package openclaw speaks the openclaw agent's on-disk and stdout formats:
// the JSONL session log line shape and the --json invocation output.
package openclaw

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. Immutable once constructed.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session logs are JSONL: one record per line. Only records of type
// "message" with a user or assistant role carry chat content; everything
// else (tool calls, system records) is skipped by readers.
type logRecord struct {
	Type    string      `json:"type"`
	Message *logMessage `json:"message,omitempty"`
}

type logMessage struct {
	Role    string       `json:"role"`
	Content []logContent `json:"content"`
}

type logContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParseLine decodes one session log line into a ChatMessage. The second
// return value is false when the line holds no chat content: a non-message
// record, an unknown role, empty text, or a line that does not parse at all.
// Unparseable lines are expected (another process may be mid-flush), so they
// are skipped rather than treated as corruption.
func ParseLine(line string) (ChatMessage, bool) {
	var rec logRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return ChatMessage{}, false
	}
	if rec.Type != "message" || rec.Message == nil {
		return ChatMessage{}, false
	}
	if rec.Message.Role != RoleUser && rec.Message.Role != RoleAssistant {
		return ChatMessage{}, false
	}

	var sb strings.Builder
	for _, c := range rec.Message.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return ChatMessage{}, false
	}

	return ChatMessage{Role: rec.Message.Role, Content: text}, true
}

// EncodeLine serialises a ChatMessage into one self-contained log line in
// the same record shape ParseLine consumes, without a trailing newline.
// ParseLine(EncodeLine(m)) round-trips every valid message.
func EncodeLine(msg ChatMessage) (string, error) {
	rec := logRecord{
		Type: "message",
		Message: &logMessage{
			Role:    msg.Role,
			Content: []logContent{{Type: "text", Text: msg.Content}},
		},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal log line: %w", err)
	}
	return string(data), nil
}
