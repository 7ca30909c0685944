package chatlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/types"
)

var testKey = types.SessionKey{AgentID: "main", SessionID: "abc123"}

func TestPathDeterministic(t *testing.T) {
	store := NewStore("/data")

	want := filepath.Join("/data", "agents", "main", "sessions", "abc123.jsonl")
	if got := store.Path(testKey); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
	if store.Path(testKey) != store.Path(testKey) {
		t.Error("Path is not deterministic")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	msgs, err := store.ReadAll(testKey)
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty history, got %d messages", len(msgs))
	}
}

func TestAppendThenReadAll(t *testing.T) {
	store := NewStore(t.TempDir())

	sent := []openclaw.ChatMessage{
		{Role: openclaw.RoleUser, Content: "hi"},
		{Role: openclaw.RoleAssistant, Content: "hello"},
		{Role: openclaw.RoleUser, Content: "bye"},
	}
	for _, msg := range sent {
		if err := store.Append(testKey, msg); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.ReadAll(testKey)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(sent) {
		t.Fatalf("expected %d messages, got %d", len(sent), len(got))
	}
	for i := range sent {
		if got[i] != sent[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], sent[i])
		}
	}
}

func TestReadAllSkipsForeignLines(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureDir(testKey); err != nil {
		t.Fatal(err)
	}

	content := `{"type":"message","message":{"role":"user","content":[{"type":"text","text":"hi"}]}}
{"type":"tool_result","output":"ignored"}
not json at all
{"type":"message","message":{"role":"assistant","content":[{"type":"text","text":"hello"}]}}
`
	if err := os.WriteFile(store.Path(testKey), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.ReadAll(testKey)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[1].Content != "hello" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestReadFromMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	msgs, offset, err := store.ReadFrom(testKey, 42)
	if err != nil {
		t.Fatalf("ReadFrom on missing file: %v", err)
	}
	if len(msgs) != 0 || offset != 42 {
		t.Errorf("expected no messages and offset 42, got %d messages, offset %d", len(msgs), offset)
	}
}

func TestReadFromIncremental(t *testing.T) {
	store := NewStore(t.TempDir())

	first := openclaw.ChatMessage{Role: openclaw.RoleUser, Content: "hi"}
	if err := store.Append(testKey, first); err != nil {
		t.Fatal(err)
	}

	msgs, offset, err := store.ReadFrom(testKey, 0)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != first {
		t.Fatalf("expected [%+v], got %+v", first, msgs)
	}
	if offset == 0 {
		t.Fatal("offset did not advance")
	}

	// No new content: zero messages, offset unchanged.
	msgs, offset2, err := store.ReadFrom(testKey, offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 || offset2 != offset {
		t.Errorf("expected no-op read, got %d messages, offset %d -> %d", len(msgs), offset, offset2)
	}

	// Append a second message, read only the tail.
	second := openclaw.ChatMessage{Role: openclaw.RoleAssistant, Content: "hello"}
	if err := store.Append(testKey, second); err != nil {
		t.Fatal(err)
	}
	msgs, offset3, err := store.ReadFrom(testKey, offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0] != second {
		t.Fatalf("expected [%+v], got %+v", second, msgs)
	}
	if offset3 <= offset {
		t.Error("offset did not advance past second message")
	}
}

func TestReadFromPartialLine(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureDir(testKey); err != nil {
		t.Fatal(err)
	}

	line, err := openclaw.EncodeLine(openclaw.ChatMessage{Role: openclaw.RoleUser, Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	// Write the line without its terminator: the tail is mid-flush.
	path := store.Path(testKey)
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, offset, err := store.ReadFrom(testKey, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("partial line delivered %d messages, want 0", len(msgs))
	}
	if offset != 0 {
		t.Errorf("partial line advanced offset to %d, want 0", offset)
	}

	// Complete the line; the whole message becomes readable.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	msgs, offset, err = store.ReadFrom(testKey, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hi" {
		t.Fatalf("expected completed message, got %+v", msgs)
	}
	if offset != int64(len(line))+1 {
		t.Errorf("offset = %d, want %d", offset, len(line)+1)
	}
}

func TestListSessions(t *testing.T) {
	store := NewStore(t.TempDir())

	keys, err := store.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("empty store listed %d sessions", len(keys))
	}

	for _, key := range []types.SessionKey{
		{AgentID: "main", SessionID: "beta"},
		{AgentID: "main", SessionID: "alpha"},
		{AgentID: "other", SessionID: "gamma"},
	} {
		if err := store.Append(key, openclaw.ChatMessage{Role: openclaw.RoleUser, Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	keys, err = store.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	want := []types.SessionKey{
		{AgentID: "main", SessionID: "alpha"},
		{AgentID: "main", SessionID: "beta"},
		{AgentID: "other", SessionID: "gamma"},
	}
	if len(keys) != len(want) {
		t.Fatalf("listed %d sessions, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}
