// Package chatlog reads and appends openclaw session logs: append-only JSONL
// files under <root>/agents/<agentID>/sessions/<sessionID>.jsonl. The files
// are shared with the agent process, which appends its own records, so reads
// must tolerate lines written by someone else mid-flush.
package chatlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/types"
)

// maxLineSize bounds a single log line. Agent replies can run long.
const maxLineSize = 4 * 1024 * 1024

// Store is a file-backed session log store rooted at the openclaw data
// directory (normally ~/.openclaw).
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the log file path for the given session key. The mapping is
// deterministic: the same key always yields the same path.
func (s *Store) Path(key types.SessionKey) string {
	return filepath.Join(s.root, "agents", key.AgentID, "sessions", key.SessionID+".jsonl")
}

// EnsureDir creates the log's parent directory if it does not exist.
func (s *Store) EnsureDir(key types.SessionKey) error {
	if err := os.MkdirAll(filepath.Dir(s.Path(key)), 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}
	return nil
}

// Append encodes the message and appends it as one line to the session log,
// flushing before returning. Safe to call while a tail reader is active on
// the same file: writes are append-only, never in-place.
func (s *Store) Append(key types.SessionKey, msg openclaw.ChatMessage) error {
	if err := s.EnsureDir(key); err != nil {
		return err
	}

	line, err := openclaw.EncodeLine(msg)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.Path(key), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync session log: %w", err)
	}
	return nil
}

// ReadAll reads the full session log in file order. A missing file is an
// empty session, not an error. Lines that carry no chat content are dropped.
func (s *Store) ReadAll(key types.SessionKey) ([]openclaw.ChatMessage, error) {
	f, err := os.Open(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	var messages []openclaw.ChatMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if msg, ok := openclaw.ParseLine(scanner.Text()); ok {
			messages = append(messages, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session log: %w", err)
	}
	return messages, nil
}

// ReadFrom reads log content at or after the given byte offset and returns
// the parsed messages plus the new offset. Only terminated lines (ending in
// a newline within the read content) are consumed; a trailing unterminated
// fragment stays unconsumed so it can be completed and re-read later. The
// returned offset therefore always sits on a line boundary, which is what
// keeps a line from ever being delivered twice or parsed half-written.
func (s *Store) ReadFrom(key types.SessionKey, offset int64) ([]openclaw.ChatMessage, int64, error) {
	f, err := os.Open(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek session log: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, fmt.Errorf("read session log: %w", err)
	}

	var messages []openclaw.ChatMessage
	newOffset := offset
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		data = data[i+1:]
		newOffset += int64(i) + 1
		if msg, ok := openclaw.ParseLine(string(line)); ok {
			messages = append(messages, msg)
		}
	}
	return messages, newOffset, nil
}

// ListSessions walks the store and returns every session key on disk,
// sorted by agent then session ID. A missing root is an empty store.
func (s *Store) ListSessions() ([]types.SessionKey, error) {
	agentsDir := filepath.Join(s.root, "agents")
	agents, err := os.ReadDir(agentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents dir: %w", err)
	}

	var keys []types.SessionKey
	for _, agent := range agents {
		if !agent.IsDir() {
			continue
		}
		sessionsDir := filepath.Join(agentsDir, agent.Name(), "sessions")
		entries, err := os.ReadDir(sessionsDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read sessions dir: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
				continue
			}
			keys = append(keys, types.SessionKey{
				AgentID:   agent.Name(),
				SessionID: strings.TrimSuffix(name, ".jsonl"),
			})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AgentID != keys[j].AgentID {
			return keys[i].AgentID < keys[j].AgentID
		}
		return keys[i].SessionID < keys[j].SessionID
	})
	return keys, nil
}
