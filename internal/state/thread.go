// Package state holds the client's own records: threads, projects, and
// notes. Stores are JSON files written atomically; the session logs
// themselves live in the chatlog package, not here.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/clawdeck/internal/types"
)

// ThreadStore is a JSON-file-backed store of conversation threads.
type ThreadStore struct {
	path string
	mu   sync.RWMutex
}

// NewThreadStore creates a ThreadStore at the given file path.
func NewThreadStore(path string) *ThreadStore {
	return &ThreadStore{path: path}
}

func (s *ThreadStore) load() ([]*types.Thread, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read threads: %w", err)
	}
	var threads []*types.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("unmarshal threads: %w", err)
	}
	return threads, nil
}

func (s *ThreadStore) save(threads []*types.Thread) error {
	return writeJSONAtomic(s.path, threads)
}

// Create persists a new thread.
func (s *ThreadStore) Create(_ context.Context, thread *types.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads, err := s.load()
	if err != nil {
		return err
	}
	threads = append(threads, thread)
	return s.save(threads)
}

// Get returns the thread with the given ID.
func (s *ThreadStore) Get(_ context.Context, id types.ThreadID) (*types.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, th := range threads {
		if th.ID == id {
			return th, nil
		}
	}
	return nil, fmt.Errorf("thread not found: %s", id)
}

// List returns threads, optionally filtered by project.
func (s *ThreadStore) List(_ context.Context, projectID types.ProjectID) ([]*types.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads, err := s.load()
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		return threads, nil
	}
	var out []*types.Thread
	for _, th := range threads {
		if th.ProjectID == projectID {
			out = append(out, th)
		}
	}
	return out, nil
}

// Rename changes the thread's name.
func (s *ThreadStore) Rename(_ context.Context, id types.ThreadID, name string) error {
	return s.mutate(id, func(th *types.Thread) {
		th.Name = name
	})
}

// Touch bumps the thread's last-message timestamp.
func (s *ThreadStore) Touch(_ context.Context, id types.ThreadID) error {
	return s.mutate(id, func(th *types.Thread) {
		now := time.Now()
		th.LastMessageAt = &now
	})
}

func (s *ThreadStore) mutate(id types.ThreadID, fn func(*types.Thread)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads, err := s.load()
	if err != nil {
		return err
	}
	for _, th := range threads {
		if th.ID == id {
			fn(th)
			th.UpdatedAt = time.Now()
			return s.save(threads)
		}
	}
	return fmt.Errorf("thread not found: %s", id)
}

// Delete removes the thread. Deleting an absent thread is a no-op.
func (s *ThreadStore) Delete(_ context.Context, id types.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads, err := s.load()
	if err != nil {
		return err
	}
	out := threads[:0]
	for _, th := range threads {
		if th.ID != id {
			out = append(out, th)
		}
	}
	return s.save(out)
}

// writeJSONAtomic marshals v with indentation and writes it via a temp file
// and rename so a crash never leaves a half-written store.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
