// internal/state/note.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/user/clawdeck/internal/types"
)

// NoteStore is a JSON-file-backed store of captured notes.
type NoteStore struct {
	path string
	mu   sync.RWMutex
}

// NewNoteStore creates a NoteStore at the given file path.
func NewNoteStore(path string) *NoteStore {
	return &NoteStore{path: path}
}

func (s *NoteStore) load() ([]*types.Note, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read notes: %w", err)
	}
	var notes []*types.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("unmarshal notes: %w", err)
	}
	return notes, nil
}

// Create persists a new note.
func (s *NoteStore) Create(_ context.Context, note *types.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load()
	if err != nil {
		return err
	}
	notes = append(notes, note)
	return writeJSONAtomic(s.path, notes)
}

// List returns all notes.
func (s *NoteStore) List(_ context.Context) ([]*types.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// ListProactive returns open notes flagged for proactive follow-up that
// have not been followed up yet.
func (s *NoteStore) ListProactive(_ context.Context) ([]*types.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []*types.Note
	for _, n := range notes {
		if n.Proactive && n.Status == "open" && n.FollowedUpAt == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// SetStatus updates the note's status.
func (s *NoteStore) SetStatus(_ context.Context, id types.NoteID, status string) error {
	return s.mutate(id, func(n *types.Note) {
		n.Status = status
	})
}

// SetProactive flags or unflags the note for proactive follow-up.
func (s *NoteStore) SetProactive(_ context.Context, id types.NoteID, proactive bool) error {
	return s.mutate(id, func(n *types.Note) {
		n.Proactive = proactive
	})
}

// MarkFollowedUp records that the follow-up pass has handled the note.
func (s *NoteStore) MarkFollowedUp(_ context.Context, id types.NoteID) error {
	return s.mutate(id, func(n *types.Note) {
		now := time.Now()
		n.FollowedUpAt = &now
	})
}

func (s *NoteStore) mutate(id types.NoteID, fn func(*types.Note)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load()
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.ID == id {
			fn(n)
			n.UpdatedAt = time.Now()
			return writeJSONAtomic(s.path, notes)
		}
	}
	return fmt.Errorf("note not found: %s", id)
}

// Delete removes the note.
func (s *NoteStore) Delete(_ context.Context, id types.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load()
	if err != nil {
		return err
	}
	out := notes[:0]
	for _, n := range notes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return writeJSONAtomic(s.path, out)
}
