// internal/state/kanban.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/user/clawdeck/internal/types"
)

// Default column and lifecycle values for board items.
const (
	KanbanColumnBacklog = "backlog"
	KanbanStatusActive  = "active"
	KanbanStatusDone    = "done"

	KanbanSourceManual = "manual"
	KanbanSourceNote   = "note"
)

// KanbanStore is a JSON-file-backed store of board items.
type KanbanStore struct {
	path string
	mu   sync.RWMutex
}

// NewKanbanStore creates a KanbanStore at the given file path.
func NewKanbanStore(path string) *KanbanStore {
	return &KanbanStore{path: path}
}

func (s *KanbanStore) load() ([]*types.KanbanItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read kanban items: %w", err)
	}
	var items []*types.KanbanItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal kanban items: %w", err)
	}
	return items, nil
}

// Create persists a new item, filling in defaults for column, status, and
// source type when left empty.
func (s *KanbanStore) Create(_ context.Context, item *types.KanbanItem) error {
	if item.Column == "" {
		item.Column = KanbanColumnBacklog
	}
	if item.Status == "" {
		item.Status = KanbanStatusActive
	}
	if item.SourceType == "" {
		item.SourceType = KanbanSourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items = append(items, item)
	return writeJSONAtomic(s.path, items)
}

// List returns active items, optionally filtered by project, ordered by
// column then position so callers render the board directly.
func (s *KanbanStore) List(_ context.Context, projectID types.ProjectID) ([]*types.KanbanItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.KanbanItem, 0, len(items))
	for _, item := range items {
		if item.Status != KanbanStatusActive {
			continue
		}
		if projectID != "" && item.ProjectID != projectID {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// Update persists changes to an existing item.
func (s *KanbanStore) Update(_ context.Context, item *types.KanbanItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	for i, it := range items {
		if it.ID == item.ID {
			item.UpdatedAt = time.Now()
			items[i] = item
			return writeJSONAtomic(s.path, items)
		}
	}
	return fmt.Errorf("kanban item not found: %s", item.ID)
}

// Move places the item in a column at a position, as a board drag does.
func (s *KanbanStore) Move(_ context.Context, id types.KanbanItemID, column string, position int) error {
	return s.mutate(id, func(item *types.KanbanItem) {
		item.Column = column
		item.Position = position
	})
}

// SetStatus changes the item's lifecycle status. Done items drop out of
// List but stay on disk.
func (s *KanbanStore) SetStatus(_ context.Context, id types.KanbanItemID, status string) error {
	return s.mutate(id, func(item *types.KanbanItem) {
		item.Status = status
	})
}

func (s *KanbanStore) mutate(id types.KanbanItemID, fn func(*types.KanbanItem)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == id {
			fn(item)
			item.UpdatedAt = time.Now()
			return writeJSONAtomic(s.path, items)
		}
	}
	return fmt.Errorf("kanban item not found: %s", id)
}

// Delete removes the item. Deleting an absent item is a no-op.
func (s *KanbanStore) Delete(_ context.Context, id types.KanbanItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return writeJSONAtomic(s.path, out)
}

// PromoteNote turns a captured note into a board item and marks the note
// done: the thought graduated from inbox to plan.
func PromoteNote(ctx context.Context, notes types.NoteStore, items types.KanbanStore, noteID types.NoteID, title string, projectID types.ProjectID, column string) (*types.KanbanItem, error) {
	note, err := findNote(ctx, notes, noteID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = note.Content
	}
	if projectID == "" {
		projectID = note.ProjectID
	}

	now := time.Now()
	item := &types.KanbanItem{
		ID:         types.NewKanbanItemID(),
		ProjectID:  projectID,
		SourceType: KanbanSourceNote,
		SourceID:   string(noteID),
		Title:      title,
		Column:     column,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create kanban item: %w", err)
	}
	if err := notes.SetStatus(ctx, noteID, "done"); err != nil {
		return nil, fmt.Errorf("close promoted note: %w", err)
	}
	return item, nil
}

// ConvertNoteToThread spins a note off into its own conversation thread with
// a fresh session, marking the note in progress.
func ConvertNoteToThread(ctx context.Context, notes types.NoteStore, threads types.ThreadStore, noteID types.NoteID, name, agentID string, projectID types.ProjectID) (*types.Thread, error) {
	note, err := findNote(ctx, notes, noteID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = note.Content
	}
	if projectID == "" {
		projectID = note.ProjectID
	}
	if agentID == "" {
		agentID = "main"
	}

	now := time.Now()
	thread := &types.Thread{
		ID:        types.NewThreadID(),
		ProjectID: projectID,
		Name:      name,
		AgentID:   agentID,
		SessionID: types.NewSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := threads.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	if err := notes.SetStatus(ctx, noteID, "in_progress"); err != nil {
		return nil, fmt.Errorf("mark note in progress: %w", err)
	}
	return thread, nil
}

func findNote(ctx context.Context, notes types.NoteStore, id types.NoteID) (*types.Note, error) {
	all, err := notes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range all {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("note not found: %s", id)
}
