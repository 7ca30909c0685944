// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type ThreadID string
type ProjectID string
type NoteID string
type KanbanItemID string

func NewThreadID() ThreadID {
	return ThreadID(uuid.New().String())
}

func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

func NewNoteID() NoteID {
	return NoteID(uuid.New().String())
}

func NewKanbanItemID() KanbanItemID {
	return KanbanItemID(uuid.New().String())
}

// NewSessionID mints a fresh conversation session identifier. Session IDs are
// chosen by this client and become part of the agent's log file name.
func NewSessionID() string {
	return uuid.New().String()
}
